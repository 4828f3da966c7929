package models

import "time"

type (
	ApprovalStatus   string // Статус заявки на участие
	ApprovalDecision string // Решение по заявке
)

const (
	ApprovalPending  ApprovalStatus = "pending"  // Ожидает решения автора RFP
	ApprovalApproved ApprovalStatus = "approved" // Подрядчик допущен
	ApprovalRejected ApprovalStatus = "rejected" // Подрядчику отказано

	ApproveVendor ApprovalDecision = "approved" // Допустить подрядчика
	RejectVendor  ApprovalDecision = "rejected" // Отказать подрядчику
)

// ApprovalTransitions задает допустимые переходы заявки. Решение окончательное.
var ApprovalTransitions = map[ApprovalStatus][]ApprovalStatus{
	ApprovalPending:  {ApprovalApproved, ApprovalRejected},
	ApprovalApproved: {},
	ApprovalRejected: {},
}

// IsTerminal сообщает, что по заявке уже принято решение.
func (s ApprovalStatus) IsTerminal() bool {
	return len(ApprovalTransitions[s]) == 0
}

// CanTransitionTo проверяет переход заявки в новый статус.
func (s ApprovalStatus) CanTransitionTo(next ApprovalStatus) bool {
	for _, allowed := range ApprovalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Status переводит решение в итоговый статус заявки.
func (d ApprovalDecision) Status() (ApprovalStatus, bool) {
	switch d {
	case ApproveVendor:
		return ApprovalApproved, true
	case RejectVendor:
		return ApprovalRejected, true
	}
	return "", false
}

// VendorApprovalRequest представляет заявку подрядчика на участие в закрытом RFP.
type VendorApprovalRequest struct {
	ID               string         `json:"id"`
	RFPID            string         `json:"rfpId"`
	VendorID         string         `json:"vendorId"`
	VendorUserID     string         `json:"vendorUserId"`
	RFPCreatorUserID string         `json:"-"`
	Status           ApprovalStatus `json:"status"`
	RequestedAt      time.Time      `json:"requestedAt"`
	ApprovedAt       *time.Time     `json:"approvedAt,omitempty"`
	RFPTitle         string         `json:"rfpTitle,omitempty"`
	CompanyName      string         `json:"companyName,omitempty"`
}

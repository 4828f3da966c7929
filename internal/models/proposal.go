package models

import "time"

type ProposalStatus string // Статус предложения

const (
	SubmittedProposal   ProposalStatus = "submitted"    // Предложение отправлено
	UnderReviewProposal ProposalStatus = "under_review" // Предложение рассматривается
	AcceptedProposal    ProposalStatus = "accepted"     // Предложение принято
	RejectedProposal    ProposalStatus = "rejected"     // Предложение отклонено
)

// ProposalStatusTransitions задает допустимые переходы статуса предложения.
var ProposalStatusTransitions = map[ProposalStatus][]ProposalStatus{
	SubmittedProposal:   {UnderReviewProposal, AcceptedProposal, RejectedProposal},
	UnderReviewProposal: {AcceptedProposal, RejectedProposal},
	AcceptedProposal:    {},
	RejectedProposal:    {},
}

// Proposal представляет модель предложения подрядчика.
type Proposal struct {
	ID           string         `json:"id"`
	RFPID        string         `json:"rfpId"`
	VendorID     string         `json:"vendorId"`
	VendorUserID string         `json:"vendorUserId"`
	CoverLetter  string         `json:"coverLetter"`
	Timeline     string         `json:"timeline"`
	Cost         float64        `json:"cost"`
	PaymentTerms string         `json:"paymentTerms"`
	Attachments  []Attachment   `json:"attachments"`
	Status       ProposalStatus `json:"status"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// IsEditable сообщает, может ли подрядчик менять предложение.
func (p *Proposal) IsEditable() bool {
	return p.Status == SubmittedProposal
}

// ProposalRequest представляет структуру запроса для создания предложения.
type ProposalRequest struct {
	RFPID        string  `json:"rfpId" validate:"required,uuid"`
	CoverLetter  string  `json:"coverLetter" validate:"required,min=100,max=10000"`
	Timeline     string  `json:"timeline" validate:"required,min=10"`
	Cost         float64 `json:"cost" validate:"gte=0"`
	PaymentTerms string  `json:"paymentTerms" validate:"required,min=10"`
}

// ProposalUpdate представляет частичное изменение предложения.
type ProposalUpdate struct {
	CoverLetter  *string  `json:"coverLetter,omitempty" validate:"omitempty,min=100,max=10000"`
	Timeline     *string  `json:"timeline,omitempty" validate:"omitempty,min=10"`
	Cost         *float64 `json:"cost,omitempty" validate:"omitempty,gte=0"`
	PaymentTerms *string  `json:"paymentTerms,omitempty" validate:"omitempty,min=10"`
}

// IsEmpty сообщает, что в изменении нет ни одного поля.
func (u ProposalUpdate) IsEmpty() bool {
	return u.CoverLetter == nil && u.Timeline == nil && u.Cost == nil && u.PaymentTerms == nil
}

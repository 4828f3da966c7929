package models

type AccessReason string // Причина решения о доступе

const (
	AccessPublic         AccessReason = "public"
	AccessCreator        AccessReason = "creator"
	AccessApprovedVendor AccessReason = "approved_vendor"

	DeniedRFPNotFound      AccessReason = "rfp_not_found"
	DeniedNotCreator       AccessReason = "not_creator"
	DeniedNoVendorProfile  AccessReason = "no_vendor_profile"
	DeniedNotRequested     AccessReason = "not_requested"
	DeniedApprovalPending  AccessReason = "approval_pending"
	DeniedApprovalRejected AccessReason = "approval_rejected"
)

var deniedMessages = map[AccessReason]string{
	DeniedRFPNotFound:      "RFP not found",
	DeniedNotCreator:       "Only the RFP creator and approved vendors can view private details",
	DeniedNoVendorProfile:  "Vendor profile not found",
	DeniedNotRequested:     "Request to bid on this RFP to view its private details",
	DeniedApprovalPending:  "Your request to bid on this RFP is awaiting approval",
	DeniedApprovalRejected: "Your request to bid on this RFP was rejected",
}

// AccessDecision - результат проверки доступа к закрытой части RFP.
type AccessDecision struct {
	Allowed bool         `json:"allowed"`
	Reason  AccessReason `json:"reason"`
}

// Allow создает положительное решение.
func Allow(reason AccessReason) AccessDecision {
	return AccessDecision{Allowed: true, Reason: reason}
}

// Deny создает отказ с причиной.
func Deny(reason AccessReason) AccessDecision {
	return AccessDecision{Allowed: false, Reason: reason}
}

// Message возвращает текст отказа для пользователя.
func (d AccessDecision) Message() string {
	if msg, ok := deniedMessages[d.Reason]; ok {
		return msg
	}
	return "access denied"
}

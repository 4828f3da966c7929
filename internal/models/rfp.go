package models

import "time"

type (
	RFPVisibility string // Видимость RFP
	RFPStatus     string // Статус RFP
)

const (
	PublicRFP  RFPVisibility = "public"  // Детали видны всем
	PrivateRFP RFPVisibility = "private" // Детали видны только одобренным подрядчикам

	OpenRFP      RFPStatus = "open"      // Принимает предложения
	ReviewingRFP RFPStatus = "reviewing" // Предложения рассматриваются
	AwardedRFP   RFPStatus = "awarded"   // Выбран подрядчик
	ClosedRFP    RFPStatus = "closed"    // RFP закрыт
)

// RFPStatusTransitions задает допустимые переходы статуса RFP.
var RFPStatusTransitions = map[RFPStatus][]RFPStatus{
	OpenRFP:      {ReviewingRFP, AwardedRFP, ClosedRFP},
	ReviewingRFP: {OpenRFP, AwardedRFP, ClosedRFP},
	AwardedRFP:   {ClosedRFP},
	ClosedRFP:    {},
}

// Attachment описывает вложение к RFP или предложению.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// RFP представляет модель запроса предложений.
type RFP struct {
	ID            string        `json:"id"`
	CreatorID     string        `json:"creatorId"`
	CreatorUserID string        `json:"creatorUserId"`
	Title         string        `json:"title"`
	Category      string        `json:"category"`
	Description   string        `json:"description"`
	Visibility    RFPVisibility `json:"visibility"`
	Status        RFPStatus     `json:"status"`
	Deadline      *time.Time    `json:"deadline,omitempty"`
	BudgetMin     *float64      `json:"budgetMin,omitempty"`
	BudgetMax     *float64      `json:"budgetMax,omitempty"`
	ProposalCount int           `json:"proposalCount"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// IsPrivate сообщает, требует ли RFP одобрения подрядчиков.
func (r *RFP) IsPrivate() bool {
	return r.Visibility == PrivateRFP
}

// IsOpen сообщает, принимает ли RFP новые заявки и предложения.
func (r *RFP) IsOpen() bool {
	return r.Status == OpenRFP
}

// IsReviewable сообщает, можно ли еще рассматривать предложения по RFP.
func (r *RFP) IsReviewable() bool {
	return r.Status == OpenRFP || r.Status == ReviewingRFP
}

// RFPPrivateDetails представляет закрытую часть RFP.
type RFPPrivateDetails struct {
	ID                  string       `json:"id"`
	RFPID               string       `json:"rfpId"`
	PropertyAddress     string       `json:"propertyAddress"`
	ContactName         string       `json:"contactName"`
	ContactEmail        string       `json:"contactEmail"`
	ContactPhone        *string      `json:"contactPhone,omitempty"`
	DetailedScope       string       `json:"detailedScope"`
	SpecialRequirements *string      `json:"specialRequirements,omitempty"`
	Attachments         []Attachment `json:"attachments"`
}

// RFPRequest представляет структуру запроса для создания RFP.
type RFPRequest struct {
	Title               string        `json:"title" validate:"required,min=10,max=200"`
	Category            string        `json:"category" validate:"required,notblank"`
	Description         string        `json:"description" validate:"required,min=50,max=10000"`
	Visibility          RFPVisibility `json:"visibility" validate:"required,oneof=public private"`
	Deadline            *time.Time    `json:"deadline,omitempty"`
	BudgetMin           *float64      `json:"budgetMin,omitempty" validate:"omitempty,gte=0"`
	BudgetMax           *float64      `json:"budgetMax,omitempty" validate:"omitempty,gte=0"`
	PropertyAddress     string        `json:"propertyAddress" validate:"required,min=5"`
	ContactName         string        `json:"contactName" validate:"required,min=2"`
	ContactEmail        string        `json:"contactEmail" validate:"required,email"`
	ContactPhone        *string       `json:"contactPhone,omitempty"`
	DetailedScope       string        `json:"detailedScope" validate:"required,min=50,max=20000"`
	SpecialRequirements *string       `json:"specialRequirements,omitempty"`
}

// RFPFilter описывает параметры выборки списка RFP.
type RFPFilter struct {
	Status        RFPStatus
	Visibility    RFPVisibility
	Categories    []string
	CreatorUserID string
	Limit         int
	Offset        int
}

// RFPList - страница списка RFP с общим количеством.
type RFPList struct {
	RFPs  []RFP `json:"rfps"`
	Total int   `json:"total"`
}

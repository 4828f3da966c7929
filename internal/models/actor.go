package models

import "errors"

type AccountType string // Тип аккаунта пользователя

const (
	CommunityMember AccountType = "community_member" // Участник сообщества
	Vendor          AccountType = "vendor"           // Подрядчик
)

// ErrUnauthenticated означает отсутствие аутентифицированного пользователя.
var ErrUnauthenticated = errors.New("user is not authenticated")

// Actor описывает пользователя, от имени которого выполняется операция.
type Actor struct {
	UserID      string      `json:"userId"`
	AccountType AccountType `json:"accountType"`
}

// IsAuthenticated сообщает, есть ли у запроса пользователь.
func (a Actor) IsAuthenticated() bool {
	return a.UserID != ""
}

func (a Actor) IsVendor() bool {
	return a.AccountType == Vendor
}

func (a Actor) IsCommunityMember() bool {
	return a.AccountType == CommunityMember
}

// User представляет модель пользователя платформы.
type User struct {
	ID          string      `json:"id"`
	FullName    string      `json:"fullName"`
	Email       string      `json:"-"`
	AvatarURL   *string     `json:"avatarUrl,omitempty"`
	AccountType AccountType `json:"accountType"`
}

// CommunityProfile представляет профиль участника сообщества.
type CommunityProfile struct {
	ID               string `json:"id"`
	UserID           string `json:"userId"`
	Role             string `json:"role"`
	PropertyName     string `json:"propertyName"`
	PropertyLocation string `json:"propertyLocation"`
}

// VendorProfile представляет профиль подрядчика.
type VendorProfile struct {
	ID                  string   `json:"id"`
	UserID              string   `json:"userId"`
	CompanyName         string   `json:"companyName"`
	ServiceCategories   []string `json:"serviceCategories"`
	ServiceAreas        []string `json:"serviceAreas"`
	BusinessDescription *string  `json:"businessDescription,omitempty"`
}

// Actor возвращает пользователя как участника операции.
func (u User) Actor() Actor {
	return Actor{UserID: u.ID, AccountType: u.AccountType}
}

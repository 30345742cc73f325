package models

import "github.com/shopspring/decimal"

// UserProfile is the backend-owned account projection the storefront renders.
// It is refetched on every guarded request and never persisted client-side.
type UserProfile struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Verified       bool            `json:"verified"`
	WalletBalance  decimal.Decimal `json:"walletBalance"`
	Role           string          `json:"role"`
	ProfilePicture string          `json:"profilePicture"`
}

// DisplayName returns the best available label for greeting the user.
func (u UserProfile) DisplayName() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	default:
		return u.Phone
	}
}

package models

const (
	RoleUser     = "user"
	RoleReseller = "reseller"
	RoleAdmin    = "admin"
)

// IsAdmin reports whether the profile carries the admin role.
func (u UserProfile) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsReseller reports whether the profile buys at reseller prices.
func (u UserProfile) IsReseller() bool {
	return u.Role == RoleReseller
}

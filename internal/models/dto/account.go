package dto

import (
	"github.com/hongminglow/all-in-store/internal/models"
	"github.com/shopspring/decimal"
)

type DashboardStats struct {
	TotalOrders   int             `json:"totalOrders"`
	TotalSpent    decimal.Decimal `json:"totalSpent"`
	WalletBalance decimal.Decimal `json:"walletBalance"`
	RecentOrders  []models.Order  `json:"recentOrders"`
}

type DashboardResponse struct {
	Outcome
	Data DashboardStats `json:"data"`
}

type LeaderboardEntry struct {
	Rank           int             `json:"rank"`
	Name           string          `json:"name"`
	TotalSpent     decimal.Decimal `json:"totalSpent"`
	ProfilePicture string          `json:"profilePicture"`
}

type LeaderboardResponse struct {
	Outcome
	Data []LeaderboardEntry `json:"data"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type WalletAddRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	RedirectURL string          `json:"redirectUrl"`
}

package models

import "github.com/shopspring/decimal"

// Region is one entry of a game's closed server/region list.
type Region struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Game is a catalog entry. ValidationFields is server-defined and fully
// determines which identity inputs the top-up screen renders.
type Game struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Image            string   `json:"image"`
	Publisher        string   `json:"publisher"`
	ValidationFields []string `json:"validationFields"`
	RegionList       []Region `json:"regionList,omitempty"`
}

// DiamondPack is a purchasable bundle of in-game currency.
type DiamondPack struct {
	ID          string          `json:"id"`
	Game        string          `json:"game"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Logo        string          `json:"logo"`
	Category    string          `json:"category"`
}

// ValidationResult is what the backend returns for a confirmed player identity.
type ValidationResult struct {
	Name   string `json:"name"`
	Server string `json:"server"`
}

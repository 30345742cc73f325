package models

import "github.com/shopspring/decimal"

// SelectedPackDetails is the checkout handoff: a chosen pack merged with the
// player's validation-field values. It holds a non-empty value for every
// validation field of the originating game.
type SelectedPackDetails struct {
	PackID      string            `json:"packId"`
	GameID      string            `json:"gameId"`
	GameName    string            `json:"gameName"`
	Amount      decimal.Decimal   `json:"amount"`
	Description string            `json:"description"`
	Logo        string            `json:"logo"`
	Category    string            `json:"category"`
	Fields      map[string]string `json:"fields"`
	PlayerName  string            `json:"playerName,omitempty"`
	Server      string            `json:"server,omitempty"`
}

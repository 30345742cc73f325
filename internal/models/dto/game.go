package dto

import "github.com/hongminglow/all-in-store/internal/models"

type GamesResponse struct {
	Outcome
	Games []models.Game `json:"games"`
}

type GamePacksResponse struct {
	Outcome
	Game         models.Game          `json:"game"`
	DiamondPacks []models.DiamondPack `json:"diamondPacks"`
}

// ValidateUserResponse is the provider identity check reply. Either flag
// being truthy means the identity was accepted.
type ValidateUserResponse struct {
	Response Truthy `json:"response"`
	Valid    Truthy `json:"valid"`
	Message  string `json:"message"`
	Data     struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Server   string `json:"server"`
	} `json:"data"`
}

// Accepted reports whether the backend confirmed the identity.
func (v ValidateUserResponse) Accepted() bool {
	return bool(v.Response || v.Valid)
}

// Result returns the confirmed display name and server.
func (v ValidateUserResponse) Result() models.ValidationResult {
	name := v.Data.Name
	if name == "" {
		name = v.Data.Username
	}
	return models.ValidationResult{Name: name, Server: v.Data.Server}
}

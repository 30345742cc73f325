package flow

import (
	"context"
	"fmt"

	"github.com/hongminglow/all-in-store/internal/auth"
	"github.com/hongminglow/all-in-store/internal/clientstore"
	"github.com/hongminglow/all-in-store/internal/forms"
	"github.com/hongminglow/all-in-store/internal/models"
	"github.com/hongminglow/all-in-store/internal/models/dto"
)

// GameSource loads a game with its packs.
type GameSource interface {
	GameWithPacks(ctx context.Context, gameID string) (models.Game, []models.DiamondPack, error)
}

// IdentityValidator confirms a player identity with the game provider.
type IdentityValidator interface {
	ValidateUser(ctx context.Context, gameID string, fields map[string]string) (dto.ValidateUserResponse, error)
}

// Category is a pack category with its representative image.
type Category struct {
	Name  string
	Image string
}

// TopUpView is everything the top-up screen renders for one game.
type TopUpView struct {
	Game       models.Game
	Packs      []models.DiamondPack
	Categories []Category
	Selected   string
}

// Visible returns the packs of the selected category.
func (v TopUpView) Visible() []models.DiamondPack {
	var out []models.DiamondPack
	for _, p := range v.Packs {
		if p.Category == v.Selected {
			out = append(out, p)
		}
	}
	return out
}

// Pack looks up a pack of this game by id.
func (v TopUpView) Pack(id string) (models.DiamondPack, bool) {
	for _, p := range v.Packs {
		if p.ID == id {
			return p, true
		}
	}
	return models.DiamondPack{}, false
}

// TopUp drives the game top-up screen.
type TopUp struct {
	games     GameSource
	validator IdentityValidator
}

func NewTopUp(games GameSource, validator IdentityValidator) *TopUp {
	return &TopUp{games: games, validator: validator}
}

// LoadGame fetches a game and its packs and derives the category tabs. The
// first category is selected unless category names an existing one.
func (t *TopUp) LoadGame(ctx context.Context, gameID, category string) (TopUpView, error) {
	game, packs, err := t.games.GameWithPacks(ctx, gameID)
	if err != nil {
		return TopUpView{}, fmt.Errorf("load game %s: %w", gameID, err)
	}

	view := TopUpView{Game: game, Packs: packs}
	seen := make(map[string]bool)
	for _, p := range packs {
		if seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		img := p.Logo
		if img == "" {
			img = game.Image
		}
		view.Categories = append(view.Categories, Category{Name: p.Category, Image: img})
	}
	if len(view.Categories) > 0 {
		view.Selected = view.Categories[0].Name
	}
	if seen[category] {
		view.Selected = category
	}
	return view, nil
}

// ValidateIdentity checks the submitted identity with the backend. It returns
// the normalised field values in every case so the form stays populated.
func (t *TopUp) ValidateIdentity(ctx context.Context, game models.Game, submitted map[string]string) (models.ValidationResult, map[string]string, error) {
	values := forms.Resolve(game, submitted)
	if missing := forms.Missing(game, values); len(missing) > 0 {
		return models.ValidationResult{}, values, &MissingFieldsError{Fields: missing}
	}

	reply, err := t.validator.ValidateUser(ctx, game.ID, values)
	if err != nil {
		return models.ValidationResult{}, values, fmt.Errorf("validate identity: %w", err)
	}
	if !reply.Accepted() {
		msg := reply.Message
		if msg == "" {
			msg = "Invalid player details. Please check and try again."
		}
		return models.ValidationResult{}, values, &RejectedError{Message: msg}
	}
	return reply.Result(), values, nil
}

// SelectPack builds and persists the checkout handoff for pack.
func SelectPack(ctx context.Context, session *clientstore.Session, st auth.State, game models.Game, pack models.DiamondPack, submitted map[string]string, result models.ValidationResult) (models.SelectedPackDetails, error) {
	if !st.IsAuthenticated {
		return models.SelectedPackDetails{}, ErrLoginRequired
	}
	values := forms.Resolve(game, submitted)
	if missing := forms.Missing(game, values); len(missing) > 0 {
		return models.SelectedPackDetails{}, &MissingFieldsError{Fields: missing}
	}

	details := models.SelectedPackDetails{
		PackID:      pack.ID,
		GameID:      game.ID,
		GameName:    game.Name,
		Amount:      pack.Amount,
		Description: pack.Description,
		Logo:        pack.Logo,
		Category:    pack.Category,
		Fields:      values,
		PlayerName:  result.Name,
		Server:      result.Server,
	}
	if err := session.SetSelectedPack(ctx, details); err != nil {
		return models.SelectedPackDetails{}, fmt.Errorf("persist selected pack: %w", err)
	}
	return details, nil
}

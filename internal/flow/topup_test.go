package flow

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/all-in-store/internal/apiclient"
	"github.com/hongminglow/all-in-store/internal/auth"
	"github.com/hongminglow/all-in-store/internal/models"
	"github.com/hongminglow/all-in-store/internal/models/dto"
)

func mlbb() models.Game {
	return models.Game{
		ID:               "g1",
		Name:             "Mobile Legends",
		Image:            "game.png",
		ValidationFields: []string{"playerId", "server"},
		RegionList:       []models.Region{{Code: "AS", Name: "Asia"}},
	}
}

func TestLoadGameDerivesCategories(t *testing.T) {
	api := &fakeAPI{
		game: mlbb(),
		packs: []models.DiamondPack{
			{ID: "p1", Category: "Diamonds", Logo: "d.png"},
			{ID: "p2", Category: "Passes"},
			{ID: "p3", Category: "Diamonds", Logo: "other.png"},
		},
	}
	tu := NewTopUp(api, api)

	view, err := tu.LoadGame(t.Context(), "g1", "")
	require.NoError(t, err)
	assert.Equal(t, []Category{{Name: "Diamonds", Image: "d.png"}, {Name: "Passes", Image: "game.png"}}, view.Categories)
	assert.Equal(t, "Diamonds", view.Selected)
	assert.Len(t, view.Visible(), 2)

	view, err = tu.LoadGame(t.Context(), "g1", "Passes")
	require.NoError(t, err)
	assert.Equal(t, "Passes", view.Selected)

	view, err = tu.LoadGame(t.Context(), "g1", "Unknown")
	require.NoError(t, err)
	assert.Equal(t, "Diamonds", view.Selected)

	p, ok := view.Pack("p2")
	assert.True(t, ok)
	assert.Equal(t, "Passes", p.Category)
}

func TestValidateIdentityMissingFieldsSkipsNetwork(t *testing.T) {
	api := &fakeAPI{}
	tu := NewTopUp(api, api)

	_, values, err := tu.ValidateIdentity(t.Context(), mlbb(), map[string]string{"playerId": " 123 "})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingFields)

	var missing *MissingFieldsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"Server"}, missing.Fields)
	assert.Equal(t, "123", values["playerId"])
	assert.Empty(t, api.calls)
}

func TestValidateIdentity(t *testing.T) {
	tests := []struct {
		name     string
		reply    dto.ValidateUserResponse
		wantErr  string
		wantName string
	}{
		{name: "response flag", reply: dto.ValidateUserResponse{Response: true}, wantName: ""},
		{name: "valid flag", reply: func() dto.ValidateUserResponse {
			r := dto.ValidateUserResponse{Valid: true}
			r.Data.Username = "Slayer"
			return r
		}(), wantName: "Slayer"},
		{name: "rejected", reply: dto.ValidateUserResponse{Message: "Player not found"}, wantErr: "Player not found"},
		{name: "rejected without message", reply: dto.ValidateUserResponse{}, wantErr: "Invalid player details. Please check and try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{validate: tt.reply}
			tu := NewTopUp(api, api)

			res, _, err := tu.ValidateIdentity(t.Context(), mlbb(), map[string]string{"playerId": "1", "server": "Asia"})
			assert.Equal(t, map[string]string{"playerId": "1", "server": "AS"}, api.validated)
			if tt.wantErr != "" {
				var rejected *RejectedError
				require.True(t, errors.As(err, &rejected))
				assert.Equal(t, tt.wantErr, rejected.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, res.Name)
		})
	}
}

func TestValidateIdentityTruthyFlags(t *testing.T) {
	tests := []struct {
		body     string
		accepted bool
	}{
		{body: `{"response":1,"data":{"name":"Asha"}}`, accepted: true},
		{body: `{"valid":"true","data":{"name":"Asha"}}`, accepted: true},
		{body: `{"response":{"nickname":"Asha"},"data":{"name":"Asha"}}`, accepted: true},
		{body: `{"valid":[0],"data":{"name":"Asha"}}`, accepted: true},
		{body: `{"response":0,"valid":"","message":"Player not found"}`},
		{body: `{"response":null,"valid":false,"message":"Player not found"}`},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var reply dto.ValidateUserResponse
			require.NoError(t, json.Unmarshal([]byte(tt.body), &reply))
			api := &fakeAPI{validate: reply}
			tu := NewTopUp(api, api)

			res, _, err := tu.ValidateIdentity(t.Context(), mlbb(), map[string]string{"playerId": "1", "server": "AS"})
			if !tt.accepted {
				var rejected *RejectedError
				require.True(t, errors.As(err, &rejected))
				assert.Equal(t, "Player not found", rejected.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Asha", res.Name)
		})
	}
}

func TestValidateIdentitySurfacesServerError(t *testing.T) {
	api := &fakeAPI{validateErr: &apiclient.APIError{Status: 400, Message: "Game is under maintenance"}}
	tu := NewTopUp(api, api)

	_, _, err := tu.ValidateIdentity(t.Context(), mlbb(), map[string]string{"playerId": "1", "server": "AS"})
	require.Error(t, err)
	assert.Equal(t, "Game is under maintenance", apiclient.Message(err))
}

func TestSelectPack(t *testing.T) {
	game := mlbb()
	pack := models.DiamondPack{ID: "p1", Amount: decimal.NewFromInt(250), Description: "250 Diamonds", Category: "Diamonds"}
	values := map[string]string{"playerId": "1", "server": "AS"}

	t.Run("requires login", func(t *testing.T) {
		s := newSession(t)
		_, err := SelectPack(t.Context(), s, auth.State{Token: "tok"}, game, pack, values, models.ValidationResult{})
		assert.ErrorIs(t, err, ErrLoginRequired)
		_, ok := s.SelectedPack()
		assert.False(t, ok)
	})

	t.Run("requires every field", func(t *testing.T) {
		s := newSession(t)
		_, err := SelectPack(t.Context(), s, auth.State{IsAuthenticated: true}, game, pack, map[string]string{"playerId": "1"}, models.ValidationResult{})
		assert.ErrorIs(t, err, ErrMissingFields)
	})

	t.Run("persists handoff", func(t *testing.T) {
		s := newSession(t)
		details, err := SelectPack(t.Context(), s, auth.State{IsAuthenticated: true}, game, pack, values, models.ValidationResult{Name: "Slayer", Server: "Asia"})
		require.NoError(t, err)

		stored, ok := s.SelectedPack()
		require.True(t, ok)
		assert.Equal(t, details.PackID, stored.PackID)
		assert.Equal(t, "g1", stored.GameID)
		assert.Equal(t, "Slayer", stored.PlayerName)
		assert.Equal(t, values, stored.Fields)
		assert.True(t, stored.Amount.Equal(decimal.NewFromInt(250)))
	})
}

package apiclient

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/hongminglow/all-in-store/internal/models"
	"github.com/hongminglow/all-in-store/internal/models/dto"
)

func (c *Client) SendOTP(ctx context.Context, req dto.SendOTPRequest) error {
	var out dto.Outcome
	return c.Do(ctx, http.MethodPost, "/user/send-otp", req, &out)
}

func (c *Client) VerifyOTP(ctx context.Context, req dto.VerifyOTPRequest) (dto.VerifyOTPResponse, error) {
	var out dto.VerifyOTPResponse
	err := c.Do(ctx, http.MethodPost, "/user/verify-otp", req, &out)
	return out, err
}

func (c *Client) CompleteRegistration(ctx context.Context, req dto.RegistrationRequest) (dto.SessionResponse, error) {
	var out dto.SessionResponse
	err := c.Do(ctx, http.MethodPost, "/user/complete-registration", req, &out)
	return out, err
}

// Me fetches the current profile. It doubles as session verification.
func (c *Client) Me(ctx context.Context) (models.UserProfile, error) {
	var out dto.ProfileResponse
	if err := c.Do(ctx, http.MethodGet, "/user/me", nil, &out); err != nil {
		return models.UserProfile{}, err
	}
	if out.User == nil {
		return models.UserProfile{}, nil
	}
	return *out.User, nil
}

func (c *Client) Dashboard(ctx context.Context) (dto.DashboardStats, error) {
	var out dto.DashboardResponse
	err := c.Do(ctx, http.MethodGet, "/user/dashboard", nil, &out)
	return out.Data, err
}

func (c *Client) Leaderboard(ctx context.Context) ([]dto.LeaderboardEntry, error) {
	var out dto.LeaderboardResponse
	err := c.Do(ctx, http.MethodGet, "/user/leaderboard", nil, &out)
	return out.Data, err
}

func (c *Client) Games(ctx context.Context) ([]models.Game, error) {
	var out dto.GamesResponse
	err := c.Do(ctx, http.MethodGet, "/games/get-all", nil, &out)
	return out.Games, err
}

// GameWithPacks returns a game's metadata and its diamond packs in one call.
func (c *Client) GameWithPacks(ctx context.Context, gameID string) (models.Game, []models.DiamondPack, error) {
	var out dto.GamePacksResponse
	err := c.Do(ctx, http.MethodGet, "/games/"+url.PathEscape(gameID)+"/diamond-packs", nil, &out)
	return out.Game, out.DiamondPacks, err
}

// ValidateUser posts the player's identity fields plus gameId.
func (c *Client) ValidateUser(ctx context.Context, gameID string, fields map[string]string) (dto.ValidateUserResponse, error) {
	body := make(map[string]string, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["gameId"] = gameID

	var out dto.ValidateUserResponse
	err := c.Do(ctx, http.MethodPost, "/games/validate-user", body, &out)
	return out, err
}

func (c *Client) CreateWalletOrder(ctx context.Context, body map[string]any) (dto.PaymentReply, error) {
	var out dto.PaymentReply
	err := c.Do(ctx, http.MethodPost, "/order/diamond-pack", body, &out)
	return out, err
}

func (c *Client) CreateUPIOrder(ctx context.Context, body map[string]any) (dto.PaymentReply, error) {
	var out dto.PaymentReply
	err := c.Do(ctx, http.MethodPost, "/order/diamond-pack-upi", body, &out)
	return out, err
}

func (c *Client) OrderStatus(ctx context.Context, orderID string) (models.Order, error) {
	var out dto.OrderStatusResponse
	q := url.Values{"orderId": {orderID}}
	err := c.Do(ctx, http.MethodGet, "/order/order-status?"+q.Encode(), nil, &out)
	return out.Data, err
}

func (c *Client) OrderHistory(ctx context.Context) ([]models.Order, error) {
	var out dto.OrderHistoryResponse
	err := c.Do(ctx, http.MethodGet, "/order/history", nil, &out)
	return out.Orders, err
}

func (c *Client) TransactionStatus(ctx context.Context, clientTxnID string) (models.Transaction, error) {
	var out dto.TransactionStatusResponse
	q := url.Values{"client_txn_id": {clientTxnID}}
	err := c.Do(ctx, http.MethodGet, "/transaction/status?"+q.Encode(), nil, &out)
	return out.Data, err
}

// AddWalletCoins starts a coin purchase; the reply carries the gateway URL.
func (c *Client) AddWalletCoins(ctx context.Context, req dto.WalletAddRequest) (dto.PaymentReply, error) {
	var out dto.PaymentReply
	err := c.Do(ctx, http.MethodPost, "/wallet/add", req, &out)
	return out, err
}

func (c *Client) UpdateProfile(ctx context.Context, req dto.UpdateProfileRequest) (dto.ProfileResponse, error) {
	var out dto.ProfileResponse
	err := c.Do(ctx, http.MethodPut, "/user/profile", req, &out)
	return out, err
}

func (c *Client) UploadProfilePicture(ctx context.Context, filename string, file io.Reader) (dto.ProfileResponse, error) {
	var out dto.ProfileResponse
	err := c.Upload(ctx, "/user/profile-picture", "profilePicture", filename, file, &out)
	return out, err
}

package flow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hongminglow/all-in-store/internal/clientstore"
	"github.com/hongminglow/all-in-store/internal/models"
	"github.com/hongminglow/all-in-store/internal/models/dto"
	"github.com/hongminglow/all-in-store/internal/storage/memory"
)

// fakeAPI records calls and returns canned replies.
type fakeAPI struct {
	calls []string

	game  models.Game
	packs []models.DiamondPack

	validate    dto.ValidateUserResponse
	validateErr error
	validated   map[string]string

	me    models.UserProfile
	meErr error

	orderReply dto.PaymentReply
	orderErr   error
	orderBody  map[string]any

	order models.Order
	txn   models.Transaction
	ids   []string

	verify    dto.VerifyOTPResponse
	verifyErr error
	otpReqs   []dto.SendOTPRequest
	verifyReq dto.VerifyOTPRequest
	register  dto.SessionResponse
}

func (f *fakeAPI) GameWithPacks(_ context.Context, id string) (models.Game, []models.DiamondPack, error) {
	f.calls = append(f.calls, "GameWithPacks")
	return f.game, f.packs, nil
}

func (f *fakeAPI) ValidateUser(_ context.Context, _ string, fields map[string]string) (dto.ValidateUserResponse, error) {
	f.calls = append(f.calls, "ValidateUser")
	f.validated = fields
	return f.validate, f.validateErr
}

func (f *fakeAPI) Me(context.Context) (models.UserProfile, error) {
	f.calls = append(f.calls, "Me")
	return f.me, f.meErr
}

func (f *fakeAPI) CreateWalletOrder(_ context.Context, body map[string]any) (dto.PaymentReply, error) {
	f.calls = append(f.calls, "CreateWalletOrder")
	f.orderBody = body
	return f.orderReply, f.orderErr
}

func (f *fakeAPI) CreateUPIOrder(_ context.Context, body map[string]any) (dto.PaymentReply, error) {
	f.calls = append(f.calls, "CreateUPIOrder")
	f.orderBody = body
	return f.orderReply, f.orderErr
}

func (f *fakeAPI) OrderStatus(_ context.Context, id string) (models.Order, error) {
	f.calls = append(f.calls, "OrderStatus")
	f.ids = append(f.ids, id)
	return f.order, nil
}

func (f *fakeAPI) TransactionStatus(_ context.Context, id string) (models.Transaction, error) {
	f.calls = append(f.calls, "TransactionStatus")
	f.ids = append(f.ids, id)
	return f.txn, nil
}

func (f *fakeAPI) SendOTP(_ context.Context, req dto.SendOTPRequest) error {
	f.calls = append(f.calls, "SendOTP")
	f.otpReqs = append(f.otpReqs, req)
	return nil
}

func (f *fakeAPI) VerifyOTP(_ context.Context, req dto.VerifyOTPRequest) (dto.VerifyOTPResponse, error) {
	f.calls = append(f.calls, "VerifyOTP")
	f.verifyReq = req
	return f.verify, f.verifyErr
}

func (f *fakeAPI) CompleteRegistration(context.Context, dto.RegistrationRequest) (dto.SessionResponse, error) {
	f.calls = append(f.calls, "CompleteRegistration")
	return f.register, nil
}

func newSession(t *testing.T) *clientstore.Session {
	t.Helper()
	s, err := clientstore.Open(t.Context(), memory.NewStore(), "sess", time.Hour)
	require.NoError(t, err)
	return s
}

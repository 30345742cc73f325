package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hongminglow/all-in-store/internal/apiclient"
	"github.com/hongminglow/all-in-store/internal/auth"
	"github.com/hongminglow/all-in-store/internal/clientstore"
	"github.com/hongminglow/all-in-store/internal/models"
	"github.com/hongminglow/all-in-store/internal/models/dto"
)

// OTPLength is the number of digits in a one-time code.
const OTPLength = 6

var (
	ErrIncompleteOTP     = errors.New("enter the complete 6-digit code")
	ErrInvalidIdentifier = errors.New("enter a valid phone number or email address")
	ErrNoLoginInProgress = errors.New("no login in progress")
	ErrMissingToken      = errors.New("server returned no session token")
	ErrInvalidRegistrant = errors.New("name, email and phone are required")
)

// DefaultLanding is where a fresh session goes when no intended path was recorded.
const DefaultLanding = "/dashboard"

// ParseIdentifier classifies raw as an email (contains @) or a phone number
// (digits with an optional leading +, 10 to 15 digits).
func ParseIdentifier(raw string) (clientstore.LoginData, error) {
	v := strings.TrimSpace(raw)
	if strings.Contains(v, "@") {
		at := strings.LastIndex(v, "@")
		if at == 0 || at == len(v)-1 || strings.ContainsAny(v, " \t") {
			return clientstore.LoginData{}, ErrInvalidIdentifier
		}
		return clientstore.LoginData{Method: clientstore.MethodEmail, Value: strings.ToLower(v)}, nil
	}

	digits := strings.TrimPrefix(v, "+")
	if len(digits) < 10 || len(digits) > 15 || !allDigits(digits) {
		return clientstore.LoginData{}, ErrInvalidIdentifier
	}
	return clientstore.LoginData{Method: clientstore.MethodPhone, Value: v}, nil
}

// JoinOTP concatenates the digit boxes. The result must be exactly six ASCII
// digits.
func JoinOTP(parts ...string) (string, error) {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strings.TrimSpace(p))
	}
	code := b.String()
	if len(code) != OTPLength || !allDigits(code) {
		return "", ErrIncompleteOTP
	}
	return code, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// AuthAPI is the part of the remote API the login flow talks to.
type AuthAPI interface {
	SendOTP(ctx context.Context, req dto.SendOTPRequest) error
	VerifyOTP(ctx context.Context, req dto.VerifyOTPRequest) (dto.VerifyOTPResponse, error)
	CompleteRegistration(ctx context.Context, req dto.RegistrationRequest) (dto.SessionResponse, error)
}

// VerifyOutcome tells the handler where to go after OTP verification.
type VerifyOutcome struct {
	RequiresRegistration bool
	Next                 string
}

// OTP drives login by one-time code and account registration.
type OTP struct {
	api AuthAPI
}

func NewOTP(api AuthAPI) *OTP {
	return &OTP{api: api}
}

func otpTarget(ld clientstore.LoginData) dto.SendOTPRequest {
	if ld.Method == clientstore.MethodEmail {
		return dto.SendOTPRequest{Email: ld.Value}
	}
	return dto.SendOTPRequest{Phone: ld.Value}
}

// Send requests a code for identifier and remembers the login in the session.
func (o *OTP) Send(ctx context.Context, session *clientstore.Session, identifier string) (clientstore.LoginData, error) {
	ld, err := ParseIdentifier(identifier)
	if err != nil {
		return clientstore.LoginData{}, err
	}
	if err := o.api.SendOTP(ctx, otpTarget(ld)); err != nil {
		return clientstore.LoginData{}, fmt.Errorf("send otp: %w", err)
	}
	if err := session.SetLoginData(ctx, ld); err != nil {
		return clientstore.LoginData{}, fmt.Errorf("persist login data: %w", err)
	}
	return ld, nil
}

// Resend requests a new code for the login already in progress.
func (o *OTP) Resend(ctx context.Context, session *clientstore.Session) error {
	ld, ok := session.LoginData()
	if !ok {
		return ErrNoLoginInProgress
	}
	if err := o.api.SendOTP(ctx, otpTarget(ld)); err != nil {
		return fmt.Errorf("resend otp: %w", err)
	}
	return nil
}

// Verify exchanges code for a session. On success the token is persisted,
// the OTP scratch keys are cleared and the intended path is consumed.
func (o *OTP) Verify(ctx context.Context, session *clientstore.Session, store *auth.Store, code string) (VerifyOutcome, error) {
	ld, ok := session.LoginData()
	if !ok {
		return VerifyOutcome{}, ErrNoLoginInProgress
	}

	store.Dispatch(auth.LoginStart())
	target := otpTarget(ld)
	reply, err := o.api.VerifyOTP(ctx, dto.VerifyOTPRequest{Phone: target.Phone, Email: target.Email, OTP: code})
	if err != nil {
		store.Dispatch(auth.LoginFailure(apiclient.Message(err)))
		return VerifyOutcome{}, fmt.Errorf("verify otp: %w", err)
	}

	if reply.RequiresRegistration {
		store.Dispatch(auth.Logout())
		if err := session.ClearLoginData(ctx); err != nil {
			return VerifyOutcome{}, fmt.Errorf("clear login data: %w", err)
		}
		return VerifyOutcome{RequiresRegistration: true, Next: "/register"}, nil
	}

	return o.establish(ctx, session, store, reply.Token, reply.User, auth.LoginSuccess, auth.LoginFailure)
}

// Registrant is the registration form.
type Registrant struct {
	Name  string
	Email string
	Phone string
}

// Prefill seeds the registration form from the login that led here.
func Prefill(session *clientstore.Session) Registrant {
	return Registrant{Email: session.LoginEmail(), Phone: session.LoginPhone()}
}

// Register creates the account and signs the visitor in.
func (o *OTP) Register(ctx context.Context, session *clientstore.Session, store *auth.Store, r Registrant) (VerifyOutcome, error) {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" || strings.TrimSpace(r.Email) == "" || strings.TrimSpace(r.Phone) == "" {
		return VerifyOutcome{}, ErrInvalidRegistrant
	}
	email, err := ParseIdentifier(r.Email)
	if err != nil || email.Method != clientstore.MethodEmail {
		return VerifyOutcome{}, ErrInvalidIdentifier
	}
	phone, err := ParseIdentifier(r.Phone)
	if err != nil || phone.Method != clientstore.MethodPhone {
		return VerifyOutcome{}, ErrInvalidIdentifier
	}

	store.Dispatch(auth.RegisterStart())
	reply, err := o.api.CompleteRegistration(ctx, dto.RegistrationRequest{Name: r.Name, Email: email.Value, Phone: phone.Value})
	if err != nil {
		store.Dispatch(auth.RegisterFailure(apiclient.Message(err)))
		return VerifyOutcome{}, fmt.Errorf("complete registration: %w", err)
	}
	return o.establish(ctx, session, store, reply.Token, reply.User, auth.RegisterSuccess, auth.RegisterFailure)
}

func (o *OTP) establish(
	ctx context.Context,
	session *clientstore.Session,
	store *auth.Store,
	token string,
	user *models.UserProfile,
	succeed func(models.UserProfile, string) auth.Action,
	fail func(string) auth.Action,
) (VerifyOutcome, error) {
	if token == "" {
		store.Dispatch(fail(ErrMissingToken.Error()))
		return VerifyOutcome{}, ErrMissingToken
	}

	var profile models.UserProfile
	if user != nil {
		profile = *user
	}
	store.Dispatch(succeed(profile, token))

	if err := session.SetAuthToken(ctx, token); err != nil {
		return VerifyOutcome{}, fmt.Errorf("persist token: %w", err)
	}
	if err := session.ClearLoginFlow(ctx); err != nil {
		return VerifyOutcome{}, fmt.Errorf("clear login flow: %w", err)
	}
	next, err := session.TakeIntendedPath(ctx)
	if err != nil {
		return VerifyOutcome{}, fmt.Errorf("consume intended path: %w", err)
	}
	if next == "" {
		next = DefaultLanding
	}
	return VerifyOutcome{Next: next}, nil
}

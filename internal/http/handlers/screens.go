package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/hongminglow/all-in-store/internal/apiclient"
	"github.com/hongminglow/all-in-store/internal/auth"
	"github.com/hongminglow/all-in-store/internal/clientstore"
	"github.com/hongminglow/all-in-store/internal/flow"
	"github.com/hongminglow/all-in-store/internal/views"
)

// Flash kinds.
const (
	flashSuccess = "success"
	flashError   = "error"
	flashInfo    = "info"
)

// Screens holds what every screen handler needs to render and redirect.
type Screens struct {
	views  *views.Renderer
	logger *zap.SugaredLogger
}

// NewScreens creates the shared rendering helpers.
func NewScreens(renderer *views.Renderer, logger *zap.SugaredLogger) *Screens {
	return &Screens{views: renderer, logger: logger}
}

func sessionFrom(r *http.Request) *clientstore.Session {
	return clientstore.FromContext(r.Context())
}

func storeFrom(r *http.Request) *auth.Store {
	if st := auth.FromContext(r.Context()); st != nil {
		return st
	}
	return auth.NewStore()
}

// page renders one screen with the current auth state and queued flashes.
func (s *Screens) page(w http.ResponseWriter, r *http.Request, status int, name, title string, data any, errMsg string) {
	var flashes []clientstore.Flash
	if session := sessionFrom(r); session != nil {
		var err error
		if flashes, err = session.TakeFlashes(r.Context()); err != nil {
			s.logger.Warnw("take flashes", "error", err)
		}
	}

	p := views.Page{
		Title:   title,
		Auth:    storeFrom(r).State(),
		Flashes: flashes,
		Error:   errMsg,
		Data:    data,
	}
	if err := s.views.Render(w, status, name, p); err != nil {
		s.logger.Errorw("render page", "page", name, "error", err, "request_id", apiclient.RequestIDFrom(r.Context()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (s *Screens) flash(r *http.Request, kind, message string) {
	session := sessionFrom(r)
	if session == nil {
		return
	}
	if err := session.AddFlash(r.Context(), kind, message); err != nil {
		s.logger.Warnw("add flash", "error", err)
	}
}

func (s *Screens) redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}

type errorData struct {
	Heading string
	Message string
	Retry   string
}

// Fail renders the error screen. It doubles as the guards' error renderer.
func (s *Screens) Fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	heading := "Something went wrong"
	if errors.Is(err, apiclient.ErrNetwork) {
		heading = "Connection problem"
	}
	retry := r.URL.RequestURI()
	if r.Method != http.MethodGet {
		retry = r.URL.Path
	}
	s.page(w, r, status, "error", heading, errorData{Heading: heading, Message: userMessage(err), Retry: retry}, "")
}

// failAPI maps a backend failure onto the error screen. A cancelled request
// has no one left to render for.
func (s *Screens) failAPI(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		s.logger.Debugw("request cancelled", "path", r.URL.Path)
		return
	}
	s.logger.Warnw("backend call failed", "path", r.URL.Path, "error", err, "request_id", apiclient.RequestIDFrom(r.Context()))
	s.Fail(w, r, statusFor(err), err)
}

func statusFor(err error) int {
	var apiErr *apiclient.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound:
		return http.StatusNotFound
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	case errors.Is(err, apiclient.ErrNetwork), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// userFacing are local validation errors whose text is shown as is.
var userFacing = []error{
	flow.ErrIncompleteOTP,
	flow.ErrInvalidIdentifier,
	flow.ErrInvalidRegistrant,
	flow.ErrNoPaymentLink,
	flow.ErrUnknownMethod,
	flow.ErrNoSelection,
	flow.ErrPackNotFound,
	errInvalidAmount,
	errMissingName,
}

// userMessage turns any error into text safe to show a visitor.
func userMessage(err error) string {
	var (
		apiErr       *apiclient.APIError
		missing      *flow.MissingFieldsError
		rejected     *flow.RejectedError
		insufficient *flow.InsufficientBalanceError
	)
	switch {
	case errors.As(err, &apiErr), errors.Is(err, apiclient.ErrNetwork):
		return apiclient.Message(err)
	case errors.Is(err, flow.ErrMissingParameter):
		return flow.MissingParameterMessage
	case errors.As(err, &missing):
		return missing.Error()
	case errors.As(err, &rejected):
		return rejected.Error()
	case errors.As(err, &insufficient):
		return insufficient.Error()
	}
	for _, known := range userFacing {
		if errors.Is(err, known) {
			return sentence(known.Error())
		}
	}
	return apiclient.Message(err)
}

func sentence(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:] + "."
}

func formValue(r *http.Request, name string) string {
	return strings.TrimSpace(r.PostFormValue(name))
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/all-in-store/internal/auth"
	"github.com/hongminglow/all-in-store/internal/clientstore"
	"github.com/hongminglow/all-in-store/internal/flow"
	"github.com/hongminglow/all-in-store/internal/middleware"
)

// AuthHandler owns the OTP login, registration and logout screens.
type AuthHandler struct {
	*Screens
	otp *flow.OTP
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(screens *Screens, otp *flow.OTP) *AuthHandler {
	return &AuthHandler{Screens: screens, otp: otp}
}

// Register attaches auth routes. Login-style screens sit behind PublicRoute.
func (h *AuthHandler) Register(r chi.Router, guards *middleware.Guards) {
	r.Group(func(r chi.Router) {
		r.Use(guards.Public)
		r.Get("/login", h.showLogin)
		r.Post("/login", h.sendOTP)
		r.Get(auth.OTPPath, h.showOTP)
		r.Post(auth.OTPPath, h.verifyOTP)
		r.Post(auth.OTPPath+"/resend", h.resendOTP)
		r.Get("/register", h.showRegister)
		r.Post("/register", h.register)
	})
	r.Post("/logout", h.logout)
}

type loginData struct {
	Identifier string
}

func (h *AuthHandler) showLogin(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, http.StatusOK, "login", "Log in", loginData{}, "")
}

func (h *AuthHandler) sendOTP(w http.ResponseWriter, r *http.Request) {
	identifier := formValue(r, "identifier")
	if _, err := h.otp.Send(r.Context(), sessionFrom(r), identifier); err != nil {
		status := http.StatusUnprocessableEntity
		if !errors.Is(err, flow.ErrInvalidIdentifier) {
			status = statusFor(err)
		}
		h.page(w, r, status, "login", "Log in", loginData{Identifier: identifier}, userMessage(err))
		return
	}
	h.flash(r, flashSuccess, "We sent you a one-time code.")
	h.redirect(w, r, auth.OTPPath)
}

type otpData struct {
	Login clientstore.LoginData
	Boxes []int
}

func (h *AuthHandler) renderOTP(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	ld, _ := sessionFrom(r).LoginData()
	boxes := make([]int, flow.OTPLength)
	for i := range boxes {
		boxes[i] = i + 1
	}
	h.page(w, r, status, "verify_otp", "Verify code", otpData{Login: ld, Boxes: boxes}, errMsg)
}

func (h *AuthHandler) showOTP(w http.ResponseWriter, r *http.Request) {
	h.renderOTP(w, r, http.StatusOK, "")
}

func (h *AuthHandler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderOTP(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}
	code, err := flow.JoinOTP(r.PostForm["otp"]...)
	if err != nil {
		h.renderOTP(w, r, http.StatusUnprocessableEntity, userMessage(err))
		return
	}

	out, err := h.otp.Verify(r.Context(), sessionFrom(r), storeFrom(r), code)
	switch {
	case errors.Is(err, flow.ErrNoLoginInProgress):
		h.flash(r, flashInfo, "Your login expired. Please start again.")
		h.redirect(w, r, "/login")
	case err != nil:
		h.renderOTP(w, r, http.StatusUnprocessableEntity, userMessage(err))
	case out.RequiresRegistration:
		h.flash(r, flashInfo, "Almost there. Tell us a little about yourself.")
		h.redirect(w, r, out.Next)
	default:
		h.flash(r, flashSuccess, "You are logged in.")
		h.redirect(w, r, out.Next)
	}
}

func (h *AuthHandler) resendOTP(w http.ResponseWriter, r *http.Request) {
	err := h.otp.Resend(r.Context(), sessionFrom(r))
	switch {
	case errors.Is(err, flow.ErrNoLoginInProgress):
		h.redirect(w, r, "/login")
		return
	case err != nil:
		h.flash(r, flashError, userMessage(err))
	default:
		h.flash(r, flashSuccess, "A new code is on its way.")
	}
	h.redirect(w, r, auth.OTPPath)
}

type registerData struct {
	Form flow.Registrant
}

func (h *AuthHandler) showRegister(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, http.StatusOK, "register", "Register", registerData{Form: flow.Prefill(sessionFrom(r))}, "")
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	form := flow.Registrant{
		Name:  formValue(r, "name"),
		Email: formValue(r, "email"),
		Phone: formValue(r, "phone"),
	}
	out, err := h.otp.Register(r.Context(), sessionFrom(r), storeFrom(r), form)
	if err != nil {
		h.page(w, r, http.StatusUnprocessableEntity, "register", "Register", registerData{Form: form}, userMessage(err))
		return
	}
	h.flash(r, flashSuccess, "Welcome to All In Store!")
	h.redirect(w, r, out.Next)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	storeFrom(r).Dispatch(auth.Logout())
	// Logging out forgets everything the session held, token included.
	if session := sessionFrom(r); session != nil {
		if err := session.Destroy(r.Context()); err != nil {
			h.logger.Warnw("destroy session on logout", "session", session.ID(), "error", err)
		}
	}
	h.flash(r, flashInfo, "You have been logged out.")
	h.redirect(w, r, "/login")
}

package auth

// Decision is the outcome of a route guard.
type Decision int

const (
	// Allow renders the guarded screen.
	Allow Decision = iota
	// RedirectLogin sends the visitor to /login, remembering the attempted path.
	RedirectLogin
	// Verify runs the AuthChecker before deciding.
	Verify
	// RedirectHome sends an authenticated visitor away from a public-only screen.
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case Verify:
		return "verify"
	case RedirectHome:
		return "redirect-home"
	default:
		return "unknown"
	}
}

// OTPPath is the OTP verification screen. PublicRoute never redirects away from it.
const OTPPath = "/verify-otp"

// DecideProtected implements ProtectedRoute. The store is the source of
// truth; the durable token is only a bootstrap hint that triggers verification.
func DecideProtected(st State, durableToken string) Decision {
	switch {
	case st.IsAuthenticated:
		return Allow
	case st.IsLoading:
		return Verify
	case st.Token == "" && durableToken == "":
		return RedirectLogin
	default:
		return Verify
	}
}

// DecidePublic implements PublicRoute for login/register/OTP screens.
func DecidePublic(st State, durableToken, path string) Decision {
	if path == OTPPath {
		return Allow
	}
	switch {
	case st.IsAuthenticated:
		return RedirectHome
	case st.IsLoading:
		return Allow
	case st.Token != "" || durableToken != "":
		return Verify
	default:
		return Allow
	}
}

package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hongminglow/all-in-store/internal/apiclient"
	"github.com/hongminglow/all-in-store/internal/catalog"
	"github.com/hongminglow/all-in-store/internal/config"
	"github.com/hongminglow/all-in-store/internal/storage/memory"
	"github.com/hongminglow/all-in-store/internal/views"
)

const testToken = "tok-1"

// backend fakes the remote REST API.
type backend struct {
	mu      sync.Mutex
	balance string
	revoked bool
	noStats bool
	calls   map[string]int
	bodies  map[string]map[string]any
}

func (b *backend) hit(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[name]++
}

func (b *backend) count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[name]
}

func (b *backend) revoke() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked = true
}

func (b *backend) authorized(r *http.Request) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.revoked && r.Header.Get("Authorization") == "Bearer "+testToken
}

func (b *backend) user() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return `{"id":"u1","name":"Asha","phone":"9876543210","walletBalance":"` + b.balance + `"}`
}

func (b *backend) record(name string, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[name]++
	b.bodies[name] = body
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, body string) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
	unauthorized := func(w http.ResponseWriter) {
		w.WriteHeader(http.StatusUnauthorized)
		write(w, `{"success":false,"message":"Session expired"}`)
	}

	mux.HandleFunc("POST /api/user/send-otp", func(w http.ResponseWriter, r *http.Request) {
		b.record("send-otp", r)
		write(w, `{"success":true}`)
	})
	mux.HandleFunc("POST /api/user/verify-otp", func(w http.ResponseWriter, r *http.Request) {
		b.record("verify-otp", r)
		write(w, `{"success":true,"token":"`+testToken+`","user":`+b.user()+`}`)
	})
	mux.HandleFunc("GET /api/user/me", func(w http.ResponseWriter, r *http.Request) {
		b.hit("me")
		if !b.authorized(r) {
			unauthorized(w)
			return
		}
		write(w, `{"success":true,"user":`+b.user()+`}`)
	})
	mux.HandleFunc("GET /api/user/dashboard", func(w http.ResponseWriter, r *http.Request) {
		b.hit("dashboard")
		b.mu.Lock()
		down := b.noStats
		b.mu.Unlock()
		if down {
			w.WriteHeader(http.StatusInternalServerError)
			write(w, `{}`)
			return
		}
		write(w, `{"data":{"totalOrders":2,"totalSpent":"500","walletBalance":"1000","recentOrders":[]}}`)
	})
	mux.HandleFunc("GET /api/games/get-all", func(w http.ResponseWriter, r *http.Request) {
		b.hit("games")
		write(w, `{"games":[{"id":"g1","name":"Mobile Legends"}]}`)
	})
	mux.HandleFunc("GET /api/games/g1/diamond-packs", func(w http.ResponseWriter, r *http.Request) {
		b.hit("packs")
		write(w, `{"game":{"id":"g1","name":"Mobile Legends","validationFields":["playerId","server"],"regionList":[{"code":"AS","name":"Asia"}]},
			"diamondPacks":[{"id":"p1","amount":"250","description":"250 Diamonds","category":"Diamonds"}]}`)
	})
	mux.HandleFunc("POST /api/games/validate-user", func(w http.ResponseWriter, r *http.Request) {
		b.record("validate", r)
		b.mu.Lock()
		unknown := b.bodies["validate"]["playerId"] == "0"
		b.mu.Unlock()
		if unknown {
			w.WriteHeader(http.StatusNotFound)
			write(w, `{"message":"Player not found"}`)
			return
		}
		write(w, `{"valid":true,"data":{"username":"Slayer","server":"Asia"}}`)
	})
	mux.HandleFunc("POST /api/order/diamond-pack", func(w http.ResponseWriter, r *http.Request) {
		b.record("order", r)
		write(w, `{"success":true,"orderId":"ORD-1"}`)
	})
	mux.HandleFunc("POST /api/order/diamond-pack-upi", func(w http.ResponseWriter, r *http.Request) {
		b.record("upi", r)
		write(w, `{"success":true,"data":{"paymentUrl":"https://pay.example/upi/1"}}`)
	})
	mux.HandleFunc("GET /api/order/order-status", func(w http.ResponseWriter, r *http.Request) {
		b.hit("order-status")
		write(w, `{"data":{"orderId":"`+r.URL.Query().Get("orderId")+`","status":"completed","amount":"250"}}`)
	})
	mux.HandleFunc("GET /api/transaction/status", func(w http.ResponseWriter, r *http.Request) {
		b.hit("txn-status")
		write(w, `{"data":{"status":"pending"}}`)
	})
	mux.HandleFunc("POST /api/wallet/add", func(w http.ResponseWriter, r *http.Request) {
		b.record("wallet", r)
		write(w, `{"success":true,"data":{"paymentUrl":"https://pay.example/txn/9"}}`)
	})
	return mux
}

type harness struct {
	t       *testing.T
	backend *backend
	base    string
	client  *http.Client
}

func newHarness(t *testing.T, balance string) *harness {
	t.Helper()
	b := &backend{balance: balance, calls: map[string]int{}, bodies: map[string]map[string]any{}}
	remote := httptest.NewServer(b.handler())
	t.Cleanup(remote.Close)

	cfg := config.Config{
		APIBaseURL:    remote.URL + "/api",
		PublicBaseURL: "http://shop.test",
		SessionSecret: "0123456789abcdef0123456789abcdef",
		SessionIssuer: "all-in-store-test",
		SessionTTL:    time.Hour,
		CORSOrigins:   []string{"*"},
	}
	api := apiclient.New(cfg.APIBaseURL, remote.Client(), nil)
	games, err := catalog.NewCache(api, 0)
	require.NoError(t, err)
	renderer, err := views.New()
	require.NoError(t, err)

	site := httptest.NewServer(NewHandler(cfg, Deps{
		API:      api,
		Catalog:  games,
		Sessions: memory.NewStore(),
		Views:    renderer,
		Logger:   zap.NewNop().Sugar(),
	}))
	t.Cleanup(site.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &harness{t: t, backend: b, base: site.URL, client: client}
}

func (h *harness) get(path string) (*http.Response, string) {
	h.t.Helper()
	resp, err := h.client.Get(h.base + path)
	require.NoError(h.t, err)
	return h.read(resp)
}

func (h *harness) post(path string, form url.Values) (*http.Response, string) {
	h.t.Helper()
	resp, err := h.client.PostForm(h.base+path, form)
	require.NoError(h.t, err)
	return h.read(resp)
}

func (h *harness) read(resp *http.Response) (*http.Response, string) {
	h.t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return resp, string(body)
}

func otpForm(code string) url.Values {
	v := url.Values{}
	for _, c := range code {
		v.Add("otp", string(c))
	}
	return v
}

// login runs the OTP flow and returns where verification redirected to.
func (h *harness) login() string {
	h.t.Helper()
	resp, _ := h.post("/login", url.Values{"identifier": {"9876543210"}})
	require.Equal(h.t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(h.t, "/verify-otp", resp.Header.Get("Location"))

	resp, _ = h.post("/verify-otp", otpForm("123456"))
	require.Equal(h.t, http.StatusSeeOther, resp.StatusCode)
	return resp.Header.Get("Location")
}

func TestHealth(t *testing.T) {
	h := newHarness(t, "0")
	resp, body := h.get("/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"status":"ok"`)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestCatalog(t *testing.T) {
	h := newHarness(t, "0")
	resp, body := h.get("/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Mobile Legends")
	assert.Contains(t, body, `href="/login"`)
}

func TestProtectedScreenResumesAfterLogin(t *testing.T) {
	h := newHarness(t, "1000")

	resp, _ := h.get("/dashboard")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.Zero(t, h.backend.count("me"))

	assert.Equal(t, "/dashboard", h.login())
	assert.Equal(t, map[string]any{"phone": "9876543210", "otp": "123456"}, h.backend.bodies["verify-otp"])

	resp, body := h.get("/dashboard")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Welcome, Asha")
	assert.Contains(t, body, "Mobile Legends")
	assert.Equal(t, 1, h.backend.count("dashboard"))
	assert.Equal(t, 1, h.backend.count("games"))

	resp, _ = h.get("/login")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func TestIncompleteOTPMakesNoCall(t *testing.T) {
	h := newHarness(t, "0")
	h.post("/login", url.Values{"identifier": {"asha@example.com"}})

	resp, body := h.post("/verify-otp", otpForm("12345"))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Enter the complete 6-digit code.")
	assert.Zero(t, h.backend.count("verify-otp"))
}

func TestSelectPackRequiresLogin(t *testing.T) {
	h := newHarness(t, "1000")

	resp, _ := h.post("/games/g1/packs/p1", url.Values{"playerId": {"1"}, "server": {"AS"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	assert.Equal(t, "/games/g1", h.login())
}

func TestWalletCheckout(t *testing.T) {
	h := newHarness(t, "1000")
	h.login()

	resp, _ := h.post("/games/g1/packs/p1", url.Values{"playerId": {"123"}, "server": {"Asia"}, "_playerName": {"Slayer"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/checkout", resp.Header.Get("Location"))

	resp, body := h.get("/checkout")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "250 Diamonds")
	assert.Contains(t, body, "Slayer")

	resp, _ = h.post("/checkout", url.Values{"method": {"wallet"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/order-status?orderId=ORD-1", resp.Header.Get("Location"))
	assert.Equal(t, map[string]any{"diamondPackId": "p1", "quantity": float64(1), "playerId": "123", "server": "AS"}, h.backend.bodies["order"])

	resp, body = h.get("/order-status?orderId=ORD-1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Payment successful")
	assert.Contains(t, body, "ORD-1")

	resp, _ = h.get("/checkout")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode, "selection cleared after ordering")
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestInsufficientBalanceIsPreempted(t *testing.T) {
	h := newHarness(t, "100")
	h.login()
	h.post("/games/g1/packs/p1", url.Values{"playerId": {"123"}, "server": {"AS"}})

	resp, body := h.post("/checkout", url.Values{"method": {"wallet"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Insufficient CRED Coins: balance 100, pack costs 250")
	assert.Zero(t, h.backend.count("order"))
}

func TestPaymentStatusWithoutIDMakesNoCall(t *testing.T) {
	h := newHarness(t, "0")
	h.login()

	resp, body := h.get("/payment-status")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Missing required parameter")
	assert.Zero(t, h.backend.count("txn-status"))

	resp, body = h.get("/payment-status?txn_id=T1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Payment pending")
	assert.Equal(t, 1, h.backend.count("txn-status"))
}

func TestRevokedTokenIsPurged(t *testing.T) {
	h := newHarness(t, "0")
	h.login()
	h.backend.revoke()

	resp, _ := h.get("/orders")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, body := h.get("/session")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"hasToken":false`)
	assert.NotContains(t, body, testToken)
}

func TestValidateJSON(t *testing.T) {
	h := newHarness(t, "0")

	req, err := http.NewRequest(http.MethodPost, h.base+"/games/g1/validate", strings.NewReader(url.Values{"playerId": {"1"}, "server": {"AS"}}.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	resp, err := h.client.Do(req)
	require.NoError(t, err)
	_, body := h.read(resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"name":"Slayer"`)
	assert.Equal(t, map[string]any{"playerId": "1", "server": "AS", "gameId": "g1"}, h.backend.bodies["validate"])

	req, err = http.NewRequest(http.MethodPost, h.base+"/games/g1/validate", strings.NewReader("playerId=1"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	resp, err = h.client.Do(req)
	require.NoError(t, err)
	_, body = h.read(resp)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Please fill in: Server")
}

func TestDashboardSlicesFailIndependently(t *testing.T) {
	h := newHarness(t, "0")
	h.login()

	resp, body := h.get("/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "500.00")
	assert.Contains(t, body, "Mobile Legends")

	h.backend.mu.Lock()
	h.backend.noStats = true
	h.backend.mu.Unlock()

	resp, body = h.get("/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Something went wrong. Please try again.")
	assert.Contains(t, body, "Mobile Legends")
}

func TestWalletTopUp(t *testing.T) {
	h := newHarness(t, "0")
	h.login()

	resp, body := h.post("/wallet", url.Values{"amount": {"-5"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Enter an amount greater than zero.")
	assert.Zero(t, h.backend.count("wallet"))

	resp, _ = h.post("/wallet", url.Values{"amount": {"250"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "https://pay.example/txn/9", resp.Header.Get("Location"))
	assert.Equal(t, map[string]any{"amount": "250", "redirectUrl": "http://shop.test/payment-status"}, h.backend.bodies["wallet"])
}

func TestValidateUnknownPlayer(t *testing.T) {
	h := newHarness(t, "0")

	resp, body := h.post("/games/g1/validate", url.Values{"playerId": {"0"}, "server": {"AS"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Player not found")

	req, err := http.NewRequest(http.MethodPost, h.base+"/games/g1/validate", strings.NewReader(url.Values{"playerId": {"0"}, "server": {"AS"}}.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	resp, err = h.client.Do(req)
	require.NoError(t, err)
	_, body = h.read(resp)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, `"message":"Player not found"`)
}

func TestUPICheckoutWhenWalletFallsShort(t *testing.T) {
	h := newHarness(t, "200")
	h.login()
	h.post("/games/g1/packs/p1", url.Values{"playerId": {"123"}, "server": {"AS"}})

	resp, body := h.get("/checkout")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="wallet" disabled`)
	assert.Contains(t, body, `value="upi" checked`)

	resp, _ = h.post("/checkout", url.Values{"method": {"wallet"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Zero(t, h.backend.count("order"))

	resp, _ = h.post("/checkout", url.Values{"method": {"upi"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "https://pay.example/upi/1", resp.Header.Get("Location"))
	assert.Equal(t, "p1", h.backend.bodies["upi"]["diamondPackId"])
	assert.Equal(t, "http://shop.test/payment-status", h.backend.bodies["upi"]["redirectUrl"])
	assert.Zero(t, h.backend.count("order"))
}

func TestLogoutForgetsSession(t *testing.T) {
	h := newHarness(t, "1000")
	h.login()
	h.post("/games/g1/packs/p1", url.Values{"playerId": {"123"}, "server": {"AS"}})

	_, body := h.get("/session")
	require.Contains(t, body, `"packSelected":true`)

	resp, _ := h.post("/logout", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	_, body = h.get("/session")
	assert.Contains(t, body, `"hasToken":false`)
	assert.Contains(t, body, `"packSelected":false`)

	resp, _ = h.get("/orders")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

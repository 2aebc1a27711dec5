package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashenafi-pixel/minicasino/config"
	"github.com/Ashenafi-pixel/minicasino/monitoring"
	"github.com/Ashenafi-pixel/minicasino/profile"
	"github.com/Ashenafi-pixel/minicasino/rng"
	"github.com/Ashenafi-pixel/minicasino/round"
	"github.com/Ashenafi-pixel/minicasino/session"
)

// newTestServer uses a fixed random source of 0, so every crash round crashes at 1.00.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	store, err := profile.NewFileStore(dir)
	require.NoError(t, err)
	metrics := monitoring.New()
	cfg := &config.Config{
		Env:            "test",
		ProfileBackend: config.BackendFile,
		JWTSecret:      "test-secret",
		TokenTTL:       time.Hour,
	}
	sessions := session.NewRegistry(session.Deps{
		Store:     store,
		Results:   round.NewResultsStore(dir),
		History:   round.NewHistoryStore(dir),
		Metrics:   metrics,
		Source:    rng.NewFixed(0),
		CrashTick: time.Hour,
	}, decimal.NewFromInt(1000))
	accounts := profile.NewAccounts(store, decimal.NewFromInt(500), nil)
	return New(cfg, accounts, sessions, metrics, nil)
}

func do(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func guestToken(t *testing.T, s *Server) string {
	t.Helper()
	w := do(t, s, http.MethodPost, "/api/auth/guest", "", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[authResponse](t, w).Token
}

func assertAPIError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, w.Code, w.Body.String())
	assert.Equal(t, code, decode[APIError](t, w).Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestListGames(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/api/games", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[map[string][]map[string]any](t, w)["games"]
	require.Len(t, list, 2)
	assert.Equal(t, "blackjack", list[0]["id"])
	assert.Equal(t, "crash", list[1]["id"])
}

func TestGetGame(t *testing.T) {
	s := newTestServer(t)
	w := do(t, s, http.MethodGet, "/api/games/crash", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode[map[string]any](t, w)["watchOnly"])

	assertAPIError(t, do(t, s, http.MethodGet, "/api/games/scratch", "", nil), http.StatusNotFound, "GAME_NOT_FOUND")
}

func TestAuth_RegisterLoginGuest(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/auth/register", "", credentialsRequest{Username: "ada", Password: "pw"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reg := decode[authResponse](t, w)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "ada", reg.Profile.Name)
	assert.Equal(t, "500.00", reg.Profile.Balance)

	w = do(t, s, http.MethodPost, "/api/auth/register", "", credentialsRequest{Username: "ada", Password: "other"})
	assertAPIError(t, w, http.StatusConflict, "USERNAME_TAKEN")

	w = do(t, s, http.MethodPost, "/api/auth/register", "", credentialsRequest{Username: "bo"})
	assertAPIError(t, w, http.StatusBadRequest, "CREDENTIALS_REQUIRED")

	w = do(t, s, http.MethodPost, "/api/auth/login", "", credentialsRequest{Username: "ada", Password: "nope"})
	assertAPIError(t, w, http.StatusUnauthorized, "INVALID_CREDENTIALS")

	w = do(t, s, http.MethodPost, "/api/auth/login", "", credentialsRequest{Username: "ada", Password: "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, reg.Profile.PlayerID, decode[authResponse](t, w).Profile.PlayerID)

	token := guestToken(t, s)
	w = do(t, s, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[profileView](t, w)
	assert.True(t, p.Guest)
	assert.Equal(t, profile.GuestName, p.Name)
	assert.Equal(t, "500.00", p.Balance)
}

func TestAuth_RejectsMissingAndBadTokens(t *testing.T) {
	s := newTestServer(t)
	assertAPIError(t, do(t, s, http.MethodGet, "/api/profile", "", nil), http.StatusUnauthorized, "TOKEN_REQUIRED")
	assertAPIError(t, do(t, s, http.MethodGet, "/api/profile", "garbage", nil), http.StatusUnauthorized, "INVALID_TOKEN")

	other := tokens{secret: []byte("other-secret"), ttl: time.Hour}
	forged, _, err := other.issue("p1")
	require.NoError(t, err)
	assertAPIError(t, do(t, s, http.MethodGet, "/api/profile", forged, nil), http.StatusUnauthorized, "INVALID_TOKEN")
}

func TestTokens(t *testing.T) {
	tk := tokens{secret: []byte("k"), ttl: time.Minute}
	raw, exp, err := tk.issue("player-7")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 2*time.Second)

	id, err := tk.parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "player-7", id)

	expired, _, err := tokens{secret: []byte("k"), ttl: -time.Minute}.issue("player-7")
	require.NoError(t, err)
	_, err = tk.parse(expired)
	assert.ErrorIs(t, err, errInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.StandardClaims{
		Issuer:  tokenIssuer,
		Subject: "player-7",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tk.parse(unsigned)
	assert.ErrorIs(t, err, errInvalidToken)
}

func TestBlackjackAPI(t *testing.T) {
	s := newTestServer(t)
	token := guestToken(t, s)

	assertAPIError(t, do(t, s, http.MethodPost, "/api/blackjack/bet", token, map[string]any{"amount": "abc"}), http.StatusBadRequest, "INVALID_BET")
	assertAPIError(t, do(t, s, http.MethodPost, "/api/blackjack/bet", token, map[string]any{"amount": 0}), http.StatusBadRequest, "INVALID_BET")
	assertAPIError(t, do(t, s, http.MethodPost, "/api/blackjack/bet", token, map[string]any{"amount": "500.01"}), http.StatusBadRequest, "INSUFFICIENT_FUNDS")
	assertAPIError(t, do(t, s, http.MethodPost, "/api/blackjack/hit", token, nil), http.StatusConflict, "INVALID_STATE")
	assertAPIError(t, do(t, s, http.MethodPost, "/api/blackjack/start", token, nil), http.StatusConflict, "INVALID_STATE")

	w := do(t, s, http.MethodPost, "/api/blackjack/bet", token, map[string]any{"amount": "25"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	bet := decode[map[string]any](t, w)
	assert.Equal(t, "betting", bet["state"])

	w = do(t, s, http.MethodPost, "/api/blackjack/start", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	started := decode[map[string]any](t, w)
	assert.Contains(t, []any{"player_turn", "settled"}, started["state"])

	if started["state"] == "player_turn" {
		assert.Contains(t, started["dealerHand"], "??")
		w = do(t, s, http.MethodPost, "/api/blackjack/stand", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "settled", decode[map[string]any](t, w)["state"])
	}

	w = do(t, s, http.MethodPost, "/api/blackjack/reset", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "betting", decode[map[string]any](t, w)["state"])

	w = do(t, s, http.MethodGet, "/api/rounds", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	rounds := decode[map[string][]map[string]any](t, w)["rounds"]
	require.Len(t, rounds, 1)
	assert.Equal(t, "blackjack", rounds[0]["game"])
}

func TestCrashAPI(t *testing.T) {
	s := newTestServer(t)
	token := guestToken(t, s)

	assertAPIError(t, do(t, s, http.MethodPost, "/api/crash/cashout", token, nil), http.StatusConflict, "INVALID_STATE")
	assertAPIError(t, do(t, s, http.MethodPost, "/api/crash/auto", token, map[string]any{"target": "0.5"}), http.StatusBadRequest, "INVALID_AUTO_CASHOUT")

	w := do(t, s, http.MethodPost, "/api/crash/arm", token, map[string]any{"bet": "50"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	snap := decode[map[string]any](t, w)
	assert.Equal(t, "settled", snap["state"], "crash point 1.00 settles on arm")
	point, err := decimal.NewFromString(snap["crashPoint"].(string))
	require.NoError(t, err)
	assert.Equal(t, "1.00", point.StringFixed(2))

	w = do(t, s, http.MethodGet, "/api/crash/history", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	h := decode[map[string]any](t, w)
	assert.Equal(t, []any{"1.00"}, h["recent"])
	assert.Equal(t, "1.00", h["highest"])

	w = do(t, s, http.MethodGet, "/api/profile", token, nil)
	assert.Equal(t, "450.00", decode[profileView](t, w).Balance)

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/crash/reset", token, nil).Code)
	assertAPIError(t, do(t, s, http.MethodPost, "/api/crash/skip", token, nil), http.StatusConflict, "INVALID_STATE")
}

func TestGetRound(t *testing.T) {
	s := newTestServer(t)
	token := guestToken(t, s)

	w := do(t, s, http.MethodPost, "/api/crash/arm", token, map[string]any{"bet": "20"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	id := decode[map[string]any](t, w)["roundId"].(string)

	w = do(t, s, http.MethodGet, "/api/rounds/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	r := decode[map[string]any](t, w)
	assert.Equal(t, "crash", r["game"])
	assert.Equal(t, "crashed", r["outcome"])

	other := guestToken(t, s)
	assertAPIError(t, do(t, s, http.MethodGet, "/api/rounds/"+id, other, nil), http.StatusNotFound, "ROUND_NOT_FOUND")
	assertAPIError(t, do(t, s, http.MethodGet, "/api/rounds/missing", token, nil), http.StatusNotFound, "ROUND_NOT_FOUND")
}

func TestRoundInFlight(t *testing.T) {
	s := newTestServer(t)
	token := guestToken(t, s)

	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/blackjack/bet", token, map[string]any{"amount": "10"}).Code)
	assertAPIError(t, do(t, s, http.MethodPost, "/api/crash/arm", token, map[string]any{"bet": "10"}), http.StatusConflict, "ROUND_IN_FLIGHT")
}

func TestLogoutClosesSession(t *testing.T) {
	s := newTestServer(t)
	token := guestToken(t, s)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/blackjack/bet", token, map[string]any{"amount": "10"}).Code)

	w := do(t, s, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, s.sessions.ListPlayers())

	// the undealt bet was refunded and saved
	w = do(t, s, http.MethodGet, "/api/profile", token, nil)
	assert.Equal(t, "500.00", decode[profileView](t, w).Balance)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodGet, "/health", "", nil)
	w := do(t, s, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `casino_http_requests_total{endpoint="/health",method="GET",status="200"} 1`), body)
}

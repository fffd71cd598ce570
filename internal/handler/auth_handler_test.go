package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"go-api-template/internal/config"
	"go-api-template/internal/handler"
	"go-api-template/internal/middleware"
	"go-api-template/internal/model"
	"go-api-template/internal/router"
	"go-api-template/internal/service"
	"go-api-template/internal/token"
)

type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]model.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[int64]model.User{}}
}

func (s *fakeStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *fakeStore) FindByID(_ context.Context, id int64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeStore) Create(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return model.User{}, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		}
	}

	s.nextID++
	u.ID = s.nextID
	s.users[u.ID] = u
	return u, nil
}

func (s *fakeStore) Update(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[u.ID]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	u.CreatedAt = existing.CreatedAt
	s.users[u.ID] = u
	return u, nil
}

func (s *fakeStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return model.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *fakeStore) List(_ context.Context) ([]model.PublicUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.PublicUser, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Public())
	}
	return out, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *config.Config) {
	t.Helper()

	cfg := &config.Config{
		AppName:            "testapp",
		Env:                "test",
		ServerPort:         "0",
		AccessTokenSecret:  "test-access-secret",
		RefreshTokenSecret: "test-refresh-secret",
		AppSecret:          "test-app-secret",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    168 * time.Hour,
		CORSOrigins:        []string{"http://localhost:3000"},
		RateLimitRPM:       100000,
		AuthRateLimitRPM:   100000,
	}

	store := newFakeStore()
	codec := token.NewCodec(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authService := service.NewAuthService(store, codec)
	userService := service.NewUserService(store)

	authMiddleware := middleware.NewAuthMiddleware(codec, authService)
	csrfMiddleware := middleware.NewCSRFMiddleware(cfg.AppSecret, cfg.CSRFCookieName())

	h := router.New(cfg,
		authMiddleware,
		csrfMiddleware,
		handler.NewAuthHandler(cfg, authService, codec),
		handler.NewUserHandler(userService),
		handler.NewCSRFHandler(cfg, csrfMiddleware),
	)

	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return server, cfg
}

// fetchCSRF grabs a fresh token from the issuance endpoint.
func fetchCSRF(t *testing.T, server *httptest.Server, cfg *config.Config) string {
	t.Helper()

	resp, err := http.Get(server.URL + config.CSRFPath)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Token)

	var cookieValue string
	for _, c := range resp.Cookies() {
		if c.Name == cfg.CSRFCookieName() {
			cookieValue = c.Value
		}
	}
	require.Equal(t, body.Token, cookieValue)
	return body.Token
}

type requestOptions struct {
	csrf    string
	bearer  string
	cookies []*http.Cookie
}

func doJSON(t *testing.T, server *httptest.Server, cfg *config.Config, method string, path string, payload any, opts requestOptions) *http.Response {
	t.Helper()

	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts.csrf != "" {
		req.Header.Set(config.CSRFHeaderName, opts.csrf)
		req.AddCookie(&http.Cookie{Name: cfg.CSRFCookieName(), Value: opts.csrf})
	}
	if opts.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+opts.bearer)
	}
	for _, c := range opts.cookies {
		req.AddCookie(c)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func registerPayload() map[string]string {
	return map[string]string{
		"name":            "A",
		"email":           "a@x.com",
		"password":        "longenough1",
		"confirmPassword": "longenough1",
	}
}

func TestRegisterOmitsPassword(t *testing.T) {
	server, cfg := newTestServer(t)
	csrf := fetchCSRF(t, server, cfg)

	resp := doJSON(t, server, cfg, http.MethodPost, "/auth/register", registerPayload(), requestOptions{csrf: csrf})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, "USER_CREATED", body["code"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "a@x.com", data["email"])
	require.NotContains(t, data, "password")
	require.NotContains(t, data, "passwordHash")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	server, cfg := newTestServer(t)
	csrf := fetchCSRF(t, server, cfg)

	resp := doJSON(t, server, cfg, http.MethodPost, "/auth/register", registerPayload(), requestOptions{csrf: csrf})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, server, cfg, http.MethodPost, "/auth/register", registerPayload(), requestOptions{csrf: csrf})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Contains(t, body.Errors["email"][0], "already exists")
}

func TestRegisterRejectedWithoutCSRF(t *testing.T) {
	server, cfg := newTestServer(t)

	resp := doJSON(t, server, cfg, http.MethodPost, "/auth/register", registerPayload(), requestOptions{})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "CSRF token is required", body.Message)
}

func TestLoginWrongPassword(t *testing.T) {
	server, cfg := newTestServer(t)
	csrf := fetchCSRF(t, server, cfg)

	resp := doJSON(t, server, cfg, http.MethodPost, "/auth/register", registerPayload(), requestOptions{csrf: csrf})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, server, cfg, http.MethodPost, "/auth/login",
		map[string]string{"email": "a@x.com", "password": "wrong-password"},
		requestOptions{csrf: csrf})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, []string{"Invalid credentials"}, body.Errors["email"])
}

func login(t *testing.T, server *httptest.Server, cfg *config.Config, csrf string) (string, *http.Cookie) {
	t.Helper()

	resp := doJSON(t, server, cfg, http.MethodPost, "/auth/login",
		map[string]string{"email": "a@x.com", "password": "longenough1"},
		requestOptions{csrf: csrf})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var refreshCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == cfg.RefreshCookieName() {
			refreshCookie = c
		}
	}
	require.NotNil(t, refreshCookie, "login must set the refresh cookie")
	require.True(t, refreshCookie.HttpOnly)

	body := decodeBody(t, resp)
	require.Equal(t, "LOGIN_SUCCESS", body["code"])
	data := body["data"].(map[string]any)
	accessToken, _ := data["token"].(string)
	require.NotEmpty(t, accessToken)

	// The refresh token never appears in the JSON body.
	require.NotContains(t, data, "refreshToken")

	return accessToken, refreshCookie
}

func TestLoginMeAndRefreshFlow(t *testing.T) {
	server, cfg := newTestServer(t)
	csrf := fetchCSRF(t, server, cfg)

	resp := doJSON(t, server, cfg, http.MethodPost, "/auth/register", registerPayload(), requestOptions{csrf: csrf})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	accessToken, refreshCookie := login(t, server, cfg, csrf)

	meResp := doJSON(t, server, cfg, http.MethodGet, "/auth/me", nil, requestOptions{bearer: accessToken})
	require.Equal(t, http.StatusOK, meResp.StatusCode)
	meBody := decodeBody(t, meResp)
	require.Equal(t, "USER_FETCHED", meBody["code"])
	require.Equal(t, "a@x.com", meBody["data"].(map[string]any)["email"])

	refreshResp := doJSON(t, server, cfg, http.MethodPost, "/auth/token/refresh", nil,
		requestOptions{csrf: csrf, cookies: []*http.Cookie{{Name: refreshCookie.Name, Value: refreshCookie.Value}}})
	require.Equal(t, http.StatusOK, refreshResp.StatusCode)
	refreshBody := decodeBody(t, refreshResp)
	require.Equal(t, "TOKEN_REFRESHED", refreshBody["code"])
	require.NotEmpty(t, refreshBody["data"].(map[string]any)["token"])

	var rotated *http.Cookie
	for _, c := range refreshResp.Cookies() {
		if c.Name == cfg.RefreshCookieName() {
			rotated = c
		}
	}
	require.NotNil(t, rotated, "refresh must rotate the cookie")
}

func TestRefreshWithoutCookie(t *testing.T) {
	server, cfg := newTestServer(t)
	csrf := fetchCSRF(t, server, cfg)

	resp := doJSON(t, server, cfg, http.MethodPost, "/auth/token/refresh", nil, requestOptions{csrf: csrf})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "Unauthorized", body.Message)
}

func TestRefreshWithGarbageCookieClearsIt(t *testing.T) {
	server, cfg := newTestServer(t)
	csrf := fetchCSRF(t, server, cfg)

	resp := doJSON(t, server, cfg, http.MethodPost, "/auth/token/refresh", nil,
		requestOptions{csrf: csrf, cookies: []*http.Cookie{{Name: cfg.RefreshCookieName(), Value: "not.a.token"}}})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var cleared *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == cfg.RefreshCookieName() {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	require.Less(t, cleared.MaxAge, 0)
}

func TestLogoutClearsRefreshCookie(t *testing.T) {
	server, cfg := newTestServer(t)
	csrf := fetchCSRF(t, server, cfg)

	resp := doJSON(t, server, cfg, http.MethodPost, "/auth/register", registerPayload(), requestOptions{csrf: csrf})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	accessToken, _ := login(t, server, cfg, csrf)

	logoutResp := doJSON(t, server, cfg, http.MethodPost, "/auth/logout", nil,
		requestOptions{csrf: csrf, bearer: accessToken})
	require.Equal(t, http.StatusOK, logoutResp.StatusCode)
	require.Equal(t, "LOGOUT_SUCCESS", decodeBody(t, logoutResp)["code"])

	var cleared *http.Cookie
	for _, c := range logoutResp.Cookies() {
		if c.Name == cfg.RefreshCookieName() {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	require.Less(t, cleared.MaxAge, 0)
}

func TestProtectedRoutesRequireBearer(t *testing.T) {
	server, cfg := newTestServer(t)

	for _, path := range []string{"/auth/me", "/users"} {
		resp := doJSON(t, server, cfg, http.MethodGet, path, nil, requestOptions{})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	resp := doJSON(t, server, cfg, http.MethodGet, "/auth/me", nil, requestOptions{bearer: "garbage"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUsersEndpointsWithAuth(t *testing.T) {
	server, cfg := newTestServer(t)
	csrf := fetchCSRF(t, server, cfg)

	resp := doJSON(t, server, cfg, http.MethodPost, "/auth/register", registerPayload(), requestOptions{csrf: csrf})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	accessToken, _ := login(t, server, cfg, csrf)

	listResp := doJSON(t, server, cfg, http.MethodGet, "/users", nil, requestOptions{bearer: accessToken})
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	listBody := decodeBody(t, listResp)
	require.Equal(t, "USERS_FETCHED", listBody["code"])
	require.Len(t, listBody["data"].([]any), 1)

	updateResp := doJSON(t, server, cfg, http.MethodPut, "/users/1",
		map[string]string{"name": "Renamed"},
		requestOptions{csrf: csrf, bearer: accessToken})
	require.Equal(t, http.StatusOK, updateResp.StatusCode)
	require.Equal(t, "Renamed", decodeBody(t, updateResp)["data"].(map[string]any)["name"])

	missingResp := doJSON(t, server, cfg, http.MethodGet, "/users/999", nil, requestOptions{bearer: accessToken})
	require.Equal(t, http.StatusNotFound, missingResp.StatusCode)
}

func TestValidationErrors(t *testing.T) {
	server, cfg := newTestServer(t)
	csrf := fetchCSRF(t, server, cfg)

	resp := doJSON(t, server, cfg, http.MethodPost, "/auth/register",
		map[string]string{"name": "A", "email": "not-an-email", "password": "short", "confirmPassword": "short"},
		requestOptions{csrf: csrf})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "The given data was invalid.", body.Message)
	require.Equal(t, []string{"Invalid email"}, body.Errors["email"])
	require.Equal(t, []string{"Password must be at least 8 characters long"}, body.Errors["password"])
}

func TestUnknownRoute(t *testing.T) {
	server, cfg := newTestServer(t)

	resp := doJSON(t, server, cfg, http.MethodGet, "/nope", nil, requestOptions{})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "Cannot GET /nope", body.Message)

	// A path with characters that need JSON escaping still yields a valid body.
	resp = doJSON(t, server, cfg, http.MethodGet, "/no%22pe", nil, requestOptions{})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, `Cannot GET /no"pe`, body.Message)
}

package handler

import (
	"encoding/json"
	"net/http"

	"go-api-template/internal/config"
	"go-api-template/internal/middleware"
	"go-api-template/internal/model"
	"go-api-template/internal/service"
	"go-api-template/internal/token"
	"go-api-template/internal/validation"
	"go-api-template/pkg/apierror"
)

type AuthHandler struct {
	cfg     *config.Config
	service *service.AuthService
	codec   *token.Codec
}

func NewAuthHandler(cfg *config.Config, authService *service.AuthService, codec *token.Codec) *AuthHandler {
	return &AuthHandler{cfg: cfg, service: authService, codec: codec}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, apierror.BadRequest("Invalid JSON body"))
		return
	}

	if apiErr := validation.Struct(payload); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}

	user, err := h.service.Register(r.Context(), payload.Email, payload.Password, payload.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "USER_CREATED", "User created successfully", user)
}

type loginData struct {
	Token string           `json:"token"`
	Data  model.PublicUser `json:"data"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, apierror.BadRequest("Invalid JSON body"))
		return
	}

	if apiErr := validation.Struct(payload); apiErr != nil {
		writeError(w, r, apiErr)
		return
	}

	result, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// The refresh token travels only in the cookie, never in the body.
	h.setRefreshCookie(w, result.RefreshToken)
	writeSuccess(w, http.StatusOK, "LOGIN_SUCCESS", "Login successful", loginData{
		Token: result.AccessToken,
		Data:  result.User,
	})
}

type refreshData struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(h.cfg.RefreshCookieName())
	if err != nil || cookie.Value == "" {
		writeError(w, r, apierror.Unauthorized())
		return
	}

	claims := h.codec.VerifyRefresh(cookie.Value)
	if claims == nil {
		h.clearRefreshCookie(w)
		writeError(w, r, apierror.Unauthorized())
		return
	}

	pair, err := h.service.RefreshTokens(r.Context(), claims.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.setRefreshCookie(w, pair.RefreshToken)
	writeSuccess(w, http.StatusOK, "TOKEN_REFRESHED", "Token refreshed successfully", refreshData{
		Token: pair.AccessToken,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, apierror.Unauthorized())
		return
	}

	profile, err := h.service.Profile(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "USER_FETCHED", "User fetched successfully", profile)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearRefreshCookie(w)
	writeSuccess(w, http.StatusOK, "LOGOUT_SUCCESS", "Logout successful", nil)
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.RefreshCookieName(),
		Value:    value,
		Path:     "/",
		MaxAge:   int(h.cfg.RefreshTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.RefreshCookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

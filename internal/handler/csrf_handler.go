package handler

import (
	"encoding/json"
	"net/http"

	"go-api-template/internal/config"
	"go-api-template/internal/middleware"
)

type CSRFHandler struct {
	cfg  *config.Config
	csrf *middleware.CSRFMiddleware
}

func NewCSRFHandler(cfg *config.Config, csrf *middleware.CSRFMiddleware) *CSRFHandler {
	return &CSRFHandler{cfg: cfg, csrf: csrf}
}

// Issue hands out a fresh CSRF token as both a client-readable cookie and a
// JSON body, so browser code can echo it back in the x-csrf-token header.
func (h *CSRFHandler) Issue(w http.ResponseWriter, r *http.Request) {
	tok := h.csrf.GenerateToken()

	// Session cookie: readable by script, cross-site allowed, no max-age.
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CSRFCookieName(),
		Value:    tok,
		Path:     "/",
		HttpOnly: false,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"token": tok})
}

package middleware

import (
	"net/http"

	"github.com/unrolled/secure"
)

// SecurityHeaders applies the baseline browser hardening headers.
func SecurityHeaders(isProduction bool) func(http.Handler) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "same-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; object-src 'none'",
		STSSeconds:            15552000,
		STSIncludeSubdomains:  true,
		STSPreload:            true,
		SSLRedirect:           false,
		IsDevelopment:         !isProduction,
	})

	return secureMiddleware.Handler
}

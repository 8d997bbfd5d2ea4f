package httpapi

import (
	"net/http"

	"github.com/unrolled/secure"
)

var secureOptions = secure.Options{
	ContentTypeNosniff:      true,
	CustomFrameOptionsValue: "SAMEORIGIN",
	ReferrerPolicy:          "no-referrer",
	STSSeconds:              15552000,
	STSIncludeSubdomains:    true,
}

// headers secure.Options has no field for
var extraSecurityHeaders = map[string]string{
	"Cross-Origin-Opener-Policy":        "same-origin",
	"Cross-Origin-Resource-Policy":      "same-origin",
	"Origin-Agent-Cluster":              "?1",
	"X-DNS-Prefetch-Control":            "off",
	"X-Download-Options":                "noopen",
	"X-Permitted-Cross-Domain-Policies": "none",
	"X-XSS-Protection":                  "0",
}

// SecurityHeaders sets the usual hardening headers on every response. No
// content security policy is sent.
func SecurityHeaders(next http.Handler) http.Handler {
	withSecure := secure.New(secureOptions).Handler(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for name, value := range extraSecurityHeaders {
			w.Header().Set(name, value)
		}
		withSecure.ServeHTTP(w, r)
	})
}

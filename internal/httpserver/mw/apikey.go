package mw

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/notedocs/internal/logger"
)

// APIKey requires a known key in X-API-Key or "Authorization: Bearer <key>".
// With no keys configured it is a passthrough.
func APIKey(keys []string, log logger.Logger) func(http.Handler) http.Handler {
	if len(keys) == 0 {
		log.Debug("APIKey: no keys configured, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debugf("APIKey: initialized with %d keys", len(keys))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !knownKey(presentedKey(r), keys) {
				log.Debugf("APIKey: rejected %s %s", r.Method, r.URL.Path)
				w.Header().Set("WWW-Authenticate", `Bearer realm="notedocs"`)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func presentedKey(r *http.Request) string {
	if k := strings.TrimSpace(r.Header.Get("X-API-Key")); k != "" {
		return k
	}
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

func knownKey(got string, keys []string) bool {
	if got == "" {
		return false
	}
	ok := false
	for _, k := range keys {
		if subtle.ConstantTimeCompare([]byte(got), []byte(k)) == 1 {
			ok = true
		}
	}
	return ok
}

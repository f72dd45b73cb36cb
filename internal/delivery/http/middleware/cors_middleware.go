package middleware

import (
	"net/http"
	"strings"

	"github.com/samber/lo"
)

const (
	corsMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsHeaders = "Content-Type, Authorization"
)

// CORSMiddleware admits the front-desk and waiting-room display origins.
// An empty origin list allows any origin.
type CORSMiddleware struct {
	origins []string
}

// NewCORSMiddleware takes a comma separated origin list
func NewCORSMiddleware(allowedOrigins string) *CORSMiddleware {
	origins := lo.FilterMap(strings.Split(allowedOrigins, ","), func(o string, _ int) (string, bool) {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		return o, o != "" && o != "*"
	})
	return &CORSMiddleware{origins: origins}
}

func (m *CORSMiddleware) allowOrigin(origin string) string {
	if len(m.origins) == 0 {
		return "*"
	}
	if lo.Contains(m.origins, origin) {
		return origin
	}
	return ""
}

func (m *CORSMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if allowed := m.allowOrigin(req.Header.Get("Origin")); allowed != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowed)
			w.Header().Set("Access-Control-Allow-Methods", corsMethods)
			w.Header().Set("Access-Control-Allow-Headers", corsHeaders)
		}
		if len(m.origins) > 0 {
			w.Header().Add("Vary", "Origin")
		}

		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, req)
	})
}

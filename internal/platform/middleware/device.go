package middleware

import (
	"context"
	"net/http"

	"github.com/mssola/useragent"
)

type contextKeyClientDevice struct{}

// ClientDevice carries browser/OS facts parsed from the User-Agent header.
// Audit value only; never used for authorization decisions.
type ClientDevice struct {
	Browser string
	OS      string
	Mobile  bool
}

// DeviceMetadata parses the User-Agent once and stashes the result in the
// request context for audit logging on submissions.
func DeviceMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := useragent.New(r.UserAgent())
		name, _ := ua.Browser()
		device := ClientDevice{
			Browser: name,
			OS:      ua.OS(),
			Mobile:  ua.Mobile(),
		}
		ctx := context.WithValue(r.Context(), contextKeyClientDevice{}, device)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClientDevice retrieves parsed device facts from the context.
func GetClientDevice(ctx context.Context) ClientDevice {
	if d, ok := ctx.Value(contextKeyClientDevice{}).(ClientDevice); ok {
		return d
	}
	return ClientDevice{}
}

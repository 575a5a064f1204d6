package middleware

import (
	"crypto/subtle"
	"net/http"

	perr "linkharvest/internal/platform/errors"
)

// SecretPort decides whether a request carries the shared secret
type SecretPort interface {
	Check(r *http.Request) error
}

// QuerySecret reads the secret from a query parameter.
// An empty Secret rejects every request.
type QuerySecret struct {
	Param  string
	Secret string
}

// Check implements SecretPort
func (q QuerySecret) Check(r *http.Request) error {
	got := r.URL.Query().Get(q.Param)
	if q.Secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(q.Secret)) != 1 {
		return perr.WithField(perr.Unauthorizedf("Unauthorized"), q.Param)
	}
	return nil
}

// Auth rejects requests failing p before they reach next. reject writes the response
func Auth(p SecretPort, reject func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := p.Check(r); err != nil {
				reject(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

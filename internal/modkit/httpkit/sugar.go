package httpkit

import (
	"net/http"

	phttp "linkharvest/internal/platform/net/http"
	"linkharvest/internal/platform/net/http/bind"
)

// Call adapts fn to a Handler. A returned Response is written as is, an error
// goes through the envelope and any other value is a 200
func Call(fn func(*http.Request) (any, error)) Handler {
	return phttp.Handle(func(r *http.Request) Response {
		out, err := fn(r)
		if err != nil {
			return phttp.Error(err)
		}
		if resp, ok := out.(Response); ok {
			return resp
		}
		return phttp.OK(out)
	})
}

// withQuery binds T from the query string before fn runs; bind failures are 400s
func withQuery[T any](fn func(*http.Request, T) (any, error)) Handler {
	return Call(func(r *http.Request) (any, error) {
		in, err := bind.Query[T](r)
		if err != nil {
			return nil, err
		}
		return fn(r, in)
	})
}

func Get(r Router, path string, h func(*http.Request) (any, error)) { r.Get(path, Call(h)) }

func Delete(r Router, path string, h func(*http.Request) (any, error)) { r.Delete(path, Call(h)) }

func GetQuery[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Get(path, withQuery(h))
}

func PostQuery[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, withQuery(h))
}

// URLParam returns a path parameter from the matched route
func URLParam(r *http.Request, key string) string { return phttp.URLParam(r, key) }

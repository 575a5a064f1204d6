// Package http holds the chi router seam, the server and the JSON envelope writers
package http

import (
	"cmp"
	"encoding/json"
	stdhttp "net/http"

	perr "linkharvest/internal/platform/errors"
	pnet "linkharvest/internal/platform/net"
)

// Envelope wraps every response body unless the Response is Bare
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

func envelope(r *stdhttp.Request, status int) Envelope {
	return Envelope{
		StatusCode: status,
		Status:     stdhttp.StatusText(status),
		RequestID:  pnet.RequestID(r.Context()),
	}
}

func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondError writes err in the envelope with the status its code maps to
func RespondError(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	status := perr.HTTPStatus(err)
	env := envelope(r, status)
	wire := perr.WireFrom(err)
	env.Code, env.Error = wire.Code, wire.Message
	JSON(w, status, env)
}

// Response is what return-style handlers produce. An error Body picks its own
// status unless the response is Bare
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header
	Bare   bool
}

func Handle(h func(*stdhttp.Request) Response) Handler {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).send(w, r)
	}
}

func (resp Response) send(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	for k, vs := range resp.Header {
		w.Header()[k] = append(w.Header()[k], vs...)
	}
	if err, ok := resp.Body.(error); ok && !resp.Bare {
		RespondError(w, r, err)
		return
	}

	status := cmp.Or(resp.Status, stdhttp.StatusOK)
	switch {
	case status == stdhttp.StatusNoContent:
		w.WriteHeader(status)
	case resp.Bare:
		JSON(w, status, resp.Body)
	default:
		env := envelope(r, status)
		env.Data = resp.Body
		JSON(w, status, env)
	}
}

func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// Accepted is for work that carries on after the response
func Accepted(data any) Response { return Response{Status: stdhttp.StatusAccepted, Body: data} }

func NoContent() Response { return Response{Status: stdhttp.StatusNoContent} }

func Error(err error) Response { return Response{Body: err} }

func Bare(status int, body any) Response { return Response{Status: status, Body: body, Bare: true} }

// Package http provides the stored link endpoints
package http

import (
	stdhttp "net/http"
	"net/url"

	"linkharvest/internal/modkit/httpkit"
	perr "linkharvest/internal/platform/errors"
	"linkharvest/internal/platform/net/middleware"
	"linkharvest/internal/services/api/market"
	"linkharvest/internal/services/harvest/domain"
)

// Deps are the handler dependencies
type Deps struct {
	Links   domain.LinksPort
	Markets market.Markets
	Secret  string
}

// Register mounts the link routes. Mutating routes require the secret in ?password=
func Register(r httpkit.Router, d Deps) {
	market.Register()
	h := &handlers{deps: d}

	httpkit.GetQuery[CountryInput](r, "/", h.first)
	r.Group(func(g httpkit.Router) {
		g.Use(httpkit.Secret(middleware.QuerySecret{Param: "password", Secret: d.Secret}))
		httpkit.PostQuery[CountryInput](g, "/consume", h.consume)
		httpkit.Delete(g, "/{link}", h.remove)
	})
}

type handlers struct{ deps Deps }

// CountryInput selects the market, defaulting to the primary one
type CountryInput struct {
	Country string `query:"country" validate:"omitempty,country"`
}

// LinkReply is the bare body for a found link
type LinkReply struct {
	Success bool   `json:"success"`
	Link    string `json:"link,omitempty"`
	Error   string `json:"error,omitempty"`
}

const noLinks = "No links found for the specified country"

// @Summary Oldest stored link for a country
// @Tags Links
// @Produce json
// @Param country query string false "country code, defaults to the primary market"
// @Success 200 {object} LinkReply
// @Failure 404 {object} LinkReply
// @Router /links [get]
func (h *handlers) first(r *stdhttp.Request, in CountryInput) (any, error) {
	c, err := h.deps.Markets.Resolve(in.Country)
	if err != nil {
		return nil, err
	}
	return reply(h.deps.Links.First(r.Context(), c))
}

// @Summary Remove and return the oldest stored link for a country
// @Tags Links
// @Produce json
// @Param country query string false "country code, defaults to the primary market"
// @Param password query string true "shared secret"
// @Success 200 {object} LinkReply
// @Failure 401 {object} httpkit.Unauthorized
// @Failure 404 {object} LinkReply
// @Router /links/consume [post]
func (h *handlers) consume(r *stdhttp.Request, in CountryInput) (any, error) {
	c, err := h.deps.Markets.Resolve(in.Country)
	if err != nil {
		return nil, err
	}
	return reply(h.deps.Links.Consume(r.Context(), c))
}

// @Summary Delete a stored link by value
// @Tags Links
// @Produce json
// @Param link path string true "url-escaped link value"
// @Param password query string true "shared secret"
// @Success 200 {object} LinkReply
// @Failure 404 {object} LinkReply
// @Router /links/{link} [delete]
func (h *handlers) remove(r *stdhttp.Request) (any, error) {
	raw := httpkit.URLParam(r, "link")
	value, err := url.PathUnescape(raw)
	if err != nil || value == "" {
		return nil, perr.WithField(perr.InvalidArgf("link must be a url-escaped value"), "link")
	}
	if err := h.deps.Links.Delete(r.Context(), value); err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return httpkit.Bare(stdhttp.StatusNotFound, LinkReply{Error: "link not found"}), nil
		}
		return nil, err
	}
	return httpkit.Bare(stdhttp.StatusOK, LinkReply{Success: true, Link: value}), nil
}

func reply(l domain.Link, err error) (any, error) {
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return httpkit.Bare(stdhttp.StatusNotFound, LinkReply{Error: noLinks}), nil
		}
		return nil, err
	}
	return httpkit.Bare(stdhttp.StatusOK, LinkReply{Success: true, Link: l.Value}), nil
}

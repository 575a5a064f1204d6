package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"linkharvest/internal/core/country"
	perr "linkharvest/internal/platform/errors"
	"linkharvest/internal/platform/logger"
	"linkharvest/internal/services/harvest/guardrails"

	"github.com/go-resty/resty/v2"
)

// ErrClosed is returned when the harvest guard no longer admits runs
var ErrClosed = errors.New("scheduler: harvest guard closed")

// Admitter is the single-flight guard
type Admitter interface {
	Admit(c country.Code) (*guardrails.Run, bool)
}

// InProcess triggers runs through the guard of the same process and waits for them
func InProcess(a Admitter, log logger.Logger) Trigger {
	return TriggerFunc(func(ctx context.Context, c country.Code) error {
		run, ok := a.Admit(c)
		if run == nil {
			return ErrClosed
		}
		if !ok {
			log.Info().Str("country", string(c)).Str("run_id", run.ID).Msg("harvest already in progress, skipping")
			return nil
		}
		res, err := run.Wait(ctx)
		if err != nil {
			return err
		}
		ev := log.Info()
		if !res.Success {
			ev = log.Error().Str("details", res.Cause)
		}
		ev.Str("country", string(c)).
			Str("run_id", run.ID).
			Str("outcome", string(res.Outcome)).
			Int("extracted", res.Extracted).
			Msg(res.Message)
		return nil
	})
}

// HarvestPath is the trigger endpoint the HTTP trigger calls
const HarvestPath = "/api/v1/harvest"

// harvestReply covers both the success and the error bodies of the trigger endpoint
type harvestReply struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Extracted int    `json:"extractedLinks"`
	Outcome   string `json:"outcome"`
	Error     string `json:"error"`
	Details   string `json:"details"`
}

// HTTP triggers runs by calling a remote trigger endpoint
type HTTP struct {
	client  *resty.Client
	baseURL string
	secret  string
	log     logger.Logger
}

// NewHTTP returns a trigger against baseURL. timeout bounds each call; a harvest
// is awaited by the endpoint so it should cover a full run
func NewHTTP(baseURL, secret string, timeout time.Duration, log logger.Logger) *HTTP {
	baseURL = strings.TrimRight(baseURL, "/")
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &HTTP{client: c, baseURL: baseURL, secret: secret, log: log}
}

// Fire calls the trigger endpoint for c. A conflict is not an error
func (h *HTTP) Fire(ctx context.Context, c country.Code) error {
	query := "country=" + url.QueryEscape(string(c)) + "&password=" + url.QueryEscape(h.secret)
	h.log.Info().Str("url", h.baseURL+HarvestPath+"?"+logger.MaskQuery(query, "password")).Msg("triggering harvest")

	var out harvestReply
	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryString(query).
		SetResult(&out).
		SetError(&out).
		Get(HarvestPath)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "trigger harvest for %s", c)
	}

	switch resp.StatusCode() {
	case http.StatusAccepted:
		h.log.Info().Str("country", string(c)).Msg(out.Message)
		return nil
	case http.StatusOK:
		// a settled run reports its own failure in the body
		ev := h.log.Info()
		if !out.Success {
			ev = h.log.Error().Str("details", out.Details)
		}
		ev.Str("country", string(c)).Str("outcome", out.Outcome).Int("extracted", out.Extracted).Msg(out.Message)
		return nil
	case http.StatusConflict:
		h.log.Info().Str("country", string(c)).Msg("harvest already in progress, skipping")
		return nil
	case http.StatusUnauthorized:
		return perr.Unauthorizedf("trigger rejected the secret")
	}
	msg := out.Error
	if out.Details != "" {
		msg += ": " + out.Details
	}
	return perr.Newf(perr.ErrorCodeUnavailable, "trigger harvest for %s: status %d %s", c, resp.StatusCode(), msg)
}

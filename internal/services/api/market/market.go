// Package market resolves the country query parameter shared by the harvest and links endpoints
package market

import (
	"strings"
	"sync"

	"linkharvest/internal/core/country"
	perr "linkharvest/internal/platform/errors"
	"linkharvest/internal/platform/net/http/bind"
)

// Tag is the validator tag accepting any known country code or display name
const Tag = "country"

var once sync.Once

// Register installs the country validator once per process
func Register() {
	once.Do(func() {
		_ = bind.RegisterValidation(Tag, "{0} must be a known country", func(fl bind.FieldLevel) bool {
			_, err := country.Parse(fl.Field().String())
			return err == nil
		})
	})
}

// Markets is the configured allowed subset and its default
type Markets struct {
	Allowed []country.Code
	Primary country.Code
}

// Resolve maps a validated raw parameter to an allowed code. Empty means Primary
func (m Markets) Resolve(raw string) (country.Code, error) {
	if strings.TrimSpace(raw) == "" {
		return m.Primary, nil
	}
	c, err := country.Parse(raw)
	if err != nil {
		return "", perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%v", err), "country")
	}
	if !country.Contains(m.Allowed, c) {
		return "", perr.WithField(perr.Newf(perr.ErrorCodeValidation,
			"country must be one of %s", strings.Join(country.Strings(m.Allowed), " ")), "country")
	}
	return c, nil
}

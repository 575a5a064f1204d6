// Package config reads settings from environment variables.
// Each module takes a prefixed view, e.g. cfg.Prefix("HARVEST_")
package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"linkharvest/internal/platform/logger"
)

// Conf is a namespaced view over the environment. The zero value reads unprefixed names
type Conf struct {
	prefix string
	// legacy maps a fully qualified name to older unprefixed names read when it is unset
	legacy map[string][]string
}

func New() Conf { return Conf{} }

// Prefix nests p under the current prefix. Legacy names carry over
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p, legacy: c.legacy} }

// Legacy registers older names for key, consulted in order when key is unset.
// Legacy names are read as given, without the prefix
func (c Conf) Legacy(key string, names ...string) Conf {
	m := make(map[string][]string, len(c.legacy)+1)
	for k, v := range c.legacy {
		m[k] = v
	}
	k := c.key(key)
	m[k] = append(append([]string(nil), m[k]...), names...)
	return Conf{prefix: c.prefix, legacy: m}
}

func (c Conf) key(k string) string { return c.prefix + k }

// lookup returns the trimmed value for key and the name it was found under
func (c Conf) lookup(key string) (name, val string) {
	name = c.key(key)
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return name, v
	}
	for _, old := range c.legacy[name] {
		if v := strings.TrimSpace(os.Getenv(old)); v != "" {
			logger.Get().Info().Str("key", name).Str("legacy", old).Msg("using legacy env name")
			return old, v
		}
	}
	return name, ""
}

// may parses key with parse, falling back to def when unset or unparsable
func may[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	name, s := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", name).Str("value", s).Interface("default", def).Msg("invalid value; using default")
		return def
	}
	return v
}

// MustString panics when key is unset
func (c Conf) MustString(key string) string {
	name, v := c.lookup(key)
	if v == "" {
		logger.Get().Panic().Str("key", name).Msg("missing required env")
	}
	return v
}

// Require panics on the first unset key
func (c Conf) Require(keys ...string) {
	for _, k := range keys {
		_ = c.MustString(k)
	}
}

func (c Conf) MayString(key, def string) string {
	if _, v := c.lookup(key); v != "" {
		return v
	}
	return def
}

// MayURL panics when the value is set but not an absolute URL
func (c Conf) MayURL(key, def string) string {
	s := c.MayString(key, def)
	if s == "" {
		return s
	}
	if u, err := url.Parse(s); err != nil || !u.IsAbs() {
		logger.Get().Panic().Str("key", c.key(key)).Str("value", s).Msg("invalid absolute URL")
	}
	return s
}

func (c Conf) MayInt(key string, def int) int { return may(c, key, def, strconv.Atoi) }

func (c Conf) MayBool(key string, def bool) bool { return may(c, key, def, strconv.ParseBool) }

func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, time.ParseDuration)
}

// MayCSV splits a comma separated value, dropping blank entries. def when nothing remains
func (c Conf) MayCSV(key string, def []string) []string {
	_, s := c.lookup(key)
	var out []string
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum matches the value case-insensitively against allowed and returns the
// allowed spelling. Empty gives def; anything else panics
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	if v == "" {
		return v
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return a
		}
	}
	logger.Get().Panic().Str("key", c.key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}

// Package raw reads environment variables without logging. The logger is built
// from it, so it must not import the logger or config packages
package raw

import (
	"os"
	"strconv"
	"strings"
)

// Env is a prefixed view of the process environment
type Env struct{ prefix string }

func New() Env { return Env{} }

func (e Env) Prefix(p string) Env { return Env{prefix: e.prefix + p} }

// Lookup reports the trimmed value of prefix+key; blank counts as unset
func (e Env) Lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(e.prefix + key))
	return v, v != ""
}

func (e Env) Get(key, def string) string {
	if v, ok := e.Lookup(key); ok {
		return v
	}
	return def
}

// GetBool accepts strconv spellings plus yes/no; anything else is def
func (e Env) GetBool(key string, def bool) bool {
	v, ok := e.Lookup(key)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// GetInt returns def for unset, malformed or negative values
func (e Env) GetInt(key string, def int) int {
	v, ok := e.Lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// Pairs parses "k=v,k=v". Entries without '=' or with an empty key are skipped
func (e Env) Pairs(key string) map[string]string {
	v, ok := e.Lookup(key)
	if !ok {
		return nil
	}
	out := map[string]string{}
	for _, kv := range strings.Split(v, ",") {
		k, val, found := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !found || k == "" {
			continue
		}
		out[k] = strings.TrimSpace(val)
	}
	return out
}

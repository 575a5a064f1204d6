package ch

import (
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"linkharvest/internal/core/version"

	"github.com/ClickHouse/clickhouse-go/v2"
)

type product = struct{ Name, Version string }

// BuildClientInfo names this process in system.query_log: build, role (api or
// cron), go version, commit and host
func BuildClientInfo(role, tag string) clickhouse.ClientInfo {
	bi := version.Info("linkharvest")
	host, _ := os.Hostname()
	return clickhouse.ClientInfo{Products: []product{
		{"linkharvest", orUnknown(tag, bi.Version)},
		{"role", orUnknown(role)},
		{"go", runtime.Version()},
		{"commit", orUnknown(buildCommit(bi.Commit))},
		{"host", orUnknown(host)},
	}}
}

// buildCommit prefers the ldflags commit and falls back to the vcs stamp
func buildCommit(ldflags string) string {
	if ldflags != "" && ldflags != "none" {
		return ldflags
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value[:min(len(s.Value), 7)]
		}
	}
	return ""
}

func orUnknown(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return "unknown"
}

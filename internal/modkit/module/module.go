// Package module pulls typed ports out of modkit modules
package module

import (
	phttp "linkharvest/internal/platform/net/http"
)

// Module mirrors modkit.Module so this package stays import-cycle free
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}

package modkit

import (
	"testing"

	"linkharvest/internal/platform/config"
	"linkharvest/internal/platform/logger"
	"linkharvest/internal/platform/store"
)

func TestFromStore_NilStoreLeavesBackendsNil(t *testing.T) {
	t.Parallel()

	d := FromStore(logger.Logger{}, config.New(), nil)
	if d.PG != nil || d.CH != nil {
		t.Fatalf("expected nil backends, got %+v", d)
	}
}

func TestFromStore_CopiesBackends(t *testing.T) {
	t.Parallel()

	st := &store.Store{}
	d := FromStore(logger.Logger{}, config.New(), st)
	if d.PG != nil || d.CH != nil {
		t.Fatalf("disabled backends should stay nil")
	}
}

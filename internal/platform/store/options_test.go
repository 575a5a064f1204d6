package store

import (
	"bytes"
	"testing"

	"linkharvest/internal/platform/config"
	"linkharvest/internal/platform/logger"

	"github.com/rs/zerolog"
)

func nopLogger() logger.Logger { return zerolog.Nop() }

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	s := &Store{}
	if err := WithLogger(zerolog.New(&buf))(s); err != nil {
		t.Fatalf("WithLogger: %v", err)
	}
	s.Log.Info().Msg("hello")
	if !bytes.Contains(buf.Bytes(), []byte("hello")) {
		t.Fatalf("logger not installed")
	}
}

func TestWithBootstrap_Accumulates(t *testing.T) {
	s := &Store{}
	_ = WithBootstrap("CREATE TABLE a ()")(s)
	_ = WithBootstrap("CREATE TABLE b ()", "CREATE INDEX c ON b ()")(s)
	if len(s.bootstrap) != 3 || s.bootstrap[2] != "CREATE INDEX c ON b ()" {
		t.Fatalf("bootstrap = %v", s.bootstrap)
	}
}

func configRoot(prefix string) config.Conf { return config.New().Prefix(prefix) }

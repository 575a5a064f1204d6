package service

import (
	"linkharvest/internal/platform/logger"

	"github.com/robfig/cron/v3"
)

// cronLog routes cron's own logging to zerolog
type cronLog struct{ l logger.Logger }

var _ cron.Logger = cronLog{}

func (c cronLog) Info(msg string, kv ...any) {
	c.l.Debug().Fields(kv).Msg("cron: " + msg)
}

func (c cronLog) Error(err error, msg string, kv ...any) {
	c.l.Error().Err(err).Fields(kv).Msg("cron: " + msg)
}

// Package chsink mirrors analytics samples into ClickHouse
package chsink

import (
	"context"
	"time"

	"linkharvest/internal/platform/store"
	"linkharvest/internal/services/harvest/domain"
)

// Table is the mirror table. Expected layout:
//
//	CREATE TABLE harvest_samples (at DateTime64(3), country LowCardinality(String), available UInt32)
//	ENGINE = MergeTree ORDER BY (country, at)
const Table = "harvest_samples"

// Sink appends samples through the store's ClickHouse seam
type Sink struct{ ch store.Clickhouse }

// New returns a sink over ch, or nil when ClickHouse is disabled
func New(ch store.Clickhouse) domain.AnalyticsSink {
	if ch == nil {
		return nil
	}
	return &Sink{ch: ch}
}

// AppendSample implements domain.AnalyticsSink
func (s *Sink) AppendSample(ctx context.Context, smp domain.Sample) error {
	at := smp.At
	if at.IsZero() {
		at = time.Now()
	}
	avail := smp.Available
	if avail < 0 {
		avail = 0
	}
	return s.ch.Insert(ctx, Table, [][]any{{at.UTC(), string(smp.Country), uint32(avail)}})
}

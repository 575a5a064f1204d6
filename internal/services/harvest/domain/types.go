// Package domain holds the harvest data model and the ports the pipeline depends on
package domain

import (
	"time"

	"linkharvest/internal/core/country"
)

// Link is one single-use referral link. Value is unique across all countries
type Link struct {
	Value     string       `json:"link"`
	Country   country.Code `json:"country"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Sample is the stored count observed at the start of a run
type Sample struct {
	At        time.Time
	Available int
	Country   country.Code
}

// Outcome tells apart the ways a run can end
type Outcome string

// Outcomes
const (
	OutcomeTargetMet Outcome = "target_met"
	OutcomeComplete  Outcome = "complete"
	OutcomePartial   Outcome = "partial"
	OutcomeFailed    Outcome = "failed"
)

// Result is what a finished run reports to whoever awaited it
type Result struct {
	Success    bool    `json:"success"`
	Message    string  `json:"message"`
	Extracted  int     `json:"extractedLinks"`
	Outcome    Outcome `json:"outcome"`
	Attempted  int     `json:"attempted"`
	Failed     int     `json:"failed"`
	Duplicates int     `json:"duplicates"`
	// Empty counts reveals that produced no link
	Empty int    `json:"empty"`
	RunID      string  `json:"runId,omitempty"`
	// Cause is the fatal error behind a failed outcome
	Cause string `json:"details,omitempty"`
}

// Stat is the stored count for one country against the target
type Stat struct {
	Country country.Code `json:"country"`
	Name    string       `json:"name"`
	Stored  int          `json:"stored"`
	Target  int          `json:"target"`
	Missing int          `json:"missing"`
}

// RunInfo describes an in-flight run
type RunInfo struct {
	ID        string       `json:"runId"`
	Country   country.Code `json:"country"`
	StartedAt time.Time    `json:"startedAt"`
}

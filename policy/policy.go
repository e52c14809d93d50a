/*
Package policy converts stored organization PTO configuration into an
engine.PTOPolicy.

PURPOSE:
  Organizations store their vacation policy as JSON so HR can change it
  without code changes. This package parses that JSON, validates it, and
  fills the documented defaults for misconfigured organizations - silently,
  not as errors.

DEFAULTS:
  rounding_unit     0.1 day
  rounding_mode     NEAREST
  carryover_mode    NONE
  usage deadline    January 29 (when UNTIL_DATE mode has no deadline)
  request deadline  the usage deadline, when absent

JSON SCHEMA:
  {
    "annual_days": 23,
    "carryover_mode": "UNTIL_DATE",
    "carryover_request_deadline": {"month": 1, "day": 31},
    "carryover_usage_deadline": {"month": 3, "day": 31},
    "rounding_unit": 0.5,
    "rounding_mode": "NEAREST"
  }
*/
package policy

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nominalabs/vacation-engine/engine"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ConfigJSON is the stored representation of an organization's PTO policy.
type ConfigJSON struct {
	AnnualDays      float64       `json:"annual_days"`
	CarryoverMode   string        `json:"carryover_mode,omitempty"`
	RequestDeadline *DeadlineJSON `json:"carryover_request_deadline,omitempty"`
	UsageDeadline   *DeadlineJSON `json:"carryover_usage_deadline,omitempty"`
	RoundingUnit    float64       `json:"rounding_unit,omitempty"`
	RoundingMode    string        `json:"rounding_mode,omitempty"`
}

type DeadlineJSON struct {
	Month int `json:"month"`
	Day   int `json:"day"`
}

// =============================================================================
// PARSING
// =============================================================================

// Parse builds an engine.PTOPolicy from stored JSON, applying defaults for
// anything missing. Only malformed JSON or a non-positive annual allowance
// is an error.
func Parse(raw []byte) (engine.PTOPolicy, error) {
	var cfg ConfigJSON
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return engine.PTOPolicy{}, fmt.Errorf("parse PTO policy: %w", err)
	}
	return FromConfig(cfg)
}

// FromConfig builds an engine.PTOPolicy from an already-decoded config.
func FromConfig(cfg ConfigJSON) (engine.PTOPolicy, error) {
	if cfg.AnnualDays <= 0 {
		return engine.PTOPolicy{}, fmt.Errorf("PTO policy: annual_days must be positive, got %v", cfg.AnnualDays)
	}

	p := engine.PTOPolicy{
		AnnualDays:    decimal.NewFromFloat(cfg.AnnualDays),
		CarryoverMode: parseCarryoverMode(cfg.CarryoverMode),
		RoundingUnit:  decimal.NewFromFloat(cfg.RoundingUnit),
		RoundingMode:  parseRoundingMode(cfg.RoundingMode),
	}
	if !p.RoundingUnit.IsPositive() {
		p.RoundingUnit = decimal.NewFromFloat(0.1)
	}
	if cfg.UsageDeadline != nil {
		p.UsageDeadline = toDeadline(*cfg.UsageDeadline)
	}
	if cfg.RequestDeadline != nil {
		p.RequestDeadline = toDeadline(*cfg.RequestDeadline)
	} else {
		p.RequestDeadline = p.UsageDeadline
	}
	return p, nil
}

// Default returns the policy used when an organization has no stored
// configuration at all.
func Default(annualDays float64) engine.PTOPolicy {
	p, _ := FromConfig(ConfigJSON{AnnualDays: annualDays})
	return p
}

func parseCarryoverMode(s string) engine.CarryoverMode {
	switch engine.CarryoverMode(s) {
	case engine.CarryoverUnlimited, engine.CarryoverUntilDate:
		return engine.CarryoverMode(s)
	default:
		return engine.CarryoverNone
	}
}

func parseRoundingMode(s string) engine.RoundingMode {
	switch engine.RoundingMode(s) {
	case engine.RoundUp, engine.RoundDown:
		return engine.RoundingMode(s)
	default:
		return engine.RoundNearest
	}
}

func toDeadline(d DeadlineJSON) engine.Deadline {
	month := time.Month(d.Month)
	if month < time.January || month > time.December {
		return engine.Deadline{}
	}
	return engine.Deadline{Month: month, Day: d.Day}
}

// Marshal serializes a config for storage.
func Marshal(cfg ConfigJSON) ([]byte, error) {
	return json.Marshal(cfg)
}

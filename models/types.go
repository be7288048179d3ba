// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"time"
)

// Dataset names
const (
	DatasetConstituency = "constituency"
	DatasetPartyList    = "party_list"
)

// Expected dataset sizes
const (
	ConstituencyCount = 400
	PartyListCount    = 77
)

// ViolationKind names the rule a violation broke.
type ViolationKind string

const (
	CardinalityMismatch     ViolationKind = "CardinalityMismatch"
	MissingOrInvalidField   ViolationKind = "MissingOrInvalidField"
	OutOfRange              ViolationKind = "OutOfRange"
	ArithmeticInconsistency ViolationKind = "ArithmeticInconsistency"
	InvalidMargin           ViolationKind = "InvalidMargin"
	DuplicateIdentifier     ViolationKind = "DuplicateIdentifier"
	UnknownReference        ViolationKind = "UnknownReference"
)

// ViolationKinds lists every kind in rule order.
var ViolationKinds = []ViolationKind{
	CardinalityMismatch,
	MissingOrInvalidField,
	OutOfRange,
	ArithmeticInconsistency,
	InvalidMargin,
	DuplicateIdentifier,
	UnknownReference,
}

// WarningKind names an advisory signal. Warnings never fail a report.
type WarningKind string

const (
	InvalidShareDivergence        WarningKind = "InvalidShareDivergence"
	ProvinceCoverageGap           WarningKind = "ProvinceCoverageGap"
	AtypicalValue                 WarningKind = "AtypicalValue"
	PlaceholderData               WarningKind = "PlaceholderData"
	TurnoutRatioMismatch          WarningKind = "TurnoutRatioMismatch"
	UnconventionalPartyListNumber WarningKind = "UnconventionalPartyListNumber"
)

var WarningKinds = []WarningKind{
	InvalidShareDivergence,
	ProvinceCoverageGap,
	AtypicalValue,
	PlaceholderData,
	TurnoutRatioMismatch,
	UnconventionalPartyListNumber,
}

// Record field names as they appear in the dataset files
const (
	FieldConsID       = "cons_id"
	FieldProvID       = "prov_id"
	FieldProvinceThai = "province_thai"
	FieldProvinceEng  = "province_eng"
	FieldConsNo       = "cons_no"

	FieldInvalidVotes   = "invalid_votes"
	FieldPercentInvalid = "percent_invalid"
	FieldTurnOut        = "turn_out"

	FieldInvalid2026     = "invalid_2026"
	FieldTurnout2026     = "turnout_2026"
	FieldPctTurnout2026  = "pct_turnout_2026"
	FieldInvalidPct2026  = "invalid_pct_2026"
	FieldInvalidChange   = "invalid_change"
	FieldInvalidPctDelta = "invalid_pct_change"

	FieldWinnerParty   = "winner_party"
	FieldMarginVotes   = "margin_votes"
	FieldWinnerVotes   = "winner_votes"
	FieldRunnerupVotes = "runnerup_votes"

	FieldWinnerParty2569 = "winner_party_2569"
	FieldWinnerVotes2569 = "winner_votes_2569"
	FieldMargin2569      = "margin_2569"
	FieldRunnerUpParty   = "runnerUp_party"
	FieldRunnerUpVotes   = "runnerUp_votes"
)

// Domain types

// RawRecord is a record as decoded from a dataset file, before any
// field has been checked. Numbers are json.Number, float64 or int.
type RawRecord map[string]any

// ElectionRecord is one row of either dataset. For party-list records
// cons_no is conventionally 1 and cons_id is "{prov_id}_PL".
type ElectionRecord struct {
	ConsID       string `json:"cons_id"`
	ProvID       string `json:"prov_id"`
	ProvinceThai string `json:"province_thai"`
	ProvinceEng  string `json:"province_eng"`
	ConsNo       int64  `json:"cons_no"`

	// 2566 (2023)
	InvalidVotes   int64   `json:"invalid_votes"`
	PercentInvalid float64 `json:"percent_invalid"`
	TurnOut        int64   `json:"turn_out"`

	// 2569 (2026)
	Invalid2026    int64   `json:"invalid_2026"`
	Turnout2026    int64   `json:"turnout_2026"`
	PctTurnout2026 float64 `json:"pct_turnout_2026"`
	InvalidPct2026 float64 `json:"invalid_pct_2026"`

	InvalidChange    int64   `json:"invalid_change"`
	InvalidPctChange float64 `json:"invalid_pct_change"`

	WinnerParty   string `json:"winner_party"`
	MarginVotes   int64  `json:"margin_votes"`
	WinnerVotes   int64  `json:"winner_votes"`
	RunnerupVotes int64  `json:"runnerup_votes"`

	WinnerParty2569 string `json:"winner_party_2569"`
	WinnerVotes2569 int64  `json:"winner_votes_2569"`
	Margin2569      int64  `json:"margin_2569"`
	RunnerUpParty   string `json:"runnerUp_party"`
	RunnerUpVotes   int64  `json:"runnerUp_votes"`
}

// Raw returns the record in its loosely typed form.
func (r ElectionRecord) Raw() RawRecord {
	return RawRecord{
		FieldConsID:          r.ConsID,
		FieldProvID:          r.ProvID,
		FieldProvinceThai:    r.ProvinceThai,
		FieldProvinceEng:     r.ProvinceEng,
		FieldConsNo:          r.ConsNo,
		FieldInvalidVotes:    r.InvalidVotes,
		FieldPercentInvalid:  r.PercentInvalid,
		FieldTurnOut:         r.TurnOut,
		FieldInvalid2026:     r.Invalid2026,
		FieldTurnout2026:     r.Turnout2026,
		FieldPctTurnout2026:  r.PctTurnout2026,
		FieldInvalidPct2026:  r.InvalidPct2026,
		FieldInvalidChange:   r.InvalidChange,
		FieldInvalidPctDelta: r.InvalidPctChange,
		FieldWinnerParty:     r.WinnerParty,
		FieldMarginVotes:     r.MarginVotes,
		FieldWinnerVotes:     r.WinnerVotes,
		FieldRunnerupVotes:   r.RunnerupVotes,
		FieldWinnerParty2569: r.WinnerParty2569,
		FieldWinnerVotes2569: r.WinnerVotes2569,
		FieldMargin2569:      r.Margin2569,
		FieldRunnerUpParty:   r.RunnerUpParty,
		FieldRunnerUpVotes:   r.RunnerUpVotes,
	}
}

// RawRecords converts typed records for validation.
func RawRecords(records []ElectionRecord) []RawRecord {
	out := make([]RawRecord, len(records))
	for i, r := range records {
		out[i] = r.Raw()
	}
	return out
}

// Province is one row of the canonical province table.
type Province struct {
	Code   string `json:"code" yaml:"code" validate:"required,len=3,alpha,uppercase"`
	Thai   string `json:"thai" yaml:"thai" validate:"required"`
	Eng    string `json:"eng" yaml:"eng" validate:"required"`
	Region string `json:"region,omitempty" yaml:"region" validate:"omitempty,region"`
}

// Party maps a party name to its display color.
type Party struct {
	Name  string `json:"name" yaml:"name" validate:"required"`
	Color string `json:"color" yaml:"color" validate:"required,hexcolor"`
}

// Reference holds the lookup tables supplied by the caller.
type Reference struct {
	Provinces []Province `json:"provinces" yaml:"provinces" validate:"dive"`
	Parties   []Party    `json:"parties" yaml:"parties" validate:"dive"`
}

// Report types

// Violation is a hard failure. Positions are 0-based record indexes
// within the dataset; dataset-level violations have none.
type Violation struct {
	Dataset   string        `json:"dataset"`
	RecordID  string        `json:"record_id,omitempty"`
	Positions []int         `json:"positions,omitempty"`
	Rule      ViolationKind `json:"rule"`
	Field     string        `json:"field,omitempty"`
	Detail    string        `json:"detail"`
}

// Warning is an advisory signal.
type Warning struct {
	Dataset  string      `json:"dataset"`
	RecordID string      `json:"record_id,omitempty"`
	Position *int        `json:"position,omitempty"`
	Kind     WarningKind `json:"kind"`
	Field    string      `json:"field,omitempty"`
	Detail   string      `json:"detail"`
}

type ReportSummary struct {
	ConstituencyCount int            `json:"constituency_count"`
	PartyListCount    int            `json:"party_list_count"`
	ViolationsByRule  map[string]int `json:"violations_by_rule"`
	WarningsByKind    map[string]int `json:"warnings_by_kind"`
}

// ValidationReport is the validator's output. Valid is true iff there
// are no violations.
type ValidationReport struct {
	Valid      bool          `json:"valid"`
	Violations []Violation   `json:"violations"`
	Warnings   []Warning     `json:"warnings"`
	Summary    ReportSummary `json:"summary"`
}

// ValidationRun is a stored report with its provenance.
type ValidationRun struct {
	ID         string           `json:"id"`
	InputsHash string           `json:"inputs_hash"`
	Signature  string           `json:"signature"`
	CreatedAt  time.Time        `json:"created_at"`
	Report     ValidationReport `json:"report"`
}

// RunSummary is a run without its report body.
type RunSummary struct {
	ID             string    `json:"id"`
	InputsHash     string    `json:"inputs_hash"`
	Valid          bool      `json:"valid"`
	ViolationCount int       `json:"violation_count"`
	WarningCount   int       `json:"warning_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// Request types

// CreateRunRequest carries both datasets. Arrays are kept raw so
// number literals survive until the dataset parser sees them.
type CreateRunRequest struct {
	Constituency json.RawMessage `json:"constituency"`
	PartyList    json.RawMessage `json:"party_list"`
}

// Response types

type CreateRunResponse struct {
	Run      ValidationRun `json:"run"`
	AdminKey string        `json:"admin_key"`
}

type ListRunsResponse struct {
	Runs []RunSummary `json:"runs"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

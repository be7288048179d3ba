// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/danielhkuo/ballotcheck/models"
)

var (
	ErrEmptyReference    = errors.New("reference tables must contain at least one province and one party")
	ErrDuplicateProvince = errors.New("duplicate province code in reference table")
)

// Option configures a Validator.
type Option func(*options)

type options struct {
	expectedConstituency int
	expectedPartyList    int
	maxConsNo            int64
	percentTolerance     decimal.Decimal
	divergenceThreshold  float64
	outlierSpread        float64
	strictTurnoutRatio   bool
}

func defaultOptions() options {
	return options{
		expectedConstituency: models.ConstituencyCount,
		expectedPartyList:    models.PartyListCount,
		maxConsNo:            15,
		percentTolerance:     decimal.RequireFromString("0.01"),
		divergenceThreshold:  5.0,
		outlierSpread:        3.0,
	}
}

// WithExpectedCounts overrides the required dataset sizes.
func WithExpectedCounts(constituency, partyList int) Option {
	return func(o *options) {
		o.expectedConstituency = constituency
		o.expectedPartyList = partyList
	}
}

// WithPercentTolerance sets the allowed difference, in percentage points,
// between a stored percentage and its recomputed value.
func WithPercentTolerance(pp float64) Option {
	return func(o *options) {
		o.percentTolerance = decimal.NewFromFloat(pp)
	}
}

// WithDivergenceThreshold sets how far, in percentage points, a province's
// constituency and party-list invalid shares may drift before a warning.
func WithDivergenceThreshold(pp float64) Option {
	return func(o *options) {
		o.divergenceThreshold = pp
	}
}

// WithStrictTurnoutRatio turns percent_invalid ≠ invalid_votes / turn_out × 100
// from a warning into an ArithmeticInconsistency violation.
func WithStrictTurnoutRatio() Option {
	return func(o *options) {
		o.strictTurnoutRatio = true
	}
}

type provinceKey struct {
	code, thai, eng string
}

// Validator checks constituency and party-list datasets against the
// reference tables it was built with. It holds no mutable state and is
// safe for concurrent use.
type Validator struct {
	opts      options
	provinces map[provinceKey]models.Province
	parties   map[string]bool
}

// New builds a Validator. An empty or inconsistent reference is a caller
// error, not a data defect, and is returned as an error.
func New(ref models.Reference, opts ...Option) (*Validator, error) {
	if len(ref.Provinces) == 0 || len(ref.Parties) == 0 {
		return nil, ErrEmptyReference
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	v := &Validator{
		opts:      o,
		provinces: make(map[provinceKey]models.Province, len(ref.Provinces)),
		parties:   make(map[string]bool, len(ref.Parties)),
	}

	codes := make(map[string]bool, len(ref.Provinces))
	for _, p := range ref.Provinces {
		if codes[p.Code] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateProvince, p.Code)
		}
		codes[p.Code] = true
		v.provinces[provinceKey{p.Code, p.Thai, p.Eng}] = p
	}
	for _, p := range ref.Parties {
		v.parties[p.Name] = true
	}

	return v, nil
}

// Validate is a one-shot helper for callers that do not reuse a Validator.
func Validate(constituency, partyList []models.RawRecord, ref models.Reference, opts ...Option) (models.ValidationReport, error) {
	v, err := New(ref, opts...)
	if err != nil {
		return models.ValidationReport{}, err
	}
	return v.Validate(constituency, partyList), nil
}

// Validate runs every rule over both datasets and returns all findings.
// It never stops at the first defect and never fails on bad data.
func (v *Validator) Validate(constituency, partyList []models.RawRecord) models.ValidationReport {
	c := &collector{}

	cons := v.checkDataset(c, models.DatasetConstituency, constituency, v.opts.expectedConstituency)
	pl := v.checkDataset(c, models.DatasetPartyList, partyList, v.opts.expectedPartyList)
	v.checkCoherence(c, cons, pl)

	return c.report(len(constituency), len(partyList))
}

// collector accumulates findings for one run.
type collector struct {
	violations []models.Violation
	warnings   []models.Warning
}

func (c *collector) violate(dataset, recordID string, positions []int, rule models.ViolationKind, field, format string, args ...any) {
	c.violations = append(c.violations, models.Violation{
		Dataset:   dataset,
		RecordID:  recordID,
		Positions: positions,
		Rule:      rule,
		Field:     field,
		Detail:    fmt.Sprintf(format, args...),
	})
}

func (c *collector) warn(dataset, recordID string, pos int, kind models.WarningKind, field, format string, args ...any) {
	w := models.Warning{
		Dataset:  dataset,
		RecordID: recordID,
		Kind:     kind,
		Field:    field,
		Detail:   fmt.Sprintf(format, args...),
	}
	if pos >= 0 {
		p := pos
		w.Position = &p
	}
	c.warnings = append(c.warnings, w)
}

func (c *collector) report(consCount, plCount int) models.ValidationReport {
	violations := c.violations
	if violations == nil {
		violations = []models.Violation{}
	}
	warnings := c.warnings
	if warnings == nil {
		warnings = []models.Warning{}
	}

	sort.SliceStable(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if d := datasetRank(a.Dataset) - datasetRank(b.Dataset); d != 0 {
			return d < 0
		}
		if d := firstPosition(a.Positions) - firstPosition(b.Positions); d != 0 {
			return d < 0
		}
		if d := ruleRank(a.Rule) - ruleRank(b.Rule); d != 0 {
			return d < 0
		}
		if a.Field != b.Field {
			return a.Field < b.Field
		}
		return a.Detail < b.Detail
	})

	sort.SliceStable(warnings, func(i, j int) bool {
		a, b := warnings[i], warnings[j]
		if d := datasetRank(a.Dataset) - datasetRank(b.Dataset); d != 0 {
			return d < 0
		}
		if d := warningPosition(a) - warningPosition(b); d != 0 {
			return d < 0
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Field != b.Field {
			return a.Field < b.Field
		}
		return a.Detail < b.Detail
	})

	byRule := make(map[string]int)
	for _, v := range violations {
		byRule[string(v.Rule)]++
	}
	byKind := make(map[string]int)
	for _, w := range warnings {
		byKind[string(w.Kind)]++
	}

	return models.ValidationReport{
		Valid:      len(violations) == 0,
		Violations: violations,
		Warnings:   warnings,
		Summary: models.ReportSummary{
			ConstituencyCount: consCount,
			PartyListCount:    plCount,
			ViolationsByRule:  byRule,
			WarningsByKind:    byKind,
		},
	}
}

func datasetRank(ds string) int {
	if ds == models.DatasetConstituency {
		return 0
	}
	return 1
}

func ruleRank(rule models.ViolationKind) int {
	for i, k := range models.ViolationKinds {
		if k == rule {
			return i
		}
	}
	return len(models.ViolationKinds)
}

func firstPosition(positions []int) int {
	if len(positions) == 0 {
		return -1
	}
	return positions[0]
}

func warningPosition(w models.Warning) int {
	if w.Position == nil {
		return -1
	}
	return *w.Position
}

// positionLabel identifies a record whose cons_id is unusable.
func positionLabel(pos int) string {
	return fmt.Sprintf("#%d", pos)
}

func joinPositions(positions []int) string {
	parts := make([]string, len(positions))
	for i, p := range positions {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ", ")
}

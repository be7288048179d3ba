// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package validation checks the constituency and party-list datasets.

# Usage

Build a Validator once per reference table and reuse it:

	v, err := validation.New(ref, validation.WithStrictTurnoutRatio())
	if err != nil {
		return err // empty or inconsistent reference
	}
	report := v.Validate(constituency, partyList)

Validate never fails on bad data. Every defect becomes a Violation and the
report is Valid only when there are none.

# Rules

Violations, in rule order:

  - CardinalityMismatch: 400 constituency and 77 party-list records
  - MissingOrInvalidField: field presence, primitive kind, cons_id and prov_id format
  - OutOfRange: percentages in [0, 100], invalid_pct_change in [-100, 100],
    non-negative counts, cons_no bounds, invalid count within turnout, NaN and Inf
  - ArithmeticInconsistency: invalid_change and invalid_pct_change recomputed
  - InvalidMargin: margins equal winner minus runner-up and are non-negative
  - DuplicateIdentifier: cons_id unique within a dataset
  - UnknownReference: province triple and party names in the reference tables

A field that fails presence or kind checks is skipped by every rule that
depends on it. Other rules on the same record still run.

# Warnings

Warnings never affect Valid:

  - InvalidShareDivergence: pooled constituency invalid share per province
    differs from the party-list record by more than the threshold (5 pp)
  - ProvinceCoverageGap: province present in one dataset only
  - AtypicalValue: outside typical ranges, or an interquartile outlier
  - PlaceholderData: all-zero 2566 figures
  - TurnoutRatioMismatch: percent_invalid ≠ invalid_votes / turn_out × 100
  - UnconventionalPartyListNumber: party-list cons_no other than 1

# Ordering

Findings are sorted by dataset, record position, rule, field and detail, so
identical inputs produce byte-identical JSON reports.

# Arithmetic

Percentage comparisons use shopspring/decimal on the shortest decimal form
of each float, with a tolerance of 0.01 percentage points by default.
*/
package validation

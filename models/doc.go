// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines record, reference, report, and API types.

# Records

Two datasets share one record shape:

  - constituency (ส.ส. เขต, green ballot): 400 records, cons_id "{prov_id}_{n}"
  - party_list (บส. รายชื่อ, pink ballot): 77 records, cons_id "{prov_id}_PL"

ElectionRecord is the typed schema. RawRecord is the same row before any
field has been checked, as produced by the dataset package:

	raw := rec.Raw()

# Reference Tables

  - Province: code, Thai and English names, region
  - Party: name and display color
  - Reference: both tables, supplied by the caller

# Report Types

  - Violation: hard failure with dataset, record ID, positions, rule, field
  - Warning: advisory signal, never fails the report
  - ValidationReport: violations, warnings, and per-rule counts
  - ValidationRun: a stored report with inputs hash and signature

# Constants

Violation kinds, in rule order:

	CardinalityMismatch
	MissingOrInvalidField
	OutOfRange
	ArithmeticInconsistency
	InvalidMargin
	DuplicateIdentifier
	UnknownReference

Datasets:

	DatasetConstituency = "constituency"
	DatasetPartyList    = "party_list"
*/
package models

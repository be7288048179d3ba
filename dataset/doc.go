// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package dataset loads election datasets into raw records.

# Formats

Plain JSON, one array per file:

	records, err := dataset.LoadFile("constituency.json")

Generated JavaScript bundles holding both datasets:

	const CONST_RAW = [ ... ];
	const PARTYLIST_RAW = [ ... ];

	cons, pl, err := dataset.LoadBundle("election_data.js")

# JavaScript Leniency

Bundle and JSON text is cleaned before decoding:

  - // and block comments are removed
  - trailing commas before ] and } are removed
  - single-quoted strings and bare object keys are re-quoted
  - NaN, Infinity and -Infinity decode as non-finite floats
  - undefined decodes as null

Non-finite values and nulls are left for the validator to report.

# Errors

A top level that is not an array returns ErrNotArray. A bundle without one
of its variables returns ErrMissingVariable. Individual records are never
rejected here; a non-object element becomes a nil record.
*/
package dataset

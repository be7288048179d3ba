// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the ballotcheck API.

# Handler Types

  - ValidationHandler: validation runs (create, list, fetch, export, delete)
  - ReferenceHandler: read-only province and party tables

	validationHandler, err := handlers.NewValidationHandler(db, cfg, validator, ref, reports)

# Creating a Run

POST /validations takes both datasets as raw JSON arrays:

	{"constituency": [...], "party_list": [...]}

A missing or non-array field is a 400. Anything inside the arrays is the
validator's business: bad records become violations, not request errors.

The inputs hash covers the compacted arrays and the reference tables. It
keys the report cache and is signed together with the report, so a
stored run that fails its signature check is reported as a 500 rather
than served.

# Admin Keys

The response carries an admin key derived from the run ID. Deleting a
run requires it in the X-Admin-Key header.
*/
package handlers

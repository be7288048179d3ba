// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the ballotcheck API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux, err := router.NewRouter(db, cfg, validator, ref, reports)

reports may be nil to run without the Redis report cache.

# Endpoints

Health:

	GET /health - 200 when the database answers a ping, 503 otherwise

Validation runs:

	POST   /validations                 - Validate both datasets and store the run
	GET    /validations                 - Recent runs, newest first (?limit=N)
	GET    /validations/{id}            - Stored run with its report
	GET    /validations/{id}/report.xlsx - Report as a workbook
	DELETE /validations/{id}            - Remove a run (requires X-Admin-Key)

Reference tables:

	GET /reference/parties
	GET /reference/provinces (?region=...)
*/
package router

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package reference loads the province and party lookup tables.

# File Format

	provinces:
	  - code: BKK
	    thai: กรุงเทพมหานคร
	    eng: BANGKOK
	    region: 05 กรุงเทพมหานคร
	parties:
	  - name: เพื่อไทย
	    color: "#E3001B"

Province codes are three uppercase letters. Regions are optional and must be
one of models.Regions. Party colors are hex.

Every problem is reported as ErrInvalidReference.
*/
package reference

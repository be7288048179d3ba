// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides run identifiers, admin keys and report signatures.

# Run IDs

Runs are identified by random UUIDs:

	id := auth.GenerateRunID()

# Admin Keys

Admin keys use HMAC-SHA256 to create deterministic, verifiable keys:

	adminKey := auth.GenerateAdminKey(runID, salt)
	err := auth.ValidateAdminKey(runID, adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same run ID and salt always produce the same key. This allows validation
without storing the key in the database. Deleting a run requires it.

# Inputs Hash

Both datasets and the reference tables are fingerprinted together:

	refBytes, _ := auth.ReferenceFingerprint(ref)
	hash := auth.HashInputs(constituencyJSON, partyListJSON, refBytes)

Identical inputs always produce the same report, so the hash doubles as the
report cache key.

# Report Signatures

	sig, err := auth.SignReport(hash, report, salt)
	err = auth.VerifySignature(hash, report, sig, salt)

# IP Hashing

Stored runs record who submitted them without keeping the address:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth

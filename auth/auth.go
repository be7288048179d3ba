// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballotcheck/models"
)

var (
	ErrInvalidAdminKey  = errors.New("invalid admin key")
	ErrInvalidSignature = errors.New("report signature does not match")
)

// GenerateRunID creates a random run identifier
func GenerateRunID() string {
	return uuid.NewString()
}

// GenerateAdminKey creates an HMAC-based admin key for a run
// This is deterministic and verifiable
func GenerateAdminKey(runID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(runID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateAdminKey checks if the provided admin key is valid for the run
func ValidateAdminKey(runID, adminKey, salt string) error {
	expected := GenerateAdminKey(runID, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}

// HashInputs fingerprints the inputs of a run. Each part is length
// prefixed so moving bytes between parts changes the hash.
func HashInputs(parts ...[]byte) string {
	h := sha256.New()
	var size [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(size[:], uint64(len(p)))
		h.Write(size[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ReferenceFingerprint returns the canonical encoding of reference tables
// for use as a HashInputs part.
func ReferenceFingerprint(ref models.Reference) ([]byte, error) {
	data, err := json.Marshal(ref)
	if err != nil {
		return nil, fmt.Errorf("encode reference: %w", err)
	}
	return data, nil
}

// SignReport returns an HMAC over the run's inputs hash and report, so a
// stored report can be checked for tampering.
func SignReport(inputsHash string, report models.ValidationReport, salt string) (string, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(inputsHash))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifySignature checks a signature produced by SignReport
func VerifySignature(inputsHash string, report models.ValidationReport, signature, salt string) error {
	expected, err := SignReport(inputsHash, report, salt)
	if err != nil {
		return err
	}
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return ErrInvalidSignature
	}
	return nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits)
	return hex.EncodeToString(sum[:8])
}

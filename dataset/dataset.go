// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/ballotcheck/models"
)

var (
	ErrNotArray        = errors.New("dataset must be a JSON array")
	ErrMissingVariable = errors.New("bundle variable not found")
)

// Bundle variable names written by the dataset build scripts
const (
	ConstituencyVar = "CONST_RAW"
	PartyListVar    = "PARTYLIST_RAW"
)

// ParseJSON decodes one dataset. The top level must be an array; elements
// that are not objects come back as nil records so the validator can
// report them by position. Numbers keep their literal form.
func ParseJSON(data []byte) ([]models.RawRecord, error) {
	return decodeArray(sanitize(data))
}

// ParseBundle extracts both datasets from a generated JavaScript file of the
// form `const CONST_RAW = [...]; const PARTYLIST_RAW = [...];`.
func ParseBundle(data []byte) (constituency, partyList []models.RawRecord, err error) {
	clean := sanitize(data)

	constituency, err = bundleVar(clean, ConstituencyVar)
	if err != nil {
		return nil, nil, err
	}
	partyList, err = bundleVar(clean, PartyListVar)
	if err != nil {
		return nil, nil, err
	}
	return constituency, partyList, nil
}

func bundleVar(src []byte, name string) ([]models.RawRecord, error) {
	re := regexp.MustCompile(`(?:^|[^\w$])(?:const|let|var)\s+` + name + `\s*=\s*\[`)
	loc := re.FindIndex(src)
	if loc == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingVariable, name)
	}
	start := loc[1] - 1
	end, ok := arrayEnd(src, start)
	if !ok {
		return nil, fmt.Errorf("%s: unterminated array", name)
	}

	records, err := decodeArray(src[start:end])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return records, nil
}

// arrayEnd returns the index just past the bracket that closes the one at start.
func arrayEnd(src []byte, start int) (int, bool) {
	depth := 0
	for i := start; i < len(src); i++ {
		switch src[i] {
		case '"':
			i = stringEnd(src, i) - 1
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

func decodeArray(data []byte) ([]models.RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var top any
	if err := dec.Decode(&top); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNotArray
		}
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode dataset: unexpected data after array")
	}

	items, ok := top.([]any)
	if !ok {
		return nil, ErrNotArray
	}

	records := make([]models.RawRecord, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for k, v := range obj {
			if s, isStr := v.(string); isStr && s == nanMarker {
				obj[k] = math.NaN()
			}
		}
		records[i] = models.RawRecord(obj)
	}
	return records, nil
}

// LoadFile reads and parses one JSON dataset file.
func LoadFile(path string) ([]models.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	records, err := ParseJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// LoadFiles reads both dataset files concurrently.
func LoadFiles(ctx context.Context, constituencyPath, partyListPath string) (constituency, partyList []models.RawRecord, err error) {
	g, ctx := errgroup.WithContext(ctx)

	load := func(path string, dst *[]models.RawRecord) func() error {
		return func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records, err := LoadFile(path)
			if err != nil {
				return err
			}
			*dst = records
			zap.S().Debugw("Loaded dataset", "path", path, "records", len(records))
			return nil
		}
	}

	g.Go(load(constituencyPath, &constituency))
	g.Go(load(partyListPath, &partyList))

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return constituency, partyList, nil
}

// LoadBundle reads a generated JavaScript bundle file.
func LoadBundle(path string) (constituency, partyList []models.RawRecord, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	constituency, partyList, err = ParseBundle(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	zap.S().Debugw("Loaded bundle", "path", path,
		"constituency", len(constituency), "party_list", len(partyList))
	return constituency, partyList, nil
}

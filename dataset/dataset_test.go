// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dataset

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/danielhkuo/ballotcheck/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestParseJSON(t *testing.T) {
	records, err := ParseJSON([]byte(`[
		{"cons_id": "BKK_1", "turn_out": 123456, "percent_invalid": 5.32},
		42,
		{"cons_id": "BKK_2", "turn_out": 6778.0}
	]`))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "BKK_1", records[0]["cons_id"])
	assert.Equal(t, json.Number("123456"), records[0]["turn_out"])
	assert.Equal(t, json.Number("5.32"), records[0]["percent_invalid"])
	assert.Nil(t, records[1])
	assert.Equal(t, json.Number("6778.0"), records[2]["turn_out"])
}

func TestParseJSON_NotArray(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"object", `{"cons_id": "BKK_1"}`},
		{"string", `"hello"`},
		{"number", `400`},
		{"null", `null`},
		{"empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.input))
			assert.ErrorIs(t, err, ErrNotArray)
		})
	}
}

func TestParseJSON_Malformed(t *testing.T) {
	_, err := ParseJSON([]byte(`[{"cons_id": }]`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotArray)

	_, err = ParseJSON([]byte(`[] []`))
	assert.Error(t, err)
}

func TestParseJSON_JavaScriptLiterals(t *testing.T) {
	records, err := ParseJSON([]byte(`[
		// first record
		{cons_id: 'NWT_1', percent_invalid: NaN, pct_turnout_2026: Infinity,
		 invalid_pct_2026: -Infinity, winner_party: undefined, note: "NaN // not a comment",},
		/* second */ {"cons_id": "NWT_2", "province_eng": 'O\'NEIL "X"'},
	]`))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "NWT_1", first["cons_id"])
	assert.True(t, math.IsNaN(first["percent_invalid"].(float64)))
	assert.Equal(t, json.Number("1e999"), first["pct_turnout_2026"])
	assert.Equal(t, json.Number("-1e999"), first["invalid_pct_2026"])
	v, present := first["winner_party"]
	assert.True(t, present)
	assert.Nil(t, v)
	assert.Equal(t, "NaN // not a comment", first["note"])

	assert.Equal(t, `O'NEIL "X"`, records[1]["province_eng"])
}

func TestParseBundle(t *testing.T) {
	bundle := `// Generated election data
// const CONST_RAW = [{"cons_id": "OLD_1"}];

// Constituency MP (ส.ส. เขต)
const CONST_RAW = [{"cons_id": "BKK_1", "winner_party": "a]b"}, {"cons_id": "BKK_2"}];

// Party List MP (บส. รายชื่อ)
var PARTYLIST_RAW = [
  {"cons_id": "BKK_PL", "cons_no": 1},
];
`
	cons, pl, err := ParseBundle([]byte(bundle))
	require.NoError(t, err)

	require.Len(t, cons, 2)
	assert.Equal(t, "BKK_1", cons[0]["cons_id"])
	assert.Equal(t, "a]b", cons[0]["winner_party"])
	require.Len(t, pl, 1)
	assert.Equal(t, json.Number("1"), pl[0]["cons_no"])
}

func TestParseBundle_MissingVariable(t *testing.T) {
	_, _, err := ParseBundle([]byte(`const CONST_RAW = [];`))
	assert.ErrorIs(t, err, ErrMissingVariable)

	_, _, err = ParseBundle([]byte(`const MY_CONST_RAW = []; const PARTYLIST_RAW = [];`))
	assert.ErrorIs(t, err, ErrMissingVariable)

	_, _, err = ParseBundle([]byte(`const CONST_RAW = [{"a": 1}; const PARTYLIST_RAW = [`))
	assert.Error(t, err)
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	consPath := filepath.Join(dir, "constituency.json")
	plPath := filepath.Join(dir, "party_list.json")
	require.NoError(t, os.WriteFile(consPath, []byte(`[{"cons_id": "BKK_1"}, {"cons_id": "BKK_2"}]`), 0o644))
	require.NoError(t, os.WriteFile(plPath, []byte(`[{"cons_id": "BKK_PL"}]`), 0o644))

	cons, pl, err := LoadFiles(context.Background(), consPath, plPath)
	require.NoError(t, err)
	assert.Len(t, cons, 2)
	assert.Equal(t, []models.RawRecord{{"cons_id": "BKK_PL"}}, pl)
}

func TestLoadFiles_Errors(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	notArray := filepath.Join(dir, "object.json")
	require.NoError(t, os.WriteFile(good, []byte(`[]`), 0o644))
	require.NoError(t, os.WriteFile(notArray, []byte(`{}`), 0o644))

	_, _, err := LoadFiles(context.Background(), good, filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, _, err = LoadFiles(context.Background(), notArray, good)
	assert.ErrorIs(t, err, ErrNotArray)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = LoadFiles(ctx, good, good)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadBundle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "election_data.js")
	require.NoError(t, os.WriteFile(path, []byte(`var CONST_RAW = [{}]; var PARTYLIST_RAW = [{}, {}];`), 0o644))

	cons, pl, err := LoadBundle(path)
	require.NoError(t, err)
	assert.Len(t, cons, 1)
	assert.Len(t, pl, 2)
}

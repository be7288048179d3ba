// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/danielhkuo/ballotcheck/models"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindFloat
)

func (k fieldKind) String() string {
	switch k {
	case kindInt:
		return "integer"
	case kindFloat:
		return "number"
	default:
		return "string"
	}
}

// fieldSpec describes one required field and where its value lands
// in the typed record.
type fieldSpec struct {
	name     string
	kind     fieldKind
	setStr   func(*models.ElectionRecord, string)
	setInt   func(*models.ElectionRecord, int64)
	setFloat func(*models.ElectionRecord, float64)
}

func str(name string, set func(*models.ElectionRecord, string)) fieldSpec {
	return fieldSpec{name: name, kind: kindString, setStr: set}
}

func integer(name string, set func(*models.ElectionRecord, int64)) fieldSpec {
	return fieldSpec{name: name, kind: kindInt, setInt: set}
}

func float(name string, set func(*models.ElectionRecord, float64)) fieldSpec {
	return fieldSpec{name: name, kind: kindFloat, setFloat: set}
}

// recordFields lists every required field in schema order.
var recordFields = []fieldSpec{
	str(models.FieldConsID, func(r *models.ElectionRecord, v string) { r.ConsID = v }),
	str(models.FieldProvID, func(r *models.ElectionRecord, v string) { r.ProvID = v }),
	str(models.FieldProvinceThai, func(r *models.ElectionRecord, v string) { r.ProvinceThai = v }),
	str(models.FieldProvinceEng, func(r *models.ElectionRecord, v string) { r.ProvinceEng = v }),
	integer(models.FieldConsNo, func(r *models.ElectionRecord, v int64) { r.ConsNo = v }),

	integer(models.FieldInvalidVotes, func(r *models.ElectionRecord, v int64) { r.InvalidVotes = v }),
	float(models.FieldPercentInvalid, func(r *models.ElectionRecord, v float64) { r.PercentInvalid = v }),
	integer(models.FieldTurnOut, func(r *models.ElectionRecord, v int64) { r.TurnOut = v }),

	integer(models.FieldInvalid2026, func(r *models.ElectionRecord, v int64) { r.Invalid2026 = v }),
	integer(models.FieldTurnout2026, func(r *models.ElectionRecord, v int64) { r.Turnout2026 = v }),
	float(models.FieldPctTurnout2026, func(r *models.ElectionRecord, v float64) { r.PctTurnout2026 = v }),
	float(models.FieldInvalidPct2026, func(r *models.ElectionRecord, v float64) { r.InvalidPct2026 = v }),

	integer(models.FieldInvalidChange, func(r *models.ElectionRecord, v int64) { r.InvalidChange = v }),
	float(models.FieldInvalidPctDelta, func(r *models.ElectionRecord, v float64) { r.InvalidPctChange = v }),

	str(models.FieldWinnerParty, func(r *models.ElectionRecord, v string) { r.WinnerParty = v }),
	integer(models.FieldMarginVotes, func(r *models.ElectionRecord, v int64) { r.MarginVotes = v }),
	integer(models.FieldWinnerVotes, func(r *models.ElectionRecord, v int64) { r.WinnerVotes = v }),
	integer(models.FieldRunnerupVotes, func(r *models.ElectionRecord, v int64) { r.RunnerupVotes = v }),

	str(models.FieldWinnerParty2569, func(r *models.ElectionRecord, v string) { r.WinnerParty2569 = v }),
	integer(models.FieldWinnerVotes2569, func(r *models.ElectionRecord, v int64) { r.WinnerVotes2569 = v }),
	integer(models.FieldMargin2569, func(r *models.ElectionRecord, v int64) { r.Margin2569 = v }),
	str(models.FieldRunnerUpParty, func(r *models.ElectionRecord, v string) { r.RunnerUpParty = v }),
	integer(models.FieldRunnerUpVotes, func(r *models.ElectionRecord, v int64) { r.RunnerUpVotes = v }),
}

// fieldProblem is a presence, kind, or finiteness failure of one field.
type fieldProblem struct {
	field  string
	rule   models.ViolationKind
	detail string
}

// decodeRecord converts a raw record into the typed schema. Fields that
// fail are left zero, reported, and marked bad so later checks skip them.
func decodeRecord(raw models.RawRecord) (models.ElectionRecord, map[string]bool, []fieldProblem) {
	var rec models.ElectionRecord
	bad := make(map[string]bool)
	var problems []fieldProblem

	fail := func(spec fieldSpec, rule models.ViolationKind, format string, args ...any) {
		bad[spec.name] = true
		problems = append(problems, fieldProblem{
			field:  spec.name,
			rule:   rule,
			detail: fmt.Sprintf(format, args...),
		})
	}

	for _, spec := range recordFields {
		v, present := raw[spec.name]
		if !present || v == nil {
			fail(spec, models.MissingOrInvalidField, "%s is missing", spec.name)
			continue
		}

		switch spec.kind {
		case kindString:
			s, ok := v.(string)
			if !ok {
				fail(spec, models.MissingOrInvalidField, "%s must be a string, got %s", spec.name, describe(v))
				continue
			}
			if strings.TrimSpace(s) == "" {
				fail(spec, models.MissingOrInvalidField, "%s is empty", spec.name)
				continue
			}
			spec.setStr(&rec, s)

		case kindInt, kindFloat:
			f, ok := numberValue(v)
			if !ok {
				fail(spec, models.MissingOrInvalidField, "%s must be a %s, got %s", spec.name, spec.kind, describe(v))
				continue
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				fail(spec, models.OutOfRange, "%s is not finite (%v)", spec.name, f)
				continue
			}
			if spec.kind == kindFloat {
				spec.setFloat(&rec, f)
				continue
			}
			if f != math.Trunc(f) || math.Abs(f) > maxExactInt {
				fail(spec, models.MissingOrInvalidField, "%s must be an integer, got %v", spec.name, f)
				continue
			}
			spec.setInt(&rec, int64(f))
		}
	}

	return rec, bad, problems
}

// maxExactInt is the largest integer a float64 holds exactly.
const maxExactInt = 1 << 53

// numberValue extracts a numeric value. Strings are never numbers, even
// when they look like one.
func numberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			// ParseFloat returns ±Inf with ErrRange on overflow.
			if errors.Is(err, strconv.ErrRange) {
				return f, true
			}
			return 0, false
		}
		return f, true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	default:
		return 0, false
	}
}

func describe(v any) string {
	switch t := v.(type) {
	case string:
		return fmt.Sprintf("string %q", t)
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}

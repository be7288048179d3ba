// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package validation

import (
	"fmt"
	"regexp"

	"github.com/danielhkuo/ballotcheck/models"
)

var provIDPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// checked is a decoded record plus the fields that failed decoding.
type checked struct {
	pos int
	id  string
	rec models.ElectionRecord
	bad map[string]bool
}

// ok reports whether every named field decoded cleanly.
func (r checked) ok(fields ...string) bool {
	for _, f := range fields {
		if r.bad[f] {
			return false
		}
	}
	return true
}

type intField struct {
	name  string
	value int64
}

type floatField struct {
	name  string
	value float64
}

func (v *Validator) checkDataset(c *collector, dataset string, records []models.RawRecord, expected int) []checked {
	if len(records) != expected {
		c.violate(dataset, "", nil, models.CardinalityMismatch, "",
			"expected %d %s records, found %d", expected, dataset, len(records))
	}

	out := make([]checked, 0, len(records))
	for pos, raw := range records {
		if raw == nil {
			c.violate(dataset, positionLabel(pos), []int{pos}, models.MissingOrInvalidField, "",
				"record at position %d is not an object", pos)
			continue
		}

		rec, bad, problems := decodeRecord(raw)
		r := checked{pos: pos, id: positionLabel(pos), rec: rec, bad: bad}
		if !bad[models.FieldConsID] {
			r.id = rec.ConsID
		}

		for _, p := range problems {
			c.violate(dataset, r.id, []int{pos}, p.rule, p.field, "%s", p.detail)
		}

		v.checkIdentity(c, dataset, r)
		v.checkRanges(c, dataset, r)
		v.checkArithmetic(c, dataset, r)
		v.checkMargins(c, dataset, r)
		v.checkReferences(c, dataset, r)
		v.checkTypical(c, dataset, r)

		out = append(out, r)
	}

	v.checkUniqueness(c, dataset, out)
	v.checkOutliers(c, dataset, out)

	return out
}

// checkIdentity verifies prov_id and the cons_id naming convention.
func (v *Validator) checkIdentity(c *collector, dataset string, r checked) {
	if !r.ok(models.FieldProvID) {
		return
	}
	if !provIDPattern.MatchString(r.rec.ProvID) {
		c.violate(dataset, r.id, []int{r.pos}, models.MissingOrInvalidField, models.FieldProvID,
			"prov_id %q is not a 3-letter uppercase code", r.rec.ProvID)
		return
	}
	if !r.ok(models.FieldConsID) {
		return
	}

	var want string
	switch dataset {
	case models.DatasetPartyList:
		want = r.rec.ProvID + "_PL"
	default:
		if !r.ok(models.FieldConsNo) {
			return
		}
		want = fmt.Sprintf("%s_%d", r.rec.ProvID, r.rec.ConsNo)
	}
	if r.rec.ConsID != want {
		c.violate(dataset, r.id, []int{r.pos}, models.MissingOrInvalidField, models.FieldConsID,
			"cons_id %q does not match expected %q", r.rec.ConsID, want)
	}
}

// checkRanges enforces sign and percentage bounds.
func (v *Validator) checkRanges(c *collector, dataset string, r checked) {
	if r.ok(models.FieldConsNo) {
		switch {
		case r.rec.ConsNo < 1:
			c.violate(dataset, r.id, []int{r.pos}, models.OutOfRange, models.FieldConsNo,
				"cons_no must be positive, got %d", r.rec.ConsNo)
		case dataset == models.DatasetConstituency && r.rec.ConsNo > v.opts.maxConsNo:
			c.violate(dataset, r.id, []int{r.pos}, models.OutOfRange, models.FieldConsNo,
				"cons_no %d exceeds %d", r.rec.ConsNo, v.opts.maxConsNo)
		}
	}

	counts := []intField{
		{models.FieldInvalidVotes, r.rec.InvalidVotes},
		{models.FieldTurnOut, r.rec.TurnOut},
		{models.FieldInvalid2026, r.rec.Invalid2026},
		{models.FieldTurnout2026, r.rec.Turnout2026},
		{models.FieldWinnerVotes, r.rec.WinnerVotes},
		{models.FieldRunnerupVotes, r.rec.RunnerupVotes},
		{models.FieldWinnerVotes2569, r.rec.WinnerVotes2569},
		{models.FieldRunnerUpVotes, r.rec.RunnerUpVotes},
	}
	for _, f := range counts {
		if r.ok(f.name) && f.value < 0 {
			c.violate(dataset, r.id, []int{r.pos}, models.OutOfRange, f.name,
				"%s must not be negative, got %d", f.name, f.value)
		}
	}

	percents := []floatField{
		{models.FieldPercentInvalid, r.rec.PercentInvalid},
		{models.FieldPctTurnout2026, r.rec.PctTurnout2026},
		{models.FieldInvalidPct2026, r.rec.InvalidPct2026},
	}
	for _, f := range percents {
		if r.ok(f.name) && (f.value < 0 || f.value > 100) {
			c.violate(dataset, r.id, []int{r.pos}, models.OutOfRange, f.name,
				"%s must be within [0, 100], got %v", f.name, f.value)
		}
	}
	if r.ok(models.FieldInvalidPctDelta) && (r.rec.InvalidPctChange < -100 || r.rec.InvalidPctChange > 100) {
		c.violate(dataset, r.id, []int{r.pos}, models.OutOfRange, models.FieldInvalidPctDelta,
			"invalid_pct_change must be within [-100, 100], got %v", r.rec.InvalidPctChange)
	}

	if r.ok(models.FieldInvalidVotes, models.FieldTurnOut) && r.rec.TurnOut >= 0 && r.rec.InvalidVotes > r.rec.TurnOut {
		c.violate(dataset, r.id, []int{r.pos}, models.OutOfRange, models.FieldInvalidVotes,
			"invalid_votes %d exceeds turn_out %d", r.rec.InvalidVotes, r.rec.TurnOut)
	}
	if r.ok(models.FieldInvalid2026, models.FieldTurnout2026) && r.rec.Turnout2026 >= 0 && r.rec.Invalid2026 > r.rec.Turnout2026 {
		c.violate(dataset, r.id, []int{r.pos}, models.OutOfRange, models.FieldInvalid2026,
			"invalid_2026 %d exceeds turnout_2026 %d", r.rec.Invalid2026, r.rec.Turnout2026)
	}
}

// checkArithmetic recomputes the derived change fields and, depending on
// options, the invalid-ballot percentages.
func (v *Validator) checkArithmetic(c *collector, dataset string, r checked) {
	if r.ok(models.FieldInvalidChange, models.FieldInvalid2026, models.FieldInvalidVotes) {
		want := r.rec.Invalid2026 - r.rec.InvalidVotes
		if r.rec.InvalidChange != want {
			c.violate(dataset, r.id, []int{r.pos}, models.ArithmeticInconsistency, models.FieldInvalidChange,
				"invalid_change is %d, expected invalid_2026 - invalid_votes = %d", r.rec.InvalidChange, want)
		}
	}

	if r.ok(models.FieldInvalidPctDelta, models.FieldInvalidPct2026, models.FieldPercentInvalid) {
		want := percentDelta(r.rec.InvalidPct2026, r.rec.PercentInvalid)
		if !within(r.rec.InvalidPctChange, want, v.opts.percentTolerance) {
			c.violate(dataset, r.id, []int{r.pos}, models.ArithmeticInconsistency, models.FieldInvalidPctDelta,
				"invalid_pct_change is %v, expected invalid_pct_2026 - percent_invalid = %s",
				r.rec.InvalidPctChange, round4(want))
		}
	}

	v.checkTurnoutRatio(c, dataset, r, models.FieldPercentInvalid, r.rec.PercentInvalid,
		models.FieldInvalidVotes, r.rec.InvalidVotes, models.FieldTurnOut, r.rec.TurnOut)
	v.checkTurnoutRatio(c, dataset, r, models.FieldInvalidPct2026, r.rec.InvalidPct2026,
		models.FieldInvalid2026, r.rec.Invalid2026, models.FieldTurnout2026, r.rec.Turnout2026)
}

func (v *Validator) checkTurnoutRatio(c *collector, dataset string, r checked,
	pctField string, pct float64, invalidField string, invalid int64, turnoutField string, turnout int64) {
	if !r.ok(pctField, invalidField, turnoutField) || turnout <= 0 || invalid < 0 {
		return
	}
	want := share(invalid, turnout)
	if within(pct, want, v.opts.percentTolerance) {
		return
	}

	const format = "%s is %v, expected %s / %s * 100 = %s"
	if v.opts.strictTurnoutRatio {
		c.violate(dataset, r.id, []int{r.pos}, models.ArithmeticInconsistency, pctField,
			format, pctField, pct, invalidField, turnoutField, round4(want))
		return
	}
	c.warn(dataset, r.id, r.pos, models.TurnoutRatioMismatch, pctField,
		format, pctField, pct, invalidField, turnoutField, round4(want))
}

// checkMargins recomputes both rounds' winner margins.
func (v *Validator) checkMargins(c *collector, dataset string, r checked) {
	v.checkMargin(c, dataset, r,
		models.FieldWinnerVotes, r.rec.WinnerVotes,
		models.FieldRunnerupVotes, r.rec.RunnerupVotes,
		models.FieldMarginVotes, r.rec.MarginVotes)
	v.checkMargin(c, dataset, r,
		models.FieldWinnerVotes2569, r.rec.WinnerVotes2569,
		models.FieldRunnerUpVotes, r.rec.RunnerUpVotes,
		models.FieldMargin2569, r.rec.Margin2569)
}

func (v *Validator) checkMargin(c *collector, dataset string, r checked,
	winnerField string, winner int64, runnerField string, runner int64, marginField string, margin int64) {
	pairOK := r.ok(winnerField, runnerField)
	if pairOK && winner < runner {
		c.violate(dataset, r.id, []int{r.pos}, models.InvalidMargin, runnerField,
			"%s %d exceeds %s %d", runnerField, runner, winnerField, winner)
	}

	if !r.ok(marginField) {
		return
	}
	if margin < 0 {
		c.violate(dataset, r.id, []int{r.pos}, models.InvalidMargin, marginField,
			"%s is negative (%d)", marginField, margin)
		return
	}
	if pairOK && margin != winner-runner {
		c.violate(dataset, r.id, []int{r.pos}, models.InvalidMargin, marginField,
			"%s is %d, expected %s - %s = %d", marginField, margin, winnerField, runnerField, winner-runner)
	}
}

// checkReferences looks up the province triple and party names.
func (v *Validator) checkReferences(c *collector, dataset string, r checked) {
	if r.ok(models.FieldProvID, models.FieldProvinceThai, models.FieldProvinceEng) {
		key := provinceKey{r.rec.ProvID, r.rec.ProvinceThai, r.rec.ProvinceEng}
		if _, found := v.provinces[key]; !found {
			c.violate(dataset, r.id, []int{r.pos}, models.UnknownReference, models.FieldProvID,
				"province (%s, %s, %s) is not in the province table",
				r.rec.ProvID, r.rec.ProvinceThai, r.rec.ProvinceEng)
		}
	}

	parties := []struct{ field, name string }{
		{models.FieldWinnerParty, r.rec.WinnerParty},
		{models.FieldWinnerParty2569, r.rec.WinnerParty2569},
		{models.FieldRunnerUpParty, r.rec.RunnerUpParty},
	}
	for _, p := range parties {
		if r.ok(p.field) && !v.parties[p.name] {
			c.violate(dataset, r.id, []int{r.pos}, models.UnknownReference, p.field,
				"party %q is not in the party table", p.name)
		}
	}
}

// Typical ranges for real data. Values outside them are legal but suspicious.
const (
	typicalInvalidMin = 2.0
	typicalInvalidMax = 15.0
	typicalChangeMin  = -10.0
	typicalChangeMax  = 10.0
	typicalTurnoutMin = 50.0
	typicalTurnoutMax = 80.0
)

// checkTypical emits advisory warnings.
func (v *Validator) checkTypical(c *collector, dataset string, r checked) {
	atypical := func(field string, value, lo, hi, hardLo, hardHi float64) {
		if !r.ok(field) || value < hardLo || value > hardHi {
			return
		}
		if value < lo || value > hi {
			c.warn(dataset, r.id, r.pos, models.AtypicalValue, field,
				"%s %v is outside the typical range %v to %v", field, value, lo, hi)
		}
	}
	atypical(models.FieldPercentInvalid, r.rec.PercentInvalid, typicalInvalidMin, typicalInvalidMax, 0, 100)
	atypical(models.FieldInvalidPct2026, r.rec.InvalidPct2026, typicalInvalidMin, typicalInvalidMax, 0, 100)
	atypical(models.FieldInvalidPctDelta, r.rec.InvalidPctChange, typicalChangeMin, typicalChangeMax, -100, 100)
	atypical(models.FieldPctTurnout2026, r.rec.PctTurnout2026, typicalTurnoutMin, typicalTurnoutMax, 0, 100)

	if r.ok(models.FieldTurnOut, models.FieldInvalidVotes, models.FieldWinnerVotes) &&
		r.rec.TurnOut == 0 && r.rec.InvalidVotes == 0 && r.rec.WinnerVotes == 0 {
		c.warn(dataset, r.id, r.pos, models.PlaceholderData, models.FieldTurnOut,
			"2566 figures are all zero")
	}

	if dataset == models.DatasetPartyList && r.ok(models.FieldConsNo) && r.rec.ConsNo > 1 {
		c.warn(dataset, r.id, r.pos, models.UnconventionalPartyListNumber, models.FieldConsNo,
			"party-list cons_no is %d, expected 1", r.rec.ConsNo)
	}
}

// checkUniqueness reports each cons_id that occurs more than once,
// naming every position it occupies.
func (v *Validator) checkUniqueness(c *collector, dataset string, records []checked) {
	positions := make(map[string][]int)
	var order []string
	for _, r := range records {
		if !r.ok(models.FieldConsID) {
			continue
		}
		if _, seen := positions[r.rec.ConsID]; !seen {
			order = append(order, r.rec.ConsID)
		}
		positions[r.rec.ConsID] = append(positions[r.rec.ConsID], r.pos)
	}

	for _, id := range order {
		pos := positions[id]
		if len(pos) < 2 {
			continue
		}
		c.violate(dataset, id, pos, models.DuplicateIdentifier, models.FieldConsID,
			"cons_id %q appears at positions %s", id, joinPositions(pos))
	}
}

// checkOutliers flags invalid-ballot percentages far outside the bulk of
// the dataset.
func (v *Validator) checkOutliers(c *collector, dataset string, records []checked) {
	fields := []struct {
		name  string
		value func(models.ElectionRecord) float64
	}{
		{models.FieldPercentInvalid, func(e models.ElectionRecord) float64 { return e.PercentInvalid }},
		{models.FieldInvalidPct2026, func(e models.ElectionRecord) float64 { return e.InvalidPct2026 }},
	}

	for _, f := range fields {
		var values []float64
		var members []checked
		for _, r := range records {
			x := f.value(r.rec)
			if !r.ok(f.name) || x < 0 || x > 100 {
				continue
			}
			values = append(values, x)
			members = append(members, r)
		}

		lo, hi, ok := outlierFence(values, v.opts.outlierSpread)
		if !ok {
			continue
		}
		for i, x := range values {
			if x < lo || x > hi {
				r := members[i]
				c.warn(dataset, r.id, r.pos, models.AtypicalValue, f.name,
					"%s %v is an outlier in this dataset (expected %.2f to %.2f)", f.name, x, lo, hi)
			}
		}
	}
}

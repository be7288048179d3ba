// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package validation

import (
	"math"

	"github.com/danielhkuo/ballotcheck/models"
)

// provinceTotals pools constituency counts for one province.
type provinceTotals struct {
	first        checked
	invalid      int64
	turnout      int64
	invalid2026  int64
	turnout2026  int64
	complete2566 bool
	complete2026 bool
}

// checkCoherence compares each province's pooled constituency invalid
// share with its party-list record and reports provinces present in only
// one dataset. Findings are warnings; the datasets count ballots
// differently and are not expected to agree exactly.
func (v *Validator) checkCoherence(c *collector, constituency, partyList []checked) {
	totals := make(map[string]*provinceTotals)
	var order []string
	for _, r := range constituency {
		if !r.ok(models.FieldProvID) {
			continue
		}
		t, seen := totals[r.rec.ProvID]
		if !seen {
			t = &provinceTotals{first: r, complete2566: true, complete2026: true}
			totals[r.rec.ProvID] = t
			order = append(order, r.rec.ProvID)
		}
		if r.ok(models.FieldInvalidVotes, models.FieldTurnOut) && r.rec.InvalidVotes >= 0 && r.rec.TurnOut >= 0 {
			t.invalid += r.rec.InvalidVotes
			t.turnout += r.rec.TurnOut
		} else {
			t.complete2566 = false
		}
		if r.ok(models.FieldInvalid2026, models.FieldTurnout2026) && r.rec.Invalid2026 >= 0 && r.rec.Turnout2026 >= 0 {
			t.invalid2026 += r.rec.Invalid2026
			t.turnout2026 += r.rec.Turnout2026
		} else {
			t.complete2026 = false
		}
	}

	covered := make(map[string]bool)
	for _, r := range partyList {
		if !r.ok(models.FieldProvID) {
			continue
		}
		code := r.rec.ProvID
		if covered[code] {
			continue
		}
		covered[code] = true

		t, found := totals[code]
		if !found {
			c.warn(models.DatasetPartyList, r.id, r.pos, models.ProvinceCoverageGap, models.FieldProvID,
				"province %s has a party-list record but no constituency records", code)
			continue
		}

		if t.complete2566 && t.turnout > 0 && r.ok(models.FieldPercentInvalid) {
			v.compareShares(c, r, models.FieldPercentInvalid, r.rec.PercentInvalid, t.invalid, t.turnout)
		}
		if t.complete2026 && t.turnout2026 > 0 && r.ok(models.FieldInvalidPct2026) {
			v.compareShares(c, r, models.FieldInvalidPct2026, r.rec.InvalidPct2026, t.invalid2026, t.turnout2026)
		}
	}

	for _, code := range order {
		if covered[code] {
			continue
		}
		first := totals[code].first
		c.warn(models.DatasetConstituency, first.id, first.pos, models.ProvinceCoverageGap, models.FieldProvID,
			"province %s has constituency records but no party-list record", code)
	}
}

func (v *Validator) compareShares(c *collector, pl checked, field string, plShare float64, invalid, turnout int64) {
	consShare := share(invalid, turnout).InexactFloat64()
	diff := math.Abs(consShare - plShare)
	if diff <= v.opts.divergenceThreshold {
		return
	}
	c.warn(models.DatasetPartyList, pl.id, pl.pos, models.InvalidShareDivergence, field,
		"constituency invalid share for %s is %.2f%%, party-list %s is %.2f%% (%.2f pp apart)",
		pl.rec.ProvID, consShare, field, plShare, diff)
}

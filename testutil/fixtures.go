// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"fmt"

	"github.com/danielhkuo/ballotcheck/models"
)

// Fixture parties
var fixtureParties = []models.Party{
	{Name: "ก้าวไกล", Color: "#F47933"},
	{Name: "เพื่อไทย", Color: "#E3001B"},
	{Name: "ภูมิใจไทย", Color: "#1E3A8A"},
	{Name: "ประชาชน", Color: "#FF6A13"},
	{Name: "ประชาธิปัตย์", Color: "#00AEEF"},
	{Name: "พลังประชารัฐ", Color: "#1F4E9C"},
	{Name: "รวมไทยสร้างชาติ", Color: "#2A3E8C"},
	{Name: "ประชาชาติ", Color: "#D4A017"},
}

// TestReference returns a province table of 77 entries and a party table.
// The first two provinces are real (BKK, NWT); the rest use synthetic
// codes XAA, XAB, ...
func TestReference() models.Reference {
	provinces := make([]models.Province, 0, models.PartyListCount)
	provinces = append(provinces,
		models.Province{Code: "BKK", Thai: "กรุงเทพมหานคร", Eng: "BANGKOK", Region: models.RegionBangkok},
		models.Province{Code: "NWT", Thai: "นราธิวาส", Eng: "NARATHIWAT", Region: models.RegionSouth},
	)
	for i := 0; len(provinces) < models.PartyListCount; i++ {
		code := fmt.Sprintf("X%c%c", 'A'+i/26, 'A'+i%26)
		provinces = append(provinces, models.Province{
			Code:   code,
			Thai:   "จังหวัด" + code,
			Eng:    "PROVINCE " + code,
			Region: models.Regions[i%len(models.Regions)],
		})
	}

	parties := make([]models.Party, len(fixtureParties))
	copy(parties, fixtureParties)

	return models.Reference{Provinces: provinces, Parties: parties}
}

// consPerProvince returns how many constituencies province p has:
// the first 15 have 6 and the remaining 62 have 5, 400 in all.
func consPerProvince(p int) int {
	if p < 15 {
		return 6
	}
	return 5
}

// ConstituencyFixture returns 400 constituency records that pass every
// rule and raise no warnings against TestReference. Invalid-ballot
// percentages are constant within a province so pooled shares are exact.
func ConstituencyFixture() []models.ElectionRecord {
	ref := TestReference()
	records := make([]models.ElectionRecord, 0, models.ConstituencyCount)
	k := 0
	for p, prov := range ref.Provinces {
		for n := 1; n <= consPerProvince(p); n++ {
			records = append(records, fixtureRecord(prov, p, k, fmt.Sprintf("%s_%d", prov.Code, n), int64(n),
				int64(100000+(k%20)*1000), 2000))
			k++
		}
	}
	return records
}

// PartyListFixture returns 77 party-list records consistent with
// ConstituencyFixture: counts are province totals.
func PartyListFixture() []models.ElectionRecord {
	ref := TestReference()
	totals := make(map[string]models.ElectionRecord)
	for _, r := range ConstituencyFixture() {
		t := totals[r.ProvID]
		t.TurnOut += r.TurnOut
		t.Turnout2026 += r.Turnout2026
		totals[r.ProvID] = t
	}

	records := make([]models.ElectionRecord, 0, models.PartyListCount)
	for p, prov := range ref.Provinces {
		t := totals[prov.Code]
		rec := fixtureRecord(prov, p, p, prov.Code+"_PL", 1, t.TurnOut, t.Turnout2026-t.TurnOut)
		records = append(records, rec)
	}
	return records
}

// fixtureRecord builds one consistent record. turnOut and growth must be
// multiples of 100 so the invalid counts divide exactly.
func fixtureRecord(prov models.Province, p, k int, consID string, consNo, turnOut, growth int64) models.ElectionRecord {
	pct2566 := int64(4 + p%5)
	pct2569 := int64(3 + p%4)
	turnout2026 := turnOut + growth

	invalid := turnOut * pct2566 / 100
	invalid2026 := turnout2026 * pct2569 / 100

	parties := fixtureParties
	winner := int64(40000 + (k%7)*100)
	runner := int64(30000 + (k%3)*100)
	winner2569 := int64(42000 + (k%5)*100)
	runner2569 := int64(31000)

	return models.ElectionRecord{
		ConsID:       consID,
		ProvID:       prov.Code,
		ProvinceThai: prov.Thai,
		ProvinceEng:  prov.Eng,
		ConsNo:       consNo,

		InvalidVotes:   invalid,
		PercentInvalid: float64(pct2566),
		TurnOut:        turnOut,

		Invalid2026:    invalid2026,
		Turnout2026:    turnout2026,
		PctTurnout2026: float64(60 + p%10),
		InvalidPct2026: float64(pct2569),

		InvalidChange:    invalid2026 - invalid,
		InvalidPctChange: float64(pct2569 - pct2566),

		WinnerParty:   parties[k%len(parties)].Name,
		MarginVotes:   winner - runner,
		WinnerVotes:   winner,
		RunnerupVotes: runner,

		WinnerParty2569: parties[(k+1)%len(parties)].Name,
		WinnerVotes2569: winner2569,
		Margin2569:      winner2569 - runner2569,
		RunnerUpParty:   parties[(k+2)%len(parties)].Name,
		RunnerUpVotes:   runner2569,
	}
}

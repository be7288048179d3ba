// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/danielhkuo/ballotcheck/models"
)

func sampleRun() models.ValidationRun {
	pos := 4
	return models.ValidationRun{
		ID:         "run-1",
		InputsHash: "abc123",
		CreatedAt:  time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC),
		Report: models.ValidationReport{
			Valid: false,
			Violations: []models.Violation{
				{
					Dataset:   models.DatasetConstituency,
					RecordID:  "BKK_2",
					Positions: []int{1, 4},
					Rule:      models.DuplicateIdentifier,
					Field:     models.FieldConsID,
					Detail:    `cons_id "BKK_2" appears at positions 1, 4`,
				},
				{
					Dataset: models.DatasetPartyList,
					Rule:    models.CardinalityMismatch,
					Detail:  "expected 77 party_list records, found 76",
				},
			},
			Warnings: []models.Warning{
				{
					Dataset:  models.DatasetPartyList,
					RecordID: "NWT_PL",
					Position: &pos,
					Kind:     models.InvalidShareDivergence,
					Field:    models.FieldPercentInvalid,
					Detail:   "apart",
				},
			},
			Summary: models.ReportSummary{
				ConstituencyCount: 400,
				PartyListCount:    76,
				ViolationsByRule: map[string]int{
					string(models.DuplicateIdentifier): 1,
					string(models.CardinalityMismatch): 1,
				},
				WarningsByKind: map[string]int{
					string(models.InvalidShareDivergence): 1,
				},
			},
		},
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleRun()))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet, ViolationsSheet, WarningsSheet}, f.GetSheetList())

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Run ID", "run-1"}, summary[0])
	assert.Equal(t, []string{"Created", "2026-02-09T12:00:00Z"}, summary[1])
	assert.Equal(t, []string{"Valid", "FALSE"}, summary[3])

	violations, err := f.GetRows(ViolationsSheet)
	require.NoError(t, err)
	require.Len(t, violations, 3)
	assert.Equal(t, []string{"Dataset", "Record", "Positions", "Rule", "Field", "Detail"}, violations[0])
	assert.Equal(t, "1, 4", violations[1][2])
	assert.Equal(t, string(models.DuplicateIdentifier), violations[1][3])
	assert.Equal(t, string(models.CardinalityMismatch), violations[2][3])

	warnings, err := f.GetRows(WarningsSheet)
	require.NoError(t, err)
	require.Len(t, warnings, 2)
	assert.Equal(t, []string{models.DatasetPartyList, "NWT_PL", "4", string(models.InvalidShareDivergence), models.FieldPercentInvalid, "apart"}, warnings[1])
}

func TestWriteXLSX_EmptyReport(t *testing.T) {
	run := models.ValidationRun{
		ID: "run-2",
		Report: models.ValidationReport{
			Valid:      true,
			Violations: []models.Violation{},
			Warnings:   []models.Warning{},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, run))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ViolationsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

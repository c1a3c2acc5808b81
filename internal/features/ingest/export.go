package ingest

import (
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	errorsSheet  = "Errors"
)

// ExportSummaryXLSX renders a summary as a workbook with the counters on one
// sheet and the recorded errors on another.
func ExportSummaryXLSX(s *SyncSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with Sheet1
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(errorsSheet); err != nil {
		return nil, err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	finished := ""
	if s.FinishedAt != nil {
		finished = s.FinishedAt.Format(time.RFC3339)
	}
	rows := [][]any{
		{"Metric", "Value"},
		{"Run ID", s.RunID},
		{"Kind", string(s.Kind)},
		{"Started At", s.StartedAt.Format(time.RFC3339)},
		{"Finished At", finished},
		{"Accounts Processed", s.AccountsProcessed},
		{"Campaigns Fetched", s.CampaignsFetched},
		{"Campaigns Upserted", s.CampaignsUpserted},
		{"Forms Detected", s.FormsDetected},
		{"Forms Synced", s.FormsSynced},
		{"Leads Fetched", s.LeadsFetched},
		{"Leads Inserted", s.LeadsInserted},
		{"Leads Skipped", s.LeadsSkipped},
		{"Errors", len(s.Errors)},
	}
	if err := writeRows(f, summarySheet, rows); err != nil {
		return nil, err
	}
	f.SetCellStyle(summarySheet, "A1", "B1", headerStyle)
	f.SetColWidth(summarySheet, "A", "A", 22)
	f.SetColWidth(summarySheet, "B", "B", 40)

	errRows := [][]any{{"Scope", "ID", "Message"}}
	for _, e := range s.Errors {
		errRows = append(errRows, []any{e.Scope, e.ID, e.Message})
	}
	if err := writeRows(f, errorsSheet, errRows); err != nil {
		return nil, err
	}
	f.SetCellStyle(errorsSheet, "A1", "C1", headerStyle)
	f.SetColWidth(errorsSheet, "A", "B", 20)
	f.SetColWidth(errorsSheet, "C", "C", 80)

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

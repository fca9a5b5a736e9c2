package experiment

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/xuri/excelize/v2"

	"github.com/gcbaptista/searchlab/model"
)

const (
	summarySheet = "Summary"
	runsSheet    = "Runs"
)

// WriteText prints the summaries and, for each run, up to hitsPerRun hits.
func (r *Report) WriteText(w io.Writer, hitsPerRun int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRESET\tQUERIES\tMAP\tPRECISION\tRECALL")
	for _, s := range r.Summaries {
		fmt.Fprintf(tw, "%s\t%d\t%.4f\t%.4f\t%.4f\n", s.Preset, s.Queries, s.MAP, s.MeanPrecision, s.MeanRecall)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, run := range r.Runs {
		fmt.Fprintf(w, "\n%s / %s: %d hits, P=%.4f R=%.4f AP=%.4f\n  parsed: %s\n",
			run.Preset, run.Query, run.Total, run.Precision, run.Recall, run.AveragePrecision, run.Echo.Parsed)
		if len(run.Hits) == 0 {
			fmt.Fprintln(w, "  no results")
			continue
		}
		for i, hit := range run.Hits {
			if hitsPerRun > 0 && i >= hitsPerRun {
				fmt.Fprintf(w, "  ... %d more\n", len(run.Hits)-hitsPerRun)
				break
			}
			fmt.Fprintf(w, "  %d. %s%s %s\n", i+1, relevanceMark(hit), hit.DocumentID, hitLabel(hit))
		}
	}
	return nil
}

// WriteXLSX writes the summaries and the per-run measures as a two-sheet workbook.
func (r *Report) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(summarySheet, "A1", &[]interface{}{"Preset", "Queries", "MAP", "Mean precision", "Mean recall"}); err != nil {
		return err
	}
	for i, s := range r.Summaries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &[]interface{}{s.Preset, s.Queries, s.MAP, s.MeanPrecision, s.MeanRecall}); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(runsSheet); err != nil {
		return err
	}
	header := []interface{}{"Preset", "Query", "Parsed", "Total", "Retrieved", "Relevant", "Relevant retrieved", "Precision", "Recall", "Average precision"}
	if err := f.SetSheetRow(runsSheet, "A1", &header); err != nil {
		return err
	}
	for i, run := range r.Runs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			run.Preset, run.Query, run.Echo.Parsed, run.Total,
			run.Retrieved, run.Relevant, run.RelevantRetrieved,
			run.Precision, run.Recall, run.AveragePrecision,
		}
		if err := f.SetSheetRow(runsSheet, cell, &row); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func relevanceMark(hit model.ResultRecord) string {
	switch {
	case hit.Relevant == nil:
		return "[?] "
	case *hit.Relevant:
		return "[R] "
	default:
		return "[ ] "
	}
}

// hitLabel prefers the title and falls back to the abstract.
func hitLabel(hit model.ResultRecord) string {
	label := hit.Fields[model.FieldTitle]
	if label == "" {
		label = hit.Fields[model.FieldAbstract]
	}
	label = strings.Join(strings.Fields(label), " ")
	if runes := []rune(label); len(runes) > 80 {
		label = string(runes[:77]) + "..."
	}
	return label
}

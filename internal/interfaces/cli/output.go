package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/gridiron-sync/internal/domain/syncrun"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

func writeJSON(w io.Writer, v any) error {
	enc := jsonAPI.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func writeReportTable(w io.Writer, reports []syncrun.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tSTATUS\tSTARTED\tDURATION\tSUCCESS\tERRORS")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.1f%%\t%d\n",
			r.ID,
			r.Type,
			r.Status,
			r.StartedAt.UTC().Format(time.RFC3339),
			(time.Duration(r.DurationMs) * time.Millisecond).String(),
			r.SuccessRate,
			r.ErrorCounts.Total(),
		)
	}
	return tw.Flush()
}

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/YuminosukeSato/multilabelcv/internal/store"
)

func listRuns(c *cli.Context) error {
	s, err := store.NewStore(c.String("db"))
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.ListRuns(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tCREATED\tSPLITTER\tFOLDS\tLABELS\tMACRO F1\tWARNINGS\tDATASET")
	for _, r := range runs {
		f1 := "-"
		if r.MeanMacroF1.Valid {
			f1 = fmt.Sprintf("%.4f ± %.4f", r.MeanMacroF1.Float64, r.StdMacroF1.Float64)
		}
		if r.Cancelled {
			f1 += " (cancelled)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%d\t%s\t%d\t%s\n",
			r.RunID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Splitter,
			r.ValidFolds, r.NSplits, r.NLabels, f1, r.Warnings, r.DatasetPath)
	}
	return tw.Flush()
}

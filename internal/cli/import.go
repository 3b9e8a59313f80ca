package cli

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/lazypower/pacing/internal/importer"
	"github.com/spf13/cobra"
)

var importDryRun bool

var importCmd = &cobra.Command{
	Use:   "import <file.jsonl>",
	Short: "Import events, symptoms and reflections from a JSONL file",
	Long: "Import one JSON record per line. Each record has a type (activity, meal, sleep, " +
		"symptom or reflection) and an at timestamp. Invalid lines are reported and skipped.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Parse and report without writing")
}

func runImport(cmd *cobra.Command, args []string) error {
	batch, err := importer.ParseFile(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if importDryRun {
		for _, s := range batch.Skipped {
			fmt.Fprintf(out, "skipped %s\n", s)
		}
		fmt.Fprintf(out, "would import %s events, %s symptoms, %s reflections\n",
			humanize.Comma(int64(len(batch.Events))),
			humanize.Comma(int64(len(batch.Symptoms))),
			humanize.Comma(int64(len(batch.Reflections))))
		return nil
	}

	eng, closeFn, err := openEngine()
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := eng.Import(context.Background(), batch)
	for _, s := range res.Skipped {
		fmt.Fprintf(out, "skipped %s\n", s)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "imported %s events, %s symptoms, %s reflections\n",
		humanize.Comma(int64(res.Events)),
		humanize.Comma(int64(res.Symptoms)),
		humanize.Comma(int64(res.Reflections)))
	return nil
}

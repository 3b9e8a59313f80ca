package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	timelineDays int
	timelineFrom string
	timelineTo   string
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show load for a range of days",
	RunE:  runTimeline,
}

func init() {
	timelineCmd.Flags().IntVarP(&timelineDays, "days", "n", 14, "Number of days ending at --to")
	timelineCmd.Flags().StringVar(&timelineFrom, "from", "", "First day (YYYY-MM-DD)")
	timelineCmd.Flags().StringVar(&timelineTo, "to", "", "Last day (YYYY-MM-DD, default today)")
}

func runTimeline(cmd *cobra.Command, args []string) error {
	eng, closeFn, err := openEngine()
	if err != nil {
		return err
	}
	defer closeFn()

	cal := eng.Calendar()
	to := cal.DayStart(eng.Now())
	if timelineTo != "" {
		if to, err = cal.ParseDay(timelineTo); err != nil {
			return err
		}
	}
	if timelineDays < 1 {
		return fmt.Errorf("--days must be at least 1")
	}
	from := cal.AddDays(to, -(timelineDays - 1))
	if timelineFrom != "" {
		if from, err = cal.ParseDay(timelineFrom); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	days, err := eng.Timeline(ctx, from, to)
	if err != nil {
		return err
	}
	if len(days) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No days in range.")
		return nil
	}
	for _, d := range days {
		printDay(cmd.OutOrStdout(), d)
	}
	return nil
}

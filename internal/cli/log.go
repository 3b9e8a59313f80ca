package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/lazypower/pacing/internal/store"
	"github.com/spf13/cobra"
)

// --- log command ---

var (
	logAt             string
	logNote           string
	logRecoveryFactor float64
)

var logCmd = &cobra.Command{
	Use:   "log <activity|meal|sleep> <load> [title...]",
	Short: "Log an activity, meal or sleep",
	Long: "Log an event with its load (0-100). Use --at to backdate it and " +
		"--recovery-factor to mark it as changing how fast load wears off (e.g. a bad night).",
	Args: cobra.MinimumNArgs(2),
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	kind, err := store.ParseEventKind(args[0])
	if err != nil {
		return err
	}
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("parse load %q: %w", args[1], err)
	}

	eng, closeFn, err := openEngine()
	if err != nil {
		return err
	}
	defer closeFn()

	ev := &store.Event{
		Kind:  kind,
		Title: strings.Join(args[2:], " "),
		Load:  amount,
		Note:  logNote,
	}
	if cmd.Flags().Changed("recovery-factor") {
		f := logRecoveryFactor
		ev.Recovery = true
		ev.RecoveryFactor = &f
	}
	if logAt != "" {
		at, err := parseWhen(logAt, eng.Calendar().Location(), eng.Now())
		if err != nil {
			return err
		}
		ms := at.UnixMilli()
		ev.BackdatedAt = &ms
	}

	if err := eng.AddEvent(context.Background(), ev); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "logged %s %.1f on %s (%s)\n", ev.Kind, ev.Load, eng.Calendar().Key(ev.EffectiveDate()), ev.ID)
	return nil
}

// --- symptom command ---

var (
	symptomAt       string
	symptomNote     string
	symptomPositive bool
)

var symptomCmd = &cobra.Command{
	Use:   "symptom <name> <severity 1-5>",
	Short: "Log a symptom",
	Long:  "Log a symptom's severity from 1 to 5. Use --positive for wellbeing measures like energy where higher is better.",
	Args:  cobra.ExactArgs(2),
	RunE:  runSymptom,
}

func runSymptom(cmd *cobra.Command, args []string) error {
	severity, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("parse severity %q: %w", args[1], err)
	}

	eng, closeFn, err := openEngine()
	if err != nil {
		return err
	}
	defer closeFn()

	entry := &store.SymptomEntry{
		Name:     args[0],
		Severity: severity,
		Positive: symptomPositive,
		Note:     symptomNote,
	}
	if symptomAt != "" {
		at, err := parseWhen(symptomAt, eng.Calendar().Location(), eng.Now())
		if err != nil {
			return err
		}
		ms := at.UnixMilli()
		entry.BackdatedAt = &ms
	}
	if err := eng.AddSymptom(context.Background(), entry); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "logged %s %d/5 on %s (%s)\n", entry.Name, entry.Severity, eng.Calendar().Key(entry.EffectiveDate()), entry.ID)
	return nil
}

// --- reflect command ---

var (
	reflectDay   string
	reflectNote  string
	reflectClear bool
)

var reflectCmd = &cobra.Command{
	Use:   "reflect [multiplier]",
	Short: "Record how a day actually felt",
	Long: "Scale a day's load by how it felt: 0.5 means it felt half as hard as scored, " +
		"1.5 means harder. The adjusted load carries into the following days.",
	Args: cobra.MaximumNArgs(1),
	RunE: runReflect,
}

func runReflect(cmd *cobra.Command, args []string) error {
	if !reflectClear && len(args) == 0 {
		return fmt.Errorf("multiplier required (or --clear)")
	}

	eng, closeFn, err := openEngine()
	if err != nil {
		return err
	}
	defer closeFn()

	cal := eng.Calendar()
	day := cal.DayStart(eng.Now())
	if reflectDay != "" {
		if day, err = cal.ParseDay(reflectDay); err != nil {
			return err
		}
	}

	ctx := context.Background()
	if reflectClear {
		if err := eng.ClearReflection(ctx, day); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cleared reflection for %s\n", cal.Key(day))
		return nil
	}

	m, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("parse multiplier %q: %w", args[0], err)
	}
	if err := eng.SetReflection(ctx, day, m, reflectNote); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s reflected at x%.2f\n", cal.Key(day), m)
	return nil
}

// --- events command ---

var (
	eventsDay    string
	eventsDelete string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List or delete logged events",
	RunE:  runEvents,
}

func runEvents(cmd *cobra.Command, args []string) error {
	eng, closeFn, err := openEngine()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	if eventsDelete != "" {
		id, err := uuid.Parse(eventsDelete)
		if err != nil {
			return fmt.Errorf("parse id: %w", err)
		}
		if err := eng.DeleteEvent(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted %s\n", id)
		return nil
	}

	cal := eng.Calendar()
	day := cal.DayStart(eng.Now())
	if eventsDay != "" {
		if day, err = cal.ParseDay(eventsDay); err != nil {
			return err
		}
	}

	events, err := eng.ListEvents(ctx, day, day)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintf(out, "No events on %s.\n", cal.Key(day))
		return nil
	}

	now := time.Now()
	fmt.Fprintf(out, "## %s\n\n", cal.Key(day))
	for _, e := range events {
		title := e.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(out, "  %-8s %5.1f  %s  %s\n", e.Kind, e.Load, title, humanize.RelTime(e.EffectiveDate(), now, "ago", "from now"))
		if f, ok := e.RecoveryModifier(); ok {
			fmt.Fprintf(out, "           recovery x%.2f\n", f)
		}
		fmt.Fprintf(out, "           %s\n", e.ID)
	}
	return nil
}

func init() {
	logCmd.Flags().StringVar(&logAt, "at", "", `When it happened: RFC 3339, "YYYY-MM-DD HH:MM", or "-3h"`)
	logCmd.Flags().StringVar(&logNote, "note", "", "Free-text note")
	logCmd.Flags().Float64Var(&logRecoveryFactor, "recovery-factor", 1.0, "Mark as recovery modifier with this factor")

	symptomCmd.Flags().StringVar(&symptomAt, "at", "", "When it was felt")
	symptomCmd.Flags().StringVar(&symptomNote, "note", "", "Free-text note")
	symptomCmd.Flags().BoolVar(&symptomPositive, "positive", false, "Higher severity means better (e.g. energy)")

	reflectCmd.Flags().StringVar(&reflectDay, "day", "", "Day to reflect on (YYYY-MM-DD, default today)")
	reflectCmd.Flags().StringVar(&reflectNote, "note", "", "Free-text note")
	reflectCmd.Flags().BoolVar(&reflectClear, "clear", false, "Remove the day's reflection")

	eventsCmd.Flags().StringVar(&eventsDay, "day", "", "Day to list (YYYY-MM-DD, default today)")
	eventsCmd.Flags().StringVar(&eventsDelete, "delete", "", "Delete the event with this ID")
}

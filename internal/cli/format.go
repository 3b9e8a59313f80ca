package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lazypower/pacing/internal/capacity"
	"github.com/lazypower/pacing/internal/engine"
	"github.com/lazypower/pacing/internal/load"
)

const barWidth = 20

// loadBar renders v on a 0-100 scale.
func loadBar(v float64) string {
	n := int(v/load.MaxLoad*barWidth + 0.5)
	n = max(0, min(n, barWidth))
	return "[" + strings.Repeat("#", n) + strings.Repeat(".", barWidth-n) + "]"
}

func printDay(w io.Writer, d engine.DayLoad) {
	fmt.Fprintf(w, "%s  %5.1f %s  %s\n", d.Day, d.EffectiveLoad, loadBar(d.EffectiveLoad), d.RiskLevel)
}

func printDayDetail(w io.Writer, d engine.DayLoad) {
	fmt.Fprintf(w, "## %s\n\n", d.Day)
	fmt.Fprintf(w, "  load:     %.1f %s %s\n", d.DecayedLoad, loadBar(d.DecayedLoad), d.RiskLevel)
	fmt.Fprintf(w, "  today:    %.1f (carried in %.1f)\n", d.RawLoad, d.DecayedLoad-d.RawLoad)
	if d.SymptomLoad > 0 {
		fmt.Fprintf(w, "  symptoms: +%.1f\n", d.SymptomLoad)
	}
	if d.RecoveryModifier != 1 {
		fmt.Fprintf(w, "  recovery: x%.2f\n", d.RecoveryModifier)
	}
	if d.Reflection != nil {
		fmt.Fprintf(w, "  reflection: x%.2f (carries %.1f)\n", *d.Reflection, d.EffectiveLoad)
	}
	b := d.Breakdown
	if b != (load.LoadBreakdown{}) {
		fmt.Fprintf(w, "  breakdown: activity %.0f%%, meal %.0f%%, sleep %.0f%%, symptom %.0f%%\n",
			b.Activity, b.Meal, b.Sleep, b.Symptom)
	}
}

func printCapacity(w io.Writer, info engine.CapacityInfo, now time.Time) {
	fmt.Fprintf(w, "preset:      %s\n", info.Preset)
	fmt.Fprintf(w, "capacity:    %s\n", info.Capacity)
	fmt.Fprintf(w, "sensitivity: %s (symptoms x%.1f)\n", info.Sensitivity, info.Configuration.SymptomMultiplier)
	fmt.Fprintf(w, "recovery:    %s (carry %.0f%%)\n", info.RecoveryWindow, info.Configuration.DecayRate*100)
	t := info.Configuration.Thresholds
	fmt.Fprintf(w, "thresholds:  safe <%.0f, caution <%.0f, high <%.0f\n", t.Safe, t.Caution, t.High)

	if b := info.Baseline; b != nil {
		fmt.Fprintf(w, "baseline:    %.1f from %d good days, set %s (x%.2f)\n",
			b.AverageGoodDayLoad, b.SampleCount, humanize.RelTime(b.EstablishedDate, now, "ago", "from now"), info.BaselineAdjustment)
	} else {
		fmt.Fprintln(w, "baseline:    not calibrated")
	}
	if info.Calibrating {
		fmt.Fprintf(w, "calibrating: %d of %d good days recorded\n", len(info.Samples), capacity.CalibrationSamples)
	}
}

// parseWhen accepts RFC 3339, "YYYY-MM-DD HH:MM", "YYYY-MM-DD" (noon),
// or a negative duration relative to now such as "-3h".
func parseWhen(s string, loc *time.Location, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		if d > 0 {
			return time.Time{}, fmt.Errorf("time %q is in the future", s)
		}
		return now.Add(d), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, loc); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t.Add(12 * time.Hour), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", s)
}

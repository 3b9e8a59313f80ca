package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lazypower/pacing/internal/capacity"
	"github.com/lazypower/pacing/internal/client"
	"github.com/lazypower/pacing/internal/engine"
	"github.com/spf13/cobra"
)

// capacityBackend runs capacity changes on a running server when there is
// one, so its in-memory settings never diverge from the database.
type capacityBackend interface {
	Capacity() (engine.CapacityInfo, error)
	UpdateCapacity(u engine.CapacityUpdate) (engine.CapacityInfo, error)
	StartCalibration() (engine.CapacityInfo, error)
	RecordGoodDay(day string) (engine.CapacityInfo, bool, error)
	CancelCalibration() (engine.CapacityInfo, error)
	ResetBaseline() (engine.CapacityInfo, error)
}

// openCapacityBackend returns the server client if healthy, else a local engine.
func openCapacityBackend() (capacityBackend, func(), error) {
	c := client.NewFromEnv()
	if c.Healthy() {
		return c, func() {}, nil
	}
	eng, closeFn, err := openEngine()
	if err != nil {
		return nil, nil, err
	}
	return localCapacity{eng}, closeFn, nil
}

// localCapacity adapts an engine to capacityBackend when no server is running.
type localCapacity struct {
	eng *engine.Engine
}

func (l localCapacity) Capacity() (engine.CapacityInfo, error) {
	return l.eng.Capacity(), nil
}

func (l localCapacity) UpdateCapacity(u engine.CapacityUpdate) (engine.CapacityInfo, error) {
	return l.eng.UpdateCapacity(u.Apply)
}

func (l localCapacity) StartCalibration() (engine.CapacityInfo, error) {
	return l.eng.StartCalibration(context.Background())
}

func (l localCapacity) RecordGoodDay(day string) (engine.CapacityInfo, bool, error) {
	cal := l.eng.Calendar()
	t := l.eng.Now()
	if day != "" {
		var err error
		if t, err = cal.ParseDay(day); err != nil {
			return engine.CapacityInfo{}, false, err
		}
	}
	return l.eng.RecordGoodDay(context.Background(), t)
}

func (l localCapacity) CancelCalibration() (engine.CapacityInfo, error) {
	return l.eng.CancelCalibration(context.Background())
}

func (l localCapacity) ResetBaseline() (engine.CapacityInfo, error) {
	return l.eng.ResetBaseline(context.Background())
}

// --- capacity command ---

var capacityUpdate engine.CapacityUpdate

var capacityCmd = &cobra.Command{
	Use:   "capacity",
	Short: "Show or change your capacity settings",
	Long: "Show capacity settings. Pass --preset to apply a condition preset, and " +
		"--capacity, --sensitivity or --recovery-window to fine-tune.\n\n" +
		"Presets: " + presetList(),
	RunE: runCapacity,
}

func presetList() string {
	var s string
	for i, p := range capacity.Presets {
		if i > 0 {
			s += ", "
		}
		s += string(p)
	}
	return s
}

func runCapacity(cmd *cobra.Command, args []string) error {
	backend, closeFn, err := openCapacityBackend()
	if err != nil {
		return err
	}
	defer closeFn()

	var info engine.CapacityInfo
	if capacityUpdate != (engine.CapacityUpdate{}) {
		info, err = backend.UpdateCapacity(capacityUpdate)
	} else {
		info, err = backend.Capacity()
	}
	if err != nil {
		return err
	}
	printCapacity(cmd.OutOrStdout(), info, time.Now())
	return nil
}

// --- calibrate command ---

var calibrateCmd = &cobra.Command{
	Use:   "calibrate <start|good-day|cancel|reset> [day]",
	Short: "Calibrate thresholds from your typical good days",
	Long: fmt.Sprintf("Start a calibration, then mark %d good days with good-day. "+
		"Their average load becomes your baseline and scales the risk thresholds.", capacity.CalibrationSamples),
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: []string{"start", "good-day", "cancel", "reset"},
	RunE:      runCalibrate,
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	backend, closeFn, err := openCapacityBackend()
	if err != nil {
		return err
	}
	defer closeFn()

	out := cmd.OutOrStdout()
	var info engine.CapacityInfo
	switch args[0] {
	case "start":
		info, err = backend.StartCalibration()
	case "good-day":
		day := ""
		if len(args) > 1 {
			day = args[1]
		}
		var completed bool
		info, completed, err = backend.RecordGoodDay(day)
		if err == nil && !completed {
			fmt.Fprintf(out, "recorded %s good day of %d\n\n", humanize.Ordinal(len(info.Samples)), capacity.CalibrationSamples)
		}
		if completed {
			fmt.Fprintf(out, "calibration complete\n\n")
		}
	case "cancel":
		info, err = backend.CancelCalibration()
	case "reset":
		info, err = backend.ResetBaseline()
	default:
		return fmt.Errorf("unknown calibrate action %q", args[0])
	}
	if err != nil {
		return err
	}
	printCapacity(out, info, time.Now())
	return nil
}

func init() {
	capacityCmd.Flags().StringVar(&capacityUpdate.Preset, "preset", "", "Apply a condition preset")
	capacityCmd.Flags().StringVar(&capacityUpdate.Capacity, "capacity", "", "low, medium or high")
	capacityCmd.Flags().StringVar(&capacityUpdate.Sensitivity, "sensitivity", "", "sensitive, standard or resilient")
	capacityCmd.Flags().StringVar(&capacityUpdate.RecoveryWindow, "recovery-window", "", "12h, 24h, 48h or 72h")
}

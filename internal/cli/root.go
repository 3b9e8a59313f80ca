package cli

import (
	"fmt"

	"github.com/lazypower/pacing/internal/config"
	"github.com/lazypower/pacing/internal/engine"
	"github.com/lazypower/pacing/internal/store"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "pacing",
	Short: "Track daily energy load and pace around it",
	Long: "Pacing turns logged activities, meals, sleep and symptoms into a daily load score " +
		"that carries over from day to day, so you can see when you are heading for a crash.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.pacing/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(symptomCmd)
	rootCmd.AddCommand(reflectCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(capacityCmd)
	rootCmd.AddCommand(calibrateCmd)
	rootCmd.AddCommand(importCmd)
}

// loadConfig reads --config, or the default path if it exists.
func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}
	return config.Load(path)
}

// openDB opens the configured database.
func openDB(cfg config.Config) (*store.DB, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
	}
	return store.Open(dbPath)
}

// newEngine builds an engine over db from cfg.
func newEngine(cfg config.Config, db *store.DB) (*engine.Engine, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return engine.New(db, engine.Options{
		Location:        loc,
		LookbackDays:    cfg.Load.LookbackDays,
		MaxCacheEntries: cfg.Load.MaxCacheEntries,
	})
}

// openEngine opens the database and a local engine for one-shot commands.
// The returned func closes both.
func openEngine() (*engine.Engine, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := openDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	eng, err := newEngine(cfg, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return eng, func() {
		eng.Stop()
		db.Close()
	}, nil
}

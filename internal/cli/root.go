package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/pablasso/listo/internal/checklist"
	"github.com/pablasso/listo/internal/config"
	"github.com/pablasso/listo/internal/journal"
	"github.com/pablasso/listo/internal/session"
	"github.com/pablasso/listo/internal/skill"
	"github.com/pablasso/listo/internal/store"
	"github.com/pablasso/listo/internal/version"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:           "listo",
	Short:         "Guided checklists you talk through",
	Long:          `Listo walks you through your checklists one item at a time. Say "done", "skip" or "repeat" as you go.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $LISTO_CONFIG or ~/.config/listo/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(itemCmd)
	rootCmd.AddCommand(defineCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(sayCmd)
	rootCmd.AddCommand(talkCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

// env is everything a command needs, built from the loaded config.
type env struct {
	cfg      config.Config
	store    store.Store
	engine   *checklist.Engine
	journal  *journal.Journal
	sessions *session.Storage
}

func (e *env) skill() *skill.Skill {
	return skill.New(e.store, e.engine,
		skill.WithJournal(e.journal),
		skill.WithMinSimilarity(e.cfg.Lookup.MinSimilarity),
	)
}

// withEnv loads config, opens the store for the duration of fn and closes
// it afterwards.
func withEnv(fn func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		setupLogging(cfg)

		loc, err := cfg.Location()
		if err != nil {
			return err
		}

		st, err := store.Open(cfg)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer func() {
			if err := st.Close(); err != nil {
				log.Warn("failed to close store", "err", err)
			}
		}()

		log.Debug("store opened", "backend", cfg.Store.Backend, "dir", cfg.DataDir)

		return fn(cmd, args, &env{
			cfg:      cfg,
			store:    st,
			engine:   checklist.NewEngine(checklist.WithLocation(loc)),
			journal:  journal.New(filepath.Join(cfg.DataDir, "journal.log")),
			sessions: session.NewStorage(filepath.Join(cfg.DataDir, "sessions")),
		})
	}
}

func setupLogging(cfg config.Config) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Warn("unknown log level, using info", "level", cfg.Log.Level)
		level = log.InfoLevel
	}
	if debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)
}

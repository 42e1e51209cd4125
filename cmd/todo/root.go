package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	a := &app{}
	var flags globalFlags

	root := &cobra.Command{
		Use:   "todo",
		Short: "A small single-user task manager",
		Long: `todo keeps a list of tasks in a local file.

Tasks have a title, an optional category and an optional due date.
Every change is written to disk immediately.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(flags); err != nil {
				return err
			}
			a.correlationID = uuid.New()
			a.startedAt = time.Now()
			a.log.Debug("command start",
				zap.String("command", cmd.CommandPath()),
				zap.String("correlation_id", a.correlationID.String()),
			)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			a.log.Debug("command end",
				zap.String("command", cmd.CommandPath()),
				zap.String("correlation_id", a.correlationID.String()),
				zap.Int64("duration_ms", time.Since(a.startedAt).Milliseconds()),
			)
			_ = a.log.Sync()
			return a.close()
		},
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file path")
	root.PersistentFlags().StringVarP(&flags.dataPath, "data", "d", "", "task file path (overrides config)")
	root.PersistentFlags().StringVar(&flags.backend, "backend", "", "storage backend: file, sqlite or memory")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newAddCmd(a),
		newListCmd(a),
		newDoneCmd(a),
		newEditCmd(a),
		newRemoveCmd(a),
		newStatsCmd(a),
		newCategoriesCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newConfigCmd(&flags),
	)
	return root
}

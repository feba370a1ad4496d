package cmd

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/weaviate/weaviate-chaos-engineering/apps/backup-and-restore/lib"
)

var (
	objectsPerStage int64
	backupID        string
	backupBackend   string
	workers         int
	readyTimeout    time.Duration
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Int64Var(&objectsPerStage, "objects-per-stage", 0,
		"override the number of objects imported per stage")
	runCmd.Flags().StringVar(&backupID, "backup-id", "",
		"override the backup id")
	runCmd.Flags().StringVar(&backupBackend, "backup-backend", "",
		"override the backup backend (filesystem, s3, gcs, azure)")
	runCmd.Flags().IntVar(&workers, "workers", 0,
		"override the validation worker count")
	runCmd.Flags().DurationVar(&readyTimeout, "ready-timeout", time.Minute,
		"how long to wait for the instance to report live")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full load/delete/backup/restore verification scenario",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		log := logrus.New()
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

		cfg := lib.DefaultConfig()
		if ConfigPath != "" {
			parsed, err := lib.ParseConfig(ConfigPath)
			if err != nil {
				return err
			}
			cfg = parsed
		}
		if objectsPerStage > 0 {
			cfg.ObjectsPerStage = objectsPerStage
		}
		if backupID != "" {
			cfg.BackupID = backupID
		}
		if backupBackend != "" {
			cfg.BackupBackend = backupBackend
		}
		if workers > 0 {
			cfg.Workers = workers
		}
		if cfg.Seed == 0 {
			cfg.Seed = time.Now().UnixNano()
		}

		client, err := lib.ClientFromOrigin(Origin)
		if err != nil {
			return err
		}

		ctx := context.Background()
		if err := lib.WaitReady(ctx, client, readyTimeout); err != nil {
			return errors.Wrap(err, "weaviate is not ready")
		}

		store := lib.NewWeaviateStore(client, cfg.BackupBackend)
		return lib.NewScenario(store, log, cfg).Run(ctx)
	},
}

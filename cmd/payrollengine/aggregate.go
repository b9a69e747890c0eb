package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meridian/payroll-engine/dataset"
	"github.com/meridian/payroll-engine/engine"
	"github.com/meridian/payroll-engine/report"
	"github.com/meridian/payroll-engine/store/sqlite"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Run the aggregation and write the output documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		dataPath := viper.GetString("data")
		outDir := viper.GetString("out")
		dbPath := viper.GetString("db")
		workers := viper.GetInt("workers")

		ds, err := dataset.Load(dataPath)
		if err != nil {
			return err
		}
		log.Printf("Loaded %d employees from %s", len(ds), dataPath)

		res, err := engine.Run(ctx, ds, engine.Options{Workers: workers})
		if err != nil {
			return err
		}

		written, err := report.Write(outDir, ds, res)
		if err != nil {
			return err
		}
		log.Printf("Wrote index: %s", written.IndexPath)
		log.Printf("Wrote aggregates: %s", written.AggregatesPath)
		log.Printf("Wrote %d bucket files in %s", written.BucketCount, outDir)

		if dbPath != "" {
			archive, err := sqlite.New(dbPath)
			if err != nil {
				return err
			}
			defer archive.Close()

			run := sqlite.RunRecord{
				ID:         uuid.NewString(),
				CreatedAt:  time.Now().UTC(),
				SourcePath: dataPath,
				OutputDir:  outDir,
			}
			if err := archive.ArchiveRun(ctx, run, res); err != nil {
				return err
			}
			log.Printf("Archived run %s to %s", run.ID, dbPath)
		}

		return nil
	},
}

func init() {
	aggregateCmd.Flags().Int("workers", 1, "phase-1 worker count (1 = sequential)")
	rootCmd.AddCommand(aggregateCmd)
}

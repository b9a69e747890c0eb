package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "payrollengine",
	Short: "Batch payroll timeline aggregation",
	Long: "Ingests per-employee employment timelines and derives a summary index,\n" +
		"payroll time-series aggregates, peer-salary percentile rankings, and COLA\n" +
		"eligibility determinations for the reporting dashboard.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		viper.SetEnvPrefix("PAYROLL")
		viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		viper.AutomaticEnv()

		viper.SetConfigName("payrollengine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if err := viper.ReadInConfig(); err != nil {
			// Config file is optional; only a malformed one is an error.
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return err
			}
		}
		return viper.BindPFlags(cmd.Flags())
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("data", "data.json", "employee timeline document")
	flags.String("out", "data", "output directory for emitted documents")
	flags.String("db", "", "run archive SQLite path (empty disables archiving)")
}

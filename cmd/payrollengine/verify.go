package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meridian/payroll-engine/dataset"
	"github.com/meridian/payroll-engine/engine"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check fused-vs-separated pass parity on a dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataPath := viper.GetString("data")

		ds, err := dataset.Load(dataPath)
		if err != nil {
			return err
		}
		log.Printf("Verifying parity over %d employees", len(ds))

		if err := engine.VerifyFusionParity(ds); err != nil {
			return fmt.Errorf("parity check failed: %w", err)
		}
		log.Println("Parity OK: fused and separated passes agree")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

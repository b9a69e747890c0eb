package main

import (
	"log"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meridian/payroll-engine/report"
	"github.com/meridian/payroll-engine/workbook"
)

var workbookCmd = &cobra.Command{
	Use:   "workbook",
	Short: "Cross-reference an xlsx roster against the emitted index",
	RunE: func(cmd *cobra.Command, args []string) error {
		workbookPath := viper.GetString("workbook")
		indexPath := viper.GetString("index")
		outputPath := viper.GetString("output")
		if indexPath == "" {
			indexPath = filepath.Join(viper.GetString("out"), report.IndexFile)
		}

		roster, err := workbook.ReadRoster(workbookPath, workbook.Options{
			SheetName:  viper.GetString("sheet"),
			SkipRows:   viper.GetInt("skip-rows"),
			NameColumn: viper.GetInt("name-col"),
		})
		if err != nil {
			return err
		}
		log.Printf("Read %d roster rows from %s", len(roster), workbookPath)

		index, err := workbook.LoadIndex(indexPath)
		if err != nil {
			return err
		}

		rep := workbook.Match(roster, index)
		if err := workbook.WriteReport(outputPath, rep); err != nil {
			return err
		}
		log.Printf("Matched %d, unmatched %d; wrote %s", len(rep.Matched), len(rep.Unmatched), outputPath)
		return nil
	},
}

func init() {
	workbookCmd.Flags().String("workbook", "roster.xlsx", "xlsx roster of impacted workers")
	workbookCmd.Flags().String("index", "", "index document (default <out>/index.json)")
	workbookCmd.Flags().String("output", "impacted-workers.json", "cross-reference report path")
	workbookCmd.Flags().String("sheet", "", "sheet name (default first sheet)")
	workbookCmd.Flags().Int("skip-rows", 1, "header rows to skip")
	workbookCmd.Flags().Int("name-col", 0, "zero-based column holding worker names")
	rootCmd.AddCommand(workbookCmd)
}

/*
main.go - CLI entry point

PURPOSE:
  Runs the payroll aggregation engine and its supporting surfaces as cobra
  subcommands:

    aggregate   load the timeline document, run the engine, write outputs
    serve       serve the emitted documents to the static dashboard
    workbook    cross-reference an xlsx roster against the index
    verify      check fused-vs-separated pass parity on a dataset

CONFIGURATION:
  Every flag can also come from the environment (PAYROLL_ prefix, dashes
  become underscores) or from an optional payrollengine.yaml in the
  working directory; flags win.

EXAMPLES:
  payrollengine aggregate --data ./data.json --out ./data --workers 4
  payrollengine serve --out ./data --port 8080 --dashboard ./web
  payrollengine workbook --workbook roster.xlsx --index ./data/index.json
  payrollengine verify --data ./data.json

SEE ALSO:
  - root.go: shared flags and configuration binding
*/
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

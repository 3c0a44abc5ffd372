// =============================================================================
// Transfer Pricing - Main Entry Point
// =============================================================================
//
// USAGE:
//   transfer-pricing session    - Record transactions interactively
//   transfer-pricing crosstab   - Print the crosstab of a CSV or XLSX file
//   transfer-pricing validate   - Check a file against the import rules
//   transfer-pricing workbook   - Convert a file to an XLSX workbook
//   transfer-pricing version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : the transaction store, codecs, pivot and session logic
//   - pkg/       : shared utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/transfer-pricing/cmd"
)

func main() {
	cmd.Execute()
}

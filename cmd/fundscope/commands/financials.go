package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wonny/fundscope/internal/contracts"
)

// financialsCmd represents the financials command
var financialsCmd = &cobra.Command{
	Use:   "financials [ticker]",
	Short: "Annual financial-statement series",
	Long: `Builds the annual series for a ticker from its XBRL facts.

One row per fiscal year, newest first, with derived EBITDA, free cash
flow, margins, ROE, debt/equity and year-over-year growth. Values the
filer never disclosed print as "—".

Example:
  go run ./cmd/fundscope financials AAPL
  go run ./cmd/fundscope financials AAPL --years 5
  go run ./cmd/fundscope financials AAPL --json`,
	Args: cobra.ExactArgs(1),
	RunE: runFinancials,
}

var (
	financialsYears int
	financialsJSON  bool
	financialsStore bool
)

func init() {
	rootCmd.AddCommand(financialsCmd)

	financialsCmd.Flags().IntVar(&financialsYears, "years", 10, "number of fiscal years to print (0 = all)")
	financialsCmd.Flags().BoolVar(&financialsJSON, "json", false, "print JSON instead of a table")
	financialsCmd.Flags().BoolVar(&financialsStore, "store", false, "read/write the results store when configured")
}

func runFinancials(cmd *cobra.Command, args []string) error {
	a, err := newApp(financialsStore)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.runner.Financials(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("financials %s: %w", args[0], err)
	}
	records = limitRows(records, financialsYears)

	if financialsJSON {
		return PrintJSON(records)
	}

	if len(records) == 0 {
		PrintWarning(fmt.Sprintf("No annual data for %s", args[0]))
		return nil
	}

	PrintHeader("Annual financials: "+args[0], fmt.Sprintf("%d fiscal years", len(records)))
	printAnnualTable(records)
	return nil
}

func printAnnualTable(records []contracts.AnnualRecord) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Period\tRevenue\tNet income\tEBITDA\tFCF\tEPS\tNet margin\tROE\tD/E\tRev growth\t")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.Period,
			FormatMoney(r.Revenue),
			FormatMoney(r.NetIncome),
			FormatMoney(r.EBITDA),
			FormatMoney(r.FreeCashFlow),
			FormatRatio(r.EPS),
			FormatPercent(r.NetMargin),
			FormatPercent(r.ROE),
			FormatRatio(r.DebtToEquity),
			FormatPercent(r.RevenueGrowth),
		)
	}
	w.Flush()
}

// limitRows keeps the first n rows; n <= 0 keeps all
func limitRows[T any](rows []T, n int) []T {
	if n <= 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}

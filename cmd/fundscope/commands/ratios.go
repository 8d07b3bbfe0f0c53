package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wonny/fundscope/internal/contracts"
)

// ratiosCmd represents the ratios command
var ratiosCmd = &cobra.Command{
	Use:   "ratios [ticker]",
	Short: "Daily valuation-ratio series",
	Long: `Projects trailing-twelve-month fundamentals onto daily closes.

Each trading day uses the latest TTM snapshot on or before it. Ratios
outside the sanity ceiling, or with a non-positive denominator, print
as "—". A trailing "*" marks share counts estimated from public float.

Example:
  go run ./cmd/fundscope ratios AAPL
  go run ./cmd/fundscope ratios AAPL --from 2024-01-01 --days 0
  go run ./cmd/fundscope ratios AAPL --json`,
	Args: cobra.ExactArgs(1),
	RunE: runRatios,
}

var (
	ratiosFrom  string
	ratiosDays  int
	ratiosJSON  bool
	ratiosStore bool
)

func init() {
	rootCmd.AddCommand(ratiosCmd)

	ratiosCmd.Flags().StringVar(&ratiosFrom, "from", "", "first date to print (YYYY-MM-DD)")
	ratiosCmd.Flags().IntVar(&ratiosDays, "days", 20, "number of most recent days to print (0 = all)")
	ratiosCmd.Flags().BoolVar(&ratiosJSON, "json", false, "print JSON instead of a table")
	ratiosCmd.Flags().BoolVar(&ratiosStore, "store", false, "read/write the results store when configured")
}

func runRatios(cmd *cobra.Command, args []string) error {
	a, err := newApp(ratiosStore)
	if err != nil {
		return err
	}
	defer a.Close()

	points, err := a.runner.Ratios(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("ratios %s: %w", args[0], err)
	}

	points = fromDate(points, ratiosFrom)
	if ratiosDays > 0 && len(points) > ratiosDays {
		points = points[len(points)-ratiosDays:]
	}

	if ratiosJSON {
		return PrintJSON(points)
	}

	if len(points) == 0 {
		PrintWarning(fmt.Sprintf("No ratio data for %s (needs four reported quarters and price history)", args[0]))
		return nil
	}

	PrintHeader("Daily ratios: "+args[0], fmt.Sprintf("%s ~ %s", points[0].Date, points[len(points)-1].Date))
	printRatioTable(points)
	return nil
}

func fromDate(points []contracts.DynamicRatioPoint, from string) []contracts.DynamicRatioPoint {
	if from == "" {
		return points
	}
	for i, p := range points {
		if p.Date >= from {
			return points[i:]
		}
	}
	return nil
}

func printRatioTable(points []contracts.DynamicRatioPoint) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Date\tClose\tMkt cap\tP/E\tEV/EBITDA\tP/B\tP/S\tND/EBITDA\t")
	for _, p := range points {
		mcap := FormatMoney(p.MarketCap)
		if p.SharesEstimated {
			mcap += "*"
		}
		fmt.Fprintf(w, "%s\t%.2f\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			p.Date,
			p.Price,
			mcap,
			FormatRatio(p.PE),
			FormatRatio(p.EVEBITDA),
			FormatRatio(p.PB),
			FormatRatio(p.PS),
			FormatRatio(p.NetDebtToEBITDA),
		)
	}
	w.Flush()
}

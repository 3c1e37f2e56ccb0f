package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/signaltrader/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the trade journal",
	Long: `Query and display trade records from a SQLite journal.

Subcommands:
  list   - List trades, optionally filtered
  trade  - Show a single trade by ID
  day    - List trades closed on a specific day

Examples:
  trader journal list --from 2024-01-01 --to 2024-02-01
  trader journal trade 01HQ3ZK8T5J6V7W8X9Y0Z1A2B3
  trader journal day 2024-01-15`,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trades",
	Args:  cobra.NoArgs,
	RunE:  runJournalList,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Get details of a specific trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List trades closed on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var (
	journalDBPath     string
	journalJSON       bool
	journalFrom       string
	journalTo         string
	journalInstrument string
	journalLimit      int
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalTradeCmd)
	journalCmd.AddCommand(journalDayCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./trades.db", "path to SQLite journal DB")
	journalCmd.PersistentFlags().BoolVar(&journalJSON, "json", false, "print JSON instead of org-mode")

	journalListCmd.Flags().StringVar(&journalFrom, "from", "", "first exit day (YYYY-MM-DD, UTC)")
	journalListCmd.Flags().StringVar(&journalTo, "to", "", "exclusive last exit day (YYYY-MM-DD, UTC)")
	journalListCmd.Flags().StringVar(&journalInstrument, "instrument", "", "only this instrument")
	journalListCmd.Flags().IntVar(&journalLimit, "limit", 0, "maximum number of trades")
}

func runJournalList(cmd *cobra.Command, args []string) error {
	f := journal.Filter{Instrument: journalInstrument, Limit: journalLimit}

	var err error
	if journalFrom != "" {
		if f.From, err = time.Parse("2006-01-02", journalFrom); err != nil {
			return fmt.Errorf("from: %w", err)
		}
	}
	if journalTo != "" {
		if f.To, err = time.Parse("2006-01-02", journalTo); err != nil {
			return fmt.Errorf("to: %w", err)
		}
	}

	return listTrades(cmd, f)
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rec, err := j.GetTrade(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}

	return printTrades(cmd, []journal.TradeRecord{rec})
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	start, end, err := dayBounds(time.UTC, args[0])
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	return listTrades(cmd, journal.Filter{From: start, To: end})
}

func listTrades(cmd *cobra.Command, f journal.Filter) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.ListTrades(cmd.Context(), f)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	return printTrades(cmd, recs)
}

func printTrades(cmd *cobra.Command, recs []journal.TradeRecord) error {
	out := cmd.OutOrStdout()
	if journalJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}
	fmt.Fprint(out, journal.FormatTradesOrg(recs))
	return nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}

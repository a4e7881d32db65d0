// Package summary renders the end-of-session report: a console table of the
// trades plus a CSV export next to the journal for spreadsheet work.
package summary

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"llm-crypto-agent/internal/types"
)

// Report is everything the end-of-session output needs.
type Report struct {
	SessionID  string
	StartedAt  time.Time
	StopReason string
	Trades     []types.TradeRecord
}

// NetProfit sums the net deltas of the session's trades.
func (r Report) NetProfit() float64 {
	var total float64
	for _, t := range r.Trades {
		total += t.NetDeltaUSDC
	}
	return total
}

// Print writes the human-readable session report to w.
func Print(w io.Writer, r Report) {
	fmt.Fprintf(w, "\n=== Session %s ===\n", r.SessionID)
	fmt.Fprintf(w, "Started:    %s\n", r.StartedAt.UTC().Format(time.RFC3339))
	if r.StopReason != "" {
		fmt.Fprintf(w, "Stopped:    %s\n", r.StopReason)
	}
	fmt.Fprintf(w, "Trades:     %d\n", len(r.Trades))
	fmt.Fprintf(w, "Net profit: %.2f USDC\n\n", r.NetProfit())

	if len(r.Trades) == 0 {
		fmt.Fprintln(w, "No trades executed.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.Header("#", "Time", "Product", "Action", "Amount$", "Filled", "Avg Px", "Net$")

	for i, t := range r.Trades {
		table.Append(
			strconv.Itoa(i+1),
			t.Timestamp.UTC().Format("15:04:05"),
			t.ProductID,
			t.Action,
			fmt.Sprintf("%.2f", t.AmountUSDC),
			fmt.Sprintf("%.8f", t.FilledSize),
			fmt.Sprintf("%.2f", t.AvgPrice),
			fmt.Sprintf("%+.2f", t.NetDeltaUSDC),
		)
	}

	table.Render()
}

// WriteCSV exports the session's trades to path. The file is truncated if it
// already exists.
func WriteCSV(path string, r Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("summary.WriteCSV: %w", err)
	}
	defer f.Close()

	if err := writeCSV(f, r); err != nil {
		return fmt.Errorf("summary.WriteCSV: %w", err)
	}
	return f.Close()
}

func writeCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"timestamp", "order_id", "product_id", "action", "status",
		"amount_usdc", "filled_size", "avg_price", "net_delta_usdc",
	}); err != nil {
		return err
	}

	for _, t := range r.Trades {
		rec := []string{
			t.Timestamp.UTC().Format(time.RFC3339),
			t.OrderID,
			t.ProductID,
			t.Action,
			t.Status,
			strconv.FormatFloat(t.AmountUSDC, 'f', 2, 64),
			strconv.FormatFloat(t.FilledSize, 'f', 8, 64),
			strconv.FormatFloat(t.AvgPrice, 'f', 2, 64),
			strconv.FormatFloat(t.NetDeltaUSDC, 'f', 2, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

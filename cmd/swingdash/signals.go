package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tradercopilot/swingdash/internal/app"
	"github.com/tradercopilot/swingdash/internal/backend"
	"github.com/tradercopilot/swingdash/internal/metrics"
	"github.com/tradercopilot/swingdash/internal/performance"
)

var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "List recent signals visible to your plan",
	RunE:  runSignals,
}

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Telegram alert operations",
}

var alertsTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test alert to the linked Telegram chat",
	RunE:  runAlertsTest,
}

var alertsSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send the latest signals to the linked Telegram chat",
	RunE:  runAlertsSend,
}

var (
	signalsToken string
	signalsType  string
	signalsLimit int
	signalsSaved bool
	alertsLimit  int
)

func init() {
	rootCmd.AddCommand(signalsCmd)
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.AddCommand(alertsTestCmd)
	alertsCmd.AddCommand(alertsSendCmd)

	signalsCmd.Flags().StringVar(&signalsToken, "token", "ALL", "token filter (BTC, ETH, ...)")
	signalsCmd.Flags().StringVar(&signalsType, "type", "ALL", "direction filter (LONG or SHORT)")
	signalsCmd.Flags().IntVar(&signalsLimit, "limit", 50, "number of records to fetch")
	signalsCmd.Flags().BoolVar(&signalsSaved, "saved", false, "only saved signals")
	alertsSendCmd.Flags().IntVar(&alertsLimit, "limit", 5, "number of recent signals to send")
}

func runSignals(cmd *cobra.Command, args []string) error {
	return withState(cmd, true, func(ctx context.Context, a *app.App, st *app.State) error {
		res := st.Resolver()
		signals, err := a.Client(st.Session()).RecentLogs(ctx, backend.LogsQuery{
			Limit:     signalsLimit,
			SavedOnly: signalsSaved,
		})
		if err != nil {
			return expire(ctx, st, err)
		}
		signals = performance.WithinHistory(signals, res.HistoryDays(), time.Now())
		signals = performance.Apply(signals, performance.Filter{Token: signalsToken, Direction: signalsType})

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTIME\tTOKEN\tTF\tTYPE\tENTRY\tTARGET\tSTOP\tCONF\tSTATUS\tP&L")
		for _, row := range performance.Rows(signals, res) {
			ts := "-"
			if !row.Timestamp.IsZero() {
				ts = row.Timestamp.Local().Format("2006-01-02 15:04")
			}
			if row.Locked() {
				fmt.Fprintf(w, "-\t%s\t%s\t%s\tLOCKED\t-\t-\t-\t-\t%s\t-\n", ts, row.Token, row.Timeframe, row.Status)
				continue
			}
			pnl := "-"
			if row.PnL != nil {
				pnl = fmt.Sprintf("%+.2f%%", *row.PnL)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.4g\t%.4g\t%.4g\t%.0f%%\t%s\t%s\n",
				row.ID, ts, row.Token, row.Timeframe, row.Direction,
				row.EntryPrice, row.TargetPrice, row.StopLoss, row.Confidence, row.Status, pnl)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		stats := performance.Calculate(performance.Unlocked(signals, res))
		fmt.Fprintf(cmd.OutOrStdout(), "\nWin rate %.1f%% · %dW / %dL · showing the last %d days\n",
			stats.WinRate, stats.Wins, stats.Losses, res.HistoryDays())
		return nil
	})
}

func runAlertsTest(cmd *cobra.Command, args []string) error {
	return withState(cmd, true, func(ctx context.Context, a *app.App, st *app.State) error {
		err := a.Telegram().SendTestFor(ctx, st.Resolver())
		a.Metrics().RecordAlert("test", metrics.AlertStatus(err))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Test alert sent")
		return nil
	})
}

func runAlertsSend(cmd *cobra.Command, args []string) error {
	return withState(cmd, true, func(ctx context.Context, a *app.App, st *app.State) error {
		res := st.Resolver()
		if err := res.RequireTelegram(); err != nil {
			return err
		}
		signals, err := a.Client(st.Session()).RecentLogs(ctx, backend.LogsQuery{Limit: alertsLimit})
		if err != nil {
			return expire(ctx, st, err)
		}
		n, err := a.Telegram().SendSignalsFor(ctx, res, signals)
		a.Metrics().RecordAlert("signals", metrics.AlertStatus(err))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Sent %d signals\n", n)
		return nil
	})
}

// expire clears the stored session when the backend rejected the token.
func expire(ctx context.Context, st *app.State, err error) error {
	if backend.IsAuth(err) {
		_ = st.Logout(ctx)
		return fmt.Errorf("%s Run `swingdash login` to sign in again", backend.Message(err))
	}
	return err
}

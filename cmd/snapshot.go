package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/roomwise/internal/cli"
	"github.com/theirongolddev/roomwise/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagSnapAll  bool
	flagSnapDays int
	flagSnapJSON bool
)

var snapshotCmd = &cobra.Command{
	Use:     "snapshot",
	Aliases: []string{"snap"},
	Short:   "Record and list total balance snapshots",
}

var snapshotRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record the current total balance",
	RunE:  runSnapshotRecord,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded snapshots",
	RunE:  runSnapshotList,
}

func init() {
	snapshotRecordCmd.Flags().BoolVar(&flagSnapAll, "all", false, "Record for every user with accounts")
	snapshotListCmd.Flags().IntVarP(&flagSnapDays, "days", "n", 90, "Look back this many days")
	snapshotListCmd.Flags().BoolVar(&flagSnapJSON, "json", false, "Print JSON")
	snapshotCmd.AddCommand(snapshotRecordCmd, snapshotListCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshotRecord(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()
	ctx := ctxOf(cmd)

	users := []string{e.user}
	if flagSnapAll {
		if users, err = e.store.Users(ctx); err != nil {
			return err
		}
	}
	now := time.Now()
	for _, u := range users {
		snap, err := e.store.RecordSnapshot(ctx, u, now)
		if err != nil {
			return fmt.Errorf("snapshot for %s: %w", u, err)
		}
		fmt.Printf("  %s  %s  %s\n", u, snap.TakenAt.Local().Format("2006-01-02 15:04"),
			cli.FormatMoney(snap.Total, e.currency()))
	}
	return nil
}

func runSnapshotList(cmd *cobra.Command, _ []string) error {
	if flagSnapDays <= 0 {
		return fmt.Errorf("--days must be positive")
	}
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	since := time.Now().AddDate(0, 0, -flagSnapDays)
	snaps, err := e.store.ListSnapshots(ctxOf(cmd), e.user, since)
	if err != nil {
		return err
	}
	if flagSnapJSON {
		if snaps == nil {
			snaps = []model.Snapshot{}
		}
		return printJSON(snaps)
	}
	if len(snaps) == 0 {
		fmt.Printf("\n  No snapshots in the last %d days.\n\n", flagSnapDays)
		return nil
	}

	cur := e.currency()
	rows := make([][]string, 0, len(snaps))
	values := make([]float64, 0, len(snaps))
	for i, s := range snaps {
		change := ""
		if i > 0 {
			change = cli.FormatDelta(s.Total, snaps[i-1].Total, cur)
		}
		rows = append(rows, []string{s.TakenAt.Local().Format("2006-01-02 15:04"), cli.FormatMoney(s.Total, cur), change})
		values = append(values, s.Total.InexactFloat64())
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Snapshots, last %s days", formatNumber(int64(flagSnapDays))),
		Headers: []string{"Taken", "Total", "Change"},
		Rows:    rows,
	}))
	fmt.Printf("\n  %s\n\n", cli.RenderSparkline(values))
	return nil
}

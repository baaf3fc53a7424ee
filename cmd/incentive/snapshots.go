package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/warp/incentive-engine/incentive"
	"github.com/warp/incentive-engine/store"
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Inspect and create payout snapshots",
	Long:  "Commands for freezing the stored payout run and listing earlier runs.",
}

// -- snapshots list --

var snapshotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List payout snapshots, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openConfiguredStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		snaps, err := st.ListSnapshots(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "snapshots list")
		}
		return writeSnapshotList(cmd.OutOrStdout(), snaps)
	},
}

// -- snapshots create --

var snapshotsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Freeze the current payout run",
	RunE: func(cmd *cobra.Command, _ []string) error {
		label, _ := cmd.Flags().GetString("label")

		st, err := openConfiguredStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		s, err := st.LoadState(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "load state")
		}

		now := time.Now()
		if label == "" {
			label = "Payout run " + now.UTC().Format("2006-01-02 15:04")
		}
		snap, err := store.NewSnapshot(label, incentive.Roster(s), now)
		if err != nil {
			return err
		}
		if err := st.SaveSnapshot(cmd.Context(), snap); err != nil {
			return eris.Wrap(err, "save snapshot")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", snap.ID, snap.Label, snap.TotalPayout.StringFixed(2))
		return nil
	},
}

// -- snapshots show --

var snapshotsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the frozen results of one snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openConfiguredStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		snap, err := st.GetSnapshot(cmd.Context(), args[0])
		if err != nil {
			return eris.Wrapf(err, "get snapshot %s", args[0])
		}
		return writeSnapshot(cmd.OutOrStdout(), *snap)
	},
}

func init() {
	snapshotsCreateCmd.Flags().String("label", "", "snapshot label (default: dated label)")

	snapshotsCmd.AddCommand(snapshotsListCmd, snapshotsCreateCmd, snapshotsShowCmd)
	rootCmd.AddCommand(snapshotsCmd)
}

func openConfiguredStore() (store.Store, error) {
	defaults, err := loadDefaults(cfg)
	if err != nil {
		return nil, err
	}
	return openStore(cfg, defaults)
}

func writeSnapshotList(w io.Writer, snaps []store.Snapshot) error {
	if len(snaps) == 0 {
		fmt.Fprintln(w, "No snapshots found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tCREATED\tTOTAL PAYOUT")
	for _, s := range snaps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			s.ID, s.Label, s.CreatedAt.Format(time.RFC3339), s.TotalPayout.StringFixed(2))
	}
	return tw.Flush()
}

func writeSnapshot(w io.Writer, snap store.Snapshot) error {
	results, err := snap.DecodeResults()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s (%s)\n", snap.Label, snap.CreatedAt.Format(time.RFC3339))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EMPLOYEE\tSCORE\tFACTOR\tPAYOUT")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%s\n", r.EmployeeID, r.Total, r.Factor, r.Payout.StringFixed(2))
	}
	fmt.Fprintf(tw, "TOTAL\t\t\t%s\n", snap.TotalPayout.StringFixed(2))
	return tw.Flush()
}

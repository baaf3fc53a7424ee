package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/warp/incentive-engine/config"
	"github.com/warp/incentive-engine/factory"
	"github.com/warp/incentive-engine/incentive"
)

var payoutsCmd = &cobra.Command{
	Use:   "payouts",
	Short: "Compute the payout of every employee",
	Long:  "Computes scores, factors and capped payouts for a state file, or for the stored state when --state is not given.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		statePath, _ := cmd.Flags().GetString("state")
		format, _ := cmd.Flags().GetString("format")

		s, err := readState(cmd.Context(), cfg, statePath)
		if err != nil {
			return err
		}

		switch format {
		case "json":
			return writePayoutJSON(cmd.OutOrStdout(), s)
		case "table", "":
			return writePayoutTable(cmd.OutOrStdout(), s)
		default:
			return eris.Errorf("unknown format %q (want table or json)", format)
		}
	},
}

func init() {
	payoutsCmd.Flags().String("state", "", "state JSON file (default: configured store)")
	payoutsCmd.Flags().String("format", "table", "output format: table or json")
	rootCmd.AddCommand(payoutsCmd)
}

// readState loads a state file, or the stored state when path is empty.
func readState(ctx context.Context, c *config.Config, path string) (incentive.State, error) {
	defaults, err := loadDefaults(c)
	if err != nil {
		return incentive.State{}, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return incentive.State{}, eris.Wrapf(err, "read state file %s", path)
		}
		return factory.NewCodec(defaults).ParseState(data), nil
	}

	st, err := openStore(c, defaults)
	if err != nil {
		return incentive.State{}, err
	}
	defer st.Close() //nolint:errcheck

	s, err := st.LoadState(ctx)
	if err != nil {
		return incentive.State{}, eris.Wrap(err, "load state")
	}
	return s, nil
}

func writePayoutTable(w io.Writer, s incentive.State) error {
	results := incentive.Roster(s)
	if len(results) == 0 {
		fmt.Fprintln(w, "No employees.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDEPARTMENT\tSCORE\tFACTOR\tBASE\tCAP\tPAYOUT\tCAPPED")
	for _, r := range results {
		e := s.Employee(r.EmployeeID)
		capped := ""
		if r.Capped() {
			capped = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.4f\t%.4f\t%s\t%s\t%s\t%s\n",
			r.EmployeeID, e.Name, e.Department,
			r.Total, r.Factor,
			r.Base.StringFixed(2), r.Cap.StringFixed(2), r.Payout.StringFixed(2),
			capped,
		)
	}

	sum := incentive.Totals(results)
	fmt.Fprintf(tw, "TOTAL\t%d employees\t\t\t\t%s\t\t%s\t%d\n",
		sum.Employees, sum.Base.StringFixed(2), sum.Payout.StringFixed(2), sum.Capped)
	return tw.Flush()
}

func writePayoutJSON(w io.Writer, s incentive.State) error {
	results := incentive.Roster(s)
	out := struct {
		Results []incentive.Result `json:"results"`
		Totals  incentive.Summary  `json:"totals"`
	}{results, incentive.Totals(results)}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return eris.Wrap(err, "encode payouts")
	}
	return nil
}

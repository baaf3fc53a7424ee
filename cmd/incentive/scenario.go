package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warp/incentive-engine/api"
	"github.com/warp/incentive-engine/factory"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario [id]",
	Short: "List demo scenarios or print one as a state document",
	Long:  "Without an argument, lists the demo scenarios. With an id, prints its state JSON; --load replaces the stored state with it.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return writeScenarioList(cmd.OutOrStdout())
		}

		defaults, err := loadDefaults(cfg)
		if err != nil {
			return err
		}
		s, err := api.BuildScenario(defaults, args[0])
		if err != nil {
			return eris.Wrap(err, "build scenario")
		}

		load, _ := cmd.Flags().GetBool("load")
		if !load {
			data, err := factory.NewCodec(defaults).MarshalState(s)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		}

		st, err := openStore(cfg, defaults)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Reset(cmd.Context()); err != nil {
			return eris.Wrap(err, "reset store")
		}
		if err := st.SaveState(cmd.Context(), s); err != nil {
			return eris.Wrap(err, "save scenario")
		}
		zap.L().Info("scenario loaded", zap.String("scenario", args[0]))
		return nil
	},
}

func init() {
	scenarioCmd.Flags().Bool("load", false, "replace the stored state with the scenario")
	rootCmd.AddCommand(scenarioCmd)
}

func writeScenarioList(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
	for _, s := range api.Scenarios() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.Name, s.Description)
	}
	return tw.Flush()
}

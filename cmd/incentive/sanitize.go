package main

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/warp/incentive-engine/factory"
	"github.com/warp/incentive-engine/incentive"
)

var sanitizeCmd = &cobra.Command{
	Use:   "sanitize",
	Short: "Repair a state document",
	Long:  "Reads a state JSON document, repairs every malformed field against the configured defaults and writes the canonical document.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		inPath, _ := cmd.Flags().GetString("in")
		outPath, _ := cmd.Flags().GetString("out")

		defaults, err := loadDefaults(cfg)
		if err != nil {
			return err
		}

		in := cmd.InOrStdin()
		if inPath != "-" {
			f, err := os.Open(inPath)
			if err != nil {
				return eris.Wrapf(err, "open %s", inPath)
			}
			defer f.Close() //nolint:errcheck
			in = f
		}

		out := cmd.OutOrStdout()
		if outPath != "-" {
			f, err := os.Create(outPath)
			if err != nil {
				return eris.Wrapf(err, "create %s", outPath)
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		return sanitizeDocument(in, out, defaults)
	},
}

func init() {
	sanitizeCmd.Flags().String("in", "-", "input file (- for stdin)")
	sanitizeCmd.Flags().String("out", "-", "output file (- for stdout)")
	rootCmd.AddCommand(sanitizeCmd)
}

func sanitizeDocument(in io.Reader, out io.Writer, defaults *incentive.Defaults) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return eris.Wrap(err, "read state")
	}

	codec := factory.NewCodec(defaults)
	clean, err := codec.MarshalState(codec.ParseState(data))
	if err != nil {
		return err
	}
	if _, err := out.Write(append(clean, '\n')); err != nil {
		return eris.Wrap(err, "write state")
	}
	return nil
}

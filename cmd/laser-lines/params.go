package main

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/ironsheep/laser-lines/internal/lines"
)

func newParamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Print the derived Gaussian scale and thresholds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			p, err := cfg.Params()
			if err != nil {
				return err
			}
			scale, err := lines.DeriveScale(p)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				data, err := json.MarshalIndent(map[string]interface{}{
					"params": p,
					"scale":  scale,
				}, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			fmt.Fprintf(out, "max line width  %g px\n", p.MaxLineWidth)
			fmt.Fprintf(out, "contrast        %g .. %g\n", p.ContrastLow, p.ContrastHigh)
			fmt.Fprintf(out, "polarity        %s\n", p.Polarity)
			fmt.Fprintf(out, "length window   %g .. %g px\n", p.MinLength, p.MaxLength)
			fmt.Fprintf(out, "max angle       %g deg\n", p.MaxAngleChange*180/math.Pi)
			fmt.Fprintf(out, "sigma           %.6f\n", scale.Sigma)
			fmt.Fprintf(out, "low threshold   %.6f\n", scale.Low)
			fmt.Fprintf(out, "high threshold  %.6f\n", scale.High)
			return nil
		},
	}
	addExtractionFlags(cmd.Flags())
	cmd.Flags().Bool("json", false, "print as JSON")
	return cmd
}

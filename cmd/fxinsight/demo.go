package main

import (
	"github.com/eternisai/fxinsight/internal/insights"
	"github.com/eternisai/fxinsight/internal/presentation"
	"github.com/spf13/cobra"
)

func demoCmd() *cobra.Command {
	var (
		minBullets int
		output     outputOptions
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Show curated demo points without calling any model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			points := insights.BuildDemo(insights.ClampMinBullets(minBullets))
			if err := writePoints(cmd.OutOrStdout(), points, output); err != nil {
				return err
			}
			printStatus(cmd.ErrOrStderr(), presentation.DemoLoaded())
			return nil
		},
	}

	cmd.Flags().IntVarP(&minBullets, "min-bullets", "n", insights.DefaultMinBullets, "Number of demo points (never below 10)")
	output.register(cmd)

	return cmd
}

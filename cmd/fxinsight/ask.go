package main

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/eternisai/fxinsight/internal/credentials"
	"github.com/eternisai/fxinsight/internal/generation"
	"github.com/eternisai/fxinsight/internal/insights"
	"github.com/eternisai/fxinsight/internal/logger"
	"github.com/eternisai/fxinsight/internal/presentation"
	"github.com/eternisai/fxinsight/internal/upstream"
	"github.com/spf13/cobra"
)

const defaultServerURL = "http://localhost:8787"

type askOptions struct {
	minBullets int
	style      string
	detail     int
	model      string
	server     string
	timeout    time.Duration
	export     string
	output     outputOptions
}

func askCmd(root *rootOptions) *cobra.Command {
	opts := &askOptions{}

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Generate insight points for a question",
		Long: `Generate at least --min-bullets insight points for a question.

The fxinsight server at --server is tried first. If it is unreachable or
answers without points, the model API is called directly with the stored
credential (see "fxinsight settings"). Press Ctrl-C to stop a generation.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := insights.NewRequest(strings.Join(args, " "), opts.minBullets, opts.style, opts.detail)
			if errors.Is(err, insights.ErrEmptyQuestion) {
				return errors.New(presentation.EmptyQuestion().Message)
			}
			req.Model = opts.model

			ctx := cmd.Context()
			if opts.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, opts.timeout)
				defer cancel()
			}

			log := logger.New(logger.Config{
				Level:  logger.ParseLevel(root.logLevel),
				Output: cmd.ErrOrStderr(),
			})

			points, err := newOrchestrator(root, opts, log).Generate(ctx, req)
			if err != nil {
				return err
			}

			if err := writePoints(cmd.OutOrStdout(), points, opts.output); err != nil {
				return err
			}
			printStatus(cmd.ErrOrStderr(), presentation.Generated(len(points)))

			if opts.export != "" {
				status, err := exportPoints(opts.export, points)
				if err != nil {
					return err
				}
				printStatus(cmd.ErrOrStderr(), status)
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.minBullets, "min-bullets", "n", insights.DefaultMinBullets, "Minimum number of points (never below 10)")
	cmd.Flags().StringVarP(&opts.style, "style", "s", string(insights.StyleBalanced), "Answer style (concise, balanced, in-depth)")
	cmd.Flags().IntVarP(&opts.detail, "detail", "d", 2, "Detail level from 1 to 3")
	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "Model to ask the server for")
	cmd.Flags().StringVar(&opts.server, "server", envOrDefault("FXINSIGHT_SERVER", defaultServerURL), "fxinsight server URL; empty skips the server")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Stop the generation after this long (0 waits indefinitely)")
	cmd.Flags().StringVar(&opts.export, "export", "", "Also write the points as JSON to this file")
	cmd.Flags().Lookup("export").NoOptDefVal = presentation.ExportFilename
	opts.output.register(cmd)

	return cmd
}

func newOrchestrator(root *rootOptions, opts *askOptions, log *logger.Logger) *generation.Orchestrator {
	var strategies []generation.Strategy
	if opts.server != "" {
		strategies = append(strategies, generation.NewProxyStrategy(opts.server, nil))
	}

	client := upstream.NewClient(upstream.Options{BaseURL: os.Getenv("OPENAI_BASE_URL")}, log)
	strategies = append(strategies, generation.NewDirectStrategy(client, credentialStore(root)))

	return generation.NewOrchestrator(log, strategies...)
}

func credentialStore(root *rootOptions) *credentials.Store {
	path := root.credentialsPath
	if path == "" {
		path = credentials.DefaultPath()
	}
	return credentials.NewStore(path)
}

func envOrDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

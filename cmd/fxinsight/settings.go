package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func settingsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the stored credential used for direct calls",
	}

	cmd.AddCommand(settingsShowCmd(root))
	cmd.AddCommand(settingsSetCmd(root))

	return cmd
}

func settingsShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored settings with the API key masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := credentialStore(root)
			creds, err := store.Load()
			if err != nil {
				return err
			}

			key := creds.Masked()
			if key == "" {
				key = "(not set)"
			}
			model := creds.Model
			if model == "" {
				model = "(default)"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "file:    %s\n", store.Path())
			fmt.Fprintf(out, "api key: %s\n", key)
			fmt.Fprintf(out, "model:   %s\n", model)
			return nil
		},
	}
}

func settingsSetCmd(root *rootOptions) *cobra.Command {
	var apiKey, model string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the API key and model for direct calls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("api-key") && !cmd.Flags().Changed("model") {
				return fmt.Errorf("nothing to set: pass --api-key and/or --model")
			}

			store := credentialStore(root)
			creds, err := store.Load()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("api-key") {
				creds.APIKey = apiKey
			}
			if cmd.Flags().Changed("model") {
				creds.Model = model
			}

			if err := store.Save(creds); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved settings to %s\n", store.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "OpenAI API key")
	cmd.Flags().StringVar(&model, "model", "", "Model for direct calls (empty uses the default)")

	return cmd
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/manash/imgedit/internal/keys"
)

func newKeysCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage stored API keys",
	}

	cmd.AddCommand(
		newKeysSetCmd(app),
		newKeysGetCmd(app),
		newKeysDeleteCmd(app),
		newKeysListCmd(app),
	)

	return cmd
}

func newKeysSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set [provider]",
		Short: "Store an API key (prompted without echo)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := providerArg(args)

			fmt.Fprintf(app.Out, "API key for %s: ", provider)
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(app.Out)
			if err != nil {
				return fmt.Errorf("failed to read key: %w", err)
			}
			if len(raw) == 0 {
				return fmt.Errorf("key must not be empty")
			}

			store, err := keys.NewStore()
			if err != nil {
				return err
			}
			if err := store.Set(provider, string(raw)); err != nil {
				return err
			}

			fmt.Fprintf(app.Out, "Stored key for %s in %s\n", provider, store.Path())
			return nil
		},
	}
}

func newKeysGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get [provider]",
		Short: "Show the stored key, masked",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := providerArg(args)

			store, err := keys.NewStore()
			if err != nil {
				return err
			}
			key, err := store.Get(provider)
			if err != nil {
				return err
			}
			if key == "" {
				return fmt.Errorf("no key stored for %s", provider)
			}

			fmt.Fprintf(app.Out, "%s: %s\n", provider, keys.MaskKey(key))
			return nil
		},
	}
}

func newKeysDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [provider]",
		Short: "Remove a stored key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := providerArg(args)

			store, err := keys.NewStore()
			if err != nil {
				return err
			}
			if err := store.Delete(provider); err != nil {
				return err
			}

			fmt.Fprintf(app.Out, "Deleted key for %s\n", provider)
			return nil
		},
	}
}

func newKeysListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List providers with stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := keys.NewStore()
			if err != nil {
				return err
			}
			providers, err := store.List()
			if err != nil {
				return err
			}
			if len(providers) == 0 {
				fmt.Fprintln(app.Out, "No keys stored.")
				return nil
			}

			for _, provider := range providers {
				key, _ := store.Get(provider)
				fmt.Fprintf(app.Out, "%s: %s\n", provider, keys.MaskKey(key))
			}
			return nil
		},
	}
}

func providerArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return "openai"
}

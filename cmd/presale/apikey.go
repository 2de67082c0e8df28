package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hmesh/presale-dashboard/internal/repository"
)

var (
	apiKeyClient      string
	apiKeyDescription string
	apiKeyValue       string
)

func newAPIKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage API keys for the HTTP transport",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create an API key for a client",
		Args:  cobra.NoArgs,
		RunE:  runAPIKeyAddCmd,
	}
	addCmd.Flags().StringVar(&apiKeyClient, "client", "", "client name the key resolves to")
	addCmd.Flags().StringVar(&apiKeyDescription, "description", "", "free-form note stored with the key")
	addCmd.Flags().StringVar(&apiKeyValue, "key", "", "use this key instead of generating one")
	_ = addCmd.MarkFlagRequired("client")

	cmd.AddCommand(addCmd)
	return cmd
}

func runAPIKeyAddCmd(cmd *cobra.Command, _ []string) error {
	a, closeApp, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer closeApp()

	key := apiKeyValue
	if key == "" {
		key = uuid.NewString()
	}
	if err := a.apiKeys.Add(cmd.Context(), key, apiKeyClient, apiKeyDescription); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fmt.Errorf("key already exists")
		}
		return err
	}

	// Only the hash is stored, so this is the one chance to see the key.
	fmt.Fprintln(cmd.OutOrStdout(), key)
	return nil
}

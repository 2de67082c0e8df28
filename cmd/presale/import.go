package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <snapshot.yaml>",
		Short: "Load a ledger snapshot into the configured mirror",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	a, closeApp, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer closeApp()

	states, err := a.importSnapshot(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to import snapshot: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, s := range states {
		fmt.Fprintf(out, "chain %d: %d rounds, %d purchases, %d promoters\n",
			s.State.ChainID, len(s.Rounds), len(s.Purchases), len(s.Promoters))
	}
	return nil
}

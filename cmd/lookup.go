package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/msomdec/meta-pet-registry/internal/domain"
	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <pet-id>",
	Short: "Print a stored registration as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	regs, closeStore, err := openRegistry(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	reg, err := regs.Lookup(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no registration with pet id %q", args[0])
		}
		return fmt.Errorf("lookup: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(reg)
}

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/msomdec/meta-pet-registry/internal/domain"
	"github.com/msomdec/meta-pet-registry/internal/service"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render <pet-id>",
	Short: "Regenerate the scroll for a stored registration",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	regs, closeStore, err := openRegistry(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	reg, err := regs.Rerender(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no registration with pet id %q", args[0])
		}
		return fmt.Errorf("render: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(cfg.ScrollDir(), service.ScrollFilename(reg.PetID)))
	return nil
}

package cmd

import (
	"github.com/msomdec/meta-pet-registry/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
	v       = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "petregistry",
	Short: "Meta-pet registration form and scroll generator",
	Long: `petregistry serves a registration form for digital pets, stores each
registration in an append-only log, and renders a PDF registration scroll.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (YAML); PETREG_* environment variables override it")
	rootCmd.PersistentFlags().String("data-dir", "",
		"directory holding the registration log, uploads and scrolls")

	_ = v.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(ver string) {
	version = ver
	rootCmd.Version = ver
}

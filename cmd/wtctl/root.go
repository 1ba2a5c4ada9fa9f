package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/widetable/widetable-db/internal/widetable"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "wtctl",
		Short:         "widetable maintenance tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("data-dir", "", "data directory (default $HOME/.widetable/data)")
	cmd.PersistentFlags().String("family", "standard", "column family name")

	viper.SetEnvPrefix("WIDETABLE")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("data-dir", cmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("family", cmd.PersistentFlags().Lookup("family"))

	cmd.AddCommand(newInspectCmd())
	cmd.AddCommand(newCompactCmd())

	return cmd
}

func dataDir() (string, error) {
	if dir := viper.GetString("data-dir"); dir != "" {
		return dir, nil
	}
	home, err := widetable.GetWidetableDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "data"), nil
}

func familyName() string {
	return viper.GetString("family")
}

package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"palaver/internal/app"
)

var (
	home       string
	passphrase string
	configPath string

	wire *app.Wire
)

// Execute runs the CLI.
func Execute() error {
	root := &cobra.Command{
		Use:           "palaver",
		Short:         "End-to-end encrypted session layer CLI",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".palaver")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			if configPath == "" {
				configPath = filepath.Join(home, "config.yaml")
			}
			cfg, err := app.LoadConfig(configPath)
			if err != nil {
				return err
			}
			cfg.Home = home

			wire, err = app.NewWire(cfg)
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "state dir (default ~/.palaver)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the identity keys")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <home>/config.yaml)")

	root.AddCommand(
		initCmd(),
		whoamiCmd(),
		wipeCmd(),
		signCmd(),
		verifyCmd(),
		challengeCmd(),
		bundleCmd(),
		sessionCmd(),
		sendCmd(),
		recvCmd(),
	)
	return root.Execute()
}

func requirePassphrase() error {
	if passphrase == "" {
		return fmt.Errorf("passphrase required (-p)")
	}
	return nil
}

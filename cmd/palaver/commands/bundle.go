package commands

import (
	"github.com/spf13/cobra"
)

func bundleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Manage prekey bundles",
	}
	cmd.AddCommand(bundleExportCmd())
	return cmd
}

// bundle export: emit the public bundle for peers. The current bundle
// is reused, minus any consumed one-time prekeys; --rotate (or a first
// export) provisions fresh prekey material.
func bundleExportCmd() *cobra.Command {
	var rotate bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the public prekey bundle, provisioning prekeys as needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			if !rotate {
				b, ok, err := wire.Exchange.CurrentBundle(passphrase)
				if err != nil {
					return err
				}
				if ok {
					return printJSON(b)
				}
			}
			b, err := wire.Exchange.PublishBundle(passphrase)
			if err != nil {
				return err
			}
			return printJSON(b)
		},
	}
	cmd.Flags().BoolVar(&rotate, "rotate", false, "rotate the signed prekey and provision a fresh one-time batch")
	return cmd
}

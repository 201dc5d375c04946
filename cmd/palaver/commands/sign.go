package commands

import (
	"github.com/spf13/cobra"
)

// sign <payload.json>: sign a JSON payload with the local identity.
func signCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sign <payload.json>",
		Short: "Sign a JSON payload, emitting a detached signature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			var payload any
			if err := readJSONInput(args[0], &payload); err != nil {
				return err
			}
			sp, err := wire.Identity.Sign(passphrase, payload)
			if err != nil {
				return err
			}
			return printJSON(sp)
		},
	}
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"palaver/internal/crypto"
)

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the local DID and key fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			id, err := wire.Identity.Load(passphrase)
			if err != nil {
				return err
			}
			fmt.Printf("DID: %s\nFingerprint: %s\n", id.DID, crypto.Fingerprint(id.EdPub.Slice()))
			return nil
		},
	}
}

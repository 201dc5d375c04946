package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"palaver/internal/crypto"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate identity keys and store them securely",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			id, err := wire.Identity.Generate(passphrase)
			if err != nil {
				return err
			}
			fmt.Printf("Identity created.\nDID: %s\nFingerprint: %s\n", id.DID, crypto.Fingerprint(id.EdPub.Slice()))
			return nil
		},
	}
}

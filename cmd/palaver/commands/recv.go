package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"palaver/internal/domain"
)

// recv <peer-did> <envelope.json>: decrypt an envelope from a peer.
// Pass "-" to read the envelope from stdin.
func recvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recv <peer-did> <envelope.json>",
		Short: "Decrypt an envelope from a peer and print the plaintext",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			var env domain.Envelope
			if err := readJSONInput(args[1], &env); err != nil {
				return err
			}
			pt, err := wire.Messages.Decrypt(passphrase, args[0], env)
			if err != nil {
				return err
			}
			fmt.Println(string(pt))
			return nil
		},
	}
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"palaver/internal/domain"
)

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Establish ratchet sessions from peer bundles",
	}
	cmd.AddCommand(sessionStartCmd())
	return cmd
}

// session start <bundle.json>: consume a peer's bundle and seed a
// ratchet session as initiator.
func sessionStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <bundle.json>",
		Short: "Consume a peer bundle and seed a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			var b domain.PrekeyBundle
			if err := readJSONInput(args[0], &b); err != nil {
				return err
			}
			if _, err := wire.Exchange.Consume(passphrase, b); err != nil {
				return err
			}
			fmt.Printf("session seeded with %s\n", b.DID)
			return nil
		},
	}
}

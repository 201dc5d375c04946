package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"palaver/internal/domain"
)

// verify <payload.json> <signature.json>: check a detached signature.
func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <payload.json> <signature.json>",
		Short: "Verify a detached signature over a JSON payload",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload any
			if err := readJSONInput(args[0], &payload); err != nil {
				return err
			}
			var sp domain.SignedPayload
			if err := readJSONInput(args[1], &sp); err != nil {
				return err
			}
			ok, err := wire.Identity.Verify(payload, sp)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("signature INVALID for %s", sp.DID)
			}
			fmt.Printf("signature valid for %s\n", sp.DID)
			return nil
		},
	}
}

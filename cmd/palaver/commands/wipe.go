package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func wipeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wipe",
		Short: "Destroy the local identity and all session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.Identity.Wipe(); err != nil {
				return err
			}
			fmt.Println("identity and session state wiped")
			return nil
		},
	}
}

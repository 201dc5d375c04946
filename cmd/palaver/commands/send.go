package commands

import (
	"github.com/spf13/cobra"
)

// send <peer-did> <message>: encrypt a message, printing the envelope.
func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <peer-did> <message>",
		Short: "Encrypt a message for a peer, emitting the envelope JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := wire.Messages.Encrypt(args[0], []byte(args[1]))
			if err != nil {
				return err
			}
			return printJSON(env)
		},
	}
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"palaver/internal/domain"
)

func challengeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "challenge",
		Short: "Create and verify time-bounded identity proofs",
	}
	cmd.AddCommand(challengeCreateCmd(), challengeVerifyCmd())
	return cmd
}

func challengeCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a signed challenge proof for the local identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			proof, err := wire.Identity.CreateChallengeProof(passphrase)
			if err != nil {
				return err
			}
			return printJSON(proof)
		},
	}
}

func challengeVerifyCmd() *cobra.Command {
	var expectedDID string
	cmd := &cobra.Command{
		Use:   "verify <proof.json>",
		Short: "Verify a challenge proof against an expected DID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var proof domain.ChallengeProof
			if err := readJSONInput(args[0], &proof); err != nil {
				return err
			}
			if err := wire.Identity.VerifyChallengeProof(proof, expectedDID); err != nil {
				return err
			}
			fmt.Printf("proof valid for %s\n", expectedDID)
			return nil
		},
	}
	cmd.Flags().StringVar(&expectedDID, "did", "", "DID the proof must belong to")
	_ = cmd.MarkFlagRequired("did")
	return cmd
}

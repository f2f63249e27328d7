package main

import (
	"fmt"

	"hubhook/internal/security"

	"github.com/spf13/cobra"
)

var tokenBytes int

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Generate a random verify token or secret",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenBytes < security.MinSecretLength/2 {
			return fmt.Errorf("--bytes must be at least %d", security.MinSecretLength/2)
		}
		token, err := security.GenerateToken(tokenBytes)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().IntVarP(&tokenBytes, "bytes", "b", 32, "Number of random bytes")
}

package main

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/uid2-io/uid2-client-go/uid2"
)

var decryptTokenCmd = &cobra.Command{
	Use:   "decrypt-token <base64-token>",
	Short: "Decrypt a UID2 advertising token and print the resulting identity",
	Args:  cobra.ExactArgs(1),
	RunE:  runDecryptToken,
}

func init() {
	rootCmd.AddCommand(decryptTokenCmd)
}

func runDecryptToken(cmd *cobra.Command, args []string) error {
	reqID := uuid.NewString()
	log := logger.With("request_id", reqID, "cmd", "decrypt-token")

	scope, err := parseScope(cfg.Scope)
	if err != nil {
		return err
	}
	store, err := loadKeyStore(cfg.KeysFile)
	if err != nil {
		return err
	}

	raw, err := base64.StdEncoding.DecodeString(args[0])
	if err != nil {
		return fmt.Errorf("decode token: %w", err)
	}

	client := uid2.NewClient(scope, store)
	resp := client.DecryptToken(raw, time.Now())

	log.Info("decrypt-token result", "status", resp.Status)
	fmt.Fprintf(cmd.OutOrStdout(), "status: %s\n", resp.Status)
	if resp.HasIdentity() {
		fmt.Fprintf(cmd.OutOrStdout(), "site_id: %d\n", resp.SiteID)
		fmt.Fprintf(cmd.OutOrStdout(), "site_key_site_id: %d\n", resp.SiteKeySiteID)
		fmt.Fprintf(cmd.OutOrStdout(), "established: %s\n", resp.Established.UTC().Format(time.RFC3339))
	}
	if resp.Status == uid2.StatusSuccess {
		fmt.Fprintf(cmd.OutOrStdout(), "uid: %s\n", resp.UID)
	}
	return nil
}

package main

import (
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/uid2-io/uid2-client-go/uid2"
)

var decryptDataCmd = &cobra.Command{
	Use:   "decrypt-data <base64-envelope>",
	Short: "Decrypt a data payload envelope produced by encrypt-data",
	Args:  cobra.ExactArgs(1),
	RunE:  runDecryptData,
}

func init() {
	rootCmd.AddCommand(decryptDataCmd)
}

func runDecryptData(cmd *cobra.Command, args []string) error {
	reqID := uuid.NewString()
	log := logger.With("request_id", reqID, "cmd", "decrypt-data")

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
		return fmt.Errorf("decode envelope: %w", err)
	}

	client := uid2.NewClient(scope, store)
	resp := client.DecryptData(raw)

	log.Info("decrypt-data result", "status", resp.Status)
	fmt.Fprintf(cmd.OutOrStdout(), "status: %s\n", resp.Status)
	if resp.Status == uid2.StatusSuccess {
		fmt.Fprintf(cmd.OutOrStdout(), "encrypted_at: %s\n", resp.EncryptedAt.UTC())
		fmt.Fprintf(cmd.OutOrStdout(), "payload_base64: %s\n", base64.StdEncoding.EncodeToString(resp.Payload))
	}
	return nil
}

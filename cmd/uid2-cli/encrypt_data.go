package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/uid2-io/uid2-client-go/uid2"
)

var encryptDataSiteID int32

var encryptDataCmd = &cobra.Command{
	Use:   "encrypt-data <plaintext>",
	Short: "Encrypt a data payload for a site, printing the base64 envelope",
	Args:  cobra.ExactArgs(1),
	RunE:  runEncryptData,
}

func init() {
	encryptDataCmd.Flags().Int32Var(&encryptDataSiteID, "site-id", 0, "site id to encrypt for (required)")
	rootCmd.AddCommand(encryptDataCmd)
}

func runEncryptData(cmd *cobra.Command, args []string) error {
	reqID := uuid.NewString()
	log := logger.With("request_id", reqID, "cmd", "encrypt-data")

	scope, err := parseScope(cfg.Scope)
	if err != nil {
		return err
	}
	store, err := loadKeyStore(cfg.KeysFile)
	if err != nil {
		return err
	}
	if encryptDataSiteID == 0 {
		return fmt.Errorf("--site-id is required")
	}

	client := uid2.NewClient(scope, store)
	siteID := encryptDataSiteID
	resp, err := client.EncryptData(uid2.EncryptRequest{
		Data:   []byte(args[0]),
		SiteID: &siteID,
		Now:    time.Now(),
	})
	if err != nil {
		return err
	}

	log.Info("encrypt-data result", "status", resp.Status)
	fmt.Fprintf(cmd.OutOrStdout(), "status: %s\n", resp.Status)
	if resp.Status == uid2.StatusSuccess {
		fmt.Fprintf(cmd.OutOrStdout(), "envelope: %s\n", resp.Payload)
	}
	return nil
}

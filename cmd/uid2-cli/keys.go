package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/uid2-io/uid2-client-go/keyset"
	"github.com/uid2-io/uid2-client-go/uid2"
)

// keyBundleFile is the on-disk JSON shape for --keysfile: an object whose
// "keys" field is a flat array of keys, each with a base64 secret. This is a local file format only —
// fetching keys from an operator key-refresh endpoint is not implemented
// here.
type keyBundleFile struct {
	Keys []keyBundleEntry `json:"keys"`
}

type keyBundleEntry struct {
	ID        int64  `json:"id"`
	SiteID    int32  `json:"site_id"`
	SecretB64 string `json:"secret_base64"`
	Created   int64  `json:"created_ms"`
	Activates int64  `json:"activates_ms"`
	Expires   int64  `json:"expires_ms"`
}

func loadKeyStore(path string) (keyset.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("no --keysfile given")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keysfile: %w", err)
	}
	var bundle keyBundleFile
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil, fmt.Errorf("parse keysfile: %w", err)
	}

	store := keyset.NewMemStore(24 * time.Hour)
	now := time.Now()
	for _, e := range bundle.Keys {
		secret, err := base64.StdEncoding.DecodeString(e.SecretB64)
		if err != nil {
			return nil, fmt.Errorf("key %d: bad secret_base64: %w", e.ID, err)
		}
		k := keyset.Key{
			ID:        e.ID,
			SiteID:    e.SiteID,
			Secret:    secret,
			Created:   time.UnixMilli(e.Created),
			Activates: time.UnixMilli(e.Activates),
			Expires:   time.UnixMilli(e.Expires),
		}
		store.Put(k, now)
		logger.Debug("loaded key", "key_id", k.ID, "site_id", k.SiteID, "fingerprint", keyset.Fingerprint(k.Secret))
	}
	return store, nil
}

func parseScope(s string) (uid2.IdentityScope, error) {
	switch s {
	case "uid2", "UID2":
		return uid2.ScopeUID2, nil
	case "euid", "EUID":
		return uid2.ScopeEUID, nil
	default:
		return 0, fmt.Errorf("unknown scope %q, want uid2 or euid", s)
	}
}

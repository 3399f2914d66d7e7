package uid2

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/uid2-io/uid2-client-go/keyset"
)

func v3Store(t *testing.T, now time.Time) (keyset.Store, v3TokenFields) {
	t.Helper()
	s := keyset.NewMemStore(time.Hour)
	master := keyset.Key{ID: 10, Secret: make([]byte, 16), Activates: now.Add(-time.Hour), Expires: now.Add(time.Hour)}
	site := keyset.Key{ID: 20, SiteID: 42, Secret: make([]byte, 16), Activates: now.Add(-time.Hour), Expires: now.Add(time.Hour)}
	s.Put(master, now)
	s.Put(site, now)

	f := v3TokenFields{
		masterKeyID:   10,
		siteKeyID:     20,
		masterSecret:  master.Secret,
		siteSecret:    site.Secret,
		rawID:         make([]byte, 16),
		establishedMs: 1609459200000,
		expiresMs:     now.Add(time.Minute).UnixMilli(),
		scope:         ScopeUID2,
	}
	for i := range f.rawID {
		f.rawID[i] = byte(i)
	}
	return s, f
}

func TestDecryptTokenV3HappyPath(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	store, f := v3Store(t, now)
	token := buildV3Token(t, f)

	resp := decryptToken(token, store, now, ScopeUID2)
	if resp.Status != StatusSuccess {
		t.Fatalf("Status = %v, want Success", resp.Status)
	}
	wantUID := base64.StdEncoding.EncodeToString(f.rawID)
	if resp.UID != wantUID {
		t.Fatalf("UID = %q, want %q", resp.UID, wantUID)
	}
	if resp.SiteKeySiteID != 42 {
		t.Fatalf("SiteKeySiteID = %d, want 42", resp.SiteKeySiteID)
	}
}

func TestDecryptTokenV3ScopeMismatch(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	store, f := v3Store(t, now)
	f.scope = ScopeEUID
	token := buildV3Token(t, f)

	resp := decryptToken(token, store, now, ScopeUID2)
	if resp.Status != StatusInvalidIdentityScope {
		t.Fatalf("Status = %v, want InvalidIdentityScope", resp.Status)
	}
}

func TestDecryptTokenV3ScopeMismatchNeverTouchesKeys(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	store, f := v3Store(t, now)
	f.scope = ScopeEUID
	f.masterKeyID = 999 // would fail key lookup too, but scope check must win and happen first
	token := buildV3Token(t, f)

	resp := decryptToken(token, store, now, ScopeUID2)
	if resp.Status != StatusInvalidIdentityScope {
		t.Fatalf("Status = %v, want InvalidIdentityScope even with an unknown key id", resp.Status)
	}
}

func TestDecryptTokenV3UnknownMasterKey(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	store, f := v3Store(t, now)
	f.masterKeyID = 999
	token := buildV3Token(t, f)

	resp := decryptToken(token, store, now, ScopeUID2)
	if resp.Status != StatusNotAuthorizedForKey {
		t.Fatalf("Status = %v, want NotAuthorizedForKey", resp.Status)
	}
}

func TestDecryptTokenV3Expired(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	store, f := v3Store(t, now)
	f.expiresMs = now.Add(-time.Second).UnixMilli()
	token := buildV3Token(t, f)

	resp := decryptToken(token, store, now, ScopeUID2)
	if resp.Status != StatusExpiredToken {
		t.Fatalf("Status = %v, want ExpiredToken", resp.Status)
	}
	if resp.UID != "" {
		t.Fatalf("UID = %q, want empty on expiry", resp.UID)
	}
}

func TestDecryptTokenV3TamperedBodyFails(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	store, f := v3Store(t, now)
	token := buildV3Token(t, f)
	token[len(token)-1] ^= 0x01

	resp := decryptToken(token, store, now, ScopeUID2)
	if resp.Status != StatusInvalidPayload {
		t.Fatalf("Status = %v, want InvalidPayload", resp.Status)
	}
}

func TestDecryptTokenDispatchV3RequiresVersionByte(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	store, f := v3Store(t, now)
	token := buildV3Token(t, f)
	token[0] = 0x01 // byte 0 != 2, byte 1 == 112: dispatch must still enter V3

	resp := decryptToken(token, store, now, ScopeUID2)
	if resp.Status == StatusVersionNotSupported {
		t.Fatalf("dispatch failed to route a non-2/112-prefixed V3 token into the V3 path")
	}
}

func TestDecryptTokenEUIDScope(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	store, f := v3Store(t, now)
	f.scope = ScopeEUID
	token := buildV3Token(t, f)

	resp := decryptToken(token, store, now, ScopeEUID)
	if resp.Status != StatusSuccess {
		t.Fatalf("Status = %v, want Success for matching EUID scope", resp.Status)
	}
}

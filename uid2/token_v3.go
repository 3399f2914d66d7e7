package uid2

import (
	"encoding/base64"
	"time"

	"github.com/uid2-io/uid2-client-go/internal/aead"
	"github.com/uid2-io/uid2-client-go/internal/wire"
	"github.com/uid2-io/uid2-client-go/keyset"
)

// decryptTokenV3 decodes a V3 (AES-GCM, nested master/site key) advertising
// token. raw is the full token envelope. Scope validation happens before
// any key lookup or decryption: a scope mismatch must never leak whether
// a given key id exists.
func decryptTokenV3(raw []byte, keys keyset.Store, now time.Time, configured IdentityScope) DecryptionResponse {
	r := wire.NewReader(raw)

	prefix, err := r.ReadU8()
	if err != nil {
		return failure(StatusInvalidPayload)
	}
	if decodeScope(prefix) != configured {
		return failure(StatusInvalidIdentityScope)
	}

	version, err := r.ReadU8()
	if err != nil {
		return failure(StatusInvalidPayload)
	}
	if version != versionV3 {
		return failure(StatusVersionNotSupported)
	}

	masterKeyID, err := r.ReadI32()
	if err != nil {
		return failure(StatusInvalidPayload)
	}
	masterBlob := r.ReadRestAsSlice()

	masterKey, ok := keys.TryGetKey(int64(masterKeyID))
	if !ok {
		return failure(StatusNotAuthorizedForKey)
	}

	masterPlain, err := aead.GCMDecrypt(masterBlob.Bytes(), masterKey.Secret)
	if err != nil {
		return failure(StatusInvalidPayload)
	}

	mr := wire.NewReader(masterPlain)
	expiresMs, err := mr.ReadI64()
	if err != nil {
		return failure(StatusInvalidPayload)
	}
	if _, err := mr.ReadI64(); err != nil { // created_ms, unused by the client core
		return failure(StatusInvalidPayload)
	}
	if _, err := mr.ReadI32(); err != nil { // operator_site_id, unvalidated
		return failure(StatusInvalidPayload)
	}
	if _, err := mr.ReadU8(); err != nil { // operator_type
		return failure(StatusInvalidPayload)
	}
	if _, err := mr.ReadI32(); err != nil { // operator_version
		return failure(StatusInvalidPayload)
	}
	if _, err := mr.ReadI32(); err != nil { // operator_key_id
		return failure(StatusInvalidPayload)
	}
	siteKeyID, err := mr.ReadI32()
	if err != nil {
		return failure(StatusInvalidPayload)
	}
	siteBlob := mr.ReadRestAsSlice()

	siteKey, ok := keys.TryGetKey(int64(siteKeyID))
	if !ok {
		return failure(StatusNotAuthorizedForKey)
	}

	sitePlain, err := aead.GCMDecrypt(siteBlob.Bytes(), siteKey.Secret)
	if err != nil {
		return failure(StatusInvalidPayload)
	}

	sr := wire.NewReader(sitePlain)
	siteID, err := sr.ReadI32()
	if err != nil {
		return failure(StatusInvalidPayload)
	}
	if _, err := sr.ReadI64(); err != nil { // publisher_id
		return failure(StatusInvalidPayload)
	}
	if _, err := sr.ReadI32(); err != nil { // publisher_key_id
		return failure(StatusInvalidPayload)
	}
	if _, err := sr.ReadI32(); err != nil { // privacy_bits, read and ignored
		return failure(StatusInvalidPayload)
	}
	establishedMs, err := sr.ReadI64()
	if err != nil {
		return failure(StatusInvalidPayload)
	}
	if _, err := sr.ReadI64(); err != nil { // refreshed_ms
		return failure(StatusInvalidPayload)
	}
	rawID := sr.ReadRestAsSlice()

	uid := base64.StdEncoding.EncodeToString(rawID.Bytes())
	established := time.UnixMilli(establishedMs)

	if expiresMs < now.UnixMilli() {
		return DecryptionResponse{
			Status:        StatusExpiredToken,
			Established:   established,
			SiteID:        siteID,
			SiteKeySiteID: siteKey.SiteID,
			hasIdentity:   true,
		}
	}

	return DecryptionResponse{
		Status:        StatusSuccess,
		UID:           uid,
		Established:   established,
		SiteID:        siteID,
		SiteKeySiteID: siteKey.SiteID,
		hasIdentity:   true,
	}
}

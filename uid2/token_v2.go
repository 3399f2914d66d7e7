package uid2

import (
	"time"

	"github.com/uid2-io/uid2-client-go/internal/aead"
	"github.com/uid2-io/uid2-client-go/internal/wire"
	"github.com/uid2-io/uid2-client-go/keyset"
)

// decryptTokenV2 decodes a V2 (AES-CBC, nested master/site key) advertising
// token. raw is the full token envelope, already confirmed to start with
// versionV2Token by the caller.
func decryptTokenV2(raw []byte, keys keyset.Store, now time.Time) DecryptionResponse {
	r := wire.NewReader(raw)

	if _, err := r.ReadU8(); err != nil { // version, already checked
		return failure(StatusInvalidPayload)
	}
	masterKeyID, err := r.ReadI32()
	if err != nil {
		return failure(StatusInvalidPayload)
	}
	masterIV, err := r.ReadBytes(aead.CBCIVLen)
	if err != nil {
		return failure(StatusInvalidPayload)
	}
	masterCT := r.ReadRestAsSlice()

	masterKey, ok := keys.TryGetKey(int64(masterKeyID))
	if !ok {
		return failure(StatusNotAuthorizedForKey)
	}

	masterPlain, err := aead.CBCDecrypt(masterCT.Bytes(), masterIV, masterKey.Secret)
	if err != nil {
		return failure(StatusInvalidPayload)
	}

	mr := wire.NewReader(masterPlain)
	expiresMs, err := mr.ReadI64()
	if err != nil {
		return failure(StatusInvalidPayload)
	}
	siteKeyID, err := mr.ReadI32()
	if err != nil {
		return failure(StatusInvalidPayload)
	}
	identityIV, err := mr.ReadBytes(aead.CBCIVLen)
	if err != nil {
		return failure(StatusInvalidPayload)
	}
	identityCT := mr.ReadRestAsSlice()

	siteKey, ok := keys.TryGetKey(int64(siteKeyID))
	if !ok {
		return failure(StatusNotAuthorizedForKey)
	}

	identityPlain, err := aead.CBCDecrypt(identityCT.Bytes(), identityIV, siteKey.Secret)
	if err != nil {
		return failure(StatusInvalidPayload)
	}

	ir := wire.NewReader(identityPlain)
	siteID, err := ir.ReadI32()
	if err != nil {
		return failure(StatusInvalidPayload)
	}
	idLength, err := ir.ReadI32()
	if err != nil {
		return failure(StatusInvalidPayload)
	}
	if idLength < 0 || int(idLength) > ir.Remaining() {
		return failure(StatusInvalidPayload)
	}
	uidBytes, err := ir.ReadBytes(int(idLength))
	if err != nil {
		return failure(StatusInvalidPayload)
	}
	if _, err := ir.ReadI32(); err != nil { // privacy_bits, read and ignored
		return failure(StatusInvalidPayload)
	}
	establishedMs, err := ir.ReadI64()
	if err != nil {
		return failure(StatusInvalidPayload)
	}

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
		UID:           string(uidBytes),
		Established:   established,
		SiteID:        siteID,
		SiteKeySiteID: siteKey.SiteID,
		hasIdentity:   true,
	}
}

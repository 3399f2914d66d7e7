package uid2

import (
	"encoding/base64"
	"errors"
	"time"

	"github.com/uid2-io/uid2-client-go/internal/aead"
	"github.com/uid2-io/uid2-client-go/internal/wire"
	"github.com/uid2-io/uid2-client-go/keyset"
)

// EncryptRequest is the input to EncryptData. At most one of SiteID or
// AdvertisingToken may be set; setting both is a programmer error (see
// EncryptData's doc comment). Neither is consulted when Key is set.
type EncryptRequest struct {
	Data                 []byte
	Key                  *keyset.Key
	SiteID               *int32
	AdvertisingToken     string // base64-encoded envelope; decoded internally before dispatch
	InitializationVector []byte // must be 12 bytes if set
	Now                  time.Time
}

// decryptData dispatches raw to the V2 or V3 data codec.
func decryptData(raw []byte, keys keyset.Store, scope IdentityScope) DataResponse {
	if len(raw) < 1 {
		return dataFailure(StatusInvalidPayload)
	}
	if raw[0]&scopePrefixTypeMask == payloadTypeDataV3 {
		return decryptDataV3(raw, keys, scope)
	}
	return decryptDataV2(raw, keys)
}

// decryptDataV2 decodes the V2 (AES-CBC) data payload layout.
func decryptDataV2(raw []byte, keys keyset.Store) DataResponse {
	r := wire.NewReader(raw)

	payloadType, err := r.ReadU8()
	if err != nil {
		return dataFailure(StatusInvalidPayload)
	}
	if payloadType != payloadTypeV2Data {
		return dataFailure(StatusInvalidPayloadType)
	}
	version, err := r.ReadU8()
	if err != nil {
		return dataFailure(StatusInvalidPayload)
	}
	if version != versionV2Data {
		return dataFailure(StatusVersionNotSupported)
	}
	encryptedAtMs, err := r.ReadI64()
	if err != nil {
		return dataFailure(StatusInvalidPayload)
	}
	if _, err := r.ReadI32(); err != nil { // site_id, not returned to the caller
		return dataFailure(StatusInvalidPayload)
	}
	keyID, err := r.ReadI32()
	if err != nil {
		return dataFailure(StatusInvalidPayload)
	}
	iv, err := r.ReadBytes(aead.CBCIVLen)
	if err != nil {
		return dataFailure(StatusInvalidPayload)
	}
	ciphertext := r.ReadRestAsSlice()

	key, ok := keys.TryGetKey(int64(keyID))
	if !ok {
		return dataFailure(StatusNotAuthorizedForKey)
	}

	plaintext, err := aead.CBCDecrypt(ciphertext.Bytes(), iv, key.Secret)
	if err != nil {
		return dataFailure(StatusInvalidPayload)
	}

	return DataResponse{
		Status:      StatusSuccess,
		Payload:     plaintext,
		EncryptedAt: time.UnixMilli(encryptedAtMs),
	}
}

// decryptDataV3 decodes the V3 (AES-GCM) data payload layout.
func decryptDataV3(raw []byte, keys keyset.Store, scope IdentityScope) DataResponse {
	r := wire.NewReader(raw)

	prefix, err := r.ReadU8()
	if err != nil {
		return dataFailure(StatusInvalidPayload)
	}
	if decodeScope(prefix) != scope {
		return dataFailure(StatusInvalidIdentityScope)
	}

	version, err := r.ReadU8()
	if err != nil {
		return dataFailure(StatusInvalidPayload)
	}
	if version != versionV3 {
		return dataFailure(StatusVersionNotSupported)
	}

	keyID, err := r.ReadI32()
	if err != nil {
		return dataFailure(StatusInvalidPayload)
	}
	combined, err := r.ReadBytes(r.Remaining())
	if err != nil {
		return dataFailure(StatusInvalidPayload)
	}

	key, ok := keys.TryGetKey(int64(keyID))
	if !ok {
		return dataFailure(StatusNotAuthorizedForKey)
	}

	plaintext, err := aead.GCMDecrypt(combined, key.Secret)
	if err != nil {
		return dataFailure(StatusInvalidPayload)
	}

	pr := wire.NewReader(plaintext)
	encryptedAtMs, err := pr.ReadI64()
	if err != nil {
		return dataFailure(StatusInvalidPayload)
	}
	if _, err := pr.ReadI32(); err != nil { // site_id, not returned to the caller
		return dataFailure(StatusInvalidPayload)
	}
	data, err := pr.ReadBytes(pr.Remaining())
	if err != nil {
		return dataFailure(StatusInvalidPayload)
	}

	return DataResponse{
		Status:      StatusSuccess,
		Payload:     data,
		EncryptedAt: time.UnixMilli(encryptedAtMs),
	}
}

// encryptData builds a V3 data payload envelope. Returns (zero-value
// DataResponse, err) for invocation errors (nil data, or both
// SiteID and AdvertisingToken set); all other failure paths are reported
// via the returned DataResponse.Status.
func encryptData(req EncryptRequest, keys keyset.Store, scope IdentityScope) (DataResponse, error) {
	if req.Data == nil {
		return DataResponse{}, errors.New("uid2: EncryptRequest.Data must not be nil")
	}
	if req.SiteID != nil && req.AdvertisingToken != "" {
		return DataResponse{}, errors.New("uid2: EncryptRequest must not set both SiteID and AdvertisingToken")
	}

	var key keyset.Key
	switch {
	case req.Key != nil:
		if !req.Key.IsActiveAt(req.Now) {
			return dataFailure(StatusKeyInactive), nil
		}
		key = *req.Key

	default:
		if keys == nil {
			return dataFailure(StatusNotInitialized), nil
		}
		if !keys.IsValid(req.Now) {
			return dataFailure(StatusKeysNotSynced), nil
		}

		siteKeySiteID, ok, resp := resolveSiteKeySiteID(req, keys, scope)
		if !ok {
			return resp, nil
		}

		found, ok := keys.TryGetActiveSiteKey(siteKeySiteID, req.Now)
		if !ok {
			return dataFailure(StatusNotAuthorizedForKey), nil
		}
		key = found
	}

	iv := req.InitializationVector
	var err error
	if iv == nil {
		iv, err = aead.GenerateIV(aead.GCMIVLen)
		if err != nil {
			return dataFailure(StatusEncryptionFailure), nil
		}
	}

	inner := wire.NewWriter()
	inner.WriteI64(req.Now.UnixMilli())
	inner.WriteI32(key.SiteID)
	inner.WriteBytes(req.Data)

	ct, err := aead.GCMEncrypt(inner.Bytes(), iv, key.Secret)
	if err != nil {
		return dataFailure(StatusEncryptionFailure), nil
	}

	out := wire.NewWriter()
	out.WriteU8(encodeScopePrefix(payloadTypeDataV3, scope))
	out.WriteU8(versionV3)
	out.WriteI32(int32(key.ID))
	out.WriteBytes(iv)
	out.WriteBytes(ct)

	return DataResponse{
		Status:      StatusSuccess,
		Payload:     []byte(base64.StdEncoding.EncodeToString(out.Bytes())),
		EncryptedAt: req.Now,
	}, nil
}

// resolveSiteKeySiteID resolves the site key's site id: either the caller
// supplied SiteID directly, or it must be recovered by decrypting
// AdvertisingToken. ok=false means the caller should return resp as-is.
func resolveSiteKeySiteID(req EncryptRequest, keys keyset.Store, scope IdentityScope) (int32, bool, DataResponse) {
	if req.SiteID != nil {
		return *req.SiteID, true, DataResponse{}
	}
	if req.AdvertisingToken == "" {
		return 0, false, DataResponse{Status: StatusNotAuthorizedForKey}
	}

	tokenBytes, err := base64.StdEncoding.DecodeString(req.AdvertisingToken)
	if err != nil {
		return 0, false, dataFailure(StatusTokenDecryptFailure)
	}

	tokenResp := decryptToken(tokenBytes, keys, req.Now, scope)
	if tokenResp.Status != StatusSuccess && tokenResp.Status != StatusExpiredToken {
		return 0, false, dataFailure(StatusTokenDecryptFailure)
	}
	if !tokenResp.HasIdentity() {
		return 0, false, dataFailure(StatusTokenDecryptFailure)
	}
	return tokenResp.SiteKeySiteID, true, DataResponse{}
}

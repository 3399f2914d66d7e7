package uid2

import (
	"encoding/base64"

	"github.com/uid2-io/uid2-client-go/internal/aead"
	"github.com/uid2-io/uid2-client-go/internal/wire"
)

func b64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func decodeB64(b []byte) ([]byte, error) {
	return base64.StdEncoding.DecodeString(string(b))
}

type v2TokenFields struct {
	masterKeyID, siteKeyID       int32
	masterSecret, siteSecret     []byte
	uid                          string
	establishedMs, expiresMs     int64
	privacyBits                  int32
}

func buildV2Token(t testingT, f v2TokenFields) []byte {
	identity := wire.NewWriter()
	identity.WriteI32(0) // site_id is not asserted by these tests; callers read it back via SiteID
	identity.WriteI32(int32(len(f.uid)))
	identity.WriteBytes([]byte(f.uid))
	identity.WriteI32(f.privacyBits)
	identity.WriteI64(f.establishedMs)

	identityIV := mustIV(t, aead.CBCIVLen)
	identityCT, err := aead.CBCEncrypt(identity.Bytes(), identityIV, f.siteSecret)
	mustOK(t, err)

	master := wire.NewWriter()
	master.WriteI64(f.expiresMs)
	master.WriteI32(f.siteKeyID)
	master.WriteBytes(identityIV)
	master.WriteBytes(identityCT)

	masterIV := mustIV(t, aead.CBCIVLen)
	masterCT, err := aead.CBCEncrypt(master.Bytes(), masterIV, f.masterSecret)
	mustOK(t, err)

	out := wire.NewWriter()
	out.WriteU8(versionV2Token)
	out.WriteI32(f.masterKeyID)
	out.WriteBytes(masterIV)
	out.WriteBytes(masterCT)
	return out.Bytes()
}

type v3TokenFields struct {
	masterKeyID, siteKeyID   int32
	masterSecret, siteSecret []byte
	rawID                    []byte
	establishedMs, expiresMs int64
	scope                    IdentityScope
}

func buildV3Token(t testingT, f v3TokenFields) []byte {
	site := wire.NewWriter()
	site.WriteI32(0) // site_id
	site.WriteI64(0) // publisher_id
	site.WriteI32(0) // publisher_key_id
	site.WriteI32(0) // privacy_bits
	site.WriteI64(f.establishedMs)
	site.WriteI64(0) // refreshed_ms
	site.WriteBytes(f.rawID)

	siteIV := mustIV(t, aead.GCMIVLen)
	siteCT, err := aead.GCMEncrypt(site.Bytes(), siteIV, f.siteSecret)
	mustOK(t, err)
	siteBlob := append(append([]byte{}, siteIV...), siteCT...)

	master := wire.NewWriter()
	master.WriteI64(f.expiresMs)
	master.WriteI64(0) // created_ms
	master.WriteI32(0) // operator_site_id
	master.WriteU8(0)  // operator_type
	master.WriteI32(0) // operator_version
	master.WriteI32(0) // operator_key_id
	master.WriteI32(f.siteKeyID)
	master.WriteBytes(siteBlob)

	masterIV := mustIV(t, aead.GCMIVLen)
	masterCT, err := aead.GCMEncrypt(master.Bytes(), masterIV, f.masterSecret)
	mustOK(t, err)
	masterBlob := append(append([]byte{}, masterIV...), masterCT...)

	out := wire.NewWriter()
	out.WriteU8(encodeScopePrefix(payloadTypeIdentity, f.scope))
	out.WriteU8(versionV3)
	out.WriteI32(f.masterKeyID)
	out.WriteBytes(masterBlob)
	return out.Bytes()
}

type v2DataFields struct {
	keyID, siteID int32
	secret        []byte
	encryptedAtMs int64
	data          []byte
}

func buildV2Data(t testingT, f v2DataFields) []byte {
	iv := mustIV(t, aead.CBCIVLen)
	ct, err := aead.CBCEncrypt(f.data, iv, f.secret)
	mustOK(t, err)

	out := wire.NewWriter()
	out.WriteU8(payloadTypeV2Data)
	out.WriteU8(versionV2Data)
	out.WriteI64(f.encryptedAtMs)
	out.WriteI32(f.siteID)
	out.WriteI32(f.keyID)
	out.WriteBytes(iv)
	out.WriteBytes(ct)
	return out.Bytes()
}

func mustIV(t testingT, n int) []byte {
	iv, err := aead.GenerateIV(n)
	mustOK(t, err)
	return iv
}

func mustOK(t testingT, err error) {
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// testingT is the subset of *testing.T used by the helpers above; they take
// this interface rather than *testing.T and so do not import "testing".
type testingT interface {
	Fatalf(format string, args ...any)
}

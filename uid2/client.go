package uid2

import (
	"time"

	"github.com/uid2-io/uid2-client-go/keyset"
)

// Client bundles the three codec entry points behind one receiver
// configured once with an IdentityScope, so callers don't thread scope
// through every call. It is stateless beyond that configuration and safe
// for concurrent use as long as the underlying keyset.Store is.
type Client struct {
	scope IdentityScope
	keys  keyset.Store
}

// NewClient returns a Client configured for scope, backed by keys.
func NewClient(scope IdentityScope, keys keyset.Store) *Client {
	return &Client{scope: scope, keys: keys}
}

// Scope returns the IdentityScope this Client was constructed with.
func (c *Client) Scope() IdentityScope { return c.scope }

// DecryptToken decrypts raw (a V2 or V3 advertising token envelope) and
// returns a DecryptionResponse. raw is the raw envelope, not base64 text.
func (c *Client) DecryptToken(raw []byte, now time.Time) DecryptionResponse {
	return decryptToken(raw, c.keys, now, c.scope)
}

// DecryptData decrypts raw (a V2 or V3 data payload envelope) and returns
// a DataResponse. raw is the raw envelope, not base64 text.
func (c *Client) DecryptData(raw []byte) DataResponse {
	return decryptData(raw, c.keys, c.scope)
}

// EncryptData encrypts req.Data under a resolved site-scoped key and
// returns a DataResponse whose Payload is the base64-encoded V3 envelope.
// The returned error is non-nil only for invocation errors; data-driven
// failures are reported via the returned DataResponse.Status.
func (c *Client) EncryptData(req EncryptRequest) (DataResponse, error) {
	return encryptData(req, c.keys, c.scope)
}

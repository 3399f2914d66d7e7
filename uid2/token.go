package uid2

import (
	"time"

	"github.com/uid2-io/uid2-client-go/keyset"
)

// decryptToken dispatches raw to the V2 or V3 token codec. The dispatch
// order matters: V2 carries its version in byte 0, V3 places a
// scope-encoded byte at offset 0 and the version constant at offset 1.
func decryptToken(raw []byte, keys keyset.Store, now time.Time, scope IdentityScope) DecryptionResponse {
	if len(raw) < 2 {
		return failure(StatusInvalidPayload)
	}
	switch {
	case raw[0] == versionV2Token:
		return decryptTokenV2(raw, keys, now)
	case raw[1] == versionV3:
		return decryptTokenV3(raw, keys, now, scope)
	default:
		return failure(StatusVersionNotSupported)
	}
}

package uid2

// Status is the data-driven failure channel for the codec entry points:
// every call returns one of these on its response instead of an error,
// reserving Go errors for programmer mistakes (invalid EncryptRequest
// construction, not malformed or unauthorized input).
type Status string

const (
	StatusSuccess              Status = "SUCCESS"
	StatusNotInitialized       Status = "NOT_INITIALIZED"
	StatusInvalidPayload       Status = "INVALID_PAYLOAD"
	StatusInvalidPayloadType   Status = "INVALID_PAYLOAD_TYPE"
	StatusVersionNotSupported  Status = "VERSION_NOT_SUPPORTED"
	StatusNotAuthorizedForKey  Status = "NOT_AUTHORIZED_FOR_KEY"
	StatusInvalidIdentityScope Status = "INVALID_IDENTITY_SCOPE"
	StatusExpiredToken         Status = "EXPIRED_TOKEN"
	StatusKeysNotSynced        Status = "KEYS_NOT_SYNCED"
	StatusKeyInactive          Status = "KEY_INACTIVE"
	StatusEncryptionFailure    Status = "ENCRYPTION_FAILURE"
	StatusTokenDecryptFailure  Status = "TOKEN_DECRYPT_FAILURE"
)

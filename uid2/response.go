package uid2

import "time"

// DecryptionResponse is the result of DecryptToken. Only Status=Success or
// Status=ExpiredToken populate the identity fields; every other failure
// carries only Status.
type DecryptionResponse struct {
	Status        Status
	UID           string
	Established   time.Time
	SiteID        int32
	SiteKeySiteID int32
	hasIdentity   bool
}

// HasIdentity reports whether UID/Established/SiteID/SiteKeySiteID were
// populated (true for Success and ExpiredToken, false otherwise).
func (r DecryptionResponse) HasIdentity() bool { return r.hasIdentity }

func failure(status Status) DecryptionResponse {
	return DecryptionResponse{Status: status}
}

// DataResponse is the result of EncryptData / DecryptData. For DecryptData,
// Payload holds the decrypted application bytes. For EncryptData, Payload
// holds the base64-encoded envelope text instead of raw bytes.
type DataResponse struct {
	Status      Status
	Payload     []byte
	EncryptedAt time.Time
}

func dataFailure(status Status) DataResponse {
	return DataResponse{Status: status}
}

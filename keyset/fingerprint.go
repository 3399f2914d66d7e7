package keyset

import "golang.org/x/crypto/sha3"

// Fingerprint returns a short, non-reversible identifier for a key secret
// suitable for log lines — the secret itself must never be logged.
func Fingerprint(secret []byte) string {
	h := sha3.New256()
	_, _ = h.Write(secret)
	sum := h.Sum(nil)
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 16)
	for i := 0; i < 8; i++ {
		out[i*2] = hexdigits[sum[i]>>4]
		out[i*2+1] = hexdigits[sum[i]&0xF]
	}
	return string(out)
}

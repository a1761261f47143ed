// Package llm holds helpers shared by the text-completion adapters.
package llm

import (
	"encoding/hex"

	"github.com/minio/highwayhash"
)

// fingerprintKey seeds the credential hash. It is not a secret; it only has to be stable.
var fingerprintKey = []byte("tradematch-oracle-fingerprint-k!")

// Fingerprint identifies a provider, model, endpoint and credential combination
// without exposing the key. Two services with equal fingerprints answer the same
// prompt the same way, so cached results may be shared between them.
func Fingerprint(provider, model, baseURL, apiKey string) string {
	h, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		// Only possible with a key that is not 32 bytes.
		panic(err)
	}
	_, _ = h.Write([]byte(baseURL))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(apiKey))
	return provider + "/" + model + "/" + hex.EncodeToString(h.Sum(nil))
}

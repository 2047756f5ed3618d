package workflow

import (
	"crypto/sha256"
	"fmt"

	"github.com/eirrgang/scale-ms/codec"
	"github.com/eirrgang/scale-ms/id"
)

// Fingerprint derives the content-addressed identity of an encoded item:
// the SHA-256 digest of the canonical serialization with the label and
// identity members excluded. Label is user convenience, and identity may
// itself be derived from the fingerprint, so neither is identifying.
//
// Items whose encodings differ only in label or identity therefore
// fingerprint identically.
func Fingerprint(encoded map[string]any) (id.ResourceID, error) {
	identifying := make(map[string]any, len(encoded))
	for k, v := range encoded {
		if k == "label" || k == "identity" {
			continue
		}
		identifying[k] = v
	}

	canonical, err := codec.Marshal(identifying)
	if err != nil {
		return id.ResourceID{}, fmt.Errorf("workflow: fingerprint: %w", err)
	}

	digest := sha256.Sum256(canonical)
	rid, err := id.NewResourceID(digest[:])
	if err != nil {
		// sha256 yields exactly 32 bytes; anything else is corruption.
		panic(fmt.Sprintf("workflow: fingerprint digest rejected: %v", err))
	}
	return rid, nil
}

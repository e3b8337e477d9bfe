package build

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint identifies the inputs of one rendered page. Pages whose
// RenderHash did not change since the last build are not rewritten.
type Fingerprint struct {
	ContentHash string
	ThemeHash   string
	ConfigHash  string
	RenderHash  string
}

func (f *Fingerprint) ComputeRenderHash() string {
	h := sha256.New()
	for _, part := range []string{f.ContentHash, f.ThemeHash, f.ConfigHash} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	f.RenderHash = hex.EncodeToString(h.Sum(nil))
	return f.RenderHash
}

// HashBytes returns the hex sha256 of b.
func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

package heading

import (
	"crypto/sha256"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const fallbackPrefix = "heading-"

// IDs hands out anchor ids for one document. The first heading with a given
// base id keeps it, later ones get -1, -2, ... in call order. Create a new
// IDs for every document; it must not be shared between documents.
type IDs struct {
	counts map[string]int
	used   map[string]struct{}

	// seed makes fallback tokens reproducible for the same document. Nil
	// means fully random tokens.
	seed      []byte
	fallbacks int
}

// NewIDs returns a tracker whose fallback tokens are random.
func NewIDs() *IDs {
	return &IDs{
		counts: make(map[string]int),
		used:   make(map[string]struct{}),
	}
}

// NewDocumentIDs returns a tracker whose fallback tokens are derived from
// the document source, so every parse of the same body produces the same
// ids. Tokens still look random and differ between documents.
func NewDocumentIDs(src []byte) *IDs {
	ids := NewIDs()
	sum := sha256.Sum256(src)
	ids.seed = sum[:]
	return ids
}

// Assign returns the unique id for a heading with the given text. It never
// fails: text that normalizes to nothing gets a "heading-xxxxxxxxx" token.
func (ids *IDs) Assign(text string) string {
	base := Normalize(text)
	if base == "" {
		return ids.fallback()
	}
	return ids.take(base)
}

// Used reports whether id was already handed out.
func (ids *IDs) Used(id string) bool {
	_, ok := ids.used[id]
	return ok
}

func (ids *IDs) take(base string) string {
	n, seen := ids.counts[base]
	if !seen {
		ids.counts[base] = 0
		if !ids.Used(base) {
			ids.used[base] = struct{}{}
			return base
		}
	}
	for {
		n++
		candidate := base + "-" + strconv.Itoa(n)
		if !ids.Used(candidate) {
			ids.counts[base] = n
			ids.used[candidate] = struct{}{}
			return candidate
		}
	}
}

func (ids *IDs) fallback() string {
	for {
		ids.fallbacks++
		candidate := fallbackPrefix + ids.token(ids.fallbacks)
		if !ids.Used(candidate) {
			ids.used[candidate] = struct{}{}
			return candidate
		}
	}
}

// token returns 9 lowercase alphanumerics.
func (ids *IDs) token(seq int) string {
	var u uuid.UUID
	if ids.seed != nil {
		u = uuid.NewSHA1(uuid.NameSpaceOID, append(append([]byte{}, ids.seed...), strconv.Itoa(seq)...))
	} else {
		r, err := uuid.NewRandom()
		if err != nil {
			// entropy source failed; a counter is still unique per document
			return leftPad(strconv.FormatInt(int64(seq), 36), 9)
		}
		u = r
	}
	return strings.ReplaceAll(u.String(), "-", "")[:9]
}

func leftPad(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return strings.Repeat("0", n-len(s)) + s
}

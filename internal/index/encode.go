package index

import (
	"bytes"
	"encoding/binary"

	"folio/internal/domain/content"
)

// key = invDate(4) + 0x00 + key
// Newest first; equal dates by key; unparsable dates last.
func makeDateKey(d content.Date, key string) []byte {
	buf := make([]byte, 4, 4+1+len(key))
	binary.BigEndian.PutUint32(buf, ^d.Ordinal())
	buf = append(buf, 0x00)
	return append(buf, key...)
}

func keyFromDateKey(k []byte) string {
	if len(k) < 4+2 || k[4] != 0x00 {
		return ""
	}
	return string(bytes.Clone(k[5:]))
}

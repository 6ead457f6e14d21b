package strategy

import (
	"encoding/binary"
	"fmt"
	"hash"
	"io"
	"sort"

	"github.com/spaolacci/murmur3"
)

// Kind tags framing each value in the hash stream.
const (
	tagString    = 0x01
	tagInt32     = 0x02
	tagContainer = 0x03
	tagOther     = 0xff
)

// Fingerprint returns a short stable hash of a container's observable
// contents. Strategies that built content-identical containers yield
// identical fingerprints regardless of insertion order.
func Fingerprint(m map[string]any) string {
	h := murmur3.New128()
	writeContainer(h, m)

	hi, lo := h.Sum128()

	return fmt.Sprintf("0x%016x%016x", hi, lo)
}

// writeContainer hashes entries in sorted key order. Every key and
// value is length-prefixed and kind-tagged, so only equal contents
// produce equal streams.
func writeContainer(h hash.Hash, m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	writeUvarint(h, uint64(len(m)))

	for _, k := range keys {
		writeString(h, k)
		writeValue(h, m[k])
	}
}

func writeValue(h hash.Hash, v any) {
	switch x := v.(type) {
	case string:
		h.Write([]byte{tagString})
		writeString(h, x)
	case int32:
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], uint32(x))

		h.Write([]byte{tagInt32})
		h.Write(buf[:])
	case map[string]any:
		h.Write([]byte{tagContainer})
		writeContainer(h, x)
	default:
		h.Write([]byte{tagOther})
		writeString(h, fmt.Sprintf("%T:%v", x, x))
	}
}

func writeString(h hash.Hash, s string) {
	writeUvarint(h, uint64(len(s)))
	io.WriteString(h, s)
}

func writeUvarint(h hash.Hash, n uint64) {
	var buf [binary.MaxVarintLen64]byte
	h.Write(buf[:binary.PutUvarint(buf[:], n)])
}

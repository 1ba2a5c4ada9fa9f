package widetable

import (
	"hash/fnv"
	"strings"
)

// DecoratedKey is a row key paired with its distribution token. Keys order by
// (token, raw key), so on-disk segments and merges see keys in token order
// rather than byte order.
type DecoratedKey struct {
	Token uint64 `json:"token"`
	Key   string `json:"key"`
}

// DecorateKey computes the FNV-1a token for a raw row key.
func DecorateKey(key string) DecoratedKey {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return DecoratedKey{Token: h.Sum64(), Key: key}
}

// Compare orders two decorated keys: token first, raw key as tie-break.
func (k DecoratedKey) Compare(other DecoratedKey) int {
	if k.Token < other.Token {
		return -1
	}
	if k.Token > other.Token {
		return 1
	}
	return strings.Compare(k.Key, other.Key)
}

func (k DecoratedKey) String() string { return k.Key }

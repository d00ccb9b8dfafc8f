package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// ObservationFingerprint hashes a response vector so two fitted models can be
// checked for having been estimated on the same observations. Byte-exact on
// the IEEE 754 representation; NaN payloads are canonicalized.
func ObservationFingerprint(response []float64) Hash {
	buf := make([]byte, 8*len(response))
	for i, v := range response {
		bits := math.Float64bits(v)
		if math.IsNaN(v) {
			bits = math.Float64bits(math.NaN())
		}
		binary.LittleEndian.PutUint64(buf[i*8:], bits)
	}
	return NewHash(buf)
}

package embedding

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeVector encodes a Vector into the BLOB form the session catalog
// stores: a little-endian sequence of IEEE 754 float32 components with no
// length prefix, so the dimensionality falls out of the BLOB size on decode.
// Every cataloged point carries an embedding, so an empty vector is a caller
// bug, not a representable value.
func EncodeVector(vec Vector) ([]byte, error) {
	if len(vec) == 0 {
		return nil, fmt.Errorf("embedding: cannot encode an empty vector")
	}
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b, nil
}

// DecodeVector decodes a BLOB produced by EncodeVector back into a Vector.
func DecodeVector(b []byte) (Vector, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("embedding: cannot decode an empty vector blob")
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("embedding: invalid vector blob length %d (not multiple of 4)", len(b))
	}
	vec := make(Vector, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}

package knowledge

import (
	"encoding/binary"
	"math"
)

// buildHashFields converts an Entry into a flat map[string]string for HSET.
func buildHashFields(e Entry) map[string]string {
	return map[string]string{
		"__content": e.Text,
		"vector":    vectorToBytes(e.Vector),
		"source":    e.SourceTarget,
		"kind":      string(e.SourceKind),
	}
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

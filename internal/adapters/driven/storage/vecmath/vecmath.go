// Package vecmath holds the brute-force similarity search shared by the
// in-process vector indexes.
package vecmath

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/custodia-labs/jarvis/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b.
// Zero-length or zero-norm vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// IsZero reports whether v has no non-zero component. Such a vector has no
// direction, so its cosine similarity is undefined.
func IsZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// Rank scores every record against query and returns the best topK,
// highest score first. Ties keep record order.
func Rank(records []domain.VectorRecord, query []float32, topK int) []domain.SearchMatch {
	if topK <= 0 || len(records) == 0 {
		return []domain.SearchMatch{}
	}

	matches := make([]domain.SearchMatch, len(records))
	for i, r := range records {
		matches[i] = domain.SearchMatch{
			ID:       r.ID,
			Score:    Cosine(query, r.Vector),
			Metadata: r.Metadata,
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// Encode packs a vector as little-endian float32 bytes.
func Encode(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Decode is the inverse of Encode. Trailing partial values are ignored.
func Decode(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

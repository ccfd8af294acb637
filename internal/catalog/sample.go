package catalog

import "math/rand/v2"

// SampleTags shuffles tags with rng and keeps at most limit of them. The input
// slice is not modified. A nil rng keeps document order; limit <= 0 keeps all.
func SampleTags[T any](tags []T, rng *rand.Rand, limit int) []T {
	out := make([]T, len(tags))
	copy(out, tags)

	if rng != nil {
		rng.Shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}


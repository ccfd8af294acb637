package enrich

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrSampleTooLarge is returned when the drawn sample count exceeds the
// number of rows. The count is never clamped.
var ErrSampleTooLarge = errors.New("sample count exceeds available rows")

// SampleIndices draws a count uniformly from [rangeMin, rangeMax) and then
// that many unique row indices from [0, rows). The result depends only on
// rng's state, rows and the range.
func SampleIndices(rng *rand.Rand, rows, rangeMin, rangeMax int) ([]int, error) {
	if rangeMin < 0 || rangeMax <= rangeMin {
		return nil, fmt.Errorf("invalid sample range [%d, %d)", rangeMin, rangeMax)
	}

	count := rangeMin + rng.IntN(rangeMax-rangeMin)
	if count > rows {
		return nil, fmt.Errorf("%w: need %d, table has %d", ErrSampleTooLarge, count, rows)
	}

	return rng.Perm(rows)[:count], nil
}

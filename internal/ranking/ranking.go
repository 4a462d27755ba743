package ranking

import (
	"errors"
	"slices"
)

const (
	firstSegmentShare  = 0.3
	secondSegmentShare = 0.5

	firstSegmentWeight  = 5
	secondSegmentWeight = 3
	thirdSegmentWeight  = 1
)

// ErrEmptyVector is returned when a weighted average is requested for no values.
var ErrEmptyVector = errors.New("similarity vector is empty")

// Result is the weighted score of one contestant.
type Result struct {
	ContestantName string  `json:"contestant_name"`
	WeightedScore  float64 `json:"weighted_average"`
}

// Weights returns the positional weights for a vector of length n.
// The first floor(0.3n) positions weigh 5, the next floor(0.5n) weigh 3 and the rest weigh 1.
func Weights(n int) []int {
	if n <= 0 {
		return nil
	}

	first := int(firstSegmentShare * float64(n))
	next := int(secondSegmentShare * float64(n))

	weights := make([]int, n)
	for i := range weights {
		switch {
		case i < first:
			weights[i] = firstSegmentWeight
		case i < first+next:
			weights[i] = secondSegmentWeight
		default:
			weights[i] = thirdSegmentWeight
		}
	}

	return weights
}

// WeightedAverage reduces a similarity vector to one score using positional weights.
// The divisor is the sum of the weights actually assigned.
func WeightedAverage(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptyVector
	}

	var sum, total float64
	for i, w := range Weights(len(values)) {
		sum += values[i] * float64(w)
		total += float64(w)
	}

	return sum / total, nil
}

// Rank sorts results by descending score. Equal scores keep their input order.
func Rank(results []Result) []Result {
	slices.SortStableFunc(results, func(a, b Result) int {
		switch {
		case a.WeightedScore > b.WeightedScore:
			return -1
		case a.WeightedScore < b.WeightedScore:
			return 1
		default:
			return 0
		}
	})

	return results
}

package training

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
)

// StratifiedSplit holds out testFraction of each label's examples, so small
// classes stay represented on both sides. The same seed gives the same split.
func StratifiedSplit(examples []Example, testFraction float64, seed uint64) (train, test []Example, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("%w: test fraction must be in (0,1), got %v", ErrTrainingData, testFraction)
	}

	byLabel := make(map[string][]int)
	for i, ex := range examples {
		byLabel[ex.Label] = append(byLabel[ex.Label], i)
	}
	labels := make([]string, 0, len(byLabel))
	for l := range byLabel {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for _, l := range labels {
		idx := byLabel[l]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		n := int(math.Round(float64(len(idx)) * testFraction))
		if n >= len(idx) {
			n = len(idx) - 1
		}
		for k, i := range idx {
			if k < n {
				test = append(test, examples[i])
			} else {
				train = append(train, examples[i])
			}
		}
	}
	if len(test) == 0 {
		return nil, nil, fmt.Errorf("%w: too few examples to hold out %v", ErrTrainingData, testFraction)
	}
	return train, test, nil
}

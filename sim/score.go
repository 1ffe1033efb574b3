package sim

// TopTwo returns the largest and second largest counts. Missing values are
// reported as zero.
func TopTwo(counts []uint64) (first, second uint64) {
	for _, c := range counts {
		switch {
		case c > first:
			first, second = c, first
		case c > second:
			second = c
		}
	}

	return first, second
}

// Score returns the product of the two largest inspection counts. With a
// single agent the score is that agent's count.
func Score(counts []uint64) uint64 {
	if len(counts) == 1 {
		return counts[0]
	}

	first, second := TopTwo(counts)

	return first * second
}

package textmatch

// Similarity returns a ratio in [0,1] between two strings using the
// matching-blocks metric: 2*M/T where M is the total length of matching
// contiguous blocks found greedily longest-first and T is the combined
// length of both strings. Identical strings score 1.0; two empty strings
// also score 1.0.
func Similarity(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	matched := matchTotal(ra, rb)
	return 2.0 * float64(matched) / float64(total)
}

// matchTotal finds the longest common block, then recurses on the pieces to
// its left and right, summing block lengths.
func matchTotal(a, b []rune) int {
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchTotal(a[:ai], b[:bi]) +
		matchTotal(a[ai+size:], b[bi+size:])
}

// longestMatch locates the longest block common to a and b, preferring the
// earliest occurrence in a and then in b on ties.
func longestMatch(a, b []rune) (bestA, bestB, bestSize int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	// Positions of each rune in b, so the scan touches only plausible
	// block extensions.
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	// lengths[j] is the length of the longest block ending at a[i-1], b[j-1].
	lengths := make(map[int]int)
	for i, r := range a {
		next := make(map[int]int, len(b2j[r]))
		for _, j := range b2j[r] {
			k := lengths[j-1] + 1
			next[j] = k
			if k > bestSize {
				bestA = i - k + 1
				bestB = j - k + 1
				bestSize = k
			}
		}
		lengths = next
	}
	return bestA, bestB, bestSize
}

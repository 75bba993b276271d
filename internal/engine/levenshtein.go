package engine

// levenshtein computes the edit distance between two strings: the minimum
// number of single-character insertions, deletions, or substitutions
// required to change one into the other.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Single row of the distance matrix, updated in place.
	prev := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		current := prev[0]
		prev[0] = i
		for j := 1; j <= len(b); j++ {
			insertion := prev[j-1] + 1
			deletion := prev[j] + 1
			substitution := current
			if a[i-1] != b[j-1] {
				substitution++
			}
			current = prev[j]
			prev[j] = minInt(insertion, minInt(deletion, substitution))
		}
	}

	return prev[len(b)]
}

// similarity maps edit distance onto [0,1]: 1 means identical, 0 means
// nothing in common relative to the longer string.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(a, b))/float64(longest)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

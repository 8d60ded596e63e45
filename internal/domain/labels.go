package domain

// DominantLabel returns the label with the highest count. Ties go to the
// lexicographically smallest label; an empty map yields "".
func DominantLabel(counts map[string]int) string {
	best, bestCount := "", 0
	for label, c := range counts {
		if c > bestCount || (c == bestCount && label < best) {
			best, bestCount = label, c
		}
	}
	return best
}

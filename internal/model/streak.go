package model

// LongestStreak returns the longest run of consecutive true marks.
func LongestStreak(marks []bool) int {
	longest, current := 0, 0
	for _, done := range marks {
		if !done {
			current = 0
			continue
		}
		current++
		if current > longest {
			longest = current
		}
	}
	return longest
}

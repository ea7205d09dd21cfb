package resolve

import "math"

// PartialRatio scores how well the shorter of two strings aligns inside the
// longer one, on a 0-100 scale: for every window of the longer string with
// the shorter's length, round(100 * (1 - editDistance/windowLen)), keeping
// the best window. Equal strings score 100.
func PartialRatio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 100
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	shorter, longer := ra, rb
	if len(rb) < len(ra) {
		shorter, longer = rb, ra
	}
	n := len(shorter)
	best := 0
	for start := 0; start+n <= len(longer); start++ {
		d := editDistance(shorter, longer[start:start+n])
		score := int(math.Round(100 * (1 - float64(d)/float64(n))))
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return best
}

// editDistance is the Levenshtein distance between two rune slices.
func editDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

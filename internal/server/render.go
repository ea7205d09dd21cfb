package server

// truncateRunes cuts s to at most max runes, with no marker.
func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// clampReply cuts s to at most max runes, marking the cut with "...".
func clampReply(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

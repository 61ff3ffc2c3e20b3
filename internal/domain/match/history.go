package match

// History is a sequence of records ordered most recent first.
type History []Record

// FromChronological converts an oldest-first feed into a History.
func FromChronological(records []Record) History {
	h := make(History, len(records))
	for i, r := range records {
		h[len(records)-1-i] = r
	}
	return h
}

// Len returns the number of matches.
func (h History) Len() int { return len(h) }

// Recent returns the k most recent matches. The window is clamped to the
// history length; k <= 0 yields the whole history.
func (h History) Recent(k int) History {
	if k <= 0 || k >= len(h) {
		return h
	}
	return h[:k]
}

// Chronological returns a copy ordered oldest first.
func (h History) Chronological() []Record {
	out := make([]Record, len(h))
	for i, r := range h {
		out[len(h)-1-i] = r
	}
	return out
}

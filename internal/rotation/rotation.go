// Package rotation reconstructs the position in a cyclic publishing
// sequence from the observed post history. The CMS is the only durable
// memory: there is no stored counter, so the next element must be
// inferred from what was actually published, which can be gapped or
// polluted by manually created posts.
package rotation

// NextInSequence returns the pattern element that should follow the
// observed history. History is newest-first, as returned by the CMS.
//
// The algorithm is a longest-suffix alignment: for every candidate start
// offset into the pattern it lays the cycle over the oldest-first
// history and counts how many trailing positions match, then continues
// the cycle from the best candidate. It is deliberately best-effort, not
// an exact state machine, because the history may contain entries that
// never belonged to the automated sequence.
//
// With an empty pattern the zero value is returned; with empty history
// the pattern starts from its first element.
func NextInSequence[T comparable](pattern []T, historyNewestFirst []T) T {
	var zero T
	if len(pattern) == 0 {
		return zero
	}
	if len(historyNewestFirst) == 0 {
		return pattern[0]
	}

	// Oldest first, so suffix matching counts back from the most
	// recent observation.
	observed := make([]T, len(historyNewestFirst))
	for i, v := range historyNewestFirst {
		observed[len(historyNewestFirst)-1-i] = v
	}

	bestNext := 0
	bestLen := -1
	for start := range pattern {
		aligned := make([]T, len(observed))
		for i := range observed {
			aligned[i] = pattern[(start+i)%len(pattern)]
		}

		match := 0
		for i := 1; i <= len(observed); i++ {
			if observed[len(observed)-i] != aligned[len(aligned)-i] {
				break
			}
			match++
		}
		if match > bestLen {
			bestLen = match
			bestNext = (start + len(observed)) % len(pattern)
		}
	}

	return pattern[bestNext]
}

// NextRoundRobin returns the member following last in the canonical
// ordering. If last is absent from the ordering (for example the
// category was removed from the CMS), the rotation restarts at the
// first member. The specialization of NextInSequence for sequences that
// simply cycle through the full set.
func NextRoundRobin[T comparable](ordering []T, last T, haveLast bool) T {
	var zero T
	if len(ordering) == 0 {
		return zero
	}
	if !haveLast {
		return ordering[0]
	}
	for i, v := range ordering {
		if v == last {
			return ordering[(i+1)%len(ordering)]
		}
	}
	return ordering[0]
}

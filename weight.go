package main

// appendObservation inserts an observation keeping the series sorted by date,
// ties broken by insertion order (a same-date reading lands after existing
// ones). The input series is not mutated; the returned series marks the new
// observation as latest regardless of its date. The most recently appended
// reading, not the max-date one, is what updates the profile's current
// weight.
func appendObservation(s weightSeries, obs weightObservation) weightSeries {
	insertAt := len(s.Observations)
	for i, existing := range s.Observations {
		if obs.Date.Time.Before(existing.Date.Time) {
			insertAt = i
			break
		}
	}

	observations := make([]weightObservation, 0, len(s.Observations)+1)
	observations = append(observations, s.Observations[:insertAt]...)
	observations = append(observations, obs)
	observations = append(observations, s.Observations[insertAt:]...)

	return weightSeries{Observations: observations, LatestIdx: insertAt}
}

// latestObservation returns the most recently appended observation, not the
// max-date one. ok=false on an empty series.
func latestObservation(s weightSeries) (weightObservation, bool) {
	if len(s.Observations) == 0 {
		return weightObservation{}, false
	}
	if s.LatestIdx < 0 || s.LatestIdx >= len(s.Observations) {
		// Loaded state that predates LatestIdx tracking falls back to the
		// chronologically last element.
		return s.Observations[len(s.Observations)-1], true
	}
	return s.Observations[s.LatestIdx], true
}

package extract

// MergeByPriority extracts every tag in chain and merges the results by date.
// For a date reported under several tags the earliest tag in chain wins, so a
// current-standard tag overrides legacy synonyms without discarding periods
// only the legacy tags cover.
func MergeByPriority[M ~map[string]V, V any](chain Chain, extract func(Tag) M) M {
	merged := make(M)
	for _, tag := range chain {
		for date, v := range extract(tag) {
			if _, taken := merged[date]; !taken {
				merged[date] = v
			}
		}
	}
	return merged
}

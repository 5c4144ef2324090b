package retrieval

// paginate applies (page, per_page) over a fused, already-sorted hit list,
// then trims the resulting page to at most limit items (spec.md §4.8
// step 5). page is 1-based; out-of-range pages yield an empty slice.
func paginate(hits []RankedHit, page, perPage, limit int) []RankedHit {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = limit
	}
	if perPage <= 0 {
		perPage = len(hits)
	}

	start := (page - 1) * perPage
	if start >= len(hits) || start < 0 {
		return nil
	}
	end := start + perPage
	if end > len(hits) {
		end = len(hits)
	}

	out := hits[start:end]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

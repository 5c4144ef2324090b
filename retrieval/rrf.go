package retrieval

import "sort"

// RankedHit is one section id with its fused score, ready for pagination.
type RankedHit struct {
	SectionID int64
	Score     float32
	VectorOK  bool // section appeared in the vector channel's ranking
	TextOK    bool // section appeared in the lexical channel's ranking
}

// ClampAlpha enforces spec.md §9 Open Question 1: alpha outside [0,1] is
// clamped rather than rejected.
func ClampAlpha(alpha float32) float32 {
	if alpha < 0 {
		return 0
	}
	if alpha > 1 {
		return 1
	}
	return alpha
}

// Fuse combines the vector- and lexical-channel ranked section-id lists via
// Reciprocal Rank Fusion (spec.md §4.8 step 4, S3):
//
//	score(s) = alpha * 1/(k+rank_vec(s)) + (1-alpha) * 1/(k+rank_txt(s))
//
// where rank_x(s) is the section's 1-based rank in channel x if present, 0
// contribution otherwise. Output is sorted by descending score, tie-broken
// by ascending section id for a deterministic total order.
func Fuse(vectorIDs, textIDs []int64, alpha float32, k int) []RankedHit {
	if k <= 0 {
		k = 60
	}
	alpha = ClampAlpha(alpha)

	scores := make(map[int64]float32)
	vectorHit := make(map[int64]bool)
	textHit := make(map[int64]bool)
	order := make([]int64, 0, len(vectorIDs)+len(textIDs))
	seen := make(map[int64]bool)

	for i, id := range vectorIDs {
		rank := i + 1
		scores[id] += alpha * (1.0 / float32(k+rank))
		vectorHit[id] = true
		if !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	for i, id := range textIDs {
		rank := i + 1
		scores[id] += (1 - alpha) * (1.0 / float32(k+rank))
		textHit[id] = true
		if !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}

	out := make([]RankedHit, 0, len(order))
	for _, id := range order {
		out = append(out, RankedHit{SectionID: id, Score: scores[id], VectorOK: vectorHit[id], TextOK: textHit[id]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].SectionID < out[j].SectionID
	})
	return out
}

package model

// SearchHit is one retrieved fragment with its scores. Similarity comes from
// the vector search; Combined is filled in by the hybrid ranker when tag
// reranking is enabled, otherwise it equals Similarity.
type SearchHit struct {
	Fragment   Fragment
	Similarity float64
	Combined   float64
}

// ExpandOutcome records the result of indexing one discovered video
type ExpandOutcome struct {
	VideoID VideoID
	Err     error
}

// ExpandReport is the batch outcome of one scoped expansion. Per-video
// failures are collected here instead of aborting the batch.
type ExpandReport struct {
	Scope    Scope
	Outcomes []ExpandOutcome
}

// VideoIDs returns all discovered video IDs in first-seen order, including
// those whose indexing failed
func (r *ExpandReport) VideoIDs() []VideoID {
	ids := make([]VideoID, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		ids = append(ids, o.VideoID)
	}
	return ids
}

// Indexed returns the number of successfully indexed videos
func (r *ExpandReport) Indexed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of videos whose indexing failed
func (r *ExpandReport) Failed() int {
	return len(r.Outcomes) - r.Indexed()
}

package repository

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

type memoryEntry struct {
	fragment model.Fragment
	vector   []float32
}

// Memory is an in-memory Repository using brute-force cosine similarity.
// Used by tests and local experiments without a Firestore project.
type Memory struct {
	mu        sync.RWMutex
	fragments map[string]memoryEntry
	histories []*model.History
}

// NewMemory creates an empty in-memory repository
func NewMemory() *Memory {
	return &Memory{
		fragments: make(map[string]memoryEntry),
	}
}

func (r *Memory) PutFragments(ctx context.Context, fragments []*model.Fragment, vectors [][]float32) error {
	if len(fragments) != len(vectors) {
		return goerr.New("fragment and vector counts do not match",
			goerr.V("fragments", len(fragments)), goerr.V("vectors", len(vectors)))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, f := range fragments {
		r.fragments[f.ID()] = memoryEntry{fragment: *f, vector: vectors[i]}
	}
	return nil
}

func (r *Memory) CountFragments(ctx context.Context, videoID model.VideoID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, e := range r.fragments {
		if e.fragment.Video.ID == videoID {
			count++
		}
	}
	return count, nil
}

func (r *Memory) Search(ctx context.Context, vector []float32, topK int, filter *Filter) ([]*model.SearchHit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var hits []*model.SearchHit
	for _, e := range r.fragments {
		if !matchFilter(&e.fragment, filter) {
			continue
		}
		hits = append(hits, &model.SearchHit{
			Fragment:   e.fragment,
			Similarity: cosine(e.vector, vector),
		})
	}

	sortHitsBySimilarity(hits)
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func matchFilter(f *model.Fragment, filter *Filter) bool {
	if filter == nil {
		return true
	}
	switch {
	case filter.VideoID != "":
		return f.Video.ID == filter.VideoID
	case filter.ChannelID != "":
		return f.Video.ChannelID == filter.ChannelID
	case len(filter.VideoIDs) > 0:
		for _, id := range filter.VideoIDs {
			if f.Video.ID == id {
				return true
			}
		}
		return false
	default:
		return true
	}
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func (r *Memory) PutHistory(ctx context.Context, history *model.History) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.histories = append(r.histories, history)
	return nil
}

func (r *Memory) GetHistory(ctx context.Context, id model.HistoryID) (*model.History, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, h := range r.histories {
		if h.ID == id {
			return h, nil
		}
	}
	return nil, goerr.New("history not found", goerr.V("history_id", id))
}

func (r *Memory) ListHistory(ctx context.Context, limit int) ([]*model.History, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	histories := make([]*model.History, len(r.histories))
	copy(histories, r.histories)
	sort.SliceStable(histories, func(i, j int) bool {
		return histories[i].CreatedAt.After(histories[j].CreatedAt)
	})
	if limit > 0 && len(histories) > limit {
		histories = histories[:limit]
	}
	return histories, nil
}

package rerank_test

import (
	"math"
	"testing"

	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/burrow/pkg/service/rerank"
	"github.com/m-mizutani/gt"
)

func TestJaccard(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []string
		expected float64
	}{
		{"both empty", nil, nil, 0},
		{"one empty", []string{"x"}, nil, 0},
		{"identical", []string{"x", "y"}, []string{"x", "y"}, 1},
		{"partial", []string{"x", "y"}, []string{"x", "y", "z"}, 2.0 / 3.0},
		{"disjoint", []string{"a"}, []string{"b"}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gt.True(t, math.Abs(rerank.Jaccard(tc.a, tc.b)-tc.expected) < 1e-9)
		})
	}
}

func TestApply(t *testing.T) {
	// A: sim 0.90, tags {x,y} -> overlap 2/3, combined ~0.853
	// B: sim 0.80, tags {x,y,z} -> overlap 1.0, combined 0.84
	// With alpha=0.8, beta=0.2 the higher-similarity A still wins.
	hitA := &model.SearchHit{
		Fragment:   model.Fragment{Video: model.VideoMeta{ID: "a"}, TagSet: []string{"x", "y"}},
		Similarity: 0.90,
	}
	hitB := &model.SearchHit{
		Fragment:   model.Fragment{Video: model.VideoMeta{ID: "b"}, TagSet: []string{"x", "y", "z"}},
		Similarity: 0.80,
	}

	hits := []*model.SearchHit{hitB, hitA}
	rerank.Apply(hits, []string{"x", "y", "z"}, 0.8, 0.2, true)

	gt.Equal(t, hits[0].Fragment.Video.ID, model.VideoID("a"))
	gt.Equal(t, hits[1].Fragment.Video.ID, model.VideoID("b"))
	gt.True(t, math.Abs(hits[0].Combined-0.8533333333) < 1e-6)
	gt.True(t, math.Abs(hits[1].Combined-0.84) < 1e-6)
}

func TestApplyDisabled(t *testing.T) {
	hits := []*model.SearchHit{
		{Fragment: model.Fragment{Video: model.VideoMeta{ID: "b"}}, Similarity: 0.5},
		{Fragment: model.Fragment{Video: model.VideoMeta{ID: "a"}}, Similarity: 0.9},
	}
	rerank.Apply(hits, []string{"x"}, 0.8, 0.2, false)

	// Input order preserved, combined mirrors similarity
	gt.Equal(t, hits[0].Fragment.Video.ID, model.VideoID("b"))
	gt.Equal(t, hits[0].Combined, 0.5)
	gt.Equal(t, hits[1].Combined, 0.9)
}

func TestApplyStableOnTies(t *testing.T) {
	mk := func(id string) *model.SearchHit {
		return &model.SearchHit{
			Fragment:   model.Fragment{Video: model.VideoMeta{ID: model.VideoID(id)}, TagSet: []string{"x"}},
			Similarity: 0.7,
		}
	}
	hits := []*model.SearchHit{mk("first"), mk("second"), mk("third")}
	rerank.Apply(hits, []string{"x"}, 0.8, 0.2, true)

	gt.Equal(t, hits[0].Fragment.Video.ID, model.VideoID("first"))
	gt.Equal(t, hits[1].Fragment.Video.ID, model.VideoID("second"))
	gt.Equal(t, hits[2].Fragment.Video.ID, model.VideoID("third"))
}

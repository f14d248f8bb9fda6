package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/burrow/pkg/repository"
	"github.com/m-mizutani/gt"
)

func putFragment(t *testing.T, repo *repository.Memory, videoID model.VideoID, channelID model.ChannelID, idx int, vec []float32) {
	t.Helper()
	f := &model.Fragment{
		Video: model.VideoMeta{ID: videoID, ChannelID: channelID},
		Index: idx,
		Text:  "fragment text",
	}
	gt.NoError(t, repo.PutFragments(context.Background(), []*model.Fragment{f}, [][]float32{vec}))
}

func TestMemorySearchOrdering(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()

	putFragment(t, repo, "near", "UCaaaaaaaaaaaaaaaaaaaaaa", 0, []float32{1, 0})
	putFragment(t, repo, "far", "UCaaaaaaaaaaaaaaaaaaaaaa", 0, []float32{0, 1})
	putFragment(t, repo, "mid", "UCaaaaaaaaaaaaaaaaaaaaaa", 0, []float32{1, 1})

	hits, err := repo.Search(ctx, []float32{1, 0}, 3, nil)
	gt.NoError(t, err)
	gt.A(t, hits).Length(3)
	gt.Equal(t, hits[0].Fragment.Video.ID, model.VideoID("near"))
	gt.Equal(t, hits[1].Fragment.Video.ID, model.VideoID("mid"))
	gt.Equal(t, hits[2].Fragment.Video.ID, model.VideoID("far"))
}

func TestMemorySearchFilters(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()

	putFragment(t, repo, "vid1", "UCaaaaaaaaaaaaaaaaaaaaaa", 0, []float32{1, 0})
	putFragment(t, repo, "vid2", "UCaaaaaaaaaaaaaaaaaaaaaa", 0, []float32{1, 0})
	putFragment(t, repo, "vid3", "UCbbbbbbbbbbbbbbbbbbbbbb", 0, []float32{1, 0})

	tests := []struct {
		name     string
		filter   *repository.Filter
		expected int
	}{
		{"no filter", nil, 3},
		{"video id", &repository.Filter{VideoID: "vid1"}, 1},
		{"channel id", &repository.Filter{ChannelID: "UCaaaaaaaaaaaaaaaaaaaaaa"}, 2},
		{"allowlist", &repository.Filter{VideoIDs: []model.VideoID{"vid1", "vid3"}}, 2},
		{"allowlist no match", &repository.Filter{VideoIDs: []model.VideoID{"other"}}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			hits, err := repo.Search(ctx, []float32{1, 0}, 10, tc.filter)
			gt.NoError(t, err)
			gt.A(t, hits).Length(tc.expected)
		})
	}
}

func TestMemoryPutFragmentsOverwrites(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()

	putFragment(t, repo, "vid1", "UCaaaaaaaaaaaaaaaaaaaaaa", 0, []float32{1, 0})
	putFragment(t, repo, "vid1", "UCaaaaaaaaaaaaaaaaaaaaaa", 1, []float32{1, 0})

	// Same identities again must overwrite, not append
	putFragment(t, repo, "vid1", "UCaaaaaaaaaaaaaaaaaaaaaa", 0, []float32{0, 1})
	putFragment(t, repo, "vid1", "UCaaaaaaaaaaaaaaaaaaaaaa", 1, []float32{0, 1})

	count, err := repo.CountFragments(ctx, "vid1")
	gt.NoError(t, err)
	gt.Equal(t, count, 2)
}

func TestMemoryHistory(t *testing.T) {
	repo := repository.NewMemory()
	ctx := context.Background()

	older := &model.History{
		ID:        model.NewHistoryID(),
		VideoID:   "vid1",
		Question:  "first question",
		Scope:     model.ScopeAny,
		CreatedAt: time.Now().Add(-time.Hour),
	}
	newer := &model.History{
		ID:        model.NewHistoryID(),
		VideoID:   "vid1",
		Question:  "second question",
		Scope:     model.ScopeOneVideo,
		CreatedAt: time.Now(),
	}
	gt.NoError(t, repo.PutHistory(ctx, older))
	gt.NoError(t, repo.PutHistory(ctx, newer))

	histories, err := repo.ListHistory(ctx, 10)
	gt.NoError(t, err)
	gt.A(t, histories).Length(2)
	gt.Equal(t, histories[0].ID, newer.ID)

	got, err := repo.GetHistory(ctx, older.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.Question, "first question")

	_, err = repo.GetHistory(ctx, model.HistoryID("missing"))
	gt.Error(t, err)
}

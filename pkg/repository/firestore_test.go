package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/burrow/pkg/repository"
	"github.com/m-mizutani/gt"
)

func setupFirestore(t *testing.T) *repository.Firestore {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	if projectID == "" || databaseID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID and TEST_FIRESTORE_DATABASE_ID must be set to run Firestore tests")
	}

	repo, err := repository.New(context.Background(), projectID, databaseID)
	gt.NoError(t, err)

	return repo
}

func makeFragments(videoID model.VideoID, n int) ([]*model.Fragment, [][]float32) {
	meta := model.VideoMeta{
		ID:        videoID,
		Title:     "test video " + string(videoID),
		Channel:   "test channel",
		ChannelID: "UCabcdefghijklmnopqrstuv",
		Tags:      []string{"golang", "testing"},
	}

	fragments := make([]*model.Fragment, 0, n)
	vectors := make([][]float32, 0, n)
	for i := 0; i < n; i++ {
		fragments = append(fragments, &model.Fragment{
			Video:  meta,
			Index:  i,
			Text:   fmt.Sprintf("fragment %d of %s", i, videoID),
			TagSet: meta.Tags,
		})
		vec := make([]float32, 8)
		vec[i%8] = 1
		vectors = append(vectors, vec)
	}
	return fragments, vectors
}

func TestFirestorePutFragmentsIdempotent(t *testing.T) {
	repo := setupFirestore(t)
	ctx := context.Background()

	videoID := model.VideoID(fmt.Sprintf("it-%d", time.Now().UnixNano()))
	fragments, vectors := makeFragments(videoID, 3)

	gt.NoError(t, repo.PutFragments(ctx, fragments, vectors))

	count, err := repo.CountFragments(ctx, videoID)
	gt.NoError(t, err)
	gt.Equal(t, count, 3)

	// Re-index with the same deterministic identities
	gt.NoError(t, repo.PutFragments(ctx, fragments, vectors))

	count, err = repo.CountFragments(ctx, videoID)
	gt.NoError(t, err)
	gt.Equal(t, count, 3)
}

func TestFirestoreSearchWithFilter(t *testing.T) {
	repo := setupFirestore(t)
	ctx := context.Background()

	videoA := model.VideoID(fmt.Sprintf("fa-%d", time.Now().UnixNano()))
	videoB := model.VideoID(fmt.Sprintf("fb-%d", time.Now().UnixNano()))

	fragsA, vecsA := makeFragments(videoA, 2)
	fragsB, vecsB := makeFragments(videoB, 2)
	gt.NoError(t, repo.PutFragments(ctx, fragsA, vecsA))
	gt.NoError(t, repo.PutFragments(ctx, fragsB, vecsB))

	// Wait a bit for Firestore to index
	time.Sleep(2 * time.Second)

	query := make([]float32, 8)
	query[0] = 1

	t.Run("single video filter", func(t *testing.T) {
		hits, err := repo.Search(ctx, query, 10, &repository.Filter{VideoID: videoA})
		gt.NoError(t, err)
		for _, h := range hits {
			gt.Equal(t, h.Fragment.Video.ID, videoA)
		}
	})

	t.Run("allowlist filter", func(t *testing.T) {
		hits, err := repo.Search(ctx, query, 10, &repository.Filter{
			VideoIDs: []model.VideoID{videoA, videoB},
		})
		gt.NoError(t, err)
		for _, h := range hits {
			gt.True(t, h.Fragment.Video.ID == videoA || h.Fragment.Video.ID == videoB)
		}
	})

	t.Run("similarity descending", func(t *testing.T) {
		hits, err := repo.Search(ctx, query, 10, nil)
		gt.NoError(t, err)
		for i := 0; i < len(hits)-1; i++ {
			gt.Number(t, hits[i].Similarity).GreaterOrEqual(hits[i+1].Similarity)
		}
	})
}

func TestFirestoreHistory(t *testing.T) {
	repo := setupFirestore(t)
	ctx := context.Background()

	history := &model.History{
		ID:        model.NewHistoryID(),
		VideoID:   "test-video",
		Question:  "what is discussed?",
		Scope:     model.ScopeOneVideo,
		Rationale: "anchored by this video",
		Answer:    "the video discusses testing",
		CreatedAt: time.Now(),
	}

	gt.NoError(t, repo.PutHistory(ctx, history))

	retrieved, err := repo.GetHistory(ctx, history.ID)
	gt.NoError(t, err)
	gt.V(t, retrieved).NotNil()
	gt.Equal(t, retrieved.Question, history.Question)
	gt.Equal(t, retrieved.Scope, history.Scope)

	entries, err := repo.ListHistory(ctx, 10)
	gt.NoError(t, err)
	gt.A(t, entries).Longer(0)
}

func TestFirestoreGetHistoryNotFound(t *testing.T) {
	repo := setupFirestore(t)
	ctx := context.Background()

	_, err := repo.GetHistory(ctx, model.HistoryID("non-existent-history"))
	gt.Error(t, err)
}

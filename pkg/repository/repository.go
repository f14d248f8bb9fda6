package repository

import (
	"context"

	"github.com/m-mizutani/burrow/pkg/model"
)

// Filter is a rendered scope boundary applied to fragment search. A nil
// *Filter means no restriction. At most one field is set by the scope policy.
type Filter struct {
	// VideoID restricts hits to fragments of exactly one video
	VideoID model.VideoID
	// ChannelID restricts hits to fragments of videos from one channel
	ChannelID model.ChannelID
	// VideoIDs restricts hits to an explicit allowlist of videos
	VideoIDs []model.VideoID
}

// Repository defines the interface for fragment and history persistence
type Repository interface {
	// PutFragments upserts fragments with their embedding vectors in one
	// batch. Fragment identities are deterministic, so re-indexing an
	// unchanged video overwrites prior entries instead of appending.
	PutFragments(ctx context.Context, fragments []*model.Fragment, vectors [][]float32) error

	// CountFragments returns the number of stored fragments for a video
	CountFragments(ctx context.Context, videoID model.VideoID) (int, error)

	// Search performs vector similarity search over stored fragments,
	// optionally restricted by a scope filter. Hits are ordered by
	// descending similarity.
	Search(ctx context.Context, vector []float32, topK int, filter *Filter) ([]*model.SearchHit, error)

	// PutHistory saves an answered question
	PutHistory(ctx context.Context, history *model.History) error

	// GetHistory retrieves an answered question by ID
	GetHistory(ctx context.Context, id model.HistoryID) (*model.History, error)

	// ListHistory retrieves answered questions, newest first
	ListHistory(ctx context.Context, limit int) ([]*model.History, error)
}

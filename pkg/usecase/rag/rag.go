// Package rag implements the scope-constrained retrieval-augmentation core:
// indexing video transcripts, scoped corpus expansion, filtered retrieval
// with hybrid reranking, and the answering session on top of them.
package rag

import (
	"github.com/m-mizutani/burrow/pkg/adapter"
	"github.com/m-mizutani/burrow/pkg/repository"
	"github.com/m-mizutani/burrow/pkg/service/chunk"
	"github.com/m-mizutani/burrow/pkg/service/discovery"
)

// UseCase provides the retrieval-augmentation operations
type UseCase struct {
	repo       repository.Repository
	yt         adapter.YouTube
	transcript adapter.Transcript
	gemini     adapter.Gemini
	engine     *discovery.Engine
	archive    adapter.Archive

	chunkMaxChars int
	chunkOverlap  int
	perTag        int64
	channelMax    int64
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithArchive enables the transcript archive
func WithArchive(archive adapter.Archive) Option {
	return func(uc *UseCase) {
		uc.archive = archive
	}
}

// WithChunking overrides the chunk window size and overlap
func WithChunking(maxChars, overlap int) Option {
	return func(uc *UseCase) {
		uc.chunkMaxChars = maxChars
		uc.chunkOverlap = overlap
	}
}

// WithExpansionLimits overrides per-tag and same-channel result limits
func WithExpansionLimits(perTag, channelMax int64) Option {
	return func(uc *UseCase) {
		uc.perTag = perTag
		uc.channelMax = channelMax
	}
}

// New creates a new retrieval UseCase instance
func New(
	repo repository.Repository,
	yt adapter.YouTube,
	transcript adapter.Transcript,
	gemini adapter.Gemini,
	engine *discovery.Engine,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		repo:       repo,
		yt:         yt,
		transcript: transcript,
		gemini:     gemini,
		engine:     engine,

		chunkMaxChars: chunk.DefaultMaxChars,
		chunkOverlap:  chunk.DefaultOverlap,
		perTag:        discovery.DefaultPerTag,
		channelMax:    discovery.DefaultChannelMax,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

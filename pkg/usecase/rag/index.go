package rag

import (
	"context"
	"errors"

	"github.com/m-mizutani/burrow/pkg/adapter"
	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/burrow/pkg/service/chunk"
	"github.com/m-mizutani/burrow/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Index runs the indexing pipeline for one video: fetch metadata, fetch the
// transcript, chunk it, embed all chunks in one batch and upsert the
// fragments. A missing transcript is not an error; the metadata is returned
// with zero fragments indexed. Fragment identities are deterministic, so
// indexing the same video again overwrites rather than duplicates.
func (uc *UseCase) Index(ctx context.Context, videoID model.VideoID) (*model.VideoMeta, error) {
	logger := logging.From(ctx)

	meta, err := uc.yt.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}

	text, err := uc.fetchTranscript(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if text == "" {
		logger.Info("no transcript, skipping fragment indexing", "video_id", videoID)
		return meta, nil
	}

	chunks := chunk.Split(text,
		chunk.WithMaxChars(uc.chunkMaxChars),
		chunk.WithOverlap(uc.chunkOverlap),
	)
	if len(chunks) == 0 {
		return meta, nil
	}

	fragments := make([]*model.Fragment, 0, len(chunks))
	texts := make([]string, 0, len(chunks))
	for i, c := range chunks {
		fragments = append(fragments, &model.Fragment{
			Video:  *meta,
			Index:  i,
			Text:   c,
			TagSet: meta.Tags,
		})
		texts = append(texts, c)
	}

	vectors, err := uc.gemini.Embedding(ctx, texts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed fragments", goerr.V("video_id", videoID))
	}

	if err := uc.repo.PutFragments(ctx, fragments, vectors); err != nil {
		return nil, goerr.Wrap(err, "failed to store fragments", goerr.V("video_id", videoID))
	}

	logger.Info("video indexed", "video_id", videoID, "fragments", len(fragments))
	return meta, nil
}

// fetchTranscript consults the archive first when one is configured, and
// stores freshly fetched transcripts back into it. Archive failures degrade
// to a direct fetch.
func (uc *UseCase) fetchTranscript(ctx context.Context, videoID model.VideoID) (string, error) {
	logger := logging.From(ctx)

	if uc.archive != nil {
		text, err := uc.archive.GetTranscript(ctx, videoID)
		if err == nil {
			logger.Debug("transcript served from archive", "video_id", videoID)
			return text, nil
		}
		if !errors.Is(err, adapter.ErrArchiveMiss) {
			logger.Warn("transcript archive read failed, fetching directly", "video_id", videoID, "error", err)
		}
	}

	text, err := uc.transcript.Fetch(ctx, videoID)
	if err != nil {
		return "", goerr.Wrap(err, "failed to fetch transcript", goerr.V("video_id", videoID))
	}

	if uc.archive != nil && text != "" {
		if err := uc.archive.PutTranscript(ctx, videoID, text); err != nil {
			logger.Warn("failed to archive transcript", "video_id", videoID, "error", err)
		}
	}
	return text, nil
}

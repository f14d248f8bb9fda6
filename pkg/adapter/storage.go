package adapter

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// ErrArchiveMiss indicates the archive has no transcript for the video
var ErrArchiveMiss = goerr.New("transcript not archived")

// Archive stores raw transcripts so re-indexing does not hit the
// rate-limited caption endpoint again
type Archive interface {
	// PutTranscript archives the raw transcript of a video
	PutTranscript(ctx context.Context, videoID model.VideoID, text string) error

	// GetTranscript loads an archived transcript. Returns ErrArchiveMiss
	// when the video has not been archived.
	GetTranscript(ctx context.Context, videoID model.VideoID) (string, error)
}

// gcsArchive implements Archive using Cloud Storage
type gcsArchive struct {
	bucketName string
	client     *storage.Client
}

// NewArchive creates a Cloud Storage backed transcript archive
func NewArchive(ctx context.Context, bucketName string) (Archive, error) {
	if bucketName == "" {
		return nil, goerr.New("bucket name is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &gcsArchive{
		bucketName: bucketName,
		client:     client,
	}, nil
}

func (s *gcsArchive) objectName(videoID model.VideoID) string {
	return "transcripts/" + string(videoID) + ".txt"
}

func (s *gcsArchive) PutTranscript(ctx context.Context, videoID model.VideoID, text string) error {
	obj := s.client.Bucket(s.bucketName).Object(s.objectName(videoID))
	w := obj.NewWriter(ctx)
	if _, err := io.WriteString(w, text); err != nil {
		w.Close()
		return goerr.Wrap(err, "failed to write transcript", goerr.V("video_id", videoID))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize transcript object", goerr.V("video_id", videoID))
	}
	return nil
}

func (s *gcsArchive) GetTranscript(ctx context.Context, videoID model.VideoID) (string, error) {
	obj := s.client.Bucket(s.bucketName).Object(s.objectName(videoID))
	r, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return "", goerr.Wrap(ErrArchiveMiss, "no archived transcript", goerr.V("video_id", videoID))
		}
		return "", goerr.Wrap(err, "failed to open transcript object", goerr.V("video_id", videoID))
	}
	defer r.Close()

	body, err := io.ReadAll(r)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read transcript object", goerr.V("video_id", videoID))
	}
	return string(body), nil
}

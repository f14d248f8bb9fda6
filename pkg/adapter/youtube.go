package adapter

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// playlistPageLimit is the maximum page size the playlistItems API accepts
const playlistPageLimit = 50

// YouTube is the interface for video metadata and candidate discovery
type YouTube interface {
	// GetVideo fetches metadata of a single video. Returns
	// model.ErrVideoNotFound when the ID does not resolve.
	GetVideo(ctx context.Context, id model.VideoID) (*model.VideoMeta, error)

	// SearchByTag searches videos by a tag keyword. Returns
	// model.ErrQuotaExceeded when the daily search quota is exhausted.
	SearchByTag(ctx context.Context, tag string, max int64) ([]model.VideoID, error)

	// ListChannelUploads enumerates recent uploads of a channel via its
	// uploads playlist (cheap in quota units)
	ListChannelUploads(ctx context.Context, channelID model.ChannelID, max int64) ([]model.VideoID, error)
}

type youtubeClient struct {
	svc *youtube.Service
}

// NewYouTube creates a YouTube Data API client using an API key
func NewYouTube(ctx context.Context, apiKey string) (YouTube, error) {
	if apiKey == "" {
		return nil, goerr.New("youtube API key is required")
	}

	svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create youtube service")
	}
	return &youtubeClient{svc: svc}, nil
}

func (c *youtubeClient) GetVideo(ctx context.Context, id model.VideoID) (*model.VideoMeta, error) {
	resp, err := c.svc.Videos.List([]string{"snippet"}).Id(string(id)).Context(ctx).Do()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get video metadata", goerr.V("video_id", id))
	}
	if len(resp.Items) == 0 {
		return nil, goerr.Wrap(model.ErrVideoNotFound, "no video for ID", goerr.V("video_id", id))
	}

	snippet := resp.Items[0].Snippet
	return &model.VideoMeta{
		ID:        id,
		Title:     snippet.Title,
		Channel:   snippet.ChannelTitle,
		ChannelID: model.ChannelID(snippet.ChannelId),
		Tags:      model.NormalizeTags(snippet.Tags),
		URL:       id.WatchURL(),
	}, nil
}

func (c *youtubeClient) SearchByTag(ctx context.Context, tag string, max int64) ([]model.VideoID, error) {
	resp, err := c.svc.Search.List([]string{"snippet"}).
		Q(tag).
		Type("video").
		Order("relevance").
		MaxResults(max).
		Context(ctx).Do()
	if err != nil {
		if isQuotaError(err) {
			return nil, goerr.Wrap(model.ErrQuotaExceeded, "search quota exhausted", goerr.V("tag", tag))
		}
		return nil, goerr.Wrap(err, "failed to search videos", goerr.V("tag", tag))
	}

	ids := make([]model.VideoID, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, model.VideoID(item.Id.VideoId))
		}
	}
	return ids, nil
}

func (c *youtubeClient) ListChannelUploads(ctx context.Context, channelID model.ChannelID, max int64) ([]model.VideoID, error) {
	uploadsID, err := c.uploadsPlaylistID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if uploadsID == "" {
		return nil, nil
	}

	if max > playlistPageLimit {
		max = playlistPageLimit
	}
	resp, err := c.svc.PlaylistItems.List([]string{"contentDetails"}).
		PlaylistId(uploadsID).
		MaxResults(max).
		Context(ctx).Do()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list playlist items", goerr.V("playlist_id", uploadsID))
	}

	ids := make([]model.VideoID, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ContentDetails != nil && item.ContentDetails.VideoId != "" {
			ids = append(ids, model.VideoID(item.ContentDetails.VideoId))
		}
	}
	return ids, nil
}

// uploadsPlaylistID resolves the playlist that contains all uploads of the
// channel
func (c *youtubeClient) uploadsPlaylistID(ctx context.Context, channelID model.ChannelID) (string, error) {
	resp, err := c.svc.Channels.List([]string{"contentDetails"}).Id(string(channelID)).Context(ctx).Do()
	if err != nil {
		return "", goerr.Wrap(err, "failed to get channel", goerr.V("channel_id", channelID))
	}
	if len(resp.Items) == 0 || resp.Items[0].ContentDetails == nil {
		return "", nil
	}
	return resp.Items[0].ContentDetails.RelatedPlaylists.Uploads, nil
}

func isQuotaError(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code != 403 {
		return false
	}
	for _, e := range apiErr.Errors {
		if strings.Contains(strings.ToLower(e.Reason), "quota") {
			return true
		}
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "quota")
}

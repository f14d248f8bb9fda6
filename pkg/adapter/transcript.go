package adapter

import (
	"context"
	"encoding/xml"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/burrow/pkg/service/ratelimit"
	"github.com/m-mizutani/burrow/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

const timedTextBaseURL = "https://video.google.com/timedtext"

// defaultLanguages are tried in order until one yields a caption track
var defaultLanguages = []string{"en", "en-US", "en-GB"}

// Transcript is the interface for caption text retrieval. An empty string
// means the video has no transcript, which is not an error.
type Transcript interface {
	Fetch(ctx context.Context, videoID model.VideoID) (string, error)
}

type transcriptClient struct {
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	languages  []string
}

type TranscriptOption func(*transcriptClient)

// WithTranscriptHTTPClient replaces the HTTP client
func WithTranscriptHTTPClient(c *http.Client) TranscriptOption {
	return func(t *transcriptClient) {
		t.httpClient = c
	}
}

// WithTranscriptLanguages sets the caption languages tried in order
func WithTranscriptLanguages(langs ...string) TranscriptOption {
	return func(t *transcriptClient) {
		t.languages = langs
	}
}

// WithTranscriptLimiter replaces the admission limiter for caption requests
func WithTranscriptLimiter(l *ratelimit.Limiter) TranscriptOption {
	return func(t *transcriptClient) {
		t.limiter = l
	}
}

// NewTranscript creates a caption client for the public timedtext endpoint.
// Requests are admission-controlled by a sliding-window limiter because the
// endpoint throttles aggressive callers.
func NewTranscript(opts ...TranscriptOption) Transcript {
	t := &transcriptClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter:   ratelimit.New(),
		languages: defaultLanguages,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type timedText struct {
	Texts []struct {
		Value string `xml:",chardata"`
	} `xml:"text"`
}

func (t *transcriptClient) Fetch(ctx context.Context, videoID model.VideoID) (string, error) {
	logger := logging.From(ctx)

	for _, lang := range t.languages {
		if err := t.limiter.Wait(ctx); err != nil {
			return "", goerr.Wrap(err, "canceled while waiting for transcript rate limit")
		}

		text, err := t.fetchLang(ctx, videoID, lang)
		if err != nil {
			return "", err
		}
		if text != "" {
			logger.Debug("transcript fetched", "video_id", videoID, "lang", lang, "chars", len(text))
			return text, nil
		}
	}

	logger.Debug("no transcript available", "video_id", videoID)
	return "", nil
}

func (t *transcriptClient) fetchLang(ctx context.Context, videoID model.VideoID, lang string) (string, error) {
	q := url.Values{}
	q.Set("v", string(videoID))
	q.Set("lang", lang)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, timedTextBaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create transcript request")
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to fetch transcript", goerr.V("video_id", videoID))
	}
	defer resp.Body.Close()

	// The endpoint answers 404 for unknown videos and an empty 200 body
	// for videos without captions in the requested language
	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", goerr.New("transcript endpoint returned error",
			goerr.V("status", resp.StatusCode), goerr.V("body", string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read transcript body")
	}
	if len(body) == 0 {
		return "", nil
	}

	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", goerr.Wrap(err, "failed to parse transcript XML", goerr.V("video_id", videoID))
	}

	parts := make([]string, 0, len(tt.Texts))
	for _, seg := range tt.Texts {
		s := strings.TrimSpace(html.UnescapeString(seg.Value))
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " "), nil
}

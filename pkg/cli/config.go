package cli

import (
	"context"

	"github.com/m-mizutani/burrow/pkg/adapter"
	"github.com/m-mizutani/burrow/pkg/repository"
	"github.com/m-mizutani/burrow/pkg/service/discovery"
	"github.com/m-mizutani/burrow/pkg/service/ratelimit"
	"github.com/m-mizutani/burrow/pkg/usecase/rag"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// config holds configuration values
type config struct {
	// Repository
	project  string
	database string

	// Adapters
	youtubeAPIKey  string
	geminiProject  string
	geminiLocation string

	// Optional pieces
	cachePath     string
	archiveBucket string
	profilePath   string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "youtube-api-key",
			Usage:       "YouTube Data API key",
			Sources:     cli.EnvVars("BURROW_YOUTUBE_API_KEY"),
			Destination: &cfg.youtubeAPIKey,
		},
		&cli.StringFlag{
			Name:        "cache-path",
			Usage:       "Path of the tag discovery cache (default: ~/.burrow/tag_cache.db)",
			Sources:     cli.EnvVars("BURROW_CACHE_PATH"),
			Destination: &cfg.cachePath,
		},
		&cli.StringFlag{
			Name:        "archive-bucket",
			Usage:       "GCS bucket for the transcript archive (archive disabled when empty)",
			Sources:     cli.EnvVars("BURROW_ARCHIVE_BUCKET"),
			Destination: &cfg.archiveBucket,
		},
		&cli.StringFlag{
			Name:        "profile",
			Usage:       "Path to a YAML retrieval profile",
			Sources:     cli.EnvVars("BURROW_PROFILE"),
			Destination: &cfg.profilePath,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("BURROW_GEMINI_PROJECT", "GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("BURROW_GEMINI_LOCATION", "GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
	}
}

// newRepository creates a new repository instance
func (cfg *config) newRepository(ctx context.Context) (repository.Repository, error) {
	if cfg.project == "" {
		return nil, goerr.New("project is required")
	}
	if cfg.database == "" {
		return nil, goerr.New("database is required")
	}

	repo, err := repository.New(ctx, cfg.project, cfg.database)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create repository")
	}
	return repo, nil
}

// newGemini creates a new Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}
	return adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation)
}

// newYouTube creates a new YouTube adapter instance
func (cfg *config) newYouTube(ctx context.Context) (adapter.YouTube, error) {
	if cfg.youtubeAPIKey == "" {
		return nil, goerr.New("youtube-api-key is required")
	}
	return adapter.NewYouTube(ctx, cfg.youtubeAPIKey)
}

// newUseCase assembles the retrieval usecase from the configuration and an
// optional profile. Returns the usecase and the prepare options derived from
// the profile.
func (cfg *config) newUseCase(ctx context.Context) (*rag.UseCase, rag.PrepareOptions, error) {
	profile, err := loadProfile(cfg.profilePath)
	if err != nil {
		return nil, rag.PrepareOptions{}, err
	}

	repo, err := cfg.newRepository(ctx)
	if err != nil {
		return nil, rag.PrepareOptions{}, err
	}

	yt, err := cfg.newYouTube(ctx)
	if err != nil {
		return nil, rag.PrepareOptions{}, err
	}

	gemini, err := cfg.newGemini(ctx)
	if err != nil {
		return nil, rag.PrepareOptions{}, err
	}

	limiter := ratelimit.New(
		ratelimit.WithMaxRequests(profile.RateLimit.MaxRequests),
		ratelimit.WithWindow(profile.Window()),
	)
	transcript := adapter.NewTranscript(adapter.WithTranscriptLimiter(limiter))

	cache := repository.NewDiscoveryCache(ctx, cfg.cachePath)
	engine := discovery.New(yt, cache,
		discovery.WithMaxSearchCalls(profile.Expansion.MaxSearchCalls))

	opts := []rag.Option{
		rag.WithChunking(profile.Chunk.MaxChars, profile.Chunk.Overlap),
		rag.WithExpansionLimits(profile.Expansion.PerTag, profile.Expansion.ChannelMax),
	}
	if cfg.archiveBucket != "" {
		archive, err := adapter.NewArchive(ctx, cfg.archiveBucket)
		if err != nil {
			return nil, rag.PrepareOptions{}, goerr.Wrap(err, "failed to create transcript archive")
		}
		opts = append(opts, rag.WithArchive(archive))
	}

	uc := rag.New(repo, yt, transcript, gemini, engine, opts...)
	return uc, profile.prepareOptions(), nil
}

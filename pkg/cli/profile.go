package cli

import (
	"os"
	"time"

	"github.com/m-mizutani/burrow/pkg/service/chunk"
	"github.com/m-mizutani/burrow/pkg/service/discovery"
	"github.com/m-mizutani/burrow/pkg/service/ratelimit"
	"github.com/m-mizutani/burrow/pkg/usecase/rag"
	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

// retrievalProfile is the optional YAML file describing the retrieval knobs.
// Absent fields keep their defaults.
type retrievalProfile struct {
	Chunk struct {
		MaxChars int `yaml:"max_chars"`
		Overlap  int `yaml:"overlap"`
	} `yaml:"chunk"`

	Expansion struct {
		PerTag         int64 `yaml:"per_tag"`
		ChannelMax     int64 `yaml:"channel_max"`
		MaxSearchCalls int   `yaml:"max_search_calls"`
	} `yaml:"expansion"`

	RateLimit struct {
		MaxRequests   int `yaml:"max_requests"`
		WindowSeconds int `yaml:"window_seconds"`
	} `yaml:"rate_limit"`

	Rerank struct {
		Enabled bool    `yaml:"enabled"`
		Alpha   float64 `yaml:"alpha"`
		Beta    float64 `yaml:"beta"`
	} `yaml:"rerank"`
}

func defaultProfile() *retrievalProfile {
	p := &retrievalProfile{}
	p.Chunk.MaxChars = chunk.DefaultMaxChars
	p.Chunk.Overlap = chunk.DefaultOverlap
	p.Expansion.PerTag = discovery.DefaultPerTag
	p.Expansion.ChannelMax = discovery.DefaultChannelMax
	p.Expansion.MaxSearchCalls = discovery.DefaultMaxSearchCalls
	p.RateLimit.MaxRequests = ratelimit.DefaultMaxRequests
	p.RateLimit.WindowSeconds = int(ratelimit.DefaultWindow / time.Second)
	p.Rerank.Enabled = true
	p.Rerank.Alpha = rag.DefaultRerankAlpha
	p.Rerank.Beta = rag.DefaultRerankBeta
	return p
}

// loadProfile reads the profile at path, overlaying it on the defaults. An
// empty path yields the defaults.
func loadProfile(path string) (*retrievalProfile, error) {
	p := defaultProfile()
	if path == "" {
		return p, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read retrieval profile", goerr.V("file", path))
	}

	if err := yaml.Unmarshal(content, p); err != nil {
		return nil, goerr.Wrap(err, "failed to parse retrieval profile", goerr.V("file", path))
	}

	if p.Chunk.MaxChars <= 0 {
		return nil, goerr.New("chunk.max_chars must be positive", goerr.V("file", path))
	}
	if p.Chunk.Overlap < 0 {
		return nil, goerr.New("chunk.overlap must not be negative", goerr.V("file", path))
	}

	return p, nil
}

func (p *retrievalProfile) Window() time.Duration {
	return time.Duration(p.RateLimit.WindowSeconds) * time.Second
}

func (p *retrievalProfile) prepareOptions() rag.PrepareOptions {
	return rag.PrepareOptions{
		TagRerank:   p.Rerank.Enabled,
		RerankAlpha: p.Rerank.Alpha,
		RerankBeta:  p.Rerank.Beta,
	}
}

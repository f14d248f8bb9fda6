package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	firestorepb "cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	fragmentCollection = "fragments"
	historyCollection  = "histories"

	// Firestore limits the "in" operator to 30 values per query
	maxInValues = 30

	distanceField = "vector_distance"
)

// Firestore implements Repository using Firestore with its built-in vector
// search (FindNearest over a Vector32 field)
type Firestore struct {
	client *firestore.Client
}

// New creates a new Firestore repository
func New(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}
	return &Firestore{client: client}, nil
}

// Close releases the underlying client
func (r *Firestore) Close() error {
	return r.client.Close()
}

type fragmentDoc struct {
	VideoID    string             `firestore:"video_id"`
	Title      string             `firestore:"title"`
	Channel    string             `firestore:"channel"`
	ChannelID  string             `firestore:"channel_id"`
	Tags       []string           `firestore:"tags"`
	URL        string             `firestore:"url"`
	ChunkIndex int                `firestore:"chunk_index"`
	Text       string             `firestore:"text"`
	TagSet     []string           `firestore:"tag_set"`
	Embedding  firestore.Vector32 `firestore:"embedding"`
	UpdatedAt  time.Time          `firestore:"updated_at"`
}

func (d *fragmentDoc) toFragment() model.Fragment {
	return model.Fragment{
		Video: model.VideoMeta{
			ID:        model.VideoID(d.VideoID),
			Title:     d.Title,
			Channel:   d.Channel,
			ChannelID: model.ChannelID(d.ChannelID),
			Tags:      d.Tags,
			URL:       d.URL,
		},
		Index:  d.ChunkIndex,
		Text:   d.Text,
		TagSet: d.TagSet,
	}
}

func (r *Firestore) PutFragments(ctx context.Context, fragments []*model.Fragment, vectors [][]float32) error {
	if len(fragments) != len(vectors) {
		return goerr.New("fragment and vector counts do not match",
			goerr.V("fragments", len(fragments)), goerr.V("vectors", len(vectors)))
	}
	if len(fragments) == 0 {
		return nil
	}

	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(fragments))
	for i, f := range fragments {
		doc := &fragmentDoc{
			VideoID:    string(f.Video.ID),
			Title:      f.Video.Title,
			Channel:    f.Video.Channel,
			ChannelID:  string(f.Video.ChannelID),
			Tags:       f.Video.Tags,
			URL:        f.Video.URL,
			ChunkIndex: f.Index,
			Text:       f.Text,
			TagSet:     f.TagSet,
			Embedding:  firestore.Vector32(vectors[i]),
			UpdatedAt:  time.Now(),
		}

		// Document ID is the deterministic fragment identity, so Set
		// overwrites prior entries of the same video
		job, err := bw.Set(r.client.Collection(fragmentCollection).Doc(f.ID()), doc)
		if err != nil {
			return goerr.Wrap(err, "failed to enqueue fragment write", goerr.V("fragment_id", f.ID()))
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return goerr.Wrap(err, "failed to write fragment")
		}
	}
	return nil
}

func (r *Firestore) CountFragments(ctx context.Context, videoID model.VideoID) (int, error) {
	q := r.client.Collection(fragmentCollection).Where("video_id", "==", string(videoID))
	result, err := q.NewAggregationQuery().WithCount("count").Get(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count fragments", goerr.V("video_id", videoID))
	}

	value, ok := result["count"].(*firestorepb.Value)
	if !ok {
		return 0, goerr.New("unexpected aggregation result type")
	}
	return int(value.GetIntegerValue()), nil
}

func (r *Firestore) Search(ctx context.Context, vector []float32, topK int, filter *Filter) ([]*model.SearchHit, error) {
	queries := r.buildQueries(filter)

	var hits []*model.SearchHit
	for _, q := range queries {
		vq := q.FindNearest("embedding", firestore.Vector32(vector), topK,
			firestore.DistanceMeasureCosine, &firestore.FindNearestOptions{
				DistanceResultField: distanceField,
			})

		docs, err := vq.Documents(ctx).GetAll()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to run vector search")
		}

		for _, doc := range docs {
			var d fragmentDoc
			if err := doc.DataTo(&d); err != nil {
				return nil, goerr.Wrap(err, "failed to decode fragment", goerr.V("doc", doc.Ref.ID))
			}

			distance, _ := doc.Data()[distanceField].(float64)
			hits = append(hits, &model.SearchHit{
				Fragment:   d.toFragment(),
				Similarity: 1.0 - distance,
			})
		}
	}

	// Allowlists larger than the "in" limit run as multiple queries, so
	// re-sort and cut the merged result
	sortHitsBySimilarity(hits)
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// buildQueries renders the filter into one or more Firestore queries. An
// allowlist longer than the "in" operator limit is split into batches.
func (r *Firestore) buildQueries(filter *Filter) []firestore.Query {
	base := r.client.Collection(fragmentCollection).Query
	if filter == nil {
		return []firestore.Query{base}
	}

	switch {
	case filter.VideoID != "":
		return []firestore.Query{base.Where("video_id", "==", string(filter.VideoID))}

	case filter.ChannelID != "":
		return []firestore.Query{base.Where("channel_id", "==", string(filter.ChannelID))}

	case len(filter.VideoIDs) > 0:
		var queries []firestore.Query
		for start := 0; start < len(filter.VideoIDs); start += maxInValues {
			end := min(start+maxInValues, len(filter.VideoIDs))
			batch := make([]string, 0, end-start)
			for _, id := range filter.VideoIDs[start:end] {
				batch = append(batch, string(id))
			}
			queries = append(queries, base.Where("video_id", "in", batch))
		}
		return queries

	default:
		return []firestore.Query{base}
	}
}

func sortHitsBySimilarity(hits []*model.SearchHit) {
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
}

type historyDoc struct {
	ID        string    `firestore:"id"`
	VideoID   string    `firestore:"video_id"`
	Question  string    `firestore:"question"`
	Scope     string    `firestore:"scope"`
	Rationale string    `firestore:"rationale"`
	Answer    string    `firestore:"answer"`
	CreatedAt time.Time `firestore:"created_at"`
}

func (r *Firestore) PutHistory(ctx context.Context, history *model.History) error {
	doc := &historyDoc{
		ID:        string(history.ID),
		VideoID:   string(history.VideoID),
		Question:  history.Question,
		Scope:     string(history.Scope),
		Rationale: history.Rationale,
		Answer:    history.Answer,
		CreatedAt: history.CreatedAt,
	}

	if _, err := r.client.Collection(historyCollection).Doc(string(history.ID)).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to save history", goerr.V("history_id", history.ID))
	}
	return nil
}

func (r *Firestore) GetHistory(ctx context.Context, id model.HistoryID) (*model.History, error) {
	snap, err := r.client.Collection(historyCollection).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.New("history not found", goerr.V("history_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get history", goerr.V("history_id", id))
	}

	var d historyDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode history")
	}
	return d.toHistory(), nil
}

func (r *Firestore) ListHistory(ctx context.Context, limit int) ([]*model.History, error) {
	q := r.client.Collection(historyCollection).OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var histories []*model.History
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list histories")
		}

		var d historyDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode history")
		}
		histories = append(histories, d.toHistory())
	}
	return histories, nil
}

func (d *historyDoc) toHistory() *model.History {
	return &model.History{
		ID:        model.HistoryID(d.ID),
		VideoID:   model.VideoID(d.VideoID),
		Question:  d.Question,
		Scope:     model.Scope(d.Scope),
		Rationale: d.Rationale,
		Answer:    d.Answer,
		CreatedAt: d.CreatedAt,
	}
}

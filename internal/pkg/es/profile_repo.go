package es

import (
	"Novii/internal/model"
	"context"
	"errors"
	log "log/slog"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/core/search"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const MaxSearchDepth = 400

type ProfileRepo interface {
	IndexProfile(ctx context.Context, profile *model.Profile) error
	DeleteProfile(ctx context.Context, id uuid.UUID) error
	SearchProfileIDs(ctx context.Context, keyword string, from, size int) ([]uuid.UUID, error)
}

type ProfileRepoImpl struct {
	client *elasticsearch.TypedClient
	index  string
}

func NewProfileRepo(client *elasticsearch.TypedClient, index string) ProfileRepo {
	return &ProfileRepoImpl{client: client, index: index}
}

func (s *ProfileRepoImpl) IndexProfile(ctx context.Context, profile *model.Profile) error {
	_, err := s.client.Index(s.index).
		Id(profile.ID.String()).
		Document(NewProfileES(profile)).
		Do(ctx)
	return err
}

func (s *ProfileRepoImpl) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	_, err := s.client.Delete(s.index, id.String()).Do(ctx)
	if err != nil {
		var e *types.ElasticsearchError
		if errors.As(err, &e) {
			if e.Status == NotFoundCode {
				log.Warn("Profile already deleted or not found in ES", "id", id)
				return nil
			}
		}
		return err
	}
	return nil
}

// SearchProfileIDs 按用户名与昵称检索，返回按相关度排序的资料 ID
func (s *ProfileRepoImpl) SearchProfileIDs(ctx context.Context, keyword string, from, size int) ([]uuid.UUID, error) {
	if from >= MaxSearchDepth {
		return []uuid.UUID{}, nil
	}

	req := s.client.Search().
		Index(s.index).
		From(from).
		Size(size).
		Query(buildProfileQuery(keyword))

	return s.executeSearch(ctx, req)
}

func buildProfileQuery(keyword string) *types.Query {
	return &types.Query{
		Bool: &types.BoolQuery{
			Should: []types.Query{
				{
					Prefix: map[string]types.PrefixQuery{
						"username": {Value: keyword, Boost: ptrFloat32(3.0)},
					},
				},
				{
					MultiMatch: &types.MultiMatchQuery{
						Query:     keyword,
						Fields:    []string{"username^2", "full_name"},
						Fuzziness: "AUTO",
					},
				},
			},
			MinimumShouldMatch: 1,
		},
	}
}

func (s *ProfileRepoImpl) executeSearch(ctx context.Context, req *search.Search) ([]uuid.UUID, error) {
	resp, err := req.Do(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		if hit.Source_ == nil {
			continue
		}
		var doc ProfileES
		if err = json.Unmarshal(hit.Source_, &doc); err != nil {
			continue
		}
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func ptrFloat32(f float32) *float32 {
	return &f
}

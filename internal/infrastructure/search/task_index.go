// Package search keeps an Elasticsearch copy of tasks for description search.
// Every query is filtered by owner_id.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-task-manager/internal/domain/entity"
)

const defaultTimeout = 3 * time.Second

var taskMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"id":          map[string]any{"type": "keyword"},
			"owner_id":    map[string]any{"type": "keyword"},
			"description": map[string]any{"type": "text"},
			"completed":   map[string]any{"type": "boolean"},
			"created_at":  map[string]any{"type": "date"},
			"updated_at":  map[string]any{"type": "date"},
		},
	},
}

type TaskIndex struct {
	ES        *elasticsearch.Client
	IndexName string
	Timeout   time.Duration
}

func NewTaskIndex(es *elasticsearch.Client, index string) *TaskIndex {
	return &TaskIndex{ES: es, IndexName: index, Timeout: defaultTimeout}
}

type taskDoc struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func (x *TaskIndex) do(ctx context.Context, req esapi.Request) (*esapi.Response, context.CancelFunc, error) {
	c, cancel := context.WithTimeout(ctx, x.Timeout)
	res, err := req.Do(c, x.ES)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return res, cancel, nil
}

func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return fmt.Errorf("es %s: %s: %s", op, res.Status(), bytes.TrimSpace(body))
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (x *TaskIndex) EnsureIndex(ctx context.Context) error {
	res, cancel, err := x.do(ctx, esapi.IndicesExistsRequest{Index: []string{x.IndexName}})
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	cancel()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	b, _ := json.Marshal(taskMapping)
	res, cancel, err = x.do(ctx, esapi.IndicesCreateRequest{Index: x.IndexName, Body: bytes.NewReader(b)})
	if err != nil {
		return err
	}
	defer cancel()
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return responseError("create index", res)
	}
	return nil
}

// Index upserts t. The refresh waits so a search right after a write sees it.
func (x *TaskIndex) Index(ctx context.Context, t *entity.Task) error {
	doc := taskDoc{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   t.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	res, cancel, err := x.do(ctx, esapi.IndexRequest{
		Index:      x.IndexName,
		DocumentID: t.ID,
		Body:       bytes.NewReader(b),
		Refresh:    "wait_for",
	})
	if err != nil {
		return err
	}
	defer cancel()
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return responseError("index", res)
	}
	return nil
}

func (x *TaskIndex) Remove(ctx context.Context, id string) error {
	res, cancel, err := x.do(ctx, esapi.DeleteRequest{Index: x.IndexName, DocumentID: id})
	if err != nil {
		return err
	}
	defer cancel()
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete", res)
	}
	return nil
}

func ownerTerm(ownerID string) map[string]any {
	return map[string]any{"term": map[string]any{"owner_id": ownerID}}
}

// RemoveOwner drops every document of ownerID.
func (x *TaskIndex) RemoveOwner(ctx context.Context, ownerID string) error {
	b, _ := json.Marshal(map[string]any{"query": ownerTerm(ownerID)})
	res, cancel, err := x.do(ctx, esapi.DeleteByQueryRequest{
		Index: []string{x.IndexName},
		Body:  bytes.NewReader(b),
	})
	if err != nil {
		return err
	}
	defer cancel()
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete by query", res)
	}
	return nil
}

// Search returns the ids of ownerID's tasks matching query, best match first.
func (x *TaskIndex) Search(ctx context.Context, ownerID, query string, limit int) ([]string, error) {
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": []any{
					map[string]any{"match": map[string]any{
						"description": map[string]any{"query": query, "fuzziness": "AUTO"},
					}},
				},
				"filter": []any{ownerTerm(ownerID)},
			},
		},
		"size":    limit,
		"_source": false,
	}
	b, _ := json.Marshal(body)

	res, cancel, err := x.do(ctx, esapi.SearchRequest{
		Index: []string{x.IndexName},
		Body:  bytes.NewReader(b),
	})
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, responseError("search", res)
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// Package esx indexes recipes in Elasticsearch and searches them.
package esx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	es8 "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/samber/lo"

	"planeat-api/internal/config"
	"planeat-api/internal/logx"
)

type Client = es8.Client

var esLogger = logx.GetScope("esx")

// Open builds a client when ES_ADDRS is set. A nil client disables search.
func Open(cfg *config.Config) (*Client, func(), error) {
	if strings.TrimSpace(cfg.ES.Addrs) == "" {
		return nil, func() {}, nil
	}
	addrs := lo.FilterMap(strings.Split(cfg.ES.Addrs, ","), func(s string, _ int) (string, bool) {
		t := strings.TrimSpace(s)
		return t, t != ""
	})
	es, err := es8.NewClient(es8.Config{Addresses: addrs, Username: cfg.ES.Username, Password: cfg.ES.Password})
	if err != nil {
		return nil, func() {}, err
	}
	return es, func() {}, nil
}

// RecipeDoc is the indexed form of a recipe.
type RecipeDoc struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients"`
	OwnerID     string   `json:"owner_id"`
	CreatedAt   string   `json:"created_at"`
}

// Hit is one search result.
type Hit struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

type searchHit struct {
	Score  float64   `json:"_score"`
	Source RecipeDoc `json:"_source"`
}

// SearchResult is a page of hits and the total match count.
type SearchResult struct {
	Total int   `json:"total"`
	Hits  []Hit `json:"hits"`
}

const recipeMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "title":       {"type": "text", "analyzer": "spanish"},
      "description": {"type": "text", "analyzer": "spanish"},
      "ingredients": {"type": "text", "analyzer": "spanish"},
      "owner_id":    {"type": "keyword"},
      "created_at":  {"type": "date"}
    }
  }
}`

// EnsureIndex creates the recipe index with its mapping when missing.
func EnsureIndex(ctx context.Context, es *Client, index string) error {
	if es == nil {
		return nil
	}
	res, err := es.Indices.Exists([]string{index}, es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	res, err = es.Indices.Create(index, es.Indices.Create.WithContext(ctx), es.Indices.Create.WithBody(strings.NewReader(recipeMapping)))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmtError(res)
	}
	esLogger.Sugar().Infof("created index %s", index)
	return nil
}

func IndexRecipe(ctx context.Context, es *Client, index string, doc RecipeDoc) error {
	if es == nil {
		return nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	res, err := es.Index(index, bytes.NewReader(b), es.Index.WithDocumentID(doc.ID), es.Index.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmtError(res)
	}
	return nil
}

// DeleteRecipe removes a recipe document; a missing document is not an error.
func DeleteRecipe(ctx context.Context, es *Client, index, id string) error {
	if es == nil {
		return nil
	}
	res, err := es.Delete(index, id, es.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmtError(res)
	}
	return nil
}

func SearchRecipes(ctx context.Context, es *Client, index string, query string, from, size int) (SearchResult, error) {
	if es == nil {
		return SearchResult{Hits: []Hit{}}, nil
	}
	q := map[string]any{
		"query": map[string]any{"multi_match": map[string]any{
			"query":  query,
			"fields": []string{"title^3", "ingredients^2", "description"},
		}},
		"_source": []string{"id", "title"},
	}
	b, _ := json.Marshal(q)
	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(bytes.NewReader(b)),
		es.Search.WithFrom(from),
		es.Search.WithSize(size),
	)
	if err != nil {
		return SearchResult{}, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return SearchResult{}, fmtError(res)
	}
	var raw struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []searchHit `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return SearchResult{}, fmt.Errorf("es decode: %w", err)
	}
	return SearchResult{
		Total: raw.Hits.Total.Value,
		Hits: lo.Map(raw.Hits.Hits, func(h searchHit, _ int) Hit {
			return Hit{ID: h.Source.ID, Title: h.Source.Title, Score: h.Score}
		}),
	}, nil
}

// FormatTime renders t the way documents store it.
func FormatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func fmtError(res *esapi.Response) error { return fmt.Errorf("es error: %s", res.String()) }

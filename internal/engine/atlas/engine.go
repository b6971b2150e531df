// Package atlas is the MongoDB Atlas Search implementation of the
// SearchEngine interface. Compound queries from the query package are handed
// to $search as-is; default ordering recomputes the ranking formula inside
// the aggregation pipeline so it matches the in-memory engine exactly.
package atlas

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/kalasangam/search-service/internal/domain"
	"github.com/kalasangam/search-service/internal/query"
)

// DefaultIndexName is the default Atlas Search index on the documents
// collection.
const DefaultIndexName = "marketplace_search"

// DefaultCollectionName is the default collection holding searchable
// documents.
const DefaultCollectionName = "search_documents"

// Engine executes searches against an Atlas cluster.
type Engine struct {
	client    *mongo.Client
	coll      *mongo.Collection
	indexName string
	logger    *slog.Logger
}

// New connects to the cluster and verifies it is reachable. The search index
// is created if the cluster supports the command; on clusters where index
// management happens in the Atlas control plane the failure is logged and
// the engine assumes the index is provisioned out of band.
func New(ctx context.Context, uri, database, collection, indexName string, logger *slog.Logger) (*Engine, error) {
	if collection == "" {
		collection = DefaultCollectionName
	}
	if indexName == "" {
		indexName = DefaultIndexName
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("atlas: failed to create client: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("atlas: ping: %w", err)
	}

	e := &Engine{
		client:    client,
		coll:      client.Database(database).Collection(collection),
		indexName: indexName,
		logger:    logger,
	}

	if err := e.ensureSearchIndex(ctx); err != nil {
		logger.Warn("could not ensure search index, assuming it is managed externally",
			slog.String("index", indexName),
			slog.String("error", err.Error()),
		)
	}

	return e, nil
}

// Ping checks whether the cluster is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	if err := e.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("atlas ping: %w", err)
	}
	return nil
}

// Close disconnects the underlying client.
func (e *Engine) Close(ctx context.Context) error {
	return e.client.Disconnect(ctx)
}

// ensureSearchIndex creates the Atlas Search index from the schema
// definitions if it does not exist yet.
func (e *Engine) ensureSearchIndex(ctx context.Context) error {
	cursor, err := e.coll.SearchIndexes().List(ctx, options.SearchIndexes().SetName(e.indexName))
	if err != nil {
		return fmt.Errorf("list search indexes: %w", err)
	}
	var existing []bson.M
	if err := cursor.All(ctx, &existing); err != nil {
		return fmt.Errorf("decode search indexes: %w", err)
	}
	if len(existing) > 0 {
		e.logger.Info("search index already exists", slog.String("index", e.indexName))
		return nil
	}

	model := mongo.SearchIndexModel{
		Definition: searchIndexDefinition(query.MarketplaceIndex()),
		Options:    options.SearchIndexes().SetName(e.indexName),
	}
	if _, err := e.coll.SearchIndexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("create search index: %w", err)
	}

	e.logger.Info("search index created", slog.String("index", e.indexName))
	return nil
}

// Index adds or updates a single document.
func (e *Engine) Index(ctx context.Context, doc *domain.Document) error {
	_, err := e.coll.ReplaceOne(ctx,
		bson.M{"_id": doc.ID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("atlas index: %w", err)
	}

	e.logger.Debug("indexed document",
		slog.String("id", doc.ID),
		slog.String("type", doc.Type),
		slog.String("name", doc.Name),
	)
	return nil
}

// Delete removes a document by its ID. Deleting an absent document is not an
// error.
func (e *Engine) Delete(ctx context.Context, id string) error {
	if _, err := e.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("atlas delete: %w", err)
	}

	e.logger.Debug("deleted document", slog.String("id", id))
	return nil
}

// BulkIndex upserts multiple documents in one round trip.
func (e *Engine) BulkIndex(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(docs))
	for i := range docs {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": docs[i].ID}).
			SetReplacement(docs[i]).
			SetUpsert(true))
	}

	if _, err := e.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("atlas bulk index: %w", err)
	}

	e.logger.Info("bulk indexed documents", slog.Int("count", len(docs)))
	return nil
}

// facetResult decodes the paginated $facet stage.
type facetResult struct {
	Results []domain.Document `bson:"results"`
	Total   []struct {
		Value int `bson:"value"`
	} `bson:"total"`
}

// Search builds the compound query, pins it to the requested scope, and runs
// the aggregation pipeline.
func (e *Engine) Search(ctx context.Context, q *domain.SearchQuery) (*domain.SearchResult, error) {
	start := time.Now()

	page := q.Page
	if page < 1 {
		page = 1
	}
	perPage := q.PerPage
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	pipeline := e.buildPipeline(q, page, perPage)

	cursor, err := e.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("atlas search: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var out []facetResult
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("atlas search: decode response: %w", err)
	}

	result := &domain.SearchResult{
		Documents: []domain.Document{},
		Page:      page,
		PerPage:   perPage,
		TookMs:    time.Since(start).Milliseconds(),
	}
	if len(out) > 0 {
		result.Documents = out[0].Results
		if result.Documents == nil {
			result.Documents = []domain.Document{}
		}
		if len(out[0].Total) > 0 {
			result.Total = out[0].Total[0].Value
		}
	}
	return result, nil
}

// buildPipeline assembles $search, ordering, and pagination stages. The
// compound always carries at least the scope filter, so an otherwise empty
// request degenerates to "everything of this type", never to an error.
func (e *Engine) buildPipeline(q *domain.SearchQuery, page, perPage int) mongo.Pipeline {
	cq := query.Build(q.Term, q.Filters)
	cq.Filter = append(cq.Filter, query.ScopeClause(q.Scope))

	pipeline := mongo.Pipeline{
		{{Key: "$search", Value: bson.M{
			"index":    e.indexName,
			"compound": cq.Document(),
		}}},
	}

	pipeline = append(pipeline, e.sortStages(q.SortBy)...)

	pipeline = append(pipeline, bson.D{{Key: "$facet", Value: bson.M{
		"results": bson.A{
			bson.M{"$skip": (page - 1) * perPage},
			bson.M{"$limit": perPage},
		},
		"total": bson.A{
			bson.M{"$count": "value"},
		},
	}}})

	return pipeline
}

// sortStages returns the ordering stages for the given sort option. The
// default (relevance) computes the ranking score server-side; explicit sorts
// bypass it. Every branch tie-breaks by _id for stable pagination.
func (e *Engine) sortStages(sortBy string) []bson.D {
	byField := func(field string, dir int) []bson.D {
		return []bson.D{
			{{Key: "$sort", Value: bson.D{
				{Key: field, Value: dir},
				{Key: "_id", Value: 1},
			}}},
		}
	}

	switch sortBy {
	case domain.SortPriceAsc:
		return byField("price", 1)
	case domain.SortPriceDesc:
		return byField("price", -1)
	case domain.SortRatingDesc:
		return byField("rating", -1)
	case domain.SortNewest:
		return byField("created_at", -1)
	default:
		return []bson.D{
			{{Key: "$addFields", Value: bson.M{"ranking_score": rankingScoreExpr()}}},
			{{Key: "$sort", Value: bson.D{
				{Key: "ranking_score", Value: -1},
				{Key: "_id", Value: 1},
			}}},
		}
	}
}

// suggestionHit decodes the projected suggestion pipeline output.
type suggestionHit struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
	Type string `bson:"type"`
}

// Suggest runs one scope-bound autocomplete query and returns suggestions in
// backend relevance order.
func (e *Engine) Suggest(ctx context.Context, sq query.SuggestionQuery) ([]domain.Suggestion, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$search", Value: bson.M{
			"index": e.indexName,
			"compound": bson.M{
				"must":   bson.A{sq.Operator},
				"filter": bson.A{query.ScopeClause(sq.Scope)},
			},
		}}},
		{{Key: "$limit", Value: sq.Limit}},
		{{Key: "$project", Value: bson.M{"name": 1, "type": 1}}},
	}

	cursor, err := e.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("atlas suggest: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var hits []suggestionHit
	if err := cursor.All(ctx, &hits); err != nil {
		return nil, fmt.Errorf("atlas suggest: decode response: %w", err)
	}

	suggestions := make([]domain.Suggestion, 0, len(hits))
	for _, h := range hits {
		suggestions = append(suggestions, domain.Suggestion{ID: h.ID, Name: h.Name, Type: h.Type})
	}
	return suggestions, nil
}

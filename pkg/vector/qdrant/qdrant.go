// Package qdrant provides a Qdrant vector database driver over gRPC.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/papercomputeco/clerk/pkg/vector"
)

const (
	// DefaultCollectionName is the default collection name for storing invoice embeddings.
	DefaultCollectionName = "invoices"

	// DefaultPort is Qdrant's gRPC port.
	DefaultPort = 6334

	// Payload keys reserved by the driver. Document metadata sits beside them
	// at the top level so filters can address it directly.
	payloadDocID   = "_doc_id"
	payloadContent = "_content"
)

// Driver implements vector.Driver on a Qdrant collection.
//
// Qdrant point ids must be UUIDs or integers, so each document id is mapped
// to a name-based UUID and kept in the payload.
type Driver struct {
	client     *qdrant.Client
	collection string
	logger     *slog.Logger

	// addMu serializes the existence check and upsert in Add.
	addMu sync.Mutex
}

var _ vector.Driver = (*Driver)(nil)

// Config holds configuration for the Qdrant driver.
type Config struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool

	// CollectionName defaults to DefaultCollectionName.
	CollectionName string

	// Dimensions is required to create the collection when it doesn't exist.
	Dimensions uint
}

// NewDriver connects to Qdrant and ensures the collection exists.
func NewDriver(ctx context.Context, c Config, logger *slog.Logger) (*Driver, error) {
	if c.Host == "" {
		return nil, errors.New("qdrant host is required")
	}
	if c.Dimensions == 0 {
		return nil, errors.New("qdrant embedding dimensions cannot be 0, must be configured")
	}

	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	collection := c.CollectionName
	if collection == "" {
		collection = DefaultCollectionName
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   c.Host,
		Port:   port,
		APIKey: c.APIKey,
		UseTLS: c.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", vector.ErrConnection, err)
	}

	exists, err := client.CollectionExists(ctx, collection)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: checking collection %q: %w", vector.ErrConnection, collection, err)
	}

	if !exists {
		err = client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(c.Dimensions),
				Distance: qdrant.Distance_Euclid,
			}),
		})
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("creating collection %q: %w", collection, err)
		}
	}

	logger.Info("connected to qdrant",
		"host", c.Host,
		"port", port,
		"collection", collection,
		"created", !exists,
	)

	return &Driver{
		client:     client,
		collection: collection,
		logger:     logger,
	}, nil
}

// PointID maps a document id onto the UUID used as its Qdrant point id.
func PointID(docID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(docID)).String()
}

// Add upserts documents after checking none of their ids exist.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	ids := make([]string, len(docs))
	points := make([]*qdrant.PointStruct, len(docs))
	seen := make(map[string]struct{}, len(docs))

	for i, doc := range docs {
		if _, ok := seen[doc.ID]; ok {
			return fmt.Errorf("%w: %s", vector.ErrDuplicateID, doc.ID)
		}
		seen[doc.ID] = struct{}{}
		ids[i] = doc.ID

		payload := make(map[string]any, len(doc.Metadata)+2)
		for k, v := range doc.Metadata {
			payload[k] = v
		}
		payload[payloadDocID] = doc.ID
		payload[payloadContent] = doc.Content

		valueMap, err := qdrant.TryValueMap(payload)
		if err != nil {
			return fmt.Errorf("encoding payload for doc %s: %w", doc.ID, err)
		}

		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(PointID(doc.ID)),
			Vectors: qdrant.NewVectors(doc.Embedding...),
			Payload: valueMap,
		}
	}

	d.addMu.Lock()
	defer d.addMu.Unlock()

	existing, err := d.Get(ctx, ids)
	if err != nil {
		return fmt.Errorf("checking existing ids: %w", err)
	}
	if len(existing) > 0 {
		return fmt.Errorf("%w: %s", vector.ErrDuplicateID, existing[0].ID)
	}

	wait := true
	_, err = d.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: d.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	d.logger.Debug("added documents to qdrant", "count", len(docs))
	return nil
}

// Query finds the topK closest documents that satisfy where.
func (d *Driver) Query(ctx context.Context, embedding []float32, where vector.Where, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	filter, err := buildFilter(where)
	if err != nil {
		return nil, err
	}

	limit := uint64(topK)
	points, err := d.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: d.collection,
		Query:          qdrant.NewQuery(embedding...),
		Filter:         filter,
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying points: %w", err)
	}

	results := make([]vector.QueryResult, 0, len(points))
	for _, p := range points {
		// With euclid distance qdrant reports the distance itself as the score.
		results = append(results, vector.QueryResult{
			Document: documentFromPayload(p.GetPayload()),
			Distance: max(p.GetScore(), 0),
		})
	}

	d.logger.Debug("queried qdrant", "results", len(results), "filters", len(where))
	return results, nil
}

// Get retrieves documents by their IDs.
func (d *Driver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	pointIDs := make([]*qdrant.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = qdrant.NewID(PointID(id))
	}

	points, err := d.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: d.collection,
		Ids:            pointIDs,
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("getting points: %w", err)
	}

	docs := make([]vector.Document, 0, len(points))
	for _, p := range points {
		doc := documentFromPayload(p.GetPayload())
		doc.Embedding = p.GetVectors().GetVector().GetData()
		docs = append(docs, doc)
	}
	return docs, nil
}

// Close releases the gRPC connection.
func (d *Driver) Close() error {
	return d.client.Close()
}

func buildFilter(where vector.Where) (*qdrant.Filter, error) {
	if len(where) == 0 {
		return nil, nil
	}

	conds := make([]*qdrant.Condition, 0, len(where))
	for _, k := range where.Keys() {
		switch v := where[k].(type) {
		case string:
			conds = append(conds, qdrant.NewMatch(k, v))
		case bool:
			conds = append(conds, qdrant.NewMatchBool(k, v))
		case int:
			conds = append(conds, qdrant.NewMatchInt(k, int64(v)))
		case int64:
			conds = append(conds, qdrant.NewMatchInt(k, v))
		default:
			return nil, fmt.Errorf("unsupported qdrant filter value for %q: %T", k, v)
		}
	}
	return &qdrant.Filter{Must: conds}, nil
}

func documentFromPayload(payload map[string]*qdrant.Value) vector.Document {
	doc := vector.Document{Metadata: make(map[string]any, len(payload))}
	for k, v := range payload {
		switch k {
		case payloadDocID:
			doc.ID = v.GetStringValue()
		case payloadContent:
			doc.Content = v.GetStringValue()
		default:
			doc.Metadata[k] = fromValue(v)
		}
	}
	return doc
}

func fromValue(v *qdrant.Value) any {
	switch k := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return k.StringValue
	case *qdrant.Value_DoubleValue:
		return k.DoubleValue
	case *qdrant.Value_IntegerValue:
		return float64(k.IntegerValue)
	case *qdrant.Value_BoolValue:
		return k.BoolValue
	default:
		return nil
	}
}

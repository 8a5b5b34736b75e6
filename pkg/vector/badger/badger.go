// Package badger provides an embedded, persistent vector driver on BadgerDB.
//
// Documents are kept as JSON under a sequence-ordered key so a prefix scan
// yields insertion order. Queries are a brute-force scan, which suits the
// record counts a single deployment produces.
package badger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/papercomputeco/clerk/pkg/vector"
)

const (
	docPrefix   = "doc:"
	idPrefix    = "id:"
	sequenceKey = "seq:docs"

	sequenceBandwidth = 100
)

// Driver implements vector.Driver on BadgerDB.
type Driver struct {
	db     *badger.DB
	seq    *badger.Sequence
	logger *slog.Logger

	// writeMu serializes Add so concurrent inserts of one id cannot race
	// past the existence check.
	writeMu sync.Mutex
}

var _ vector.Driver = (*Driver)(nil)

// Config holds configuration for the badger driver.
type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	InMemory bool
}

type storedDocument struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata"`
	Embedding []float32      `json:"embedding"`
}

// badgerLogger adapts slog.Logger to badger.Logger.
type badgerLogger struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (l *badgerLogger) Errorf(msg string, args ...any) {
	l.logger.Error(fmt.Sprintf(msg, args...))
}

func (l *badgerLogger) Warningf(msg string, args ...any) {
	l.logger.Warn(fmt.Sprintf(msg, args...))
}

func (l *badgerLogger) Infof(msg string, args ...any) {
	l.logger.Debug(fmt.Sprintf(msg, args...))
}

func (l *badgerLogger) Debugf(msg string, args ...any) {
	l.logger.Debug(fmt.Sprintf(msg, args...))
}

// NewDriver opens (or creates) the database.
func NewDriver(c Config, logger *slog.Logger) (*Driver, error) {
	var opts badger.Options
	if c.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if c.Path == "" {
			return nil, errors.New("badger path is required")
		}
		if err := os.MkdirAll(c.Path, 0o755); err != nil {
			return nil, fmt.Errorf("creating badger directory: %w", err)
		}
		opts = badger.DefaultOptions(c.Path)
	}
	opts.Logger = &badgerLogger{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger: %w", err)
	}

	seq, err := db.GetSequence([]byte(sequenceKey), sequenceBandwidth)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("opening sequence: %w", err)
	}

	logger.Info("badger vector driver initialized", "path", c.Path, "in_memory", c.InMemory)

	return &Driver{
		db:     db,
		seq:    seq,
		logger: logger,
	}, nil
}

// Add writes all documents in one transaction or none of them.
func (d *Driver) Add(_ context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	err := d.db.Update(func(txn *badger.Txn) error {
		for _, doc := range docs {
			idKey := []byte(idPrefix + doc.ID)

			_, err := txn.Get(idKey)
			switch {
			case err == nil:
				return fmt.Errorf("%w: %s", vector.ErrDuplicateID, doc.ID)
			case !errors.Is(err, badger.ErrKeyNotFound):
				return fmt.Errorf("checking document %s: %w", doc.ID, err)
			}

			n, err := d.seq.Next()
			if err != nil {
				return fmt.Errorf("next sequence: %w", err)
			}

			value, err := json.Marshal(storedDocument{
				ID:        doc.ID,
				Content:   doc.Content,
				Metadata:  doc.Metadata,
				Embedding: doc.Embedding,
			})
			if err != nil {
				return fmt.Errorf("marshaling document %s: %w", doc.ID, err)
			}

			docKey := docKey(n)
			if err := txn.Set(docKey, value); err != nil {
				return err
			}
			if err := txn.Set(idKey, docKey); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	d.logger.Debug("added documents to badger", "count", len(docs))
	return nil
}

// Query scans every document in insertion order and ranks the matches.
func (d *Driver) Query(ctx context.Context, embedding []float32, where vector.Where, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	var results []vector.QueryResult
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(docPrefix)
		iter := txn.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var doc storedDocument
			err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			})
			if err != nil {
				return fmt.Errorf("decoding %s: %w", iter.Item().Key(), err)
			}

			if !where.Matches(doc.Metadata) {
				continue
			}
			results = append(results, vector.QueryResult{
				Document: vector.Document{
					ID:       doc.ID,
					Content:  doc.Content,
					Metadata: doc.Metadata,
				},
				Distance: vector.SquaredL2(embedding, doc.Embedding),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning documents: %w", err)
	}

	results = vector.RankByDistance(results, topK)
	if results == nil {
		results = []vector.QueryResult{}
	}
	d.logger.Debug("queried badger", "results", len(results), "filters", len(where))
	return results, nil
}

// Get retrieves documents by their IDs.
func (d *Driver) Get(_ context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var docs []vector.Document
	err := d.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			item, err := txn.Get([]byte(idPrefix + id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			key, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			docItem, err := txn.Get(key)
			if err != nil {
				return err
			}

			var doc storedDocument
			if err := docItem.Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			}); err != nil {
				return err
			}
			docs = append(docs, vector.Document(doc))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("getting documents: %w", err)
	}
	return docs, nil
}

// Close releases the sequence and closes the database.
func (d *Driver) Close() error {
	if err := d.seq.Release(); err != nil {
		d.logger.Warn("releasing badger sequence", "error", err)
	}
	return d.db.Close()
}

func docKey(n uint64) []byte {
	key := make([]byte, len(docPrefix)+8)
	copy(key, docPrefix)
	binary.BigEndian.PutUint64(key[len(docPrefix):], n)
	return key
}

// Package docstore persists script documents in a JetStream key-value
// bucket. Each document is one JSON value keyed by document ID; the KV
// revision doubles as the document's optimistic-concurrency revision.
package docstore

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/scriptbridge/errors"
	"github.com/c360/scriptbridge/scriptgraph"
)

// DefaultBucket is the bucket documents live in
const DefaultBucket = "scriptbridge_documents"

// KV is the slice of the JetStream key-value surface the store needs.
// jetstream.KeyValue satisfies it.
type KV interface {
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Create(ctx context.Context, key string, value []byte) (uint64, error)
	Update(ctx context.Context, key string, value []byte, revision uint64) (uint64, error)
	Delete(ctx context.Context, key string, opts ...jetstream.KVDeleteOpt) error
	ListKeys(ctx context.Context, opts ...jetstream.WatchOpt) (jetstream.KeyLister, error)
}

// Summary is the listing view of a stored document
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Graphs    int       `json:"graphs"`
	Nodes     int       `json:"nodes"`
	Revision  uint64    `json:"revision"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store reads and writes documents in one KV bucket
type Store struct {
	kv KV
}

// NewStore creates a document store over the given bucket
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Create stores a new document. The document's ID must be unused.
func (s *Store) Create(ctx context.Context, doc *scriptgraph.Document) error {
	if err := validateDoc(doc); err != nil {
		return err
	}
	doc.CreatedAt = time.Now().UTC()
	doc.UpdatedAt = doc.CreatedAt

	data, err := json.Marshal(doc)
	if err != nil {
		return errors.WrapInternal(err, "Store", "Create", "document encoding")
	}

	rev, err := s.kv.Create(ctx, doc.ID, data)
	if err != nil {
		if stderrors.Is(err, jetstream.ErrKeyExists) {
			return errors.WrapInvalidState(
				fmt.Errorf("document %s already exists", doc.ID),
				"Store", "Create", "document creation")
		}
		return errors.WrapInternal(err, "Store", "Create", "KV write")
	}
	doc.Revision = rev
	return nil
}

// Get loads a document by ID
func (s *Store) Get(ctx context.Context, id string) (*scriptgraph.Document, error) {
	if id == "" {
		return nil, errors.WrapInvalid(
			fmt.Errorf("empty document ID"),
			"Store", "Get", "id validation")
	}

	entry, err := s.kv.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, errors.WrapNotFound(
				fmt.Errorf("%w: %s", errors.ErrDocumentNotFound, id),
				"Store", "Get", "document lookup")
		}
		return nil, errors.WrapInternal(err, "Store", "Get", "KV read")
	}

	var doc scriptgraph.Document
	if err := json.Unmarshal(entry.Value(), &doc); err != nil {
		return nil, errors.WrapInternal(err, "Store", "Get", "document decoding")
	}
	doc.Revision = entry.Revision()
	return &doc, nil
}

// Update stores a modified document. The write succeeds only when
// doc.Revision still matches the stored revision, so concurrent writers
// cannot silently overwrite each other.
func (s *Store) Update(ctx context.Context, doc *scriptgraph.Document) error {
	if err := validateDoc(doc); err != nil {
		return err
	}
	doc.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(doc)
	if err != nil {
		return errors.WrapInternal(err, "Store", "Update", "document encoding")
	}

	rev, err := s.kv.Update(ctx, doc.ID, data, doc.Revision)
	if err != nil {
		if stderrors.Is(err, jetstream.ErrKeyNotFound) {
			return errors.WrapNotFound(
				fmt.Errorf("%w: %s", errors.ErrDocumentNotFound, doc.ID),
				"Store", "Update", "document lookup")
		}
		return errors.WrapInvalidState(
			fmt.Errorf("document %s was modified concurrently: %w", doc.ID, err),
			"Store", "Update", "revision check")
	}
	doc.Revision = rev
	return nil
}

// Delete removes a document
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.WrapInvalid(
			fmt.Errorf("empty document ID"),
			"Store", "Delete", "id validation")
	}
	if err := s.kv.Delete(ctx, id); err != nil {
		return errors.WrapInternal(err, "Store", "Delete", "KV delete")
	}
	return nil
}

// List returns a summary of every stored document, in key order
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	lister, err := s.kv.ListKeys(ctx)
	if err != nil {
		return nil, errors.WrapInternal(err, "Store", "List", "key listing")
	}
	defer func() { _ = lister.Stop() }()

	summaries := []Summary{}
	for key := range lister.Keys() {
		doc, err := s.Get(ctx, key)
		if err != nil {
			// A document deleted mid-listing is not a listing failure
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		nodes := 0
		for _, g := range doc.Graphs {
			nodes += len(g.Nodes)
		}
		summaries = append(summaries, Summary{
			ID:        doc.ID,
			Name:      doc.Name,
			Graphs:    len(doc.Graphs),
			Nodes:     nodes,
			Revision:  doc.Revision,
			UpdatedAt: doc.UpdatedAt,
		})
	}
	return summaries, nil
}

func validateDoc(doc *scriptgraph.Document) error {
	if doc == nil || doc.ID == "" {
		return errors.WrapInvalid(
			fmt.Errorf("document has no ID"),
			"Store", "validate", "document validation")
	}
	return nil
}

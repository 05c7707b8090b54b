package docstore

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/scriptbridge/errors"
	"github.com/c360/scriptbridge/scriptgraph"
)

// fakeKV is an in-memory KV with JetStream revision semantics
type fakeKV struct {
	mu      sync.Mutex
	rev     uint64
	entries map[string]fakeEntry
}

type fakeEntry struct {
	value []byte
	rev   uint64
}

func newFakeKV() *fakeKV {
	return &fakeKV{entries: make(map[string]fakeEntry)}
}

func (f *fakeKV) Get(_ context.Context, key string) (jetstream.KeyValueEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[key]
	if !ok {
		return nil, jetstream.ErrKeyNotFound
	}
	return &fakeKVEntry{key: key, entry: e}, nil
}

func (f *fakeKV) Create(_ context.Context, key string, value []byte) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[key]; ok {
		return 0, jetstream.ErrKeyExists
	}
	f.rev++
	f.entries[key] = fakeEntry{value: value, rev: f.rev}
	return f.rev, nil
}

func (f *fakeKV) Update(_ context.Context, key string, value []byte, revision uint64) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[key]
	if !ok {
		return 0, jetstream.ErrKeyNotFound
	}
	if e.rev != revision {
		return 0, jetstream.ErrKeyExists
	}
	f.rev++
	f.entries[key] = fakeEntry{value: value, rev: f.rev}
	return f.rev, nil
}

func (f *fakeKV) Delete(_ context.Context, key string, _ ...jetstream.KVDeleteOpt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return nil
}

func (f *fakeKV) ListKeys(_ context.Context, _ ...jetstream.WatchOpt) (jetstream.KeyLister, error) {
	f.mu.Lock()
	keys := make([]string, 0, len(f.entries))
	for k := range f.entries {
		keys = append(keys, k)
	}
	f.mu.Unlock()
	sort.Strings(keys)

	ch := make(chan string, len(keys))
	for _, k := range keys {
		ch <- k
	}
	close(ch)
	return &fakeLister{ch: ch}, nil
}

type fakeLister struct{ ch chan string }

func (l *fakeLister) Keys() <-chan string { return l.ch }

func (l *fakeLister) Stop() error { return nil }

type fakeKVEntry struct {
	key   string
	entry fakeEntry
}

func (e *fakeKVEntry) Bucket() string                  { return DefaultBucket }
func (e *fakeKVEntry) Key() string                     { return e.key }
func (e *fakeKVEntry) Value() []byte                   { return e.entry.value }
func (e *fakeKVEntry) Revision() uint64                { return e.entry.rev }
func (e *fakeKVEntry) Created() time.Time              { return time.Time{} }
func (e *fakeKVEntry) Delta() uint64                   { return 0 }
func (e *fakeKVEntry) Operation() jetstream.KeyValueOp { return jetstream.KeyValuePut }

func testDoc(id string) *scriptgraph.Document {
	return &scriptgraph.Document{
		ID:   id,
		Name: "PlayerController",
		Graphs: []*scriptgraph.Graph{
			scriptgraph.NewGraph("g1", "EventGraph"),
		},
	}
}

func TestStoreCreateAndGet(t *testing.T) {
	store := NewStore(newFakeKV())
	ctx := context.Background()

	doc := testDoc("doc-1")
	require.NoError(t, store.Create(ctx, doc))
	assert.NotZero(t, doc.Revision)

	got, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "PlayerController", got.Name)
	assert.Equal(t, doc.Revision, got.Revision)
	require.Len(t, got.Graphs, 1)
	assert.Equal(t, "EventGraph", got.Graphs[0].Name)
}

func TestStoreCreateRejectsDuplicateID(t *testing.T) {
	store := NewStore(newFakeKV())
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testDoc("doc-1")))
	err := store.Create(ctx, testDoc("doc-1"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrorInvalidState, errors.Classify(err))
}

func TestStoreGetMissingDocument(t *testing.T) {
	store := NewStore(newFakeKV())
	_, err := store.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.ErrorIs(t, err, errors.ErrDocumentNotFound)
}

func TestStoreUpdateChecksRevision(t *testing.T) {
	store := NewStore(newFakeKV())
	ctx := context.Background()

	doc := testDoc("doc-1")
	require.NoError(t, store.Create(ctx, doc))

	// First writer wins
	doc.Name = "Renamed"
	require.NoError(t, store.Update(ctx, doc))

	// Second writer holds the original revision and must be rejected
	stale := testDoc("doc-1")
	stale.Revision = 1
	err := store.Update(ctx, stale)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorInvalidState, errors.Classify(err))

	got, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
}

func TestStoreList(t *testing.T) {
	store := NewStore(newFakeKV())
	ctx := context.Background()

	a := testDoc("doc-a")
	require.NoError(t, a.Graphs[0].AddNode(scriptgraph.NewRerouteNode(scriptgraph.Position{})))
	require.NoError(t, store.Create(ctx, a))
	require.NoError(t, store.Create(ctx, testDoc("doc-b")))

	summaries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "doc-a", summaries[0].ID)
	assert.Equal(t, 1, summaries[0].Nodes)
	assert.Equal(t, "doc-b", summaries[1].ID)
	assert.Equal(t, 0, summaries[1].Nodes)
}

func TestStoreDelete(t *testing.T) {
	store := NewStore(newFakeKV())
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testDoc("doc-1")))
	require.NoError(t, store.Delete(ctx, "doc-1"))
	_, err := store.Get(ctx, "doc-1")
	assert.True(t, errors.IsNotFound(err))
}

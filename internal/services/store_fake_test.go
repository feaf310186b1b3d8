package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	mongorepo "github.com/octavia-ai/octavia/internal/repositories/mongo"
	"github.com/octavia-ai/octavia/internal/utils"
)

// memStore is an in-memory RecordStore with equality filters, used to test
// services without a database.
type memStore[T any] struct {
	mu      sync.Mutex
	docs    map[string]bson.M
	order   []string
	seq     int
	unique  string
	failErr error
	creates int
	updates int
}

func newMemStore[T any]() *memStore[T] {
	return &memStore[T]{docs: map[string]bson.M{}}
}

func (m *memStore[T]) List(_ context.Context, filter mongorepo.Filter, opts mongorepo.ListOptions) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}

	var matched []bson.M
	for _, id := range m.order {
		d := m.docs[id]
		if matches(d, filter) {
			matched = append(matched, d)
		}
	}
	if opts.SortBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			less := lessValue(matched[i][opts.SortBy], matched[j][opts.SortBy])
			if opts.Desc {
				return lessValue(matched[j][opts.SortBy], matched[i][opts.SortBy])
			}
			return less
		})
	}
	if opts.Limit > 0 && int64(len(matched)) > opts.Limit {
		matched = matched[:opts.Limit]
	}

	out := make([]T, 0, len(matched))
	for _, d := range matched {
		var v T
		if err := decode(d, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (m *memStore[T]) Get(_ context.Context, id string) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return nil, m.failErr
	}
	d, ok := m.docs[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	var v T
	if err := decode(d, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (m *memStore[T]) Create(_ context.Context, doc *T) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return "", m.failErr
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		return "", err
	}
	var d bson.M
	if err := bson.Unmarshal(raw, &d); err != nil {
		return "", err
	}
	if m.unique != "" {
		for _, other := range m.docs {
			if fmt.Sprint(other[m.unique]) == fmt.Sprint(d[m.unique]) {
				return "", mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "duplicate key"}}}
			}
		}
	}

	id, _ := d["_id"].(string)
	if id == "" {
		m.seq++
		id = "id-" + strconv.Itoa(m.seq)
	}
	now := time.Now().UTC()
	d["_id"] = id
	d["created_at"] = now
	d["updated_at"] = now
	m.docs[id] = d
	m.order = append(m.order, id)
	m.creates++

	_ = decode(d, doc)
	return id, nil
}

func (m *memStore[T]) Update(_ context.Context, id string, fields mongorepo.Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	d, ok := m.docs[id]
	if !ok {
		return utils.ErrNotFound
	}
	for k, v := range fields {
		d[k] = v
	}
	d["updated_at"] = time.Now().UTC()
	m.updates++
	return nil
}

func (m *memStore[T]) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	if _, ok := m.docs[id]; !ok {
		return utils.ErrNotFound
	}
	delete(m.docs, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memStore[T]) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

// put seeds a document and returns its id.
func (m *memStore[T]) put(doc T) string {
	id, err := m.Create(context.Background(), &doc)
	if err != nil {
		panic(err)
	}
	return id
}

func matches(d bson.M, filter mongorepo.Filter) bool {
	for k, want := range filter {
		if fmt.Sprint(d[k]) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func lessValue(a, b any) bool {
	return sortKey(a) < sortKey(b)
}

func sortKey(v any) string {
	switch t := v.(type) {
	case primitive.DateTime:
		return fmt.Sprintf("%020d", int64(t)+1<<62)
	case time.Time:
		return fmt.Sprintf("%020d", t.UnixMilli()+1<<62)
	case int32:
		return fmt.Sprintf("%020d", int64(t)+1<<62)
	case int64:
		return fmt.Sprintf("%020d", t+1<<62)
	case float64:
		return fmt.Sprintf("%030.6f", t)
	default:
		return fmt.Sprint(t)
	}
}

func decode(d bson.M, dst any) error {
	raw, err := bson.Marshal(d)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, dst)
}

var (
	_ mongorepo.RecordStore[struct{}] = (*memStore[struct{}])(nil)
)

func mongoOpts() mongorepo.ListOptions { return mongorepo.ListOptions{} }

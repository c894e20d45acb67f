package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"clubsite/internal/domain"
)

// fakeMediaRepo implements domain.MediaRepository for tests.
type fakeMediaRepo struct {
	mu        sync.Mutex
	rows      map[string]*domain.Media
	nextID    int
	createErr error
	deleteErr error
	getByKey  int
}

func newFakeMediaRepo() *fakeMediaRepo {
	return &fakeMediaRepo{rows: make(map[string]*domain.Media)}
}

func (f *fakeMediaRepo) Create(ctx context.Context, m *domain.Media) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, r := range f.rows {
		if r.Key == m.Key {
			return domain.ErrConflict
		}
	}
	f.nextID++
	m.ID = fmt.Sprintf("media-%d", f.nextID)
	c := *m
	f.rows[m.ID] = &c
	return nil
}

func (f *fakeMediaRepo) GetByID(ctx context.Context, id string) (*domain.Media, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *m
	return &c, nil
}

func (f *fakeMediaRepo) GetByKey(ctx context.Context, key string) (*domain.Media, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getByKey++
	for _, m := range f.rows {
		if m.Key == key {
			c := *m
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeMediaRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeMediaRepo) List(ctx context.Context, p domain.PaginationParams) ([]*domain.Media, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Media, 0, len(f.rows))
	for _, m := range f.rows {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeMediaRepo) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows), nil
}

// fakeObjectStorage is an in-memory bucket implementing both ObjectStorage
// and ObjectSource.
type fakeObjectStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	types     map[string]string
	puts      int
	deletes   []string
	putErr    error
	deleteErr error
	openErr   map[string]error
}

func newFakeObjectStorage() *fakeObjectStorage {
	return &fakeObjectStorage{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
		openErr: make(map[string]error),
	}
}

func (f *fakeObjectStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.putErr != nil {
		return "", f.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.objects[key] = data
	f.types[key] = contentType
	return "https://cdn.example.org/" + key, nil
}

func (f *fakeObjectStorage) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, key)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeObjectStorage) List(ctx context.Context, prefix string) ([]domain.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ObjectInfo
	for k, v := range f.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, domain.ObjectInfo{Key: k, Size: int64(len(v))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f *fakeObjectStorage) Open(ctx context.Context, key string) (io.ReadCloser, domain.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.openErr[key]; err != nil {
		return nil, domain.ObjectInfo{}, err
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, domain.ObjectInfo{}, errors.New("no such key")
	}
	info := domain.ObjectInfo{Key: key, Size: int64(len(data)), ContentType: f.types[key]}
	return io.NopCloser(bytes.NewReader(data)), info, nil
}

func (f *fakeObjectStorage) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.objects))
	for k := range f.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/visitlog-dev/visitlog/pkg/pathutil"
)

// MockBackend is an in-memory Backend for tests. It keeps a flat map of
// normalized path -> entry and supports scripted fault injection.
type MockBackend struct {
	mu      sync.Mutex
	entries map[string]*mockEntry

	// Calls counts backend invocations per op name.
	Calls map[string]int

	// faults maps op name to a queue of errors returned before real work.
	faults map[string][]error
}

type mockEntry struct {
	isDir bool
	data  []byte
}

// NewMockBackend creates an empty mock backend with a root directory.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		entries: map[string]*mockEntry{"/": {isDir: true}},
		Calls:   make(map[string]int),
		faults:  make(map[string][]error),
	}
}

// AddDir registers a directory (and its ancestors) in the mock tree.
func (m *MockBackend) AddDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = pathutil.Normalize(path)
	for path != "/" {
		m.entries[path] = &mockEntry{isDir: true}
		path = pathutil.Parent(path)
	}
}

// AddFile registers a file with content.
func (m *MockBackend) AddFile(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[pathutil.Normalize(path)] = &mockEntry{data: data}
}

// FileContent returns the stored content of a file, if present.
func (m *MockBackend) FileContent(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[pathutil.Normalize(path)]
	if !ok || e.isDir {
		return nil, false
	}
	return e.data, true
}

// HasDir reports whether a directory exists in the mock tree.
func (m *MockBackend) HasDir(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[pathutil.Normalize(path)]
	return ok && e.isDir
}

// FailNext queues count transient (or otherwise coded) failures for op.
func (m *MockBackend) FailNext(op, code string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < count; i++ {
		m.faults[op] = append(m.faults[op], NewError(code, op, "", nil))
	}
}

func (m *MockBackend) begin(op string) error {
	m.Calls[op]++
	if q := m.faults[op]; len(q) > 0 {
		m.faults[op] = q[1:]
		return q[0]
	}
	return nil
}

// GetMeta implements Backend.
func (m *MockBackend) GetMeta(ctx context.Context, path string) (*Meta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("meta"); err != nil {
		return nil, err
	}

	path = pathutil.Normalize(path)
	e, ok := m.entries[path]
	if !ok {
		return nil, NewError(CodeNotFound, "meta", path, nil)
	}
	typ := "file"
	if e.isDir {
		typ = "dir"
	}
	return &Meta{Name: pathutil.Leaf(path), Path: path, Type: typ, Size: int64(len(e.data))}, nil
}

// ListChildren implements Backend.
func (m *MockBackend) ListChildren(ctx context.Context, path string) ([]Meta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("list"); err != nil {
		return nil, err
	}

	path = pathutil.Normalize(path)
	parent, ok := m.entries[path]
	if !ok || !parent.isDir {
		return nil, NewError(CodeNotFound, "list", path, nil)
	}

	prefix := path
	if prefix != "/" {
		prefix += "/"
	} else {
		prefix = "/"
	}

	var children []Meta
	for p, e := range m.entries {
		if p == "/" || !strings.HasPrefix(p, prefix) || p == path {
			continue
		}
		rest := p[len(prefix):]
		if strings.Contains(rest, "/") {
			continue
		}
		typ := "file"
		if e.isDir {
			typ = "dir"
		}
		children = append(children, Meta{Name: rest, Path: p, Type: typ})
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	return children, nil
}

// Mkdir implements Backend.
func (m *MockBackend) Mkdir(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("mkdir"); err != nil {
		return err
	}

	path = pathutil.Normalize(path)
	if _, ok := m.entries[path]; ok {
		return NewError(CodeConflict, "mkdir", path, nil)
	}
	if parent, ok := m.entries[pathutil.Parent(path)]; !ok || !parent.isDir {
		return NewError(CodeNotFound, "mkdir", path, nil)
	}
	m.entries[path] = &mockEntry{isDir: true}
	return nil
}

// Upload implements Backend.
func (m *MockBackend) Upload(ctx context.Context, path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("upload"); err != nil {
		return err
	}

	path = pathutil.Normalize(path)
	buf := make([]byte, len(data))
	copy(buf, data)
	m.entries[path] = &mockEntry{data: buf}
	return nil
}

// Download implements Backend.
func (m *MockBackend) Download(ctx context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("download"); err != nil {
		return nil, err
	}

	path = pathutil.Normalize(path)
	e, ok := m.entries[path]
	if !ok || e.isDir {
		return nil, NewError(CodeNotFound, "download", path, nil)
	}
	buf := make([]byte, len(e.data))
	copy(buf, e.data)
	return buf, nil
}

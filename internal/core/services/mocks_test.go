package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/figsync/internal/core/domain"
	"github.com/custodia-labs/figsync/internal/core/ports/driven"
)

// --- Mock implementations shared by the service tests ---

// mockDocumentSource implements driven.DocumentSource over in-memory nodes.
type mockDocumentSource struct {
	mu        sync.Mutex
	info      *domain.FileInfo
	nodes     map[string]domain.Node
	images    map[string]string
	docErr    error
	subErr    error
	imagesErr error

	subtreeCalls [][]string
	subtreeDepth []int
	imageCalls   [][]string
}

func newMockDocumentSource() *mockDocumentSource {
	return &mockDocumentSource{
		nodes:  make(map[string]domain.Node),
		images: make(map[string]string),
	}
}

func (m *mockDocumentSource) FetchDocument(_ context.Context, _ string, _ int) (*domain.FileInfo, error) {
	if m.docErr != nil {
		return nil, m.docErr
	}
	if m.info == nil {
		return nil, &domain.UpstreamAPIError{StatusCode: 404}
	}
	info := *m.info
	return &info, nil
}

func (m *mockDocumentSource) FetchSubtree(_ context.Context, _ string, ids []string, depth int) (map[string]domain.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subtreeCalls = append(m.subtreeCalls, append([]string(nil), ids...))
	m.subtreeDepth = append(m.subtreeDepth, depth)
	if m.subErr != nil {
		return nil, m.subErr
	}
	out := make(map[string]domain.Node)
	for _, id := range ids {
		if n, ok := m.nodes[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

func (m *mockDocumentSource) FetchRenderedImages(_ context.Context, _ string, ids []string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imageCalls = append(m.imageCalls, append([]string(nil), ids...))
	if m.imagesErr != nil {
		return nil, m.imagesErr
	}
	out := make(map[string]string)
	for _, id := range ids {
		if u, ok := m.images[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

// addPage registers a page in both the document and the node index.
func (m *mockDocumentSource) addPage(page domain.Node) {
	if m.info == nil {
		m.info = &domain.FileInfo{Name: "Design", Version: "1", Document: domain.Node{ID: "0:0", Type: "DOCUMENT"}}
	}
	m.info.Document.Children = append(m.info.Document.Children, domain.Node{ID: page.ID, Name: page.Name, Type: "CANVAS"})
	m.nodes[page.ID] = page
}

// mockDownloader implements driven.ImageDownloader.
type mockDownloader struct {
	mu    sync.Mutex
	err   error
	calls []string
}

func (m *mockDownloader) Download(_ context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, url)
	if m.err != nil {
		return nil, m.err
	}
	return []byte("png:" + url), nil
}

type storedObject struct {
	data []byte
	opts domain.PutOptions
}

// mockBlobStore implements driven.BlobStore in memory and counts writes.
type mockBlobStore struct {
	mu      sync.Mutex
	objects map[string]storedObject
	puts    []string
	headErr error
	getErr  error
	putErr  error
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{objects: make(map[string]storedObject)}
}

func (m *mockBlobStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.Head(ctx, key)
	if err == domain.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (m *mockBlobStore) Head(_ context.Context, key string) (*domain.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.headErr != nil {
		return nil, m.headErr
	}
	obj, ok := m.objects[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.ObjectInfo{
		Key:         key,
		Size:        int64(len(obj.data)),
		ContentType: obj.opts.ContentType,
		Metadata:    obj.opts.Metadata,
	}, nil
}

func (m *mockBlobStore) Get(ctx context.Context, key string) ([]byte, *domain.ObjectInfo, error) {
	m.mu.Lock()
	getErr := m.getErr
	obj, ok := m.objects[key]
	m.mu.Unlock()
	if getErr != nil {
		return nil, nil, getErr
	}
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	info, _ := m.Head(ctx, key)
	return obj.data, info, nil
}

func (m *mockBlobStore) Put(_ context.Context, key string, data []byte, opts domain.PutOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.puts = append(m.puts, key)
	m.objects[key] = storedObject{data: append([]byte(nil), data...), opts: opts}
	return nil
}

func (m *mockBlobStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *mockBlobStore) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func (m *mockBlobStore) putCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.puts)
}

// seed stores an asset as if a previous worker run had cached it.
func (m *mockBlobStore) seed(key, hash string) {
	m.objects[key] = storedObject{
		data: []byte("cached"),
		opts: domain.PutOptions{
			ContentType: domain.ContentTypePNG,
			Metadata:    map[string]string{domain.HashMetadataKey: hash},
		},
	}
}

// mockDispatcher implements driven.JobDispatcher and records requests.
type mockDispatcher struct {
	mu       sync.Mutex
	requests []domain.WorkerRequest
	err      error
}

func (m *mockDispatcher) Dispatch(_ context.Context, req domain.WorkerRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return m.err
}

// frame builds a frame node with optional children.
func frame(id, name string, children ...domain.Node) domain.Node {
	return domain.Node{ID: id, Name: name, Type: "FRAME", Children: children}
}

// page builds a canvas node holding frames.
func page(id, name string, frames ...domain.Node) domain.Node {
	return domain.Node{ID: id, Name: name, Type: "CANVAS", Children: frames}
}

// framesN builds n frames with ids prefix:0..n-1.
func framesN(prefix string, n int) []domain.Node {
	out := make([]domain.Node, n)
	for i := range out {
		out[i] = frame(fmt.Sprintf("%s:%d", prefix, i), fmt.Sprintf("Asset %d", i))
	}
	return out
}

var (
	_ driven.DocumentSource  = (*mockDocumentSource)(nil)
	_ driven.ImageDownloader = (*mockDownloader)(nil)
	_ driven.BlobStore       = (*mockBlobStore)(nil)
	_ driven.JobDispatcher   = (*mockDispatcher)(nil)
)

// Package memory is an in-process receipt backend for demo mode and tests.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"payperless/assets"
	"payperless/internal/core"
	"payperless/internal/receipts"
)

var _ receipts.Backend = (*Store)(nil)

type record struct {
	id        int
	label     string
	key       string
	data      json.RawMessage
	image     []byte
	createdAt time.Time
}

// Store keeps raw records and decodes them afresh on every read, so callers
// can never alias stored state.
type Store struct {
	mu      sync.Mutex
	nextID  int
	records []record
	now     func() time.Time
}

func New() *Store {
	return &Store{nextID: 1, now: time.Now}
}

// NewSeeded returns a store preloaded with the illustrative dashboard receipts.
func NewSeeded() (*Store, error) {
	s := New()
	data, err := assets.DashboardReceipts()
	if err != nil {
		return nil, fmt.Errorf("read seed receipts: %w", err)
	}
	var seed []struct {
		Name string          `json:"name"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decode seed receipts: %w", err)
	}
	for _, r := range seed {
		s.Add(r.Name, r.Data)
	}
	return s, nil
}

// Add stores a parsed record and returns its id. data is stored untouched,
// valid or not.
func (s *Store) Add(label string, data json.RawMessage) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(label, data, nil)
}

func (s *Store) addLocked(label string, data json.RawMessage, image []byte) string {
	id := s.nextID
	s.nextID++
	s.records = append(s.records, record{
		id:        id,
		label:     label,
		key:       fmt.Sprintf("mem-%d", id),
		data:      append(json.RawMessage(nil), data...),
		image:     image,
		createdAt: s.now(),
	})
	return strconv.Itoa(id)
}

func (s *Store) ListRaw(_ context.Context) ([]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, r := range s.records {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `{"id":%d,"name":%s,"key":%q,"data":%s}`, r.id, quote(r.label), r.key, orNull(r.data))
	}
	buf.WriteByte(']')
	return core.DecodeList(buf.Bytes())
}

func (s *Store) GetRaw(_ context.Context, id string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.find(id)
	if !ok {
		return nil, receipts.ErrNotFound
	}
	return core.DecodeOne(orNull(r.data))
}

// Upload records the image. Parsing is the real backend's job, so the stored
// data is an empty object until a test or seed supplies one with Add.
func (s *Store) Upload(_ context.Context, label, _ string, image io.Reader) (receipts.UploadResult, error) {
	data, err := io.ReadAll(image)
	if err != nil {
		return receipts.UploadResult{}, fmt.Errorf("read image: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.addLocked(label, json.RawMessage(`{}`), data)
	r := s.records[len(s.records)-1]
	return receipts.UploadResult{ID: id, Label: label, Key: r.key, Timestamp: r.createdAt}, nil
}

// SetData replaces the parsed data of a record, mimicking the backend
// finishing its parse.
func (s *Store) SetData(id string, data json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if strconv.Itoa(s.records[i].id) == id {
			s.records[i].data = append(json.RawMessage(nil), data...)
			return nil
		}
	}
	return receipts.ErrNotFound
}

func (s *Store) Image(_ context.Context, id string) (receipts.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.find(id)
	if !ok || len(r.image) == 0 {
		return receipts.Image{}, receipts.ErrNotFound
	}
	data := append([]byte(nil), r.image...)
	return receipts.Image{Data: data, ContentType: http.DetectContentType(data)}, nil
}

func (s *Store) find(id string) (record, bool) {
	for _, r := range s.records {
		if strconv.Itoa(r.id) == id {
			return r, true
		}
	}
	return record{}, false
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func orNull(data json.RawMessage) []byte {
	if len(data) == 0 {
		return []byte("null")
	}
	return data
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/profilevault/internal/common"
	"github.com/dmitrijs2005/profilevault/internal/queue"
)

// memQueue models an SQS queue: a received message turns invisible until it
// is deleted with the handle of its latest delivery or made visible again.
type memQueue struct {
	mu       sync.Mutex
	seq      int
	msgs     []*memMsg
	receives int
	deletes  int
	sendErr  error
	recvErr  error
	delErrs  int
}

type memMsg struct {
	id       string
	body     string
	handle   string
	count    int
	inFlight bool
}

func (q *memQueue) Send(ctx context.Context, body string) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.sendErr != nil {
		return "", q.sendErr
	}
	q.seq++
	id := fmt.Sprintf("m-%d", q.seq)
	q.msgs = append(q.msgs, &memMsg{id: id, body: body})
	return id, nil
}

func (q *memQueue) Receive(ctx context.Context) (*queue.Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.recvErr != nil {
		return nil, q.recvErr
	}
	for _, m := range q.msgs {
		if m.inFlight {
			continue
		}
		q.seq++
		q.receives++
		m.inFlight = true
		m.count++
		m.handle = fmt.Sprintf("rh-%d", q.seq)
		return &queue.Message{ID: m.id, Body: m.body, ReceiptHandle: m.handle, ReceiveCount: m.count}, nil
	}
	return nil, nil
}

func (q *memQueue) Delete(ctx context.Context, receiptHandle string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.delErrs > 0 {
		q.delErrs--
		return errors.New("delete: connection reset")
	}
	for i, m := range q.msgs {
		if m.handle == receiptHandle {
			q.msgs = append(q.msgs[:i], q.msgs[i+1:]...)
			q.deletes++
			return nil
		}
	}
	return errors.New("receipt handle is invalid")
}

// expire makes every in-flight message visible again, as if its
// visibility timeout had elapsed.
func (q *memQueue) expire() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, m := range q.msgs {
		m.inFlight = false
	}
}

func (q *memQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.msgs)
}

func (q *memQueue) bodies() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []string
	for _, m := range q.msgs {
		out = append(out, m.body)
	}
	return out
}

// memStore is an object store whose presigned URLs point at an HTTP server
// serving the stored objects.
type memStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	writes   int
	failures int
	putHook  func(ctx context.Context) error
	srv      *httptest.Server
}

func newMemStore() *memStore {
	s := &memStore{objects: map[string][]byte{}}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, ok := s.get(strings.TrimPrefix(r.URL.Path, "/"))
		if !ok {
			http.Error(w, "NoSuchKey", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", common.PDFContentType)
		_, _ = w.Write(b)
	}))
	return s
}

func (s *memStore) Put(ctx context.Context, key string, body []byte) error {
	if s.putHook != nil {
		if err := s.putHook(ctx); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return fmt.Errorf("%w: connection refused", common.ErrStoreUnavailable)
	}
	s.objects[key] = append([]byte(nil), body...)
	s.writes++
	return nil
}

func (s *memStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("%s/%s?X-Amz-Expires=%d", s.srv.URL, key, int(ttl.Seconds())), nil
}

func (s *memStore) get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[key]
	return b, ok
}

func (s *memStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

type fakeSender struct {
	mu     sync.Mutex
	bodies []string
	err    error
}

func (f *fakeSender) Send(ctx context.Context, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.bodies = append(f.bodies, body)
	return fmt.Sprintf("dlq-%d", len(f.bodies)), nil
}

type fakeBucket struct{ err error }

func (f fakeBucket) EnsureBucket(ctx context.Context) error { return f.err }

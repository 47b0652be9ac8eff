package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fpang/selection-upload/internal/events"
	"github.com/fpang/selection-upload/internal/store"
)

var errBoom = errors.New("boom")

// fakeObjects records every call and fails keys listed in putFail/signFail.
type fakeObjects struct {
	mu        sync.Mutex
	puts      map[string][]byte
	types     map[string]string
	signs     map[string]int
	ttls      []time.Duration
	putFail   map[string]bool
	signFail  map[string]int // remaining failures per key; -1 fails forever
	calls     int
	inFlight  int
	maxFlight int
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{
		puts:     map[string][]byte{},
		types:    map[string]string{},
		signs:    map[string]int{},
		putFail:  map[string]bool{},
		signFail: map[string]int{},
	}
}

func (f *fakeObjects) Put(_ context.Context, key string, body []byte, contentType string) error {
	f.mu.Lock()
	f.calls++
	f.inFlight++
	if f.inFlight > f.maxFlight {
		f.maxFlight = f.inFlight
	}
	f.mu.Unlock()

	time.Sleep(2 * time.Millisecond)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--
	if f.putFail[key] {
		return fmt.Errorf("put %s: %w", key, errBoom)
	}
	f.puts[key] = body
	f.types[key] = contentType
	return nil
}

func (f *fakeObjects) SignedGetURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.signs[key]++
	f.ttls = append(f.ttls, ttl)
	if n := f.signFail[key]; n != 0 {
		if n > 0 {
			f.signFail[key] = n - 1
		}
		return "", errBoom
	}
	return "https://objects.test/" + key + fmt.Sprintf("?expires=%d", int(ttl.Seconds())), nil
}

func (f *fakeObjects) Location() string { return "fake://bucket" }

type fakeRecords struct {
	mu         sync.Mutex
	selections []*store.Selection
	items      map[string]*store.SelectionItem
	itemCalls  int
	marked     []string
	calls      int
	selErr     error
	itemFail   map[string]bool
	markErr    error
	order      []string
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{items: map[string]*store.SelectionItem{}, itemFail: map[string]bool{}}
}

func (f *fakeRecords) PutSelection(_ context.Context, s *store.Selection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.order = append(f.order, "selection")
	if f.selErr != nil {
		return f.selErr
	}
	f.selections = append(f.selections, s)
	return nil
}

func (f *fakeRecords) GetSelection(context.Context, string) (*store.Selection, error) {
	return nil, nil
}

func (f *fakeRecords) PutSelectionItem(_ context.Context, item *store.SelectionItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.itemCalls++
	f.order = append(f.order, "item")
	if f.itemFail[item.ImageName] {
		return errBoom
	}
	f.items[item.ImageName] = item
	return nil
}

func (f *fakeRecords) MarkSelectionAvailable(_ context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.order = append(f.order, "event")
	f.marked = append(f.marked, eventID)
	return f.markErr
}

type fakeNotifier struct {
	got []events.SelectionAvailable
	err error
}

func (f *fakeNotifier) SelectionAvailable(_ context.Context, e events.SelectionAvailable) error {
	f.got = append(f.got, e)
	return f.err
}

// writeFiles creates files with their name as content.
func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

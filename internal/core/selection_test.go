package core

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// fakeFetcher serves canned tables and counts fetches per year.
type fakeFetcher struct {
	mu     sync.Mutex
	tables map[int]ListingTable
	errs   map[int]error
	calls  map[int]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		tables: make(map[int]ListingTable),
		errs:   make(map[int]error),
		calls:  make(map[int]int),
	}
}

func (f *fakeFetcher) FetchListing(_ context.Context, year int) (ListingTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[year]++
	return f.tables[year], f.errs[year]
}

func (f *fakeFetcher) callCount(year int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[year]
}

// fakeDocs serves canned PDF bytes by URL and counts fetches.
type fakeDocs struct {
	mu    sync.Mutex
	data  map[string][]byte
	calls int
}

func (f *fakeDocs) FetchDocument(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	b, ok := f.data[url]
	if !ok {
		return nil, &FetchFailedError{Status: 404, URL: url}
	}
	return b, nil
}

func (f *fakeDocs) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func teslaTable() ListingTable {
	return ListingTable{
		{Manufacturer: "Tesla", Name: "Recall 23V-001", LetterDate: "2023-05-01", URL: "https://x/a.pdf"},
		{Manufacturer: "Tesla", Name: "Recall 23V-002", LetterDate: "2023-06-01", URL: "https://x/b.pdf"},
		{Manufacturer: "Ford", Name: "Recall 23V-100", LetterDate: "2023-04-01", URL: "https://x/c.pdf"},
	}
}

func newTestService(t *testing.T) (*Service, *fakeFetcher, *fakeDocs, string) {
	t.Helper()
	fetcher := newFakeFetcher()
	fetcher.tables[2023] = teslaTable()
	fetcher.tables[2022] = ListingTable{
		{Manufacturer: "BMW", Name: "Recall 22V-001", LetterDate: "2022-01-01", URL: "https://x/d.pdf"},
	}
	docs := &fakeDocs{data: map[string][]byte{
		"https://x/b.pdf": []byte("%PDF-1.4 fake"),
	}}
	svc := NewService(fetcher, docs, 0)
	return svc, fetcher, docs, svc.EnsureSession("")
}

func TestEnsureSession(t *testing.T) {
	svc, _, _, id := newTestService(t)

	if got := svc.EnsureSession(id); got != id {
		t.Errorf("EnsureSession(live) = %q, want %q", got, id)
	}
	if got := svc.EnsureSession("nonsense"); got == "nonsense" {
		t.Error("EnsureSession kept an unknown ID")
	}
	if svc.SessionCount() != 2 {
		t.Errorf("SessionCount = %d, want 2", svc.SessionCount())
	}
}

func TestSelectYear_DerivesMakes(t *testing.T) {
	svc, _, _, id := newTestService(t)

	if err := svc.SelectYear(context.Background(), id, 2023); err != nil {
		t.Fatalf("SelectYear: %v", err)
	}

	state, err := svc.State(id)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if state.Year != 2023 {
		t.Errorf("Year = %d, want 2023", state.Year)
	}
	want := []string{"Ford", "Tesla"}
	if len(state.Makes) != 2 || state.Makes[0] != want[0] || state.Makes[1] != want[1] {
		t.Errorf("Makes = %v, want %v", state.Makes, want)
	}
	if state.EmptyListing {
		t.Error("EmptyListing = true for a populated year")
	}
}

func TestSelectYear_OutOfRange(t *testing.T) {
	svc, _, _, id := newTestService(t)

	if err := svc.SelectYear(context.Background(), id, 1900); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("SelectYear(1900) = %v, want ErrInvalidSelection", err)
	}
}

func TestSelectYear_Memoized(t *testing.T) {
	svc, fetcher, _, id := newTestService(t)
	ctx := context.Background()

	for _, year := range []int{2023, 2022, 2023} {
		if err := svc.SelectYear(ctx, id, year); err != nil {
			t.Fatalf("SelectYear(%d): %v", year, err)
		}
	}
	// A second session hits the same cache.
	other := svc.EnsureSession("")
	if err := svc.SelectYear(ctx, other, 2023); err != nil {
		t.Fatalf("SelectYear on second session: %v", err)
	}

	if got := fetcher.callCount(2023); got != 1 {
		t.Errorf("fetch count for 2023 = %d, want 1", got)
	}
	if got := fetcher.callCount(2022); got != 1 {
		t.Errorf("fetch count for 2022 = %d, want 1", got)
	}
}

func TestCascade_ClearsDownstream(t *testing.T) {
	svc, _, _, id := newTestService(t)
	ctx := context.Background()

	if err := svc.SelectYear(ctx, id, 2023); err != nil {
		t.Fatal(err)
	}
	if err := svc.SelectMake(id, "Tesla"); err != nil {
		t.Fatal(err)
	}
	if err := svc.SelectVersion(id, "Recall 23V-002 (2023-06-01)"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Document(ctx, id); err != nil {
		t.Fatal(err)
	}

	// New make clears version and document.
	if err := svc.SelectMake(id, "Ford"); err != nil {
		t.Fatal(err)
	}
	state, _ := svc.State(id)
	if state.Version != "" || state.Document != nil {
		t.Errorf("after SelectMake: version = %q, document = %v, want both cleared", state.Version, state.Document)
	}

	// New year clears everything downstream.
	if err := svc.SelectMake(id, "Ford"); err != nil {
		t.Fatal(err)
	}
	if err := svc.SelectYear(ctx, id, 2022); err != nil {
		t.Fatal(err)
	}
	state, _ = svc.State(id)
	if state.Make != "" || state.Version != "" || state.Document != nil {
		t.Errorf("after SelectYear: make = %q, version = %q, document = %v, want all cleared",
			state.Make, state.Version, state.Document)
	}
}

func TestSelect_ReselectSameValueIsNoOp(t *testing.T) {
	svc, _, _, id := newTestService(t)
	ctx := context.Background()

	if err := svc.SelectYear(ctx, id, 2023); err != nil {
		t.Fatal(err)
	}
	if err := svc.SelectMake(id, "Tesla"); err != nil {
		t.Fatal(err)
	}
	if err := svc.SelectVersion(id, "Recall 23V-001 (2023-05-01)"); err != nil {
		t.Fatal(err)
	}

	if err := svc.SelectMake(id, "Tesla"); err != nil {
		t.Fatal(err)
	}
	state, _ := svc.State(id)
	if state.Version != "Recall 23V-001 (2023-05-01)" {
		t.Errorf("reselecting the same make cleared version: %q", state.Version)
	}
}

func TestSelect_OrderEnforced(t *testing.T) {
	svc, _, _, id := newTestService(t)

	if err := svc.SelectMake(id, "Tesla"); !errors.Is(err, ErrNoYear) {
		t.Errorf("SelectMake before year = %v, want ErrNoYear", err)
	}
	if err := svc.SelectVersion(id, "whatever"); !errors.Is(err, ErrNoMake) {
		t.Errorf("SelectVersion before make = %v, want ErrNoMake", err)
	}
	if _, err := svc.Document(context.Background(), id); !errors.Is(err, ErrNoYear) {
		t.Errorf("Document before selections = %v, want ErrNoYear", err)
	}
}

func TestSelect_RejectsUnknownOptions(t *testing.T) {
	svc, _, _, id := newTestService(t)
	ctx := context.Background()

	if err := svc.SelectYear(ctx, id, 2023); err != nil {
		t.Fatal(err)
	}
	if err := svc.SelectMake(id, "DeLorean"); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("SelectMake(unknown) = %v, want ErrInvalidSelection", err)
	}
	if err := svc.SelectMake(id, "Tesla"); err != nil {
		t.Fatal(err)
	}
	// A label from another make's option set is just as invalid.
	if err := svc.SelectVersion(id, "Recall 23V-100 (2023-04-01)"); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("SelectVersion(foreign label) = %v, want ErrInvalidSelection", err)
	}
}

func TestEmptyListing_DistinctFromNoYear(t *testing.T) {
	svc, fetcher, _, id := newTestService(t)
	fetcher.tables[2020] = ListingTable{}

	state, _ := svc.State(id)
	if state.EmptyListing {
		t.Error("EmptyListing = true before any year is selected")
	}

	if err := svc.SelectYear(context.Background(), id, 2020); err != nil {
		t.Fatalf("SelectYear: %v", err)
	}
	state, _ = svc.State(id)
	if !state.EmptyListing {
		t.Error("EmptyListing = false for a year with zero rows")
	}
	if len(state.Makes) != 0 {
		t.Errorf("Makes = %v, want empty", state.Makes)
	}
}

func TestSelectYear_FetchErrorKeepsPartialAndRetries(t *testing.T) {
	svc, fetcher, _, id := newTestService(t)
	partial := ListingTable{{Manufacturer: "Tesla", Name: "Partial", LetterDate: "2021-01-01", URL: "https://x/p.pdf"}}
	fetcher.tables[2021] = partial
	fetcher.errs[2021] = &ListingFetchError{Year: 2021, Page: 2, Err: errors.New("boom")}

	err := svc.SelectYear(context.Background(), id, 2021)
	var listingErr *ListingFetchError
	if !errors.As(err, &listingErr) {
		t.Fatalf("SelectYear = %v, want *ListingFetchError", err)
	}

	// Partial rows stay usable.
	state, _ := svc.State(id)
	if len(state.Makes) != 1 || state.Makes[0] != "Tesla" {
		t.Errorf("Makes after partial fetch = %v, want [Tesla]", state.Makes)
	}

	// Failed fetches are not memoized, so reselecting retries.
	fetcher.errs[2021] = nil
	if err := svc.SelectYear(context.Background(), id, 2021); err != nil {
		t.Fatalf("retry SelectYear: %v", err)
	}
	if got := fetcher.callCount(2021); got != 2 {
		t.Errorf("fetch count for 2021 = %d, want 2", got)
	}
}

func TestDocument_FetchedOnceAndCached(t *testing.T) {
	svc, _, docs, id := newTestService(t)
	ctx := context.Background()

	if err := svc.SelectYear(ctx, id, 2023); err != nil {
		t.Fatal(err)
	}
	if err := svc.SelectMake(id, "Tesla"); err != nil {
		t.Fatal(err)
	}
	if err := svc.SelectVersion(id, "Recall 23V-002 (2023-06-01)"); err != nil {
		t.Fatal(err)
	}

	doc, err := svc.Document(ctx, id)
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if doc.Filename != "2023_Tesla_Recall_23V-002.pdf" {
		t.Errorf("Filename = %q, want %q", doc.Filename, "2023_Tesla_Recall_23V-002.pdf")
	}
	if string(doc.Bytes) != "%PDF-1.4 fake" {
		t.Errorf("Bytes = %q, want fake PDF content", doc.Bytes)
	}

	if _, err := svc.Document(ctx, id); err != nil {
		t.Fatalf("second Document: %v", err)
	}
	if got := docs.callCount(); got != 1 {
		t.Errorf("document fetch count = %d, want 1", got)
	}

	state, _ := svc.State(id)
	if state.Document == nil || !state.Document.Loaded {
		t.Errorf("state.Document = %v, want loaded", state.Document)
	}
}

func TestDocument_FetchFailedLeavesCacheEmpty(t *testing.T) {
	svc, _, docs, id := newTestService(t)
	ctx := context.Background()

	if err := svc.SelectYear(ctx, id, 2023); err != nil {
		t.Fatal(err)
	}
	if err := svc.SelectMake(id, "Tesla"); err != nil {
		t.Fatal(err)
	}
	// a.pdf is not in the fake's data, so the fetch 404s.
	if err := svc.SelectVersion(id, "Recall 23V-001 (2023-05-01)"); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Document(ctx, id)
	var fetchFailed *FetchFailedError
	if !errors.As(err, &fetchFailed) {
		t.Fatalf("Document = %v, want *FetchFailedError", err)
	}
	if fetchFailed.Status != 404 {
		t.Errorf("Status = %d, want 404", fetchFailed.Status)
	}

	state, _ := svc.State(id)
	if state.Document == nil {
		t.Fatal("state.Document = nil, want direct-link fallback info")
	}
	if state.Document.Loaded {
		t.Error("Loaded = true after a failed fetch")
	}
	if state.Document.DirectURL != "https://x/a.pdf" {
		t.Errorf("DirectURL = %q, want the row URL", state.Document.DirectURL)
	}

	// Each access retries; nothing was cached.
	if _, err := svc.Document(ctx, id); err == nil {
		t.Error("expected second Document call to fail again")
	}
	if got := docs.callCount(); got != 2 {
		t.Errorf("document fetch count = %d, want 2", got)
	}
}

func TestDocument_NotFoundOnStaleLabel(t *testing.T) {
	svc, _, _, id := newTestService(t)
	ctx := context.Background()

	if err := svc.SelectYear(ctx, id, 2023); err != nil {
		t.Fatal(err)
	}
	if err := svc.SelectMake(id, "Tesla"); err != nil {
		t.Fatal(err)
	}
	if err := svc.SelectVersion(id, "Recall 23V-002 (2023-06-01)"); err != nil {
		t.Fatal(err)
	}

	// Simulate the table being refreshed out from under the label.
	svc.mu.RLock()
	sess := svc.sessions[id]
	svc.mu.RUnlock()
	sess.mu.Lock()
	sess.table = ListingTable{
		{Manufacturer: "Tesla", Name: "Recall 24V-500", LetterDate: "2024-01-01", URL: "https://x/z.pdf"},
	}
	sess.mu.Unlock()

	if _, err := svc.Document(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Document = %v, want ErrNotFound", err)
	}
}

func TestDocument_NoVersionSelected(t *testing.T) {
	svc, _, _, id := newTestService(t)
	ctx := context.Background()

	if err := svc.SelectYear(ctx, id, 2023); err != nil {
		t.Fatal(err)
	}
	if err := svc.SelectMake(id, "Tesla"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Document(ctx, id); !errors.Is(err, ErrNoVersion) {
		t.Errorf("Document without version = %v, want ErrNoVersion", err)
	}
}

func TestState_UnknownSession(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	if _, err := svc.State("not-a-session"); !errors.Is(err, ErrNoSession) {
		t.Errorf("State(unknown) = %v, want ErrNoSession", err)
	}
}

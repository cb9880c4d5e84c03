package terminal

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/BrandonKowalski/gabagool/v2/pkg/gabagool/router"

	"github.com/swelljoe/skycast/internal/messages"
	"github.com/swelljoe/skycast/internal/session"
	"github.com/swelljoe/skycast/internal/views"
	"github.com/swelljoe/skycast/internal/weather"
)

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

type fakeFetcher struct {
	mu        sync.Mutex
	calls     []string
	snap      *weather.Snapshot
	err       error
	block     bool
	cancelled chan struct{}
}

func (f *fakeFetcher) Current(ctx context.Context, city string) (*weather.Snapshot, error) {
	f.mu.Lock()
	f.calls = append(f.calls, city)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		close(f.cancelled)
		return nil, ctx.Err()
	}
	return f.snap, f.err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type harness struct {
	t     *testing.T
	in    *io.PipeWriter
	out   *syncBuffer
	state *session.State
	done  chan error
}

func start(t *testing.T, ctx context.Context, state *session.State, fetcher weather.Fetcher) *harness {
	t.Helper()

	texts, err := messages.Load("en")
	if err != nil {
		t.Fatalf("messages.Load() error = %v", err)
	}
	results := views.NewResults(fetcher, texts, slog.New(slog.NewTextHandler(io.Discard, nil)))

	pr, pw := io.Pipe()
	h := &harness{t: t, in: pw, out: &syncBuffer{}, state: state, done: make(chan error, 1)}
	term := New(pr, h.out, state, results, texts)
	go func() { h.done <- term.Run(ctx) }()
	t.Cleanup(func() { pw.Close() })
	return h
}

func (h *harness) send(line string) {
	h.t.Helper()
	if _, err := io.WriteString(h.in, line+"\n"); err != nil {
		h.t.Fatalf("write %q: %v", line, err)
	}
}

// waitFor blocks until substr has appeared n times in the output.
func (h *harness) waitFor(substr string, n int) {
	h.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for strings.Count(h.out.String(), substr) < n {
		if time.Now().After(deadline) {
			h.t.Fatalf("timed out waiting for %q (x%d); output:\n%s", substr, n, h.out.String())
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func (h *harness) wait() error {
	h.t.Helper()
	select {
	case err := <-h.done:
		return err
	case <-time.After(2 * time.Second):
		h.t.Fatalf("Run did not return; output:\n%s", h.out.String())
		return nil
	}
}

func TestTerminal_SearchAndBack(t *testing.T) {
	fetcher := &fakeFetcher{snap: &weather.Snapshot{City: "Paris", TempC: 25, Humidity: 40, WindSpeed: 3.6, Condition: "Clear"}}
	h := start(t, context.Background(), &session.State{}, fetcher)

	h.waitFor("Enter city name: ", 1)
	h.send("   ")
	h.waitFor("City name cannot be empty.", 1)
	h.waitFor("Enter city name: ", 2)
	if fetcher.callCount() != 0 {
		t.Fatal("fetched after an invalid submit")
	}

	h.send("Paris")
	h.waitFor("Search Another City", 1)

	out := h.out.String()
	for _, want := range []string{"Weather in Paris", "Loading weather...", "Temperature: 25°C / 77.0°F", "Humidity: 40%", "Wind Speed: 3.6 m/s", "Condition: Clear"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// Back keeps the last city as the default.
	h.send("")
	h.waitFor("Enter city name [Paris]: ", 1)
	if h.state.City() != "Paris" {
		t.Errorf("session city = %q, want Paris", h.state.City())
	}

	// Enter on the pre-filled field searches it again, with a fresh fetch.
	h.send("")
	h.waitFor("Search Another City", 2)
	if fetcher.callCount() != 2 {
		t.Errorf("fetches = %d, want 2", fetcher.callCount())
	}

	h.send(QuitCommand)
	if err := h.wait(); err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
}

func TestTerminal_FetchFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: weather.ErrUpstream}
	h := start(t, context.Background(), session.New("Atlantis"), fetcher)

	h.waitFor("Enter city name [Atlantis]: ", 1)
	h.send("")
	h.waitFor("Failed to fetch weather data.", 1)
	if strings.Contains(h.out.String(), "weather provider error") {
		t.Error("underlying error shown to the user")
	}

	h.in.Close()
	if err := h.wait(); err != nil {
		t.Errorf("Run() = %v, want nil at EOF", err)
	}
	if h.state.City() != "Atlantis" {
		t.Errorf("session city = %q, want Atlantis", h.state.City())
	}
}

func TestTerminal_BackWhileLoadingCancels(t *testing.T) {
	fetcher := &fakeFetcher{block: true, cancelled: make(chan struct{})}
	h := start(t, context.Background(), &session.State{}, fetcher)

	h.waitFor("Enter city name: ", 1)
	h.send("Lima")
	h.waitFor("Loading weather...", 1)
	deadline := time.Now().Add(2 * time.Second)
	for fetcher.callCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("fetch never started")
		}
		time.Sleep(2 * time.Millisecond)
	}

	h.send("")
	select {
	case <-fetcher.cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight fetch was not cancelled")
	}
	h.waitFor("Enter city name [Lima]: ", 1)

	if strings.Contains(h.out.String(), "Failed to fetch weather data.") {
		t.Error("cancelled fetch reported as a failure")
	}

	h.send(QuitCommand)
	if err := h.wait(); err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
}

func TestTerminal_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := start(t, ctx, &session.State{}, &fakeFetcher{})

	h.waitFor("Enter city name: ", 1)
	cancel()
	if err := h.wait(); err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
}

func TestTransition(t *testing.T) {
	term := &Terminal{ctx: context.Background()}

	tests := []struct {
		name      string
		from      router.Screen
		result    any
		stack     func() *router.Stack
		wantNext  router.Screen
		wantStack int
	}{
		{
			name:      "search submitted",
			from:      ScreenSearch,
			result:    searchResult{},
			stack:     router.NewStack,
			wantNext:  ScreenResults,
			wantStack: 1,
		},
		{
			name:      "search quit",
			from:      ScreenSearch,
			result:    searchResult{quit: true},
			stack:     router.NewStack,
			wantNext:  router.ScreenExit,
			wantStack: 0,
		},
		{
			name:   "results back",
			from:   ScreenResults,
			result: resultsResult{action: resultsBack},
			stack: func() *router.Stack {
				s := router.NewStack()
				s.Push(ScreenSearch, nil, nil)
				return s
			},
			wantNext:  ScreenSearch,
			wantStack: 0,
		},
		{
			name:      "results redirect with empty stack",
			from:      ScreenResults,
			result:    resultsResult{action: resultsRedirect},
			stack:     router.NewStack,
			wantNext:  ScreenSearch,
			wantStack: 0,
		},
		{
			name:      "results quit",
			from:      ScreenResults,
			result:    resultsResult{action: resultsQuit},
			stack:     router.NewStack,
			wantNext:  router.ScreenExit,
			wantStack: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stack := tt.stack()
			next, _ := term.transition(tt.from, tt.result, stack)
			if next != tt.wantNext {
				t.Errorf("next = %d, want %d", next, tt.wantNext)
			}
			if stack.Len() != tt.wantStack {
				t.Errorf("stack len = %d, want %d", stack.Len(), tt.wantStack)
			}
		})
	}
}

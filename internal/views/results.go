package views

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"go.uber.org/atomic"

	"github.com/swelljoe/skycast/internal/messages"
	"github.com/swelljoe/skycast/internal/session"
	"github.com/swelljoe/skycast/internal/weather"
)

// Status is where an Activation is in its lifecycle.
type Status int

const (
	StatusLoading Status = iota
	StatusSuccess
	StatusError
	// StatusRedirect means there was no city; the frontend goes back to Search.
	StatusRedirect
	// StatusCancelled means the view was left before the fetch finished and
	// its outcome was discarded.
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	case StatusRedirect:
		return "redirect"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Results shows the weather for the session's city.
type Results struct {
	fetcher weather.Fetcher
	texts   Texts
	logger  *slog.Logger
}

func NewResults(fetcher weather.Fetcher, texts Texts, logger *slog.Logger) *Results {
	if logger == nil {
		logger = slog.Default()
	}
	return &Results{fetcher: fetcher, texts: texts, logger: logger}
}

// Activate enters the view for the city held by state. The returned
// Activation is scoped to ctx: cancelling ctx, or calling Cancel, abandons it.
// Nothing is fetched until Run or Start is called.
func (r *Results) Activate(ctx context.Context, state session.Reader) *Activation {
	ctx, cancel := context.WithCancel(ctx)
	a := &Activation{
		results: r,
		city:    state.City(),
		ctx:     ctx,
		cancel:  cancel,
		status:  StatusLoading,
		done:    make(chan struct{}),
	}
	if strings.TrimSpace(a.city) == "" {
		a.status = StatusRedirect
		a.started.Store(true)
		a.finished.Store(true)
		cancel()
		close(a.done)
	}
	return a
}

// Activation is one entry into the Results view. It performs at most one
// fetch and leaves the loading state at most once.
type Activation struct {
	results *Results
	city    string
	ctx     context.Context
	cancel  context.CancelFunc

	started  atomic.Bool
	finished atomic.Bool
	done     chan struct{}

	mu       sync.Mutex
	status   Status
	snapshot *weather.Snapshot
	errMsg   string
	onDone   []func(*Activation)
}

func (a *Activation) City() string { return a.city }

// Redirect reports whether the view should send the user back to Search
// instead of fetching.
func (a *Activation) Redirect() bool { return a.Status() == StatusRedirect }

func (a *Activation) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *Activation) Loading() bool { return a.Status() == StatusLoading }

// Snapshot is the fetched weather, nil unless the status is StatusSuccess.
func (a *Activation) Snapshot() *weather.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot
}

// Error is the user-facing failure message, empty unless StatusError.
func (a *Activation) Error() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.errMsg
}

// Fahrenheit is the converted temperature for display. ok is false when
// there is no snapshot.
func (a *Activation) Fahrenheit() (string, bool) {
	snap := a.Snapshot()
	if snap == nil {
		return "", false
	}
	return snap.FormatFahrenheit(), true
}

// OnDone registers fn to run once loading ends in success or error. It is
// not called for redirected or cancelled activations. Register before Run.
func (a *Activation) OnDone(fn func(*Activation)) {
	a.mu.Lock()
	a.onDone = append(a.onDone, fn)
	a.mu.Unlock()
}

// Done is closed when the activation reaches any final status.
func (a *Activation) Done() <-chan struct{} { return a.done }

// Cancel abandons the activation. An in-flight request is aborted and a
// late outcome is dropped.
func (a *Activation) Cancel() {
	a.cancel()
	a.finish(StatusCancelled, nil, "")
}

// Start runs the fetch in the background.
func (a *Activation) Start() {
	go a.Run()
}

// Run performs the fetch and blocks until the activation is final. Calls
// after the first are no-ops.
func (a *Activation) Run() {
	if !a.started.CompareAndSwap(false, true) {
		<-a.done
		return
	}
	defer a.cancel()

	if a.ctx.Err() != nil {
		a.finish(StatusCancelled, nil, "")
		return
	}

	snap, err := a.results.fetcher.Current(a.ctx, a.city)
	if a.ctx.Err() != nil {
		a.finish(StatusCancelled, nil, "")
		return
	}
	if err != nil {
		a.results.logger.Error("weather fetch failed", "city", a.city, "err", err)
		a.finish(StatusError, nil, a.results.texts.Text(messages.FetchFailed))
		return
	}

	a.results.logger.Debug("weather fetched", "city", a.city, "temp_c", snap.TempC)
	a.finish(StatusSuccess, snap, "")
}

func (a *Activation) finish(status Status, snap *weather.Snapshot, errMsg string) {
	if !a.finished.CompareAndSwap(false, true) {
		return
	}

	a.mu.Lock()
	a.status = status
	a.snapshot = snap
	a.errMsg = errMsg
	observers := a.onDone
	a.onDone = nil
	a.mu.Unlock()

	if status == StatusSuccess || status == StatusError {
		for _, fn := range observers {
			fn(a)
		}
	}
	close(a.done)
}

// View is a point-in-time copy of an Activation for rendering.
type View struct {
	City       string
	Status     Status
	Loading    bool
	Error      string
	Snapshot   *weather.Snapshot
	Fahrenheit string
}

func (a *Activation) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()

	v := View{
		City:     a.city,
		Status:   a.status,
		Loading:  a.status == StatusLoading,
		Error:    a.errMsg,
		Snapshot: a.snapshot,
	}
	if a.snapshot != nil {
		v.Fahrenheit = a.snapshot.FormatFahrenheit()
	}
	return v
}

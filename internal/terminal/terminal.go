// Package terminal runs the search and results views as a line-oriented
// program over a reader and a writer.
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/BrandonKowalski/gabagool/v2/pkg/gabagool/router"

	"github.com/swelljoe/skycast/internal/messages"
	"github.com/swelljoe/skycast/internal/session"
	"github.com/swelljoe/skycast/internal/views"
)

const (
	ScreenSearch router.Screen = iota
	ScreenResults
)

// QuitCommand ends the program from any prompt.
const QuitCommand = ":q"

type searchResult struct {
	quit bool
}

type resultsAction int

const (
	resultsBack resultsAction = iota
	resultsRedirect
	resultsQuit
)

type resultsResult struct {
	action resultsAction
}

// Terminal owns the single session State for the process.
type Terminal struct {
	state   *session.State
	results *views.Results
	texts   views.Catalog
	out     io.Writer
	lines   <-chan string
	ctx     context.Context
}

func New(in io.Reader, out io.Writer, state *session.State, results *views.Results, texts views.Catalog) *Terminal {
	return &Terminal{
		state:   state,
		results: results,
		texts:   texts,
		out:     out,
		lines:   readLines(in),
	}
}

// readLines feeds in to a channel one line at a time so a screen can wait
// on input and a fetch together. The channel closes at EOF.
func readLines(in io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			ch <- scanner.Text()
		}
	}()
	return ch
}

// Run starts at the search screen and returns when the user quits, input
// ends or ctx is cancelled.
func (t *Terminal) Run(ctx context.Context) error {
	t.ctx = ctx

	r := router.New()
	r.Register(ScreenSearch, func(any) (any, error) {
		return t.searchScreen(), nil
	})
	r.Register(ScreenResults, func(any) (any, error) {
		return t.resultsScreen(), nil
	})
	r.OnTransition(t.transition)

	return r.Run(ScreenSearch, nil)
}

func (t *Terminal) transition(from router.Screen, result any, stack *router.Stack) (router.Screen, any) {
	if t.ctx.Err() != nil {
		return router.ScreenExit, nil
	}

	switch from {
	case ScreenSearch:
		if result.(searchResult).quit {
			return router.ScreenExit, nil
		}
		stack.Push(ScreenSearch, nil, nil)
		return ScreenResults, nil

	case ScreenResults:
		if result.(resultsResult).action == resultsQuit {
			return router.ScreenExit, nil
		}
		if entry := stack.Pop(); entry != nil {
			return entry.Screen, entry.Input
		}
		return ScreenSearch, nil
	}
	return router.ScreenExit, nil
}

// next waits for a line. ok is false at EOF or on cancellation.
func (t *Terminal) next() (string, bool) {
	select {
	case <-t.ctx.Done():
		return "", false
	case line, ok := <-t.lines:
		return line, ok
	}
}

func (t *Terminal) printf(format string, args ...any) {
	fmt.Fprintf(t.out, format, args...)
}

// searchScreen prompts until a valid city is submitted. Pressing Enter on an
// empty line submits the pre-filled city, as an untouched form field would.
func (t *Terminal) searchScreen() searchResult {
	search := views.NewSearch(t.state, t.texts)
	t.printf("\n%s\n", t.texts.Text(messages.AppTitle))

	for {
		prefilled := strings.TrimSpace(search.Input) != ""
		if prefilled {
			t.printf("%s [%s]: ", t.texts.Text(messages.CityPlaceholder), search.Input)
		} else {
			t.printf("%s: ", t.texts.Text(messages.CityPlaceholder))
		}

		line, ok := t.next()
		if !ok || strings.TrimSpace(line) == QuitCommand {
			return searchResult{quit: true}
		}
		if line == "" && prefilled {
			line = search.Input
		}

		if search.Submit(line) {
			return searchResult{}
		}
		t.printf("%s\n", search.Error)
	}
}

// resultsScreen fetches in the background while still accepting input, so
// the user can go back before the fetch completes.
func (t *Terminal) resultsScreen() resultsResult {
	activation := t.results.Activate(t.ctx, t.state)
	if activation.Redirect() {
		return resultsResult{action: resultsRedirect}
	}
	defer activation.Cancel()

	t.printf("\n%s\n", t.texts.Format(messages.ResultsTitle, map[string]any{"City": activation.City()}))
	t.printf("%s\n", t.texts.Text(messages.Loading))
	activation.Start()

	select {
	case <-activation.Done():
	case line, ok := <-t.lines:
		if !ok || strings.TrimSpace(line) == QuitCommand {
			return resultsResult{action: resultsQuit}
		}
		return resultsResult{action: resultsBack}
	case <-t.ctx.Done():
		return resultsResult{action: resultsQuit}
	}

	t.printView(activation.View())
	t.printf("[Enter] %s, %s to quit\n", t.texts.Text(messages.SearchAnother), QuitCommand)

	line, ok := t.next()
	if !ok || strings.TrimSpace(line) == QuitCommand {
		return resultsResult{action: resultsQuit}
	}
	return resultsResult{action: resultsBack}
}

func (t *Terminal) printView(v views.View) {
	if v.Error != "" {
		t.printf("%s\n", v.Error)
		return
	}
	if v.Snapshot == nil {
		return
	}
	t.printf("  %s: %v°C / %s°F\n", t.texts.Text(messages.TemperatureLabel), v.Snapshot.TempC, v.Fahrenheit)
	t.printf("  %s: %d%%\n", t.texts.Text(messages.HumidityLabel), v.Snapshot.Humidity)
	t.printf("  %s: %v m/s\n", t.texts.Text(messages.WindLabel), v.Snapshot.WindSpeed)
	t.printf("  %s: %s\n", t.texts.Text(messages.ConditionLabel), v.Snapshot.Condition)
}

package views

import (
	"strings"

	"github.com/swelljoe/skycast/internal/messages"
	"github.com/swelljoe/skycast/internal/session"
)

// Search is the city entry form.
type Search struct {
	state *session.State
	texts Texts

	// Input is the text field's value. It starts as the last searched city.
	Input string
	// Error is the inline validation message, empty when there is none.
	Error string
}

func NewSearch(state *session.State, texts Texts) *Search {
	return &Search{
		state: state,
		texts: texts,
		Input: state.City(),
	}
}

// Submit validates input. A blank value sets Error and returns false with no
// state change. Anything else clears Error, stores input in the session as
// typed and returns true, meaning navigate to Results.
func (s *Search) Submit(input string) bool {
	s.Input = input
	if strings.TrimSpace(input) == "" {
		s.Error = s.texts.Text(messages.EmptyCity)
		return false
	}

	s.Error = ""
	s.state.SetCity(input)
	return true
}

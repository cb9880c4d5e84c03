// Package views implements the two screens shared by the web and terminal
// frontends: Search, which validates a city name and records it in the
// session, and Results, which fetches and presents the weather for it.
//
// Neither view renders anything itself. Each exposes a small state value that
// a frontend turns into HTML or terminal output.
package views

// Texts resolves user-facing message IDs. *messages.Catalog satisfies it.
type Texts interface {
	Text(id string) string
}

// Catalog adds templated messages to Texts for frontends that render titles.
type Catalog interface {
	Texts
	Format(id string, data map[string]any) string
}

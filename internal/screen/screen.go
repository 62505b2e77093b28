package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/mezotv/skill-tree/internal/session"
	"github.com/mezotv/skill-tree/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Leaver is implemented by screens that release state when they are
// popped off the stack.
type Leaver interface {
	Leave()
}

// StateMsg carries a new session snapshot to the active screen.
type StateMsg struct {
	State session.State
}

// ErrMsg reports a failure from a background command.
type ErrMsg struct {
	Err error
}

package browser

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jonastieppo/SimpleAIAgentRequest/internal/agent"
)

const (
	ActionNext     = "load_next_image"
	ActionPrevious = "load_previous_image"
)

// ErrNoImage is returned when nothing has been loaded yet.
var ErrNoImage = errors.New("no image loaded")

// Image is one entry in the browsing history.
type Image struct {
	URL         string    `json:"url"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Source yields a new image each time it is asked.
type Source interface {
	Next(ctx context.Context) (Image, error)
}

// DefaultCatalog lists the navigation actions offered to the model.
func DefaultCatalog() agent.Catalog {
	return agent.Catalog{
		{Name: ActionNext, Description: "Show the next image, fetching a new one when at the end of the history"},
		{Name: ActionPrevious, Description: "Go back to the previously shown image"},
	}
}

// State is a snapshot of the navigator.
type State struct {
	Current   *Image `json:"current,omitempty"`
	Index     int    `json:"index"`
	Total     int    `json:"total"`
	CanGoBack bool   `json:"can_go_back"`
}

// Navigator keeps the image history and the position within it.
type Navigator struct {
	source  Source
	mu      sync.Mutex
	history []Image
	index   int
}

// NewNavigator returns an empty navigator backed by source.
func NewNavigator(source Source) *Navigator {
	return &Navigator{source: source, index: -1}
}

// LoadNext moves forward through history, fetching a new image past its end.
// Any forward history beyond the current position is dropped when a new image arrives.
func (n *Navigator) LoadNext(ctx context.Context) (State, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.index+1 < len(n.history) {
		n.index++
		return n.stateLocked(), nil
	}
	if n.source == nil {
		return n.stateLocked(), errors.New("image source not configured")
	}
	img, err := n.source.Next(ctx)
	if err != nil {
		logrus.WithError(err).Warn("fetch next image")
		return n.stateLocked(), err
	}
	n.history = append(n.history[:n.index+1], img)
	n.index = len(n.history) - 1
	return n.stateLocked(), nil
}

// LoadPrevious steps back one image; at the start of history it does nothing.
func (n *Navigator) LoadPrevious(ctx context.Context) (State, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.index > 0 {
		n.index--
	}
	return n.stateLocked(), nil
}

// Dispatch runs the navigation action named by action. handled is false for
// names the navigator does not know, including agent.UnknownAction.
func (n *Navigator) Dispatch(ctx context.Context, action string) (state State, handled bool, err error) {
	switch action {
	case ActionNext:
		state, err = n.LoadNext(ctx)
		return state, true, err
	case ActionPrevious:
		state, err = n.LoadPrevious(ctx)
		return state, true, err
	default:
		return n.State(), false, nil
	}
}

// Current returns the image on display.
func (n *Navigator) Current() (Image, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.index < 0 || n.index >= len(n.history) {
		return Image{}, ErrNoImage
	}
	return n.history[n.index], nil
}

// CanGoBack mirrors the enabled state of a "previous" button.
func (n *Navigator) CanGoBack() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.index > 0
}

// History returns a copy of every image loaded so far.
func (n *Navigator) History() []Image {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Image, len(n.history))
	copy(out, n.history)
	return out
}

// State returns a snapshot of the current position.
func (n *Navigator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stateLocked()
}

func (n *Navigator) stateLocked() State {
	state := State{Index: n.index, Total: len(n.history), CanGoBack: n.index > 0}
	if n.index >= 0 && n.index < len(n.history) {
		img := n.history[n.index]
		state.Current = &img
	}
	return state
}

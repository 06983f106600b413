package delegate

import (
	"golang.org/x/net/html"

	"github.com/vango-dev/isodom/pkg/dom"
	"github.com/vango-dev/isodom/pkg/scope"
)

// Event is the synthetic event delivered to one registered listener.
// Target is the node the native event was fired at; CurrentTarget is the
// ancestor being visited when the listener matched.
type Event struct {
	Type          string
	Target        *html.Node
	CurrentTarget *html.Node

	// Path is the scope path of the listener receiving the event.
	Path scope.Path

	// Native is the wrapped document event. It is shared by every synthetic
	// event of one occurrence.
	Native *dom.Event
}

// StopPropagation stops the walk after the current node. Listeners matching
// the current node still receive the event.
func (e *Event) StopPropagation() {
	e.Native.StopPropagation()
}

// PropagationStopped reports whether any listener stopped this occurrence.
func (e *Event) PropagationStopped() bool {
	return e.Native.Stopped()
}

// PreventDefault marks the native event as handled.
func (e *Event) PreventDefault() {
	e.Native.PreventDefault()
}

// Detail returns the payload attached when the event was dispatched.
func (e *Event) Detail() map[string]any {
	return e.Native.Detail
}

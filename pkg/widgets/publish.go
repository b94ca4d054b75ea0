package widgets

import "github.com/goliatone/go-formkit/pkg/controls"

// PublishFunc writes a widget's normalized value into its owning slot.
// Widgets stay decoupled from the control graph through it, which also keeps
// them trivially testable.
type PublishFunc func(value any) error

// SlotPublisher binds a publish function to one control graph slot.
func SlotPublisher(graph *controls.Graph, key string) PublishFunc {
	return func(value any) error {
		return graph.SetValue(key, value)
	}
}

// discard is used when a widget is constructed without a publisher.
func discard(any) error { return nil }

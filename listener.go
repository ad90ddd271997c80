// seehuhn.de/go/maprender - a streaming map renderer
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package maprender

import (
	"sync"

	"seehuhn.de/go/maprender/feature"
	"seehuhn.de/go/maprender/internal/logging"
)

// Listener receives progress events from a [Renderer].
//
// Events of one layer arrive in feature order, on the goroutine which
// renders that layer. Different layers may be rendered concurrently, so
// implementations must be safe for concurrent use.
type Listener interface {
	// FeatureRendered is called once for every feature which has been
	// painted by one feature type style, even if no symbolizer applied.
	FeatureRendered(layer string, f *feature.Feature)

	// Error is called for a feature which could not be painted, and once
	// for a layer which had to be aborted. In the latter case f is nil.
	Error(layer string, err error, f *feature.Feature)
}

// ListenerFuncs adapts a pair of functions to the [Listener] interface.
// Nil functions are ignored.
type ListenerFuncs struct {
	OnFeature func(layer string, f *feature.Feature)
	OnError   func(layer string, err error, f *feature.Feature)
}

// FeatureRendered implements [Listener].
func (l ListenerFuncs) FeatureRendered(layer string, f *feature.Feature) {
	if l.OnFeature != nil {
		l.OnFeature(layer, f)
	}
}

// Error implements [Listener].
func (l ListenerFuncs) Error(layer string, err error, f *feature.Feature) {
	if l.OnError != nil {
		l.OnError(layer, err, f)
	}
}

// EventKind distinguishes the two kinds of render events.
type EventKind int

// These are the supported event kinds.
const (
	FeatureRendered EventKind = iota
	ErrorOccurred
)

func (k EventKind) String() string {
	if k == ErrorOccurred {
		return "error"
	}
	return "feature"
}

// Event is a render event, as recorded by [EventLog].
type Event struct {
	Kind    EventKind
	Layer   string
	Feature *feature.Feature
	Err     error
}

// EventLog is a Listener which records all events.
// The zero value is ready to use.
type EventLog struct {
	mu     sync.Mutex
	events []Event
}

// FeatureRendered implements [Listener].
func (l *EventLog) FeatureRendered(layer string, f *feature.Feature) {
	l.add(Event{Kind: FeatureRendered, Layer: layer, Feature: f})
}

// Error implements [Listener].
func (l *EventLog) Error(layer string, err error, f *feature.Feature) {
	l.add(Event{Kind: ErrorOccurred, Layer: layer, Feature: f, Err: err})
}

func (l *EventLog) add(e Event) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

// Events returns a copy of the recorded events, in arrival order.
func (l *EventLog) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	res := make([]Event, len(l.events))
	copy(res, l.events)
	return res
}

// Errors returns the recorded error events.
func (l *EventLog) Errors() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var res []Event
	for _, e := range l.events {
		if e.Kind == ErrorOccurred {
			res = append(res, e)
		}
	}
	return res
}

// Count returns the number of recorded events of the given kind.
func (l *EventLog) Count(kind EventKind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// listeners dispatches events to a fixed list of listeners, in
// registration order. Panics in listeners are recovered and logged.
type listeners []Listener

func (ls listeners) featureRendered(layer string, f *feature.Feature) {
	for _, l := range ls {
		ls.call(layer, func() { l.FeatureRendered(layer, f) })
	}
}

func (ls listeners) error(layer string, err error, f *feature.Feature) {
	for _, l := range ls {
		ls.call(layer, func() { l.Error(layer, err, f) })
	}
}

func (listeners) call(layer string, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			logging.Get().Warn("listener panicked", "layer", layer, "panic", p)
		}
	}()
	fn()
}

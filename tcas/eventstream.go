// tcas/eventstream.go
// Copyright(c) 2024-2026 tcas-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package tcas

import (
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"

	"github.com/tcas-sim/tcas/log"
)

// EventStream provides a basic pub/sub event interface that allows the
// advisory pipeline to post an event to the stream and other parts of
// the system (displays, loggers) to subscribe and receive messages from
// the stream. Events posted during a tick are delivered to every
// current subscriber that calls Get before the next tick runs;
// subscribers never see partial ticks because the pipeline posts only
// after its results are committed.
type EventStream struct {
	mu            sync.Mutex
	events        []Event
	subscriptions map[*EventsSubscription]interface{}
	lg            *log.Logger
}

type EventsSubscription struct {
	stream *EventStream
	// offset is offset in the EventStream stream array up to which the
	// subscriber has consumed events so far.
	offset int
	source string
}

func (e *EventsSubscription) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("offset", e.offset),
		slog.String("source", e.source))
}

func NewEventStream(lg *log.Logger) *EventStream {
	return &EventStream{
		subscriptions: make(map[*EventsSubscription]interface{}),
		lg:            lg,
	}
}

// Subscribe registers a new subscriber to the stream and returns an
// EventsSubscription for the subscriber that can then be used to fetch
// events.
func (e *EventStream) Subscribe() *EventsSubscription {
	// Record the subscriber's callsite, so that we can more easily debug
	// subscribers that aren't consuming events.
	_, fn, line, _ := runtime.Caller(1)
	source := fmt.Sprintf("%s:%d", fn, line)

	sub := &EventsSubscription{
		stream: e,
		offset: len(e.events),
		source: source,
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.subscriptions[sub] = nil
	return sub
}

// Unsubscribe removes a subscriber from the subscriber list
func (e *EventsSubscription) Unsubscribe() {
	e.stream.mu.Lock()
	defer e.stream.mu.Unlock()

	if _, ok := e.stream.subscriptions[e]; !ok {
		e.stream.lg.Errorf("Attempted to unsubscribe invalid subscription: %+v", e)
	}
	delete(e.stream.subscriptions, e)
	e.stream = nil
}

// Post adds an event to the event stream.
func (e *EventStream) Post(event Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lg.Debug("posted event", slog.Any("event", event))

	// Ignore the event if no one's paying attention.
	if len(e.subscriptions) > 0 {
		e.events = append(e.events, event)
	}
}

// Get returns all of the events from the stream since the last time Get
// was called for the subscription. Note that events posted before a
// subscriber was registered are never reported to it.
func (e *EventsSubscription) Get() []Event {
	e.stream.mu.Lock()
	defer e.stream.mu.Unlock()

	if _, ok := e.stream.subscriptions[e]; !ok {
		e.stream.lg.Errorf("Attempted to get with unregistered subscription: %+v", e)
		return nil
	}

	events := slices.Clone(e.stream.events[e.offset:])
	e.offset = len(e.stream.events)

	e.stream.compact()

	return events
}

// compact reclaims storage for events that all subscribers have seen so
// that EventStream memory usage doesn't grow without bound.
func (e *EventStream) compact() {
	minOffset := len(e.events)
	for sub := range e.subscriptions {
		if sub.offset < minOffset {
			minOffset = sub.offset
		}
	}

	if len(e.events) > 1000 {
		e.lg.Warnf("EventStream length %d", len(e.events))
	}

	if minOffset > cap(e.events)/2 {
		n := len(e.events) - minOffset

		copy(e.events, e.events[minOffset:])
		e.events = e.events[:n]

		for sub := range e.subscriptions {
			sub.offset -= minOffset
		}
	}
}

// implements slog.LogValuer
func (e *EventStream) LogValue() slog.Value {
	e.mu.Lock()
	defer e.mu.Unlock()

	items := []slog.Attr{slog.Int("len", len(e.events)), slog.Int("cap", cap(e.events))}
	if len(e.events) > 0 {
		items = append(items, slog.Any("last_element", e.events[len(e.events)-1]))
	}
	for sub := range e.subscriptions {
		items = append(items, slog.Any(fmt.Sprintf("subscriber_%p", sub), sub))
	}
	return slog.GroupValue(items...)
}

///////////////////////////////////////////////////////////////////////////

type EventType int

const (
	ThreatClassChangedEvent EventType = iota
	AdvisoryIssuedEvent
	AdvisoryChangedEvent
	AdvisoryClearedEvent
	NMACEvent
	AircraftDroppedEvent
	NumEventTypes
)

func (t EventType) String() string {
	return []string{"ThreatClassChanged", "AdvisoryIssued", "AdvisoryChanged",
		"AdvisoryCleared", "NMAC", "AircraftDropped"}[t]
}

type Event struct {
	Type     EventType
	Ownship  Callsign
	Intruder Callsign
	Class    ThreatClass // ThreatClassChangedEvent
	Advisory Advisory    // Advisory*Event
	Tick     int
	Message  string
}

func (e *Event) String() string {
	switch e.Type {
	case ThreatClassChangedEvent:
		return fmt.Sprintf("%s: ownship %s intruder %s -> %s", e.Type, e.Ownship, e.Intruder, e.Class)
	case NMACEvent:
		return fmt.Sprintf("%s: ownship %s intruder %s", e.Type, e.Ownship, e.Intruder)
	case AircraftDroppedEvent:
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Ownship, e.Message)
	default:
		return fmt.Sprintf("%s: ownship %s: %s", e.Type, e.Ownship, e.Advisory)
	}
}

func (e Event) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("type", e.Type.String()), slog.Int("tick", e.Tick)}
	if e.Ownship != "" {
		attrs = append(attrs, slog.String("ownship", string(e.Ownship)))
	}
	if e.Intruder != "" {
		attrs = append(attrs, slog.String("intruder", string(e.Intruder)))
	}
	if e.Type == ThreatClassChangedEvent {
		attrs = append(attrs, slog.String("class", e.Class.String()))
	}
	if e.Type == AdvisoryIssuedEvent || e.Type == AdvisoryChangedEvent {
		attrs = append(attrs, slog.Any("advisory", e.Advisory))
	}
	if e.Message != "" {
		attrs = append(attrs, slog.String("message", e.Message))
	}
	return slog.GroupValue(attrs...)
}

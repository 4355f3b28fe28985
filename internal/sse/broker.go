// Package sse streams note change notifications to browsers as
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// EventNotesChanged is broadcast, at most once per throttle interval, after
// any note event. Clients use it to refresh lists and stats.
const EventNotesChanged = "notes.changed"

// KeepAlive is the interval between comment lines sent to idle clients.
var KeepAlive = 30 * time.Second

// RetryMillis is the reconnect delay suggested to clients on connect.
const RetryMillis = 3000

const clientBuffer = 64

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// message is one item in the broker inbox. noteEvent marks events that also
// trigger the throttled notes.changed.
type message struct {
	event     Event
	noteEvent bool
}

type clientSet map[chan []byte]struct{}

// Broker fans events out to connected clients.
//
// The client set, the event sequence and the throttle timestamp belong to a
// single loop goroutine. Registration runs as a closure on that goroutine.
type Broker struct {
	throttle time.Duration

	inbox   chan message
	control chan func(clientSet)

	stop    chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that emits notes.changed at most once per
// throttle.
func NewBroker(throttle time.Duration) *Broker {
	if throttle <= 0 {
		throttle = 2 * time.Second
	}
	b := &Broker{
		throttle: throttle,
		inbox:    make(chan message, 256),
		control:  make(chan func(clientSet)),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go b.loop()
	return b
}

// frame renders event in wire format with sequence number seq.
func frame(seq uint64, event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, "id: %d\nevent: %s\ndata: %s\n\n", seq, event.Type, payload), nil
}

func (b *Broker) loop() {
	defer close(b.stopped)

	clients := clientSet{}
	var seq uint64
	var lastChanged time.Time

	send := func(event Event) {
		seq++
		raw, err := frame(seq, event)
		if err != nil {
			return
		}
		for ch := range clients {
			select {
			case ch <- raw:
			default: // client not keeping up
			}
		}
	}

	for {
		select {
		case <-b.stop:
			for ch := range clients {
				close(ch)
			}
			return
		case fn := <-b.control:
			fn(clients)
		case m := <-b.inbox:
			send(m.event)
			if !m.noteEvent {
				continue
			}
			if now := time.Now(); now.Sub(lastChanged) >= b.throttle {
				lastChanged = now
				send(Event{Type: EventNotesChanged, Data: struct{}{}})
			}
		}
	}
}

// exec runs fn on the loop goroutine and waits for it. It reports false when
// the broker has stopped.
func (b *Broker) exec(fn func(clientSet)) bool {
	done := make(chan struct{})
	select {
	case b.control <- func(c clientSet) { fn(c); close(done) }:
		<-done
		return true
	case <-b.stopped:
		return false
	}
}

func (b *Broker) enqueue(m message) {
	if b.closed.Load() {
		return
	}
	select {
	case b.inbox <- m:
	case <-b.stopped:
	}
}

// Close stops the broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stop)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel. The channel is
// already closed when the broker has stopped.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() || !b.exec(func(c clientSet) { c[ch] = struct{}{} }) {
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	b.exec(func(c clientSet) {
		if _, ok := c[ch]; ok {
			delete(c, ch)
			close(ch)
		}
	})
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	n := 0
	if !b.closed.Load() {
		b.exec(func(c clientSet) { n = len(c) })
	}
	return n
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	b.enqueue(message{event: event})
}

// PublishNoteEvent broadcasts note.<kind> for a single note, or notes.<kind>
// when id is empty, followed by a throttled notes.changed. Its signature
// matches noteservice.EventCallback.
func (b *Broker) PublishNoteEvent(kind, id string) {
	ev := Event{Type: "notes." + kind, Data: struct{}{}}
	if id != "" {
		ev = Event{Type: "note." + kind, Data: map[string]string{"id": id}}
	}
	b.enqueue(message{event: ev, noteEvent: true})
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "retry: %d\n\n", RetryMillis)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(KeepAlive)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			_, _ = w.Write([]byte(": ping\n\n"))
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
		}
		flusher.Flush()
	}
}

package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/quocbao/facegate/internal/identity"
)

// eventChannelBuffer is the buffer size per SSE subscriber. A subscriber
// that falls further behind than this loses events rather than stalling
// the frame loop.
const eventChannelBuffer = 100

// Event is one outward event as delivered to SSE subscribers.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Event type names on the wire. They follow the field naming of the rest
// of the protocol (snake_case).
const (
	EventEnrollmentProgress = "enrollment_progress"
	EventEnrollmentResult   = "enrollment_result"
	EventRecognitionResult  = "recognition_result"
)

// Hub fans outward events out to any number of SSE subscribers. It
// implements identity.Emitter, so the dispatcher publishes through it
// directly.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]chan Event
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]chan Event)}
}

// Subscribe registers a new listener and returns its id and channel.
func (h *Hub) Subscribe() (string, <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan Event, eventChannelBuffer)
	h.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes a listener and closes its channel.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.subscribers[id]; ok {
		delete(h.subscribers, id)
		close(ch)
	}
}

// Subscribers returns the current listener count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// publish delivers an event to every subscriber without blocking; full
// subscriber buffers drop the event for that subscriber only.
func (h *Hub) publish(eventType string, data any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event := Event{Type: eventType, Data: data}
	for id, ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			log.Printf("subscriber %s is too slow, dropping %s event", id, eventType)
		}
	}
}

// EnrollmentProgress implements identity.Emitter.
func (h *Hub) EnrollmentProgress(p identity.Progress) {
	h.publish(EventEnrollmentProgress, p)
}

// EnrollmentResult implements identity.Emitter.
func (h *Hub) EnrollmentResult(e identity.Enrolled) {
	h.publish(EventEnrollmentResult, e)
}

// RecognitionResult implements identity.Emitter.
func (h *Hub) RecognitionResult(r identity.Recognition) {
	h.publish(EventRecognitionResult, r)
}

// EventsHandler serves the outward event stream over SSE.
type EventsHandler struct {
	hub *Hub
}

// NewEventsHandler creates the SSE handler over the hub.
func NewEventsHandler(hub *Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream subscribes the client and forwards events until it disconnects.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	id, events := h.hub.Subscribe()
	defer h.hub.Unsubscribe(id)

	sendSSEEvent(w, flusher, "connected", map[string]string{"subscriber": id})

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			sendSSEEvent(w, flusher, event.Type, event.Data)
		}
	}
}

// sendSSEEvent writes a single SSE event and flushes it to the client.
func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, eventType string, data any) {
	jsonData, _ := json.Marshal(data)
	_, _ = io.WriteString(w, "event: "+eventType+"\n")
	_, _ = io.WriteString(w, "data: ")
	_, _ = io.Copy(w, bytes.NewReader(jsonData))
	_, _ = io.WriteString(w, "\n\n")
	flusher.Flush()
}

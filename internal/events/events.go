// Package events carries catalog and upload notifications from the library
// packages to whoever is listening, without blocking the publisher.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/mediastore/mediastore-cli/internal/constants"
)

// EventType names an event. Subscribers filter on it.
type EventType string

const (
	EventProgress EventType = "progress"
	EventError    EventType = "error"

	// Catalog lifecycle
	EventCatalogLoaded EventType = "catalog_loaded" // Cache replaced by a successful load
	EventCatalogFailed EventType = "catalog_failed" // Load failed, cache reset to empty

	// Upload batch lifecycle
	EventUploadStarted       EventType = "upload_started"        // Batch accepted
	EventUploadFileCompleted EventType = "upload_file_completed" // One file classified
	EventUploadFileFailed    EventType = "upload_file_failed"    // One file failed
	EventUploadCompleted     EventType = "upload_completed"      // Every file attempted
)

// Event is implemented by every event published on the bus.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent carries the type and publish time shared by all events.
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

func newBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, Time: time.Now()}
}

// ProgressEvent represents byte progress of one file upload
type ProgressEvent struct {
	BaseEvent
	Name         string
	Index        int // 1-based position in the batch
	Total        int
	BytesCurrent int64
	BytesTotal   int64
	Message      string
}

// ErrorEvent reports a failure not tied to a batch, e.g. a reporter error.
type ErrorEvent struct {
	BaseEvent
	Name  string
	Error error
}

// CatalogEvent is published after every catalog load attempt.
type CatalogEvent struct {
	BaseEvent
	Records  int
	Duration time.Duration
	Error    error // Set for EventCatalogFailed
}

// UploadFileEvent reports the result of one file in a batch.
type UploadFileEvent struct {
	BaseEvent
	BatchID   string
	Index     int // 1-based
	Total     int
	Name      string
	Category  string
	Extension string
	Error     error
}

// UploadBatchEvent brackets an upload batch.
type UploadBatchEvent struct {
	BaseEvent
	BatchID      string
	Total        int
	SuccessCount int
	FailedCount  int
	Message      string
	Duration     time.Duration
}

// EventBus fans events out to subscriber channels.
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event // Subscribers to all events
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64 // Count of dropped events due to full buffers
}

// NewEventBus creates a bus whose subscriber channels hold bufferSize events.
// Zero or less selects the default; the size is capped.
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe returns a buffered channel receiving events of eventType. On a
// closed bus the channel is already closed.
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	return eb.subscribe(func(ch chan Event) {
		eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	})
}

// SubscribeAll returns a buffered channel receiving every event.
func (eb *EventBus) SubscribeAll() <-chan Event {
	return eb.subscribe(func(ch chan Event) {
		eb.all = append(eb.all, ch)
	})
}

func (eb *EventBus) subscribe(register func(chan Event)) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	register(ch)
	return ch
}

// Publish sends an event to all subscribers without blocking. Events that do
// not fit a subscriber's buffer are dropped and counted.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// Close closes every subscriber channel. Later publishes are ignored.
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}
	for _, ch := range eb.all {
		close(ch)
	}
}

// PublishProgress is a convenience method for publishing progress events
func (eb *EventBus) PublishProgress(name string, index, total int, current, size int64) {
	eb.Publish(&ProgressEvent{
		BaseEvent:    newBase(EventProgress),
		Name:         name,
		Index:        index,
		Total:        total,
		BytesCurrent: current,
		BytesTotal:   size,
	})
}

// PublishCatalog publishes EventCatalogLoaded, or EventCatalogFailed when err is set.
func (eb *EventBus) PublishCatalog(records int, duration time.Duration, err error) {
	t := EventCatalogLoaded
	if err != nil {
		t = EventCatalogFailed
	}
	eb.Publish(&CatalogEvent{
		BaseEvent: newBase(t),
		Records:   records,
		Duration:  duration,
		Error:     err,
	})
}

// PublishUploadFile publishes EventUploadFileCompleted, or EventUploadFileFailed when err is set.
func (eb *EventBus) PublishUploadFile(batchID string, index, total int, name, category, extension string, err error) {
	t := EventUploadFileCompleted
	if err != nil {
		t = EventUploadFileFailed
	}
	eb.Publish(&UploadFileEvent{
		BaseEvent: newBase(t),
		BatchID:   batchID,
		Index:     index,
		Total:     total,
		Name:      name,
		Category:  category,
		Extension: extension,
		Error:     err,
	})
}

// PublishUploadBatch publishes a batch bracket event (started or completed).
func (eb *EventBus) PublishUploadBatch(t EventType, batchID string, total, success, failed int, message string, duration time.Duration) {
	eb.Publish(&UploadBatchEvent{
		BaseEvent:    newBase(t),
		BatchID:      batchID,
		Total:        total,
		SuccessCount: success,
		FailedCount:  failed,
		Message:      message,
		Duration:     duration,
	})
}

// Unsubscribe stops delivering eventType to ch. The channel is not closed.
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}
	eb.subscribers[eventType] = removeChan(eb.subscribers[eventType], ch)
}

// UnsubscribeAll stops delivering anything to ch, whether it came from
// Subscribe or SubscribeAll. The channel is not closed.
func (eb *EventBus) UnsubscribeAll(ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}
	for eventType, list := range eb.subscribers {
		eb.subscribers[eventType] = removeChan(list, ch)
	}
	eb.all = removeChan(eb.all, ch)
}

// removeChan drops the first occurrence of ch. Order is not kept.
func removeChan(list []chan Event, ch <-chan Event) []chan Event {
	for i, c := range list {
		if c == ch {
			last := len(list) - 1
			list[i] = list[last]
			return list[:last]
		}
	}
	return list
}

// GetDroppedEventCount returns how many events did not fit a subscriber buffer.
func (eb *EventBus) GetDroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}

// ResetDroppedEventCount zeroes the counter and returns the previous value.
func (eb *EventBus) ResetDroppedEventCount() int64 {
	return eb.droppedEvents.Swap(0)
}

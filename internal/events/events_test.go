package events

import (
	"errors"
	"testing"
	"time"
)

func TestEventBus_PublishSubscribe(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventProgress)

	bus.Publish(&ProgressEvent{
		BaseEvent:    BaseEvent{EventType: EventProgress, Time: time.Now()},
		Name:         "cat.png",
		Index:        1,
		Total:        3,
		BytesCurrent: 512,
		BytesTotal:   1024,
	})

	select {
	case received := <-ch:
		progress, ok := received.(*ProgressEvent)
		if !ok {
			t.Fatal("Expected ProgressEvent")
		}
		if progress.Name != "cat.png" {
			t.Errorf("Expected name 'cat.png', got '%s'", progress.Name)
		}
		if progress.BytesCurrent != 512 {
			t.Errorf("Expected 512 bytes, got %d", progress.BytesCurrent)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for event")
	}
}

func TestEventBus_MultipleSubscribers(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch1 := bus.Subscribe(EventCatalogLoaded)
	ch2 := bus.Subscribe(EventCatalogLoaded)

	bus.PublishCatalog(4, time.Millisecond, nil)

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case <-ch:
		case <-time.After(100 * time.Millisecond):
			t.Errorf("subscriber %d did not receive the event", i+1)
		}
	}
}

func TestEventBus_DifferentEventTypes(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	loadedCh := bus.Subscribe(EventCatalogLoaded)
	failedCh := bus.Subscribe(EventCatalogFailed)

	bus.PublishCatalog(0, time.Millisecond, errors.New("connection refused"))

	select {
	case ev := <-failedCh:
		catalog := ev.(*CatalogEvent)
		if catalog.Error == nil {
			t.Error("expected error on failed catalog event")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("failed subscriber didn't receive event")
	}

	select {
	case <-loadedCh:
		t.Error("loaded subscriber received wrong event type")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventBus_SubscribeAll(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	allCh := bus.SubscribeAll()

	bus.PublishUploadBatch(EventUploadStarted, "batch-1", 2, 0, 0, "", 0)
	bus.PublishUploadFile("batch-1", 1, 2, "a.png", "Images", "png", nil)

	count := 0
	for i := 0; i < 2; i++ {
		select {
		case <-allCh:
			count++
		case <-time.After(100 * time.Millisecond):
		}
	}

	if count != 2 {
		t.Errorf("Expected to receive 2 events, got %d", count)
	}
}

func TestEventBus_NonBlocking(t *testing.T) {
	bus := NewEventBus(2)
	defer bus.Close()

	ch := bus.Subscribe(EventProgress)

	for i := 0; i < 10; i++ {
		bus.PublishProgress("big.mp4", 1, 1, int64(i), 10)
	}

	count := 0
	for {
		select {
		case <-ch:
			count++
		case <-time.After(10 * time.Millisecond):
			goto done
		}
	}
done:

	if count != 2 {
		t.Errorf("expected the 2 buffered events, got %d", count)
	}
	if dropped := bus.GetDroppedEventCount(); dropped != 8 {
		t.Errorf("expected 8 dropped events, got %d", dropped)
	}
	if reset := bus.ResetDroppedEventCount(); reset != 8 || bus.GetDroppedEventCount() != 0 {
		t.Errorf("reset returned %d, counter now %d", reset, bus.GetDroppedEventCount())
	}
}

func TestEventBus_Close(t *testing.T) {
	bus := NewEventBus(10)

	ch := bus.Subscribe(EventProgress)

	bus.Close()

	if _, ok := <-ch; ok {
		t.Error("Channel should be closed after bus.Close()")
	}

	// Publishing and subscribing after close must not panic
	bus.PublishProgress("x", 1, 1, 0, 0)
	if _, ok := <-bus.Subscribe(EventProgress); ok {
		t.Error("Subscribe after Close should return a closed channel")
	}
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	ch := bus.Subscribe(EventUploadFileFailed)
	bus.Unsubscribe(EventUploadFileFailed, ch)

	bus.PublishUploadFile("b", 1, 1, "x.txt", "", "", errors.New("400"))

	select {
	case <-ch:
		t.Error("unsubscribed channel received an event")
	case <-time.After(30 * time.Millisecond):
	}
}

func TestConvenienceMethods(t *testing.T) {
	bus := NewEventBus(10)
	defer bus.Close()

	fileCh := bus.Subscribe(EventUploadFileCompleted)
	failCh := bus.Subscribe(EventUploadFileFailed)
	doneCh := bus.Subscribe(EventUploadCompleted)

	bus.PublishUploadFile("batch-7", 1, 2, "orders.json", "NoSQL", "json", nil)
	bus.PublishUploadFile("batch-7", 2, 2, "bad.exe", "", "", errors.New("unsupported"))
	bus.PublishUploadBatch(EventUploadCompleted, "batch-7", 2, 1, 1, "1 uploaded, 1 failed", time.Second)

	select {
	case ev := <-fileCh:
		file := ev.(*UploadFileEvent)
		if file.Category != "NoSQL" || file.Extension != "json" {
			t.Errorf("unexpected classification %s/%s", file.Category, file.Extension)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timeout waiting for file event")
	}

	select {
	case ev := <-failCh:
		if ev.(*UploadFileEvent).Name != "bad.exe" {
			t.Error("unexpected failed file")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timeout waiting for failure event")
	}

	select {
	case ev := <-doneCh:
		batch := ev.(*UploadBatchEvent)
		if batch.SuccessCount != 1 || batch.FailedCount != 1 || batch.Message != "1 uploaded, 1 failed" {
			t.Errorf("unexpected batch event %+v", batch)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timeout waiting for batch event")
	}
}

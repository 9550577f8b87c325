package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"pet-care-reminders/internal/adapters/storage/memory"
	"pet-care-reminders/internal/domain/reminders"
)

func mockClient(hub *Hub, owner string) *Client {
	return &Client{hub: hub, owner: owner, send: make(chan []byte, sendBufferSize)}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(nil)
	a := mockClient(hub, "ana@example.com")
	b := mockClient(hub, "ana@example.com")

	hub.Register(a)
	hub.Register(b)
	if got := hub.ClientCount("ana@example.com"); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(a)
	hub.Unregister(a)
	if got := hub.ClientCount("ana@example.com"); got != 1 {
		t.Fatalf("expected 1 client, got %d", got)
	}

	hub.Unregister(b)
	if got := hub.ClientCount("ana@example.com"); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestPublish_OnlyToOwner(t *testing.T) {
	hub := NewHub(nil)
	ana := mockClient(hub, "ana@example.com")
	bob := mockClient(hub, "bob@example.com")
	hub.Register(ana)
	hub.Register(bob)
	defer hub.Unregister(ana)
	defer hub.Unregister(bob)

	hub.Publish("ana@example.com", Message{Type: TypeSnapshotPublished, Version: 3, Count: 1})

	select {
	case data := <-ana.send:
		var got Message
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Type != TypeSnapshotPublished || got.Version != 3 || got.Count != 1 {
			t.Fatalf("unexpected message: %+v", got)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
	}

	select {
	case <-bob.send:
		t.Fatal("other owner should not receive the message")
	default:
	}
}

func TestPublish_FullBufferDrops(t *testing.T) {
	hub := NewHub(nil)
	c := mockClient(hub, "o")
	hub.Register(c)
	defer hub.Unregister(c)

	for i := 0; i < sendBufferSize+3; i++ {
		hub.Publish("o", Message{Type: TypeSnapshotPublished, Version: uint64(i)})
	}

	if got := len(c.send); got != sendBufferSize {
		t.Fatalf("expected %d buffered messages, got %d", sendBufferSize, got)
	}
}

func TestAttach_PublishesOnRepositoryChanges(t *testing.T) {
	hub := NewHub(nil)
	c := mockClient(hub, "ana@example.com")
	hub.Register(c)
	defer hub.Unregister(c)

	sessions := reminders.NewSessions(func(owner string) *reminders.Repository {
		return reminders.NewRepository(owner, memory.NewRemindersStore(), nil)
	})
	sessions.OnOpen(hub.Attach)

	sess, err := sessions.Open(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	_, err = sess.SubmitDraft(context.Background(), reminders.Draft{
		Title:    "Deworming",
		Category: string(reminders.CategoryMedication),
		DueAt:    "2030-01-01T10:00",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// refresh inicial + add
	var last Message
	for i := 0; i < 2; i++ {
		select {
		case data := <-c.send:
			if err := json.Unmarshal(data, &last); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("timeout waiting for message %d", i)
		}
	}
	if last.Version != 2 || last.Count != 1 {
		t.Fatalf("unexpected last message: %+v", last)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(nil)
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub, "o")
			hub.Register(c)
			hub.Publish("o", Message{Type: TypeSnapshotPublished})
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}()
	}
	wg.Wait()

	if got := hub.ClientCount("o"); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

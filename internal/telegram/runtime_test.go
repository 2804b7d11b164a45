package telegram

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/quailyquaily/text2cw/internal/bot"
	"github.com/quailyquaily/text2cw/internal/dispatch"
)

type recordingHandler struct {
	mu      sync.Mutex
	events  []bot.Event
	release chan struct{}
	seen    chan struct{}
}

func (h *recordingHandler) HandleEvent(ctx context.Context, ev bot.Event, out bot.Replier) {
	h.mu.Lock()
	h.events = append(h.events, ev)
	h.mu.Unlock()
	_ = out.SendText(ctx, "echo "+ev.Text, dispatch.KeyboardKeep)
	h.seen <- struct{}{}
	if h.release != nil {
		<-h.release
	}
}

func message(updateID, userID int64, text string) Update {
	return Update{UpdateID: updateID, Message: &Message{
		MessageID: updateID * 10,
		Chat:      &Chat{ID: userID, Type: "private"},
		From:      &User{ID: userID, FirstName: "Ada"},
		Text:      text,
	}}
}

func waitSeen(t *testing.T, ch <-chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-time.After(5 * time.Second):
			t.Fatalf("handled %d events, want %d", i, n)
		}
	}
}

func TestRunDispatchesInOrderAndFilters(t *testing.T) {
	t.Parallel()

	f, api := newFake(t)
	bad := message(4, 99, "intruder")
	robot := message(5, 7, "beep")
	robot.Message.From.IsBot = true
	sticker := message(6, 7, "")
	f.updates = [][]Update{
		{message(1, 7, "/start"), message(2, 7, "hello"), bad, robot},
		{message(3, 8, "/start"), sticker},
	}
	h := &recordingHandler{seen: make(chan struct{}, 16)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, api, h, RunOptions{
			PollTimeout:    time.Second,
			AllowedUserIDs: map[int64]bool{7: true, 8: true},
		})
	}()
	waitSeen(t, h.seen, 4)
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	var user7 []string
	nonText := 0
	for _, ev := range h.events {
		if ev.UserID == "99" {
			t.Fatalf("unauthorized user was handled")
		}
		if ev.NonText {
			nonText++
			continue
		}
		if ev.UserID == "7" {
			user7 = append(user7, ev.Text)
		}
	}
	if len(user7) != 2 || user7[0] != "/start" || user7[1] != "hello" {
		t.Fatalf("user 7 events = %v, want in order", user7)
	}
	if nonText != 1 {
		t.Fatalf("non text events = %d, want 1", nonText)
	}
	if got := len(f.byMethod("sendMessage")); got != 4 {
		t.Fatalf("sendMessage calls = %d, want 4", got)
	}
}

func TestRunRepliesBusyWhenQueueIsFull(t *testing.T) {
	t.Parallel()

	f, api := newFake(t)
	f.push(message(1, 7, "one"))
	h := &recordingHandler{seen: make(chan struct{}, 16), release: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, api, h, RunOptions{PollTimeout: time.Second, QueueSize: 1})
	}()
	waitSeen(t, h.seen, 1)
	// "one" is running, so "two" fills the queue and "three" is rejected.
	f.push(message(2, 7, "two"), message(3, 7, "three"))

	deadline := time.After(5 * time.Second)
	for {
		busy := 0
		for _, c := range f.byMethod("sendMessage") {
			if c.json["text"] == msgBusy {
				busy++
			}
		}
		if busy == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("no busy reply sent")
		case <-time.After(5 * time.Millisecond):
		}
	}
	close(h.release)
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestJobFromUpdate(t *testing.T) {
	t.Parallel()

	j, ok := jobFromUpdate(message(3, 42, "  cq cq  "))
	if !ok {
		t.Fatalf("jobFromUpdate() ok = false")
	}
	if j.chatID != 42 || j.event.UserID != "42" || j.event.MessageID != "30" || j.event.Text != "cq cq" || j.event.FirstName != "Ada" {
		t.Fatalf("jobFromUpdate() = %+v", j)
	}
	if _, ok := jobFromUpdate(Update{UpdateID: 1}); ok {
		t.Fatalf("jobFromUpdate(no message) ok = true")
	}
}

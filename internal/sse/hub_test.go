package sse

import (
	"testing"
	"time"

	"github.com/mcoot/undercover/internal/model"
	"github.com/mcoot/undercover/internal/testutil"
)

func TestFormatSSEMessage(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		data      string
		expected  string
	}{
		{
			name:      "single line data",
			eventName: "test-event",
			data:      "hello world",
			expected:  "event: test-event\ndata: hello world\n\n",
		},
		{
			name:      "multi-line data",
			eventName: "message",
			data:      "{\n  \"a\": 1\n}",
			expected:  "event: message\ndata: {\ndata:   \"a\": 1\ndata: }\n\n",
		},
		{
			name:      "empty data",
			eventName: "ping",
			data:      "",
			expected:  "event: ping\ndata: \n\n",
		},
		{
			name:      "data with carriage returns",
			eventName: "test",
			data:      "line1\r\nline2",
			expected:  "event: test\ndata: line1\ndata: line2\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatSSEMessage(tt.eventName, tt.data)
			if string(result) != tt.expected {
				t.Errorf("formatSSEMessage(%q, %q)\ngot:  %q\nwant: %q",
					tt.eventName, tt.data, string(result), tt.expected)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "single line", input: "hello", expected: []string{"hello"}},
		{name: "two lines", input: "line1\nline2", expected: []string{"line1", "line2"}},
		{name: "trailing newline", input: "line1\n", expected: []string{"line1"}},
		{name: "empty string", input: "", expected: []string{""}},
		{name: "crlf line endings", input: "line1\r\nline2\r\n", expected: []string{"line1", "line2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitLines(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("splitLines(%q) returned %d lines, want %d",
					tt.input, len(result), len(tt.expected))
				return
			}
			for i, line := range result {
				if line != tt.expected[i] {
					t.Errorf("splitLines(%q)[%d] = %q, want %q",
						tt.input, i, line, tt.expected[i])
				}
			}
		})
	}
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub("ROOM01", testutil.NopLogger())
	go hub.Run()
	t.Cleanup(hub.Close)
	return hub
}

func registerClient(t *testing.T, hub *Hub, playerID model.PlayerID) *Client {
	t.Helper()
	client := NewClient(hub, playerID)
	if !hub.Register(client) {
		t.Fatalf("Register(%s) rejected by open hub", playerID)
	}
	return client
}

func receive(t *testing.T, client *Client) (model.Event, bool) {
	t.Helper()
	select {
	case event, ok := <-client.send:
		return event, ok
	case <-time.After(time.Second):
		t.Fatalf("client %s did not receive an event", client.playerID)
		return model.Event{}, false
	}
}

func expectNothing(t *testing.T, client *Client) {
	t.Helper()
	select {
	case event := <-client.send:
		t.Errorf("client %s received unexpected %s", client.playerID, event.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := newTestHub(t)
	client := registerClient(t, hub, "player1")

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.Broadcast(model.Event{Type: model.EventPlayerJoined, RoomID: "ROOM01"})

	event, ok := receive(t, client)
	if !ok || event.Type != model.EventPlayerJoined {
		t.Errorf("client received %q (open=%v), want player_joined", event.Type, ok)
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := newTestHub(t)
	client := registerClient(t, hub, "player1")

	hub.Unregister(client)

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after unregister, want 0", hub.ClientCount())
	}
	if _, ok := <-client.send; ok {
		t.Error("send channel still open after unregister")
	}

	// A second unregister must not close the channel again
	hub.Unregister(client)
}

func TestHub_BroadcastToMultipleClients(t *testing.T) {
	hub := newTestHub(t)
	clients := []*Client{
		registerClient(t, hub, "player1"),
		registerClient(t, hub, "player2"),
		registerClient(t, hub, "player3"),
	}

	hub.Broadcast(model.Event{Type: model.EventSettingsChanged})

	for i, client := range clients {
		event, _ := receive(t, client)
		if event.Type != model.EventSettingsChanged {
			t.Errorf("client %d received %q, want settings_changed", i+1, event.Type)
		}
	}
}

func TestHub_PrivateEventReachesOnlyRecipient(t *testing.T) {
	hub := newTestHub(t)
	alice := registerClient(t, hub, "alice")
	aliceTab := registerClient(t, hub, "alice")
	bob := registerClient(t, hub, "bob")

	hub.Broadcast(model.Event{Type: model.EventWordRevealed, Recipient: "alice"})

	for _, client := range []*Client{alice, aliceTab} {
		event, _ := receive(t, client)
		if event.Type != model.EventWordRevealed {
			t.Errorf("alice received %q, want word_revealed", event.Type)
		}
	}
	expectNothing(t, bob)
}

func TestHub_PreservesOrder(t *testing.T) {
	hub := newTestHub(t)
	client := registerClient(t, hub, "player1")

	types := []model.EventType{
		model.EventPlayerJoined,
		model.EventSettingsChanged,
		model.EventGameStarted,
		model.EventPlayerReported,
		model.EventGameEnded,
	}
	for _, et := range types {
		hub.Broadcast(model.Event{Type: et})
	}

	for i, want := range types {
		event, _ := receive(t, client)
		if event.Type != want {
			t.Errorf("event %d = %q, want %q", i, event.Type, want)
		}
	}
}

func TestHub_DetachDeliversPendingEventsFirst(t *testing.T) {
	hub := newTestHub(t)
	kicked := registerClient(t, hub, "kicked")
	other := registerClient(t, hub, "other")

	hub.Broadcast(model.Event{Type: model.EventKicked, Recipient: "kicked"})
	hub.Detach("kicked")

	event, ok := receive(t, kicked)
	if !ok || event.Type != model.EventKicked {
		t.Fatalf("kicked client got %q (open=%v), want kicked", event.Type, ok)
	}
	if _, ok := receive(t, kicked); ok {
		t.Error("kicked client stream still open after detach")
	}
	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}
	expectNothing(t, other)
}

func TestHub_FullClientBufferDropsInsteadOfBlocking(t *testing.T) {
	hub := newTestHub(t)
	slow := registerClient(t, hub, "slow")
	fast := registerClient(t, hub, "fast")

	for i := 0; i < sendBufferSize+10; i++ {
		hub.Broadcast(model.Event{Type: model.EventMessage})
		// Keep the fast client drained so only the slow one overflows
		if _, ok := receive(t, fast); !ok {
			t.Fatal("fast client closed")
		}
	}

	if got := len(slow.send); got != sendBufferSize {
		t.Errorf("slow client buffered %d events, want %d", got, sendBufferSize)
	}
}

func TestHub_RegisterAfterCloseFails(t *testing.T) {
	hub := NewHub("ROOM01", testutil.NopLogger())
	go hub.Run()
	client := registerClient(t, hub, "player1")

	hub.Close()
	hub.Close()

	if _, ok := <-client.send; ok {
		t.Error("client stream still open after hub close")
	}
	if hub.Register(NewClient(hub, "player2")) {
		t.Error("Register succeeded on a closed hub")
	}

	// Neither call may block once the hub is closed
	hub.Broadcast(model.Event{Type: model.EventMessage})
	hub.Detach("player1")
}

func TestHubManager_GetOrCreateHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.CloseAll()

	hub1 := manager.GetOrCreateHub("ABC123")
	if hub1 == nil {
		t.Fatal("GetOrCreateHub returned nil")
	}

	hub2 := manager.GetOrCreateHub("ABC123")
	if hub1 != hub2 {
		t.Error("GetOrCreateHub returned different hub for same room")
	}

	hub3 := manager.GetOrCreateHub("XYZ789")
	if hub3 == hub1 {
		t.Error("GetOrCreateHub returned same hub for different room")
	}
	if manager.HubCount() != 2 {
		t.Errorf("HubCount() = %d, want 2", manager.HubCount())
	}
}

func TestHubManager_GetHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.CloseAll()

	if manager.GetHub("NOTEXIST") != nil {
		t.Error("GetHub returned non-nil for non-existent hub")
	}

	created := manager.GetOrCreateHub("ABC123")
	if got := manager.GetHub("ABC123"); got != created {
		t.Error("GetHub returned different hub than GetOrCreateHub")
	}
}

func TestHubManager_RemoveHub(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())

	client := manager.Subscribe("ABC123", "player1")
	manager.RemoveHub("ABC123")

	if manager.GetHub("ABC123") != nil {
		t.Error("Hub still exists after RemoveHub")
	}
	if _, ok := <-client.Events(); ok {
		t.Error("client stream still open after RemoveHub")
	}

	// Removing non-existent hub should not panic
	manager.RemoveHub("NOTEXIST")
}

func TestHubManager_SubscribeAfterCleanup(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.CloseAll()

	stale := manager.GetOrCreateHub("ABC123")
	manager.CleanupEmptyHubs()

	client := manager.Subscribe("ABC123", "player1")
	if client.hub == stale {
		t.Error("Subscribe reused a hub removed by cleanup")
	}
	if client.RoomID() != "ABC123" || client.PlayerID() != "player1" {
		t.Errorf("client bound to %s/%s", client.RoomID(), client.PlayerID())
	}
}

func TestHubManager_CleanupEmptyHubs(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.CloseAll()

	manager.GetOrCreateHub("EMPTY")
	manager.Subscribe("ACTIVE", "player1")

	manager.CleanupEmptyHubs()

	if manager.GetHub("EMPTY") != nil {
		t.Error("Empty hub still exists after cleanup")
	}
	if manager.GetHub("ACTIVE") == nil {
		t.Error("Active hub was removed during cleanup")
	}
}

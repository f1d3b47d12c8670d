package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"pulsechat/internal/model"
)

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// newTestServer ?uid= をそのままユーザーIDとして扱うテスト用サーバー
func newTestServer(t *testing.T, hub *Hub) string {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Attach(conn, r.URL.Query().Get("uid"))
	}))
	t.Cleanup(server.Close)

	return strings.Replace(server.URL, "http://", "ws://", 1)
}

func dial(t *testing.T, url, uid string) *websocket.Conn {
	t.Helper()

	ws, _, err := websocket.DefaultDialer.Dial(url+"/?uid="+uid, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

// waitForEvent 条件に合うイベントが届くまで読み進める
func waitForEvent(t *testing.T, ws *websocket.Conn, eventType string, match func(json.RawMessage) bool) json.RawMessage {
	t.Helper()

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var f frame
		if err := ws.ReadJSON(&f); err != nil {
			t.Fatalf("Did not receive %s event: %v", eventType, err)
		}
		if f.Type == eventType && (match == nil || match(f.Data)) {
			return f.Data
		}
	}
}

func onlineUsersAre(want ...string) func(json.RawMessage) bool {
	return func(data json.RawMessage) bool {
		var ids []string
		json.Unmarshal(data, &ids)
		return strings.Join(ids, ",") == strings.Join(want, ",")
	}
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Condition not met before deadline")
}

// TestAttach_BroadcastsOnlineUsers 接続時に全員へオンライン一覧が届く（自分自身を含む）
func TestAttach_BroadcastsOnlineUsers(t *testing.T) {
	hub := NewHub()
	url := newTestServer(t, hub)

	alice := dial(t, url, "alice")
	waitForEvent(t, alice, model.EventOnlineUsers, onlineUsersAre("alice"))

	bob := dial(t, url, "bob")
	waitForEvent(t, bob, model.EventOnlineUsers, onlineUsersAre("alice", "bob"))
	waitForEvent(t, alice, model.EventOnlineUsers, onlineUsersAre("alice", "bob"))
}

// TestAttach_Anonymous ユーザーID無しの接続は登録されないがブロードキャストは受信する
func TestAttach_Anonymous(t *testing.T) {
	hub := NewHub()
	url := newTestServer(t, hub)

	anon := dial(t, url, "")
	waitForEvent(t, anon, model.EventOnlineUsers, onlineUsersAre())

	dial(t, url, "carol")
	waitForEvent(t, anon, model.EventOnlineUsers, onlineUsersAre("carol"))

	if hub.ClientCount() != 2 {
		t.Errorf("Expected 2 clients, got %d", hub.ClientCount())
	}
	if got := hub.OnlineUsers(); len(got) != 1 || got[0] != "carol" {
		t.Errorf("Anonymous connection should not be registered, got %v", got)
	}
}

// TestDeliver_OnlineReceiver オンラインの受信者にだけnewMessageが届く
func TestDeliver_OnlineReceiver(t *testing.T) {
	hub := NewHub()
	url := newTestServer(t, hub)

	bob := dial(t, url, "bob")
	waitForEvent(t, bob, model.EventOnlineUsers, onlineUsersAre("bob"))

	msg := model.Message{ID: "m1", SenderID: "alice", ReceiverID: "bob", Text: "hi", CreatedAt: time.Now().UTC()}
	if !hub.Deliver(msg) {
		t.Fatal("Deliver should report the push as queued")
	}

	data := waitForEvent(t, bob, model.EventNewMessage, nil)
	var got model.Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Invalid newMessage payload: %v", err)
	}
	if got.ID != "m1" || got.Text != "hi" || got.SenderID != "alice" || got.Image != "" {
		t.Errorf("Unexpected payload: %+v", got)
	}
}

// TestDeliver_OfflineReceiver オフラインの受信者へのプッシュは黙って捨てられる
func TestDeliver_OfflineReceiver(t *testing.T) {
	hub := NewHub()

	if hub.Deliver(model.Message{ID: "m1", SenderID: "alice", ReceiverID: "nobody", Text: "hi"}) {
		t.Error("Deliver to an offline user should report false")
	}
}

// TestDisconnect_UpdatesPresence 切断でプレゼンスが消え、残りのクライアントに通知される
func TestDisconnect_UpdatesPresence(t *testing.T) {
	hub := NewHub()
	url := newTestServer(t, hub)

	alice := dial(t, url, "alice")
	bob := dial(t, url, "bob")
	waitForEvent(t, alice, model.EventOnlineUsers, onlineUsersAre("alice", "bob"))

	bob.Close()

	waitForEvent(t, alice, model.EventOnlineUsers, onlineUsersAre("alice"))
	waitUntil(t, func() bool { return hub.ClientCount() == 1 })

	if _, ok := hub.presence.Lookup("bob"); ok {
		t.Error("Disconnected user should not be reachable")
	}
}

// TestReconnect_StaleCloseKeepsNewest 古い接続が閉じても新しい接続は残る
func TestReconnect_StaleCloseKeepsNewest(t *testing.T) {
	hub := NewHub()
	url := newTestServer(t, hub)

	first := dial(t, url, "alice")
	waitForEvent(t, first, model.EventOnlineUsers, onlineUsersAre("alice"))
	second := dial(t, url, "alice")
	waitForEvent(t, second, model.EventOnlineUsers, onlineUsersAre("alice"))

	first.Close()
	waitUntil(t, func() bool { return hub.ClientCount() == 1 })

	if got := hub.OnlineUsers(); len(got) != 1 || got[0] != "alice" {
		t.Fatalf("Newest connection should stay registered, got %v", got)
	}

	if !hub.Deliver(model.Message{ID: "m2", SenderID: "bob", ReceiverID: "alice", Text: "still there?"}) {
		t.Fatal("Deliver should reach the newest connection")
	}
	waitForEvent(t, second, model.EventNewMessage, nil)
}

// TestShutdown 全接続を閉じる
func TestShutdown(t *testing.T) {
	hub := NewHub()
	url := newTestServer(t, hub)

	dial(t, url, "alice")
	dial(t, url, "")
	waitUntil(t, func() bool { return hub.ClientCount() == 2 })

	hub.Shutdown()

	waitUntil(t, func() bool { return hub.ClientCount() == 0 })
	if len(hub.OnlineUsers()) != 0 {
		t.Error("No users should remain online after shutdown")
	}
}

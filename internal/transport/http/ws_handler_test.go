package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"trivia-session-service/internal/domain"
	"trivia-session-service/internal/game"
	"trivia-session-service/internal/infra/memory"
)

func newTestServer(t *testing.T) (*httptest.Server, *game.GameService) {
	t.Helper()
	store := memory.NewSessionStore()
	quizzes := memory.NewQuizRepository(memory.NewStaticQuizLoader(map[string]domain.Quiz{
		"quiz-1": {
			ID:      "quiz-1",
			OwnerID: "host-user",
			Questions: []domain.Question{
				{Prompt: "What is 2 + 2?", Options: []string{"3", "4", "5"}, Correct: 1, TimeLimit: 10},
			},
		},
	}), time.Minute)
	service := game.NewGameService(store, quizzes, memory.NewStatsRecorder(), nil, 0, zerolog.Nop())

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", NewWSHandler(service, zerolog.Nop()).ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, service
}

func dialWS(t *testing.T, server *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws"
	if userID != "" {
		u += "?userId=" + userID
	}
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendMsg(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": json.RawMessage(raw)}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

// waitMsg reads until a message of the wanted type arrives, failing on error
// events along the way unless the error itself is wanted.
func waitMsg(t *testing.T, conn *websocket.Conn, want string) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read while waiting for %s: %v", want, err)
		}
		if msg.Type == want {
			return msg.Payload
		}
		if msg.Type == "error" {
			t.Fatalf("unexpected error event while waiting for %s: %+v", want, msg.Payload)
		}
	}
}

func TestWebSocketFullGameFlow(t *testing.T) {
	server, service := newTestServer(t)

	code, err := service.CreateSession(context.Background(), "host-user", "quiz-1")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	host := dialWS(t, server, "host-user")
	sendMsg(t, host, "joinHost", map[string]any{"code": code})
	waitMsg(t, host, "lobby")

	player := dialWS(t, server, "")
	sendMsg(t, player, "joinPlayer", map[string]any{"code": code, "name": "Alice"})
	roster := waitMsg(t, player, "lobby")
	if entries, ok := roster["roster"].([]any); !ok || len(entries) != 2 {
		t.Fatalf("expected host and Alice in roster, got %+v", roster)
	}

	sendMsg(t, host, "start", map[string]any{"code": code})
	question := waitMsg(t, player, "questionStarted")
	if question["prompt"] != "What is 2 + 2?" {
		t.Fatalf("unexpected question: %+v", question)
	}
	waitMsg(t, host, "questionStarted")

	// The only player answers correctly: the question ends immediately.
	sendMsg(t, player, "answer", map[string]any{"code": code, "option": 1})
	ended := waitMsg(t, player, "questionEnded")
	if ended["correct"].(float64) != 1 {
		t.Fatalf("expected correct option 1, got %+v", ended)
	}
	results := ended["results"].([]any)
	if len(results) != 1 {
		t.Fatalf("expected one result, got %+v", results)
	}
	points := results[0].(map[string]any)["points"].(float64)
	if points < 900 || points > 1000 {
		t.Fatalf("expected a near-instant answer score, got %v", points)
	}
	waitMsg(t, host, "questionEnded")

	sendMsg(t, host, "next", map[string]any{"code": code})
	waitMsg(t, player, "gameEnded")
	waitMsg(t, host, "gameEnded")

	if _, ok := service.CodeStatus(code); ok {
		t.Fatalf("session still live after game ended")
	}
}

func TestDeliverAbandonsAfterWriterExit(t *testing.T) {
	send := make(chan game.Event) // nothing drains it, like a writer that exited
	writerDone := make(chan struct{})
	close(writerDone)

	done := make(chan struct{})
	go func() {
		deliver(send, writerDone, errorEvent("validation", "late"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("deliver blocked with the writer gone")
	}
}

func TestWebSocketRejectsWrongHost(t *testing.T) {
	server, service := newTestServer(t)

	code, err := service.CreateSession(context.Background(), "host-user", "quiz-1")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	imposter := dialWS(t, server, "someone-else")
	sendMsg(t, imposter, "joinHost", map[string]any{"code": code})

	_ = imposter.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg struct {
		Type    string       `json:"type"`
		Payload errorPayload `json:"payload"`
	}
	if err := imposter.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "error" || msg.Payload.Kind != "forbidden" {
		t.Fatalf("expected forbidden error, got %+v", msg)
	}
}

func TestWebSocketUnknownCode(t *testing.T) {
	server, _ := newTestServer(t)

	player := dialWS(t, server, "")
	sendMsg(t, player, "joinPlayer", map[string]any{"code": "ZZZZZZ", "name": "Alice"})

	_ = player.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg struct {
		Type    string       `json:"type"`
		Payload errorPayload `json:"payload"`
	}
	if err := player.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "error" || msg.Payload.Kind != "not_found" {
		t.Fatalf("expected not_found error, got %+v", msg)
	}
}

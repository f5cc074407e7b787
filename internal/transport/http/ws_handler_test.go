package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWebSocketTriageFlow(t *testing.T) {
	server := newTestServer(t)

	u := "ws" + server.URL[len("http"):] + "/ws?specialty=adults"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect the first question.
	_, payload := readNext(conn, t, "question")
	if currentQuestion(payload) != "adults_a1" {
		t.Fatalf("expected adults_a1, got %v", payload)
	}

	// Out-of-order answers produce an error and keep the connection open.
	sendAnswer(t, conn, "adults_b1", "Sí")
	readNext(conn, t, "error")

	sendAnswer(t, conn, "adults_a1", "No")
	_, payload = readNext(conn, t, "question")
	if currentQuestion(payload) != "adults_a2" {
		t.Fatalf("expected adults_a2, got %v", payload)
	}

	sendAnswer(t, conn, "adults_a2", "Sí")
	_, payload = readNext(conn, t, "result")
	if payload["level"] != "A" || payload["triggeringQuestionId"] != "adults_a2" {
		t.Fatalf("expected early stop result, got %v", payload)
	}
}

func TestWebSocketRejectsUnknownSpecialty(t *testing.T) {
	server := newTestServer(t)

	u := "ws" + server.URL[len("http"):] + "/ws?specialty=cardio"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 response, got %+v", resp)
	}
}

func sendAnswer(t *testing.T, conn *websocket.Conn, questionID, response string) {
	t.Helper()
	answer := map[string]any{
		"type": "answer",
		"payload": map[string]any{
			"questionId": questionID,
			"response":   response,
		},
	}
	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write answer: %v", err)
	}
}

func currentQuestion(payload map[string]any) string {
	q, _ := payload["question"].(map[string]any)
	id, _ := q["id"].(string)
	return id
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

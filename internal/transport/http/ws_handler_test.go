package http

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quiz-tournament-service/internal/domain"
)

func TestWebSocketProgressFlow(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	// Start a quiz for the participant the socket will watch.
	resp, body := doRequest(t, server, http.MethodGet, "/api/tournaments/1/questions", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start quiz: status %d body %s", resp.StatusCode, body)
	}

	wsURL := "ws" + server.URL[len("http"):] + "/ws/session?userId=101&tournamentId=1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var initial progressMessage
	if err := conn.ReadJSON(&initial); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}
	if initial.Type != "progress" {
		t.Fatalf("expected progress message, got %q", initial.Type)
	}
	if initial.Payload.CurrentQuestion != 1 || initial.Payload.TotalQuestions != 10 {
		t.Fatalf("unexpected initial snapshot: %+v", initial.Payload)
	}

	resp, body = doRequest(t, server, http.MethodPost, "/api/tournaments/1/answers",
		answerRequest{QuestionNumber: 1, Answer: "correct-1"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit answer: status %d body %s", resp.StatusCode, body)
	}

	var update progressMessage
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("read progress update: %v", err)
	}
	if update.Payload.CurrentQuestion != 2 || update.Payload.CorrectAnswers != 1 {
		t.Fatalf("unexpected update: %+v", update.Payload)
	}
}

func TestWebSocketTracksSessionToCompletion(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	resp, _ := doRequest(t, server, http.MethodGet, "/api/tournaments/1/questions", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start quiz: %d", resp.StatusCode)
	}

	wsURL := "ws" + server.URL[len("http"):] + "/ws/session?userId=101&tournamentId=1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var initial progressMessage
	if err := conn.ReadJSON(&initial); err != nil {
		t.Fatalf("read initial snapshot: %v", err)
	}

	var last domain.SessionProgress
	for i := 1; i <= 10; i++ {
		resp, _ := doRequest(t, server, http.MethodPost, "/api/tournaments/1/answers",
			answerRequest{QuestionNumber: i, Answer: fmt.Sprintf("correct-%d", i)})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("submit %d: %d", i, resp.StatusCode)
		}
		var msg progressMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read update %d: %v", i, err)
		}
		last = msg.Payload
	}
	if !last.Completed || last.CorrectAnswers != 10 {
		t.Fatalf("expected completed session with 10 correct, got %+v", last)
	}
}

func TestWebSocketRejectsUnknownSession(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	wsURL := "ws" + server.URL[len("http"):] + "/ws/session?userId=404&tournamentId=1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg wsError
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read error message: %v", err)
	}
	if msg.Type != "error" {
		t.Fatalf("expected error message, got %q", msg.Type)
	}
}

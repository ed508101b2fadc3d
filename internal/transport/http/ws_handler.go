package http

import (
	"log"
	"net/http"
	"strconv"

	"quiz-tournament-service/internal/app"
	"quiz-tournament-service/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler streams quiz-session progress over a websocket so a client can
// render a live progress bar while the participant answers.
type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type progressMessage struct {
	Type    string                 `json:"type"`
	Payload domain.SessionProgress `json:"payload"`
}

type wsError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ServeWS upgrades the request and pushes a progress snapshot after every
// answer submission until the client disconnects or the session ends.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil {
		http.Error(w, "missing or invalid userId", http.StatusBadRequest)
		return
	}
	tournamentID, err := strconv.ParseInt(r.URL.Query().Get("tournamentId"), 10, 64)
	if err != nil {
		http.Error(w, "missing or invalid tournamentId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel, err := h.service.Subscribe(r.Context(), userID, tournamentID)
	if err != nil {
		_ = conn.WriteJSON(wsError{Type: "error", Message: err.Error()})
		return
	}
	defer cancel()

	// Reader goroutine only detects the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(progressMessage{Type: "progress", Payload: update}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-done:
			return
		}
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/websocket"
)

// mock_monitor.go - Local stand-in for the monitor backend WebSocket endpoint
//
// Usage:
//   go run scripts/mock_monitor.go [addr]
//
// Example:
//   go run scripts/mock_monitor.go :9700
//
// Accepts agent connections on /ws, prints every EVENT and BATCH_EVENTS it
// receives and answers the first violation event with a violation_warning,
// which exercises the agent's inbound dispatch path.

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func main() {
	addr := ":9700"
	if len(os.Args) > 1 {
		addr = os.Args[1]
	}

	http.HandleFunc("/ws", handle)

	log.Printf("mock monitor listening on %s (agent endpoint: ws://localhost%s/ws)", addr, addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}

func handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sessionID := r.URL.Query().Get("session_id")
	userID := r.URL.Query().Get("user_id")
	log.Printf("agent connected: session=%s user=%s", sessionID, userID)

	warned := false
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Printf("agent disconnected: %v", err)
			return
		}

		var envelope struct {
			Type   string            `json:"type"`
			Event  json.RawMessage   `json:"event"`
			Events []json.RawMessage `json:"events"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			log.Printf("bad payload: %v", err)
			continue
		}

		switch envelope.Type {
		case "EVENT":
			log.Printf("EVENT %s", compact(envelope.Event))
			if !warned && isViolation(envelope.Event) {
				warned = true
				warning := map[string]string{
					"type":    "violation_warning",
					"message": "Integrity violation recorded, further violations may end the exam",
				}
				if err := conn.WriteJSON(warning); err != nil {
					log.Printf("write warning failed: %v", err)
				}
			}
		case "BATCH_EVENTS":
			log.Printf("BATCH_EVENTS with %d events", len(envelope.Events))
			for _, ev := range envelope.Events {
				log.Printf("  %s", compact(ev))
			}
		default:
			log.Printf("unknown message type %q", envelope.Type)
		}
	}
}

func isViolation(event json.RawMessage) bool {
	var ev struct {
		Type string `json:"type"`
	}
	_ = json.Unmarshal(event, &ev)
	return ev.Type == "violation"
}

func compact(raw json.RawMessage) string {
	var ev struct {
		Type     string `json:"type"`
		Sequence int64  `json:"sequence"`
	}
	if err := json.Unmarshal(raw, &ev); err != nil {
		return string(raw)
	}
	return fmt.Sprintf("seq=%d type=%s", ev.Sequence, ev.Type)
}

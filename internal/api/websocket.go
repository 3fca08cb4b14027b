package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/levelforge/server/internal/auth"
	"github.com/levelforge/server/internal/config"
	"github.com/levelforge/server/internal/streaming"
)

const (
	// Supported WebSocket protocol versions
	ProtocolVersion1 = "levelforge-v1"

	// Default ping interval (30 seconds)
	defaultPingInterval = 30 * time.Second

	// Pong wait timeout (60 seconds)
	pongWait = 60 * time.Second

	// Write timeout (10 seconds)
	writeTimeout = 10 * time.Second
)

// WebSocketMessage represents a WebSocket message
type WebSocketMessage struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// WebSocketHandlers streams generation events to connected clients.
type WebSocketHandlers struct {
	config     *config.Config
	jwtService *auth.JWTService
	streams    *streaming.Manager
	upgrader   websocket.Upgrader
}

// NewWebSocketHandlers creates a new WebSocket handlers instance
func NewWebSocketHandlers(cfg *config.Config, streams *streaming.Manager) *WebSocketHandlers {
	return &WebSocketHandlers{
		config:     cfg,
		jwtService: auth.NewJWTService(cfg),
		streams:    streams,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					// Non-browser clients send no Origin header.
					return true
				}
				for _, allowed := range allowedOrigins {
					if origin == allowed {
						return true
					}
				}
				return false
			},
		},
	}
}

// HandleWebSocket handles WebSocket connection upgrades and streams
// generation events until the client disconnects.
func (h *WebSocketHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token, err := h.extractToken(r)
	if err != nil {
		log.Printf("WebSocket authentication failed: %v", err)
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		log.Printf("WebSocket token validation failed: %v", err)
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	// Negotiate protocol version
	requestedVersions := r.Header.Get("Sec-WebSocket-Protocol")
	selectedVersion := h.negotiateVersion(requestedVersions)
	if selectedVersion == "" {
		log.Printf("WebSocket version negotiation failed: requested=%s", requestedVersions)
		http.Error(w, "Unsupported protocol version", http.StatusBadRequest)
		return
	}

	responseHeaders := http.Header{}
	responseHeaders.Set("Sec-WebSocket-Protocol", selectedVersion)

	conn, err := h.upgrader.Upgrade(w, r, responseHeaders)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	sub := h.streams.Subscribe(claims.ClientID)
	log.Printf("WebSocket connection registered: client=%s, subscription=%s, version=%s",
		claims.ClientID, sub.ID, selectedVersion)

	// All frames go out through send so only writePump touches the
	// connection's writer.
	send := make(chan []byte, 64)
	go h.writePump(conn, sub, send)
	go h.readPump(conn, sub, send)
}

// extractToken extracts JWT token from request (query param or header)
func (h *WebSocketHandlers) extractToken(r *http.Request) (string, error) {
	// Try query parameter first (common for WebSocket)
	token := r.URL.Query().Get("token")
	if token != "" {
		return token, nil
	}

	// Try Authorization header
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1], nil
		}
	}

	return "", fmt.Errorf("missing authentication token")
}

// negotiateVersion selects the highest supported protocol version
func (h *WebSocketHandlers) negotiateVersion(requested string) string {
	if requested == "" {
		// Default to v1 if no version specified
		return ProtocolVersion1
	}

	requestedVersions := strings.Split(requested, ",")
	for i := range requestedVersions {
		requestedVersions[i] = strings.TrimSpace(requestedVersions[i])
	}

	// Supported versions in order (highest first)
	supportedVersions := []string{ProtocolVersion1}

	for _, supported := range supportedVersions {
		for _, req := range requestedVersions {
			if req == supported {
				return supported
			}
		}
	}

	return ""
}

// readPump consumes incoming messages until the connection closes. Only
// ping messages are expected from clients; everything else is ignored.
func (h *WebSocketHandlers) readPump(conn *websocket.Conn, sub *streaming.Subscription, send chan<- []byte) {
	defer func() {
		h.streams.Unsubscribe(sub.ID)
		if err := conn.Close(); err != nil {
			log.Printf("Failed to close connection: %v", err)
		}
		log.Printf("WebSocket connection unregistered: client=%s", sub.ClientID)
	}()

	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set read deadline: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg WebSocketMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			continue
		}
		if msg.Type == "ping" {
			pong, err := json.Marshal(WebSocketMessage{Type: "pong", ID: msg.ID})
			if err != nil {
				continue
			}
			select {
			case send <- pong:
			default:
				log.Printf("Failed to send pong: channel full")
			}
		}
	}
}

// writePump forwards subscription events to the connection and keeps it
// alive with periodic pings.
func (h *WebSocketHandlers) writePump(conn *websocket.Conn, sub *streaming.Subscription, send <-chan []byte) {
	ticker := time.NewTicker(defaultPingInterval)
	defer func() {
		ticker.Stop()
		if err := conn.Close(); err != nil {
			log.Printf("Failed to close connection: %v", err)
		}
	}()

	for {
		select {
		case event, ok := <-sub.Events:
			if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				log.Printf("Failed to set write deadline: %v", err)
				return
			}
			if !ok {
				if err := conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					log.Printf("Failed to write close message: %v", err)
				}
				return
			}

			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("Failed to marshal event: %v", err)
				continue
			}
			msg := WebSocketMessage{Type: "generation_event", Data: data}
			messageBytes, err := json.Marshal(msg)
			if err != nil {
				log.Printf("Failed to marshal generation_event: %v", err)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, messageBytes); err != nil {
				return
			}

		case messageBytes := <-send:
			if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				log.Printf("Failed to set write deadline: %v", err)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, messageBytes); err != nil {
				return
			}

		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				log.Printf("Failed to set write deadline for ping: %v", err)
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

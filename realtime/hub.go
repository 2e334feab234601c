package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"solarena/auth"
	"solarena/lifecycle"
	"solarena/models"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 10 * time.Second
)

// Service is the slice of the session protocol the hub drives on
// behalf of connected clients.
type Service interface {
	GetSession(ctx context.Context, sessionID uint) (*models.GameSession, error)
	SubmitMove(ctx context.Context, sessionID uint, wallet string, moveData json.RawMessage) (json.RawMessage, error)
	Forfeit(ctx context.Context, sessionID uint, quitter string) (*models.GameSession, error)
}

// Hub relays session events to connected websocket clients and feeds
// client messages back into the orchestrator. Server-to-server fanout
// rides the Redis channel, so a client may connect to any instance.
type Hub struct {
	svc     Service
	channel lifecycle.Channel
	rdb     *redis.Client
	logger  *zap.Logger

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*connClient]bool
}

// connClient wraps the connection with a write lock: the relay
// subscriptions, the ping ticker and the read loop all write frames.
type connClient struct {
	*models.Client
	writeMu sync.Mutex
}

func (c *connClient) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteJSON(v)
}

func NewHub(svc Service, channel lifecycle.Channel, rdb *redis.Client, logger *zap.Logger) *Hub {
	return &Hub{
		svc:     svc,
		channel: channel,
		rdb:     rdb,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*connClient]bool),
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

type outboundMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HandleConnection upgrades an authorized request to a websocket bound
// to one game session. Auth rides the query string because browsers
// cannot set headers on websocket dials.
func (h *Hub) HandleConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var wallet string
	var sessionID uint
	if resumed := ValidateReconnectToken(ctx, h.rdb, r.URL.Query().Get("reconnect"), h.logger); resumed != nil {
		wallet = resumed.WalletAddress
		sessionID = resumed.SessionID
	} else {
		var err error
		wallet, err = auth.GetWalletFromToken(r.URL.Query().Get("token"), h.logger)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		sessionID64, err := strconv.ParseUint(r.URL.Query().Get("sessionId"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid session ID", http.StatusBadRequest)
			return
		}
		sessionID = uint(sessionID64)
	}

	session, err := h.svc.GetSession(ctx, sessionID)
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	if !session.HasParticipant(wallet) {
		http.Error(w, "Not a participant", http.StatusForbidden)
		return
	}
	role := "playerA"
	if wallet == session.PlayerB {
		role = "playerB"
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &connClient{Client: &models.Client{
		Conn:          conn,
		WalletAddress: wallet,
		SessionID:     sessionID,
		Role:          role,
	}}

	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	h.logger.Info("client connected",
		zap.String("wallet", wallet), zap.Uint("sessionID", sessionID), zap.String("role", role))

	if err := h.channel.Join(ctx, sessionID); err != nil {
		h.logger.Warn("channel join failed", zap.Uint("sessionID", sessionID), zap.Error(err))
	}

	// The request context dies as soon as this handler returns, even on
	// a hijacked connection, so everything that outlives the handler
	// runs on a context tied to the connection instead.
	connCtx, cancel := context.WithCancel(context.Background())

	// Subscribe before greeting the client, so no event published after
	// the greeting arrives can slip past.
	cancels := h.relaySessionEvents(connCtx, client)

	// A reconnect token lets the client resume after a dropped
	// connection without re-running the HTTP auth dance.
	if token, err := storeReconnectToken(ctx, client.Client, h.rdb, h.logger); err != nil {
		h.logger.Warn("reconnect token not issued", zap.Error(err))
	} else if err := client.writeJSON(map[string]string{"reconnectToken": token}); err != nil {
		h.logger.Warn("greeting write failed", zap.Error(err))
	}

	go h.pingLoop(client, cancel, cancels)
	go h.readLoop(connCtx, client)
}

// relaySessionEvents forwards every session event from the channel to
// this client's connection.
func (h *Hub) relaySessionEvents(ctx context.Context, client *connClient) []func() {
	events := []string{
		lifecycle.EventSessionActive,
		lifecycle.EventSessionCompleted,
		lifecycle.EventDepositStatus,
		lifecycle.EventMove,
		lifecycle.EventChat,
		lifecycle.EventResign,
	}
	var cancels []func()
	for _, event := range events {
		event := event
		cancel, err := h.channel.Subscribe(ctx, client.SessionID, event, func(payload []byte) {
			if err := client.writeJSON(outboundMessage{Type: event, Payload: json.RawMessage(payload)}); err != nil {
				h.logger.Warn("relay write failed",
					zap.String("event", event), zap.Uint("sessionID", client.SessionID), zap.Error(err))
			}
		})
		if err != nil {
			h.logger.Error("subscribe failed",
				zap.String("event", event), zap.Uint("sessionID", client.SessionID), zap.Error(err))
			continue
		}
		cancels = append(cancels, cancel)
	}
	return cancels
}

func (h *Hub) pingLoop(client *connClient, cancel context.CancelFunc, cancels []func()) {
	defer func() {
		cancel()
		for _, unsubscribe := range cancels {
			unsubscribe()
		}
		client.Conn.Close()
		h.mu.Lock()
		delete(h.clients, client)
		h.mu.Unlock()
		h.logger.Info("client removed", zap.String("wallet", client.WalletAddress))
	}()

	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for range ticker.C {
		client.writeMu.Lock()
		err := client.Conn.WriteMessage(websocket.PingMessage, nil)
		client.writeMu.Unlock()
		if err != nil {
			return
		}
	}
}

// readLoop consumes client frames: moves go through the orchestrator,
// chat is fanned out verbatim, resign forfeits the session.
func (h *Hub) readLoop(ctx context.Context, client *connClient) {
	for {
		_, raw, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", zap.Error(err))
			}
			client.Conn.Close()
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			client.writeJSON(outboundMessage{Type: "error", Error: "malformed message"})
			continue
		}

		switch msg.Type {
		case "move":
			state, err := h.svc.SubmitMove(ctx, client.SessionID, client.WalletAddress, msg.Data)
			if err != nil {
				client.writeJSON(outboundMessage{Type: "error", Error: err.Error()})
				continue
			}
			client.writeJSON(outboundMessage{Type: "move-accepted", Payload: json.RawMessage(state)})
		case "chat":
			payload := map[string]string{
				"from":    client.WalletAddress,
				"message": msg.Message,
			}
			if err := h.channel.Publish(ctx, client.SessionID, lifecycle.EventChat, payload); err != nil {
				h.logger.Warn("chat publish failed", zap.Error(err))
			}
		case "resign":
			if _, err := h.svc.Forfeit(ctx, client.SessionID, client.WalletAddress); err != nil {
				client.writeJSON(outboundMessage{Type: "error", Error: err.Error()})
			}
		default:
			client.writeJSON(outboundMessage{Type: "error", Error: "unknown message type"})
		}
	}
}

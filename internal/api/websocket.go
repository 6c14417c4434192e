// internal/api/websocket.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Corphon/NarrativeDNA/internal/models"
	"github.com/Corphon/NarrativeDNA/internal/services"
	"github.com/Corphon/NarrativeDNA/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = 4 << 20
	wsSendBuffer     = 16
)

// WebSocket message types.
const (
	MessageTypeProfile = "profile"
	MessageTypeError   = "error"
)

// WSMessage is the envelope of every server-to-client message on /ws/analyze.
type WSMessage struct {
	Type      string                   `json:"type"`
	Data      *models.NarrativeProfile `json:"data,omitempty"`
	Error     string                   `json:"error,omitempty"`
	Code      string                   `json:"code,omitempty"`
	Timestamp time.Time                `json:"timestamp"`
}

// WebSocketOptions 配置实时分析连接
type WebSocketOptions struct {
	// Origins follows CORS_ORIGINS; "*" or empty accepts any origin.
	Origins []string
	// Limiter is shared with the HTTP analyze routes. nil disables limiting.
	Limiter    *RateLimiter
	RateLimit  int
	RateWindow time.Duration
}

// wsClient 表示一个 WebSocket 客户端连接
type wsClient struct {
	conn      *websocket.Conn
	key       string
	send      chan []byte
	closed    atomic.Bool
	createdAt time.Time
}

// Close 安全关闭客户端连接
func (client *wsClient) Close() {
	if client.closed.CompareAndSwap(false, true) {
		client.conn.Close()
	}
}

// IsClosed 检查连接是否已关闭
func (client *wsClient) IsClosed() bool {
	return client.closed.Load()
}

// sendMessage queues msg without blocking; a full queue drops the message.
func (client *wsClient) sendMessage(msg WSMessage) bool {
	if client.IsClosed() {
		return false
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return false
	}
	select {
	case client.send <- payload:
		return true
	default:
		utils.GetLogger().Warn("WebSocket send queue full, message dropped", nil)
		return false
	}
}

// WebSocketHub tracks live analysis connections.
type WebSocketHub struct {
	analytics *services.AnalyticsService
	upgrader  websocket.Upgrader
	logger    *utils.Logger
	limits    WebSocketOptions

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

// NewWebSocketHub creates a hub.
func NewWebSocketHub(analytics *services.AnalyticsService, opts WebSocketOptions) *WebSocketHub {
	origins := opts.Origins
	allowAll := len(origins) == 0 || slices.Contains(origins, "*")
	return &WebSocketHub{
		analytics: analytics,
		logger:    utils.GetLogger(),
		limits:    opts,
		clients:   make(map[*wsClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || slices.Contains(origins, origin)
			},
		},
	}
}

// Count returns the number of open connections.
func (hub *WebSocketHub) Count() int {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	return len(hub.clients)
}

// Shutdown closes every open connection.
func (hub *WebSocketHub) Shutdown() {
	hub.mu.Lock()
	clients := make([]*wsClient, 0, len(hub.clients))
	for client := range hub.clients {
		clients = append(clients, client)
	}
	hub.mu.Unlock()

	for _, client := range clients {
		client.Close()
	}
}

// Close implements io.Closer.
func (hub *WebSocketHub) Close() error {
	hub.Shutdown()
	return nil
}

func (hub *WebSocketHub) register(client *wsClient) {
	hub.mu.Lock()
	hub.clients[client] = struct{}{}
	hub.mu.Unlock()
}

func (hub *WebSocketHub) unregister(client *wsClient) {
	hub.mu.Lock()
	delete(hub.clients, client)
	hub.mu.Unlock()
	client.Close()
}

// AnalyzeWebSocket serves GET /ws/analyze. Each inbound text message is an
// AnalysisRequest; each gets exactly one profile or error reply, in order.
func (hub *WebSocketHub) AnalyzeWebSocket(c *gin.Context) {
	conn, err := hub.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		hub.logger.Warn("WebSocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}

	client := &wsClient{
		conn:      conn,
		key:       visitorKey(c),
		send:      make(chan []byte, wsSendBuffer),
		createdAt: time.Now(),
	}
	hub.register(client)
	hub.logger.Info("WebSocket client connected", map[string]interface{}{"client_ip": c.ClientIP()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		hub.writeLoop(client)
	}()

	hub.readLoop(ctx, client)
	cancel()
	close(client.send)
	<-done
	hub.unregister(client)
	hub.logger.Info("WebSocket client disconnected", map[string]interface{}{
		"connected_for": time.Since(client.createdAt).String(),
	})
}

func (hub *WebSocketHub) readLoop(ctx context.Context, client *wsClient) {
	client.conn.SetReadLimit(wsMaxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		msgType, payload, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				hub.logger.Warn("WebSocket read failed", map[string]interface{}{"error": err.Error()})
			}
			return
		}
		_ = client.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		if msgType != websocket.TextMessage {
			continue
		}
		client.sendMessage(hub.handle(ctx, client.key, payload))
	}
}

// handle answers one inbound message. Every message takes a token from the
// client's analysis rate limit, like POST /analyze.
func (hub *WebSocketHub) handle(ctx context.Context, key string, payload []byte) WSMessage {
	if !hub.allow(key) {
		return errorMessage(ErrorRateLimited, "Rate limit exceeded")
	}

	var req models.AnalysisRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return errorMessage(ErrorInvalidJSON, "Invalid request body")
	}

	profile, err := hub.analytics.ValidateAndAnalyze(ctx, &req)
	if err != nil {
		return hub.errorReply(err)
	}
	return WSMessage{Type: MessageTypeProfile, Data: profile, Timestamp: time.Now()}
}

func (hub *WebSocketHub) allow(key string) bool {
	if hub.limits.Limiter == nil {
		return true
	}
	allowed, _ := hub.limits.Limiter.Allow(key, hub.limits.RateLimit, hub.limits.RateWindow)
	return allowed
}

// errorReply hides internal failures behind a generic message, as HandleServiceError does.
func (hub *WebSocketHub) errorReply(err error) WSMessage {
	status, code := StatusForError(err)
	message := sanitizeErrorMessage(err.Error())
	if status == http.StatusInternalServerError {
		hub.logger.Error("WebSocket analysis failed", map[string]interface{}{"error": err.Error()})
		message = internalErrorMessage
	}
	return errorMessage(code, message)
}

func errorMessage(code, message string) WSMessage {
	return WSMessage{Type: MessageTypeError, Error: message, Code: code, Timestamp: time.Now()}
}

func (hub *WebSocketHub) writeLoop(client *wsClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case payload, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				client.Close()
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				client.Close()
				return
			}
		}
	}
}

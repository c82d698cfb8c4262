// Package server exposes the match service over WebSocket. Clients send
// named operations with JSON arguments and receive the updated match
// document plus the emitted events.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/battlesync/battlesync-server/internal/config"
	"github.com/battlesync/battlesync-server/internal/match"
	"github.com/battlesync/battlesync-server/internal/store"
)

// Request is one client operation frame.
type Request struct {
	// Seq echoes back in the response so clients can pair frames.
	Seq  int64           `json:"seq,omitempty"`
	Op   string          `json:"op"`
	Args json.RawMessage `json:"args"`
}

// Response is the answer to one request frame.
type Response struct {
	Seq    int64         `json:"seq,omitempty"`
	Op     string        `json:"op"`
	Match  any           `json:"match,omitempty"`
	Events any           `json:"events,omitempty"`
	Error  *ErrorPayload `json:"error,omitempty"`
}

// ErrorPayload is the wire form of a failed operation.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Gateway upgrades connections and dispatches operation frames to the
// match service.
type Gateway struct {
	matches  *match.Service
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewGateway creates the WebSocket gateway.
func NewGateway(matches *match.Service, logger *zap.Logger) *Gateway {
	return &Gateway{
		matches: matches,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The gateway fronts game clients, not browsers with
			// credentials; origin policy belongs to the deployment.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Handler returns the HTTP handler that upgrades to WebSocket.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (g *Gateway) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	g.mu.Lock()
	g.conns[conn] = struct{}{}
	g.mu.Unlock()

	g.logger.Info("client connected", zap.String("remote", conn.RemoteAddr().String()))
	defer func() {
		g.mu.Lock()
		delete(g.conns, conn)
		g.mu.Unlock()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			g.writeError(conn, Request{}, "bad_request", "malformed frame")
			continue
		}

		g.dispatch(r.Context(), conn, req)
	}
}

func (g *Gateway) dispatch(ctx context.Context, conn *websocket.Conn, req Request) {
	// A panic in an operation must not take the connection down.
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("operation panicked",
				zap.String("op", req.Op),
				zap.Any("panic", r),
			)
			g.writeError(conn, req, "internal", "internal server error")
		}
	}()

	res, err := g.handleOp(ctx, req)
	if err != nil {
		code := "internal"
		switch {
		case errors.Is(err, store.ErrNotFound):
			code = "not_found"
		case errors.Is(err, store.ErrVersionConflict):
			code = "conflict"
		case errors.Is(err, errUnknownOp), errors.Is(err, errBadArgs):
			code = "bad_request"
		}
		g.logger.Warn("operation failed",
			zap.String("op", req.Op),
			zap.String("code", code),
			zap.Error(err),
		)
		g.writeError(conn, req, code, err.Error())
		return
	}

	g.write(conn, Response{
		Seq:    req.Seq,
		Op:     req.Op,
		Match:  res.Match,
		Events: res.Events,
	})
}

func (g *Gateway) write(conn *websocket.Conn, resp Response) {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(resp); err != nil {
		g.logger.Warn("websocket write failed", zap.Error(err))
	}
}

func (g *Gateway) writeError(conn *websocket.Conn, req Request, code, message string) {
	g.write(conn, Response{
		Seq:   req.Seq,
		Op:    req.Op,
		Error: &ErrorPayload{Code: code, Message: message},
	})
}

// CloseAll force-closes every connection, used during shutdown.
func (g *Gateway) CloseAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for conn := range g.conns {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		conn.Close()
	}
	g.conns = make(map[*websocket.Conn]struct{})
}

// Serve runs the HTTP server until the context is canceled.
func Serve(ctx context.Context, cfg config.ServerConfig, g *Gateway, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      g.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("websocket server listening", zap.String("address", cfg.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	g.CloseAll()
	return srv.Shutdown(shutdownCtx)
}

// Package ws is the live channel: it authenticates every new WebSocket
// connection before any application event is processed, then relays join,
// send, and mark_read events to the chat service and pushes room broadcasts
// back to the client.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"campus-link/auth"
	"campus-link/domain"
	"campus-link/errors"
	"campus-link/services"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// frameOverhead is the slack on top of the maximum body length for the
// envelope and payload framing around it.
const frameOverhead = 1024

type Gateway struct {
	log          *slog.Logger
	chat         services.IChatService
	users        auth.UserResolver
	secret       []byte
	upgrader     websocket.Upgrader
	validate     *validator.Validate
	bufferSize   int
	maxBodyLen   int
	writeTimeout time.Duration
}

func NewGateway(log *slog.Logger, chat services.IChatService, users auth.UserResolver,
	secret []byte, bufferSize, maxBodyLen int, writeTimeout time.Duration) *Gateway {
	return &Gateway{
		log:    log,
		chat:   chat,
		users:  users,
		secret: secret,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		validate:     validator.New(),
		bufferSize:   bufferSize,
		maxBodyLen:   maxBodyLen,
		writeTimeout: writeTimeout,
	}
}

// Handle authenticates and upgrades one connection attempt. Authentication
// failure is terminal: the socket is never upgraded and no session state is
// attached. Only authenticated connections ever reach the event loop.
func (g *Gateway) Handle(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.Authenticate(g.secret, g.users, auth.BearerToken(r))
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("websocket upgrade failed", "user_id", user.ID, "error", err)
		return
	}

	// An oversized frame terminates the read before it buffers unbounded;
	// the body length check in the service handles the fine-grained limit.
	if g.maxBodyLen > 0 {
		conn.SetReadLimit(int64(g.maxBodyLen) + frameOverhead)
	}

	connectionID := uuid.NewString()
	sink := NewSink(g.log, g.bufferSize)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	defer func() { _ = conn.Close() }()
	defer g.chat.Leave(connectionID)

	g.log.Info("connection established", "connection_id", connectionID, "user_id", user.ID)

	// Once the writer is gone nothing drains the sink, so its exit cancels
	// the connection context and unblocks any pending reply.
	go func() {
		g.writeLoop(ctx, conn, sink)
		cancel()
	}()
	g.readLoop(ctx, conn, connectionID, user, sink)

	g.log.Info("connection closed", "connection_id", connectionID, "user_id", user.ID)
}

// writeLoop is the only goroutine writing to the socket. It drains the
// connection's sink, which carries direct acknowledgments and room
// broadcasts alike.
func (g *Gateway) writeLoop(ctx context.Context, conn *websocket.Conn, sink *Sink) {
	for {
		select {
		case <-ctx.Done():
			return
		case envelope := <-sink.Events:
			_ = conn.SetWriteDeadline(time.Now().Add(g.writeTimeout))
			if err := conn.WriteJSON(envelope); err != nil {
				g.log.Warn("failed to push event to connection", "error", err)
				// Closing unblocks the read loop as well.
				_ = conn.Close()
				return
			}
		}
	}
}

func (g *Gateway) readLoop(ctx context.Context, conn *websocket.Conn,
	connectionID string, user domain.User, sink *Sink) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var envelope Envelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			g.log.Debug("dropping malformed frame", "connection_id", connectionID, "error", err)
			continue
		}
		g.dispatch(ctx, connectionID, user, sink, envelope)
	}
}

func (g *Gateway) dispatch(ctx context.Context, connectionID string,
	user domain.User, sink *Sink, envelope Envelope) {
	switch envelope.Type {
	case TypeJoin:
		var payload JoinPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return // join errors silently no-op
		}
		g.chat.Join(connectionID, user, payload.TargetUserID, sink)

	case TypeSend:
		var payload SendPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			g.reply(ctx, sink, ResultPayload{Success: false, Error: errors.CodeInvalidMessage})
			return
		}
		if err := g.validate.Struct(payload); err != nil {
			g.reply(ctx, sink, ResultPayload{Success: false, Error: errors.CodeInvalidMessage})
			return
		}
		message, err := g.chat.Send(ctx, user, payload.TargetUserID, payload.Body)
		if err != nil {
			g.reply(ctx, sink, ResultPayload{Success: false, Error: errors.Code(err)})
			return
		}
		dto := toMessageDTO(message)
		g.reply(ctx, sink, ResultPayload{Success: true, Message: &dto})

	case TypeMarkRead:
		var payload MarkReadPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			g.reply(ctx, sink, ResultPayload{Success: false, Error: errors.CodeInvalidMessage})
			return
		}
		if err := g.chat.MarkRead(ctx, user, domain.RoomID(payload.ConversationID)); err != nil {
			g.reply(ctx, sink, ResultPayload{Success: false, Error: errors.Code(err)})
		}
		// No direct reply on success; members receive the read event broadcast.

	default:
		g.log.Debug("unknown event type", "connection_id", connectionID, "type", envelope.Type)
	}
}

// reply queues a direct response to the initiating caller. Failed operations
// are reported here only; other room members are never notified. A full
// buffer drops the reply, same policy as Sink.Consume: a client that stopped
// reading must never pin the connection's goroutines.
func (g *Gateway) reply(ctx context.Context, sink *Sink, result ResultPayload) {
	envelope, err := newEnvelope(TypeResult, result)
	if err != nil {
		g.log.Error("failed to encode result", "error", err)
		return
	}
	select {
	case sink.Events <- envelope:
	case <-ctx.Done():
	default:
		g.log.Warn("connection buffer full, dropping result")
	}
}

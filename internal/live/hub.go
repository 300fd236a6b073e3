package live

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/vk/ednavoyage/internal/ctxlog"
	"github.com/vk/ednavoyage/internal/sequencer"
	"github.com/zishang520/socket.io/v2/socket"
)

// Event names.
const (
	EventSnapshot  = "zone:snapshot"
	EventRestart   = "zone:restart"
	EventAggregate = "zone:aggregate"
	EventError     = "zone:error"
)

// Sequencer is the part of *sequencer.Sequencer the hub drives.
type Sequencer interface {
	Snapshot() sequencer.Snapshot
	Subscribe(fn sequencer.Observer) (unsubscribe func())
	Start(ctx context.Context)
	SetAggregation(level string) error
	Levels() []string
}

// Message is the payload of EventSnapshot.
type Message struct {
	sequencer.View
	Levels []string `json:"levels,omitempty"`
}

// NewMessage builds the payload for snap.
func NewMessage(snap sequencer.Snapshot, levels []string) Message {
	return Message{View: snap.View(), Levels: levels}
}

// Hub is a socket.io server broadcasting one sequencer.
type Hub struct {
	ctx    context.Context
	logger *slog.Logger
	seq    Sequencer
	server *socket.Server

	closeOnce   sync.Once
	unsubscribe func()
}

// NewHub creates a hub for seq. Runs restarted by clients are bound to ctx.
func NewHub(ctx context.Context, seq Sequencer) *Hub {
	h := &Hub{
		ctx:    ctx,
		logger: ctxlog.FromContext(ctx).With("component", "live"),
		seq:    seq,
		server: socket.NewServer(nil, nil),
	}
	h.server.On("connection", func(clients ...any) {
		client, ok := clients[0].(*socket.Socket)
		if !ok {
			return
		}
		h.onConnect(client)
	})
	h.unsubscribe = seq.Subscribe(h.Broadcast)
	return h
}

// Handler serves the socket.io endpoint. Mount it at /socket.io/.
func (h *Hub) Handler() http.Handler {
	return h.server.ServeHandler(nil)
}

// Broadcast sends snap to every connected client.
func (h *Hub) Broadcast(snap sequencer.Snapshot) {
	h.server.Emit(EventSnapshot, NewMessage(snap, h.seq.Levels()))
}

// Close unsubscribes from the sequencer and disconnects every client.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		h.unsubscribe()
		h.server.Close(nil)
		h.logger.Debug("Live hub closed.")
	})
}

func (h *Hub) onConnect(client *socket.Socket) {
	logger := h.logger.With("sid", client.Id())
	logger.Info("Live client connected.")

	client.Emit(EventSnapshot, NewMessage(h.seq.Snapshot(), h.seq.Levels()))

	client.On(EventRestart, func(...any) {
		logger.Info("Client requested restart.")
		h.seq.Start(h.ctx)
	})
	client.On(EventAggregate, func(args ...any) {
		level, err := levelArg(args)
		if err == nil {
			err = h.seq.SetAggregation(level)
		}
		if err != nil {
			logger.Warn("Rejected aggregation change.", "error", err)
			client.Emit(EventError, err.Error())
			return
		}
		logger.Info("Client changed aggregation.", "level", level)
	})
	client.On("disconnect", func(reason ...any) {
		logger.Info("Live client disconnected.", "reason", fmt.Sprint(reason...))
	})
}

// levelArg extracts the aggregation level from an event payload.
func levelArg(args []any) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%s: missing level", EventAggregate)
	}
	switch v := args[0].(type) {
	case string:
		return v, nil
	case map[string]any:
		if level, ok := v["level"].(string); ok {
			return level, nil
		}
	}
	return "", fmt.Errorf("%s: payload %v has no level", EventAggregate, args[0])
}

package live

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/vk/ednavoyage/internal/ctxlog"
	"github.com/vk/ednavoyage/internal/sequencer"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// ClientOptions configures a live client.
type ClientOptions struct {
	// URL is the socket.io endpoint, e.g. http://localhost:8080/socket.io/.
	URL                string
	Namespace          string
	InsecureSkipVerify bool
}

// Client is a connected live feed subscriber.
type Client struct {
	io *socket.Socket
}

// Handler receives a snapshot together with the levels the hub offers.
type Handler func(snap sequencer.Snapshot, levels []string)

// Dial connects to a hub. fn receives every snapshot, including the one sent
// on connect. It blocks until the connection succeeds, fails or ctx is done.
func Dial(ctx context.Context, opts ClientOptions, fn Handler) (*Client, error) {
	logger := ctxlog.FromContext(ctx).With("component", "live-client", "url", opts.URL)

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	sopts := socket.DefaultOptions()
	sopts.SetPath(parsedURL.Path)
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sopts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sopts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sopts)
	io := manager.Socket(opts.Namespace, sopts)

	io.On(types.EventName(EventSnapshot), func(data ...any) {
		if len(data) == 0 {
			return
		}
		snap, levels, err := decodeMessage(data[0])
		if err != nil {
			logger.Warn("Dropped malformed snapshot.", "error", err)
			return
		}
		fn(snap, levels)
	})
	io.On(types.EventName(EventError), func(data ...any) {
		logger.Warn("Hub rejected a request.", "error", fmt.Sprint(data...))
	})

	connectChan := make(chan error, 1)
	var once sync.Once
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		once.Do(func() { connectChan <- nil })
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		once.Do(func() { connectChan <- err })
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &Client{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	}
}

// Restart asks the hub to restart the sequence.
func (c *Client) Restart() {
	c.io.Emit(EventRestart)
}

// SetAggregation asks the hub to switch the aggregation level.
func (c *Client) SetAggregation(level string) {
	c.io.Emit(EventAggregate, map[string]any{"level": level})
}

// Close disconnects from the hub.
func (c *Client) Close() {
	c.io.Disconnect()
}

// Watch connects to a hub and delivers snapshots to fn until ctx is done.
func Watch(ctx context.Context, opts ClientOptions, fn Handler) error {
	c, err := Dial(ctx, opts, fn)
	if err != nil {
		return err
	}
	defer c.Close()
	<-ctx.Done()
	return nil
}

// decodeMessage converts a decoded JSON payload back into a snapshot.
func decodeMessage(payload any) (sequencer.Snapshot, []string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return sequencer.Snapshot{}, nil, err
	}
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return sequencer.Snapshot{}, nil, err
	}
	snap, err := m.View.Snapshot()
	if err != nil {
		return sequencer.Snapshot{}, nil, err
	}
	return snap, m.Levels, nil
}

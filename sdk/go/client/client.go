// Package client is the Go SDK for the salinity live inspector. It reads,
// replaces and queries the served scene over HTTP and streams scene events
// over a websocket.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/salinityengine/salinity/internal/core/document"
	"github.com/salinityengine/salinity/internal/core/events/bus"
	"github.com/salinityengine/salinity/internal/core/observability/log"
)

// Client talks to one inspector server.
type Client struct {
	base   *url.URL
	http   *http.Client
	conn   *websocket.Conn
	config Config
	logger log.Log

	eventHandlers map[string][]EventHandler
	handlerMutex  sync.RWMutex

	connected int32 // atomic bool
	closed    int32 // atomic bool

	workerGroup sync.WaitGroup
}

type Config struct {
	// ServerAddr is host:port or a full http(s) URL.
	ServerAddr     string
	Token          string
	RequestTimeout time.Duration
	ConnectTimeout time.Duration
}

func DefaultClientConfig() Config {
	return Config{
		ServerAddr:     "127.0.0.1:8080",
		RequestTimeout: 10 * time.Second,
		ConnectTimeout: 5 * time.Second,
	}
}

// EventHandler receives scene events streamed by the server.
type EventHandler func(event bus.Event) error

// Health is the body of GET /healthz.
type Health struct {
	Status  string `json:"status"`
	Clients int    `json:"clients"`
	Events  uint64 `json:"events"`
}

func NewClient(config Config, logger log.Log) (*Client, error) {
	addr := config.ServerAddr
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	base, err := url.Parse(addr)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Client{
		base:          base,
		http:          &http.Client{Timeout: config.RequestTimeout},
		config:        config,
		logger:        logger.With(log.String("component", "client"), log.String("server", base.Host)),
		eventHandlers: make(map[string][]EventHandler),
	}, nil
}

// Scene fetches the served document and its fingerprint. An empty format
// means JSON.
func (c *Client) Scene(ctx context.Context, format document.Format) (document.Document, string, error) {
	if format == "" {
		format = document.FormatJSON
	}
	resp, err := c.do(ctx, http.MethodGet, "/scene", url.Values{"format": {format.String()}}, nil)
	if err != nil {
		return document.Document{}, "", err
	}
	defer resp.Body.Close()

	doc, err := document.Decode(resp.Body, format)
	if err != nil {
		return document.Document{}, "", err
	}
	return doc, resp.Header.Get("X-Scene-Fingerprint"), nil
}

// Replace uploads doc as the new scene.
func (c *Client) Replace(ctx context.Context, doc document.Document, format document.Format) error {
	if format == "" {
		format = document.FormatJSON
	}
	body, err := document.Marshal(doc, format)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPut, "/scene", url.Values{"format": {format.String()}}, bytes.NewReader(body))
	if err != nil {
		return err
	}
	resp.Body.Close()
	c.logger.Debug("Scene replaced", log.String("name", doc.Name))
	return nil
}

// Query evaluates a JSONPath expression against the served document.
func (c *Client) Query(ctx context.Context, path string) ([]any, error) {
	resp, err := c.do(ctx, http.MethodGet, "/scene/query", url.Values{"path": {path}}, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var results []any
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return Health{}, err
	}
	defer resp.Body.Close()

	var h Health
	err = json.NewDecoder(resp.Body).Decode(&h)
	return h, err
}

// OnEvent registers handler for eventType. bus.AllEvents matches every event.
func (c *Client) OnEvent(eventType string, handler EventHandler) {
	c.handlerMutex.Lock()
	defer c.handlerMutex.Unlock()
	c.eventHandlers[eventType] = append(c.eventHandlers[eventType], handler)
}

// Connect opens the event stream. A non-empty eventType asks the server to
// send only that type.
func (c *Client) Connect(ctx context.Context, eventType string) error {
	if atomic.LoadInt32(&c.closed) == 1 {
		return ErrClientClosed
	}
	if !atomic.CompareAndSwapInt32(&c.connected, 0, 1) {
		return ErrAlreadyConnected
	}

	u := c.endpoint("/ws", nil)
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	if eventType != "" {
		q := u.Query()
		q.Set("type", eventType)
		u.RawQuery = q.Encode()
	}

	dialer := websocket.Dialer{HandshakeTimeout: c.config.ConnectTimeout}
	conn, resp, err := dialer.DialContext(ctx, u.String(), c.authHeader())
	if err != nil {
		atomic.StoreInt32(&c.connected, 0)
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return ErrUnauthorized
		}
		c.logger.Error("Failed to connect to server", log.Error(err))
		return err
	}
	c.conn = conn
	c.logger.Info("Connected to event stream", log.String("type", eventType))

	c.workerGroup.Add(1)
	go c.readLoop(conn)
	return nil
}

// Disconnect closes the event stream and waits for the reader to exit.
func (c *Client) Disconnect() error {
	if !atomic.CompareAndSwapInt32(&c.connected, 1, 0) {
		return ErrNotConnected
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	err := c.conn.Close()
	c.workerGroup.Wait()
	c.logger.Info("Disconnected from server")
	return err
}

func (c *Client) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	if atomic.LoadInt32(&c.connected) == 1 {
		_ = c.Disconnect()
	}
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) IsConnected() bool {
	return atomic.LoadInt32(&c.connected) == 1
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer c.workerGroup.Done()
	for {
		var evt bus.Event
		if err := conn.ReadJSON(&evt); err != nil {
			if atomic.CompareAndSwapInt32(&c.connected, 1, 0) {
				c.logger.Warn("Event stream closed by server", log.Error(err))
				_ = conn.Close()
			}
			return
		}
		c.dispatch(evt)
	}
}

func (c *Client) dispatch(evt bus.Event) {
	c.handlerMutex.RLock()
	handlers := append(append([]EventHandler(nil), c.eventHandlers[evt.Type]...), c.eventHandlers[bus.AllEvents]...)
	c.handlerMutex.RUnlock()

	for _, h := range handlers {
		if err := h(evt); err != nil {
			c.logger.Warn("Event handler failed", log.String("event", evt.Type), log.Error(err))
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Response, error) {
	if atomic.LoadInt32(&c.closed) == 1 {
		return nil, ErrClientClosed
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query).String(), body)
	if err != nil {
		return nil, err
	}
	for k, v := range c.authHeader() {
		req.Header[k] = v
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 == 2 {
		return resp, nil
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return nil, &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
}

func (c *Client) endpoint(path string, query url.Values) *url.URL {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	u.RawQuery = query.Encode()
	return &u
}

func (c *Client) authHeader() http.Header {
	if c.config.Token == "" {
		return nil
	}
	return http.Header{"Authorization": {"Bearer " + c.config.Token}}
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

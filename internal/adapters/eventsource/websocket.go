package eventsource

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/scamshield/contact-monitor/internal/core"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// callPayload is the wire shape the platform call shim pushes.
type callPayload struct {
	PhoneNumber string `json:"phoneNumber"`
	Phase       string `json:"phase"`
	Timestamp   int64  `json:"timestamp"` // unix milliseconds
}

// smsPayload is the wire shape the platform SMS shim pushes.
type smsPayload struct {
	OriginatingAddress string `json:"originatingAddress"`
	Body               string `json:"body"`
	Timestamp          int64  `json:"timestamp"`
}

// WebSocketSource is one platform listener: a local websocket endpoint
// the device shim for a channel connects to and pushes raw events into.
// A failure to bind the address is the listener-registration failure
// surfaced to the coordinator; the other channels keep starting.
type WebSocketSource struct {
	channel core.Channel
	addr    string
	decode  func(data []byte) (core.MonitoringEvent, error)
	logger  *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
	handler  func(core.MonitoringEvent)
}

// NewCallSource creates the call-channel listener.
func NewCallSource(addr string, logger *zap.Logger) *WebSocketSource {
	return &WebSocketSource{channel: core.ChannelCall, addr: addr, decode: decodeCall, logger: logger}
}

// NewSMSSource creates the sms-channel listener.
func NewSMSSource(addr string, logger *zap.Logger) *WebSocketSource {
	return &WebSocketSource{channel: core.ChannelSMS, addr: addr, decode: decodeSMS, logger: logger}
}

// Channel returns the platform channel this source feeds.
func (s *WebSocketSource) Channel() core.Channel {
	return s.channel
}

// Start binds the endpoint and begins forwarding events to the
// handler. The bind happens synchronously so registration failures are
// reported to the caller; serving runs in the background.
func (s *WebSocketSource) Start(handler func(core.MonitoringEvent)) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s listener on %s: %w", s.channel, s.addr, err)
	}

	s.mu.Lock()
	s.handler = handler
	s.listener = listener
	s.server = &http.Server{Handler: s}
	server := s.server
	s.mu.Unlock()

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Event bridge server error",
				zap.String("channel", string(s.channel)),
				zap.Error(err))
		}
	}()

	s.logger.Info("Event bridge listening",
		zap.String("channel", string(s.channel)),
		zap.String("address", s.addr))
	return nil
}

// Stop closes the endpoint and releases the listener.
func (s *WebSocketSource) Stop() error {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Close()
}

// ServeHTTP upgrades the shim connection and pumps its events.
func (s *WebSocketSource) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed",
			zap.String("channel", string(s.channel)),
			zap.Error(err))
		return
	}
	defer conn.Close()

	s.logger.Debug("Device shim connected", zap.String("channel", string(s.channel)))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			s.logger.Debug("Device shim disconnected",
				zap.String("channel", string(s.channel)),
				zap.Error(err))
			return
		}

		event, err := s.decode(data)
		if err != nil {
			// Garbled payloads are an admission failure: dropped and
			// logged, no lookup.
			s.logger.Warn("Dropping undecodable event",
				zap.String("channel", string(s.channel)),
				zap.Error(err))
			continue
		}

		s.mu.Lock()
		handler := s.handler
		s.mu.Unlock()
		if handler != nil {
			handler(event)
		}
	}
}

func decodeCall(data []byte) (core.MonitoringEvent, error) {
	var payload callPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return core.MonitoringEvent{}, fmt.Errorf("failed to decode call event: %w", err)
	}
	if payload.PhoneNumber == "" {
		return core.MonitoringEvent{}, fmt.Errorf("call event missing phoneNumber")
	}

	phase := core.Phase(payload.Phase)
	switch phase {
	case core.PhaseRinging, core.PhaseAnswered, core.PhaseEnded:
	default:
		return core.MonitoringEvent{}, fmt.Errorf("call event has unknown phase %q", payload.Phase)
	}

	return core.MonitoringEvent{
		Identifier: payload.PhoneNumber,
		Channel:    core.ChannelCall,
		Phase:      phase,
		OccurredAt: eventTime(payload.Timestamp),
	}, nil
}

func decodeSMS(data []byte) (core.MonitoringEvent, error) {
	var payload smsPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return core.MonitoringEvent{}, fmt.Errorf("failed to decode sms event: %w", err)
	}
	if payload.OriginatingAddress == "" {
		return core.MonitoringEvent{}, fmt.Errorf("sms event missing originatingAddress")
	}

	return core.MonitoringEvent{
		Identifier: payload.OriginatingAddress,
		Channel:    core.ChannelSMS,
		Phase:      core.PhaseReceived,
		Body:       payload.Body,
		OccurredAt: eventTime(payload.Timestamp),
	}, nil
}

func eventTime(millis int64) time.Time {
	if millis <= 0 {
		return time.Now()
	}
	return time.UnixMilli(millis)
}

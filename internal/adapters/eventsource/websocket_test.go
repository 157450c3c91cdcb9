package eventsource

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scamshield/contact-monitor/internal/core"
)

func TestDecodeCall(t *testing.T) {
	event, err := decodeCall([]byte(`{"phoneNumber":"0788123456","phase":"ringing","timestamp":1735689600000}`))
	require.NoError(t, err)
	assert.Equal(t, "0788123456", event.Identifier)
	assert.Equal(t, core.ChannelCall, event.Channel)
	assert.Equal(t, core.PhaseRinging, event.Phase)
	assert.Equal(t, time.UnixMilli(1735689600000), event.OccurredAt)
}

func TestDecodeCallRejectsGarbled(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `ring ring`},
		{"missing number", `{"phase":"ringing"}`},
		{"unknown phase", `{"phoneNumber":"0788123456","phase":"holding"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeCall([]byte(tt.payload))
			assert.Error(t, err)
		})
	}
}

func TestDecodeSMS(t *testing.T) {
	event, err := decodeSMS([]byte(`{"originatingAddress":"0788123456","body":"you won a prize","timestamp":1735689600000}`))
	require.NoError(t, err)
	assert.Equal(t, "0788123456", event.Identifier)
	assert.Equal(t, core.ChannelSMS, event.Channel)
	assert.Equal(t, core.PhaseReceived, event.Phase)
	assert.Equal(t, "you won a prize", event.Body)
}

func TestDecodeSMSRejectsMissingSender(t *testing.T) {
	_, err := decodeSMS([]byte(`{"body":"hi"}`))
	assert.Error(t, err)
}

func TestWebSocketSourceDeliversEvents(t *testing.T) {
	source := NewCallSource("127.0.0.1:0", zap.NewNop())

	received := make(chan core.MonitoringEvent, 1)
	require.NoError(t, source.Start(func(event core.MonitoringEvent) {
		received <- event
	}))
	defer source.Stop()

	url := "ws://" + source.listener.Addr().String()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	payload, err := json.Marshal(callPayload{PhoneNumber: "0788123456", Phase: "ringing"})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, payload))

	select {
	case event := <-received:
		assert.Equal(t, "0788123456", event.Identifier)
		assert.Equal(t, core.PhaseRinging, event.Phase)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestWebSocketSourceBindFailure(t *testing.T) {
	first := NewSMSSource("127.0.0.1:0", zap.NewNop())
	require.NoError(t, first.Start(func(core.MonitoringEvent) {}))
	defer first.Stop()

	second := NewSMSSource(first.listener.Addr().String(), zap.NewNop())
	err := second.Start(func(core.MonitoringEvent) {})
	assert.Error(t, err, "binding an occupied address is the registration failure path")
}

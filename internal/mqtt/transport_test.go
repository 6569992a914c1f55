package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lucheng0127/cmdhost/internal/command"
	"github.com/lucheng0127/cmdhost/internal/dispatcher"
)

func newTestTransport(t *testing.T) *Transport {
	t.Helper()

	registry := dispatcher.NewRegistry(zap.NewNop())
	require.NoError(t, registry.Register(command.NewGreetCommand()))
	d := dispatcher.NewDispatcher(registry, zap.NewNop())

	return NewTransport(Options{
		Broker:        "tcp://localhost:1883",
		ClientID:      "desk-1",
		InvokeTimeout: time.Second,
	}, d, zap.NewNop())
}

func TestTopics(t *testing.T) {
	tr := newTestTransport(t)

	assert.Equal(t, "cmdhost/desk-1/invoke", tr.InvokeTopic())
	assert.Equal(t, "cmdhost/desk-1/result", tr.ResultTopic())
	assert.Equal(t, "cmdhost/desk-1/status", tr.StatusTopic())
}

func TestHandlePayload(t *testing.T) {
	tr := newTestTransport(t)

	tests := []struct {
		name    string
		payload string
		ok      bool
		kind    command.ErrorKind
	}{
		{name: "greet", payload: `{"id":"a","command":"greet","args":["mqtt"]}`, ok: true},
		{name: "unknown", payload: `{"id":"b","command":"unknown_command"}`, kind: command.KindCommandNotFound},
		{name: "arity", payload: `{"id":"c","command":"greet","args":[]}`, kind: command.KindInvalidArguments},
		{name: "garbage", payload: `\x00`, kind: command.KindInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp dispatcher.Response
			require.NoError(t, json.Unmarshal(tr.HandlePayload(context.Background(), []byte(tt.payload)), &resp))
			assert.Equal(t, tt.ok, resp.OK)
			assert.Equal(t, tt.kind, resp.Kind())
		})
	}
}

func TestHandlePayloadResult(t *testing.T) {
	tr := newTestTransport(t)

	out := tr.HandlePayload(context.Background(), []byte(`{"id":"42","command":"greet","args":{"name":"mqtt"}}`))
	assert.JSONEq(t, `{"id":"42","command":"greet","ok":true,"result":"Hello, mqtt! You've been greeted!"}`, string(out))
}

func TestStatus(t *testing.T) {
	tr := newTestTransport(t)

	status := tr.Status("online")
	assert.Equal(t, "online", status.Status)
	assert.Equal(t, 1, status.Commands)
	assert.NotEmpty(t, status.Hostname)

	_, err := time.Parse(time.RFC3339, status.Timestamp)
	assert.NoError(t, err)
}

type doneToken struct{ mqtt.Token }

func (doneToken) Wait() bool   { return true }
func (doneToken) Error() error { return nil }

type published struct {
	topic   string
	payload []byte
}

type recordClient struct {
	mqtt.Client
	out chan published
}

func (c *recordClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.out <- published{topic: topic, payload: payload.([]byte)}
	return doneToken{}
}

type invokeMessage struct {
	mqtt.Message
	payload []byte
}

func (m invokeMessage) Topic() string   { return "cmdhost/desk-1/invoke" }
func (m invokeMessage) Payload() []byte { return m.payload }

func TestInvokeHandlerPublishesResult(t *testing.T) {
	tr := newTestTransport(t)
	client := &recordClient{out: make(chan published, 1)}

	handler := tr.invokeHandler(context.Background())
	handler(client, invokeMessage{payload: []byte(`{"id":"1","command":"greet","args":["mqtt"]}`)})

	select {
	case msg := <-client.out:
		assert.Equal(t, tr.ResultTopic(), msg.topic)
		assert.JSONEq(t, `{"id":"1","command":"greet","ok":true,"result":"Hello, mqtt! You've been greeted!"}`, string(msg.payload))
	case <-time.After(2 * time.Second):
		t.Fatal("no result published")
	}
}

func TestInvokeHandlerUsesStartContext(t *testing.T) {
	tr := newTestTransport(t)
	client := &recordClient{out: make(chan published, 1)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr.invokeHandler(ctx)(client, invokeMessage{payload: []byte(`{"id":"2","command":"greet","args":["mqtt"]}`)})

	select {
	case msg := <-client.out:
		var resp dispatcher.Response
		require.NoError(t, json.Unmarshal(msg.payload, &resp))
		assert.False(t, resp.OK)
		assert.Equal(t, command.KindExecutionFailed, resp.Kind())
	case <-time.After(2 * time.Second):
		t.Fatal("no result published")
	}
}

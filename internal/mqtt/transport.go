package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/lucheng0127/cmdhost/internal/dispatcher"
	"github.com/lucheng0127/cmdhost/internal/info"
)

// Options MQTT 传输配置
type Options struct {
	Broker            string
	ClientID          string
	HeartbeatInterval time.Duration
	InvokeTimeout     time.Duration
}

// StatusMessage 心跳状态消息
type StatusMessage struct {
	Status    string `json:"status"`
	Hostname  string `json:"hostname"`
	Uptime    int64  `json:"uptime"`
	Commands  int    `json:"commands"`
	Timestamp string `json:"timestamp"`
}

// Transport MQTT 命令传输
// 订阅 cmdhost/{client}/invoke，结果发布到 cmdhost/{client}/result
type Transport struct {
	opts        Options
	client      mqtt.Client
	dispatcher  *dispatcher.Dispatcher
	logger      *zap.Logger
	connectChan chan bool
}

// NewTransport 创建 MQTT 传输
func NewTransport(opts Options, d *dispatcher.Dispatcher, logger *zap.Logger) *Transport {
	return &Transport{
		opts:        opts,
		dispatcher:  d,
		logger:      logger,
		connectChan: make(chan bool, 1),
	}
}

// InvokeTopic 命令主题
func (t *Transport) InvokeTopic() string {
	return fmt.Sprintf("cmdhost/%s/invoke", t.opts.ClientID)
}

// ResultTopic 结果主题
func (t *Transport) ResultTopic() string {
	return fmt.Sprintf("cmdhost/%s/result", t.opts.ClientID)
}

// StatusTopic 状态主题
func (t *Transport) StatusTopic() string {
	return fmt.Sprintf("cmdhost/%s/status", t.opts.ClientID)
}

// Start 连接 Broker 并阻塞到 ctx 取消
func (t *Transport) Start(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(t.opts.Broker)
	opts.SetClientID(t.opts.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(10 * time.Second)
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		t.onConnect(client, t.invokeHandler(ctx))
	})
	opts.SetConnectionLostHandler(t.onConnectionLost)

	t.client = mqtt.NewClient(opts)

	// 连接到 Broker
	if token := t.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	// 等待订阅完成
	select {
	case <-t.connectChan:
		t.logger.Info("MQTT transport connected", zap.String("broker", t.opts.Broker))
	case <-time.After(30 * time.Second):
		t.client.Disconnect(250)
		return fmt.Errorf("MQTT connection timeout")
	case <-ctx.Done():
		t.client.Disconnect(250)
		return nil
	}

	if err := t.publishStatus("online"); err != nil {
		t.logger.Error("failed to publish initial status", zap.Error(err))
	}

	var heartbeat <-chan time.Time
	if t.opts.HeartbeatInterval > 0 {
		ticker := time.NewTicker(t.opts.HeartbeatInterval)
		defer ticker.Stop()
		heartbeat = ticker.C
	}

	for {
		select {
		case <-heartbeat:
			if err := t.publishStatus("online"); err != nil {
				t.logger.Error("failed to publish heartbeat", zap.Error(err))
			}
		case <-ctx.Done():
			t.logger.Info("MQTT transport shutting down")
			if err := t.publishStatus("offline"); err != nil {
				t.logger.Warn("failed to publish offline status", zap.Error(err))
			}
			t.client.Disconnect(250)
			return nil
		}
	}
}

// onConnect 连接成功回调，重连后重新订阅
func (t *Transport) onConnect(client mqtt.Client, handler mqtt.MessageHandler) {
	topic := t.InvokeTopic()
	if token := client.Subscribe(topic, 1, handler); token.Wait() && token.Error() != nil {
		t.logger.Error("failed to subscribe to invoke topic", zap.Error(token.Error()))
		return
	}

	t.logger.Info("subscribed to invoke topic", zap.String("topic", topic))

	select {
	case t.connectChan <- true:
	default:
	}
}

// onConnectionLost 连接丢失回调
func (t *Transport) onConnectionLost(client mqtt.Client, err error) {
	t.logger.Warn("MQTT connection lost", zap.Error(err))
}

// invokeHandler 返回命令消息回调，调用继承 ctx
func (t *Transport) invokeHandler(ctx context.Context) mqtt.MessageHandler {
	return func(client mqtt.Client, msg mqtt.Message) {
		payload := msg.Payload()

		t.logger.Debug("received invoke message",
			zap.String("topic", msg.Topic()),
			zap.String("payload", string(payload)),
		)

		// paho 回调需尽快返回
		go func() {
			resp := t.HandlePayload(ctx, payload)
			token := client.Publish(t.ResultTopic(), 1, false, resp)
			if token.Wait() && token.Error() != nil {
				t.logger.Error("failed to publish result", zap.Error(token.Error()))
			}
		}()
	}
}

// HandlePayload 分发一条命令消息并返回编码后的响应
func (t *Transport) HandlePayload(ctx context.Context, payload []byte) []byte {
	if t.opts.InvokeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.opts.InvokeTimeout)
		defer cancel()
	}
	return t.dispatcher.Dispatch(ctx, payload).Marshal()
}

// Status 生成当前状态消息
func (t *Transport) Status(status string) StatusMessage {
	snap := info.Collect()
	return StatusMessage{
		Status:    status,
		Hostname:  snap.Hostname,
		Uptime:    snap.Uptime,
		Commands:  t.dispatcher.Len(),
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// publishStatus 发布状态消息
func (t *Transport) publishStatus(status string) error {
	payload, err := json.Marshal(t.Status(status))
	if err != nil {
		return err
	}

	token := t.client.Publish(t.StatusTopic(), 0, true, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish status: %w", token.Error())
	}

	t.logger.Debug("status published",
		zap.String("topic", t.StatusTopic()),
		zap.String("status", status),
	)
	return nil
}

package textsource

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/rs/zerolog"
	mqtt "github.com/soypat/natiu-mqtt"
)

// MQTT shows the payload of the messages published on a topic.
type MQTT struct {
	Broker   string // host:port
	Topic    string
	ClientID string
	Username string
	Password string
	Log      zerolog.Logger

	// Timeout bounds dialing, connecting and subscribing (default 10s).
	Timeout time.Duration
	// Retry is the wait before reconnecting (default 2s).
	Retry time.Duration
	// KeepAlive is announced to the broker, rounded down to whole seconds
	// (default 60s). The broker is pinged every half period and the session
	// is dropped when a ping goes unanswered for that long.
	KeepAlive time.Duration
}

// Run connects to the broker and reconnects after failures until ctx is done.
func (m *MQTT) Run(ctx context.Context, out chan<- string) error {
	retry := m.Retry
	if retry <= 0 {
		retry = 2 * time.Second
	}
	for {
		err := m.session(ctx, out)
		if ctx.Err() != nil {
			return nil
		}
		m.Log.Error().Err(err).Str("broker", m.Broker).Dur("retry", retry).Msg("mqtt session ended")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(retry):
		}
	}
}

func (m *MQTT) timeout() time.Duration {
	if m.Timeout <= 0 {
		return 10 * time.Second
	}
	return m.Timeout
}

func (m *MQTT) keepAlive() time.Duration {
	if m.KeepAlive < time.Second {
		return 60 * time.Second
	}
	return m.KeepAlive.Truncate(time.Second)
}

// session runs one connection until it fails or ctx is done.
func (m *MQTT) session(ctx context.Context, out chan<- string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dctx, dcancel := context.WithTimeout(ctx, m.timeout())
	defer dcancel()

	var d net.Dialer
	conn, err := d.DialContext(dctx, "tcp", m.Broker)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()
	// Unblock HandleNext when the session ends.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	client := mqtt.NewClient(mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 1500)},
		OnPub: func(_ mqtt.Header, varPub mqtt.VariablesPublish, r io.Reader) error {
			b, err := io.ReadAll(r)
			if err != nil {
				return err
			}
			text := Text(b)
			m.Log.Debug().Str("topic", string(varPub.TopicName)).Str("text", text).Msg("mqtt message")
			send(ctx, out, text)
			return nil
		},
	})

	keepAlive := m.keepAlive()
	var varconn mqtt.VariablesConnect
	varconn.SetDefaultMQTT([]byte(m.ClientID))
	varconn.KeepAlive = uint16(keepAlive / time.Second)
	if m.Username != "" {
		varconn.Username = []byte(m.Username)
		if m.Password != "" {
			varconn.Password = []byte(m.Password)
		}
	}

	if err := conn.SetDeadline(time.Now().Add(m.timeout())); err != nil {
		return err
	}
	if err := client.Connect(dctx, conn, &varconn); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	err = client.Subscribe(dctx, mqtt.VariablesSubscribe{
		PacketIdentifier: 1,
		TopicFilters: []mqtt.SubscribeRequest{
			{TopicFilter: []byte(m.Topic), QoS: mqtt.QoS0},
		},
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", m.Topic, err)
	}
	// Reads block from now on; pings keep the session alive and a closed
	// connection ends HandleNext.
	if err := conn.SetDeadline(time.Time{}); err != nil {
		return err
	}
	m.Log.Info().Str("broker", m.Broker).Str("topic", m.Topic).Msg("mqtt subscribed")

	pinged := make(chan struct{})
	go func() {
		defer close(pinged)
		m.ping(ctx, client, conn, keepAlive/2)
	}()
	defer func() {
		cancel()
		<-pinged
	}()

	for {
		if err := client.HandleNext(); err != nil {
			return err
		}
		if !client.IsConnected() {
			return client.Err()
		}
	}
}

// ping sends a PINGREQ every period. A ping still unanswered one period
// later closes conn.
func (m *MQTT) ping(ctx context.Context, client *mqtt.Client, conn io.Closer, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if client.AwaitingPingresp() {
			m.Log.Warn().Str("broker", m.Broker).Msg("mqtt ping unanswered")
			conn.Close()
			return
		}
		if err := client.StartPing(); err != nil {
			m.Log.Warn().Err(err).Msg("mqtt ping")
			conn.Close()
			return
		}
		m.Log.Debug().Msg("mqtt ping sent")
	}
}

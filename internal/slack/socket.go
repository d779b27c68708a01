package slack

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/atlasops/salesops-bot-go/internal/constants"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type MessageCallback func(event *MessageEvent)

type callbackEntry struct {
	id       int
	callback MessageCallback
}

// SocketClient runs the Socket Mode connection: it asks the Web API for a
// fresh websocket URL on every connect, acks each events_api envelope, and
// fans message events out to registered callbacks.
type SocketClient struct {
	api               *Client
	conn              *websocket.Conn
	state             SocketState
	stateMu           sync.RWMutex
	writeMu           sync.Mutex
	messageCallbacks  []callbackEntry
	nextCallbackID    int
	callbacksMu       sync.RWMutex
	reconnectAttempts int
	logger            *zap.Logger
	stopCh            chan struct{}
	stopOnce          sync.Once
	listenerWg        sync.WaitGroup
}

func NewSocketClient(api *Client, logger *zap.Logger) *SocketClient {
	return &SocketClient{
		api:              api,
		state:            SocketDisconnected,
		logger:           logger,
		stopCh:           make(chan struct{}),
		messageCallbacks: make([]callbackEntry, 0),
		nextCallbackID:   1,
	}
}

func (sc *SocketClient) Connect(ctx context.Context) error {
	sc.stateMu.Lock()
	if sc.state == SocketConnected || sc.state == SocketConnecting {
		sc.stateMu.Unlock()
		sc.logger.Warn("Socket already connected or connecting")
		return nil
	}
	sc.stateMu.Unlock()

	sc.setState(SocketConnecting)

	wsURL, err := sc.api.OpenConnection(ctx)
	if err != nil {
		sc.logger.Error("Failed to open socket mode connection", zap.Error(err))
		sc.setState(SocketFailed)
		sc.scheduleReconnect(ctx)
		return err
	}

	dialer := websocket.DefaultDialer
	dialer.HandshakeTimeout = constants.WebSocketConfig.HandshakeTimeout

	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		sc.logger.Error("Failed to dial socket mode URL", zap.Error(err))
		sc.setState(SocketFailed)
		sc.scheduleReconnect(ctx)
		return err
	}

	sc.conn = conn
	sc.setState(SocketConnected)
	sc.reconnectAttempts = 0

	sc.logger.Info("Socket mode connected")

	sc.listenerWg.Add(1)
	go sc.listen(ctx)

	return nil
}

func (sc *SocketClient) listen(ctx context.Context) {
	defer sc.listenerWg.Done()
	defer sc.logger.Info("Socket listener stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case <-sc.stopCh:
			return
		default:
			if sc.conn == nil {
				return
			}

			_, data, err := sc.conn.ReadMessage()
			if err != nil {
				select {
				case <-sc.stopCh:
					return
				default:
				}
				sc.logger.Error("Socket read error", zap.Error(err))
				sc.setState(SocketDisconnected)
				sc.scheduleReconnect(ctx)
				return
			}

			sc.handleEnvelope(data)
		}
	}
}

func (sc *SocketClient) handleEnvelope(data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		dataStr := string(data)
		if len(dataStr) > 200 {
			dataStr = dataStr[:200]
		}
		sc.logger.Error("Failed to parse envelope",
			zap.Error(err),
			zap.String("data", dataStr),
		)
		return
	}

	// Slack redelivers unacked envelopes, so ack before dispatching.
	if env.EnvelopeID != "" {
		sc.ackEnvelope(env.EnvelopeID)
	}

	switch env.Type {
	case "events_api":
		var payload eventsAPIPayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			sc.logger.Error("Failed to parse events payload", zap.Error(err))
			return
		}
		if payload.Event.Type != "message" {
			return
		}
		sc.dispatch(&payload.Event)
	case "disconnect":
		sc.logger.Info("Server requested disconnect, refreshing connection")
	case "hello":
	default:
		sc.logger.Debug("Ignoring envelope", zap.String("type", env.Type))
	}
}

func (sc *SocketClient) ackEnvelope(envelopeID string) {
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()

	if sc.conn == nil {
		return
	}
	if err := sc.conn.WriteJSON(ack{EnvelopeID: envelopeID}); err != nil {
		sc.logger.Error("Failed to ack envelope",
			zap.String("envelope_id", envelopeID),
			zap.Error(err),
		)
	}
}

func (sc *SocketClient) dispatch(event *MessageEvent) {
	sc.callbacksMu.RLock()
	callbacks := make([]callbackEntry, len(sc.messageCallbacks))
	copy(callbacks, sc.messageCallbacks)
	sc.callbacksMu.RUnlock()

	for _, entry := range callbacks {
		entry.callback(event)
	}
}

func (sc *SocketClient) scheduleReconnect(ctx context.Context) {
	sc.reconnectAttempts++

	if sc.reconnectAttempts > constants.WebSocketConfig.MaxReconnectAttempts {
		sc.logger.Error("Max reconnect attempts reached",
			zap.Int("attempts", sc.reconnectAttempts),
		)
		sc.setState(SocketFailed)
		return
	}

	sc.setState(SocketReconnecting)

	sc.logger.Info("Scheduling reconnect",
		zap.Int("attempt", sc.reconnectAttempts),
		zap.Int("max", constants.WebSocketConfig.MaxReconnectAttempts),
		zap.Duration("delay", constants.WebSocketConfig.ReconnectDelay),
	)

	go func() {
		select {
		case <-time.After(constants.WebSocketConfig.ReconnectDelay):
			if err := sc.Connect(ctx); err != nil {
				sc.logger.Error("Reconnect failed", zap.Error(err))
			}
		case <-ctx.Done():
			return
		case <-sc.stopCh:
			return
		}
	}()
}

func (sc *SocketClient) OnMessage(callback MessageCallback) func() {
	sc.callbacksMu.Lock()
	id := sc.nextCallbackID
	sc.nextCallbackID++
	sc.messageCallbacks = append(sc.messageCallbacks, callbackEntry{
		id:       id,
		callback: callback,
	})
	sc.callbacksMu.Unlock()

	return func() {
		sc.callbacksMu.Lock()
		defer sc.callbacksMu.Unlock()
		for i, entry := range sc.messageCallbacks {
			if entry.id == id {
				sc.messageCallbacks = append(sc.messageCallbacks[:i], sc.messageCallbacks[i+1:]...)
				break
			}
		}
	}
}

func (sc *SocketClient) setState(newState SocketState) {
	sc.stateMu.Lock()
	oldState := sc.state
	sc.state = newState
	sc.stateMu.Unlock()

	if oldState != newState {
		sc.logger.Info("Socket state changed",
			zap.String("from", oldState.String()),
			zap.String("to", newState.String()),
		)
	}
}

func (sc *SocketClient) GetState() SocketState {
	sc.stateMu.RLock()
	defer sc.stateMu.RUnlock()
	return sc.state
}

func (sc *SocketClient) IsConnected() bool {
	return sc.GetState() == SocketConnected
}

func (sc *SocketClient) Disconnect() error {
	sc.stopOnce.Do(func() {
		close(sc.stopCh)
	})

	if sc.conn != nil {
		if err := sc.conn.Close(); err != nil {
			sc.logger.Error("Failed to close socket", zap.Error(err))
			return err
		}
		sc.conn = nil
	}

	sc.reconnectAttempts = 0
	sc.setState(SocketDisconnected)

	done := make(chan struct{})
	go func() {
		sc.listenerWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		sc.logger.Info("Listener stopped cleanly")
	case <-time.After(5 * time.Second):
		sc.logger.Warn("Timeout waiting for listener to stop")
	}

	return nil
}

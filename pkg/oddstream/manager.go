package oddstream

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/mselser95/bet-recommender/pkg/types"
	"go.uber.org/zap"
)

// Manager manages a single WebSocket connection to the live odds stream.
// Decoded quotes go out on a channel consumed by the quote book alongside
// the polled feed.
type Manager struct {
	url             string
	conn            *websocket.Conn
	logger          *zap.Logger
	reconnectMgr    *ReconnectManager
	config          Config
	quoteChan       chan *types.OddsQuote
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	mu              sync.RWMutex
	subscribed      map[string]bool // tracks subscribed fixture IDs
	connected       atomic.Bool
	lastPongTime    atomic.Int64
	connectionStart atomic.Int64 // Unix timestamp of connection start
}

// Config holds odds stream manager configuration.
type Config struct {
	URL                   string
	DialTimeout           time.Duration
	PongTimeout           time.Duration
	PingInterval          time.Duration
	ReconnectInitialDelay time.Duration
	ReconnectMaxDelay     time.Duration
	ReconnectBackoffMult  float64
	QuoteBufferSize       int
	Logger                *zap.Logger
}

// quoteMessage is the stream wire shape for a live odds update.
type quoteMessage struct {
	EventType  string             `json:"event_type"`
	FixtureID  string             `json:"fixture_id"`
	Market     string             `json:"market"`
	Bookmaker  string             `json:"bookmaker"`
	Odds       map[string]float64 `json:"odds"`
	CapturedAt time.Time          `json:"captured_at"`
}

// New creates a new odds stream manager.
func New(cfg Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	reconnectCfg := ReconnectConfig{
		InitialDelay:      cfg.ReconnectInitialDelay,
		MaxDelay:          cfg.ReconnectMaxDelay,
		BackoffMultiplier: cfg.ReconnectBackoffMult,
		JitterPercent:     0.2,
	}

	return &Manager{
		url:          cfg.URL,
		logger:       cfg.Logger,
		reconnectMgr: NewReconnectManager(reconnectCfg, cfg.Logger),
		config:       cfg,
		quoteChan:    make(chan *types.OddsQuote, cfg.QuoteBufferSize),
		ctx:          ctx,
		cancel:       cancel,
		subscribed:   make(map[string]bool),
	}
}

// Start starts the odds stream manager.
func (m *Manager) Start() error {
	m.logger.Info("odds-stream-starting", zap.String("url", m.url))

	// Initial connection
	err := m.connect(m.ctx)
	if err != nil {
		return fmt.Errorf("initial connection: %w", err)
	}

	// Start goroutines
	m.wg.Add(3)
	go m.readLoop()
	go m.pingLoop()
	go m.reconnectLoop()

	return nil
}

// connect establishes a WebSocket connection.
func (m *Manager) connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: m.config.DialTimeout,
	}

	m.logger.Info("connecting-to-odds-stream", zap.String("url", m.url))

	conn, _, err := dialer.DialContext(ctx, m.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	// Set up pong handler
	conn.SetPongHandler(func(string) error {
		m.lastPongTime.Store(time.Now().Unix())
		return nil
	})

	m.mu.Lock()
	m.conn = conn
	m.mu.Unlock()

	now := time.Now()
	m.connected.Store(true)
	m.lastPongTime.Store(now.Unix())
	m.connectionStart.Store(now.Unix())
	ActiveConnections.Set(1)

	m.logger.Info("odds-stream-connected")

	return nil
}

// Subscribe subscribes to live odds for a list of fixture IDs.
func (m *Manager) Subscribe(ctx context.Context, fixtureIDs []string) error {
	if len(fixtureIDs) == 0 {
		return nil
	}

	m.mu.Lock()

	// Filter out already subscribed fixtures
	newFixtures := make([]string, 0, len(fixtureIDs))
	for _, fixtureID := range fixtureIDs {
		if !m.subscribed[fixtureID] {
			newFixtures = append(newFixtures, fixtureID)
			m.subscribed[fixtureID] = true
		}
	}

	if len(newFixtures) == 0 {
		m.mu.Unlock()
		m.logger.Debug("all-fixtures-already-subscribed")
		return nil
	}

	subscribeMsg := map[string]interface{}{
		"fixture_ids": newFixtures,
		"operation":   "subscribe",
	}

	totalSubscribed := len(m.subscribed)
	m.mu.Unlock()

	// Network I/O without holding the lock
	err := m.conn.WriteJSON(subscribeMsg)
	if err != nil {
		// Rollback subscription state on failure
		m.mu.Lock()
		for _, fixtureID := range newFixtures {
			delete(m.subscribed, fixtureID)
		}
		totalSubscribed = len(m.subscribed)
		m.mu.Unlock()

		SubscriptionCount.Set(float64(totalSubscribed))
		return fmt.Errorf("write subscribe message: %w", err)
	}

	SubscriptionCount.Set(float64(totalSubscribed))

	m.logger.Info("subscribed-to-fixtures",
		zap.Int("new-count", len(newFixtures)),
		zap.Int("total-count", totalSubscribed))

	return nil
}

// Unsubscribe unsubscribes from a list of fixture IDs.
func (m *Manager) Unsubscribe(ctx context.Context, fixtureIDs []string) (err error) {
	if len(fixtureIDs) == 0 {
		return nil
	}

	m.mu.Lock()

	toRemove := make([]string, 0, len(fixtureIDs))
	for _, fixtureID := range fixtureIDs {
		if m.subscribed[fixtureID] {
			toRemove = append(toRemove, fixtureID)
			delete(m.subscribed, fixtureID)
		}
	}

	if len(toRemove) == 0 {
		m.mu.Unlock()
		m.logger.Debug("no-fixtures-to-unsubscribe")
		return nil
	}

	unsubscribeMsg := map[string]interface{}{
		"fixture_ids": toRemove,
		"operation":   "unsubscribe",
	}

	totalSubscribed := len(m.subscribed)
	m.mu.Unlock()

	err = m.conn.WriteJSON(unsubscribeMsg)
	if err != nil {
		// Rollback: re-add fixtures to subscribed map
		m.mu.Lock()
		for _, fixtureID := range toRemove {
			m.subscribed[fixtureID] = true
		}
		totalSubscribed = len(m.subscribed)
		m.mu.Unlock()

		SubscriptionCount.Set(float64(totalSubscribed))
		return fmt.Errorf("write unsubscribe message: %w", err)
	}

	SubscriptionCount.Set(float64(totalSubscribed))
	UnsubscriptionsTotal.Inc()

	m.logger.Info("unsubscribed-from-fixtures",
		zap.Int("count", len(toRemove)),
		zap.Int("remaining-count", totalSubscribed))

	return nil
}

// readLoop reads messages from the WebSocket.
func (m *Manager) readLoop() {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		m.mu.RLock()
		conn := m.conn
		m.mu.RUnlock()

		if conn == nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			m.logger.Warn("read-error", zap.Error(err))

			// Observe connection duration before marking as disconnected
			startTime := m.connectionStart.Load()
			if startTime > 0 {
				duration := time.Since(time.Unix(startTime, 0)).Seconds()
				ConnectionDuration.Observe(duration)
			}

			m.connected.Store(false)
			ActiveConnections.Set(0)
			return
		}

		// The stream sends an array of updates per frame
		var msgs []quoteMessage
		err = json.Unmarshal(message, &msgs)
		if err != nil {
			messageStr := string(message)

			// Heartbeat frames are empty or near-empty
			if messageStr == "[]" || messageStr == "" || len(message) < 10 {
				m.logger.Debug("odds-stream-heartbeat", zap.Int("bytes", len(message)))
				continue
			}

			// Subscription confirmations and other control messages
			var controlMsg map[string]interface{}
			if json.Unmarshal(message, &controlMsg) == nil {
				if msgType, ok := controlMsg["type"].(string); ok {
					m.logger.Debug("odds-stream-control-message",
						zap.String("type", msgType),
						zap.Int("bytes", len(message)))
					continue
				}
			}

			previewLen := len(messageStr)
			if previewLen > 100 {
				previewLen = 100
			}
			m.logger.Debug("odds-stream-unparseable-message",
				zap.Error(err),
				zap.Int("bytes", len(message)),
				zap.String("preview", messageStr[:previewLen]))
			continue
		}

		for i := range msgs {
			start := time.Now()
			msg := &msgs[i]

			MessagesReceivedTotal.WithLabelValues(msg.EventType).Inc()

			quote, err := msg.toQuote()
			if err != nil {
				m.logger.Debug("odds-stream-invalid-quote",
					zap.Error(err),
					zap.String("fixture-id", msg.FixtureID))
				MessagesDroppedTotal.WithLabelValues("invalid").Inc()
				continue
			}

			// Send to channel (non-blocking)
			select {
			case m.quoteChan <- quote:
			default:
				m.logger.Warn("quote-channel-full", zap.String("fixture-id", quote.FixtureID))
				MessagesDroppedTotal.WithLabelValues("channel_full").Inc()
			}

			MessageLatencySeconds.Observe(time.Since(start).Seconds())
		}
	}
}

// toQuote converts a stream message into a quote.
func (msg *quoteMessage) toQuote() (*types.OddsQuote, error) {
	market := types.MarketType(msg.Market)
	if !market.Valid() {
		return nil, fmt.Errorf("unknown market %q", msg.Market)
	}
	if msg.FixtureID == "" {
		return nil, fmt.Errorf("missing fixture id")
	}
	if len(msg.Odds) == 0 {
		return nil, fmt.Errorf("missing odds")
	}

	capturedAt := msg.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now()
	}

	return &types.OddsQuote{
		FixtureID:  msg.FixtureID,
		Market:     market,
		Bookmaker:  msg.Bookmaker,
		Odds:       msg.Odds,
		CapturedAt: capturedAt,
	}, nil
}

// pingLoop sends periodic PING messages.
func (m *Manager) pingLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			if !m.connected.Load() {
				continue
			}

			m.mu.RLock()
			conn := m.conn
			m.mu.RUnlock()

			if conn == nil {
				continue
			}

			err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(time.Second))
			if err != nil {
				m.logger.Warn("ping-error", zap.Error(err))
			}
		}
	}
}

// reconnectLoop handles reconnection when the connection drops.
func (m *Manager) reconnectLoop() {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		// Wait for disconnection
		if m.connected.Load() {
			time.Sleep(time.Second)
			continue
		}

		m.logger.Warn("connection-lost-initiating-reconnect")

		err := m.reconnectMgr.Reconnect(m.ctx, m.connect)
		if err != nil {
			if err == context.Canceled {
				return
			}
			m.logger.Error("reconnection-failed", zap.Error(err))
			continue
		}

		// Resubscribe to all fixtures
		err = m.resubscribeAll(m.ctx)
		if err != nil {
			m.logger.Error("resubscribe-failed", zap.Error(err))
			m.connected.Store(false)
			continue
		}

		m.logger.Info("reconnection-complete-restarting-read-loop")

		// Restart read loop
		m.wg.Add(1)
		go m.readLoop()
	}
}

// resubscribeAll resubscribes to all previously subscribed fixtures.
func (m *Manager) resubscribeAll(ctx context.Context) error {
	m.mu.RLock()
	fixtureIDs := make([]string, 0, len(m.subscribed))
	for fixtureID := range m.subscribed {
		fixtureIDs = append(fixtureIDs, fixtureID)
	}
	m.mu.RUnlock()

	if len(fixtureIDs) == 0 {
		return nil
	}

	subscribeMsg := map[string]interface{}{
		"fixture_ids": fixtureIDs,
		"operation":   "subscribe",
	}

	m.mu.RLock()
	err := m.conn.WriteJSON(subscribeMsg)
	m.mu.RUnlock()

	if err != nil {
		return fmt.Errorf("write resubscribe message: %w", err)
	}

	m.logger.Info("resubscribed-to-all-fixtures", zap.Int("count", len(fixtureIDs)))

	return nil
}

// QuoteChan returns the channel for receiving live odds quotes.
func (m *Manager) QuoteChan() <-chan *types.OddsQuote {
	return m.quoteChan
}

// Close gracefully closes the odds stream manager.
func (m *Manager) Close() error {
	m.logger.Info("closing-odds-stream")

	m.cancel()

	m.mu.RLock()
	if m.conn != nil {
		m.conn.Close()
	}
	m.mu.RUnlock()

	m.wg.Wait()

	close(m.quoteChan)

	ActiveConnections.Set(0)

	m.logger.Info("odds-stream-closed")

	return nil
}

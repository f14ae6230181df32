package memory

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/qrave1/RhythmDuel/internal/application/constant"
	"github.com/qrave1/RhythmDuel/internal/application/metric"
)

// WebsocketConnectionRepository интерфейс для работы с активными соединениями в памяти
type WebsocketConnectionRepository interface {
	Add(connID string, conn *websocket.Conn)
	Remove(connID string)

	// Write ставит сообщение в очередь соединения и не блокируется на сети
	Write(connID string, payload any)
}

type WSOptions struct {
	SendBuffer   int
	PingInterval time.Duration
	WriteTimeout time.Duration
}

// queuedWS - соединение с очередью исходящих сообщений.
// Писать в gorilla conn может только writePump.
type queuedWS struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

type wsConnectionRepository struct {
	// wsConns хранит map[conn_id]*queuedWS
	wsConns map[string]*queuedWS

	opts WSOptions

	mu sync.RWMutex
}

func NewWSConnectionRepository(opts WSOptions) WebsocketConnectionRepository {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 64
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 30 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}

	return &wsConnectionRepository{
		wsConns: make(map[string]*queuedWS, 10),
		opts:    opts,
	}
}

func (w *wsConnectionRepository) Add(connID string, conn *websocket.Conn) {
	qws := &queuedWS{
		id:   connID,
		conn: conn,
		send: make(chan []byte, w.opts.SendBuffer),
	}

	w.mu.Lock()
	w.wsConns[connID] = qws
	w.mu.Unlock()

	metric.IncrementWSActiveConnections()

	go w.writePump(qws)
}

func (w *wsConnectionRepository) Remove(connID string) {
	w.mu.Lock()
	qws, exists := w.wsConns[connID]
	if exists {
		delete(w.wsConns, connID)
	}
	w.mu.Unlock()

	if !exists {
		return
	}

	qws.close()

	metric.DecrementWSActiveConnections()
}

func (w *wsConnectionRepository) Write(connID string, payload any) {
	qws, ok := w.getQueuedWS(connID)
	if !ok {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error(
			"marshal websocket payload",
			slog.Any(constant.Error, err),
			slog.String(constant.ConnID, connID),
		)
		return
	}

	if !qws.enqueue(data) {
		// Клиент не успевает читать: рвём соединение, read loop обработает отключение
		slog.Warn("websocket send buffer full, closing connection", slog.String(constant.ConnID, connID))
		qws.conn.Close()
	}
}

func (w *wsConnectionRepository) getQueuedWS(connID string) (*queuedWS, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	conn, ok := w.wsConns[connID]
	return conn, ok
}

func (w *wsConnectionRepository) writePump(qws *queuedWS) {
	ticker := time.NewTicker(w.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-qws.send:
			qws.conn.SetWriteDeadline(time.Now().Add(w.opts.WriteTimeout))

			if !ok {
				qws.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := qws.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Error(
					"write to websocket",
					slog.Any(constant.Error, err),
					slog.String(constant.ConnID, qws.id),
				)
				qws.conn.Close()
				return
			}

		case <-ticker.C:
			qws.conn.SetWriteDeadline(time.Now().Add(w.opts.WriteTimeout))

			if err := qws.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.Error(
					"ping failed",
					slog.Any(constant.Error, err),
					slog.String(constant.ConnID, qws.id),
				)
				qws.conn.Close()
				return
			}
		}
	}
}

func (q *queuedWS) enqueue(data []byte) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return true
	}

	select {
	case q.send <- data:
		return true
	default:
		return false
	}
}

func (q *queuedWS) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.send)
}

package handler

import (
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/albapepper/gardenwatch/internal/audio"
	"github.com/albapepper/gardenwatch/internal/engine"
	"github.com/albapepper/gardenwatch/internal/feed"
	"github.com/albapepper/gardenwatch/internal/prefs"
)

// Stream message types. Each state channel keeps its own type so clients can
// keep the latest value per type.
const (
	StreamHello     = "hello"
	StreamRows      = "rows"
	StreamShops     = "shops"
	StreamPurchases = "purchases"
	StreamWeather   = "weather"
	StreamRules     = "rules"
	StreamAlert     = "alert"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBuffer     = 64
	maxClientFrame = 4 << 10
)

// Envelope is one stream message.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// clientMessage is what a stream client may send. Only "stop" is acted on.
type clientMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type streamClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	mu     sync.Mutex
	closed bool
}

func newStreamClient(conn *websocket.Conn) *streamClient {
	return &streamClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// enqueue never blocks: a client that cannot keep up is disconnected and
// may reconnect for a fresh snapshot.
func (c *streamClient) enqueue(env Envelope) bool {
	data, err := json.Marshal(env)
	if err != nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		c.closed = true
		close(c.done)
		return false
	}
}

func (c *streamClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.done)
	}
}

func (c *streamClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// Stream upgrades to a websocket and pushes every state channel: the current
// value of each on connect, then every change, plus audio alert events.
// @Summary State stream
// @Description Websocket. Sends a hello message with the client id, then rows, shops, purchases, weather and rules messages (current value first, then every change) and alert messages for audio events. Clients may send {"type":"stop","id":...} to stop an alert loop.
// @Tags stream
// @Success 101
// @Router /stream [get]
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Stream upgrade failed", "error", err)
		return
	}

	c := newStreamClient(conn)
	go c.writePump()
	h.logger.Info("Stream client connected", "client_id", c.id, "remote", r.RemoteAddr)

	c.enqueue(Envelope{Type: StreamHello, Data: map[string]string{"id": c.id}})
	unsubs := []func(){
		h.eng.OnChangeNow(func(s engine.State) { c.enqueue(Envelope{Type: StreamRows, Data: s}) }),
		h.eng.OnShopsChangeNow(func(s feed.Shop) { c.enqueue(Envelope{Type: StreamShops, Data: s}) }),
		h.eng.OnPurchasesChangeNow(func(p feed.Purchases) { c.enqueue(Envelope{Type: StreamPurchases, Data: p}) }),
		h.eng.OnWeatherChangeNow(func(wt engine.Weather) { c.enqueue(Envelope{Type: StreamWeather, Data: wt}) }),
		h.eng.OnRulesChangeNow(func(m map[string]prefs.Rule) { c.enqueue(Envelope{Type: StreamRules, Data: m}) }),
	}
	if h.player != nil {
		unsubs = append(unsubs, h.player.AddOutput(audio.OutputFunc(func(e audio.Event) {
			c.enqueue(Envelope{Type: StreamAlert, Data: e})
		})))
	}
	defer func() {
		for _, unsub := range unsubs {
			unsub()
		}
		c.close()
		h.logger.Info("Stream client disconnected", "client_id", c.id)
	}()

	h.readPump(c)
}

// readPump blocks until the connection fails or is closed by either side.
func (h *Handler) readPump(c *streamClient) {
	c.conn.SetReadLimit(maxClientFrame)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg clientMessage
		if json.Unmarshal(payload, &msg) != nil {
			continue
		}
		if msg.Type == "stop" && msg.ID != "" && h.player != nil {
			h.player.StopLoop(msg.ID)
		}
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.cfg == nil {
		return true
	}
	return slices.Contains(h.cfg.CORSAllowOrigins, "*") || slices.Contains(h.cfg.CORSAllowOrigins, origin)
}

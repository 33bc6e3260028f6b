package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/fingerspell/internal/capture"
	"github.com/ayusman/fingerspell/internal/detector"
	"github.com/ayusman/fingerspell/internal/gesture"
	"github.com/ayusman/fingerspell/internal/logger"
	"github.com/ayusman/fingerspell/internal/server/api"
)

const (
	broadcastInterval = 66 * time.Millisecond
	writeWait         = time.Second
	// sendBuffer is how many messages a slow client may fall behind before
	// frames are dropped for it.
	sendBuffer = 4
)

// The UI is served from the same local server; origins are not checked.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// landmarksMessage is pushed to every client on each broadcast tick.
type landmarksMessage struct {
	Hands     []detector.HandLandmarks `json:"hands"`
	Result    gesture.Result           `json:"result"`
	Timestamp int64                    `json:"timestamp"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// writeLoop drains send until it is closed or a write fails.
func (c *wsClient) writeLoop() {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// LandmarksHandler streams landmarks and the classified letter to WebSocket
// clients. The camera is only read while someone is connected.
type LandmarksHandler struct {
	detector   detector.Detector
	camera     capture.Camera
	classifier *gesture.Classifier
	log        logrus.FieldLogger

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	running bool
	start   sync.Once

	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewLandmarksHandler creates a handler that classifies frames from c with
// d and cl. The broadcast loop starts with the first client.
func NewLandmarksHandler(d detector.Detector, c capture.Camera, cl *gesture.Classifier, log logrus.FieldLogger) *LandmarksHandler {
	return &LandmarksHandler{
		detector:   d,
		camera:     c,
		classifier: cl,
		log:        logger.OrDiscard(log),
		clients:    make(map[*wsClient]struct{}),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

// Close stops the broadcast loop and disconnects every client. It waits for
// the loop to exit and is safe to call more than once.
func (h *LandmarksHandler) Close() {
	h.stopOnce.Do(func() { close(h.done) })

	h.mu.Lock()
	running := h.running
	for c := range h.clients {
		c.conn.Close()
	}
	h.mu.Unlock()

	if running {
		<-h.stopped
	}
}

func (h *LandmarksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade")
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.start.Do(func() {
		h.mu.Lock()
		h.running = true
		h.mu.Unlock()
		go h.broadcast()
	})

	go c.writeLoop()

	// Clients never send; reading only notices when they leave.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, c)
	close(c.send)
	h.mu.Unlock()
}

func (h *LandmarksHandler) connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// snapshot reads one frame and classifies the first hand in it.
func (h *LandmarksHandler) snapshot() (landmarksMessage, error) {
	frame, err := h.camera.ReadFrame()
	if err != nil {
		return landmarksMessage{}, err
	}
	defer frame.Close()

	hands, err := h.detector.Detect(frame)
	if err != nil {
		return landmarksMessage{}, err
	}

	msg := landmarksMessage{
		Hands:     append([]detector.HandLandmarks{}, hands...),
		Timestamp: time.Now().UnixMilli(),
	}
	if len(hands) > 0 {
		msg.Result = h.classifier.ClassifyHand(&hands[0])
	}
	return msg, nil
}

// broadcast runs until Close.
func (h *LandmarksHandler) broadcast() {
	defer close(h.stopped)

	ticker := time.NewTicker(broadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
		}

		if h.connected() == 0 {
			continue
		}

		msg, err := h.snapshot()
		if err != nil {
			continue
		}
		data, err := api.Codec.Marshal(msg)
		if err != nil {
			h.log.WithError(err).Error("encoding landmarks message")
			continue
		}

		h.mu.RLock()
		for c := range h.clients {
			select {
			case c.send <- data:
			default:
			}
		}
		h.mu.RUnlock()
	}
}

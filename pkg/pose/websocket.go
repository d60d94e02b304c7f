package pose

import (
	"BodyMeasure/internal/entity"
	"BodyMeasure/pkg/imaging"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const frameHeaderSize = 8

// ErrRedialThrottled is returned while the sidecar is down and the redial budget is spent.
var ErrRedialThrottled = errors.New("pose service redial throttled")

type WebsocketConfig struct {
	URL              string
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	PingInterval     time.Duration
	// RedialInterval is the steady rate at which a lost connection may be redialed; zero disables throttling.
	RedialInterval time.Duration
	RedialBurst    int
}

func DefaultWebsocketConfig(url string) WebsocketConfig {
	return WebsocketConfig{
		URL:              url,
		HandshakeTimeout: 10 * time.Second,
		ReadTimeout:      20 * time.Second,
		WriteTimeout:     5 * time.Second,
		PingInterval:     30 * time.Second,
		RedialInterval:   time.Second,
		RedialBurst:      3,
	}
}

// WebsocketDetector talks to a pose-estimation sidecar over a single persistent websocket. Frames are sent one
// at a time: each binary request is answered by exactly one JSON reply.
type WebsocketDetector struct {
	cfg    WebsocketConfig
	log    *logrus.Logger
	dialer *websocket.Dialer
	redial *rate.Limiter

	mu     sync.Mutex
	conn   *websocket.Conn
	callMu sync.Mutex

	closed chan struct{}
	once   sync.Once
}

func NewWebsocketDetector(cfg WebsocketConfig, logger *logrus.Logger) *WebsocketDetector {
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = cfg.HandshakeTimeout

	limit := rate.Inf
	if cfg.RedialInterval > 0 {
		limit = rate.Every(cfg.RedialInterval)
	}

	d := &WebsocketDetector{
		cfg:    cfg,
		log:    logger,
		dialer: &dialer,
		redial: rate.NewLimiter(limit, max(cfg.RedialBurst, 1)),
		closed: make(chan struct{}),
	}

	go d.connectInBackground()

	return d
}

func (d *WebsocketDetector) connectInBackground() {
	if _, err := d.connection(); err != nil {
		d.log.WithField("url", d.cfg.URL).Warnf("Initial connection to pose service failed: %v. Will retry on demand.", err)
		return
	}
	d.log.WithField("url", d.cfg.URL).Info("Connected to pose service")
}

// connection returns the live connection, dialing a new one when there is none.
func (d *WebsocketDetector) connection() (*websocket.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	select {
	case <-d.closed:
		return nil, errors.New("pose detector is closed")
	default:
	}

	if d.conn != nil {
		return d.conn, nil
	}

	if d.cfg.URL == "" {
		return nil, errors.New("pose service URL not configured")
	}

	if !d.redial.Allow() {
		return nil, ErrRedialThrottled
	}

	conn, _, err := d.dialer.Dial(d.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", d.cfg.URL, err)
	}

	conn.SetPingHandler(func(appData string) error {
		if err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(d.cfg.WriteTimeout)); err != nil {
			d.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	d.conn = conn
	go d.keepAlive(conn)

	return conn, nil
}

// markDead drops conn if it is still the current connection.
func (d *WebsocketDetector) markDead(conn *websocket.Conn) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == conn {
		d.conn = nil
	}
	conn.Close()
}

func (d *WebsocketDetector) keepAlive(conn *websocket.Conn) {
	if d.cfg.PingInterval <= 0 {
		return
	}

	ticker := time.NewTicker(d.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.closed:
			return
		case <-ticker.C:
		}

		d.mu.Lock()
		current := d.conn == conn
		d.mu.Unlock()
		if !current {
			return
		}

		if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(d.cfg.WriteTimeout)); err != nil {
			d.log.Warnf("Ping to pose service failed, marking connection as dead: %v", err)
			d.markDead(conn)
			return
		}
	}
}

func (d *WebsocketDetector) Detect(ctx context.Context, img *imaging.RGBImage) (entity.PoseLandmarks, error) {
	conn, err := d.connection()
	if err != nil {
		return nil, fmt.Errorf("cannot connect to pose service: %w", err)
	}

	d.callMu.Lock()
	defer d.callMu.Unlock()

	frame := EncodeFrame(img)

	if err := conn.SetWriteDeadline(deadline(ctx, d.cfg.WriteTimeout)); err != nil {
		d.markDead(conn)
		return nil, fmt.Errorf("error setting write deadline: %w", err)
	}

	d.log.WithFields(logrus.Fields{
		"width":  img.Width,
		"height": img.Height,
		"bytes":  len(frame),
	}).Debug("Sending frame to pose service")

	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		d.markDead(conn)
		return nil, fmt.Errorf("error sending pose frame: %w", err)
	}

	if err := conn.SetReadDeadline(deadline(ctx, d.cfg.ReadTimeout)); err != nil {
		d.markDead(conn)
		return nil, fmt.Errorf("error setting read deadline: %w", err)
	}

	_, message, err := conn.ReadMessage()
	if err != nil {
		d.markDead(conn)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("error reading pose reply: %w", ctxErr)
		}
		return nil, fmt.Errorf("error reading pose reply: %w", err)
	}

	_ = conn.SetReadDeadline(time.Time{})
	_ = conn.SetWriteDeadline(time.Time{})

	var reply detectionReply
	if err := jsoniter.Unmarshal(message, &reply); err != nil {
		return nil, fmt.Errorf("error unmarshaling pose reply: %w", err)
	}

	d.log.WithFields(logrus.Fields{
		"detected":  reply.Detected,
		"landmarks": len(reply.Landmarks),
	}).Debug("Received reply from pose service")

	return reply.landmarks()
}

func (d *WebsocketDetector) Close() error {
	d.once.Do(func() {
		close(d.closed)
	})

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return nil
	}

	_ = d.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(d.cfg.WriteTimeout),
	)
	err := d.conn.Close()
	d.conn = nil
	return err
}

// EncodeFrame lays out img as the sidecar expects it: big-endian uint32 width and height followed by the
// packed RGB pixels.
func EncodeFrame(img *imaging.RGBImage) []byte {
	frame := make([]byte, frameHeaderSize+len(img.Pix))
	binary.BigEndian.PutUint32(frame[0:4], uint32(img.Width))
	binary.BigEndian.PutUint32(frame[4:8], uint32(img.Height))
	copy(frame[frameHeaderSize:], img.Pix)
	return frame
}

func deadline(ctx context.Context, timeout time.Duration) time.Time {
	d := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}
	return d
}

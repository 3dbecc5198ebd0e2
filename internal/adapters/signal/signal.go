package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Tandem/internal/app/orch"
	"github.com/dkeye/Tandem/internal/config"
	"github.com/dkeye/Tandem/internal/core"
	"github.com/dkeye/Tandem/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type SignalWSController struct {
	Orch       *orch.Orchestrator
	ReadLimit  int64
	PingPeriod time.Duration
	SendBuffer int
}

func NewSignalWSController(o *orch.Orchestrator, cfg *config.Config) *SignalWSController {
	return &SignalWSController{
		Orch:       o,
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		SendBuffer: cfg.SendBuffer,
	}
}

type outFrame struct {
	kind int
	data core.Frame
}

// WsSignalConn is a control channel. Sends never block: a full queue is
// reported as backpressure.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan outFrame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(ws *websocket.Conn, buffer int) *WsSignalConn {
	if buffer <= 0 {
		buffer = 32
	}
	return &WsSignalConn{conn: ws, send: make(chan outFrame, buffer)}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	return c.enqueue(outFrame{kind: websocket.TextMessage, data: f})
}

func (c *WsSignalConn) TrySendBinary(f core.Frame) error {
	return c.enqueue(outFrame{kind: websocket.BinaryMessage, data: f})
}

func (c *WsSignalConn) enqueue(f outFrame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

// Close stops the write pump. The pump sends a close frame and closes the
// socket, which in turn ends the read pump.
func (c *WsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	cid := domain.ConnectionID(c.Param("connection_id"))
	if cid == "" {
		cid = domain.NewConnectionID()
	}
	log.Info().Str("module", "signal").Str("conn", string(cid)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := newWsSignalConn(ws, ctl.SendBuffer)
	ctl.Orch.AttachSignal(cid, conn)

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, cid, conn)
}

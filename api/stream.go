package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/seenimoa/newspulse/internal/analysis/sentiment"
	"github.com/seenimoa/newspulse/internal/report"
	"github.com/seenimoa/newspulse/pkg/models"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Stream message types.
const (
	MsgArticle = "article"
	MsgReport  = "report"
	MsgError   = "error"
)

// WSMessage is one frame of a streamed report.
type WSMessage struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// wsConn serializes writes to a websocket connection.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) send(msg WSMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (c *wsConn) close(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	c.conn.Close()
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
}

// checkOrigin admits requests without an Origin header and origins listed
// in api.cors_origins. An empty list or "*" admits every origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.cfg.API.CORSOrigins) == 0 {
		return true
	}
	for _, o := range s.cfg.API.CORSOrigins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

// handleReportStream is GET /api/v1/ws/report. It takes the same query
// parameters as GET /api/v1/report, upgrades to a websocket, sends one
// "article" frame per article as it is scored, and finishes with a
// "report" frame holding the aggregate. Failures after the upgrade are
// sent as an "error" frame.
func (s *Server) handleReportStream(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		writeError(w, http.StatusServiceUnavailable, "no article source configured")
		return
	}
	p, msg := s.parseFetchParams(r)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	ws := &wsConn{conn: conn}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go wsReadPump(conn, cancel)
	go wsPinger(ctx, ws)

	rep, err := s.streamReport(ctx, ws, p)
	if err != nil {
		s.log.WithError(err).WithField("query", p.query).Warn("report stream failed")
		_ = ws.send(WSMessage{Type: MsgError, Error: err.Error()})
		ws.close("failed")
		return
	}
	if err := ws.send(WSMessage{Type: MsgReport, Data: rep}); err != nil {
		s.log.WithError(err).Debug("client went away before the report")
	}
	ws.close("done")
}

func (s *Server) streamReport(ctx context.Context, ws *wsConn, p fetchParams) (*report.Report, error) {
	articles, _, err := s.fetch(ctx, p)
	if err != nil {
		return nil, err
	}

	analyzed, err := sentiment.AnalyzeArticles(ctx, s.analyzer, articles, sentiment.BatchOptions{
		Workers: s.cfg.Analysis.Workers,
		Logger:  s.log,
		OnResult: func(a models.AnalyzedArticle) {
			if err := ws.send(WSMessage{Type: MsgArticle, Data: a}); err != nil {
				s.log.WithError(err).Debug("dropping article frame")
			}
		},
	})
	if err != nil {
		return nil, err
	}
	return report.Aggregate(p.query, analyzed, report.WithTopTerms(s.cfg.Report.TopTerms))
}

// wsReadPump drains client frames so pongs and close frames are handled,
// and cancels the stream once the client goes away.
func wsReadPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func wsPinger(ctx context.Context, ws *wsConn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ws.ping(); err != nil {
				return
			}
		}
	}
}

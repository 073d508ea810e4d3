package simd

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wavesim/wavesim/pkg/logger"
	"github.com/wavesim/wavesim/pkg/models"
)

const streamWriteTimeout = 10 * time.Second

// Stream event types
const (
	EventMeta     = "meta"
	EventSamples  = "samples"
	EventComplete = "complete"
)

// StreamEvent is one WebSocket message of a sample stream.
type StreamEvent struct {
	Type       string             `json:"type"`
	RunID      string             `json:"run_id"`
	Offset     int                `json:"offset,omitempty"`
	Time       []float64          `json:"time,omitempty"`
	Values     []float64          `json:"values,omitempty"`
	Points     int                `json:"points,omitempty"`
	Parameters *models.Parameters `json:"parameters,omitempty"`
	Statistics *models.Statistics `json:"statistics,omitempty"`
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// handleStreamRun handles GET /v1/runs/{id}/stream. Errors are reported as
// plain HTTP responses before the connection is upgraded.
func (s *HTTPServer) handleStreamRun(w http.ResponseWriter, r *http.Request, runID string) {
	q := StreamQuery{}
	var err error
	if q.Chunk, err = intParam(r, "chunk", s.cfg.Export.StreamChunk); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := requestValidate.Struct(&q); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid query: "+err.Error())
		return
	}

	run, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if run.Result == nil {
		s.writeError(w, http.StatusPreconditionFailed, "results not available for run in status "+string(run.Status))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("ws upgrade failed", "run_id", runID, "error", err)
		return
	}
	defer conn.Close()

	if err := streamRun(conn, run, q.Chunk); err != nil {
		logger.Warn("stream aborted", "run_id", runID, "error", err)
		return
	}
	logger.Debug("stream finished", "run_id", runID, "points", run.Result.Len())
}

// streamRun writes a meta event, the paired samples in chunks, and a final
// complete event carrying the statistics.
func streamRun(conn *websocket.Conn, run *models.Run, chunk int) error {
	result := run.Result
	if err := writeEvent(conn, StreamEvent{
		Type:       EventMeta,
		RunID:      run.ID,
		Points:     result.Len(),
		Parameters: run.Parameters,
	}); err != nil {
		return err
	}

	for off := 0; off < result.Len(); off += chunk {
		end := min(off+chunk, result.Len())
		if err := writeEvent(conn, StreamEvent{
			Type:   EventSamples,
			RunID:  run.ID,
			Offset: off,
			Time:   result.Time[off:end],
			Values: result.Values[off:end],
		}); err != nil {
			return err
		}
	}

	stats := result.Statistics
	if err := writeEvent(conn, StreamEvent{
		Type:       EventComplete,
		RunID:      run.ID,
		Points:     result.Len(),
		Statistics: &stats,
	}); err != nil {
		return err
	}

	deadline := time.Now().Add(streamWriteTimeout)
	return conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "complete"), deadline)
}

func writeEvent(conn *websocket.Conn, ev StreamEvent) error {
	if err := conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(ev)
}

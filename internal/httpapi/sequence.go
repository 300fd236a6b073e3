package httpapi

import (
	"net/http"
	"strings"

	"github.com/vk/ednavoyage/internal/live"
	"github.com/vk/ednavoyage/internal/zonegrid"
)

func (s *Server) snapshotBody() live.Message {
	return live.NewMessage(s.svc.Sequencer.Snapshot(), s.svc.Sequencer.Levels())
}

func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotBody())
}

func (s *Server) getGrid(w http.ResponseWriter, r *http.Request) {
	snap := s.svc.Sequencer.Snapshot()
	var b strings.Builder
	if err := snap.Grid().Render(&b); err != nil {
		writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("legend") != "false" {
		b.WriteString(zonegrid.Legend())
		b.WriteByte('\n')
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(b.String()))
}

func (s *Server) restartSequence(w http.ResponseWriter, r *http.Request) {
	s.svc.Sequencer.Start(s.ctx)
	s.logger.Info("Sequence restarted over HTTP.")
	writeJSON(w, http.StatusAccepted, s.snapshotBody())
}

type aggregationRequest struct {
	Level string `json:"level"`
}

func (s *Server) setAggregation(w http.ResponseWriter, r *http.Request) {
	var req aggregationRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Sequencer.SetAggregation(req.Level); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.snapshotBody())
}

package events

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"postplanner/internal/common"
)

// StreamHandler writes a team's events as Server-Sent Events. The team comes
// from the authenticated request context.
type StreamHandler struct {
	watcher   Watcher
	heartbeat time.Duration
	log       *zap.Logger
}

func NewStreamHandler(watcher Watcher, heartbeat time.Duration, log *zap.Logger) *StreamHandler {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &StreamHandler{watcher: watcher, heartbeat: heartbeat, log: log}
}

func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	teamID := common.TeamIDFromContext(r.Context())
	if teamID == "" {
		http.Error(w, `{"error":"team required"}`, http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, `{"error":"streaming unsupported"}`, http.StatusInternalServerError)
		return
	}

	events, err := h.watcher.Watch(r.Context(), teamID)
	if err != nil {
		h.log.Error("watch failed", zap.String("team_id", teamID), zap.Error(err))
		http.Error(w, `{"error":"event stream unavailable"}`, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, event); err != nil {
				h.log.Debug("stream closed", zap.String("team_id", teamID), zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, event common.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
	return err
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"modelmind/internal/assist"
	"modelmind/internal/models"
	"modelmind/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
)

type providerInfo struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Model string `json:"model"`
}

func (s *HTTPServer) handleProviders(w http.ResponseWriter, r *http.Request) {
	infos := lo.Map(s.compare.GetProviders(), func(p models.ProviderSpec, _ int) providerInfo {
		return providerInfo{Name: p.Name, Kind: p.Kind, Model: p.Model}
	})
	writeJSON(w, http.StatusOK, map[string]any{"providers": infos})
}

type compareRequest struct {
	Prompt string `json:"prompt"`
	// Temperature falls back to the configured default when absent.
	Temperature *float64 `json:"temperature,omitempty"`
	Providers   []string `json:"providers"`
}

// streamEvent is the payload of fragment, error and metrics events.
type streamEvent struct {
	Index    int                `json:"index"`
	Provider string             `json:"provider"`
	Text     string             `json:"text,omitempty"`
	Metrics  *models.RunMetrics `json:"metrics,omitempty"`
}

type compareResponse struct {
	Result  models.ComparisonResult `json:"result"`
	Winners []models.Winner         `json:"winners"`
}

// handleCompare streams a comparison as server-sent events. Each provider item
// becomes a fragment, error or metrics event; a final result event carries the
// whole comparison and its winners.
func (s *HTTPServer) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	temperature := s.compare.Temperature()
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	if temperature < 0 || temperature > 2 {
		writeWarning(w, "temperature must be between 0 and 2")
		return
	}

	providers, err := service.SelectProviders(s.compare.GetProviders(), req.Providers)
	if err != nil {
		writeWarning(w, err.Error())
		return
	}
	if err := service.ValidateInput(req.Prompt, providers); err != nil {
		writeWarning(w, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}

	// A comparison outlives the server's WriteTimeout; each provider run is
	// bounded by its own timeout instead.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		s.logger.Debug("cannot clear write deadline", "error", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	result, err := s.compare.RunComparison(r.Context(), req.Prompt, temperature, providers, func(ev service.Event) {
		payload := streamEvent{Index: ev.Index, Provider: ev.Provider, Text: ev.Item.Text, Metrics: ev.Item.Metrics}
		if err := writeEvent(w, string(ev.Item.Kind), payload); err != nil {
			s.logger.Debug("dropping stream event", "provider", ev.Provider, "error", err)
			return
		}
		flusher.Flush()
	})
	if err != nil {
		// Input was validated above, so this only happens on programming errors.
		_ = writeEvent(w, "error", errorResponse{Error: err.Error()})
		flusher.Flush()
		return
	}

	resp := compareResponse{Result: result, Winners: []models.Winner{}}
	if len(result.Runs) > 0 {
		resp.Winners = service.ComputeWinners(result.Runs)
	}
	if err := writeEvent(w, "result", resp); err != nil {
		s.logger.Debug("client went away before the result", "error", err)
		return
	}
	flusher.Flush()
}

func writeEvent(w http.ResponseWriter, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}

type assistRequest struct {
	Text     string `json:"text"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type assistResponse struct {
	Tool   string `json:"tool"`
	Output string `json:"output"`
}

func (s *HTTPServer) handleAssist(w http.ResponseWriter, r *http.Request) {
	tool := chi.URLParam(r, "tool")

	if s.assistant == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("no assist provider is available"))
		return
	}

	var req assistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	var (
		out string
		err error
	)
	switch tool {
	case "coach":
		out, err = s.assistant.Coach(r.Context(), req.Text)
	case "ethics":
		out, err = s.assistant.CheckEthics(r.Context(), req.Text)
	case "interview":
		out, err = s.assistant.InterviewFeedback(r.Context(), req.Question, req.Answer)
	default:
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown tool %q", tool))
		return
	}

	switch {
	case errors.Is(err, assist.ErrEmptyInput):
		writeWarning(w, err.Error())
	case err != nil:
		writeError(w, http.StatusBadGateway, err)
	default:
		writeJSON(w, http.StatusOK, assistResponse{Tool: tool, Output: out})
	}
}

func (s *HTTPServer) handleInterviewQuestion(w http.ResponseWriter, r *http.Request) {
	topic := assist.TopicBehavioral
	if raw := r.URL.Query().Get("topic"); raw != "" {
		t, ok := assist.ParseTopic(raw)
		if !ok {
			writeWarning(w, fmt.Sprintf("unknown topic %q", raw))
			return
		}
		topic = t
	}

	q, err := assist.RandomQuestion(topic, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"topic": string(topic), "question": q})
}

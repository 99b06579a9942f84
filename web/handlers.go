package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"markestedt/alpa/command"
	"markestedt/alpa/storage"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

// requireHistory reports history as unavailable when it's disabled
func (s *Server) requireHistory(w http.ResponseWriter) bool {
	if s.history == nil {
		http.Error(w, "History is disabled", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// handleStatus returns whether a generation is running
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := "idle"
	if s.control.Generating() {
		status = "generating"
	}

	writeJSON(w, map[string]string{"status": status})
}

// handleCancel asks the running generation to stop
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	generating := s.control.Generating()
	if generating {
		s.control.RequestCancel()
		slog.Info("Cancel requested from dashboard")
	}

	writeJSON(w, map[string]any{"status": "success", "cancelled": generating})
}

// handleCommands lists the configured commands
func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	type commandInfo struct {
		Name    string `json:"name"`
		Keys    string `json:"keys"`
		Action  string `json:"action"`
		Input   string `json:"input,omitempty"`
		Mode    string `json:"mode,omitempty"`
		Newline string `json:"newline,omitempty"`
	}

	cmds, err := s.GetConfig().ParseCommands()
	if err != nil {
		slog.Error("Failed to parse commands", "error", err)
		http.Error(w, "Invalid command configuration", http.StatusInternalServerError)
		return
	}

	infos := make([]commandInfo, 0, len(cmds))
	for _, c := range cmds {
		info := commandInfo{
			Name:   c.Name,
			Keys:   c.Keys.String(),
			Action: c.Action.String(),
		}
		if c.Action == command.ActionGenerate {
			info.Input = c.Generate.Input.Kind.String()
			info.Mode = c.Generate.Mode.Kind.String()
			info.Newline = c.Generate.Newline.String()
		}
		infos = append(infos, info)
	}

	writeJSON(w, infos)
}

// handleConfig returns the current configuration without secrets
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg := s.GetConfig()

	sanitized := struct {
		Provider       string  `json:"provider"`
		Model          string  `json:"model"`
		Host           string  `json:"host,omitempty"`
		BaseURL        string  `json:"baseUrl,omitempty"`
		HasAPIKey      bool    `json:"hasApiKey"`
		MaxTokens      int     `json:"maxTokens"`
		Temperature    float64 `json:"temperature"`
		PollIntervalMs int     `json:"pollIntervalMs"`
		WindowWidth    int     `json:"windowWidth"`
		WindowHeight   int     `json:"windowHeight"`
		WebPort        int     `json:"webPort"`
		TrayEnabled    bool    `json:"trayEnabled"`
		HistoryEnabled bool    `json:"historyEnabled"`
		Commands       int     `json:"commands"`
	}{
		Provider:       cfg.Model.Provider,
		Model:          cfg.Model.Model,
		Host:           cfg.Model.Host,
		BaseURL:        cfg.Model.BaseURL,
		HasAPIKey:      cfg.Model.APIKey != "",
		MaxTokens:      cfg.Model.MaxTokens,
		Temperature:    cfg.Model.Temperature,
		PollIntervalMs: cfg.Poller.IntervalMs,
		WindowWidth:    cfg.Window.Width,
		WindowHeight:   cfg.Window.Height,
		WebPort:        cfg.Web.Port,
		TrayEnabled:    cfg.Tray.Enabled,
		HistoryEnabled: cfg.History.Enabled,
		Commands:       len(cfg.Commands),
	}

	writeJSON(w, sanitized)
}

// handleStats returns statistics for the specified time range
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.requireHistory(w) {
		return
	}

	days := 7 // default to 7 days
	if d, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil && d > 0 {
		days = d
	}

	overall, err := s.history.GetOverallStats(days)
	if err != nil {
		slog.Error("Failed to get overall stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	daily, err := s.history.GetDailyStats(days)
	if err != nil {
		slog.Error("Failed to get daily stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	outcomes, err := s.history.GetOutcomeStats(days)
	if err != nil {
		slog.Error("Failed to get outcome stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	engines, err := s.history.GetEngineStats(days)
	if err != nil {
		slog.Error("Failed to get engine stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"days":     days,
		"overall":  overall,
		"daily":    daily,
		"outcomes": outcomes,
		"engines":  engines,
	})
}

// handleHistory handles GET and DELETE requests for generation history
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !s.requireHistory(w) {
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetHistory(w, r)
	case http.MethodDelete:
		s.handleDeleteHistory(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetHistory returns paginated generation history
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50 // default
	offset := 0

	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		offset = o
	}

	generations, err := s.history.GetGenerations(limit, offset)
	if err != nil {
		slog.Error("Failed to get generations", "error", err)
		http.Error(w, "Failed to get history", http.StatusInternalServerError)
		return
	}

	total, err := s.history.GetGenerationCount()
	if err != nil {
		slog.Error("Failed to get generation count", "error", err)
		http.Error(w, "Failed to get history", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"generations": generations,
		"total":       total,
		"limit":       limit,
		"offset":      offset,
	})
}

// handleDeleteHistory deletes a generation by ID (/api/history/123)
func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/history/")
	if idStr == r.URL.Path || idStr == "" {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	if err := s.history.DeleteGeneration(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "Generation not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to delete generation", "error", err, "id", id)
		http.Error(w, "Failed to delete generation", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{"status": "success"})
}

// Package config exposes which LLM provider the extractor talks to and lets a
// client switch it at runtime.
package config

import (
	"encoding/json"
	"net/http"

	"kpi_extractor/pkg/core/agent"
)

// Response describes the provider setup.
type Response struct {
	ActiveProvider string            `json:"active_provider"`
	Available      []string          `json:"available"`
	Agents         map[string]string `json:"agents"`
}

type SwitchRequest struct {
	Provider string `json:"provider"`
}

// Handler holds dependencies for config endpoints
type Handler struct {
	AgentMgr *agent.Manager
}

func NewHandler(agentMgr *agent.Manager) *Handler {
	return &Handler{AgentMgr: agentMgr}
}

// Register mounts the config routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/config", h.HandleConfig)
	mux.HandleFunc("/api/config/switch", h.HandleSwitch)
}

func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r, "GET, OPTIONS") {
		return
	}
	h.respond(w)
}

// HandleSwitch changes the active provider. Agents with their own provider
// override keep it.
func (h *Handler) HandleSwitch(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r, "POST, OPTIONS") {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SwitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.AgentMgr.SetGlobalProvider(req.Provider); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.respond(w)
}

func (h *Handler) respond(w http.ResponseWriter) {
	agents := make(map[string]string)
	for _, name := range h.AgentMgr.Agents() {
		agents[name] = h.AgentMgr.ProviderFor(name)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Response{
		ActiveProvider: h.AgentMgr.GetActiveProvider(),
		Available:      h.AgentMgr.Available(),
		Agents:         agents,
	})
}

// preflight sets CORS headers for local dev and answers OPTIONS requests.
func preflight(w http.ResponseWriter, r *http.Request, methods string) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

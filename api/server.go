package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/realm-movement/game/config"
	"github.com/wricardo/realm-movement/game/service"
	"github.com/wricardo/realm-movement/transport/websocket"
)

// maxBodySize bounds request bodies. Cost matrix requests carry whole maps.
const maxBodySize = 8 << 20

// Server represents the REST API server
type Server struct {
	service service.MovementService
	hub     *websocket.Hub
	router  *mux.Router
	log     logrus.FieldLogger
}

// NewServer creates a new API server
func NewServer(movementService service.MovementService, hub *websocket.Hub, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		service: movementService,
		hub:     hub,
		router:  mux.NewRouter(),
		log:     log,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(s.logRequests)

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Rulesets
	api.HandleFunc("/rulesets", s.handleListRulesets).Methods("GET")
	api.HandleFunc("/rulesets/{name}", s.handleGetRuleset).Methods("GET")
	api.HandleFunc("/rulesets/{name}", s.handleSaveRuleset).Methods("PUT")

	// Overland movement
	api.HandleFunc("/rulesets/{name}/overland/cost-matrix", s.handleCostMatrix).Methods("POST")

	// Combat movement and casting
	api.HandleFunc("/rulesets/{name}/combat/cost-to-enter", s.handleCostToEnter).Methods("POST")
	api.HandleFunc("/rulesets/{name}/combat/can-cross", s.handleCanCross).Methods("POST")
	api.HandleFunc("/rulesets/{name}/combat/move-cost", s.handleMoveCost).Methods("POST")
	api.HandleFunc("/rulesets/{name}/combat/casting-penalty", s.handleCastingPenalty).Methods("POST")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// statusRecorder remembers the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// upgrades need the original writer to hijack the connection
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debug("request handled")
	})
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps a service error to an HTTP status
func statusFor(err error) int {
	switch {
	case service.IsNotFound(err):
		return http.StatusNotFound
	case service.IsDataIntegrity(err):
		return http.StatusUnprocessableEntity
	case service.IsBadRequest(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	respondError(w, status, err.Error())
}

// decode reads a JSON body into v, answering 400 on failure
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil {
		respondError(w, http.StatusBadRequest, "Request body is required")
		return false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	return true
}

// rulesetName reads the {name} path variable. "default" selects the default ruleset.
func rulesetName(r *http.Request) string {
	name := mux.Vars(r)["name"]
	for _, ext := range config.Extensions {
		name = strings.TrimSuffix(name, ext)
	}
	if name == config.DefaultRulesetName {
		return ""
	}
	return name
}

// Ruleset Handlers

func (s *Server) handleListRulesets(w http.ResponseWriter, r *http.Request) {
	rulesets, err := s.service.ListRulesets(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, rulesets)
}

func (s *Server) handleGetRuleset(w http.ResponseWriter, r *http.Request) {
	ruleset, err := s.service.GetRuleset(r.Context(), rulesetName(r))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, ruleset)
}

func (s *Server) handleSaveRuleset(w http.ResponseWriter, r *http.Request) {
	var ruleset config.Ruleset
	if !decode(w, r, &ruleset) {
		return
	}

	name := mux.Vars(r)["name"]
	if ruleset.Name == "" {
		ruleset.Name = name
	}

	if err := s.service.SaveRuleset(r.Context(), name, &ruleset); err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "Ruleset saved successfully",
		"ruleset_id": name,
	})
}

// Movement Handlers

func (s *Server) handleCostMatrix(w http.ResponseWriter, r *http.Request) {
	var req service.CostMatrixRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := s.service.OverlandCostMatrix(r.Context(), rulesetName(r), &req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCostToEnter(w http.ResponseWriter, r *http.Request) {
	var req service.CostToEnterRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := s.service.CombatCostToEnter(r.Context(), rulesetName(r), &req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCanCross(w http.ResponseWriter, r *http.Request) {
	var req service.CanCrossRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := s.service.CombatCanCross(r.Context(), rulesetName(r), &req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMoveCost(w http.ResponseWriter, r *http.Request) {
	var req service.MoveCostRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := s.service.CombatMoveCost(r.Context(), rulesetName(r), &req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastingPenalty(w http.ResponseWriter, r *http.Request) {
	var req service.CastingPenaltyRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := s.service.CastingRangePenalty(r.Context(), rulesetName(r), &req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	ruleset := query.Get("ruleset")
	if ruleset == config.DefaultRulesetName {
		ruleset = ""
	}

	// Verify the ruleset exists before upgrading
	if _, err := s.service.GetRuleset(r.Context(), ruleset); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	room := query.Get("battle")
	if room == "" {
		room = query.Get("ruleset")
	}
	if room == "" {
		room = config.DefaultRulesetName
	}

	s.hub.ServeWS(w, r, room, ruleset)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

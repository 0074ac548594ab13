// Package rest is the stateless read path: conversation history, reachable
// partners, and message search, served over plain HTTP independent of the
// live channel.
package rest

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"campus-link/auth"
	"campus-link/domain"
	"campus-link/errors"
	"campus-link/services"

	"github.com/gorilla/mux"
	"github.com/samber/lo"
)

const defaultSearchLimit = 20

type Server struct {
	log     *slog.Logger
	history services.IHistoryService
	router  *mux.Router
}

// NewServer wires the API routes. The WebSocket gateway handler is mounted
// on the same router so one listener serves both paths; /healthz stays
// outside the authenticated subrouter.
func NewServer(log *slog.Logger, history services.IHistoryService,
	secret []byte, resolver auth.UserResolver, gateway http.HandlerFunc) *Server {
	s := &Server{log: log, history: history, router: mux.NewRouter()}

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/ws", gateway)

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(auth.Middleware(secret, resolver))
	api.HandleFunc("/messages/search", s.handleSearch).Methods(http.MethodGet)
	api.HandleFunc("/messages/{userID}", s.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/partners", s.handlePartners).Methods(http.MethodGet)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

type messageDTO struct {
	ID             string    `json:"id"`
	SenderID       string    `json:"sender_id"`
	RecipientID    string    `json:"recipient_id"`
	ConversationID string    `json:"conversation_id"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
	Read           bool      `json:"read"`
}

type partnerDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Unread     int    `json:"unread"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	otherUserID := mux.Vars(r)["userID"]
	messages, err := s.history.History(caller, otherUserID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	dtos := lo.Map(messages, func(item domain.Message, _ int) messageDTO {
		return toMessageDTO(item)
	})
	s.writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handlePartners(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	partners, err := s.history.Partners(caller)
	if err != nil {
		s.writeError(w, err)
		return
	}

	dtos := lo.Map(partners, func(item services.Partner, _ int) partnerDTO {
		return partnerDTO{
			ID:         item.User.ID,
			Name:       item.User.Name,
			Role:       string(item.User.Role),
			Department: item.User.Department,
			Unread:     item.Unread,
		}
	})
	s.writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "missing query", http.StatusBadRequest)
		return
	}
	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	hits, err := s.history.Search(r.Context(), caller, query, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, hits)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case stderrors.Is(err, errors.ErrUserNotFound), stderrors.Is(err, errors.ErrRecipientNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case stderrors.Is(err, errors.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		s.log.Error("read path failure", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("failed to encode response", "error", err)
	}
}

func toMessageDTO(message domain.Message) messageDTO {
	return messageDTO{
		ID:             message.ID.String(),
		SenderID:       message.SenderID,
		RecipientID:    message.RecipientID,
		ConversationID: string(message.Room),
		Body:           message.Body,
		CreatedAt:      message.CreatedAt,
		Read:           message.Read,
	}
}

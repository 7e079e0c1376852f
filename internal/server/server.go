package server

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"chatapp/internal/app"
	"chatapp/internal/ratelimit"
	"chatapp/internal/util"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App
	// Optional write-endpoint limiters; nil disables limiting.
	CreateUserLimiter  *ratelimit.FixedWindowLimiter
	ChatMessageLimiter *ratelimit.FixedWindowLimiter
}

// Server exposes the HTTP endpoints for users, conversations, and chats.
type Server struct {
	app                *app.App
	mux                *http.ServeMux
	createUserLimiter  *ratelimit.FixedWindowLimiter
	chatMessageLimiter *ratelimit.FixedWindowLimiter
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:                cfg.App,
		mux:                http.NewServeMux(),
		createUserLimiter:  cfg.CreateUserLimiter,
		chatMessageLimiter: cfg.ChatMessageLimiter,
	}
	s.routes()
	return s
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(util.WithCORS(s.mux))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/users/", s.handleUsers)
	s.mux.HandleFunc("/conversations", s.handleConversations)
	s.mux.HandleFunc("/conversations/", s.handleConversationByID)
	s.mux.HandleFunc("/chat-messages/", s.handleChatMessages)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// request/response contracts

type createUserRequest struct {
	UserName    string `json:"userName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	ImageURL    string `json:"imageUrl"`
}

type createConversationRequest struct {
	ID         string `json:"id"`
	UserID     int64  `json:"userId"`
	Title      string `json:"title"`
	IsFavorite bool   `json:"isFavorite"`
}

type updateConversationRequest struct {
	IsFavorite *bool `json:"isFavorite"`
}

type createChatRequest struct {
	UserID         int64  `json:"userId"`
	Text           string `json:"text"`
	ConversationID string `json:"conversationId"`
}

// /users/ covers create, fetch by id, and the per-user conversation list.
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/users/"), "/")
	if rest == "" {
		s.handleCreateUser(w, r)
		return
	}
	parts := strings.Split(rest, "/")
	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "user id must be an integer")
		return
	}
	switch {
	case len(parts) == 1:
		s.handleGetUser(w, r, userID)
	case len(parts) == 2 && parts[1] == "conversations":
		s.handleUserConversations(w, r, userID)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.createUserLimiter, "too many signup attempts") {
		return
	}
	var req createUserRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.UserName) == "" {
		writeError(w, http.StatusUnprocessableEntity, "userName is required")
		return
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(req.Email)); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "email must be a valid address")
		return
	}
	user, err := s.app.CreateUser(req.UserName, req.Email, req.PhoneNumber, req.ImageURL)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request, userID int64) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	user, err := s.app.GetUser(userID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) handleUserConversations(w http.ResponseWriter, r *http.Request, userID int64) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	conversations, err := s.app.ListUserConversations(userID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversations": conversations})
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req createConversationRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "userId is required")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusUnprocessableEntity, "title is required")
		return
	}
	if req.ID != "" {
		if _, err := uuid.Parse(req.ID); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "id must be a valid UUID")
			return
		}
	}
	conversation, err := s.app.CreateConversation(req.ID, req.UserID, req.Title, req.IsFavorite)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"conversation": conversation})
}

// /conversations/{id} covers update, delete, and the chat-message feed.
func (s *Server) handleConversationByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/conversations/"), "/")
	if rest == "" {
		s.handleConversations(w, r)
		return
	}
	parts := strings.Split(rest, "/")
	conversationID := parts[0]
	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodPut:
			s.handleUpdateConversation(w, r, conversationID)
		case http.MethodDelete:
			s.handleDeleteConversation(w, r, conversationID)
		default:
			methodNotAllowed(w)
		}
	case len(parts) == 2 && parts[1] == "chat-messages":
		s.handleConversationChatMessages(w, r, conversationID)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleUpdateConversation(w http.ResponseWriter, r *http.Request, conversationID string) {
	var req updateConversationRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.IsFavorite == nil {
		writeError(w, http.StatusUnprocessableEntity, "isFavorite is required")
		return
	}
	if err := s.app.UpdateConversation(conversationID, *req.IsFavorite); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Conversation updated."})
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request, conversationID string) {
	if _, err := uuid.Parse(conversationID); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "conversation id must be a valid UUID")
		return
	}
	if err := s.app.DeleteConversation(conversationID); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConversationChatMessages(w http.ResponseWriter, r *http.Request, conversationID string) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if _, err := uuid.Parse(conversationID); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "conversation id must be a valid UUID")
		return
	}
	messages, err := s.app.ListChatMessages(conversationID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"chatMessages": messages})
}

func (s *Server) handleChatMessages(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/chat-messages/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.chatMessageLimiter, "too many messages") {
		return
	}
	var req createChatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "userId is required")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusUnprocessableEntity, "text is required")
		return
	}
	if req.ConversationID == "" {
		writeError(w, http.StatusUnprocessableEntity, "conversationId is required")
		return
	}
	message, err := s.app.CreateChatMessage(req.UserID, req.Text, req.ConversationID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"chatMessage": message})
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	if limiter == nil {
		return true
	}
	key := r.URL.Path + "|" + clientIP(r)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

func clientIP(r *http.Request) string {
	if xfwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xfwd != "" {
		parts := strings.Split(xfwd, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrUserNotFound), errors.Is(err, app.ErrConversationNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

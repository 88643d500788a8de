package handler

import (
	"log/slog"
	"net/http"

	chatSvc "chatrelay/internal/domain/services/chat"
	"chatrelay/internal/httputil"
)

// ChatHandler serves the public chat endpoint
// Follows Clean Architecture: handlers only communicate with services, never repositories
type ChatHandler struct {
	chatService chatSvc.ChatService
	logger      *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService chatSvc.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// PostChat runs one turn and returns the assistant's reply
// POST /chat
// Returns 200 {reply, side_effect_id?}; failures are {error} with 400, 500 or 504
func (h *ChatHandler) PostChat(w http.ResponseWriter, r *http.Request) {
	var req chatSvc.TurnRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondJSON(w, http.StatusBadRequest, httputil.ErrorBody{Error: "invalid request body"})
		return
	}

	result, err := h.chatService.ProcessTurn(r.Context(), &req)
	if err != nil {
		h.logger.Error("chat turn failed",
			"conversation_key", req.Key(),
			"status", statusFor(err),
			"error", err,
		)
		handleChatError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// Preflight answers OPTIONS /chat for clients that skip the CORS handshake headers.
// Real preflights are answered by the CORS middleware before reaching here.
func (h *ChatHandler) Preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

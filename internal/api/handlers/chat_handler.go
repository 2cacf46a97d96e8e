package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	appMiddleware "github.com/davemk99/studyrag/internal/api/middlewares"
	"github.com/davemk99/studyrag/internal/services"
)

type ChatHandler struct {
	chat *services.ChatService
}

func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type ChatRequest struct {
	ConversationID string  `json:"conversation_id"`
	DocumentID     *string `json:"document_id"`
	Query          string  `json:"query"`
}

// QueryDocument runs one chat turn and streams the answer back as
// server-sent events: one "delta" event per model fragment, then a final
// "done" event carrying the answer source.
func (h *ChatHandler) QueryDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := appMiddleware.UserID(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", 400)
		return
	}
	if req.Query == "" {
		http.Error(w, "query is required", 400)
		return
	}
	if req.ConversationID == "" {
		req.ConversationID = uuid.NewString()
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	onDelta := func(text string) error {
		payload, err := json.Marshal(map[string]string{"delta": text})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	answer, err := h.chat.Answer(ctx, userID, req.ConversationID, req.Query, req.DocumentID, onDelta)
	if err != nil {
		// Headers are already sent; report the failure in-stream.
		payload, _ := json.Marshal(map[string]string{"error": err.Error()})
		fmt.Fprintf(w, "event: error\ndata: %s\n\n", payload)
		flusher.Flush()
		return
	}

	payload, _ := json.Marshal(map[string]string{
		"source":          answer.Source,
		"conversation_id": req.ConversationID,
	})
	fmt.Fprintf(w, "event: done\ndata: %s\n\n", payload)
	flusher.Flush()
}

// GetMessages returns a conversation's turns oldest-first.
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := appMiddleware.UserID(ctx)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conversationID := chi.URLParam(r, "conversation_id")
	messages, err := h.chat.Messages(ctx, userID, conversationID, 100)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

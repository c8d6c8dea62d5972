package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Usergeee443/nikoh/internal/domain/model"
	chatsvc "github.com/Usergeee443/nikoh/internal/services/chats"
	"github.com/Usergeee443/nikoh/internal/transport/http/dto"
	httperrors "github.com/Usergeee443/nikoh/internal/transport/http/errors"
)

type ChatsHandler struct {
	service *chatsvc.Service
}

func NewChatsHandler(service *chatsvc.Service) *ChatsHandler {
	return &ChatsHandler{service: service}
}

func (h *ChatsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CHATS_SERVICE_UNAVAILABLE", "chats service is unavailable")
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	records, err := h.service.List(r.Context(), identity.UserID)
	if err != nil {
		handleChatsError(w, err)
		return
	}

	now := time.Now().UTC()
	items := make([]dto.ChatItemResponse, 0, len(records))
	for _, record := range records {
		items = append(items, dto.ChatItemResponse{
			ID:            record.Chat.ID,
			PartnerID:     record.PartnerID,
			PartnerName:   record.PartnerName,
			UnreadCount:   record.UnreadCount,
			LastMessage:   record.LastMessage,
			LastMessageAt: record.LastMessageAt,
			ExpiresAt:     record.Chat.ExpiresAt,
			IsOpen:        record.Chat.OpenAt(now),
		})
	}

	httperrors.Write(w, http.StatusOK, dto.ChatsResponse{Items: items})
}

func (h *ChatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CHATS_SERVICE_UNAVAILABLE", "chats service is unavailable")
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	conv, err := h.service.Get(r.Context(), identity.UserID, chi.URLParam(r, "chatID"))
	if err != nil {
		handleChatsError(w, err)
		return
	}

	messages := make([]dto.MessageResponse, 0, len(conv.Messages))
	for _, message := range conv.Messages {
		messages = append(messages, messageResponse(message))
	}

	httperrors.Write(w, http.StatusOK, dto.ConversationResponse{
		ID:        conv.Chat.ID,
		PartnerID: conv.PartnerID,
		ExpiresAt: conv.Chat.ExpiresAt,
		IsOpen:    conv.Open,
		Messages:  messages,
	})
}

func (h *ChatsHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CHATS_SERVICE_UNAVAILABLE", "chats service is unavailable")
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	message, err := h.service.SendMessage(r.Context(), identity.UserID, chi.URLParam(r, "chatID"), req.Content)
	if err != nil {
		handleChatsError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, messageResponse(message))
}

func handleChatsError(w http.ResponseWriter, err error) {
	var throttled *chatsvc.ThrottledError
	switch {
	case errors.As(err, &throttled):
		httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
			Code:          "TOO_MANY_MESSAGES",
			Message:       "message rate limit exceeded",
			RetryAfterSec: throttled.RetryAfterSec,
		})
	case errors.Is(err, chatsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
	case errors.Is(err, chatsvc.ErrChatNotFound):
		writeNotFound(w, "CHAT_NOT_FOUND", "chat not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func messageResponse(message model.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:        message.ID,
		SenderID:  message.SenderID,
		Content:   message.Content,
		IsRead:    message.IsRead,
		CreatedAt: message.CreatedAt,
	}
}

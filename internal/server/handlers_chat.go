package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/roylo/portfolio/internal/chat"
)

// streamErrorMessage is the only error text SSE clients ever see. Raw error
// details stay in the server log.
const streamErrorMessage = "I'm experiencing some technical difficulties. Please try again or reach out directly."

var validate = validator.New()

// ChatRequest is the request body for both chat endpoints.
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

// decodeChatRequest decodes and validates the chat request body.
func decodeChatRequest(r *http.Request) (ChatRequest, error) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, &ErrValidation{Field: "body", Message: "invalid JSON"}
	}
	if err := validate.Struct(req); err != nil {
		return req, &ErrValidation{Field: "message", Message: "message is required and must be at most 4000 characters"}
	}
	return req, nil
}

// handleChat produces one complete assistant message.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, err := decodeChatRequest(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	msg := s.assistant.ProcessMessage(r.Context(), req.Message)
	s.jsonResponse(w, http.StatusOK, msg)
}

// paragraphEvent is the payload of paragraph_start frames.
type paragraphEvent struct {
	MessageID       string `json:"messageId"`
	ParentMessageID string `json:"parentMessageId"`
	Content         string `json:"content"`
	ParagraphIndex  int    `json:"paragraphIndex"`
	TotalParagraphs int    `json:"totalParagraphs"`
	Timestamp       string `json:"timestamp"`
}

// completionEvent is the payload of paragraph_complete and complete frames.
type completionEvent struct {
	MessageID       string       `json:"messageId"`
	ParentMessageID string       `json:"parentMessageId,omitempty"`
	FullMessage     chat.Message `json:"fullMessage"`
}

// handleChatStream produces the same assistant message as handleChat but
// delivers it over SSE, split into paragraph frames paced by the delay
// policy. Each paragraph is announced with paragraph_start and finalized
// with paragraph_complete; response metadata rides only on the last
// paragraph so clients attach carousel cards to the final bubble.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	req, err := decodeChatRequest(r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	streamID := uuid.NewString()
	if err := sse.WriteEvent("start", map[string]string{
		"messageId": streamID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return
	}

	msg, err := s.generateMessage(r.Context(), req.Message)
	if err != nil {
		log.Printf("chat stream error: %v", err)
		sse.WriteError(streamErrorMessage)
		return
	}

	paragraphs := chat.SplitIntoParagraphs(msg.Content)
	ctx := r.Context()
	for i, paragraph := range paragraphs {
		if i > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.delay(i)):
			}
		}

		paraID := fmt.Sprintf("%s-para-%d", streamID, i)
		if err := sse.WriteEvent("paragraph_start", paragraphEvent{
			MessageID:       paraID,
			ParentMessageID: streamID,
			Content:         paragraph,
			ParagraphIndex:  i,
			TotalParagraphs: len(paragraphs),
			Timestamp:       time.Now().UTC().Format(time.RFC3339),
		}); err != nil {
			return
		}

		paraMsg := chat.Message{
			ID:        paraID,
			Content:   paragraph,
			Role:      msg.Role,
			Timestamp: time.Now().UTC(),
			Type:      msg.Type,
		}
		if i == len(paragraphs)-1 {
			paraMsg.Metadata = msg.Metadata
			paraMsg.CarouselCards = msg.CarouselCards
		}
		if err := sse.WriteEvent("paragraph_complete", completionEvent{
			MessageID:       paraID,
			ParentMessageID: streamID,
			FullMessage:     paraMsg,
		}); err != nil {
			return
		}
	}

	sse.WriteEvent("complete", completionEvent{ //nolint:errcheck
		MessageID:   streamID,
		FullMessage: msg,
	})
}

// generateMessage isolates assistant execution so a panic in response
// generation becomes an SSE error frame instead of a broken stream.
func (s *Server) generateMessage(ctx context.Context, message string) (msg chat.Message, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("response generation panicked: %v", rec)
		}
	}()
	return s.assistant.ProcessMessage(ctx, message), nil
}

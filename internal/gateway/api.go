// ABOUTME: HTTP handlers and middleware for the chat API
// ABOUTME: Bearer JWT auth, user group checks, and markdown rendering

package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/averla/assist-gateway/internal/auth"
	"github.com/averla/assist-gateway/internal/orchestrator"
	"github.com/averla/assist-gateway/internal/store"
)

type contextKey string

const userContextKey contextKey = "user"

// ChatRequest is the JSON request body for POST /v1/chat.
// Exactly one of Message and Voice must be set.
type ChatRequest struct {
	Message string `json:"message,omitempty"`
	Voice   string `json:"voice,omitempty"`  // base64-encoded audio
	Format  string `json:"format,omitempty"` // "text" (default) or "html"
}

// ChatResponse is the JSON response body for POST /v1/chat.
type ChatResponse struct {
	RequestID            string `json:"request_id"`
	Text                 string `json:"text"`
	HTML                 string `json:"html,omitempty"`
	ContinueConversation bool   `json:"continue_conversation"`
	Voice                string `json:"voice,omitempty"` // base64-encoded audio
	Usage                Usage  `json:"usage"`
}

// Usage reports token consumption for the request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// requireUser authenticates the bearer token and resolves the user.
// Unknown tokens get 401; guests and banned users get 403. A token
// whose group claim already rules out conversing is refused without a
// store lookup; the stored group is still the authority for the rest.
func (g *Gateway) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := g.verifier.Verify(token)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				writeError(w, http.StatusUnauthorized, "token expired")
				return
			}
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		if claims.Group != "" && !store.GroupCanConverse(claims.Group) {
			g.logger.Warn("refused request", "user_id", claims.UserID, "group", claims.Group)
			writeError(w, http.StatusForbidden, "access denied")
			return
		}

		user, err := g.users.GetUser(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "unknown user")
				return
			}
			g.logger.Error("resolving user failed", "user_id", claims.UserID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if !user.CanConverse() {
			g.logger.Warn("refused request", "user_id", user.ID, "group", user.Group)
			writeError(w, http.StatusForbidden, "access denied")
			return
		}

		if err := g.users.TouchUserSeen(r.Context(), user.ID); err != nil {
			g.logger.Warn("updating last_seen failed", "user_id", user.ID, "error", err)
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// handleChat handles POST /v1/chat requests.
func (g *Gateway) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	user, ok := r.Context().Value(userContextKey).(*store.User)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Message == "" && req.Voice == "" {
		writeError(w, http.StatusBadRequest, "message or voice is required")
		return
	}

	var voice []byte
	if req.Voice != "" {
		var err error
		voice, err = base64.StdEncoding.DecodeString(req.Voice)
		if err != nil {
			writeError(w, http.StatusBadRequest, "voice is not valid base64")
			return
		}
	}

	answer := g.conv.Process(r.Context(), orchestrator.Request{
		UserID: user.ID,
		Text:   req.Message,
		Voice:  voice,
	})

	resp := ChatResponse{
		RequestID:            answer.RequestID,
		Text:                 answer.Text,
		ContinueConversation: answer.ContinueConversation,
		Usage: Usage{
			PromptTokens:     answer.PromptTokens,
			CompletionTokens: answer.CompletionTokens,
			TotalTokens:      answer.TotalTokens,
		},
	}
	if len(answer.Voice) > 0 {
		resp.Voice = base64.StdEncoding.EncodeToString(answer.Voice)
	}
	if req.Format == "html" {
		resp.HTML = g.renderHTML(answer.Text)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// renderHTML converts the answer's markdown to HTML. On conversion
// failure the plain text is still available in the Text field.
func (g *Gateway) renderHTML(text string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(text), &buf); err != nil {
		g.logger.Error("rendering markdown failed", "error", err)
		return ""
	}
	return buf.String()
}

// handleHealth handles GET /health requests. No auth required.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: msg})
}

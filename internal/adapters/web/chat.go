package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"sales-assistant/internal/app"

	"github.com/google/uuid"
)

// ── SSE helpers ───────────────────────────────────────────────────────────────

// sendSSE writes one SSE event and flushes. data is JSON-marshalled.
func sendSSE(w http.ResponseWriter, f http.Flusher, event string, data any) {
	b, _ := json.Marshal(data)
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(b))
	f.Flush()
}

// ── Request types ─────────────────────────────────────────────────────────────

type chatMessageRequest struct {
	Text string `json:"text"`
}

type chatConfirmRequest struct {
	Token  string `json:"token"`
	Action string `json:"action"` // "confirm" or "cancel"
}

// ── POST /chat ───────────────────────────────────────────────────────────────

// chatMessage accepts an operator message and streams the agent's outcome via SSE.
//
// SSE event types:
//
//	status       {"status":"thinking"}
//	answer       {"text":"..."}
//	action_card  {"token":"uuid","tool":"...","args":{...},"summary":"..."}
//	error        {"message":"...","code":"..."}
//	done         {}
func (h *Handler) chatMessage(w http.ResponseWriter, r *http.Request) {
	var req chatMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, r, "text is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, "streaming not supported", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	sendSSE(w, flusher, "status", map[string]any{"status": "thinking"})

	result, err := h.svc.InterpretDomainAction(r.Context(), req.Text)
	if err != nil {
		_, code := classifyError(err)
		h.logger.WarnContext(r.Context(), "chat interpretation failed", slog.Any("error", err))
		sendSSE(w, flusher, "error", map[string]any{"message": err.Error(), "code": code})
		sendSSE(w, flusher, "done", map[string]any{})
		return
	}

	switch result.Kind {
	case app.DomainActionKindAnswer:
		sendSSE(w, flusher, "answer", map[string]any{"text": result.Answer})

	case app.DomainActionKindProposed:
		token := uuid.NewString()
		err := h.pending.Put(r.Context(), token, PendingAction{
			ToolName:  result.ToolName,
			Args:      result.ToolArgs,
			Summary:   result.Summary,
			CreatedAt: time.Now(),
		})
		if err != nil {
			h.logger.ErrorContext(r.Context(), "failed to store pending action", slog.Any("error", err))
			sendSSE(w, flusher, "error", map[string]any{"message": "could not store the proposed action", "code": "INTERNAL_ERROR"})
			break
		}
		sendSSE(w, flusher, "action_card", map[string]any{
			"token":   token,
			"tool":    result.ToolName,
			"args":    result.ToolArgs,
			"summary": result.Summary,
		})
	}

	sendSSE(w, flusher, "done", map[string]any{})
}

// ── POST /chat/confirm ───────────────────────────────────────────────────────

// chatConfirm executes or cancels a pending action identified by its token.
func (h *Handler) chatConfirm(w http.ResponseWriter, r *http.Request) {
	var req chatConfirmRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Token == "" {
		writeError(w, r, "token is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if req.Action != "confirm" && req.Action != "cancel" {
		writeError(w, r, "action must be 'confirm' or 'cancel'", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	action, ok, err := h.pending.Take(r.Context(), req.Token)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load pending action", slog.Any("error", err))
		writeError(w, r, "could not load the pending action", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	if !ok {
		writeError(w, r, "token not found or expired", "NOT_FOUND", http.StatusNotFound)
		return
	}

	if req.Action == "cancel" {
		writeJSON(w, map[string]any{"ok": true, "message": "Cancelled."})
		return
	}

	result, err := h.svc.ExecuteWriteTool(r.Context(), action.ToolName, action.Args)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true, "tool": action.ToolName, "result": result})
}

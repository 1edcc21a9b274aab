package handlers

import (
	"context"

	"github.com/Freeeeeet/makeup_scheduler/internal/controller/state"
	"github.com/go-telegram/bot/models"
)

// requireLinked returns the chat's faculty p_id, asking the user to /link when there is none
func (h *Handlers) requireLinked(ctx context.Context, m Messenger, msg *models.Message) (string, bool) {
	chatID := msg.Chat.ID
	pid := h.stateManager.GetString(chatID, state.KeyPID)
	if h.stateManager.GetState(chatID) == state.StateNone || pid == "" {
		h.sendError(ctx, m, chatID, "🔒 Link your faculty account first: /link <p_id> <pin>")
		return "", false
	}
	return pid, true
}

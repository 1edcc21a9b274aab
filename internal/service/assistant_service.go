package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"go.uber.org/zap"
)

// Completer is a chat-capable language model
type Completer interface {
	Complete(ctx context.Context, system string, history []model.ChatMessage, message string) (string, error)
}

// HistoryStore keeps assistant conversations between requests
type HistoryStore interface {
	Load(ctx context.Context, conversation string) ([]model.ChatMessage, error)
	Save(ctx context.Context, conversation string, history []model.ChatMessage) error
	Clear(ctx context.Context, conversation string) error
}

type AssistantRequest struct {
	// Conversation keys the stored history. Empty means stateless.
	Conversation string
	// History, when set, replaces the stored history for this turn
	History       []model.ChatMessage
	Message       string
	FreeSlotsInfo string
}

type AssistantService struct {
	llm      Completer
	history  HistoryStore
	maxTurns int
	logger   *zap.Logger
}

func NewAssistantService(llm Completer, history HistoryStore, maxTurns int, logger *zap.Logger) *AssistantService {
	if maxTurns <= 0 {
		maxTurns = 10
	}
	return &AssistantService{
		llm:      llm,
		history:  history,
		maxTurns: maxTurns,
		logger:   logger,
	}
}

// Reply answers one user message with the free-slot data as context
func (s *AssistantService) Reply(ctx context.Context, req AssistantRequest) (string, error) {
	const op = "generate-response"

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return "", Invalid(op, "message is required")
	}
	if s.llm == nil {
		return "", E(KindUpstream, op, ErrAssistantDown)
	}

	history := sanitizeHistory(req.History)
	if req.History == nil && s.history != nil && req.Conversation != "" {
		stored, err := s.history.Load(ctx, req.Conversation)
		if err != nil {
			// a lost history only degrades the answer
			s.logger.Warn("Failed to load assistant history", zap.String("conversation", req.Conversation), zap.Error(err))
		} else {
			history = stored
		}
	}

	reply, err := s.llm.Complete(ctx, SystemPrompt(req.FreeSlotsInfo), history, message)
	if err != nil {
		s.logger.Error("Assistant completion failed", zap.Error(err))
		return "", E(KindUpstream, op, fmt.Errorf("%w: %v", ErrAssistantDown, err))
	}

	if s.history != nil && req.Conversation != "" {
		history = append(history,
			model.ChatMessage{Role: model.ChatRoleUser, Content: message},
			model.ChatMessage{Role: model.ChatRoleAssistant, Content: reply},
		)
		if limit := s.maxTurns * 2; len(history) > limit {
			history = history[len(history)-limit:]
		}
		if err := s.history.Save(ctx, req.Conversation, history); err != nil {
			s.logger.Warn("Failed to save assistant history", zap.String("conversation", req.Conversation), zap.Error(err))
		}
	}

	return reply, nil
}

// Reset forgets a stored conversation
func (s *AssistantService) Reset(ctx context.Context, conversation string) error {
	if s.history == nil || conversation == "" {
		return nil
	}
	if err := s.history.Clear(ctx, conversation); err != nil {
		return E(KindUpstream, "assistant-reset", err)
	}
	return nil
}

func sanitizeHistory(in []model.ChatMessage) []model.ChatMessage {
	out := make([]model.ChatMessage, 0, len(in))
	for _, m := range in {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		if role != model.ChatRoleUser && role != model.ChatRoleAssistant {
			continue
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		out = append(out, model.ChatMessage{Role: role, Content: m.Content})
	}
	return out
}

// SystemPrompt instructs the model how to read the free-slot data
func SystemPrompt(freeSlotsInfo string) string {
	var sb strings.Builder
	sb.WriteString(`You are a helpful scheduling assistant for the Makeup app that faculty use to book makeup classes. Be conversational, brief and actionable. Do not reply in markdown, always reply in plain English text.

IMPORTANT INSTRUCTIONS:
- When asked for free slots or recommendations, always name specific room numbers and time slots
- Keep responses to 2-3 sentences
- Focus on GREEN slots

DATA EXPLANATION:
- GREEN means at least half of the enrolled students can attend. Recommend these.
- RED means most students have a conflict. Avoid these.
- Each room number (like "14", "36", "23") has its own free time slots.

Good answer: "I found 3 options. Room 36 is free 08:00-11:00 and 11:00-14:00, and Room 30 is free 11:00-14:00."
Bad answer: "You can book a makeup class in the time slots with a green status."

When asked about availability, list 2-3 specific room and time combinations from GREEN slots.

Available Data:
`)
	if strings.TrimSpace(freeSlotsInfo) == "" {
		sb.WriteString("(no free-slot data was provided)")
	} else {
		sb.WriteString(freeSlotsInfo)
	}
	return sb.String()
}

// FormatFreeSlots renders a free-slot result as assistant context, one line per slot
func FormatFreeSlots(r *FreeSlotsResult) string {
	if r == nil || len(r.Rooms) == 0 {
		return "No free slots."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Target day: %s\n", r.TargetDay)
	if r.Course != nil {
		fmt.Fprintf(&sb, "Course: %s (regular meeting %s %s)\n", r.Course.Name, r.Course.Day, r.Course.Slot)
	}
	for _, room := range r.Rooms {
		if r.Course == nil {
			for _, f := range room.Free {
				fmt.Fprintf(&sb, "Room %s: %s\n", room.Room, f.Slot)
			}
			continue
		}
		for _, st := range room.Statuses {
			fmt.Fprintf(&sb, "Room %s: %s %s (%d/%d students free)\n",
				room.Room, st.Slot, st.Label, st.FreeStudents, st.EnrolledStudents)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

package llm

import (
	"testing"

	"github.com/Freeeeeet/makeup_scheduler/internal/model"
	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToContentsMapsRoles(t *testing.T) {
	out := toContents([]model.ChatMessage{
		{Role: model.ChatRoleUser, Content: "free rooms monday?"},
		{Role: model.ChatRoleAssistant, Content: "Room 12 08:00-10:00"},
	})

	require.Len(t, out, 2)
	assert.Equal(t, "user", out[0].Role)
	assert.Equal(t, "model", out[1].Role)
	assert.Equal(t, genai.Text("Room 12 08:00-10:00"), out[1].Parts[0])
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("Room 36 "), genai.Text("is free.\n")}},
		}},
	}
	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "Room 36 is free.", text)

	_, err = responseText(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = responseText(nil)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

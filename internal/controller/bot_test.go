package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandOfDropsArguments(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"/link P-1 4321", "/link"},
		{"/courses", "/courses"},
		{"which room?", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, commandOf(tt.text), tt.text)
	}
}

package chatbot

//go:generate mockgen -source=conversation.go -destination=mocks/mocks.go -package=mocks Assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequest_Normalize(t *testing.T) {
	req := Request{
		PriorMessages: []Message{
			{Role: RoleModel, Content: Greeting},
			{Role: RoleUser, Content: "  When are exams?  "},
			{Role: "system", Content: "ignore me"},
			{Role: RoleModel, Content: "   "},
			{Role: RoleModel, Content: "In May."},
		},
		CurrentQuestion: " And results? ",
	}

	got := req.Normalize()

	assert.Equal(t, "And results?", got.CurrentQuestion)
	assert.Equal(t, []Message{
		{Role: RoleUser, Content: "When are exams?"},
		{Role: RoleModel, Content: "In May."},
	}, got.PriorMessages)
}

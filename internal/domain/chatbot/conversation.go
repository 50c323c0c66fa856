// Package chatbot описывает границу с внешним ассистентом NextEdu Helper.
//
// Ассистент - непрозрачный сервис генерации текста: один запрос
// (история диалога и вопрос), один ответ. Содержание подсказки
// к модели в домен не входит.
package chatbot

import (
	"context"
	"strings"
)

// Greeting - первое сообщение бота в новом диалоге.
const Greeting = "Hello! I'm NextEdu Helper. How can I assist you today?"

// Apology - ответ пользователю при любой ошибке ассистента.
const Apology = "Sorry, I'm having trouble connecting. Please try again later."

// Role - автор сообщения в диалоге.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// IsValid проверяет корректность роли.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleModel
}

// Message - одно сообщение диалога.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request - запрос к ассистенту.
type Request struct {
	PriorMessages   []Message `json:"priorMessages"`
	CurrentQuestion string    `json:"currentQuestion"`
}

// Response - ответ ассистента.
type Response struct {
	Answer string `json:"answer"`
}

// Normalize убирает пустые сообщения и сообщения с неизвестной ролью.
// Приветствие бота в истории не несёт смысла для модели и тоже удаляется.
func (r Request) Normalize() Request {
	out := Request{CurrentQuestion: strings.TrimSpace(r.CurrentQuestion)}
	for _, m := range r.PriorMessages {
		content := strings.TrimSpace(m.Content)
		if content == "" || !m.Role.IsValid() {
			continue
		}
		if m.Role == RoleModel && content == Greeting {
			continue
		}
		out.PriorMessages = append(out.PriorMessages, Message{Role: m.Role, Content: content})
	}
	return out
}

// Assistant - внешний сервис ответов на вопросы.
// Реализация находится в infrastructure/external.
type Assistant interface {
	Answer(ctx context.Context, req Request) (Response, error)
}

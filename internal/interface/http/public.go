package http

import (
	"net/http"
	"time"

	"github.com/nextedu/portal/internal/application/command"
	"github.com/nextedu/portal/internal/domain/chatbot"
	"github.com/nextedu/portal/internal/domain/directory"
	"github.com/nextedu/portal/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOGIN
// ══════════════════════════════════════════════════════════════════════════════

type loginRequest struct {
	Role     string `json:"role" validate:"required,oneof=student teacher admin"`
	Username string `json:"username" validate:"required,notblank,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	account, err := s.deps.Login.Handle(command.LoginCommand{
		Role:     req.Role,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		s.requestLogger(r).Info("login rejected", logger.Role(req.Role), logger.Username(req.Username))
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, account)
}

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRATION
// ══════════════════════════════════════════════════════════════════════════════

type registrationRequest struct {
	FullName        string `json:"fullName" validate:"required,notblank,max=100"`
	DOB             string `json:"dob" validate:"required,datetime=2006-01-02"`
	Gender          string `json:"gender" validate:"omitempty,oneof=male female other"`
	StudentMobile   string `json:"studentMobile" validate:"omitempty,max=20"`
	ParentMobile    string `json:"parentMobile" validate:"omitempty,max=20"`
	Email           string `json:"email" validate:"required,email"`
	ProgramName     string `json:"programName" validate:"omitempty,max=100"`
	Section         string `json:"section" validate:"omitempty,max=10"`
	City            string `json:"city" validate:"omitempty,max=60"`
	State           string `json:"state" validate:"omitempty,max=60"`
	Username        string `json:"username" validate:"required,notblank,min=3,max=32"`
	Password        string `json:"password" validate:"required,min=6,max=128"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
	AgreeTerms      bool   `json:"agreeTerms"`
}

type registrationResponse struct {
	Username         string    `json:"username"`
	SubmittedAt      time.Time `json:"submittedAt"`
	PasswordStrength int       `json:"passwordStrength"`
	Message          string    `json:"message"`
}

func (s *Server) handleSubmitRegistration(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	res, err := s.deps.SubmitRegistration.Handle(r.Context(), command.SubmitRegistrationCommand{
		Params: directory.RegistrationParams{
			FullName:        req.FullName,
			DOB:             req.DOB,
			Gender:          req.Gender,
			StudentMobile:   req.StudentMobile,
			ParentMobile:    req.ParentMobile,
			Email:           req.Email,
			ProgramName:     req.ProgramName,
			Section:         req.Section,
			City:            req.City,
			State:           req.State,
			Username:        req.Username,
			Password:        req.Password,
			ConfirmPassword: req.ConfirmPassword,
			AgreeTerms:      req.AgreeTerms,
		},
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, registrationResponse{
		Username:         res.Username,
		SubmittedAt:      res.SubmittedAt,
		PasswordStrength: res.PasswordStrength,
		Message:          "Registration submitted. An administrator will review it shortly.",
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// ASSISTANT
// ══════════════════════════════════════════════════════════════════════════════

type assistantMessage struct {
	Role    string `json:"role" validate:"required,oneof=user model"`
	Content string `json:"content" validate:"max=4000"`
}

type assistantRequest struct {
	History  []assistantMessage `json:"history" validate:"max=50,dive"`
	Question string             `json:"question" validate:"required,notblank,max=2000"`
}

type assistantResponse struct {
	Answer   string `json:"answer"`
	Fallback bool   `json:"fallback"`
}

func (s *Server) handleAskAssistant(w http.ResponseWriter, r *http.Request) {
	var req assistantRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	history := make([]chatbot.Message, len(req.History))
	for i, m := range req.History {
		history[i] = chatbot.Message{Role: chatbot.Role(m.Role), Content: m.Content}
	}

	res, err := s.deps.Assistant.Handle(r.Context(), command.AskAssistantCommand{
		History:  history,
		Question: req.Question,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, assistantResponse{Answer: res.Answer, Fallback: res.Fallback})
}

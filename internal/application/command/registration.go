package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nextedu/portal/internal/domain/directory"
	"github.com/nextedu/portal/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRATION
// Students apply through the public form; an administrator approves or
// rejects each request.
// ══════════════════════════════════════════════════════════════════════════════

// RegistrationDesk is the part of the directory that handles requests.
type RegistrationDesk interface {
	SubmitRegistration(ctx context.Context, p directory.RegistrationParams) (directory.Registration, error)
	ApproveRegistration(ctx context.Context, username string) (directory.Student, error)
	RejectRegistration(ctx context.Context, username string) (directory.Registration, error)
}

// SubmitRegistrationCommand is the registration form.
type SubmitRegistrationCommand struct {
	Params directory.RegistrationParams
}

// Validate validates the command.
func (c SubmitRegistrationCommand) Validate() error {
	return c.Params.Validate()
}

// SubmitRegistrationResult contains the stored request.
type SubmitRegistrationResult struct {
	Username         string
	SubmittedAt      time.Time
	PasswordStrength int
}

// SubmitRegistrationHandler handles SubmitRegistrationCommand.
type SubmitRegistrationHandler struct {
	desk      RegistrationDesk
	publisher shared.EventPublisher
	logger    *slog.Logger
}

// NewSubmitRegistrationHandler creates a new SubmitRegistrationHandler.
func NewSubmitRegistrationHandler(desk RegistrationDesk, publisher shared.EventPublisher, logger *slog.Logger) *SubmitRegistrationHandler {
	return &SubmitRegistrationHandler{desk: desk, publisher: publisher, logger: loggerOrDefault(logger)}
}

// Handle stores the request until an administrator decides on it.
func (h *SubmitRegistrationHandler) Handle(ctx context.Context, cmd SubmitRegistrationCommand) (*SubmitRegistrationResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("submit_registration: %w", err)
	}

	reg, err := h.desk.SubmitRegistration(ctx, cmd.Params)
	if err != nil {
		return nil, fmt.Errorf("submit_registration: %w", err)
	}

	publish(h.publisher, h.logger, shared.NewRegistrationEvent(shared.EventRegistrationSubmitted, reg.Username, reg.FullName))
	return &SubmitRegistrationResult{
		Username:         reg.Username,
		SubmittedAt:      reg.SubmittedAt,
		PasswordStrength: directory.PasswordStrength(cmd.Params.Password),
	}, nil
}

// DecideRegistrationCommand approves or rejects one request.
type DecideRegistrationCommand struct {
	Username string
	Approve  bool
}

// Validate validates the command.
func (c DecideRegistrationCommand) Validate() error {
	if c.Username == "" {
		return shared.NewDomainError("registration", "Decide", shared.ErrEmptyValue, "username is required")
	}
	return nil
}

// DecideRegistrationResult contains the outcome. Student is set on approval.
type DecideRegistrationResult struct {
	Username string
	Approved bool
	Student  *directory.Student
}

// DecideRegistrationHandler handles DecideRegistrationCommand.
type DecideRegistrationHandler struct {
	desk      RegistrationDesk
	publisher shared.EventPublisher
	logger    *slog.Logger
}

// NewDecideRegistrationHandler creates a new DecideRegistrationHandler.
func NewDecideRegistrationHandler(desk RegistrationDesk, publisher shared.EventPublisher, logger *slog.Logger) *DecideRegistrationHandler {
	return &DecideRegistrationHandler{desk: desk, publisher: publisher, logger: loggerOrDefault(logger)}
}

// Handle enrolls the applicant in semester 1 or drops the request.
func (h *DecideRegistrationHandler) Handle(ctx context.Context, cmd DecideRegistrationCommand) (*DecideRegistrationResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("decide_registration: %w", err)
	}

	if !cmd.Approve {
		reg, err := h.desk.RejectRegistration(ctx, cmd.Username)
		if err != nil {
			return nil, fmt.Errorf("decide_registration: reject %s: %w", cmd.Username, err)
		}
		publish(h.publisher, h.logger, shared.NewRegistrationEvent(shared.EventRegistrationRejected, reg.Username, reg.FullName))
		return &DecideRegistrationResult{Username: reg.Username}, nil
	}

	student, err := h.desk.ApproveRegistration(ctx, cmd.Username)
	if err != nil {
		return nil, fmt.Errorf("decide_registration: approve %s: %w", cmd.Username, err)
	}

	publish(h.publisher, h.logger,
		shared.NewRegistrationEvent(shared.EventRegistrationApproved, student.Username, student.Name).WithStudent(student.ID))
	publish(h.publisher, h.logger,
		shared.NewStudentEnrolledEvent(student.ID, student.Name, student.Semester, "registration"))

	h.logger.Info("registration approved", "username", student.Username, "student_id", student.ID)
	return &DecideRegistrationResult{Username: student.Username, Approved: true, Student: &student}, nil
}

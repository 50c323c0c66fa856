package query

import (
	"fmt"
	"time"

	"github.com/nextedu/portal/internal/domain/fees"
	"github.com/nextedu/portal/pkg/timeutil"
)

// FeeItemView is a fee head with its due-date countdown.
type FeeItemView struct {
	fees.FeeItem
	DaysUntilDue *int `json:"daysUntilDue,omitempty"`
	Overdue      bool `json:"overdue"`
}

// FeesView is the fees page.
type FeesView struct {
	StudentID        string             `json:"studentId"`
	Items            []FeeItemView      `json:"summary"`
	Transactions     []fees.Transaction `json:"transactions"`
	TotalToPay       int                `json:"totalToPay"`
	TotalPaid        int                `json:"totalPaid"`
	TotalOutstanding int                `json:"totalOutstanding"`
}

// FeesHandler builds the fees page. Every student sees the same statement.
type FeesHandler struct {
	dir       Directory
	statement fees.Statement
	now       Clock
}

// NewFeesHandler creates a FeesHandler with the default statement.
func NewFeesHandler(dir Directory, now Clock) *FeesHandler {
	if now == nil {
		now = timeutil.Now
	}
	return &FeesHandler{dir: dir, statement: fees.DefaultStatement(), now: now}
}

// Handle returns the statement for a student.
func (h *FeesHandler) Handle(studentID string) (*FeesView, error) {
	if _, err := h.dir.Student(studentID); err != nil {
		return nil, fmt.Errorf("fees: %w", err)
	}
	return h.view(studentID, h.now()), nil
}

func (h *FeesHandler) view(studentID string, now time.Time) *FeesView {
	st := h.statement
	v := &FeesView{
		StudentID:        studentID,
		Items:            make([]FeeItemView, len(st.Summary)),
		Transactions:     st.Transactions,
		TotalToPay:       st.TotalToPay,
		TotalPaid:        st.TotalPaid,
		TotalOutstanding: st.TotalOutstanding,
	}
	for i, item := range st.Summary {
		iv := FeeItemView{FeeItem: item}
		if !item.IsSettled() {
			if days, ok := timeutil.DaysUntil(now, item.DueDate); ok {
				iv.DaysUntilDue = &days
				iv.Overdue = days < 0
			}
		}
		v.Items[i] = iv
	}
	return v
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nextedu/portal/internal/application/command"
	"github.com/nextedu/portal/internal/application/query"
)

func (s *Server) handleStudentDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.deps.StudentDashboard.Handle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, d)
}

func (s *Server) handleSemesterRecord(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.SemesterRecord.Handle(r.Context(), query.SemesterRecordQuery{
		StudentID:   chi.URLParam(r, "id"),
		SemesterKey: chi.URLParam(r, "semester"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if view.Cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleFees(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.Fees.Handle(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	err := s.deps.Faculty.MarkNotificationRead(r.Context(), command.MarkNotificationReadCommand{
		StudentID:      chi.URLParam(r, "id"),
		NotificationID: chi.URLParam(r, "notificationID"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

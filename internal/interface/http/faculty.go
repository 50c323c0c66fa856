package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nextedu/portal/internal/application/command"
	"github.com/nextedu/portal/internal/application/query"
	"github.com/nextedu/portal/internal/domain/directory"
)

func (s *Server) handleTeacherDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.deps.TeacherDashboard.Handle(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, d)
}

type announcementRequest struct {
	Content string `json:"content" validate:"required,notblank,max=2000"`
	Scope   string `json:"scope" validate:"omitempty,oneof=teacher global"`
}

func (s *Server) handlePostAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req announcementRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	scope := directory.ScopeTeacher
	if req.Scope != "" {
		scope = directory.Scope(req.Scope)
	}
	a, err := s.deps.Faculty.PostAnnouncement(r.Context(), command.PostAnnouncementCommand{
		TeacherID: chi.URLParam(r, "id"),
		Scope:     scope,
		Content:   req.Content,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, a)
}

type noteRequest struct {
	Message string `json:"message" validate:"required,notblank,max=2000"`
}

func (s *Server) handleSendNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	n, err := s.deps.Faculty.SendNote(r.Context(), command.SendNoteCommand{
		TeacherID: chi.URLParam(r, "id"),
		StudentID: chi.URLParam(r, "studentID"),
		Message:   req.Message,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, n)
}

type tagRequest struct {
	Tag string `json:"tag" validate:"required,notblank,max=40"`
}

type tagResponse struct {
	Student query.StudentProfile `json:"student"`
	Added   bool                 `json:"added"`
}

func (s *Server) handleTagStudent(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	res, err := s.deps.Faculty.TagStudent(r.Context(), command.TagStudentCommand{
		TeacherID: chi.URLParam(r, "id"),
		StudentID: chi.URLParam(r, "studentID"),
		Tag:       req.Tag,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if res.Added {
		status = http.StatusCreated
	}
	writeJSON(w, r, status, tagResponse{Student: query.NewStudentProfile(res.Student), Added: res.Added})
}

type assignmentRequest struct {
	Title string `json:"title" validate:"required,notblank,max=200"`
	Due   string `json:"due" validate:"required,datetime=2006-01-02"`
}

func (s *Server) handleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req assignmentRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	a, err := s.deps.Faculty.CreateAssignment(r.Context(), command.CreateAssignmentCommand{
		TeacherID: chi.URLParam(r, "id"),
		Title:     req.Title,
		Due:       req.Due,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, a)
}

func (s *Server) handleRemoveAssignment(w http.ResponseWriter, r *http.Request) {
	err := s.deps.Faculty.RemoveAssignment(r.Context(), command.RemoveCourseworkCommand{
		TeacherID: chi.URLParam(r, "id"),
		ID:        chi.URLParam(r, "itemID"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type materialRequest struct {
	Title  string `json:"title" validate:"required,notblank,max=200"`
	Course string `json:"course" validate:"required,notblank,max=20"`
}

func (s *Server) handleUploadMaterial(w http.ResponseWriter, r *http.Request) {
	var req materialRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	m, err := s.deps.Faculty.UploadMaterial(r.Context(), command.UploadMaterialCommand{
		TeacherID: chi.URLParam(r, "id"),
		Title:     req.Title,
		Course:    req.Course,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, m)
}

func (s *Server) handleRemoveMaterial(w http.ResponseWriter, r *http.Request) {
	err := s.deps.Faculty.RemoveMaterial(r.Context(), command.RemoveCourseworkCommand{
		TeacherID: chi.URLParam(r, "id"),
		ID:        chi.URLParam(r, "itemID"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nextedu/portal/internal/application/command"
	"github.com/nextedu/portal/internal/application/query"
	"github.com/nextedu/portal/internal/domain/directory"
	"github.com/nextedu/portal/internal/domain/shared"
	"github.com/nextedu/portal/internal/infrastructure/scheduler"
)

// ══════════════════════════════════════════════════════════════════════════════
// OVERVIEW & LISTS
// ══════════════════════════════════════════════════════════════════════════════

const adminActivityLimit = 10

func (s *Server) handleAdminOverview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.deps.Admin.Overview(r.Context(), adminActivityLimit))
}

func pagination(r *http.Request) shared.Pagination {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	return shared.NewPagination(page, size)
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.deps.Admin.Students(pagination(r)))
}

func (s *Server) handleListTeachers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.deps.Admin.Teachers(pagination(r)))
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

type addStudentRequest struct {
	Name          string `json:"name" validate:"required,notblank,max=100"`
	Email         string `json:"email" validate:"required,email"`
	Course        string `json:"course" validate:"required,notblank,max=100"`
	Avatar        string `json:"avatar" validate:"omitempty,url"`
	DOB           string `json:"dob" validate:"omitempty,datetime=02-01-2006"`
	Contact       string `json:"contact" validate:"omitempty,max=20"`
	ParentContact string `json:"parentContact" validate:"omitempty,max=20"`
	Semester      int    `json:"semester" validate:"omitempty,min=1,max=8"`
	Username      string `json:"username" validate:"omitempty,min=3,max=32"`
	Password      string `json:"password" validate:"omitempty,min=6,max=128"`
	TeacherID     string `json:"teacherId" validate:"omitempty,startswith=FAC-"`
}

type updateStudentRequest struct {
	Name      *string `json:"name" validate:"omitempty,notblank,max=100"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Course    *string `json:"course" validate:"omitempty,notblank,max=100"`
	Avatar    *string `json:"avatar" validate:"omitempty,url"`
	Semester  *int    `json:"semester" validate:"omitempty,min=1,max=8"`
	TeacherID *string `json:"teacherId"`
}

func (s *Server) handleAddStudent(w http.ResponseWriter, r *http.Request) {
	var req addStudentRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	st, err := s.deps.People.HandleStudent(r.Context(), command.StudentCommand{
		Op: command.OpAdd,
		Params: directory.StudentParams{
			Name:          req.Name,
			Email:         req.Email,
			Course:        req.Course,
			Avatar:        req.Avatar,
			DOB:           req.DOB,
			Contact:       req.Contact,
			ParentContact: req.ParentContact,
			Semester:      req.Semester,
			Username:      req.Username,
			Password:      req.Password,
			TeacherID:     req.TeacherID,
		},
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, query.NewStudentProfile(st))
}

func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	var req updateStudentRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	st, err := s.deps.People.HandleStudent(r.Context(), command.StudentCommand{
		Op: command.OpUpdate,
		ID: chi.URLParam(r, "id"),
		Update: directory.StudentUpdate{
			Name:      req.Name,
			Email:     req.Email,
			Course:    req.Course,
			Avatar:    req.Avatar,
			Semester:  req.Semester,
			TeacherID: req.TeacherID,
		},
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, query.NewStudentProfile(st))
}

func (s *Server) handleRemoveStudent(w http.ResponseWriter, r *http.Request) {
	_, err := s.deps.People.HandleStudent(r.Context(), command.StudentCommand{
		Op: command.OpRemove,
		ID: chi.URLParam(r, "id"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ══════════════════════════════════════════════════════════════════════════════
// TEACHERS
// ══════════════════════════════════════════════════════════════════════════════

type addTeacherRequest struct {
	Name       string `json:"name" validate:"required,notblank,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Department string `json:"department" validate:"required,notblank,max=100"`
	Avatar     string `json:"avatar" validate:"omitempty,url"`
	Username   string `json:"username" validate:"omitempty,min=3,max=32"`
	Password   string `json:"password" validate:"omitempty,min=6,max=128"`
}

type updateTeacherRequest struct {
	Name       *string `json:"name" validate:"omitempty,notblank,max=100"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Department *string `json:"department" validate:"omitempty,notblank,max=100"`
	Avatar     *string `json:"avatar" validate:"omitempty,url"`
}

func (s *Server) handleAddTeacher(w http.ResponseWriter, r *http.Request) {
	var req addTeacherRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	t, err := s.deps.People.HandleTeacher(r.Context(), command.TeacherCommand{
		Op: command.OpAdd,
		Params: directory.TeacherParams{
			Name:       req.Name,
			Email:      req.Email,
			Department: req.Department,
			Avatar:     req.Avatar,
			Username:   req.Username,
			Password:   req.Password,
		},
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, query.NewTeacherProfile(t))
}

func (s *Server) handleUpdateTeacher(w http.ResponseWriter, r *http.Request) {
	var req updateTeacherRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	t, err := s.deps.People.HandleTeacher(r.Context(), command.TeacherCommand{
		Op: command.OpUpdate,
		ID: chi.URLParam(r, "id"),
		Update: directory.TeacherUpdate{
			Name:       req.Name,
			Email:      req.Email,
			Department: req.Department,
			Avatar:     req.Avatar,
		},
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, query.NewTeacherProfile(t))
}

func (s *Server) handleRemoveTeacher(w http.ResponseWriter, r *http.Request) {
	_, err := s.deps.People.HandleTeacher(r.Context(), command.TeacherCommand{
		Op: command.OpRemove,
		ID: chi.URLParam(r, "id"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRATIONS & ANNOUNCEMENTS
// ══════════════════════════════════════════════════════════════════════════════

type decisionResponse struct {
	Username string                `json:"username"`
	Approved bool                  `json:"approved"`
	Student  *query.StudentProfile `json:"student,omitempty"`
}

func (s *Server) decideRegistration(w http.ResponseWriter, r *http.Request, approve bool) {
	res, err := s.deps.DecideRegistration.Handle(r.Context(), command.DecideRegistrationCommand{
		Username: chi.URLParam(r, "username"),
		Approve:  approve,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := decisionResponse{Username: res.Username, Approved: res.Approved}
	if res.Student != nil {
		p := query.NewStudentProfile(*res.Student)
		out.Student = &p
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleApproveRegistration(w http.ResponseWriter, r *http.Request) {
	s.decideRegistration(w, r, true)
}

func (s *Server) handleRejectRegistration(w http.ResponseWriter, r *http.Request) {
	s.decideRegistration(w, r, false)
}

type adminAnnouncementRequest struct {
	Content string `json:"content" validate:"required,notblank,max=2000"`
}

func (s *Server) handleAdminAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req adminAnnouncementRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	a, err := s.deps.Faculty.PostAnnouncement(r.Context(), command.PostAnnouncementCommand{
		By:      "Administrator",
		Scope:   directory.ScopeGlobal,
		Content: req.Content,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, a)
}

// ══════════════════════════════════════════════════════════════════════════════
// OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleFlushSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.deps.Snapshots == nil {
		writeJSONError(w, r, http.StatusNotImplemented, "not_configured", "Snapshot store is not configured")
		return
	}
	saved, err := s.deps.Snapshots.Flush(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]bool{"saved": saved, "dirty": s.deps.Snapshots.IsDirty()})
}

type jobsResponse struct {
	Jobs    []scheduler.JobInfo   `json:"jobs"`
	History []scheduler.JobResult `json:"history"`
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if s.deps.Jobs == nil {
		writeJSON(w, r, http.StatusOK, jobsResponse{Jobs: []scheduler.JobInfo{}, History: []scheduler.JobResult{}})
		return
	}
	writeJSON(w, r, http.StatusOK, jobsResponse{Jobs: s.deps.Jobs.ListJobs(), History: s.deps.Jobs.History(20)})
}

func (s *Server) handleRunJob(w http.ResponseWriter, r *http.Request) {
	if s.deps.Jobs == nil {
		writeJSONError(w, r, http.StatusNotImplemented, "not_configured", "Scheduler is not running")
		return
	}
	res, err := s.deps.Jobs.RunNow(r.Context(), chi.URLParam(r, "name"))
	switch {
	case errors.Is(err, scheduler.ErrJobNotFound):
		writeJSONError(w, r, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, scheduler.ErrJobRunning):
		writeJSONError(w, r, http.StatusConflict, "job_running", err.Error())
	case err != nil && res.JobName != "":
		// the job ran and failed; the result carries the error
		writeJSON(w, r, http.StatusInternalServerError, res)
	case err != nil:
		s.writeError(w, r, err)
	default:
		writeJSON(w, r, http.StatusOK, res)
	}
}

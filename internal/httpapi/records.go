package httpapi

import (
	"net/http"

	"github.com/vk/ednavoyage/internal/records"
)

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(s.svc.Projects.List(r.Context())))
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var draft records.ProjectDraft
	if err := decode(w, r, &draft); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.svc.Projects.Add(r.Context(), draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	p, ok := s.svc.Projects.Get(r.Context(), r.PathValue("id"))
	if !ok {
		writeError(w, r, records.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	var update records.ProjectUpdate
	if err := decode(w, r, &update); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.svc.Projects.Update(r.Context(), r.PathValue("id"), update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Projects.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listFiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(s.svc.Analysis.Files(r.Context())))
}

func (s *Server) deleteFile(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Analysis.RemoveUploadedFile(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listResults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(s.svc.Analysis.Results(r.Context())))
}

type loginRequest struct {
	Email string `json:"email"`
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var p records.Profile
	if err := decode(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.svc.Users.Signup(r.Context(), p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.svc.Users.Login(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) {
	u, ok := s.svc.Users.Current(r.Context())
	if !ok {
		writeError(w, r, records.ErrNotAuthenticated)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Users.Logout(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var update records.ProfileUpdate
	if err := decode(w, r, &update); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.svc.Users.UpdateProfile(r.Context(), update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// nonNil keeps empty collections encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"mandalart/internal/format"
	"mandalart/internal/grid"
	"mandalart/internal/model"
	"mandalart/internal/mutate"
	"mandalart/internal/perm"
)

func pageParams(r *http.Request, def int) (limit, offset int) {
	q := r.URL.Query()
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = def
	}
	offset, err = strconv.Atoi(q.Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

type listResponse struct {
	Mandalarts []model.Mandalart `json:"mandalarts"`
	Limit      int               `json:"limit"`
	Offset     int               `json:"offset"`
}

func (s *Server) handleAPIList(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r, s.cfg.PageSize)
	ms, err := s.cfg.Store.ListPublic(r.Context(), limit, offset)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if ms == nil {
		ms = []model.Mandalart{}
	}
	writeJSON(w, http.StatusOK, listResponse{Mandalarts: ms, Limit: limit, Offset: offset})
}

func (s *Server) handleAPIMine(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r, s.cfg.PageSize)
	resp := listResponse{Mandalarts: []model.Mandalart{}, Limit: limit, Offset: offset}
	userID := s.userForRequest(r)
	if userID == "" {
		writeJSON(w, http.StatusOK, resp)
		return
	}
	ms, err := s.cfg.Store.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if ms != nil {
		resp.Mandalarts = ms
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAPICreate(w http.ResponseWriter, r *http.Request) {
	doc, err := format.ReadGridDocument(r.Body, "json")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	g, err := doc.Grid()
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs := grid.Validate(g); len(errs) > 0 {
		s.writeServiceError(w, errs)
		return
	}
	userID, err := s.ensureUser(w, r)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	isPublic := true
	if doc.IsPublic != nil {
		isPublic = *doc.IsPublic
	}
	m, err := s.cfg.Service.CreateMandalart(r.Context(), mutate.CreateInput{
		UserID:      userID,
		Grid:        g,
		IsPublic:    isPublic,
		DisplayName: doc.DisplayName,
		Tags:        doc.Tags,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleAPIGet(w http.ResponseWriter, r *http.Request) {
	m, err := s.loadVisible(r, strings.TrimSpace(r.PathValue("id")))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// updateRequest replaces the whole grid when center or themes is present.
type updateRequest struct {
	Center          *string           `json:"center"`
	Themes          []grid.LooseTheme `json:"themes"`
	IsPublic        *bool             `json:"is_public"`
	UserDisplayName *string           `json:"user_display_name"`
	Tags            *[]string         `json:"tags"`
}

func (req updateRequest) patch() (model.MandalartPatch, error) {
	p := model.MandalartPatch{IsPublic: req.IsPublic, UserDisplayName: req.UserDisplayName, Tags: req.Tags}
	if req.Center != nil || req.Themes != nil {
		center := ""
		if req.Center != nil {
			center = *req.Center
		}
		g, err := grid.FromLoose(center, req.Themes)
		if err != nil {
			return model.MandalartPatch{}, err
		}
		p.Grid = &g
	}
	return p, nil
}

func (s *Server) handleAPIUpdate(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	var req updateRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := req.patch()
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := s.cfg.Service.UpdateMandalart(r.Context(), s.userForRequest(r), id, p)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleAPIDelete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if err := s.cfg.Service.DeleteMandalart(r.Context(), s.userForRequest(r), id); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAPICell(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "index must be an integer")
		return
	}
	info, err := grid.Locate(index)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type adminAuthRequest struct {
	Password string `json:"password"`
}

// handleAdminAuth checks the admin password for script clients.
func (s *Server) handleAdminAuth(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req adminAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ok, err := perm.CheckAdminPassword(s.cfg.AdminPassword, req.Password)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Admin password not configured")
		return
	}
	if ok {
		if err := s.grantAdmin(w); err != nil {
			s.writeServiceError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"authenticated": ok})
}

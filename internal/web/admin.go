package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"mandalart/internal/model"
	"mandalart/internal/mutate"
	"mandalart/internal/perm"
)

type adminVM struct {
	pageVM
	Configured bool
	Error      string
	Status     string
	Requests   []model.DeleteRequestView
	Counts     map[model.RequestStatus]int
	Statuses   []model.RequestStatus
}

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	vm := adminVM{
		pageVM:     s.page(r, "Admin"),
		Configured: s.cfg.AdminPassword != "",
		Statuses:   []model.RequestStatus{model.RequestPending, model.RequestApproved, model.RequestRejected},
	}
	if !vm.Admin {
		s.writeHTMLTemplate(w, http.StatusOK, "admin_login.html", vm)
		return
	}

	status := model.RequestStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	if status == "" {
		status = model.RequestPending
	}
	if status != "all" && !status.Valid() {
		http.Error(w, "unknown status", http.StatusBadRequest)
		return
	}
	filter := status
	if status == "all" {
		filter = ""
	}
	reqs, err := s.cfg.Store.ListDeleteRequests(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	counts, err := s.cfg.Store.CountDeleteRequests(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	vm.Status = string(status)
	vm.Requests = reqs
	vm.Counts = counts
	s.writeHTMLTemplate(w, http.StatusOK, "admin.html", vm)
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	vm := adminVM{pageVM: s.page(r, "Admin"), Configured: s.cfg.AdminPassword != ""}
	ok, err := perm.CheckAdminPassword(s.cfg.AdminPassword, r.Form.Get("password"))
	if errors.Is(err, perm.ErrAdminNotConfigured) {
		vm.Error = "Admin password not configured"
		s.writeHTMLTemplate(w, http.StatusInternalServerError, "admin_login.html", vm)
		return
	}
	if !ok {
		s.log.Warn("admin login failed", zap.String("remote", r.RemoteAddr))
		vm.Error = "Incorrect password"
		s.writeHTMLTemplate(w, http.StatusUnauthorized, "admin_login.html", vm)
		return
	}
	if err := s.grantAdmin(w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	clearCookie(w, adminCookieName)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (s *Server) handleAdminApprove(w http.ResponseWriter, r *http.Request) {
	s.moderate(w, r, s.cfg.Service.ApproveDeleteRequest)
}

func (s *Server) handleAdminReject(w http.ResponseWriter, r *http.Request) {
	s.moderate(w, r, s.cfg.Service.RejectDeleteRequest)
}

func (s *Server) moderate(w http.ResponseWriter, r *http.Request, op func(context.Context, string) (model.DeleteRequest, error)) {
	if !s.isAdmin(r) {
		http.Error(w, "admin only", http.StatusForbidden)
		return
	}
	id := strings.TrimSpace(r.PathValue("id"))
	if _, err := op(r.Context(), id); err != nil {
		var nf mutate.NotFoundError
		var np mutate.NotPendingError
		switch {
		case errors.As(err, &nf):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.As(err, &np):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			s.log.Error("moderation failed", zap.String("request", id), zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	redirectBack(w, r, "/admin")
}

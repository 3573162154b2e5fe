package services

import (
	"fmt"
	"log/slog"
	"net/http"

	"tunesmith/studio/auth"
	"tunesmith/studio/generation"
	"tunesmith/studio/store"
	"tunesmith/utils"
	"tunesmith/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type SecurityService struct {
	store    *store.Store
	provider generation.Provider
	userAuth auth.IdentityProvider
}

func (s *SecurityService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/logs", s.List)
	r.Post("/logs", s.Record)

	r.Get("/leak-scan/{project_id}", s.LeakScan)

	return r
}

func (s *SecurityService) List(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	limit := utils.QueryParamInt(r, "limit", 0)

	logs, err := s.store.ListSecurityLogs(user.Id, limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("error listing security logs: %v", err), responseCode(err))
		return
	}

	utils.WriteJsonResponse(w, logs)
}

type recordSecurityLogRequest struct {
	ProjectId *uuid.UUID `json:"projectId"`
	EventType string     `json:"eventType"`
	Details   string     `json:"details"`
	Severity  string     `json:"severity"`
}

// Record appends a security log row. The IP address and user agent come from
// the request itself; clients cannot spoof them through the body.
func (s *SecurityService) Record(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params recordSecurityLogRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	log, err := s.store.RecordSecurityLog(store.SecurityLogInsert{
		UserId:    user.Id,
		ProjectId: params.ProjectId,
		EventType: params.EventType,
		IpAddress: auth.ClientIp(r),
		UserAgent: r.UserAgent(),
		Details:   params.Details,
		Severity:  params.Severity,
	})
	if err != nil {
		http.Error(w, fmt.Sprintf("error recording security log: %v", err), responseCode(err))
		return
	}

	utils.WriteJsonResponseWithCode(w, log, http.StatusCreated)
}

// LeakScan checks the distribution channels for unauthorized copies of an
// owned project's assets and records the scan as a security event.
func (s *SecurityService) LeakScan(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	projectId, err := utils.URLParamUUID(r, "project_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := s.store.GetProject(projectId, user.Id); err != nil {
		http.Error(w, fmt.Sprintf("error running leak scan: %v", err), responseCode(err))
		return
	}

	report, err := s.provider.LeakScan(projectId)
	if err != nil {
		http.Error(w, fmt.Sprintf("error running leak scan: %v", err), responseCode(err))
		return
	}

	slog.Info("leak scan completed", "project_id", projectId, "leaks_found", report.LeaksFound, "code", logging.SEC_LEAK_SCAN)

	_, err = s.store.RecordSecurityLog(store.SecurityLogInsert{
		UserId:    user.Id,
		ProjectId: &projectId,
		EventType: "leak_scan",
		IpAddress: auth.ClientIp(r),
		UserAgent: r.UserAgent(),
		Details:   fmt.Sprintf("Leak scan completed: %v sources, %v leaks", report.Scanned, report.LeaksFound),
	})
	if err != nil {
		slog.Error("failed to record security log for leak scan", "project_id", projectId, "error", err, "code", logging.SEC_LOG)
	}

	utils.WriteJsonResponse(w, report)
}

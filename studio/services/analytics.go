package services

import (
	"fmt"
	"net/http"

	"tunesmith/studio/auth"
	"tunesmith/studio/store"
	"tunesmith/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AnalyticsService struct {
	store    *store.Store
	userAuth auth.IdentityProvider
}

func (s *AnalyticsService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/", s.List)
	r.Post("/", s.Record)

	return r
}

func (s *AnalyticsService) List(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	limit := utils.QueryParamInt(r, "limit", 0)

	events, err := s.store.ListAnalytics(user.Id, limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("error listing analytics events: %v", err), responseCode(err))
		return
	}

	utils.WriteJsonResponse(w, events)
}

type recordAnalyticsRequest struct {
	ProjectId *uuid.UUID `json:"projectId"`
	EventType string     `json:"eventType"`
	Platform  string     `json:"platform"`
	Country   string     `json:"country"`
	Metadata  string     `json:"metadata"`
}

func (s *AnalyticsService) Record(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params recordAnalyticsRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	event, err := s.store.RecordAnalytics(store.AnalyticsInsert{
		UserId:    user.Id,
		ProjectId: params.ProjectId,
		EventType: params.EventType,
		Platform:  params.Platform,
		Country:   params.Country,
		Metadata:  params.Metadata,
	})
	if err != nil {
		http.Error(w, fmt.Sprintf("error recording analytics event: %v", err), responseCode(err))
		return
	}

	utils.WriteJsonResponseWithCode(w, event, http.StatusCreated)
}

package services

import (
	"fmt"
	"log/slog"
	"net/http"

	"tunesmith/studio/auth"
	"tunesmith/studio/schema"
	"tunesmith/studio/store"
	"tunesmith/utils"
	"tunesmith/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ProjectService struct {
	store    *store.Store
	userAuth auth.IdentityProvider
}

func (s *ProjectService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/", s.List)
	r.Post("/", s.Create)

	r.Get("/{project_id}", s.Get)
	r.Patch("/{project_id}", s.Update)
	r.Delete("/{project_id}", s.Delete)

	r.Get("/{project_id}/collaborators", s.ListCollaborators)
	r.Post("/{project_id}/collaborators", s.AddCollaborator)

	return r
}

func (s *ProjectService) List(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	projects, err := s.store.ListProjects(user.Id)
	if err != nil {
		http.Error(w, fmt.Sprintf("error listing projects: %v", err), responseCode(err))
		return
	}

	utils.WriteJsonResponse(w, projects)
}

type createProjectRequest struct {
	Title      string `json:"title"`
	Lyrics     string `json:"lyrics"`
	Genre      string `json:"genre"`
	Mood       string `json:"mood"`
	Tempo      string `json:"tempo"`
	AiArtistId *int   `json:"aiArtistId"`
	IsPublic   bool   `json:"isPublic"`
}

// Create inserts a new draft for the authenticated user. Any userId in the
// request body is ignored; ownership always comes from the session.
func (s *ProjectService) Create(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params createProjectRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	project, err := s.store.CreateProject(user.Id, store.ProjectCreate{
		Title:      params.Title,
		Lyrics:     params.Lyrics,
		Genre:      params.Genre,
		Mood:       params.Mood,
		Tempo:      params.Tempo,
		AiArtistId: params.AiArtistId,
		IsPublic:   params.IsPublic,
	})
	if err != nil {
		http.Error(w, fmt.Sprintf("error creating project: %v", err), responseCode(err))
		return
	}

	slog.Info("project created", "project_id", project.Id, "user_id", user.Id, "code", logging.PROJECT_CREATE)

	s.stampSecurityLog(r, user.Id, project.Id, "project_created", fmt.Sprintf("New project created: %v", project.Title))

	utils.WriteJsonResponseWithCode(w, project, http.StatusCreated)
}

func (s *ProjectService) Get(w http.ResponseWriter, r *http.Request) {
	user, projectId, ok := s.projectRequest(w, r)
	if !ok {
		return
	}

	project, err := s.store.GetProject(projectId, user.Id)
	if err != nil {
		http.Error(w, fmt.Sprintf("error fetching project: %v", err), responseCode(err))
		return
	}

	utils.WriteJsonResponse(w, project)
}

type updateProjectRequest struct {
	Title  *string `json:"title"`
	Lyrics *string `json:"lyrics"`
	Genre  *string `json:"genre"`
	Mood   *string `json:"mood"`
	Tempo  *string `json:"tempo"`

	AiArtistId *int `json:"aiArtistId"`

	Status             *string `json:"status"`
	ProcessingStep     *int    `json:"processingStep"`
	GenerationProgress *int    `json:"generationProgress"`

	AudioUrl       *string `json:"audioUrl"`
	VideoUrl       *string `json:"videoUrl"`
	BundleUrl      *string `json:"bundleUrl"`
	CertificateUrl *string `json:"certificateUrl"`

	EstimatedDuration *int `json:"estimatedDuration"`
	ActualDuration    *int `json:"actualDuration"`

	StreamCount *int  `json:"streamCount"`
	IsPublic    *bool `json:"isPublic"`
}

func (u *updateProjectRequest) toPatch() store.ProjectPatch {
	return store.ProjectPatch{
		Title:              u.Title,
		Lyrics:             u.Lyrics,
		Genre:              u.Genre,
		Mood:               u.Mood,
		Tempo:              u.Tempo,
		AiArtistId:         u.AiArtistId,
		Status:             u.Status,
		ProcessingStep:     u.ProcessingStep,
		GenerationProgress: u.GenerationProgress,
		AudioUrl:           u.AudioUrl,
		VideoUrl:           u.VideoUrl,
		BundleUrl:          u.BundleUrl,
		CertificateUrl:     u.CertificateUrl,
		EstimatedDuration:  u.EstimatedDuration,
		ActualDuration:     u.ActualDuration,
		StreamCount:        u.StreamCount,
		IsPublic:           u.IsPublic,
	}
}

func (s *ProjectService) Update(w http.ResponseWriter, r *http.Request) {
	user, projectId, ok := s.projectRequest(w, r)
	if !ok {
		return
	}

	var params updateProjectRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	project, err := s.store.UpdateProject(projectId, user.Id, params.toPatch())
	if err != nil {
		http.Error(w, fmt.Sprintf("error updating project: %v", err), responseCode(err))
		return
	}

	slog.Info("project updated", "project_id", project.Id, "user_id", user.Id, "code", logging.PROJECT_UPDATE)

	s.stampSecurityLog(r, user.Id, project.Id, "project_updated", fmt.Sprintf("Project updated: %v", project.Title))

	utils.WriteJsonResponse(w, project)
}

func (s *ProjectService) Delete(w http.ResponseWriter, r *http.Request) {
	user, projectId, ok := s.projectRequest(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteProject(projectId, user.Id); err != nil {
		http.Error(w, fmt.Sprintf("error deleting project: %v", err), responseCode(err))
		return
	}

	slog.Info("project deleted", "project_id", projectId, "user_id", user.Id, "code", logging.PROJECT_DELETE)

	// The project row is gone, so the log entry carries no project reference.
	s.stampSecurityLog(r, user.Id, uuid.Nil, "project_deleted", fmt.Sprintf("Project deleted: %v", projectId))

	w.WriteHeader(http.StatusNoContent)
}

func (s *ProjectService) ListCollaborators(w http.ResponseWriter, r *http.Request) {
	user, projectId, ok := s.projectRequest(w, r)
	if !ok {
		return
	}

	collaborators, err := s.store.ListCollaborators(projectId, user.Id)
	if err != nil {
		http.Error(w, fmt.Sprintf("error listing collaborators: %v", err), responseCode(err))
		return
	}

	utils.WriteJsonResponse(w, collaborators)
}

type addCollaboratorRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	RoyaltyPercent string `json:"royaltyPercent"`
}

func (s *ProjectService) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	user, projectId, ok := s.projectRequest(w, r)
	if !ok {
		return
	}

	var params addCollaboratorRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	collaborator, err := s.store.AddCollaborator(projectId, user.Id, store.CollaboratorInsert{
		Name:           params.Name,
		Email:          params.Email,
		Role:           params.Role,
		RoyaltyPercent: params.RoyaltyPercent,
	})
	if err != nil {
		http.Error(w, fmt.Sprintf("error adding collaborator: %v", err), responseCode(err))
		return
	}

	utils.WriteJsonResponseWithCode(w, collaborator, http.StatusCreated)
}

func (s *ProjectService) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	collaboratorId, err := utils.URLParamUUID(r, "collaborator_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.RemoveCollaborator(collaboratorId, user.Id); err != nil {
		http.Error(w, fmt.Sprintf("error removing collaborator: %v", err), responseCode(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *ProjectService) projectRequest(w http.ResponseWriter, r *http.Request) (schema.User, uuid.UUID, bool) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return schema.User{}, uuid.Nil, false
	}

	projectId, err := utils.URLParamUUID(r, "project_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return schema.User{}, uuid.Nil, false
	}

	return user, projectId, true
}

// stampSecurityLog records project mutations with the caller's network
// details filled in server side. Failures are logged, not surfaced; the
// mutation itself already succeeded.
func (s *ProjectService) stampSecurityLog(r *http.Request, userId string, projectId uuid.UUID, eventType, details string) {
	var projectRef *uuid.UUID
	if projectId != uuid.Nil {
		projectRef = &projectId
	}

	_, err := s.store.RecordSecurityLog(store.SecurityLogInsert{
		UserId:    userId,
		ProjectId: projectRef,
		EventType: eventType,
		IpAddress: auth.ClientIp(r),
		UserAgent: r.UserAgent(),
		Details:   details,
	})
	if err != nil {
		slog.Error("failed to record security log for project mutation", "event_type", eventType, "user_id", userId, "error", err, "code", logging.SEC_LOG)
	}
}

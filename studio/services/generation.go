package services

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"tunesmith/studio/auth"
	"tunesmith/studio/generation"
	"tunesmith/studio/schema"
	"tunesmith/studio/storage"
	"tunesmith/studio/store"
	"tunesmith/utils"
	"tunesmith/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scriptMetric       = promauto.NewSummary(prometheus.SummaryOpts{Name: "studio_generate_script", Help: "Script generations"})
	voiceMetric        = promauto.NewSummary(prometheus.SummaryOpts{Name: "studio_generate_voice", Help: "Voice generations"})
	instrumentalMetric = promauto.NewSummary(prometheus.SummaryOpts{Name: "studio_generate_instrumental", Help: "Instrumental generations"})
	videoMetric        = promauto.NewSummary(prometheus.SummaryOpts{Name: "studio_generate_video", Help: "Video generations and exports"})

	creditRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studio_credit_rejections",
		Help: "Generation requests rejected because the user's credit balance was exhausted.",
	})
)

// GenerationService drives the production pipeline. Each action validates
// the request, spends one AI credit, calls the provider synchronously, and
// persists the project's new step cursor before responding.
type GenerationService struct {
	store    *store.Store
	provider generation.Provider
	assets   storage.Storage
	userAuth auth.IdentityProvider
}

func (s *GenerationService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.AuthMiddleware()...)
	r.Use(checkSufficientStorage(s.assets))

	r.Post("/generate-script", s.GenerateScript)
	r.Post("/generate-voice", s.GenerateVoice)
	r.Post("/generate-instrumental", s.GenerateInstrumental)
	r.Post("/generate-video", s.GenerateVideo)
	r.Post("/generate-promotion", s.GeneratePromotion)
	r.Post("/analyze-track", s.AnalyzeTrack)
	r.Post("/switch-genre", s.SwitchGenre)
	r.Post("/translate-lyrics", s.TranslateLyrics)
	r.Post("/fuse-voices", s.FuseVoices)

	return r
}

// spendCredit charges the caller one credit. It runs only after the request
// has passed validation and ownership checks, so a rejected request costs
// nothing. The decrement is atomic in the store, so concurrent requests
// cannot overdraw.
func (s *GenerationService) spendCredit(w http.ResponseWriter, userId string) bool {
	if err := s.store.DecrementCredit(userId); err != nil {
		if errors.Is(err, store.ErrInsufficientCredits) {
			creditRejections.Inc()
		}
		http.Error(w, fmt.Sprintf("error charging ai credit: %v", err), responseCode(err))
		return false
	}
	return true
}

func stageStep(stage string) int {
	return slices.Index(generation.Stages, stage) + 1
}

// advanceProject moves the step cursor forward through the store. The store
// clamps progress and validates the status transition.
func (s *GenerationService) advanceProject(userId string, projectId uuid.UUID, stage, status string, extra store.ProjectPatch) (schema.Project, error) {
	step := stageStep(stage)
	progress := generation.StageProgress(step)

	patch := extra
	patch.Status = &status
	patch.ProcessingStep = &step
	patch.GenerationProgress = &progress

	return s.store.UpdateProject(projectId, userId, patch)
}

type generateScriptRequest struct {
	Lyrics string `json:"lyrics"`
	Genre  string `json:"genre"`
	Mood   string `json:"mood"`
}

func (s *GenerationService) GenerateScript(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(scriptMetric)
	defer timer.ObserveDuration()

	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params generateScriptRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if !s.spendCredit(w, user.Id) {
		return
	}

	script, err := s.provider.GenerateScript(params.Lyrics, params.Genre, params.Mood)
	if err != nil {
		http.Error(w, fmt.Sprintf("error generating script: %v", err), responseCode(err))
		return
	}

	slog.Info("script generated", "user_id", user.Id, "genre", params.Genre, "code", logging.GEN_SCRIPT)

	utils.WriteJsonResponse(w, script)
}

type generateVoiceRequest struct {
	ProjectId  uuid.UUID `json:"projectId"`
	AiArtistId *int      `json:"aiArtistId"`
}

func (s *GenerationService) GenerateVoice(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(voiceMetric)
	defer timer.ObserveDuration()

	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params generateVoiceRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	project, err := s.store.GetProject(params.ProjectId, user.Id)
	if err != nil {
		http.Error(w, fmt.Sprintf("error generating voice: %v", err), responseCode(err))
		return
	}

	artistId := project.AiArtistId
	if params.AiArtistId != nil {
		artistId = params.AiArtistId
	}

	var artist *schema.AiArtist
	if artistId != nil {
		found, err := s.store.GetArtist(*artistId)
		if err != nil {
			http.Error(w, fmt.Sprintf("error generating voice: %v", err), responseCode(err))
			return
		}
		artist = &found
	}

	if !s.spendCredit(w, user.Id) {
		return
	}

	asset, err := s.provider.GenerateVoice(project.Id, artist)
	if err != nil {
		http.Error(w, fmt.Sprintf("error generating voice: %v", err), responseCode(err))
		return
	}

	updated, err := s.advanceProject(user.Id, project.Id, "voice", schema.StatusGenerating, store.ProjectPatch{
		AudioUrl:   &asset.Url,
		AiArtistId: artistId,
	})
	if err != nil {
		http.Error(w, fmt.Sprintf("error generating voice: %v", err), responseCode(err))
		return
	}

	slog.Info("voice generated", "project_id", project.Id, "user_id", user.Id, "code", logging.GEN_VOICE)

	utils.WriteJsonResponse(w, map[string]interface{}{
		"audio":    asset,
		"project":  updated,
		"progress": updated.GenerationProgress,
	})
}

type generateInstrumentalRequest struct {
	ProjectId uuid.UUID `json:"projectId"`
	Genre     string    `json:"genre"`
	Tempo     string    `json:"tempo"`
	Mood      string    `json:"mood"`
}

func (s *GenerationService) GenerateInstrumental(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(instrumentalMetric)
	defer timer.ObserveDuration()

	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params generateInstrumentalRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	project, err := s.store.GetProject(params.ProjectId, user.Id)
	if err != nil {
		http.Error(w, fmt.Sprintf("error generating instrumental: %v", err), responseCode(err))
		return
	}

	genre, tempo, mood := params.Genre, params.Tempo, params.Mood
	if genre == "" {
		genre = project.Genre
	}
	if tempo == "" {
		tempo = project.Tempo
	}
	if mood == "" {
		mood = project.Mood
	}

	if !s.spendCredit(w, user.Id) {
		return
	}

	asset, err := s.provider.GenerateInstrumental(project.Id, genre, tempo, mood)
	if err != nil {
		http.Error(w, fmt.Sprintf("error generating instrumental: %v", err), responseCode(err))
		return
	}

	updated, err := s.advanceProject(user.Id, project.Id, "instrumental", schema.StatusGenerating, store.ProjectPatch{})
	if err != nil {
		http.Error(w, fmt.Sprintf("error generating instrumental: %v", err), responseCode(err))
		return
	}

	slog.Info("instrumental generated", "project_id", project.Id, "user_id", user.Id, "code", logging.GEN_INSTRUMENTAL)

	utils.WriteJsonResponse(w, map[string]interface{}{
		"instrumental": asset,
		"project":      updated,
		"progress":     updated.GenerationProgress,
	})
}

type generateVideoRequest struct {
	ProjectId uuid.UUID `json:"projectId"`
}

// GenerateVideo runs the tail of the pipeline: mixing, video, and export.
// On success the project lands in completed with every asset URL set.
func (s *GenerationService) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(videoMetric)
	defer timer.ObserveDuration()

	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params generateVideoRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	project, err := s.store.GetProject(params.ProjectId, user.Id)
	if err != nil {
		http.Error(w, fmt.Sprintf("error generating video: %v", err), responseCode(err))
		return
	}

	if !s.spendCredit(w, user.Id) {
		return
	}

	result, err := s.provider.GenerateVideo(project.Id)
	if err != nil {
		http.Error(w, fmt.Sprintf("error generating video: %v", err), responseCode(err))
		return
	}

	patch := store.ProjectPatch{
		AudioUrl:       &result.Audio.Url,
		VideoUrl:       &result.Video.Url,
		BundleUrl:      &result.BundleUrl,
		CertificateUrl: &result.Certificate,
	}
	if result.Audio.DurationSeconds > 0 {
		patch.ActualDuration = &result.Audio.DurationSeconds
	}

	updated, err := s.advanceProject(user.Id, project.Id, "export", schema.StatusCompleted, patch)
	if err != nil {
		http.Error(w, fmt.Sprintf("error generating video: %v", err), responseCode(err))
		return
	}

	slog.Info("video generated", "project_id", project.Id, "user_id", user.Id, "code", logging.GEN_VIDEO)

	utils.WriteJsonResponse(w, map[string]interface{}{
		"export":  result,
		"project": updated,
	})
}

type generatePromotionRequest struct {
	ProjectId uuid.UUID `json:"projectId"`
	Platforms []string  `json:"platforms"`
}

func (s *GenerationService) GeneratePromotion(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params generatePromotionRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	project, err := s.store.GetProject(params.ProjectId, user.Id)
	if err != nil {
		http.Error(w, fmt.Sprintf("error generating promotion: %v", err), responseCode(err))
		return
	}

	if !s.spendCredit(w, user.Id) {
		return
	}

	plan, err := s.provider.GeneratePromotion(&project, params.Platforms)
	if err != nil {
		http.Error(w, fmt.Sprintf("error generating promotion: %v", err), responseCode(err))
		return
	}

	utils.WriteJsonResponse(w, plan)
}

type analyzeTrackRequest struct {
	ProjectId uuid.UUID `json:"projectId"`
}

func (s *GenerationService) AnalyzeTrack(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params analyzeTrackRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	project, err := s.store.GetProject(params.ProjectId, user.Id)
	if err != nil {
		http.Error(w, fmt.Sprintf("error analyzing track: %v", err), responseCode(err))
		return
	}

	if !s.spendCredit(w, user.Id) {
		return
	}

	analysis, err := s.provider.AnalyzeTrack(&project)
	if err != nil {
		http.Error(w, fmt.Sprintf("error analyzing track: %v", err), responseCode(err))
		return
	}

	utils.WriteJsonResponse(w, analysis)
}

type switchGenreRequest struct {
	Lyrics    string `json:"lyrics"`
	FromGenre string `json:"fromGenre"`
	ToGenre   string `json:"toGenre"`
}

func (s *GenerationService) SwitchGenre(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params switchGenreRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.ToGenre == "" {
		http.Error(w, "toGenre is required", http.StatusBadRequest)
		return
	}

	if !s.spendCredit(w, user.Id) {
		return
	}

	rewrite, err := s.provider.SwitchGenre(params.Lyrics, params.FromGenre, params.ToGenre)
	if err != nil {
		http.Error(w, fmt.Sprintf("error switching genre: %v", err), responseCode(err))
		return
	}

	utils.WriteJsonResponse(w, rewrite)
}

type translateLyricsRequest struct {
	Lyrics   string `json:"lyrics"`
	Language string `json:"language"`
}

func (s *GenerationService) TranslateLyrics(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params translateLyricsRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.Language == "" {
		http.Error(w, "language is required", http.StatusBadRequest)
		return
	}

	if !s.spendCredit(w, user.Id) {
		return
	}

	rewrite, err := s.provider.TranslateLyrics(params.Lyrics, params.Language)
	if err != nil {
		http.Error(w, fmt.Sprintf("error translating lyrics: %v", err), responseCode(err))
		return
	}

	utils.WriteJsonResponse(w, rewrite)
}

type fuseVoicesRequest struct {
	ArtistIds []int `json:"artistIds"`
}

func (s *GenerationService) FuseVoices(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params fuseVoicesRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if len(params.ArtistIds) < 2 {
		http.Error(w, "at least two artistIds are required to fuse voices", http.StatusBadRequest)
		return
	}

	artists := make([]schema.AiArtist, 0, len(params.ArtistIds))
	for _, id := range params.ArtistIds {
		artist, err := s.store.GetArtist(id)
		if err != nil {
			http.Error(w, fmt.Sprintf("error fusing voices: %v", err), responseCode(err))
			return
		}
		artists = append(artists, artist)
	}

	if !s.spendCredit(w, user.Id) {
		return
	}

	fusion, err := s.provider.FuseVoices(artists)
	if err != nil {
		http.Error(w, fmt.Sprintf("error fusing voices: %v", err), responseCode(err))
		return
	}

	utils.WriteJsonResponse(w, fusion)
}

// Royalties reports the live royalty snapshot for an owned project. Reads do
// not spend credits.
func (s *GenerationService) Royalties(w http.ResponseWriter, r *http.Request) {
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

	project, err := s.store.GetProject(projectId, user.Id)
	if err != nil {
		http.Error(w, fmt.Sprintf("error fetching royalties: %v", err), responseCode(err))
		return
	}

	snapshot, err := s.provider.RoyaltySnapshot(&project)
	if err != nil {
		http.Error(w, fmt.Sprintf("error fetching royalties: %v", err), responseCode(err))
		return
	}

	utils.WriteJsonResponse(w, snapshot)
}

type startCollaborationRequest struct {
	ProjectId uuid.UUID `json:"projectId"`
}

func (s *GenerationService) StartCollaboration(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var params startCollaborationRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	project, err := s.store.GetProject(params.ProjectId, user.Id)
	if err != nil {
		http.Error(w, fmt.Sprintf("error starting collaboration session: %v", err), responseCode(err))
		return
	}

	session, err := s.provider.StartCollaboration(project.Id)
	if err != nil {
		http.Error(w, fmt.Sprintf("error starting collaboration session: %v", err), responseCode(err))
		return
	}

	utils.WriteJsonResponse(w, session)
}

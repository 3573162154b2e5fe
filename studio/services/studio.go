// Package services is the route layer. Each service owns a slice of the REST
// surface and translates store errors into status codes; all persistence goes
// through the store and all identity comes from the auth middleware.
package services

import (
	"log"
	"net/http"
	"os"
	"time"

	"tunesmith/studio/auth"
	"tunesmith/studio/generation"
	"tunesmith/studio/storage"
	"tunesmith/studio/store"
	"tunesmith/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Studio struct {
	user       UserService
	project    ProjectService
	artist     ArtistService
	analytics  AnalyticsService
	security   SecurityService
	generation GenerationService

	store    *store.Store
	userAuth auth.IdentityProvider
}

func NewStudio(
	st *store.Store, assets storage.Storage, provider generation.Provider, userAuth auth.IdentityProvider,
) Studio {
	return Studio{
		user:      UserService{store: st, userAuth: userAuth},
		project:   ProjectService{store: st, userAuth: userAuth},
		artist:    ArtistService{store: st},
		analytics: AnalyticsService{store: st, userAuth: userAuth},
		security:  SecurityService{store: st, provider: provider, userAuth: userAuth},
		generation: GenerationService{
			store:    st,
			provider: provider,
			assets:   assets,
			userAuth: userAuth,
		},
		store:    st,
		userAuth: userAuth,
	}
}

func (s *Studio) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger: log.New(os.Stderr, "", log.LstdFlags), NoColor: false,
	}))

	r.Mount("/auth", s.user.Routes())
	r.Mount("/projects", s.project.Routes())
	r.Mount("/ai-artists", s.artist.Routes())
	r.Mount("/analytics", s.analytics.Routes())
	r.Mount("/security", s.security.Routes())
	r.Mount("/ai", s.generation.Routes())

	r.Group(func(r chi.Router) {
		r.Use(s.userAuth.AuthMiddleware()...)

		r.Get("/user/stats", s.user.Stats)
		r.Get("/dashboard/stats", s.user.Dashboard)

		r.Delete("/collaborators/{collaborator_id}", s.project.RemoveCollaborator)

		r.Get("/royalties/real-time/{project_id}", s.generation.Royalties)
		r.Post("/collaboration/start", s.generation.StartCollaboration)
	})

	r.Get("/health", s.Health)

	r.Handle("/metrics", promhttp.Handler())

	return r
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Studio) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJsonResponse(w, healthResponse{Status: "ok", Timestamp: time.Now().UTC()})
}

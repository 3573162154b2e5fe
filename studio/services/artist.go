package services

import (
	"fmt"
	"net/http"

	"tunesmith/studio/store"
	"tunesmith/utils"

	"github.com/go-chi/chi/v5"
)

// ArtistService serves the shared voice-persona catalog. The catalog is
// public; the landing page renders it before login.
type ArtistService struct {
	store *store.Store
}

func (s *ArtistService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", s.List)

	return r
}

func (s *ArtistService) List(w http.ResponseWriter, r *http.Request) {
	artists, err := s.store.ListArtists()
	if err != nil {
		http.Error(w, fmt.Sprintf("error listing ai artists: %v", err), responseCode(err))
		return
	}

	utils.WriteJsonResponse(w, artists)
}

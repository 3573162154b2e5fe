package main

import (
	_ "embed"
	"fmt"
	"os"

	"tunesmith/studio/schema"
	"tunesmith/studio/store"

	"gopkg.in/yaml.v3"
)

//go:embed artists.yaml
var defaultArtistCatalog []byte

type artistEntry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Gender      string `yaml:"gender"`
	VoiceType   string `yaml:"voiceType"`
	Genre       string `yaml:"genre"`
	Language    string `yaml:"language"`
	Popularity  int    `yaml:"popularity"`
	PreviewUrl  string `yaml:"previewUrl"`
	Inactive    bool   `yaml:"inactive"`
}

type artistCatalog struct {
	Artists []artistEntry `yaml:"artists"`
}

// seedArtists loads the voice-persona catalog into the database. With an
// empty path the catalog shipped with the binary is used. Seeding is
// idempotent; existing artists are left untouched.
func seedArtists(st *store.Store, path string) error {
	data := defaultArtistCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("error reading artist catalog '%v': %w", path, err)
		}
	}

	var catalog artistCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return fmt.Errorf("error parsing artist catalog: %w", err)
	}

	artists := make([]schema.AiArtist, 0, len(catalog.Artists))
	for _, entry := range catalog.Artists {
		language := entry.Language
		if language == "" {
			language = "en"
		}
		artists = append(artists, schema.AiArtist{
			Name:        entry.Name,
			Description: entry.Description,
			Gender:      entry.Gender,
			VoiceType:   entry.VoiceType,
			Genre:       entry.Genre,
			Language:    language,
			Popularity:  entry.Popularity,
			PreviewUrl:  entry.PreviewUrl,
			IsActive:    !entry.Inactive,
		})
	}

	return st.SeedArtists(artists)
}

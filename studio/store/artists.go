package store

import (
	"log/slog"

	"tunesmith/studio/schema"

	"gorm.io/gorm"
)

// ListArtists returns the active voice-persona catalog, most popular first.
func (s *Store) ListArtists() ([]schema.AiArtist, error) {
	var artists []schema.AiArtist
	result := s.db.Where("is_active = ?", true).Order("popularity DESC").Find(&artists)
	if result.Error != nil {
		slog.Error("sql error listing ai artists", "error", result.Error)
		return nil, schema.ErrDbAccessFailed
	}
	return artists, nil
}

func (s *Store) GetArtist(artistId int) (schema.AiArtist, error) {
	return schema.GetArtist(artistId, s.db)
}

// SeedArtists inserts catalog entries that are not already present, matched
// by name. Safe to run on every deployment.
func (s *Store) SeedArtists(artists []schema.AiArtist) error {
	return s.db.Transaction(func(txn *gorm.DB) error {
		for _, artist := range artists {
			var existing schema.AiArtist
			result := txn.Limit(1).Find(&existing, "name = ?", artist.Name)
			if result.Error != nil {
				slog.Error("sql error checking for existing artist", "name", artist.Name, "error", result.Error)
				return schema.ErrDbAccessFailed
			}
			if result.RowsAffected != 0 {
				continue
			}

			artist := artist
			artist.Id = 0
			if result := txn.Create(&artist); result.Error != nil {
				slog.Error("sql error seeding artist", "name", artist.Name, "error", result.Error)
				return schema.ErrDbAccessFailed
			}
		}
		return nil
	})
}

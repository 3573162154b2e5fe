package store

import (
	"log/slog"
	"time"

	"tunesmith/studio/schema"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectCreate struct {
	Title      string
	Lyrics     string
	Genre      string
	Mood       string
	Tempo      string
	AiArtistId *int
	IsPublic   bool
}

// ProjectPatch carries a partial update. Nil fields are left untouched.
// The project id and owner can never be changed through a patch.
type ProjectPatch struct {
	Title  *string
	Lyrics *string
	Genre  *string
	Mood   *string
	Tempo  *string

	AiArtistId *int

	Status             *string
	ProcessingStep     *int
	GenerationProgress *int

	AudioUrl       *string
	VideoUrl       *string
	BundleUrl      *string
	CertificateUrl *string

	EstimatedDuration *int
	ActualDuration    *int

	StreamCount *int
	IsPublic    *bool
}

func (s *Store) ListProjects(userId string) ([]schema.Project, error) {
	var projects []schema.Project
	result := s.db.Where("user_id = ?", userId).Order("updated_at DESC").Find(&projects)
	if result.Error != nil {
		slog.Error("sql error listing projects", "user_id", userId, "error", result.Error)
		return nil, schema.ErrDbAccessFailed
	}
	return projects, nil
}

func (s *Store) GetProject(projectId uuid.UUID, userId string) (schema.Project, error) {
	return schema.GetProject(projectId, userId, s.db)
}

// CreateProject inserts a new draft owned by userId and bumps the owner's
// songs_created counter in the same transaction. The counter update is a
// relative SQL expression so concurrent creations cannot lose updates.
func (s *Store) CreateProject(userId string, data ProjectCreate) (schema.Project, error) {
	missing := []string{}
	if data.Title == "" {
		missing = append(missing, "title")
	}
	if data.Lyrics == "" {
		missing = append(missing, "lyrics")
	}
	if data.Genre == "" {
		missing = append(missing, "genre")
	}
	if len(missing) > 0 {
		return schema.Project{}, NewValidationError(missing...)
	}

	if data.AiArtistId != nil {
		if _, err := schema.GetArtist(*data.AiArtistId, s.db); err != nil {
			if err == schema.ErrArtistNotFound {
				return schema.Project{}, NewValidationError("aiArtistId")
			}
			return schema.Project{}, err
		}
	}

	project := schema.Project{
		Id:         uuid.New(),
		UserId:     userId,
		Title:      data.Title,
		Lyrics:     data.Lyrics,
		Genre:      data.Genre,
		Mood:       data.Mood,
		Tempo:      data.Tempo,
		AiArtistId: data.AiArtistId,
		Status:     schema.StatusDraft,
		TotalSteps: schema.TotalPipelineSteps,
		Revenue:    "0.00",
		IsPublic:   data.IsPublic,
	}

	err := s.db.Transaction(func(txn *gorm.DB) error {
		if _, err := schema.GetUser(userId, txn); err != nil {
			return err
		}

		if result := txn.Create(&project); result.Error != nil {
			slog.Error("sql error creating project", "user_id", userId, "error", result.Error)
			return schema.ErrDbAccessFailed
		}

		result := txn.Model(&schema.UserStats{}).
			Where("user_id = ?", userId).
			Updates(map[string]interface{}{
				"songs_created": gorm.Expr("songs_created + 1"),
				"updated_at":    time.Now().UTC(),
			})
		if result.Error != nil {
			slog.Error("sql error incrementing songs created", "user_id", userId, "error", result.Error)
			return schema.ErrDbAccessFailed
		}
		if result.RowsAffected == 0 {
			return ensureStatsWithCount(txn, userId, 1)
		}
		return nil
	})
	if err != nil {
		return schema.Project{}, err
	}

	return project, nil
}

func ensureStatsWithCount(txn *gorm.DB, userId string, songsCreated int) error {
	stats := schema.UserStats{UserId: userId, SongsCreated: songsCreated}
	if result := txn.Create(&stats); result.Error != nil {
		slog.Error("sql error creating user stats row", "user_id", userId, "error", result.Error)
		return schema.ErrDbAccessFailed
	}
	return nil
}

// UpdateProject applies a partial update if the project is owned by userId.
// A nonexistent id and a wrong owner are both reported as not found.
func (s *Store) UpdateProject(projectId uuid.UUID, userId string, patch ProjectPatch) (schema.Project, error) {
	var updated schema.Project

	err := s.db.Transaction(func(txn *gorm.DB) error {
		project, err := schema.GetProject(projectId, userId, txn)
		if err != nil {
			return err
		}

		updates, err := patch.toUpdates(&project)
		if err != nil {
			return err
		}

		result := txn.Model(&schema.Project{}).
			Where("id = ? AND user_id = ?", projectId, userId).
			Updates(updates)
		if result.Error != nil {
			slog.Error("sql error updating project", "project_id", projectId, "error", result.Error)
			return schema.ErrDbAccessFailed
		}

		updated, err = schema.GetProject(projectId, userId, txn)
		return err
	})
	if err != nil {
		return schema.Project{}, err
	}

	return updated, nil
}

func (p *ProjectPatch) toUpdates(project *schema.Project) (map[string]interface{}, error) {
	updates := map[string]interface{}{"updated_at": time.Now().UTC()}

	if p.Title != nil {
		if *p.Title == "" {
			return nil, NewValidationError("title")
		}
		updates["title"] = *p.Title
	}
	if p.Lyrics != nil {
		updates["lyrics"] = *p.Lyrics
	}
	if p.Genre != nil {
		updates["genre"] = *p.Genre
	}
	if p.Mood != nil {
		updates["mood"] = *p.Mood
	}
	if p.Tempo != nil {
		updates["tempo"] = *p.Tempo
	}
	if p.AiArtistId != nil {
		updates["ai_artist_id"] = *p.AiArtistId
	}

	if p.Status != nil {
		if err := schema.CheckValidStatus(*p.Status); err != nil {
			return nil, NewValidationError("status")
		}
		if *p.Status == schema.StatusPublished && project.Status != schema.StatusCompleted && project.Status != schema.StatusPublished {
			return nil, NewValidationError("status")
		}
		updates["status"] = *p.Status
		if *p.Status == schema.StatusCompleted && project.CompletedAt == nil {
			updates["completed_at"] = time.Now().UTC()
		}
	}

	if p.ProcessingStep != nil {
		if *p.ProcessingStep < 0 || *p.ProcessingStep > project.TotalSteps {
			return nil, NewValidationError("processingStep")
		}
		updates["processing_step"] = *p.ProcessingStep
	}
	if p.GenerationProgress != nil {
		progress := *p.GenerationProgress
		if progress < 0 {
			progress = 0
		}
		if progress > 100 {
			progress = 100
		}
		updates["generation_progress"] = progress
	}

	if p.AudioUrl != nil {
		updates["audio_url"] = *p.AudioUrl
	}
	if p.VideoUrl != nil {
		updates["video_url"] = *p.VideoUrl
	}
	if p.BundleUrl != nil {
		updates["bundle_url"] = *p.BundleUrl
	}
	if p.CertificateUrl != nil {
		updates["certificate_url"] = *p.CertificateUrl
	}

	if p.EstimatedDuration != nil {
		updates["estimated_duration"] = *p.EstimatedDuration
	}
	if p.ActualDuration != nil {
		updates["actual_duration"] = *p.ActualDuration
	}

	if p.StreamCount != nil {
		if *p.StreamCount < 0 {
			return nil, NewValidationError("streamCount")
		}
		updates["stream_count"] = *p.StreamCount
	}
	if p.IsPublic != nil {
		updates["is_public"] = *p.IsPublic
	}

	return updates, nil
}

// DeleteProject removes an owned project and decrements songs_created,
// clamped so the counter never goes negative.
func (s *Store) DeleteProject(projectId uuid.UUID, userId string) error {
	return s.db.Transaction(func(txn *gorm.DB) error {
		if _, err := schema.GetProject(projectId, userId, txn); err != nil {
			return err
		}

		result := txn.Where("id = ? AND user_id = ?", projectId, userId).Delete(&schema.Project{})
		if result.Error != nil {
			slog.Error("sql error deleting project", "project_id", projectId, "error", result.Error)
			return schema.ErrDbAccessFailed
		}
		if result.RowsAffected == 0 {
			return schema.ErrProjectNotFound
		}

		result = txn.Model(&schema.UserStats{}).
			Where("user_id = ?", userId).
			Updates(map[string]interface{}{
				"songs_created": gorm.Expr("CASE WHEN songs_created > 0 THEN songs_created - 1 ELSE 0 END"),
				"updated_at":    time.Now().UTC(),
			})
		if result.Error != nil {
			slog.Error("sql error decrementing songs created", "user_id", userId, "error", result.Error)
			return schema.ErrDbAccessFailed
		}
		return nil
	})
}

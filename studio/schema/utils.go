package schema

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrArtistNotFound       = errors.New("ai artist not found")
	ErrStatsNotFound        = errors.New("user stats not found")
	ErrCollaboratorNotFound = errors.New("collaborator not found")
	ErrDbAccessFailed       = errors.New("db access failed")
)

func GetUser(userId string, db *gorm.DB) (User, error) {
	var user User

	result := db.First(&user, "id = ?", userId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return user, ErrUserNotFound
		}
		slog.Error("sql error in get user", "user_id", userId, "error", result.Error)
		return user, ErrDbAccessFailed
	}

	return user, nil
}

// GetProject looks up a project by id and owner. A project owned by a
// different user is reported as not found so that callers cannot probe for
// the existence of other users' projects.
func GetProject(projectId uuid.UUID, userId string, db *gorm.DB) (Project, error) {
	var project Project

	result := db.First(&project, "id = ? AND user_id = ?", projectId, userId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return project, ErrProjectNotFound
		}
		slog.Error("sql error in get project", "project_id", projectId, "error", result.Error)
		return project, ErrDbAccessFailed
	}

	return project, nil
}

func GetArtist(artistId int, db *gorm.DB) (AiArtist, error) {
	var artist AiArtist

	result := db.First(&artist, "id = ?", artistId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return artist, ErrArtistNotFound
		}
		slog.Error("sql error in get ai artist", "artist_id", artistId, "error", result.Error)
		return artist, ErrDbAccessFailed
	}

	return artist, nil
}

func GetUserStats(userId string, db *gorm.DB) (UserStats, error) {
	var stats UserStats

	result := db.First(&stats, "user_id = ?", userId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return stats, ErrStatsNotFound
		}
		slog.Error("sql error in get user stats", "user_id", userId, "error", result.Error)
		return stats, ErrDbAccessFailed
	}

	return stats, nil
}

func GetCollaborator(collaboratorId uuid.UUID, db *gorm.DB) (Collaborator, error) {
	var collaborator Collaborator

	result := db.First(&collaborator, "id = ?", collaboratorId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return collaborator, ErrCollaboratorNotFound
		}
		slog.Error("sql error in get collaborator", "collaborator_id", collaboratorId, "error", result.Error)
		return collaborator, ErrDbAccessFailed
	}

	return collaborator, nil
}

package store

import (
	"log/slog"
	"strconv"

	"tunesmith/studio/schema"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CollaboratorInsert struct {
	Name           string
	Email          string
	Role           string
	RoyaltyPercent string
}

// AddCollaborator attaches a collaborator to a project the requester owns.
// The royalty split across all of a project's collaborators must stay at or
// below 100 percent.
func (s *Store) AddCollaborator(projectId uuid.UUID, userId string, data CollaboratorInsert) (schema.Collaborator, error) {
	missing := []string{}
	if data.Name == "" {
		missing = append(missing, "name")
	}
	if data.Email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return schema.Collaborator{}, NewValidationError(missing...)
	}

	if data.RoyaltyPercent == "" {
		data.RoyaltyPercent = "0.00"
	}
	share, err := strconv.ParseFloat(data.RoyaltyPercent, 64)
	if err != nil || share < 0 || share > 100 {
		return schema.Collaborator{}, NewValidationError("royaltyPercent")
	}

	collaborator := schema.Collaborator{
		Id:             uuid.New(),
		ProjectId:      projectId,
		Name:           data.Name,
		Email:          data.Email,
		Role:           data.Role,
		RoyaltyPercent: data.RoyaltyPercent,
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if _, err := schema.GetProject(projectId, userId, txn); err != nil {
			return err
		}

		var existing []schema.Collaborator
		if result := txn.Find(&existing, "project_id = ?", projectId); result.Error != nil {
			slog.Error("sql error listing collaborators for share check", "project_id", projectId, "error", result.Error)
			return schema.ErrDbAccessFailed
		}
		total := share
		for _, c := range existing {
			existingShare, err := strconv.ParseFloat(c.RoyaltyPercent, 64)
			if err != nil {
				slog.Error("unparsable royalty percent in collaborator row", "collaborator_id", c.Id, "value", c.RoyaltyPercent)
				continue
			}
			total += existingShare
		}
		if total > 100 {
			return NewValidationError("royaltyPercent")
		}

		if result := txn.Create(&collaborator); result.Error != nil {
			slog.Error("sql error adding collaborator", "project_id", projectId, "error", result.Error)
			return schema.ErrDbAccessFailed
		}
		return nil
	})
	if err != nil {
		return schema.Collaborator{}, err
	}

	return collaborator, nil
}

func (s *Store) ListCollaborators(projectId uuid.UUID, userId string) ([]schema.Collaborator, error) {
	if _, err := schema.GetProject(projectId, userId, s.db); err != nil {
		return nil, err
	}

	var collaborators []schema.Collaborator
	result := s.db.Where("project_id = ?", projectId).Order("created_at ASC").Find(&collaborators)
	if result.Error != nil {
		slog.Error("sql error listing collaborators", "project_id", projectId, "error", result.Error)
		return nil, schema.ErrDbAccessFailed
	}
	return collaborators, nil
}

// RemoveCollaborator walks collaborator -> project -> owner before deleting.
// A requester who does not own the parent project is rejected outright; the
// collaborator row itself is not a secret once its id is known.
func (s *Store) RemoveCollaborator(collaboratorId uuid.UUID, userId string) error {
	return s.db.Transaction(func(txn *gorm.DB) error {
		collaborator, err := schema.GetCollaborator(collaboratorId, txn)
		if err != nil {
			return err
		}

		if _, err := schema.GetProject(collaborator.ProjectId, userId, txn); err != nil {
			if err == schema.ErrProjectNotFound {
				return ErrForbidden
			}
			return err
		}

		result := txn.Delete(&schema.Collaborator{Id: collaboratorId})
		if result.Error != nil {
			slog.Error("sql error removing collaborator", "collaborator_id", collaboratorId, "error", result.Error)
			return schema.ErrDbAccessFailed
		}
		return nil
	})
}

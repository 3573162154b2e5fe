package store

import (
	"errors"
	"log/slog"
	"time"

	"tunesmith/studio/schema"

	"gorm.io/gorm"
)

type UserUpsert struct {
	Id              string
	Email           *string
	FirstName       string
	LastName        string
	ProfileImageUrl string
}

func (s *Store) GetUser(userId string) (schema.User, error) {
	return schema.GetUser(userId, s.db)
}

// UpsertUser inserts the user if absent, otherwise refreshes the mutable
// profile fields. Every user has exactly one user_stats row, created inside
// the same transaction on first insert. Called on every successful auth
// callback from the identity provider.
func (s *Store) UpsertUser(data UserUpsert) (schema.User, error) {
	if data.Id == "" {
		return schema.User{}, NewValidationError("id")
	}

	var user schema.User
	err := s.db.Transaction(func(txn *gorm.DB) error {
		result := txn.Limit(1).Find(&user, "id = ?", data.Id)
		if result.Error != nil {
			slog.Error("sql error checking for existing user", "user_id", data.Id, "error", result.Error)
			return schema.ErrDbAccessFailed
		}

		if result.RowsAffected == 0 {
			user = schema.User{
				Id:              data.Id,
				Email:           data.Email,
				FirstName:       data.FirstName,
				LastName:        data.LastName,
				ProfileImageUrl: data.ProfileImageUrl,
				Plan:            schema.PlanFree,
				AiCredits:       schema.DefaultAiCredits,
			}
			if result := txn.Create(&user); result.Error != nil {
				slog.Error("sql error creating user", "user_id", data.Id, "error", result.Error)
				return schema.ErrDbAccessFailed
			}
		} else {
			updates := map[string]interface{}{
				"first_name":        data.FirstName,
				"last_name":         data.LastName,
				"profile_image_url": data.ProfileImageUrl,
				"updated_at":        time.Now().UTC(),
			}
			if data.Email != nil {
				updates["email"] = *data.Email
			}
			if result := txn.Model(&user).Updates(updates); result.Error != nil {
				slog.Error("sql error updating user", "user_id", data.Id, "error", result.Error)
				return schema.ErrDbAccessFailed
			}
		}

		return ensureUserStats(txn, data.Id)
	})
	if err != nil {
		return schema.User{}, err
	}

	return user, nil
}

func ensureUserStats(txn *gorm.DB, userId string) error {
	var stats schema.UserStats
	result := txn.Limit(1).Find(&stats, "user_id = ?", userId)
	if result.Error != nil {
		slog.Error("sql error checking for user stats", "user_id", userId, "error", result.Error)
		return schema.ErrDbAccessFailed
	}
	if result.RowsAffected == 0 {
		stats = schema.UserStats{UserId: userId}
		if result := txn.Create(&stats); result.Error != nil {
			slog.Error("sql error creating user stats", "user_id", userId, "error", result.Error)
			return schema.ErrDbAccessFailed
		}
	}
	return nil
}

// DecrementCredit atomically spends one AI credit. The balance is never
// driven below zero; an exhausted balance is reported as
// ErrInsufficientCredits.
func (s *Store) DecrementCredit(userId string) error {
	result := s.db.Model(&schema.User{}).
		Where("id = ? AND ai_credits > 0", userId).
		Update("ai_credits", gorm.Expr("ai_credits - 1"))
	if result.Error != nil {
		slog.Error("sql error decrementing ai credits", "user_id", userId, "error", result.Error)
		return schema.ErrDbAccessFailed
	}
	if result.RowsAffected == 0 {
		if _, err := schema.GetUser(userId, s.db); err != nil {
			return err
		}
		return ErrInsufficientCredits
	}
	return nil
}

type StatsPatch struct {
	SongsCreated     *int
	TotalStreams     *int
	MonthlyStreams   *int
	RoyaltiesEarned  *string
	MonthlyRoyalties *string
	TopGenre         *string
	TotalPlaytime    *int
}

func (s *Store) GetUserStats(userId string) (schema.UserStats, error) {
	return schema.GetUserStats(userId, s.db)
}

// UpdateUserStats patches the aggregate row directly. It is used by internal
// jobs (stream ingest, royalty rollups), never exposed as a client write.
func (s *Store) UpdateUserStats(userId string, patch StatsPatch) (schema.UserStats, error) {
	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if patch.SongsCreated != nil {
		updates["songs_created"] = *patch.SongsCreated
	}
	if patch.TotalStreams != nil {
		updates["total_streams"] = *patch.TotalStreams
	}
	if patch.MonthlyStreams != nil {
		updates["monthly_streams"] = *patch.MonthlyStreams
	}
	if patch.RoyaltiesEarned != nil {
		updates["royalties_earned"] = *patch.RoyaltiesEarned
	}
	if patch.MonthlyRoyalties != nil {
		updates["monthly_royalties"] = *patch.MonthlyRoyalties
	}
	if patch.TopGenre != nil {
		updates["top_genre"] = *patch.TopGenre
	}
	if patch.TotalPlaytime != nil {
		updates["total_playtime"] = *patch.TotalPlaytime
	}

	result := s.db.Model(&schema.UserStats{}).Where("user_id = ?", userId).Updates(updates)
	if result.Error != nil {
		slog.Error("sql error updating user stats", "user_id", userId, "error", result.Error)
		return schema.UserStats{}, schema.ErrDbAccessFailed
	}
	if result.RowsAffected == 0 {
		return schema.UserStats{}, schema.ErrStatsNotFound
	}

	return schema.GetUserStats(userId, s.db)
}

// CreateLocalUser registers a password-backed account for the basic identity
// provider. Production deployments use an external provider and never call
// this.
func (s *Store) CreateLocalUser(userId string, email string, password []byte) error {
	err := s.db.Transaction(func(txn *gorm.DB) error {
		var existing schema.User
		result := txn.Limit(1).Find(&existing, "id = ? OR email = ?", userId, email)
		if result.Error != nil {
			slog.Error("sql error checking for existing local user", "error", result.Error)
			return schema.ErrDbAccessFailed
		}
		if result.RowsAffected != 0 {
			return NewValidationError("email")
		}

		user := schema.User{
			Id:        userId,
			Email:     &email,
			Plan:      schema.PlanFree,
			AiCredits: schema.DefaultAiCredits,
			Password:  password,
		}
		if result := txn.Create(&user); result.Error != nil {
			slog.Error("sql error creating local user", "error", result.Error)
			return schema.ErrDbAccessFailed
		}

		return ensureUserStats(txn, userId)
	})
	return err
}

func (s *Store) GetUserByEmail(email string) (schema.User, error) {
	var user schema.User
	result := s.db.First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return user, schema.ErrUserNotFound
		}
		slog.Error("sql error looking up user by email", "error", result.Error)
		return user, schema.ErrDbAccessFailed
	}
	return user, nil
}

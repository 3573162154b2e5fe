package store

import (
	"log/slog"

	"tunesmith/studio/schema"

	"github.com/google/uuid"
)

const (
	defaultAnalyticsLimit = 100
	defaultSecurityLimit  = 50
	maxEventLimit         = 500
)

type AnalyticsInsert struct {
	UserId    string
	ProjectId *uuid.UUID
	EventType string
	Platform  string
	Country   string
	Metadata  string
}

type SecurityLogInsert struct {
	UserId    string
	ProjectId *uuid.UUID
	EventType string
	IpAddress string
	UserAgent string
	Details   string
	Severity  string
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxEventLimit {
		return maxEventLimit
	}
	return limit
}

// RecordAnalytics appends an analytics event. Rows are never updated or
// deleted afterwards.
func (s *Store) RecordAnalytics(event AnalyticsInsert) (schema.AnalyticsEvent, error) {
	if event.EventType == "" {
		return schema.AnalyticsEvent{}, NewValidationError("eventType")
	}
	if err := s.checkEventRefs(event.UserId, event.ProjectId); err != nil {
		return schema.AnalyticsEvent{}, err
	}

	row := schema.AnalyticsEvent{
		UserId:    event.UserId,
		ProjectId: event.ProjectId,
		EventType: event.EventType,
		Platform:  event.Platform,
		Country:   event.Country,
		Metadata:  event.Metadata,
	}
	if result := s.db.Create(&row); result.Error != nil {
		slog.Error("sql error recording analytics event", "user_id", event.UserId, "error", result.Error)
		return schema.AnalyticsEvent{}, schema.ErrDbAccessFailed
	}
	return row, nil
}

func (s *Store) ListAnalytics(userId string, limit int) ([]schema.AnalyticsEvent, error) {
	var events []schema.AnalyticsEvent
	result := s.db.Where("user_id = ?", userId).
		Order("created_at DESC").
		Limit(clampLimit(limit, defaultAnalyticsLimit)).
		Find(&events)
	if result.Error != nil {
		slog.Error("sql error listing analytics events", "user_id", userId, "error", result.Error)
		return nil, schema.ErrDbAccessFailed
	}
	return events, nil
}

// RecordSecurityLog appends a security event. Rows are never updated or
// deleted afterwards.
func (s *Store) RecordSecurityLog(event SecurityLogInsert) (schema.SecurityLog, error) {
	if event.EventType == "" {
		return schema.SecurityLog{}, NewValidationError("eventType")
	}
	if event.Severity == "" {
		event.Severity = schema.SeverityInfo
	}
	if err := schema.CheckValidSeverity(event.Severity); err != nil {
		return schema.SecurityLog{}, NewValidationError("severity")
	}
	if err := s.checkEventRefs(event.UserId, event.ProjectId); err != nil {
		return schema.SecurityLog{}, err
	}

	row := schema.SecurityLog{
		UserId:    event.UserId,
		ProjectId: event.ProjectId,
		EventType: event.EventType,
		IpAddress: event.IpAddress,
		UserAgent: event.UserAgent,
		Details:   event.Details,
		Severity:  event.Severity,
	}
	if result := s.db.Create(&row); result.Error != nil {
		slog.Error("sql error recording security log", "user_id", event.UserId, "error", result.Error)
		return schema.SecurityLog{}, schema.ErrDbAccessFailed
	}
	return row, nil
}

func (s *Store) ListSecurityLogs(userId string, limit int) ([]schema.SecurityLog, error) {
	var logs []schema.SecurityLog
	result := s.db.Where("user_id = ?", userId).
		Order("created_at DESC").
		Limit(clampLimit(limit, defaultSecurityLimit)).
		Find(&logs)
	if result.Error != nil {
		slog.Error("sql error listing security logs", "user_id", userId, "error", result.Error)
		return nil, schema.ErrDbAccessFailed
	}
	return logs, nil
}

// checkEventRefs verifies the referenced rows exist up front; sqlite does
// not reliably enforce foreign keys, so a dangling reference must surface as
// a validation error on every backend.
func (s *Store) checkEventRefs(userId string, projectId *uuid.UUID) error {
	if userId == "" {
		return NewValidationError("userId")
	}
	if _, err := schema.GetUser(userId, s.db); err != nil {
		if err == schema.ErrUserNotFound {
			return NewValidationError("userId")
		}
		return err
	}
	if projectId != nil {
		var count int64
		result := s.db.Model(&schema.Project{}).Where("id = ?", *projectId).Count(&count)
		if result.Error != nil {
			slog.Error("sql error checking project reference", "project_id", *projectId, "error", result.Error)
			return schema.ErrDbAccessFailed
		}
		if count == 0 {
			return NewValidationError("projectId")
		}
	}
	return nil
}

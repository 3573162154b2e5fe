package schema

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Project lifecycle statuses. "published" is only reachable from "completed".
const (
	StatusDraft      = "draft"
	StatusProcessing = "processing"
	StatusGenerating = "generating"
	StatusCompleted  = "completed"
	StatusPublished  = "published"
	StatusFailed     = "failed"
)

const (
	PlanFree         = "free"
	PlanProfessional = "professional"
	PlanEnterprise   = "enterprise"
)

const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// DefaultAiCredits is the starting credit balance for new accounts.
const DefaultAiCredits = 100

// TotalPipelineSteps is the number of stages in the generation pipeline:
// script, voice, instrumental, mixing, video, export.
const TotalPipelineSteps = 6

func CheckValidStatus(status string) error {
	switch status {
	case StatusDraft, StatusProcessing, StatusGenerating, StatusCompleted, StatusPublished, StatusFailed:
		return nil
	}
	return fmt.Errorf("invalid project status '%v'", status)
}

func CheckValidSeverity(severity string) error {
	switch severity {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return nil
	}
	return fmt.Errorf("invalid severity '%v'", severity)
}

// User ids are issued by the external identity provider, so the primary key
// is the provider's stable subject string rather than a generated uuid.
type User struct {
	Id string `gorm:"primaryKey;size:100" json:"id"`

	Email     *string `gorm:"unique;size:254" json:"email"`
	FirstName string  `gorm:"size:100" json:"firstName"`
	LastName  string  `gorm:"size:100" json:"lastName"`

	ProfileImageUrl string `gorm:"size:500" json:"profileImageUrl"`

	Plan      string `gorm:"size:50;not null;default:'free'" json:"plan"`
	AiCredits int    `gorm:"not null;default:100" json:"aiCredits"`

	PlanRenewsAt *time.Time `json:"planRenewsAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Password []byte `json:"-"`

	Projects []Project  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Stats    *UserStats `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

type Project struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	UserId string `gorm:"size:100;not null;index" json:"userId"`
	User   *User  `json:"-"`

	Title  string `gorm:"size:200;not null" json:"title"`
	Lyrics string `json:"lyrics"`
	Genre  string `gorm:"size:100" json:"genre"`
	Mood   string `gorm:"size:100" json:"mood"`
	Tempo  string `gorm:"size:100" json:"tempo"`

	AiArtistId *int      `json:"aiArtistId"`
	AiArtist   *AiArtist `gorm:"constraint:OnDelete:SET NULL" json:"-"`

	Status string `gorm:"size:50;not null;default:'draft'" json:"status"`

	ProcessingStep     int `gorm:"not null;default:0" json:"processingStep"`
	TotalSteps         int `gorm:"not null;default:6" json:"totalSteps"`
	GenerationProgress int `gorm:"not null;default:0" json:"generationProgress"`

	AudioUrl       *string `gorm:"size:500" json:"audioUrl"`
	VideoUrl       *string `gorm:"size:500" json:"videoUrl"`
	BundleUrl      *string `gorm:"size:500" json:"bundleUrl"`
	CertificateUrl *string `gorm:"size:500" json:"certificateUrl"`

	EstimatedDuration *int `json:"estimatedDuration"`
	ActualDuration    *int `json:"actualDuration"`

	StreamCount int `gorm:"not null;default:0" json:"streamCount"`

	// Money amounts are carried as fixed-point strings ("0.00"). A numeric
	// column would canonicalize them on some backends, so they stay text.
	Revenue string `gorm:"size:20;not null;default:'0.00'" json:"revenue"`

	IsPublic bool `gorm:"not null;default:false" json:"isPublic"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt"`

	Collaborators []Collaborator `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// AiArtist is the shared voice-persona catalog. Rows are seeded at deploy
// time and referenced weakly from projects, never owned by a user.
type AiArtist struct {
	Id int `gorm:"primaryKey;autoIncrement" json:"id"`

	Name        string `gorm:"size:100;not null" json:"name"`
	Gender      string `gorm:"size:50;not null" json:"gender"`
	VoiceType   string `gorm:"size:50;not null" json:"voiceType"`
	Genre       string `gorm:"size:100;not null" json:"genre"`
	Description string `json:"description"`

	Language   string `gorm:"size:50;not null;default:'en'" json:"language"`
	IsActive   bool   `gorm:"not null;default:true" json:"isActive"`
	Popularity int    `gorm:"not null;default:0" json:"popularity"`
	PreviewUrl string `gorm:"size:500" json:"previewUrl"`

	CreatedAt time.Time `json:"createdAt"`
}

// UserStats is a derived aggregate row, exactly one per user. It is only
// written by the store as a side effect of project mutations.
type UserStats struct {
	Id int `gorm:"primaryKey;autoIncrement" json:"id"`

	UserId string `gorm:"size:100;not null;unique" json:"userId"`

	SongsCreated   int `gorm:"not null;default:0" json:"songsCreated"`
	TotalStreams   int `gorm:"not null;default:0" json:"totalStreams"`
	MonthlyStreams int `gorm:"not null;default:0" json:"monthlyStreams"`

	RoyaltiesEarned  string `gorm:"size:20;not null;default:'0.00'" json:"royaltiesEarned"`
	MonthlyRoyalties string `gorm:"size:20;not null;default:'0.00'" json:"monthlyRoyalties"`

	TopGenre      string `gorm:"size:100" json:"topGenre"`
	TotalPlaytime int    `gorm:"not null;default:0" json:"totalPlaytime"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// AnalyticsEvent rows are append only.
type AnalyticsEvent struct {
	Id int `gorm:"primaryKey;autoIncrement" json:"id"`

	UserId    string     `gorm:"size:100;not null;index" json:"userId"`
	ProjectId *uuid.UUID `gorm:"type:uuid" json:"projectId"`

	EventType string `gorm:"size:100;not null" json:"eventType"`
	Platform  string `gorm:"size:100" json:"platform"`
	Country   string `gorm:"size:100" json:"country"`
	Metadata  string `json:"metadata"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	User    *User    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Project *Project `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}

// SecurityLog rows are append only.
type SecurityLog struct {
	Id int `gorm:"primaryKey;autoIncrement" json:"id"`

	UserId    string     `gorm:"size:100;not null;index" json:"userId"`
	ProjectId *uuid.UUID `gorm:"type:uuid" json:"projectId"`

	EventType string `gorm:"size:100;not null" json:"eventType"`
	IpAddress string `gorm:"size:100" json:"ipAddress"`
	UserAgent string `gorm:"size:500" json:"userAgent"`
	Details   string `json:"details"`

	Severity string `gorm:"size:50;not null;default:'info'" json:"severity"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	User    *User    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Project *Project `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}

type Collaborator struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	ProjectId uuid.UUID `gorm:"type:uuid;not null;index" json:"projectId"`
	Project   *Project  `json:"-"`

	Name  string `gorm:"size:100;not null" json:"name"`
	Email string `gorm:"size:254;not null" json:"email"`
	Role  string `gorm:"size:100" json:"role"`

	RoyaltyPercent string `gorm:"size:20;not null;default:'0.00'" json:"royaltyPercent"`
	Confirmed      bool   `gorm:"not null;default:false" json:"confirmed"`

	CreatedAt time.Time `json:"createdAt"`
}

// Tables returns every persisted model, in an order safe for AutoMigrate.
func Tables() []interface{} {
	return []interface{}{
		&User{}, &AiArtist{}, &Project{}, &UserStats{},
		&AnalyticsEvent{}, &SecurityLog{}, &Collaborator{},
	}
}

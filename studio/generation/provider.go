// Package generation defines the boundary between the studio's REST surface
// and whatever actually produces audio, video, and analysis results. The
// shipped implementation is a mock that returns stable placeholder payloads;
// a real pipeline slots in behind the same interface.
package generation

import (
	"errors"
	"time"

	"tunesmith/studio/schema"

	"github.com/google/uuid"
)

// ErrNotImplemented is returned by providers that do not support an
// operation. The route layer translates it to a typed "not implemented"
// response rather than fabricating data.
var ErrNotImplemented = errors.New("generation provider does not implement this operation")

// Pipeline stages in order. A project's ProcessingStep indexes into this
// list (1-based, 0 meaning not started).
var Stages = []string{"script", "voice", "instrumental", "mixing", "video", "export"}

// StageProgress maps a completed step count to a whole-number progress
// percentage.
func StageProgress(step int) int {
	if step <= 0 {
		return 0
	}
	if step >= len(Stages) {
		return 100
	}
	return step * 100 / len(Stages)
}

type ScriptSection struct {
	Type     string `json:"type"`
	Duration int    `json:"duration"`
}

type Script struct {
	Structure         string          `json:"structure"`
	Verses            int             `json:"verses"`
	Choruses          int             `json:"choruses"`
	Bridge            int             `json:"bridge"`
	EstimatedDuration int             `json:"estimatedDuration"`
	Sections          []ScriptSection `json:"sections"`
}

// Asset is a reference to a produced output plus its runtime, when known.
type Asset struct {
	Url             string `json:"url"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
}

// ExportResult is the final pipeline output: the mixed track, the video,
// the distributable bundle, and the authenticity certificate.
type ExportResult struct {
	Audio       Asset  `json:"audio"`
	Video       Asset  `json:"video"`
	BundleUrl   string `json:"bundleUrl"`
	Certificate string `json:"certificateUrl"`
}

type PromotionPlan struct {
	Headline  string   `json:"headline"`
	Caption   string   `json:"caption"`
	Hashtags  []string `json:"hashtags"`
	Platforms []string `json:"platforms"`
}

type TrackAnalysis struct {
	Key          string  `json:"key"`
	Bpm          int     `json:"bpm"`
	Energy       float64 `json:"energy"`
	Danceability float64 `json:"danceability"`
	Mood         string  `json:"mood"`
	Quality      string  `json:"quality"`
}

type LyricsRewrite struct {
	Lyrics string `json:"lyrics"`
	Notes  string `json:"notes"`
}

type VoiceFusion struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PreviewUrl  string `json:"previewUrl"`
}

type RoyaltySnapshot struct {
	ProjectId    uuid.UUID         `json:"projectId"`
	Total        string            `json:"total"`
	Currency     string            `json:"currency"`
	ByPlatform   map[string]string `json:"byPlatform"`
	StreamCounts map[string]int    `json:"streamCounts"`
	AsOf         time.Time         `json:"asOf"`
}

type CollaborationSession struct {
	SessionId uuid.UUID `json:"sessionId"`
	JoinUrl   string    `json:"joinUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type LeakScanReport struct {
	ProjectId   uuid.UUID `json:"projectId"`
	Scanned     int       `json:"scannedSources"`
	LeaksFound  int       `json:"leaksFound"`
	WatermarkOk bool      `json:"watermarkIntact"`
	CompletedAt time.Time `json:"completedAt"`
}

// Provider produces the outputs of the generation pipeline. Implementations
// must be safe for concurrent use; the route layer owns all project state
// transitions and credit accounting.
type Provider interface {
	GenerateScript(lyrics, genre, mood string) (Script, error)

	GenerateVoice(projectId uuid.UUID, artist *schema.AiArtist) (Asset, error)

	GenerateInstrumental(projectId uuid.UUID, genre, tempo, mood string) (Asset, error)

	GenerateVideo(projectId uuid.UUID) (ExportResult, error)

	GeneratePromotion(project *schema.Project, platforms []string) (PromotionPlan, error)

	AnalyzeTrack(project *schema.Project) (TrackAnalysis, error)

	SwitchGenre(lyrics, fromGenre, toGenre string) (LyricsRewrite, error)

	TranslateLyrics(lyrics, language string) (LyricsRewrite, error)

	FuseVoices(artists []schema.AiArtist) (VoiceFusion, error)

	RoyaltySnapshot(project *schema.Project) (RoyaltySnapshot, error)

	StartCollaboration(projectId uuid.UUID) (CollaborationSession, error)

	LeakScan(projectId uuid.UUID) (LeakScanReport, error)
}

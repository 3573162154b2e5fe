package generation

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"tunesmith/studio/schema"
	"tunesmith/studio/storage"

	"github.com/google/uuid"
)

// MockProvider fabricates schema-conformant placeholder outputs. Asset
// references point at real files written through the storage layer so that
// downstream consumers (downloads, bundle export) behave like they would
// against a real pipeline.
type MockProvider struct {
	storage storage.Storage
}

func NewMockProvider(store storage.Storage) Provider {
	return &MockProvider{storage: store}
}

func (p *MockProvider) writeAsset(projectId uuid.UUID, name, contents string) (string, error) {
	path := filepath.Join(storage.ProjectPath(projectId), name)
	if err := p.storage.Write(path, strings.NewReader(contents)); err != nil {
		return "", fmt.Errorf("error writing placeholder asset %v: %w", name, err)
	}
	return "/assets/" + path, nil
}

func (p *MockProvider) GenerateScript(lyrics, genre, mood string) (Script, error) {
	return Script{
		Structure:         "verse-chorus-verse-chorus-bridge-chorus",
		Verses:            2,
		Choruses:          3,
		Bridge:            1,
		EstimatedDuration: rand.Intn(60) + 180,
		Sections: []ScriptSection{
			{Type: "intro", Duration: 8},
			{Type: "verse", Duration: 24},
			{Type: "chorus", Duration: 20},
			{Type: "verse", Duration: 24},
			{Type: "chorus", Duration: 20},
			{Type: "bridge", Duration: 16},
			{Type: "chorus", Duration: 20},
			{Type: "outro", Duration: 12},
		},
	}, nil
}

func (p *MockProvider) GenerateVoice(projectId uuid.UUID, artist *schema.AiArtist) (Asset, error) {
	voice := "default"
	if artist != nil {
		voice = artist.Name
	}
	url, err := p.writeAsset(projectId, "vocals.mp3", fmt.Sprintf("placeholder vocal track (%v)", voice))
	if err != nil {
		return Asset{}, err
	}
	return Asset{Url: url, DurationSeconds: rand.Intn(60) + 180}, nil
}

func (p *MockProvider) GenerateInstrumental(projectId uuid.UUID, genre, tempo, mood string) (Asset, error) {
	url, err := p.writeAsset(projectId, "instrumental.mp3", fmt.Sprintf("placeholder instrumental (%v/%v/%v)", genre, tempo, mood))
	if err != nil {
		return Asset{}, err
	}
	return Asset{Url: url, DurationSeconds: rand.Intn(60) + 180}, nil
}

func (p *MockProvider) GenerateVideo(projectId uuid.UUID) (ExportResult, error) {
	audioUrl, err := p.writeAsset(projectId, "master.mp3", "placeholder mastered track")
	if err != nil {
		return ExportResult{}, err
	}
	videoUrl, err := p.writeAsset(projectId, "video.mp4", "placeholder music video")
	if err != nil {
		return ExportResult{}, err
	}
	certUrl, err := p.writeAsset(projectId, "certificate.pdf", "placeholder authenticity certificate")
	if err != nil {
		return ExportResult{}, err
	}

	if err := p.storage.Zip(storage.ProjectPath(projectId)); err != nil {
		return ExportResult{}, err
	}
	bundleUrl := "/assets/" + storage.ProjectPath(projectId) + ".zip"

	duration := rand.Intn(60) + 180
	return ExportResult{
		Audio:       Asset{Url: audioUrl, DurationSeconds: duration},
		Video:       Asset{Url: videoUrl, DurationSeconds: duration},
		BundleUrl:   bundleUrl,
		Certificate: certUrl,
	}, nil
}

func (p *MockProvider) GeneratePromotion(project *schema.Project, platforms []string) (PromotionPlan, error) {
	if len(platforms) == 0 {
		platforms = []string{"spotify", "youtube", "tiktok"}
	}
	return PromotionPlan{
		Headline:  fmt.Sprintf("New %v drop: %v", project.Genre, project.Title),
		Caption:   fmt.Sprintf("%v is out now. Made with AI, felt for real.", project.Title),
		Hashtags:  []string{"#newmusic", "#" + strings.ReplaceAll(strings.ToLower(project.Genre), " ", ""), "#aimusic"},
		Platforms: platforms,
	}, nil
}

func (p *MockProvider) AnalyzeTrack(project *schema.Project) (TrackAnalysis, error) {
	keys := []string{"C major", "A minor", "G major", "E minor", "D major", "F major"}
	return TrackAnalysis{
		Key:          keys[rand.Intn(len(keys))],
		Bpm:          rand.Intn(80) + 80,
		Energy:       0.72,
		Danceability: 0.65,
		Mood:         project.Mood,
		Quality:      "studio",
	}, nil
}

func (p *MockProvider) SwitchGenre(lyrics, fromGenre, toGenre string) (LyricsRewrite, error) {
	return LyricsRewrite{
		Lyrics: lyrics,
		Notes:  fmt.Sprintf("rephrased from %v to %v phrasing; melody re-voiced to match", fromGenre, toGenre),
	}, nil
}

func (p *MockProvider) TranslateLyrics(lyrics, language string) (LyricsRewrite, error) {
	return LyricsRewrite{
		Lyrics: lyrics,
		Notes:  fmt.Sprintf("translated to %v preserving rhyme scheme", language),
	}, nil
}

func (p *MockProvider) FuseVoices(artists []schema.AiArtist) (VoiceFusion, error) {
	names := make([]string, 0, len(artists))
	for _, artist := range artists {
		names = append(names, artist.Name)
	}
	return VoiceFusion{
		Name:        strings.Join(names, " x "),
		Description: fmt.Sprintf("blended voice profile of %v", strings.Join(names, ", ")),
		PreviewUrl:  "/samples/fusion-preview.mp3",
	}, nil
}

func (p *MockProvider) RoyaltySnapshot(project *schema.Project) (RoyaltySnapshot, error) {
	return RoyaltySnapshot{
		ProjectId: project.Id,
		Total:     project.Revenue,
		Currency:  "USD",
		ByPlatform: map[string]string{
			"spotify": project.Revenue,
			"apple":   "0.00",
			"youtube": "0.00",
		},
		StreamCounts: map[string]int{
			"spotify": project.StreamCount,
			"apple":   0,
			"youtube": 0,
		},
		AsOf: time.Now().UTC(),
	}, nil
}

func (p *MockProvider) StartCollaboration(projectId uuid.UUID) (CollaborationSession, error) {
	sessionId := uuid.New()
	return CollaborationSession{
		SessionId: sessionId,
		JoinUrl:   fmt.Sprintf("/collaboration/%v", sessionId),
		ExpiresAt: time.Now().UTC().Add(2 * time.Hour),
	}, nil
}

func (p *MockProvider) LeakScan(projectId uuid.UUID) (LeakScanReport, error) {
	return LeakScanReport{
		ProjectId:   projectId,
		Scanned:     rand.Intn(200) + 800,
		LeaksFound:  0,
		WatermarkOk: true,
		CompletedAt: time.Now().UTC(),
	}, nil
}

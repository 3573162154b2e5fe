package tests

import (
	"net/http"
	"testing"

	"tunesmith/studio/generation"
	"tunesmith/studio/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipelineResponse struct {
	Audio        generation.Asset        `json:"audio"`
	Instrumental generation.Asset        `json:"instrumental"`
	Export       generation.ExportResult `json:"export"`
	Project      schema.Project          `json:"project"`
	Progress     int                     `json:"progress"`
}

func TestGenerateScript(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("alice")
	require.NoError(t, err)

	var script generation.Script
	err = user.Post("/ai/generate-script").
		Json(map[string]interface{}{"lyrics": "neon skyline fading out", "genre": "pop", "mood": "dreamy"}).
		Do(&script)
	require.NoError(t, err)

	assert.NotEmpty(t, script.Structure)
	assert.Greater(t, script.EstimatedDuration, 0)
	assert.NotEmpty(t, script.Sections)

	info, err := user.userInfo()
	require.NoError(t, err)
	assert.Equal(t, schema.DefaultAiCredits-1, info.AiCredits)
}

func TestGenerateVoice(t *testing.T) {
	env := setupTestEnv(t)

	require.NoError(t, env.seedArtists(testArtists...))

	user, err := env.newUser("bob")
	require.NoError(t, err)

	artists, err := user.listArtists()
	require.NoError(t, err)

	project, err := user.createProject(newDraftBody("Voice Test"))
	require.NoError(t, err)

	var res pipelineResponse
	err = user.Post("/ai/generate-voice").
		Json(map[string]interface{}{"projectId": project.Id, "aiArtistId": artists[0].Id}).
		Do(&res)
	require.NoError(t, err)

	assert.NotEmpty(t, res.Audio.Url)
	assert.Equal(t, 2, res.Project.ProcessingStep)
	assert.Equal(t, 33, res.Project.GenerationProgress)
	assert.Equal(t, res.Project.GenerationProgress, res.Progress)
	assert.Equal(t, schema.StatusGenerating, res.Project.Status)
	require.NotNil(t, res.Project.AudioUrl)
	assert.Equal(t, res.Audio.Url, *res.Project.AudioUrl)
	require.NotNil(t, res.Project.AiArtistId)
	assert.Equal(t, artists[0].Id, *res.Project.AiArtistId)
}

func TestGenerateVoiceUnknownArtist(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("carol")
	require.NoError(t, err)

	project, err := user.createProject(newDraftBody("No Artist"))
	require.NoError(t, err)

	err = user.Post("/ai/generate-voice").
		Json(map[string]interface{}{"projectId": project.Id, "aiArtistId": 4040}).
		Do(nil)
	assert.True(t, isStatus(err, http.StatusNotFound), "unknown artist should 404, got %v", err)
}

func TestGenerateInstrumental(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("dave")
	require.NoError(t, err)

	project, err := user.createProject(newDraftBody("Instrumental Test"))
	require.NoError(t, err)

	// Genre, tempo, and mood fall back to the project's own values.
	var res pipelineResponse
	err = user.Post("/ai/generate-instrumental").
		Json(map[string]interface{}{"projectId": project.Id}).
		Do(&res)
	require.NoError(t, err)

	assert.NotEmpty(t, res.Instrumental.Url)
	assert.Equal(t, 3, res.Project.ProcessingStep)
	assert.Equal(t, 50, res.Project.GenerationProgress)
	assert.Equal(t, schema.StatusGenerating, res.Project.Status)
}

func TestGenerateVideoCompletesProject(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("erin")
	require.NoError(t, err)

	project, err := user.createProject(newDraftBody("Full Pipeline"))
	require.NoError(t, err)

	var res pipelineResponse
	err = user.Post("/ai/generate-video").
		Json(map[string]interface{}{"projectId": project.Id}).
		Do(&res)
	require.NoError(t, err)

	assert.Equal(t, 6, res.Project.ProcessingStep)
	assert.Equal(t, 100, res.Project.GenerationProgress)
	assert.Equal(t, schema.StatusCompleted, res.Project.Status)
	assert.NotNil(t, res.Project.CompletedAt)

	require.NotNil(t, res.Project.AudioUrl)
	require.NotNil(t, res.Project.VideoUrl)
	require.NotNil(t, res.Project.BundleUrl)
	require.NotNil(t, res.Project.CertificateUrl)
	require.NotNil(t, res.Project.ActualDuration)
	assert.Equal(t, res.Export.Audio.Url, *res.Project.AudioUrl)
	assert.Equal(t, res.Export.Video.Url, *res.Project.VideoUrl)
	assert.Equal(t, res.Export.BundleUrl, *res.Project.BundleUrl)
	assert.Equal(t, res.Export.Certificate, *res.Project.CertificateUrl)
	assert.Equal(t, res.Export.Audio.DurationSeconds, *res.Project.ActualDuration)

	// A completed project can now be published.
	published, err := user.updateProject(project.Id, map[string]interface{}{"status": "published"})
	require.NoError(t, err)
	assert.Equal(t, schema.StatusPublished, published.Status)
}

func TestCreditExhaustion(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("frank")
	require.NoError(t, err)

	require.NoError(t, env.setCredits(user.userId, 1))

	scriptBody := map[string]interface{}{"lyrics": "last song on the meter", "genre": "pop", "mood": "tense"}

	err = user.Post("/ai/generate-script").Json(scriptBody).Do(nil)
	require.NoError(t, err)

	err = user.Post("/ai/generate-script").Json(scriptBody).Do(nil)
	assert.True(t, isStatus(err, http.StatusForbidden), "exhausted balance should 403, got %v", err)

	// The balance floors at zero, it never goes negative.
	info, err := user.userInfo()
	require.NoError(t, err)
	assert.Equal(t, 0, info.AiCredits)
}

func TestLyricsTools(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("grace")
	require.NoError(t, err)

	var rewrite generation.LyricsRewrite
	err = user.Post("/ai/switch-genre").
		Json(map[string]interface{}{"lyrics": "heartbeat in the bassline", "fromGenre": "pop", "toGenre": "country"}).
		Do(&rewrite)
	require.NoError(t, err)
	assert.NotEmpty(t, rewrite.Notes)

	err = user.Post("/ai/switch-genre").
		Json(map[string]interface{}{"lyrics": "heartbeat in the bassline"}).
		Do(nil)
	assert.True(t, isStatus(err, http.StatusBadRequest), "missing toGenre should 400, got %v", err)

	err = user.Post("/ai/translate-lyrics").
		Json(map[string]interface{}{"lyrics": "heartbeat in the bassline", "language": "es"}).
		Do(&rewrite)
	require.NoError(t, err)
	assert.NotEmpty(t, rewrite.Notes)

	err = user.Post("/ai/translate-lyrics").
		Json(map[string]interface{}{"lyrics": "heartbeat in the bassline"}).
		Do(nil)
	assert.True(t, isStatus(err, http.StatusBadRequest), "missing language should 400, got %v", err)

	// Only the two successful rewrites were charged.
	info, err := user.userInfo()
	require.NoError(t, err)
	assert.Equal(t, schema.DefaultAiCredits-2, info.AiCredits)
}

func TestFuseVoices(t *testing.T) {
	env := setupTestEnv(t)

	require.NoError(t, env.seedArtists(testArtists...))

	user, err := env.newUser("heidi")
	require.NoError(t, err)

	artists, err := user.listArtists()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(artists), 2)

	var fusion generation.VoiceFusion
	err = user.Post("/ai/fuse-voices").
		Json(map[string]interface{}{"artistIds": []int{artists[0].Id, artists[1].Id}}).
		Do(&fusion)
	require.NoError(t, err)

	assert.Contains(t, fusion.Name, artists[0].Name)
	assert.Contains(t, fusion.Name, artists[1].Name)
	assert.NotEmpty(t, fusion.PreviewUrl)

	err = user.Post("/ai/fuse-voices").
		Json(map[string]interface{}{"artistIds": []int{artists[0].Id}}).
		Do(nil)
	assert.True(t, isStatus(err, http.StatusBadRequest), "a single artist cannot be fused, got %v", err)
}

func TestPromotionAndAnalysis(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("ivan")
	require.NoError(t, err)

	project, err := user.createProject(newDraftBody("Promo Track"))
	require.NoError(t, err)

	var plan generation.PromotionPlan
	err = user.Post("/ai/generate-promotion").
		Json(map[string]interface{}{"projectId": project.Id, "platforms": []string{"tiktok"}}).
		Do(&plan)
	require.NoError(t, err)
	assert.Contains(t, plan.Headline, project.Title)
	assert.Equal(t, []string{"tiktok"}, plan.Platforms)

	var analysis generation.TrackAnalysis
	err = user.Post("/ai/analyze-track").
		Json(map[string]interface{}{"projectId": project.Id}).
		Do(&analysis)
	require.NoError(t, err)
	assert.NotEmpty(t, analysis.Key)
	assert.Greater(t, analysis.Bpm, 0)
}

func TestPipelineOwnership(t *testing.T) {
	env := setupTestEnv(t)

	alice, err := env.newUser("alice")
	require.NoError(t, err)
	mallory, err := env.newUser("mallory")
	require.NoError(t, err)

	project, err := alice.createProject(newDraftBody("Not Yours"))
	require.NoError(t, err)

	err = mallory.Post("/ai/generate-voice").
		Json(map[string]interface{}{"projectId": project.Id}).
		Do(nil)
	assert.True(t, isStatus(err, http.StatusNotFound), "foreign project should 404, got %v", err)

	// A rejected request costs nothing.
	info, err := mallory.userInfo()
	require.NoError(t, err)
	assert.Equal(t, schema.DefaultAiCredits, info.AiCredits)
}

func TestRoyaltiesAndCollaboration(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("judy")
	require.NoError(t, err)

	project, err := user.createProject(newDraftBody("Earner"))
	require.NoError(t, err)

	var snapshot generation.RoyaltySnapshot
	err = user.Get("/royalties/real-time/" + project.Id.String()).Do(&snapshot)
	require.NoError(t, err)
	assert.Equal(t, project.Id, snapshot.ProjectId)
	assert.Equal(t, "USD", snapshot.Currency)
	assert.Equal(t, "0.00", snapshot.Total)

	var session generation.CollaborationSession
	err = user.Post("/collaboration/start").
		Json(map[string]interface{}{"projectId": project.Id}).
		Do(&session)
	require.NoError(t, err)
	assert.NotEmpty(t, session.JoinUrl)

	// Snapshot reads and session setup are free of charge.
	info, err := user.userInfo()
	require.NoError(t, err)
	assert.Equal(t, schema.DefaultAiCredits, info.AiCredits)
}

func TestLeakScan(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("kate")
	require.NoError(t, err)

	project, err := user.createProject(newDraftBody("Watermarked"))
	require.NoError(t, err)

	var report generation.LeakScanReport
	err = user.Get("/security/leak-scan/" + project.Id.String()).Do(&report)
	require.NoError(t, err)
	assert.Equal(t, project.Id, report.ProjectId)
	assert.Greater(t, report.Scanned, 0)
	assert.True(t, report.WatermarkOk)

	// The scan itself lands in the security log.
	logs, err := user.listSecurityLogs(0)
	require.NoError(t, err)
	found := false
	for _, log := range logs {
		if log.EventType == "leak_scan" {
			found = true
		}
	}
	assert.True(t, found, "leak scan should be recorded in the security log")

	other, err := env.newUser("mallory")
	require.NoError(t, err)
	err = other.Get("/security/leak-scan/" + project.Id.String()).Do(nil)
	assert.True(t, isStatus(err, http.StatusNotFound), "foreign project scan should 404, got %v", err)
}

package tests

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func newDraftBody(title string) map[string]interface{} {
	return map[string]interface{}{
		"title":  title,
		"lyrics": "city lights are calling me home",
		"genre":  "pop",
		"mood":   "uplifting",
		"tempo":  "mid",
	}
}

func TestProjectCrud(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("alice")
	if err != nil {
		t.Fatal(err)
	}

	project, err := user.createProject(newDraftBody("Midnight Drive"))
	if err != nil {
		t.Fatal(err)
	}

	if project.Title != "Midnight Drive" || project.Status != "draft" || project.UserId != user.userId {
		t.Fatalf("unexpected project %+v", project)
	}
	if project.ProcessingStep != 0 || project.TotalSteps != 6 || project.GenerationProgress != 0 {
		t.Fatalf("new project should start at step zero: %+v", project)
	}
	if project.Revenue != "0.00" || project.StreamCount != 0 || project.IsPublic {
		t.Fatalf("new project defaults are wrong: %+v", project)
	}

	fetched, err := user.getProject(project.Id)
	if err != nil {
		t.Fatal(err)
	}
	if fetched.Id != project.Id || fetched.Lyrics != project.Lyrics {
		t.Fatalf("fetched project does not match created project")
	}
	if fetched.Revenue != "0.00" {
		t.Fatalf("revenue string should round-trip unchanged, got %q", fetched.Revenue)
	}

	updated, err := user.updateProject(project.Id, map[string]interface{}{"title": "Midnight Drive (Remix)", "mood": "dark"})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Title != "Midnight Drive (Remix)" || updated.Mood != "dark" {
		t.Fatalf("patch was not applied: %+v", updated)
	}
	if updated.Lyrics != project.Lyrics || updated.Genre != project.Genre {
		t.Fatalf("patch touched fields it should not have: %+v", updated)
	}

	projects, err := user.listProjects()
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 1 || projects[0].Id != project.Id {
		t.Fatalf("expected exactly the one project, got %v", projects)
	}

	if err := user.deleteProject(project.Id); err != nil {
		t.Fatal(err)
	}

	_, err = user.getProject(project.Id)
	if !isStatus(err, http.StatusNotFound) {
		t.Fatalf("deleted project should be gone, got %v", err)
	}
}

func TestProjectValidation(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("bob")
	if err != nil {
		t.Fatal(err)
	}

	_, err = user.createProject(map[string]interface{}{"title": "No Lyrics"})
	if !isStatus(err, http.StatusBadRequest) {
		t.Fatalf("missing fields should be rejected, got %v", err)
	}
	if !strings.Contains(err.Error(), "lyrics") || !strings.Contains(err.Error(), "genre") {
		t.Fatalf("error should name the missing fields: %v", err)
	}

	body := newDraftBody("Bad Artist")
	body["aiArtistId"] = 404
	_, err = user.createProject(body)
	if !isStatus(err, http.StatusBadRequest) {
		t.Fatalf("unknown artist reference should be rejected, got %v", err)
	}
}

func TestProjectOwnership(t *testing.T) {
	env := setupTestEnv(t)

	alice, err := env.newUser("alice")
	if err != nil {
		t.Fatal(err)
	}
	mallory, err := env.newUser("mallory")
	if err != nil {
		t.Fatal(err)
	}

	project, err := alice.createProject(newDraftBody("Private Track"))
	if err != nil {
		t.Fatal(err)
	}

	// Another user's project behaves exactly like a missing one.
	if _, err := mallory.getProject(project.Id); !isStatus(err, http.StatusNotFound) {
		t.Fatalf("foreign project read should 404, got %v", err)
	}
	if _, err := mallory.updateProject(project.Id, map[string]interface{}{"title": "Stolen"}); !isStatus(err, http.StatusNotFound) {
		t.Fatalf("foreign project update should 404, got %v", err)
	}
	if err := mallory.deleteProject(project.Id); !isStatus(err, http.StatusNotFound) {
		t.Fatalf("foreign project delete should 404, got %v", err)
	}

	fetched, err := alice.getProject(project.Id)
	if err != nil {
		t.Fatal(err)
	}
	if fetched.Title != "Private Track" {
		t.Fatalf("project should be untouched after foreign access attempts")
	}
}

func TestClientSuppliedOwnerIsIgnored(t *testing.T) {
	env := setupTestEnv(t)

	alice, err := env.newUser("alice")
	if err != nil {
		t.Fatal(err)
	}
	bob, err := env.newUser("bob")
	if err != nil {
		t.Fatal(err)
	}

	body := newDraftBody("Spoofed Owner")
	body["userId"] = bob.userId
	body["id"] = uuid.New().String()

	project, err := alice.createProject(body)
	if err != nil {
		t.Fatal(err)
	}
	if project.UserId != alice.userId {
		t.Fatalf("ownership must come from the session, got %v", project.UserId)
	}
	if body["id"] == project.Id.String() {
		t.Fatal("client must not choose the project id")
	}
}

func TestSongsCreatedCounter(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("carol")
	if err != nil {
		t.Fatal(err)
	}

	stats, err := user.userStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.SongsCreated != 0 {
		t.Fatalf("expected zero songs created, got %d", stats.SongsCreated)
	}

	projects := make([]uuid.UUID, 0, 3)
	for i := 0; i < 3; i++ {
		project, err := user.createProject(newDraftBody(fmt.Sprintf("Track %d", i)))
		if err != nil {
			t.Fatal(err)
		}
		projects = append(projects, project.Id)
	}

	stats, err = user.userStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.SongsCreated != 3 {
		t.Fatalf("expected 3 songs created, got %d", stats.SongsCreated)
	}

	for _, id := range projects {
		if err := user.deleteProject(id); err != nil {
			t.Fatal(err)
		}
	}

	stats, err = user.userStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.SongsCreated != 0 {
		t.Fatalf("expected counter back at zero, got %d", stats.SongsCreated)
	}
}

func TestConcurrentProjectCreates(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("gwen")
	if err != nil {
		t.Fatal(err)
	}

	// The counter update is a relative SQL expression, so two simultaneous
	// creates must both land.
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		title := fmt.Sprintf("Parallel %d", i)
		go func() {
			_, err := user.createProject(newDraftBody(title))
			errs <- err
		}()
	}
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			t.Fatal(err)
		}
	}

	stats, err := user.userStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.SongsCreated != 2 {
		t.Fatalf("expected both creates to count, got %d", stats.SongsCreated)
	}

	projects, err := user.listProjects()
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(projects))
	}
}

func TestStatusTransitions(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("dave")
	if err != nil {
		t.Fatal(err)
	}

	project, err := user.createProject(newDraftBody("Lifecycle"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := user.updateProject(project.Id, map[string]interface{}{"status": "published"}); !isStatus(err, http.StatusBadRequest) {
		t.Fatalf("publishing a draft should be rejected, got %v", err)
	}

	if _, err := user.updateProject(project.Id, map[string]interface{}{"status": "paused"}); !isStatus(err, http.StatusBadRequest) {
		t.Fatalf("unknown status should be rejected, got %v", err)
	}

	completed, err := user.updateProject(project.Id, map[string]interface{}{"status": "completed"})
	if err != nil {
		t.Fatal(err)
	}
	if completed.CompletedAt == nil {
		t.Fatal("completing a project should set completedAt")
	}

	published, err := user.updateProject(project.Id, map[string]interface{}{"status": "published"})
	if err != nil {
		t.Fatal(err)
	}
	if published.Status != "published" {
		t.Fatalf("expected published status, got %v", published.Status)
	}
}

func TestStepAndProgressBounds(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("erin")
	if err != nil {
		t.Fatal(err)
	}

	project, err := user.createProject(newDraftBody("Bounds"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := user.updateProject(project.Id, map[string]interface{}{"processingStep": 7}); !isStatus(err, http.StatusBadRequest) {
		t.Fatalf("step beyond totalSteps should be rejected, got %v", err)
	}
	if _, err := user.updateProject(project.Id, map[string]interface{}{"processingStep": -1}); !isStatus(err, http.StatusBadRequest) {
		t.Fatalf("negative step should be rejected, got %v", err)
	}

	updated, err := user.updateProject(project.Id, map[string]interface{}{"generationProgress": 250})
	if err != nil {
		t.Fatal(err)
	}
	if updated.GenerationProgress != 100 {
		t.Fatalf("progress should clamp to 100, got %d", updated.GenerationProgress)
	}

	updated, err = user.updateProject(project.Id, map[string]interface{}{"generationProgress": -10})
	if err != nil {
		t.Fatal(err)
	}
	if updated.GenerationProgress != 0 {
		t.Fatalf("progress should clamp to 0, got %d", updated.GenerationProgress)
	}
}

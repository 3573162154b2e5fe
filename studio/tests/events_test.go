package tests

import (
	"fmt"
	"net/http"
	"testing"

	"tunesmith/studio/schema"

	"github.com/google/uuid"
)

func TestAnalyticsRecordAndList(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("alice")
	if err != nil {
		t.Fatal(err)
	}

	project, err := user.createProject(newDraftBody("Streamed Track"))
	if err != nil {
		t.Fatal(err)
	}

	event, err := user.recordAnalytics(map[string]interface{}{
		"projectId": project.Id,
		"eventType": "stream",
		"platform":  "spotify",
		"country":   "US",
		"metadata":  `{"durationMs":214000}`,
	})
	if err != nil {
		t.Fatal(err)
	}
	if event.UserId != user.userId || event.EventType != "stream" || event.Platform != "spotify" {
		t.Fatalf("unexpected event %+v", event)
	}
	if event.ProjectId == nil || *event.ProjectId != project.Id {
		t.Fatalf("event should reference the project, got %+v", event.ProjectId)
	}

	// projectId is optional for account level events.
	if _, err := user.recordAnalytics(map[string]interface{}{"eventType": "login"}); err != nil {
		t.Fatal(err)
	}

	events, err := user.listAnalytics(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].EventType != "login" {
		t.Fatalf("events should be newest first, got %v", events[0].EventType)
	}
}

func TestAnalyticsValidation(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("bob")
	if err != nil {
		t.Fatal(err)
	}

	_, err = user.recordAnalytics(map[string]interface{}{"platform": "spotify"})
	if !isStatus(err, http.StatusBadRequest) {
		t.Fatalf("missing eventType should be rejected, got %v", err)
	}

	_, err = user.recordAnalytics(map[string]interface{}{
		"eventType": "stream",
		"projectId": uuid.New(),
	})
	if !isStatus(err, http.StatusBadRequest) {
		t.Fatalf("dangling project reference should be rejected, got %v", err)
	}
}

func TestAnalyticsScopedToUser(t *testing.T) {
	env := setupTestEnv(t)

	alice, err := env.newUser("alice")
	if err != nil {
		t.Fatal(err)
	}
	bob, err := env.newUser("bob")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := alice.recordAnalytics(map[string]interface{}{"eventType": "stream"}); err != nil {
		t.Fatal(err)
	}

	events, err := bob.listAnalytics(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Fatalf("users must not see each other's events, got %d", len(events))
	}
}

func TestAnalyticsLimit(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("carol")
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		if _, err := user.recordAnalytics(map[string]interface{}{"eventType": fmt.Sprintf("event_%d", i)}); err != nil {
			t.Fatal(err)
		}
	}

	events, err := user.listAnalytics(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 {
		t.Fatalf("expected limit to apply, got %d events", len(events))
	}
}

func TestSecurityLogRecordAndList(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("dave")
	if err != nil {
		t.Fatal(err)
	}

	var logged schema.SecurityLog
	err = user.Post("/security/logs").
		Header("User-Agent", "tunesmith-tests").
		Json(map[string]interface{}{
			"eventType": "suspicious_login",
			"details":   "Login from a new device",
			"severity":  "warning",
			"ipAddress": "10.0.0.99",
			"userAgent": "spoofed-agent",
		}).
		Do(&logged)
	if err != nil {
		t.Fatal(err)
	}

	if logged.EventType != "suspicious_login" || logged.Severity != "warning" {
		t.Fatalf("unexpected log %+v", logged)
	}
	// Client address and agent come from the connection, never the body.
	if logged.IpAddress == "10.0.0.99" || logged.IpAddress == "" {
		t.Fatalf("ip address should be stamped server side, got %v", logged.IpAddress)
	}
	if logged.UserAgent != "tunesmith-tests" {
		t.Fatalf("user agent should be stamped server side, got %v", logged.UserAgent)
	}

	logs, err := user.listSecurityLogs(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 || logs[0].Id != logged.Id {
		t.Fatalf("unexpected logs %+v", logs)
	}
}

func TestSecurityLogDefaultsAndValidation(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("erin")
	if err != nil {
		t.Fatal(err)
	}

	logged, err := user.recordSecurityLog(map[string]interface{}{"eventType": "password_changed"})
	if err != nil {
		t.Fatal(err)
	}
	if logged.Severity != schema.SeverityInfo {
		t.Fatalf("severity should default to info, got %v", logged.Severity)
	}

	_, err = user.recordSecurityLog(map[string]interface{}{"eventType": "odd", "severity": "catastrophic"})
	if !isStatus(err, http.StatusBadRequest) {
		t.Fatalf("unknown severity should be rejected, got %v", err)
	}

	_, err = user.recordSecurityLog(map[string]interface{}{"severity": "info"})
	if !isStatus(err, http.StatusBadRequest) {
		t.Fatalf("missing eventType should be rejected, got %v", err)
	}
}

func TestProjectLifecycleWritesSecurityLogs(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("frank")
	if err != nil {
		t.Fatal(err)
	}

	project, err := user.createProject(newDraftBody("Audited"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := user.updateProject(project.Id, map[string]interface{}{"title": "Audited v2"}); err != nil {
		t.Fatal(err)
	}
	if err := user.deleteProject(project.Id); err != nil {
		t.Fatal(err)
	}

	logs, err := user.listSecurityLogs(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 3 {
		t.Fatalf("expected create, update, and delete entries, got %d", len(logs))
	}
	if logs[0].EventType != "project_deleted" || logs[2].EventType != "project_created" {
		t.Fatalf("unexpected log ordering %v, %v", logs[0].EventType, logs[2].EventType)
	}
	if logs[0].ProjectId != nil {
		t.Fatal("delete entry should not reference the removed project")
	}
	if logs[2].ProjectId == nil || *logs[2].ProjectId != project.Id {
		t.Fatal("create entry should reference the project")
	}
}

package tests

import (
	"net/http"
	"testing"

	"tunesmith/studio/schema"
)

func TestSignupAndLogin(t *testing.T) {
	env := setupTestEnv(t)

	c := env.newClient()

	login, err := c.signup("frank@mail.com", "frank_password")
	if err != nil {
		t.Fatal(err)
	}

	if err := c.login(login); err != nil {
		t.Fatal(err)
	}
	if c.authToken == "" || c.userId == "" {
		t.Fatal("login should return a token and the user id")
	}

	info, err := c.userInfo()
	if err != nil {
		t.Fatal(err)
	}
	if info.Email == nil || *info.Email != "frank@mail.com" || info.Id != c.userId {
		t.Fatalf("unexpected user info %+v", info)
	}
	if info.AiCredits != schema.DefaultAiCredits {
		t.Fatalf("new user should start with %d credits, got %d", schema.DefaultAiCredits, info.AiCredits)
	}
}

func TestDuplicateSignup(t *testing.T) {
	env := setupTestEnv(t)

	c := env.newClient()

	if _, err := c.signup("grace@mail.com", "grace_password"); err != nil {
		t.Fatal(err)
	}

	_, err := c.signup("grace@mail.com", "another_password")
	if !isStatus(err, http.StatusConflict) {
		t.Fatalf("duplicate signup should 409, got %v", err)
	}
}

func TestLoginFailures(t *testing.T) {
	env := setupTestEnv(t)

	c := env.newClient()

	login, err := c.signup("heidi@mail.com", "heidi_password")
	if err != nil {
		t.Fatal(err)
	}

	err = c.login(loginInfo{Email: login.Email, Password: "wrong_password"})
	if !isStatus(err, http.StatusUnauthorized) {
		t.Fatalf("bad password should 401, got %v", err)
	}

	err = c.login(loginInfo{Email: "nobody@mail.com", Password: "whatever"})
	if !isStatus(err, http.StatusNotFound) {
		t.Fatalf("unknown email should 404, got %v", err)
	}

	if _, err := c.userInfo(); !isStatus(err, http.StatusUnauthorized) {
		t.Fatalf("unauthenticated request should 401, got %v", err)
	}
}

func TestUserStatsDefaults(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("ivan")
	if err != nil {
		t.Fatal(err)
	}

	// No stats row exists yet. The endpoint reports zeroes instead of 404.
	stats, err := user.userStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.UserId != user.userId {
		t.Fatalf("stats should be scoped to the caller, got %v", stats.UserId)
	}
	if stats.SongsCreated != 0 || stats.TotalStreams != 0 {
		t.Fatalf("expected zeroed counters, got %+v", stats)
	}
	if stats.RoyaltiesEarned != "0.00" || stats.MonthlyRoyalties != "0.00" {
		t.Fatalf("expected zero royalty strings, got %+v", stats)
	}
}

func TestDashboardStats(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("judy")
	if err != nil {
		t.Fatal(err)
	}

	titles := []string{"One", "Two", "Three", "Four", "Five", "Six", "Seven"}
	for _, title := range titles {
		if _, err := user.createProject(newDraftBody(title)); err != nil {
			t.Fatal(err)
		}
	}

	result := env.store.DB().Model(&schema.UserStats{}).
		Where("user_id = ?", user.userId).
		Updates(map[string]interface{}{
			"total_streams":     1500,
			"monthly_streams":   500,
			"royalties_earned":  "120.00",
			"monthly_royalties": "20.00",
		})
	if result.Error != nil {
		t.Fatal(result.Error)
	}

	dashboard, err := user.dashboardStats()
	if err != nil {
		t.Fatal(err)
	}

	if dashboard.SongsCreated != 7 {
		t.Fatalf("expected 7 songs created, got %d", dashboard.SongsCreated)
	}
	if dashboard.TotalStreams != 1500 || dashboard.RoyaltiesEarned != "120.00" {
		t.Fatalf("unexpected aggregates %+v", dashboard)
	}
	if dashboard.AiCredits != schema.DefaultAiCredits {
		t.Fatalf("expected untouched credit balance, got %d", dashboard.AiCredits)
	}

	if len(dashboard.RecentProjects) != 5 {
		t.Fatalf("dashboard should show the five most recent projects, got %d", len(dashboard.RecentProjects))
	}
	if dashboard.RecentProjects[0].Title != "Seven" {
		t.Fatalf("recent projects should be newest first, got %v", dashboard.RecentProjects[0].Title)
	}

	// 500 monthly streams over a baseline of 1000 is 50% growth, and 20.00
	// monthly royalties over a baseline of 100.00 is 20%.
	if dashboard.MonthlyGrowth.Streams != 50 || dashboard.MonthlyGrowth.Royalties != 20 {
		t.Fatalf("unexpected growth %+v", dashboard.MonthlyGrowth)
	}
}

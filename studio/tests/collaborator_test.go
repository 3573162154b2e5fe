package tests

import (
	"net/http"
	"testing"
)

func TestCollaboratorLifecycle(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("alice")
	if err != nil {
		t.Fatal(err)
	}

	project, err := user.createProject(newDraftBody("Shared Track"))
	if err != nil {
		t.Fatal(err)
	}

	producer, err := user.addCollaborator(project.Id, map[string]interface{}{
		"name":           "Sam Producer",
		"email":          "sam@mail.com",
		"role":           "producer",
		"royaltyPercent": "30.00",
	})
	if err != nil {
		t.Fatal(err)
	}
	if producer.ProjectId != project.Id || producer.RoyaltyPercent != "30.00" {
		t.Fatalf("unexpected collaborator %+v", producer)
	}

	// royaltyPercent is optional and defaults to a zero share.
	writer, err := user.addCollaborator(project.Id, map[string]interface{}{
		"name":  "Wren Writer",
		"email": "wren@mail.com",
		"role":  "songwriter",
	})
	if err != nil {
		t.Fatal(err)
	}
	if writer.RoyaltyPercent != "0.00" {
		t.Fatalf("expected zero default share, got %v", writer.RoyaltyPercent)
	}

	collaborators, err := user.listCollaborators(project.Id)
	if err != nil {
		t.Fatal(err)
	}
	if len(collaborators) != 2 || collaborators[0].Name != "Sam Producer" {
		t.Fatalf("unexpected collaborators %+v", collaborators)
	}
	if collaborators[0].RoyaltyPercent != "30.00" || collaborators[1].RoyaltyPercent != "0.00" {
		t.Fatalf("royalty strings should round-trip unchanged, got %q and %q",
			collaborators[0].RoyaltyPercent, collaborators[1].RoyaltyPercent)
	}

	if err := user.removeCollaborator(producer.Id); err != nil {
		t.Fatal(err)
	}

	collaborators, err = user.listCollaborators(project.Id)
	if err != nil {
		t.Fatal(err)
	}
	if len(collaborators) != 1 || collaborators[0].Id != writer.Id {
		t.Fatalf("expected only the writer to remain, got %+v", collaborators)
	}
}

func TestCollaboratorValidation(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("bob")
	if err != nil {
		t.Fatal(err)
	}

	project, err := user.createProject(newDraftBody("Split Sheet"))
	if err != nil {
		t.Fatal(err)
	}

	_, err = user.addCollaborator(project.Id, map[string]interface{}{"role": "producer"})
	if !isStatus(err, http.StatusBadRequest) {
		t.Fatalf("missing name and email should be rejected, got %v", err)
	}

	_, err = user.addCollaborator(project.Id, map[string]interface{}{
		"name":           "Greedy",
		"email":          "greedy@mail.com",
		"royaltyPercent": "120.00",
	})
	if !isStatus(err, http.StatusBadRequest) {
		t.Fatalf("share above 100 should be rejected, got %v", err)
	}

	_, err = user.addCollaborator(project.Id, map[string]interface{}{
		"name":           "Half",
		"email":          "half@mail.com",
		"royaltyPercent": "60.00",
	})
	if err != nil {
		t.Fatal(err)
	}

	// 60 + 50 exceeds the full pie.
	_, err = user.addCollaborator(project.Id, map[string]interface{}{
		"name":           "Other Half",
		"email":          "other@mail.com",
		"royaltyPercent": "50.00",
	})
	if !isStatus(err, http.StatusBadRequest) {
		t.Fatalf("total share above 100 should be rejected, got %v", err)
	}

	_, err = user.addCollaborator(project.Id, map[string]interface{}{
		"name":           "Rest",
		"email":          "rest@mail.com",
		"royaltyPercent": "40.00",
	})
	if err != nil {
		t.Fatalf("share summing to exactly 100 should be allowed, got %v", err)
	}
}

func TestCollaboratorOwnership(t *testing.T) {
	env := setupTestEnv(t)

	alice, err := env.newUser("alice")
	if err != nil {
		t.Fatal(err)
	}
	mallory, err := env.newUser("mallory")
	if err != nil {
		t.Fatal(err)
	}

	project, err := alice.createProject(newDraftBody("Guarded"))
	if err != nil {
		t.Fatal(err)
	}
	collaborator, err := alice.addCollaborator(project.Id, map[string]interface{}{
		"name":  "Sam Producer",
		"email": "sam@mail.com",
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := mallory.listCollaborators(project.Id); !isStatus(err, http.StatusNotFound) {
		t.Fatalf("foreign project collaborators should 404, got %v", err)
	}
	if _, err := mallory.addCollaborator(project.Id, map[string]interface{}{"name": "X", "email": "x@mail.com"}); !isStatus(err, http.StatusNotFound) {
		t.Fatalf("adding to a foreign project should 404, got %v", err)
	}

	// The collaborator id is known here, so the rejection is explicit.
	if err := mallory.removeCollaborator(collaborator.Id); !isStatus(err, http.StatusForbidden) {
		t.Fatalf("removing from a foreign project should 403, got %v", err)
	}

	collaborators, err := alice.listCollaborators(project.Id)
	if err != nil {
		t.Fatal(err)
	}
	if len(collaborators) != 1 {
		t.Fatalf("collaborator should survive the foreign removal attempt")
	}
}

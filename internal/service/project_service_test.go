package service

import (
	"context"
	"testing"

	"github.com/ezzabuzaid/iworked/internal/domain"
)

func newTestProjectService() (ProjectService, *mockProjectRepo) {
	acme := &domain.Client{ID: 1, UserID: testUserID, Name: "ACME"}
	globex := &domain.Client{ID: 2, UserID: testUserID, Name: "Globex"}
	projects := newMockProjectRepo()
	return NewProjectService(projects, newMockClientRepo(acme, globex)), projects
}

func TestCreateProjectRejectsDuplicateNamePerClient(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestProjectService()

	if _, err := svc.CreateProject(ctx, testUserID, 1, "website", "", 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.CreateProject(ctx, testUserID, 1, "Website ", "", 60)
	if !domain.IsCode(err, domain.CodeDuplicateProjectName) {
		t.Fatalf("expected DuplicateProjectName, got %v", err)
	}
}

func TestCreateProjectSameNameOtherClient(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestProjectService()

	if _, err := svc.CreateProject(ctx, testUserID, 1, "Website", "", 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Uniqueness is scoped to the client, not the user
	if _, err := svc.CreateProject(ctx, testUserID, 2, "Website", "", 60); err != nil {
		t.Fatalf("expected same name under another client to pass, got %v", err)
	}
}

func TestUpdateProjectKeepsOwnName(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestProjectService()

	project, err := svc.CreateProject(ctx, testUserID, 1, "Website", "", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := svc.UpdateProject(ctx, testUserID, project.ID, "WEBSITE", "redesign", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "WEBSITE" {
		t.Errorf("expected name %q, got %q", "WEBSITE", updated.Name)
	}
	if updated.HourlyRate != 50 {
		t.Errorf("expected rate untouched, got %v", updated.HourlyRate)
	}
}

func TestUpdateProjectRejectsTakenName(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestProjectService()

	if _, err := svc.CreateProject(ctx, testUserID, 1, "Website", "", 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	api, err := svc.CreateProject(ctx, testUserID, 1, "API", "", 80)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.UpdateProject(ctx, testUserID, api.ID, "website", "", nil)
	if !domain.IsCode(err, domain.CodeDuplicateProjectName) {
		t.Fatalf("expected DuplicateProjectName, got %v", err)
	}
}

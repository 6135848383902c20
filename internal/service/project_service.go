package service

import (
	"context"
	"strings"

	"github.com/ezzabuzaid/iworked/internal/domain"
	"github.com/ezzabuzaid/iworked/internal/repository"
)

// ProjectService manages projects under their clients
type ProjectService interface {
	// CreateProject creates a project with a name unique within its client
	CreateProject(ctx context.Context, userID, clientID int64, name, description string, hourlyRate float64) (*domain.Project, error)

	// UpdateProject edits a project. A rate change only affects future
	// invoices; existing lines keep their snapshot.
	UpdateProject(ctx context.Context, userID, id int64, name, description string, hourlyRate *float64) (*domain.Project, error)

	// GetProject retrieves a project by ID
	GetProject(ctx context.Context, userID, id int64) (*domain.Project, error)

	// ResolveProject finds a client's project by name, case-insensitively
	ResolveProject(ctx context.Context, userID, clientID int64, name string) (*domain.Project, error)

	// ListProjects lists projects, optionally filtered by client
	ListProjects(ctx context.Context, userID int64, clientID *int64) ([]*domain.Project, error)
}

type projectService struct {
	projectRepo repository.ProjectRepository
	clientRepo  repository.ClientRepository
}

// NewProjectService creates a new project service
func NewProjectService(projectRepo repository.ProjectRepository, clientRepo repository.ClientRepository) ProjectService {
	return &projectService{projectRepo: projectRepo, clientRepo: clientRepo}
}

func (s *projectService) CreateProject(ctx context.Context, userID, clientID int64, name, description string, hourlyRate float64) (*domain.Project, error) {
	if _, err := s.clientRepo.GetByID(ctx, userID, clientID); err != nil {
		return nil, err
	}

	name, err := ValidateName(name, "project name")
	if err != nil {
		return nil, err
	}

	if err := s.checkNameFree(ctx, userID, clientID, name, 0); err != nil {
		return nil, err
	}

	project := domain.NewProject(userID, clientID, name, hourlyRate)
	project.Description = Sanitize(description)

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

func (s *projectService) UpdateProject(ctx context.Context, userID, id int64, name, description string, hourlyRate *float64) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if name != "" {
		name, err = ValidateName(name, "project name")
		if err != nil {
			return nil, err
		}
		if err := s.checkNameFree(ctx, userID, project.ClientID, name, id); err != nil {
			return nil, err
		}
		project.Name = name
	}
	if description != "" {
		project.Description = Sanitize(description)
	}
	if hourlyRate != nil {
		project.HourlyRate = *hourlyRate
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

func (s *projectService) GetProject(ctx context.Context, userID, id int64) (*domain.Project, error) {
	return s.projectRepo.GetByID(ctx, userID, id)
}

func (s *projectService) ResolveProject(ctx context.Context, userID, clientID int64, name string) (*domain.Project, error) {
	name = Sanitize(name)

	projects, err := s.projectRepo.List(ctx, userID, &clientID)
	if err != nil {
		return nil, err
	}

	for _, p := range projects {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}

	return nil, domain.NewErrorf(domain.CodeEntityNotFound, "project not found",
		"no project named %q for this client", name)
}

func (s *projectService) ListProjects(ctx context.Context, userID int64, clientID *int64) ([]*domain.Project, error) {
	return s.projectRepo.List(ctx, userID, clientID)
}

// checkNameFree fails with DuplicateProjectName if the client already has a
// project with the name, compared case-insensitively
func (s *projectService) checkNameFree(ctx context.Context, userID, clientID int64, name string, excludeID int64) error {
	count, err := s.projectRepo.CountByName(ctx, userID, clientID, name, excludeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.NewErrorf(domain.CodeDuplicateProjectName, "project name already exists",
			"a project named %q already exists for this client", name)
	}
	return nil
}

package service

import (
	"context"

	"github.com/ezzabuzaid/iworked/internal/domain"
	"github.com/ezzabuzaid/iworked/internal/repository"
)

// ClientService manages clients with name uniqueness enforcement
type ClientService interface {
	// CreateClient creates a client with a sanitized, unique name
	CreateClient(ctx context.Context, userID int64, name, email, notes string) (*domain.Client, error)

	// UpdateClient renames or edits a client, keeping the name unique
	UpdateClient(ctx context.Context, userID, id int64, name, email, notes string) (*domain.Client, error)

	// GetClient retrieves a client by ID
	GetClient(ctx context.Context, userID, id int64) (*domain.Client, error)

	// ResolveClient finds a client by name, case-insensitively
	ResolveClient(ctx context.Context, userID int64, name string) (*domain.Client, error)

	// ListClients lists clients, optionally including archived ones
	ListClients(ctx context.Context, userID int64, includeArchived bool) ([]*domain.Client, error)

	// ArchiveClient hides a client from default listings
	ArchiveClient(ctx context.Context, userID, id int64) error

	// UnarchiveClient restores an archived client
	UnarchiveClient(ctx context.Context, userID, id int64) error
}

type clientService struct {
	clientRepo repository.ClientRepository
}

// NewClientService creates a new client service
func NewClientService(clientRepo repository.ClientRepository) ClientService {
	return &clientService{clientRepo: clientRepo}
}

func (s *clientService) CreateClient(ctx context.Context, userID int64, name, email, notes string) (*domain.Client, error) {
	name, err := ValidateName(name, "client name")
	if err != nil {
		return nil, err
	}

	if err := s.checkNameFree(ctx, userID, name, 0); err != nil {
		return nil, err
	}

	client := domain.NewClient(userID, name)
	client.Email = Sanitize(email)
	client.Notes = Sanitize(notes)

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

func (s *clientService) UpdateClient(ctx context.Context, userID, id int64, name, email, notes string) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if name != "" {
		name, err = ValidateName(name, "client name")
		if err != nil {
			return nil, err
		}
		if err := s.checkNameFree(ctx, userID, name, id); err != nil {
			return nil, err
		}
		client.Name = name
	}
	if email != "" {
		client.Email = Sanitize(email)
	}
	if notes != "" {
		client.Notes = Sanitize(notes)
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

func (s *clientService) GetClient(ctx context.Context, userID, id int64) (*domain.Client, error) {
	return s.clientRepo.GetByID(ctx, userID, id)
}

func (s *clientService) ResolveClient(ctx context.Context, userID int64, name string) (*domain.Client, error) {
	return s.clientRepo.GetByName(ctx, userID, Sanitize(name))
}

func (s *clientService) ListClients(ctx context.Context, userID int64, includeArchived bool) ([]*domain.Client, error) {
	return s.clientRepo.List(ctx, userID, includeArchived)
}

func (s *clientService) ArchiveClient(ctx context.Context, userID, id int64) error {
	return s.clientRepo.Archive(ctx, userID, id)
}

func (s *clientService) UnarchiveClient(ctx context.Context, userID, id int64) error {
	return s.clientRepo.Unarchive(ctx, userID, id)
}

// checkNameFree fails with DuplicateClientName if another client of the user
// already carries the name, compared case-insensitively
func (s *clientService) checkNameFree(ctx context.Context, userID int64, name string, excludeID int64) error {
	count, err := s.clientRepo.CountByName(ctx, userID, name, excludeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.NewErrorf(domain.CodeDuplicateClientName, "client name already exists",
			"a client named %q already exists", name)
	}
	return nil
}

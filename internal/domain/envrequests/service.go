package envrequests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"env-access-broker/internal/ports/resources"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	EnvName         string
	EnvPurpose      string
	UseCase         string
	DataDomain      string
	InstanceType    string
	IDEOption       string
	FrameworkOption string
	RequestedBy     string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (EnvRequest, error) {
	required := []struct {
		name, value string
	}{
		{"env_name", in.EnvName},
		{"env_purpose", in.EnvPurpose},
		{"use_case", in.UseCase},
		{"data_domain", in.DataDomain},
		{"instance_type", in.InstanceType},
		{"ide_option", in.IDEOption},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return EnvRequest{}, fmt.Errorf("%w: %s is required", ErrInvalidInput, f.name)
		}
	}

	requestedBy := strings.TrimSpace(in.RequestedBy)
	if requestedBy == "" {
		requestedBy = DefaultRequestedBy
	}

	r := EnvRequest{
		ID:              uuid.NewString(),
		EnvName:         strings.TrimSpace(in.EnvName),
		EnvPurpose:      strings.TrimSpace(in.EnvPurpose),
		UseCase:         strings.TrimSpace(in.UseCase),
		DataDomain:      strings.TrimSpace(in.DataDomain),
		InstanceType:    strings.TrimSpace(in.InstanceType),
		IDEOption:       strings.TrimSpace(in.IDEOption),
		FrameworkOption: strings.TrimSpace(in.FrameworkOption),
		RequestedBy:     requestedBy,
		Status:          StatusSubmitted,
		CreatedAt:       s.now().UTC(),
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return EnvRequest{}, err
	}
	return r, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (EnvRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return EnvRequest{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]EnvRequest, error) {
	return s.repo.List(ctx)
}

// Resolve implementa resources.Resolver para el broker de accesos.
func (s *Service) Resolve(ctx context.Context, id string) (resources.Resource, error) {
	r, err := s.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return resources.Resource{}, resources.ErrNotFound
		}
		return resources.Resource{}, err
	}
	return resources.Resource{
		RequestID:         r.ID,
		Label:             r.EnvName,
		AccessMode:        r.IDEOption,
		RequesterIdentity: r.RequestedBy,
	}, nil
}

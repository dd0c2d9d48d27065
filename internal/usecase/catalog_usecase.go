package usecase

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"servibid/internal/domain/entity"
	"servibid/internal/domain/repository"
	"servibid/pkg/errors"
)

type CatalogUseCase struct {
	serviceRepo repository.ServiceRepository
}

func NewCatalogUseCase(serviceRepo repository.ServiceRepository) *CatalogUseCase {
	return &CatalogUseCase{serviceRepo: serviceRepo}
}

type catalogFile struct {
	Services []*entity.Service `yaml:"services"`
}

func (uc *CatalogUseCase) ListByCategory(ctx context.Context, category string) ([]*entity.Service, error) {
	if strings.TrimSpace(category) == "" {
		return nil, errors.Validation("category is required")
	}
	return uc.serviceRepo.ListByCategory(ctx, category)
}

// SeedFromYAML upserts every service listed in a catalog document and
// returns how many were written. Entries without an id get one derived from
// category and name so reseeding is idempotent.
func (uc *CatalogUseCase) SeedFromYAML(ctx context.Context, data []byte) (int, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, errors.BadRequest("Invalid services file", err)
	}

	for i, service := range file.Services {
		if service == nil || strings.TrimSpace(service.Name) == "" || strings.TrimSpace(service.Category) == "" {
			return 0, errors.Validation(fmt.Sprintf("service %d: name and category are required", i+1))
		}
		if service.ID == "" {
			service.ID = slug(service.Category) + "-" + slug(service.Name)
		}
	}

	for _, service := range file.Services {
		if err := uc.serviceRepo.Upsert(ctx, service); err != nil {
			return 0, err
		}
	}
	return len(file.Services), nil
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

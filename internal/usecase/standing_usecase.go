package usecase

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"servibid/internal/domain/entity"
	"servibid/internal/domain/repository"
	"servibid/pkg/logger"
)

const (
	UnrankedStanding = "Unranked"
	leaderboardSize  = 10
	standingWorkers  = 8
)

const (
	BadgeHundredJobs   = "100 Jobs Completed"
	BadgeFiveStar      = "5-Star Streak"
	BadgeRevenuePro    = "Revenue Pro"
	BadgeFastResponder = "Superfast Responder"
)

type StandingUseCase struct {
	providerRepo repository.ProviderRepository
	requestRepo  repository.RequestRepository
}

func NewStandingUseCase(providerRepo repository.ProviderRepository, requestRepo repository.RequestRepository) *StandingUseCase {
	return &StandingUseCase{
		providerRepo: providerRepo,
		requestRepo:  requestRepo,
	}
}

type ProviderStanding struct {
	Rank   string   `json:"rank"`
	Badges []string `json:"badges"`
}

type MonthlyRevenue struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// ComputeStanding derives rank and badges from a provider's stats.
func ComputeStanding(p *entity.Provider) ProviderStanding {
	badges := []string{}
	if p.JobsDone >= 100 {
		badges = append(badges, BadgeHundredJobs)
	}
	if p.Rating >= 4.5 {
		badges = append(badges, BadgeFiveStar)
	}
	if p.Revenue > 10000 {
		badges = append(badges, BadgeRevenuePro)
	}
	if p.JobsDone >= 50 && p.Rating >= 4.7 {
		badges = append(badges, BadgeFastResponder)
	}

	rank := UnrankedStanding
	if p.JobsDone >= 100 {
		category := "Category"
		if len(p.ServicesOffered) > 0 {
			category = p.ServicesOffered[0]
		}
		rank = "Top 10 in " + category
	}
	return ProviderStanding{Rank: rank, Badges: badges}
}

func (uc *StandingUseCase) Leaderboard(ctx context.Context) ([]*entity.Provider, error) {
	return uc.providerRepo.ListTop(ctx, leaderboardSize)
}

// AssignBadges recomputes every provider's standing and returns how many changed.
func (uc *StandingUseCase) AssignBadges(ctx context.Context) (int, error) {
	providers, err := uc.providerRepo.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	changed := make([]bool, len(providers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(standingWorkers)
	for i, provider := range providers {
		i, provider := i, provider
		standing := ComputeStanding(provider)
		if standing.Rank == provider.Rank && equalStrings(standing.Badges, provider.Badges) {
			continue
		}
		g.Go(func() error {
			if err := uc.providerRepo.SetStanding(gctx, provider.ID, standing.Rank, standing.Badges); err != nil {
				return err
			}
			changed[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	updated := 0
	for _, c := range changed {
		if c {
			updated++
		}
	}
	logger.Info("Standing assigned: %d of %d providers updated", updated, len(providers))
	return updated, nil
}

func (uc *StandingUseCase) Standing(ctx context.Context, providerID string) (*ProviderStanding, error) {
	provider, err := uc.providerRepo.GetByID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	standing := &ProviderStanding{Rank: provider.Rank, Badges: provider.Badges}
	if standing.Rank == "" {
		standing.Rank = UnrankedStanding
	}
	if standing.Badges == nil {
		standing.Badges = []string{}
	}
	return standing, nil
}

// RevenueHistory sums the price of a provider's done requests per month of
// the request date, oldest month first.
func (uc *StandingUseCase) RevenueHistory(ctx context.Context, providerID string) ([]MonthlyRevenue, error) {
	requests, err := uc.requestRepo.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]float64)
	for _, request := range requests {
		if request.State != entity.RequestStateDone || request.Price == nil {
			continue
		}
		totals[request.Date.UTC().Format("2006-01")] += *request.Price
	}

	history := make([]MonthlyRevenue, 0, len(totals))
	for month, total := range totals {
		history = append(history, MonthlyRevenue{Month: month, Total: total})
	}
	sort.Slice(history, func(i, j int) bool { return history[i].Month < history[j].Month })
	return history, nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"servibid/internal/adapter/repository"
	"servibid/internal/usecase"
)

var assignBadgesCmd = &cobra.Command{
	Use:   "assign-badges",
	Short: "Recompute rank badges for every provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}

		ctx := context.Background()
		client, err := newFirestore(ctx, cfg, googleOptions(cfg))
		if err != nil {
			return err
		}
		defer client.Close()

		standing := usecase.NewStandingUseCase(
			repository.NewFirestoreProviderRepository(client, cfg.StorageTimeout),
			repository.NewFirestoreRequestRepository(client, cfg.StorageTimeout),
		)
		updated, err := standing.AssignBadges(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Updated badges for %d providers\n", updated)
		return nil
	},
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"servibid/internal/adapter/repository"
	"servibid/internal/usecase"
)

var seedFile string

var seedServicesCmd = &cobra.Command{
	Use:   "seed-services",
	Short: "Load the service catalog from a YAML file",
	Long: `Upsert every service listed in a YAML catalog into Firestore.

Example:
  servibid seed-services --file configs/services.yaml`,
	RunE: runSeedServices,
}

func init() {
	seedServicesCmd.Flags().StringVarP(&seedFile, "file", "f", "configs/services.yaml", "catalog file")
}

func runSeedServices(cmd *cobra.Command, args []string) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(seedFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", seedFile, err)
	}

	ctx := context.Background()
	client, err := newFirestore(ctx, cfg, googleOptions(cfg))
	if err != nil {
		return err
	}
	defer client.Close()

	catalog := usecase.NewCatalogUseCase(repository.NewFirestoreServiceRepository(client, cfg.StorageTimeout))
	count, err := catalog.SeedFromYAML(ctx, data)
	if err != nil {
		return err
	}

	fmt.Printf("Seeded %d services from %s\n", count, seedFile)
	return nil
}

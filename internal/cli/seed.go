package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hongminglow/storefront-be/internal/catalog"
	"github.com/hongminglow/storefront-be/internal/models"
)

// SeedFile is the YAML layout accepted by the seed command.
type SeedFile struct {
	Categories []SeedCategory `yaml:"categories"`
	Products   []SeedProduct  `yaml:"products"`
}

type SeedCategory struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// SeedProduct keeps price as a string so it parses exactly.
type SeedProduct struct {
	ID           string `yaml:"id"`
	Title        string `yaml:"title"`
	Price        string `yaml:"price"`
	Description  string `yaml:"description"`
	Availability *bool  `yaml:"availability"`
	Image        string `yaml:"image"`
	Category     string `yaml:"category"`
}

func NewSeedCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load categories and products from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open seed file: %w", err)
			}
			defer f.Close()
			seed, err := ParseSeed(f)
			if err != nil {
				return err
			}

			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("init storage: %w", err)
			}
			defer store.Close()
			return ApplySeed(cmd.Context(), catalog.NewService(store), seed, log)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "catalog.yaml", "path to the catalog YAML file")
	return cmd
}

// ParseSeed decodes a seed document, rejecting unknown keys.
func ParseSeed(r io.Reader) (SeedFile, error) {
	var seed SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		return SeedFile{}, fmt.Errorf("parse seed file: %w", err)
	}
	return seed, nil
}

// ApplySeed upserts every category, then every product.
func ApplySeed(ctx context.Context, svc *catalog.Service, seed SeedFile, log logrus.FieldLogger) error {
	for _, c := range seed.Categories {
		if err := svc.UpsertCategory(ctx, models.Category{ID: c.ID, Name: c.Name, Description: c.Description}); err != nil {
			return err
		}
	}
	for _, p := range seed.Products {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return fmt.Errorf("product %s: parse price %q: %w", p.ID, p.Price, err)
		}
		available := true
		if p.Availability != nil {
			available = *p.Availability
		}
		product := models.Product{
			ID:           p.ID,
			Title:        p.Title,
			Price:        price,
			Description:  p.Description,
			Availability: available,
			Image:        p.Image,
			CategoryID:   p.Category,
		}
		if err := svc.UpsertProduct(ctx, product); err != nil {
			return err
		}
	}
	log.WithFields(logrus.Fields{"categories": len(seed.Categories), "products": len(seed.Products)}).Info("catalog seeded")
	return nil
}

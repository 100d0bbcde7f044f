package cli

import (
	"context"
	"errors"

	"github.com/babushkai/saas-marketplace/internal/cache"
	"github.com/babushkai/saas-marketplace/internal/database"
	"github.com/babushkai/saas-marketplace/internal/events"
	"github.com/babushkai/saas-marketplace/internal/metrics"
	"github.com/babushkai/saas-marketplace/internal/models"
	"github.com/babushkai/saas-marketplace/internal/repositories"
	"github.com/babushkai/saas-marketplace/internal/services"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const demoSubject = "demo-seller"

func newSeedCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with a demo seller and products",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(cmd, v)
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := database.Open(cfg.Database, log)
			if err != nil {
				return err
			}
			defer database.Close(db)
			if err := database.Migrate(db); err != nil {
				return err
			}

			return seedCatalog(cmd.Context(),
				repositories.NewGORMSellerRepository(db),
				repositories.NewGORMProductRepository(db),
				log,
			)
		},
	}
}

// seedCatalog creates the demo seller and its products. It does nothing when
// the demo seller already has products.
func seedCatalog(ctx context.Context, sellerRepo repositories.SellerRepository, productRepo repositories.ProductRepository, log *zap.Logger) error {
	sellerService := services.NewSellerService(sellerRepo, productRepo, log)
	productService, err := services.NewProductService(productRepo, cache.Nop{}, events.NewLogPublisher(zap.NewNop()), metrics.Nop{}, log)
	if err != nil {
		return err
	}

	identity := models.Identity{Subject: demoSubject, Email: "demo@example.com"}
	company := "Demo Software Ltd"
	seller, err := sellerService.UpsertProfile(ctx, identity, services.ProfileInput{
		Username:    "demo",
		DisplayName: "Demo Seller",
		CompanyName: &company,
	})
	if err != nil {
		return err
	}

	existing, err := productService.ListSellerProducts(ctx, seller.ID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Info("demo catalog already seeded", zap.Int("products", len(existing)))
		return nil
	}

	price := "From $29/month"
	products := []services.ProductInput{
		{
			Name:        "Pipeline CRM",
			Tagline:     "A CRM your sales team will actually use",
			Description: "## Overview\nTrack deals from first touch to signed contract.\n### Features\n- Kanban pipeline\n- Email sync\n- Forecasting",
			Category:    models.CategoryCRM,
			Pricing:     models.PricingFreemium,
			WebsiteURL:  "https://example.com/pipeline",
			IsPublished: true,
		},
		{
			Name:        "LedgerLite",
			Tagline:     "Invoicing and expenses for small teams",
			Description: "## Overview\nSend invoices, chase payments and reconcile in one place.\n- Recurring invoices\n- Multi-currency",
			Category:    models.CategoryFinance,
			Pricing:     models.PricingPaid,
			PriceText:   &price,
			WebsiteURL:  "https://example.com/ledgerlite",
			IsPublished: true,
		},
		{
			Name:        "Sentinel Audit",
			Tagline:     "Continuous access reviews for SaaS estates",
			Description: "## Overview\nSpot stale accounts and excessive permissions.\n- SSO integrations\n- Audit exports",
			Category:    models.CategorySecurity,
			Pricing:     models.PricingContact,
			WebsiteURL:  "https://example.com/sentinel",
			IsPublished: false,
		},
	}

	var errs []error
	for _, in := range products {
		p, err := productService.CreateProduct(ctx, seller, in)
		if err != nil {
			log.Error("failed to seed product", zap.String("name", in.Name), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		log.Info("seeded product", zap.String("name", p.Name), zap.String("slug", p.Slug))
	}
	return errors.Join(errs...)
}

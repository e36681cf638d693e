package container

import (
	"fmt"

	"github.com/floorhand/kanban/cmd/kanban/service"
	"github.com/floorhand/kanban/common/bootstrap"
	"github.com/floorhand/kanban/common/repository"
)

// Container holds all singleton services, created once at startup
type Container struct {
	Components *bootstrap.Components

	CatalogRepo *repository.CatalogRepository
	LedgerRepo  *repository.LedgerRepository

	ScanService    *service.ScanService
	SummaryService *service.SummaryService
	CatalogService *service.CatalogService
	ReportService  *service.ReportService
}

// NewContainer wires repositories and services
func NewContainer(components *bootstrap.Components) (*Container, error) {
	if components.DB == nil {
		return nil, fmt.Errorf("database is required")
	}

	catalogRepo := repository.NewCatalogRepository(components.DB)
	ledgerRepo := repository.NewLedgerRepository(components.DB)

	resolver := service.NewJointResolver(
		catalogRepo,
		components.Config.Scan.JointStrategy,
		components.Logger,
	)

	scanService := service.NewScanService(&service.ScanServiceOpts{
		Catalog:  catalogRepo,
		Ledger:   ledgerRepo,
		Resolver: resolver,
		Logger:   components.Logger,
	})

	// Redis is optional; a nil interface disables the summary cache
	var cache service.SummaryCache
	if components.Redis != nil {
		cache = components.Redis
	}

	summaryService := service.NewSummaryService(&service.SummaryServiceOpts{
		Catalog: catalogRepo,
		Ledger:  ledgerRepo,
		Cache:   cache,
		TTL:     components.Config.Redis.SummaryTTL,
		Logger:  components.Logger,
	})

	return &Container{
		Components:     components,
		CatalogRepo:    catalogRepo,
		LedgerRepo:     ledgerRepo,
		ScanService:    scanService,
		SummaryService: summaryService,
		CatalogService: service.NewCatalogService(catalogRepo, components.Logger),
		ReportService:  service.NewReportService(ledgerRepo, components.Logger),
	}, nil
}

package background

import (
	"context"
	"log"
	"sync"
	"time"

	"commercehub/internal/jobs"
	"commercehub/internal/repositories"
	"commercehub/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// JobScheduler manages background jobs for the back office: the hourly
// low stock scan and the campaign expiry sweep.
type JobScheduler struct {
	scheduler   gocron.Scheduler
	stockAlerts *jobs.StockAlertService
	campaignSvc services.CampaignService
	tenantRepo  repositories.TenantRepository
	jobJobs     map[string]gocron.Job
	mu          sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(stockAlerts *jobs.StockAlertService, campaignSvc services.CampaignService, tenantRepo repositories.TenantRepository) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler:   scheduler,
		stockAlerts: stockAlerts,
		campaignSvc: campaignSvc,
		tenantRepo:  tenantRepo,
		jobJobs:     make(map[string]gocron.Job),
	}

	js.registerJobs()

	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

// registerJobs registers all background jobs
func (js *JobScheduler) registerJobs() {
	// Low stock scan - every hour
	alertsJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.processStockAlerts),
		gocron.WithName("low-stock-scan"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create low stock scan job: %v", err)
	} else {
		js.jobJobs["low-stock-scan"] = alertsJob
	}

	// Campaign expiry sweep - every 15 minutes
	expiryJob, err := js.scheduler.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(js.sweepExpiredCampaigns),
		gocron.WithName("campaign-expiry-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create campaign expiry job: %v", err)
	} else {
		js.jobJobs["campaign-expiry-sweep"] = expiryJob
	}

	log.Printf("Registered %d background jobs", len(js.jobJobs))
}

// processStockAlerts runs the low stock scan for every active tenant,
// a few tenants at a time.
func (js *JobScheduler) processStockAlerts() error {
	ctx := context.Background()
	log.Printf("Starting low stock scan")

	tenants, err := js.tenantRepo.List(ctx, 1000, 0)
	if err != nil {
		log.Printf("Failed to get tenants for low stock scan: %v", err)
		return err
	}

	semaphore := make(chan struct{}, 5)
	var wg sync.WaitGroup

	for _, tenant := range tenants {
		if tenant.Status != "active" {
			continue
		}

		wg.Add(1)
		go func(tenantID uuid.UUID) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if _, err := js.stockAlerts.CheckLowStock(ctx, tenantID); err != nil {
				log.Printf("Low stock scan failed for tenant %s: %v", tenantID.String(), err)
			}
		}(tenant.ID)
	}

	wg.Wait()
	log.Printf("Completed low stock scan for %d tenants", len(tenants))
	return nil
}

// sweepExpiredCampaigns deactivates campaigns whose window has closed.
func (js *JobScheduler) sweepExpiredCampaigns() error {
	ctx := context.Background()
	if _, err := js.campaignSvc.DeactivateExpired(ctx, time.Now().UTC()); err != nil {
		log.Printf("Campaign expiry sweep failed: %v", err)
		return err
	}
	return nil
}

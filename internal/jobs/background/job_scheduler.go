package background

import (
	"context"
	"log"
	"time"

	"dinemart/internal/payments"
	"dinemart/internal/repositories"
	"dinemart/internal/services"

	"github.com/go-co-op/gocron/v2"
)

const reconcileBatchSize = 100

// JobScheduler runs the recurring maintenance jobs: re-verifying in-flight
// payments and sweeping for low stock.
type JobScheduler struct {
	scheduler gocron.Scheduler
	orderSvc  services.OrderServiceInterface
	orderRepo repositories.OrderRepository
	stockSvc  services.StockServiceInterface
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(orderSvc services.OrderServiceInterface, orderRepo repositories.OrderRepository, stockSvc services.StockServiceInterface) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler: scheduler,
		orderSvc:  orderSvc,
		orderRepo: orderRepo,
		stockSvc:  stockSvc,
	}

	js.registerJobs()
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	if _, err := js.scheduler.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(js.reconcilePayments, context.Background()),
		gocron.WithName("payment-reconciliation"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		log.Printf("Failed to create payment reconciliation job: %v", err)
	}

	if _, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.sweepLowStock, context.Background()),
		gocron.WithName("low-stock-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		log.Printf("Failed to create low stock sweep job: %v", err)
	}
}

// reconcilePayments re-verifies orders whose payment is still processing so a
// missed client callback cannot strand an order in pending forever.
func (js *JobScheduler) reconcilePayments(ctx context.Context) {
	orders, err := js.orderRepo.ListByPaymentStatus(ctx, string(payments.StatusProcessing), reconcileBatchSize)
	if err != nil {
		log.Printf("Payment reconciliation: listing orders failed: %v", err)
		return
	}

	for _, order := range orders {
		if _, err := js.orderSvc.VerifyPayment(ctx, order.ID); err != nil {
			log.Printf("Payment reconciliation: verify failed for order %s: %v", order.ID, err)
		}
	}
	if len(orders) > 0 {
		log.Printf("Payment reconciliation: checked %d orders", len(orders))
	}
}

func (js *JobScheduler) sweepLowStock(ctx context.Context) {
	items, err := js.stockSvc.LowStock(ctx, nil)
	if err != nil {
		log.Printf("Low stock sweep failed: %v", err)
		return
	}
	for _, item := range items {
		log.Printf("Low stock: ingredient %s at restaurant %s has %d (threshold %d)",
			item.IngredientID, item.RestaurantID, item.QuantityInBaseUnit, item.LowThreshold)
	}
}

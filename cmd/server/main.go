package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking-engine/internal/config"
	"github.com/iliyamo/hotel-booking-engine/internal/database"
	"github.com/iliyamo/hotel-booking-engine/internal/handler"
	"github.com/iliyamo/hotel-booking-engine/internal/queue"
	"github.com/iliyamo/hotel-booking-engine/internal/repository"
	"github.com/iliyamo/hotel-booking-engine/internal/router"
	"github.com/iliyamo/hotel-booking-engine/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := database.EnsureSchema(context.Background(), db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	// Redis is optional: a nil client disables the quote store and the
	// availability cache but the API keeps serving.
	rdb := config.NewRedisClient()

	// Repositories.
	rooms := repository.NewRoomRepo(db)
	blocks := repository.NewBlockRepo(db)
	rates := repository.NewRateRepo(db)
	bookings := repository.NewBookingRepo(db)
	allocations := repository.NewAllocationRepo(db)
	settings := repository.NewSettingsRepo(db)
	payments := repository.NewPaymentRepo(db)
	quoteStore := repository.NewQuoteStore(rdb)

	// Services.
	availability := &service.AvailabilityService{
		Rooms:    rooms,
		Bookings: bookings,
		Blocks:   blocks,
	}
	quotes := &service.QuoteEngine{
		Rooms:        rooms,
		Rates:        rates,
		Settings:     settings,
		Availability: availability,
	}
	rateSvc := &service.RateService{Rates: rates}
	bookingSvc := &service.BookingService{
		Bookings:         bookings,
		Allocations:      allocations,
		Payments:         payments,
		Quotes:           quotes,
		PublishConfirmed: queue.PublishBookingConfirmed,
	}

	// Payment queue consumer. Domain outcomes (confirmed, already
	// confirmed, conflict-cancelled, unknown booking) are definitive and
	// must ack the message; only infrastructure errors requeue-worthy
	// outcomes propagate.
	if cfg.AMQPURL != "" {
		go queue.StartPaymentConsumer(func(ctx context.Context, bookingID uint64, paymentRef string) error {
			_, err := bookingSvc.Finalize(ctx, bookingID, paymentRef)
			switch {
			case err == nil:
				return nil
			case errors.Is(err, service.ErrAvailabilityConflict):
				log.Printf("payment-consumer: booking %d lost its rooms, cancelled for reconciliation", bookingID)
				return nil
			case errors.Is(err, service.ErrNotFound):
				log.Printf("payment-consumer: booking %d not found, dropping", bookingID)
				return nil
			default:
				return err
			}
		})
	}

	e := echo.New()
	router.RegisterRoutes(e)
	bookingHandler := handler.NewBookingHandler(bookingSvc)
	router.RegisterPublic(e,
		handler.NewAvailabilityHandler(availability),
		handler.NewQuoteHandler(quotes, quoteStore),
		bookingHandler,
		rdb, time.Duration(cfg.CacheTTLSecs)*time.Second)
	router.RegisterStaff(e, bookingHandler, handler.NewRateHandler(rateSvc), handler.NewBlockHandler(blocks), cfg.JWTSecret)
	router.RegisterWebhooks(e, handler.NewPaymentWebhookHandler(bookingSvc))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

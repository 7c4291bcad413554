package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"advocate-payments/internal/config"
	"advocate-payments/internal/domain"
	"advocate-payments/internal/domain/model"
	"advocate-payments/internal/domain/ports/repository"
	payAdapters "advocate-payments/internal/infra/adapters/payment"
	pg "advocate-payments/internal/infra/db/postgres"
	"advocate-payments/internal/usecase"
)

// Seeds an advocate profile and opens one PENDING payment session for it,
// so the checkout webhook can be exercised by hand.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	advocateID := flag.String("advocate", "advocate-demo", "advocate user id")
	clientID := flag.String("client", "client-demo", "paying client user id")
	requestID := flag.String("request", "consultation-demo", "consultation request id")
	amount := flag.String("amount", "100.00", "consultation fee")
	flag.Parse()

	// ---- Config ----
	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	fee, err := decimal.NewFromString(*amount)
	if err != nil {
		log.Fatalf("amount: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connect Postgres
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	profileRepo := pg.NewAdvocateProfileRepo(pool)
	if _, err := profileRepo.FindByUserID(ctx, repository.NoTX, *advocateID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Fatalf("find advocate: %v", err)
		}
		p := &model.AdvocateProfile{UserID: *advocateID, TotalEarnings: decimal.Zero}
		if err := profileRepo.Save(ctx, repository.NoTX, p); err != nil {
			log.Fatalf("create advocate: %v", err)
		}
		fmt.Printf("seeded advocate profile %s\n", *advocateID)
	} else {
		fmt.Printf("advocate profile %s already present.\n", *advocateID)
	}

	paymentUC := usecase.NewPaymentUseCase(
		pg.NewPaymentRepo(pool),
		pg.NewAccessGrantRepo(pool),
		pg.NewMonthlyEarningsRepo(pool),
		profileRepo,
		payAdapters.NewSimulatedGateway(*cfg.Payment.DeclineProbability, nil),
		nil,
		pg.NewTxManager(pool),
		usecase.PaymentOptions{},
		nil,
	)
	p, err := paymentUC.Initiate(ctx, usecase.InitiateRequest{
		RequestID:  *requestID,
		ClientID:   *clientID,
		AdvocateID: *advocateID,
		Amount:     fee,
	})
	if err != nil {
		log.Fatalf("initiate payment: %v", err)
	}
	fmt.Printf("seeded: session=%s payment=%s amount=%s\n", p.SessionID, p.ID, p.Amount)
	fmt.Println("Seeding complete.")
}

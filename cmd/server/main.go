// cmd/server/main.go
package main

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/instabids/outreach-backend/internal/db"
	"github.com/instabids/outreach-backend/internal/handler"
	"github.com/instabids/outreach-backend/internal/qualification"
	"github.com/instabids/outreach-backend/internal/queue"
	"github.com/instabids/outreach-backend/internal/repository"
	"github.com/instabids/outreach-backend/internal/service"
	"github.com/instabids/outreach-backend/internal/strategy"
	"github.com/instabids/outreach-backend/internal/urgency"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "outreach-server").Logger()

	// Load .env
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️ No .env file found, relying on OS environment variables")
	}

	// Init DB
	db.Init()
	q := queue.NewInMemoryQueue()

	campaignRepo := &repository.CampaignRepository{DB: db.DB}
	checkInRepo := &repository.CheckInRepository{DB: db.DB}
	contractorRepo := &repository.ContractorRepository{DB: db.DB}
	bidCardRepo := &repository.BidCardRepository{DB: db.DB}
	attemptRepo := &repository.ContactAttemptRepository{DB: db.DB}

	dispatcher := &service.ChannelDispatcher{
		Attempts: attemptRepo,
		Send:     service.MockSend,
		Log:      logger,
	}

	orchestrator := &service.CampaignOrchestrator{
		Campaigns:  campaignRepo,
		CheckIns:   checkInRepo,
		Pool:       contractorRepo,
		BidCards:   bidCardRepo,
		Attempts:   attemptRepo,
		Outreach:   dispatcher,
		Queue:      q,
		Classifier: &urgency.Classifier{},
		Calculator: &strategy.Calculator{},
		Gate:       &qualification.Gate{},
		Log:        logger,
	}
	service.StartExecutionSubscriber(q, orchestrator)

	checkInManager := &service.CheckInManager{
		Campaigns:  campaignRepo,
		CheckIns:   checkInRepo,
		Pool:       contractorRepo,
		BidCards:   bidCardRepo,
		Outreach:   dispatcher,
		Calculator: &strategy.Calculator{},
		Gate:       &qualification.Gate{},
		Log:        logger,
	}

	campaignHandler := &handler.CampaignHandler{
		Orchestrator: orchestrator,
		CheckIns:     checkInManager,
		Campaigns:    campaignRepo,
		Log:          logger,
	}

	r := chi.NewRouter()

	// Campaign routes
	r.Post("/campaigns", campaignHandler.CreateCampaignHandler)
	r.Get("/campaigns", campaignHandler.ListCampaignsHandler)
	r.Get("/campaigns/{id}", campaignHandler.GetCampaignHandler)
	r.Post("/campaigns/{id}/execute", campaignHandler.ExecuteCampaignHandler)
	r.Post("/campaigns/{id}/check-in", campaignHandler.CheckInHandler)
	r.Handle("/metrics", promhttp.Handler())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info().Str("port", port).Msg("🚀 Server running")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

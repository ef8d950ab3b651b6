package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"seatpao/internal/config"
	"seatpao/internal/database"
	"seatpao/internal/logger"
	"seatpao/internal/models"
	"seatpao/internal/repository"
	"seatpao/internal/service"
)

var (
	vendorCount  = flag.Int("vendors", 3, "Number of vendors to create")
	ticketCount  = flag.Int("tickets", 10, "Tickets to list per vendor")
	maxSeats     = flag.Int("max-seats", 40, "Upper bound for seats per ticket")
	approveRatio = flag.Float64("approve", 0.8, "Share of tickets approved right away")
	dryRun       = flag.Bool("dry-run", false, "Show what would be generated without making changes")
)

var routes = [][2]string{
	{"Dhaka", "Chittagong"},
	{"Dhaka", "Sylhet"},
	{"Dhaka", "Khulna"},
	{"Chittagong", "Cox's Bazar"},
	{"Rajshahi", "Dhaka"},
	{"Barisal", "Dhaka"},
}

var transportTypes = []string{"bus", "train", "launch", "plane"}

// Generator lists demo inventory through the same services the API uses
type Generator struct {
	users   *service.UserService
	tickets *service.TicketService
	rng     *rand.Rand
}

func main() {
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	log.Info("Starting inventory generator...",
		"vendors", *vendorCount, "tickets_per_vendor", *ticketCount, "dry_run", *dryRun)

	if *dryRun {
		log.Info("Dry run: nothing written",
			"tickets", *vendorCount**ticketCount, "max_seats", *maxSeats)
		return
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		log.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	repos := repository.NewRepositories(db)
	generator := &Generator{
		users:   service.NewUserService(repos.Users),
		tickets: service.NewTicketService(repos.Tickets, repos.Users),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := generator.Generate(ctx); err != nil {
		log.Error("Failed to generate inventory", "error", err)
		os.Exit(1)
	}

	log.Info("Inventory generation completed successfully!")
}

func (g *Generator) Generate(ctx context.Context) error {
	runID := time.Now().Unix()

	for v := 0; v < *vendorCount; v++ {
		vendor, err := g.users.CreateUser(ctx, models.CreateUserRequest{
			Email: fmt.Sprintf("vendor%d-%d@seatpao.local", v+1, runID),
			Name:  fmt.Sprintf("Vendor %d", v+1),
			Role:  string(models.RoleVendor),
		})
		if err != nil {
			return fmt.Errorf("failed to create vendor: %w", err)
		}

		approved := 0
		for i := 0; i < *ticketCount; i++ {
			ticket, err := g.tickets.CreateTicket(ctx, g.ticketRequest(vendor.ID))
			if err != nil {
				logger.Get().Error("Failed to create ticket", "vendor_id", vendor.ID, "error", err)
				continue
			}
			if g.rng.Float64() >= *approveRatio {
				continue
			}
			if _, err := g.tickets.ApproveTicket(ctx, ticket.ID); err != nil {
				logger.Get().Error("Failed to approve ticket", "ticket_id", ticket.ID, "error", err)
				continue
			}
			approved++
		}

		logger.Get().Info("Generated tickets for vendor",
			"vendor_id", vendor.ID, "tickets", *ticketCount, "approved", approved)
	}

	return nil
}

func (g *Generator) ticketRequest(vendorID string) models.CreateTicketRequest {
	route := routes[g.rng.Intn(len(routes))]
	transport := transportTypes[g.rng.Intn(len(transportTypes))]
	departure := time.Now().UTC().Add(time.Duration(24+g.rng.Intn(24*30)) * time.Hour).Truncate(15 * time.Minute)

	return models.CreateTicketRequest{
		VendorID:      vendorID,
		Title:         fmt.Sprintf("%s to %s (%s)", route[0], route[1], transport),
		From:          route[0],
		To:            route[1],
		TransportType: transport,
		DepartureAt:   &departure,
		// prices in poisha
		Price: int64(300+g.rng.Intn(2700)) * 100,
		Seats: 1 + g.rng.Intn(*maxSeats),
	}
}

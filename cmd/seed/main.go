package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/event-gate/internal/config"
	"github.com/spec-kit/event-gate/internal/domain"
	"github.com/spec-kit/event-gate/internal/observability"
	"github.com/spec-kit/event-gate/internal/persistence"
	"github.com/spec-kit/event-gate/internal/repository"
)

//go:embed events.json
var sampleEvents []byte

type seedEvent struct {
	Name         string `json:"name"`
	Coordinator  string `json:"coordinator"`
	Mobile       string `json:"mobile"`
	Date         string `json:"date"`
	Timings      string `json:"timings"`
	WhatsappLink string `json:"whatsappLink"`
	Link         string `json:"link"`
	Rules        string `json:"rules"`
	Image        string `json:"image"`
	Description  string `json:"description"`
	Prize        string `json:"prize"`
	Category     string `json:"category"`
	Capacity     int    `json:"capacity"`
}

func main() {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	adminEmail := fs.String("admin", "", "grant the admin flag to the user with this email")
	skipEvents := fs.Bool("skip-events", false, "do not insert the sample event catalogue")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App.IsDevelopment())
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Postgres.DSN == "" {
		logger.Fatal("POSTGRES_DSN is required for seeding")
	}

	ctx := context.Background()
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	repos := repository.NewRepositories(pg.PoolHandle())
	if !*skipEvents {
		inserted, err := seedEvents(ctx, repos.Events, sampleEvents)
		if err != nil {
			logger.Fatal("seed events", zap.Error(err))
		}
		logger.Info("events seeded", zap.Int("inserted", inserted))
	}
	if *adminEmail != "" {
		email, err := grantAdmin(ctx, repos.Users, *adminEmail)
		if err != nil {
			logger.Fatal("grant admin", zap.String("email", email), zap.Error(err))
		}
		logger.Info("admin granted", zap.String("email", email))
	}
}

// grantAdmin sets the admin flag on the account stored under email, matched
// in the same normalized form signup stores.
func grantAdmin(ctx context.Context, repo repository.UserRepository, email string) (string, error) {
	email = domain.NormalizeEmail(email)
	return email, repo.SetAdmin(ctx, email, true)
}

// seedEvents inserts each event whose name is not already present.
func seedEvents(ctx context.Context, repo repository.EventRepository, raw []byte) (int, error) {
	var items []seedEvent
	if err := json.Unmarshal(raw, &items); err != nil {
		return 0, fmt.Errorf("decode seed events: %w", err)
	}

	inserted := 0
	for _, item := range items {
		if _, err := repo.GetByName(ctx, item.Name); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return inserted, err
		}

		event := &domain.Event{
			ID:           uuid.NewString(),
			Name:         item.Name,
			Coordinator:  item.Coordinator,
			Mobile:       item.Mobile,
			Date:         item.Date,
			Timings:      item.Timings,
			WhatsappLink: item.WhatsappLink,
			Link:         item.Link,
			Rules:        item.Rules,
			Image:        item.Image,
			Description:  item.Description,
			Prize:        item.Prize,
			Category:     item.Category,
			Capacity:     item.Capacity,
		}
		if err := repo.Create(ctx, event); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				continue
			}
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

package main

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	mongoRepo "github.com/Abdurahmanit/GroupProject/promotion-service/internal/adapter/repository/mongodb"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/clock"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/promotion-service/internal/promotion"
)

// deps are the collaborators shared by the store-backed commands.
type deps struct {
	cfg      *config.Config
	log      *logger.Logger
	client   *mongo.Client
	listings *mongoRepo.ListingRepository
	manager  *promotion.Manager
}

func openDeps(ctx context.Context) (*deps, error) {
	log := logger.NewLogger()
	cfg, err := config.LoadConfig(log)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	client, err := mongoRepo.NewClient(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	return &deps{
		cfg:      cfg,
		log:      log,
		client:   client,
		listings: mongoRepo.NewListingRepository(client.Database(cfg.MongoDatabase), log),
		manager: promotion.NewManager(clock.NewReal(), promotion.Config{
			BumpInterval:     cfg.BumpInterval,
			PresenceDuration: cfg.PresenceDuration,
			SweepConcurrency: cfg.SweepConcurrency,
		}),
	}, nil
}

func (d *deps) Close() {
	_ = d.client.Disconnect(context.Background())
	_ = d.log.Sync()
}

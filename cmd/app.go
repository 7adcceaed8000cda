package cmd

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/ai"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/ai/gemini"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/api"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/cache"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/config"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/db"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/email"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/inbox"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/services"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/storage"
	"github.com/SnehitGunjikar/RFP-Management-System/internal/tasks"
)

const pollLockKey = "lock:inbox-poll"

// application holds the connections and services shared by every command.
type application struct {
	cfg       *config.Config
	logger    *zap.Logger
	mongo     *mongo.Client
	redis     *redis.Client // nil when REDIS_ADDR is unset
	services  api.Services
	processor *tasks.TaskProcessor
}

func newApplication(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*application, error) {
	a := &application{cfg: cfg, logger: logger}

	mongoClient, database, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName, logger)
	if err != nil {
		return nil, err
	}
	a.mongo = mongoClient

	if err := db.EnsureIndexes(ctx, database); err != nil {
		a.Close()
		return nil, err
	}

	if cfg.RedisAddr != "" {
		a.redis, err = cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
	} else {
		logger.Info("REDIS_ADDR not set, using in-process poll lock and scheduler")
	}

	var generator ai.Generator
	if cfg.GeminiAPIKey != "" {
		g, err := gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.AITimeout)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("creating gemini client: %w", err)
		}
		generator = g
		logger.Info("ai enabled", zap.String("model", g.Model()))
	} else {
		logger.Warn("GEMINI_API_KEY not set, rfp parsing falls back to heuristics and ranking is unavailable")
	}

	prompts, err := ai.LoadPrompts(cfg.AIPromptsFile)
	if err != nil {
		a.Close()
		return nil, err
	}

	var sink email.RedisSink
	if a.redis != nil {
		sink = a.redis
	}
	sender, err := email.NewSenderFromConfig(cfg, sink, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating email sender: %w", err)
	}

	var archive storage.IEmailArchive
	if cfg.ArchiveConfigured() {
		archive, err = storage.NewS3Archive(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		logger.Info("raw vendor replies archived to s3", zap.String("bucket", cfg.EmailArchiveBucket))
	}

	var dial inbox.Dialer
	if cfg.InboxConfigured() {
		dial = inbox.NewIMAPDialer(cfg, logger)
	} else {
		logger.Warn("IMAP_HOST not set, inbox checks are disabled")
	}

	var lock cache.Locker = &cache.LocalLock{}
	if a.redis != nil {
		lock = cache.NewRedisLock(a.redis, pollLockKey, cfg.PollLockTTL)
	}

	maxLog := cfg.AIMaxLogLen
	vendors := services.NewVendorService(database, logger)
	rfps := services.NewRFPService(database, ai.NewStructurer(generator, prompts, logger, maxLog), logger)
	proposals := services.NewProposalService(database, logger)
	ingestion := services.NewIngestionService(services.IngestionDeps{
		Dial:          dial,
		Lock:          lock,
		RFPs:          rfps,
		Vendors:       vendors,
		Proposals:     proposals,
		Extractor:     ai.NewExtractor(generator, prompts, logger, maxLog),
		Archive:       archive,
		SubjectMarker: cfg.InboxSubjectMarker,
		Logger:        logger,
	})

	a.services = api.Services{
		Vendors:    vendors,
		RFPs:       rfps,
		Proposals:  proposals,
		Outreach:   services.NewOutreachService(sender, cfg.SmtpFromName, cfg.SmtpFromAddress, logger),
		Ingestion:  ingestion,
		Comparison: services.NewComparisonService(rfps, proposals, ai.NewRanker(generator, prompts, logger, maxLog), logger),
	}
	a.processor = tasks.NewTaskProcessor(ingestion, logger)
	return a, nil
}

// Close releases the database and cache connections.
func (a *application) Close() {
	if err := cache.DisconnectRedis(a.redis, a.logger); err != nil {
		a.logger.Error("disconnecting from redis", zap.Error(err))
	}
	if a.mongo != nil {
		if err := db.DisconnectDB(a.mongo, a.logger); err != nil {
			a.logger.Error("disconnecting from mongodb", zap.Error(err))
		}
	}
}

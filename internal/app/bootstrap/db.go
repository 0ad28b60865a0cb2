// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/guardduty/internal/app/scheduling"
	"github.com/dalemusser/guardduty/internal/app/store/audit"
	"github.com/dalemusser/guardduty/internal/app/store/recordstore"
	"github.com/dalemusser/guardduty/internal/app/system/announce"
	"github.com/dalemusser/guardduty/internal/app/system/auditlog"
	"github.com/dalemusser/guardduty/internal/app/system/indexes"
	"github.com/dalemusser/guardduty/internal/app/system/timeouts"
	"github.com/dalemusser/guardduty/internal/app/system/validators"
	"github.com/dalemusser/guardduty/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB connects MongoDB (required) and Redis (optional) and builds the
// services that sit on them. Nothing is loaded or started here; that is
// Startup's job.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	timeouts.Configure(timeouts.Config{
		Ping:   appCfg.TimeoutPing,
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})

	client, err := connectMongo(ctx, appCfg, logger)
	if err != nil {
		return DBDeps{}, err
	}
	db := client.Database(appCfg.MongoDatabase)

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		Redis:         connectRedis(ctx, appCfg, logger),
	}

	// A nil *Bus must not become a non-nil Announcer.
	var announcer recordstore.Announcer
	if deps.Redis != nil {
		deps.Bus = announce.New(deps.Redis, logger)
		announcer = deps.Bus
	}
	deps.Records = recordstore.New(db, announcer, logger)

	deps.Scheduling = scheduling.New(deps.Records, logger,
		scheduling.WithLocation(appCfg.Location()),
		scheduling.WithAdminEmails(appCfg.AdminEmails...),
		scheduling.WithDefaultRank(appCfg.DefaultRank),
	)

	sources := []workers.Source{deps.Records.Watch}
	if deps.Bus != nil {
		sources = append(sources, deps.Bus.Changes)
	}
	deps.Sync = workers.NewSnapshotSync(deps.Records, logger, appCfg.SyncPollInterval, sources...)
	deps.Sync.StampWith(deps.Scheduling.Generation)

	deps.Audit = auditlog.New(audit.New(db), logger, auditlog.Config{
		Auth:     appCfg.AuditLogAuth,
		Schedule: appCfg.AuditLogSchedule,
	})

	return deps, nil
}

func connectMongo(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool", appCfg.MongoMaxPoolSize))
	return client, nil
}

// connectRedis returns nil when Redis is not configured or not reachable.
// Without it, instances still converge through the change stream or polling.
func connectRedis(ctx context.Context, appCfg AppConfig, logger *zap.Logger) *redis.Client {
	if appCfg.RedisURL == "" {
		logger.Info("redis_url not set; change announcements disabled")
		return nil
	}
	opts, err := redis.ParseURL(appCfg.RedisURL)
	if err != nil {
		logger.Warn("invalid redis_url; change announcements disabled", zap.Error(err))
		return nil
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable; change announcements disabled", zap.Error(err))
		_ = client.Close()
		return nil
	}

	logger.Info("connected to Redis", zap.String("addr", opts.Addr))
	return client
}

// EnsureSchema creates the record store collections with their validators,
// then their indexes.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	if err := validators.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
		logger.Error("ensure collections failed", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase, logger); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	return nil
}

// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/guardduty/internal/app/scheduling"
	"github.com/dalemusser/guardduty/internal/app/store/recordstore"
	"github.com/dalemusser/guardduty/internal/app/system/announce"
	"github.com/dalemusser/guardduty/internal/app/system/auditlog"
	"github.com/dalemusser/guardduty/internal/app/system/workers"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the backends and the long-lived services built on them.
// WAFFLE passes it by value to every later hook, so everything is a pointer.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	Redis         *redis.Client // nil when redis_url is blank or unreachable

	Records    *recordstore.Store
	Bus        *announce.Bus // nil without Redis
	Scheduling *scheduling.Service
	Sync       *workers.SnapshotSync
	Audit      *auditlog.Logger
}

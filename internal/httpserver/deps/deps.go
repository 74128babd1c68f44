package deps

import (
	"time"

	"github.com/MrSnakeDoc/shelf/internal/bookmark"
	"github.com/MrSnakeDoc/shelf/internal/collection"
	"github.com/MrSnakeDoc/shelf/internal/index"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/metrics"
	"github.com/MrSnakeDoc/shelf/internal/scheduler"
)

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	AllowedOrigins []string               // CORS origins allowed to call the API (browser extension)
	AllowedHosts   []string               // Host headers allowed to access the server
	AllowedCIDRS   []string               // IPs allowed to access the API and infra endpoints
	TrustProxy     bool                   // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateBurst      int                    // save requests per client IP in a burst
	RatePerMin     int                    // save requests refilled per client IP per minute
	MaxBodyBytes   int64                  // cap on a save request body (captured HTML included)
	StoreMode      string                 // "redis" | "memory", reported by /infra
	Bookmarks      *bookmark.Service      // save pipeline and collection operations
	Collection     *collection.Collection // canonical bookmark list
	MemoryIndex    *index.MemoryIndex     // read replica
	Metrics        *metrics.Metrics       // prometheus collectors, nil disables /metrics
	Syncer         *scheduler.Syncer      // replica syncer, triggered by /reload
}

/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the shift pay server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env and environment, then parse command-line flags
  2. Load pay rates (defaults or RATES_FILE)
  3. Open the session store and start the expiry sweeper
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: $PORT or 8080)
  -db      SQLite database path (default: $DB_PATH or :memory:)
           ":memory:" keeps sessions in process memory

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the sweeper and close the store
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/sessions.db"

  # Run on different port with JSON logs
  LOG_FORMAT=json ./server -port=3000

ENVIRONMENT:
  PORT, DB_PATH, SESSION_TTL, SWEEP_INTERVAL, MAX_UPLOAD_BYTES, RATES_FILE,
  WORKERS, CORS_ORIGINS, STRICT_SHIFT_TYPES, STRICT_TIMES, LOG_LEVEL,
  LOG_FORMAT. See config/config.go.

SEE ALSO:
  - api/serve.go: Server lifecycle
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/warp/shift-pay/api"
	"github.com/warp/shift-pay/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags
	flag.StringVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")
	flag.Parse()

	cfg.SetupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := api.Serve(ctx, cfg); err != nil {
		logrus.Fatalf("Server error: %v", err)
	}
}

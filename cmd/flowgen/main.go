// File path: cmd/flowgen/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/agent"
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/api"
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/auth"
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/common"
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/generator"
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/llm"
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/memory"
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/sqlite"
	"github.com/Chanthani-N-R-31/Python-Flowchart-Generator/internal/userstore"
)

func main() {
	logger := common.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		logger.Warn("flowgen: .env file not loaded", "error", err)
	} else {
		logger.Info("flowgen: environment loaded from .env")
	}

	addrDefault := ":8080"
	if env := strings.TrimSpace(os.Getenv("FLOWGEN_ADDR")); env != "" {
		addrDefault = env
	}
	addr := flag.String("addr", addrDefault, "listen address")

	usersDBDefault := defaultUsersDBPath()
	if env := strings.TrimSpace(os.Getenv("SQLITE_PATH")); env != "" {
		usersDBDefault = env
	}
	usersDB := flag.String("users-db", usersDBDefault, "path to the SQLite user database (empty disables persistence)")

	usersJSONL := flag.String("users-jsonl", strings.TrimSpace(os.Getenv("FLOWGEN_USERS_JSONL")), "path to a JSONL user store used as fallback or seed data")

	templatesDefault := api.DefaultConfig().TemplatesDir
	if env := strings.TrimSpace(os.Getenv("FLOWGEN_TEMPLATES")); env != "" {
		templatesDefault = env
	}
	templatesDir := flag.String("templates", templatesDefault, "directory containing the HTML templates")

	cacheSize := flag.Int("cache-size", 0, "generation cache capacity (0 uses defaults)")
	cacheTTL := flag.String("cache-ttl", "", "generation cache entry lifetime (e.g. 15m)")

	flag.Parse()

	logger.Info("flowgen: startup initiated", "addr", *addr, "users_db", *usersDB)

	var memStore *memory.Store
	if trimmed := strings.TrimSpace(*usersJSONL); trimmed != "" {
		ms, err := memory.NewStore(trimmed)
		if err != nil {
			logger.Warn("flowgen: jsonl user store unavailable", "path", trimmed, "error", err)
		} else {
			memStore = ms
		}
	}

	var store userstore.Store
	if trimmed := strings.TrimSpace(*usersDB); trimmed != "" {
		db, err := sqlite.Open(trimmed)
		if err != nil {
			logger.Warn("flowgen: sqlite user store unavailable", "path", trimmed, "error", err)
		} else {
			defer db.Close()
			if memStore != nil {
				if migrated, err := db.SyncUsersFromMemory(ctx, memStore); err != nil {
					logger.Warn("flowgen: user seed import failed", "error", err)
				} else if migrated > 0 {
					logger.Info("flowgen: seeded users from jsonl", "count", migrated)
				}
			}
			if count, err := db.CountUsers(ctx); err == nil {
				logger.Info("flowgen: user database ready", "path", trimmed, "users", count)
			}
			store = db
		}
	}
	if store == nil && memStore != nil {
		logger.Info("flowgen: using jsonl user store", "path", memStore.Path())
		store = memStore
	}
	if store == nil {
		logger.Warn("flowgen: no user store configured; profiles live only in session cookies")
	}

	provider := llm.NewProvider(ctx)
	logger.Info("flowgen: llm provider ready", "provider", provider.Name())

	var refiner generator.Refiner
	if ag, err := agent.NewRefiner(provider); err != nil {
		logger.Warn("flowgen: refiner unavailable, compiling raw prompts", "error", err)
	} else {
		refiner = ag
	}

	opts := generator.Options{CacheSize: *cacheSize}
	if trimmed := strings.TrimSpace(*cacheTTL); trimmed != "" {
		dur, err := time.ParseDuration(trimmed)
		if err != nil {
			logger.Error("flowgen: invalid cache ttl", "value", trimmed, "error", err)
			fmt.Println("cache ttl error:", err)
			os.Exit(1)
		}
		opts.CacheTTL = dur
	}
	gen := generator.New(refiner, opts)

	authCfg := auth.LoadConfig()
	manager := auth.NewManager(authCfg, store)
	if manager.Enabled() {
		logger.Info("flowgen: google sign-in enabled", "redirect", authCfg.RedirectURL)
	} else {
		logger.Info("flowgen: google sign-in not configured; serving guest sessions")
	}

	cfg := api.DefaultConfig()
	if trimmed := strings.TrimSpace(*templatesDir); trimmed != "" {
		cfg.TemplatesDir = trimmed
	}
	server, err := api.NewServer(gen, manager, &cfg)
	if err != nil {
		logger.Error("flowgen: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	logger.Info("flowgen: server listening", "addr", *addr, "health", "/healthz")
	fmt.Printf("Serving on %s\n", *addr)
	reachable := *addr
	if strings.HasPrefix(reachable, ":") {
		reachable = "localhost" + reachable
	}
	logger.Info("flowgen: verify reachability", "suggestion", fmt.Sprintf("curl http://%s/healthz", reachable))
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("flowgen: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}

func defaultUsersDBPath() string {
	return filepath.Join("data", "users.db")
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"backend/internal/auth"
	"backend/internal/cache"
	"backend/internal/config"
	"backend/internal/db"
	"backend/internal/handlers"
	"backend/internal/logging"
	"backend/internal/middleware"
	"backend/internal/realtime"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/service/activity"
	"backend/internal/service/admin"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var version = "dev"

func main() {
	loadedEnv := []string{}
	if os.Getenv("DISABLE_DOTENV") == "" {
		loadedEnv = loadDotEnv()
	}
	logging.Init()
	if len(loadedEnv) > 0 {
		for _, p := range loadedEnv {
			slog.Info("loaded env file", "path", p)
		}
	} else {
		if os.Getenv("DISABLE_DOTENV") != "" {
			slog.Info("dotenv loading disabled")
		} else {
			slog.Info("no .env files found", "note", "ok in production")
		}
	}

	env := os.Getenv("ENV")
	isProduction := env == "production" || env == "prod"

	// Validate required secrets in all environments
	requiredSecrets := map[string]struct {
		minLength int
		hint      string
		forbidden []string // Forbidden placeholder values
	}{
		"JWT_SECRET": {
			minLength: 32,
			hint:      "generate with: openssl rand -base64 32",
			forbidden: []string{"replace", "secret", "changeme", "jwt-secret"},
		},
	}

	// In production, additional secrets are required
	if isProduction {
		requiredSecrets["REALTIME_SIGNING_SECRET"] = struct {
			minLength int
			hint      string
			forbidden []string
		}{
			minLength: 32,
			hint:      "generate with: openssl rand -base64 32",
			forbidden: []string{"replace", "changeme", "realtime-secret"},
		}
		requiredSecrets["DATABASE_URL"] = struct {
			minLength int
			hint      string
			forbidden []string
		}{
			minLength: 1,
			hint:      "set PostgreSQL connection string",
			forbidden: []string{},
		}
		requiredSecrets["PUBLIC_BASE_URL"] = struct {
			minLength int
			hint      string
			forbidden []string
		}{
			minLength: 1,
			hint:      "set public base URL (e.g., https://yourdomain.com)",
			forbidden: []string{},
		}
	}

	var errors []string
	for varName, reqs := range requiredSecrets {
		value := strings.TrimSpace(os.Getenv(varName))

		if value == "" {
			errors = append(errors, fmt.Sprintf("%s not set (hint: %s)", varName, reqs.hint))
			continue
		}

		if len(value) < reqs.minLength {
			errors = append(errors, fmt.Sprintf("%s too short (minimum %d characters, hint: %s)",
				varName, reqs.minLength, reqs.hint))
			continue
		}

		valueLower := strings.ToLower(value)
		for _, forbidden := range reqs.forbidden {
			if strings.Contains(valueLower, strings.ToLower(forbidden)) {
				errors = append(errors, fmt.Sprintf("%s contains placeholder value %q (hint: %s)",
					varName, forbidden, reqs.hint))
				break
			}
		}
	}

	if len(errors) > 0 {
		envType := "development"
		if isProduction {
			envType = "production"
		}
		slog.Error("required secrets validation failed", "environment", envType, "errors", errors)
		for _, err := range errors {
			slog.Error("  - " + err)
		}
		os.Exit(1)
	}

	if isProduction {
		dbURL := os.Getenv("DATABASE_URL")
		if strings.Contains(dbURL, ":postgres@") || strings.Contains(dbURL, ":password@") {
			slog.Error("DATABASE_URL contains weak password in production")
			os.Exit(1)
		}

		redisAddr := os.Getenv("REDIS_ADDR")
		redisPassword := os.Getenv("REDIS_PASSWORD")
		if redisAddr != "" && !strings.Contains(redisAddr, "@") {
			if redisPassword == "" || len(redisPassword) < 16 {
				slog.Error("Redis is configured without strong password in production",
					"hint", "set REDIS_PASSWORD (minimum 16 characters, generate with: openssl rand -base64 32)")
				os.Exit(1)
			}
		}

		slog.Info("production environment variables validated")
	}

	trustProxy := false
	if v := os.Getenv("TRUST_PROXY"); v != "" {
		switch v {
		case "1", "true", "TRUE", "True":
			trustProxy = true
		}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	tokenManager := auth.NewTokenManager(jwtSecret, 1*time.Hour)
	r.Use(middleware.CORS())
	r.Use(middleware.OptionalAuth(tokenManager))
	r.Use(middleware.AccessLog(middleware.AccessLogOptions{TrustProxy: trustProxy}))

	var store *repository.Store
	var redisClient *redis.Client

	redisAddr := os.Getenv("REDIS_ADDR")
	redisOpts, redisWarn, redisErr := redisOptionsFromAddr(redisAddr)
	if redisErr != nil {
		slog.Warn("invalid REDIS_ADDR; redis disabled", "error", redisErr)
	} else {
		if redisWarn != "" {
			slog.Warn(redisWarn)
		}
		redisAddr = redisOpts.Addr
		redisClient = redis.NewClient(redisOpts)
	}
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		sqlDB, err := db.Open(databaseURL)
		if err != nil {
			slog.Error("failed to open database", "error", err)
		} else {
			store = repository.NewStore(sqlDB)
		}
	} else {
		slog.Warn("DATABASE_URL not set; database services will return 503")
	}

	// If Redis is not reachable, run without it (caching, revocation and
	// rate limiting degrade gracefully).
	if redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.Warn("redis not reachable; caching and rate limiting disabled", "addr", redisAddr, "error", err)
			redisClient = nil
		}
	}

	realtimeHub := realtime.NewHub(redisClient)
	go realtimeHub.Run(context.Background())

	// Set Redis on TokenManager for token revocation
	if redisClient != nil {
		tokenManager.SetRedis(redisClient)
		slog.Info("token revocation enabled via Redis")
	} else {
		slog.Warn("token revocation disabled; Redis not available")
	}

	// Initialize configuration manager
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}
	if _, err := config.NewManager(configPath); err != nil {
		slog.Error("failed to load config", "error", err, "path", configPath)
		os.Exit(1)
	}
	slog.Info("loaded server config", "path", configPath)

	authzSvc := service.NewAuthzService(store)

	// Rate limiting is a no-op if Redis is disabled/unreachable.
	r.Use(middleware.RateLimit(redisClient, middleware.RateLimitOptions{TrustProxy: trustProxy}))
	r.Use(middleware.RequireAdminAccess(tokenManager, authzSvc))

	var cacheImpl cache.Cache
	if redisClient != nil {
		cacheImpl = cache.NewRedisCache(redisClient)
	} else {
		cacheImpl = cache.NewNoOpCache()
	}

	authSvc := service.NewAuthService(store, tokenManager)
	activitySvc := activity.NewLogsService(store, realtimeHub)
	adminUsersSvc := admin.NewUsersService(store, activitySvc)
	adminAnalyticsSvc := admin.NewAnalyticsService(store, cacheImpl)

	api := handlers.API{
		Auth:           authSvc,
		Authz:          authzSvc,
		AdminUsers:     adminUsersSvc,
		AdminAnalytics: adminAnalyticsSvc,
		Activity:       activitySvc,
		Hub:            realtimeHub,
		Health: handlers.HealthDeps{
			Redis:     redisClient,
			StartedAt: time.Now(),
			Version:   version,
		},
	}
	if store != nil {
		api.Health.DB = store.DB
	}
	api.Routes(r)

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	port := os.Getenv("PORT")
	if port == "" {
		port = "6137"
	}

	// Timeouts bound slow clients (slowloris) and runaway handlers.
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("starting http server", "addr", server.Addr,
		"readTimeout", server.ReadTimeout,
		"writeTimeout", server.WriteTimeout)

	if err := server.ListenAndServe(); err != nil {
		slog.Error("http server stopped", "error", err)
		os.Exit(1)
	}
}

func loadDotEnv() []string {
	// Go does not automatically load .env files.
	// Allow explicit path via DOTENV_PATH, otherwise search upward for .env files.
	if p := strings.TrimSpace(os.Getenv("DOTENV_PATH")); p != "" {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err == nil {
				return []string{p}
			}
		}
		return nil
	}

	candidates := []string{
		".env.local",
		".env",
	}

	var loaded []string
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	for dir := wd; ; {
		for _, name := range candidates {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err != nil {
				continue
			}
			if err := godotenv.Load(p); err == nil {
				loaded = append(loaded, p)
			}
		}
		if len(loaded) > 0 {
			return loaded
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return loaded
}

func redisOptionsFromAddr(redisAddr string) (*redis.Options, string, error) {
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	// Try parsing as Redis URL (redis://[:password@]host:port[/db])
	if strings.Contains(redisAddr, "://") {
		if opts, err := redis.ParseURL(redisAddr); err == nil {
			if env := os.Getenv("ENV"); (env == "production" || env == "prod") && opts.Password == "" {
				return opts, "WARNING: Redis has no password in production environment", nil
			}
			return opts, "", nil
		}
		parsed, err := url.Parse(redisAddr)
		if err != nil {
			return nil, "", fmt.Errorf("parse REDIS_ADDR: %w", err)
		}
		if parsed.Host == "" {
			return nil, "", fmt.Errorf("REDIS_ADDR missing host: %q", redisAddr)
		}
		warn := ""
		if parsed.Scheme != "" && parsed.Scheme != "redis" && parsed.Scheme != "rediss" {
			warn = fmt.Sprintf("REDIS_ADDR uses %q scheme; using host %q", parsed.Scheme, parsed.Host)
		}
		return &redis.Options{Addr: parsed.Host}, warn, nil
	}

	// Simple host:port format, check for separate password environment variable
	opts := &redis.Options{Addr: redisAddr}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		opts.Password = redisPassword
	}

	if env := os.Getenv("ENV"); (env == "production" || env == "prod") && opts.Password == "" {
		return opts, "WARNING: Redis has no password in production environment", nil
	}

	return opts, "", nil
}

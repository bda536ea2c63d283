package main

import (
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"medboard-api/api"
	"medboard-api/domain"
	"medboard-api/storage"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}

	zones := domain.DefaultZones()
	if path := os.Getenv("ZONES_FILE"); path != "" {
		loaded, err := domain.LoadZones(path)
		if err != nil {
			log.Fatalf("zones: %v", err)
		}
		zones = loaded
	}

	store, err := newStore()
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(api.GzipRequestMiddleware())

	logger := log.New()
	broker := api.NewBroker(logger)
	api.Register(e, store, broker, zones, logger)

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("PORT"); ok {
		listenAddr = ":" + val
	}

	e.Logger.Fatal(e.Start(listenAddr))
}

// newStore selects the item store backend from STORE_BACKEND; the default
// is the volatile in-memory store.
func newStore() (api.Storage, error) {
	switch backend := os.Getenv("STORE_BACKEND"); backend {
	case "", "memory":
		return storage.NewMemory(), nil
	case "file":
		path := os.Getenv("BOARD_FILE")
		if path == "" {
			log.Fatal("missing BOARD_FILE config")
		}
		return storage.NewFile(path)
	case "redis":
		connStr := os.Getenv("REDIS_CONNECTION_STRING")
		if connStr == "" {
			log.Fatal("missing redis config")
		}
		ttl := time.Duration(0)
		if v := os.Getenv("BOARD_TTL"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d < 0 {
				log.Fatalf("invalid BOARD_TTL: %v", err)
			}
			ttl = d
		}
		return storage.NewRedis(redis.NewClient(redisOptions(connStr)), os.Getenv("BOARD_KEY"), ttl), nil
	case "tables":
		connStr := os.Getenv("STORAGE_CONNECTION_STRING")
		tableName := os.Getenv("ITEMS_TABLE")
		if connStr == "" || tableName == "" {
			log.Fatal("missing table storage config")
		}
		return storage.NewTables(connStr, tableName)
	default:
		log.Fatalf("unknown STORE_BACKEND %q", backend)
		return nil, nil
	}
}

// redisOptions parses either a redis URL or the comma-separated
// host,password=...,ssl=... form used by managed caches.
func redisOptions(connStr string) *redis.Options {
	opts, err := redis.ParseURL(connStr)
	if err == nil {
		return opts
	}
	parts := strings.Split(connStr, ",")
	opts = &redis.Options{Addr: parts[0]}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(kv[0]) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.ToLower(kv[1]) == "true" {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	return opts
}

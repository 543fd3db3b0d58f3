// internal/config/config.go
//
// Environment-driven configuration.
//
// Environment variables (a .env file is loaded first when present):
//   PORT=8000
//   LOG_LEVEL=info
//   CODE_LENGTH=4            positions per code
//   CODE_SYMBOLS=10          alphabet size
//   GUESS_POOL=full          full | candidates
//   SOLVER_WORKERS=0         0 = GOMAXPROCS
//   DATABASE_PATH=           empty disables game history
//   SESSION_SECRET=dev_secret_change_me
//   SESSION_TTL=24h
//   CLIENT_ORIGIN=http://localhost:8000

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hitblow/internal/solver"
)

const devSecret = "dev_secret_change_me"

type Config struct {
	Port          string
	LogLevel      string
	CodeLength    int
	Symbols       int
	GuessPool     string
	Workers       int
	DatabasePath  string
	SessionSecret string
	SessionTTL    time.Duration
	ClientOrigin  string
}

// Load reads .env (if any) and the process environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the process environment only.
func FromEnv() Config {
	port := getEnv("PORT", "8000")
	return Config{
		Port:          port,
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		CodeLength:    getEnvInt("CODE_LENGTH", 4),
		Symbols:       getEnvInt("CODE_SYMBOLS", 10),
		GuessPool:     getEnv("GUESS_POOL", "full"),
		Workers:       getEnvInt("SOLVER_WORKERS", 0),
		DatabasePath:  os.Getenv("DATABASE_PATH"),
		SessionSecret: getEnv("SESSION_SECRET", devSecret),
		SessionTTL:    getEnvDuration("SESSION_TTL", 24*time.Hour),
		ClientOrigin:  getEnv("CLIENT_ORIGIN", "http://localhost:"+port),
	}
}

// Solver builds the shared space and selector described by the config.
func (c Config) Solver() (*solver.Space, *solver.Selector, error) {
	space, err := solver.NewSpace(c.CodeLength, c.Symbols)
	if err != nil {
		return nil, nil, err
	}
	pool, err := solver.ParsePool(c.GuessPool)
	if err != nil {
		return nil, nil, err
	}
	return space, solver.NewSelector(space, solver.WithPool(pool), solver.WithWorkers(c.Workers)), nil
}

// InsecureSecret reports whether the built-in development secret is in use.
func (c Config) InsecureSecret() bool { return c.SessionSecret == devSecret }

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		return def
	}
	return n
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Msg("not a duration, using default")
		return def
	}
	return d
}

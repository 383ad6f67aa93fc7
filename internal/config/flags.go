package config

import (
	"flag"
	"os"
	"time"

	"github.com/avelasco-dev/inventario/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-b string   store backend: memory, redis or postgres
//	-a string   tenant application id
//	-r string   redis address (host:port)
//	-n int      redis database number
//	-d string   PostgreSQL DSN
//	-e string   remote auth endpoint base URL
//	-k string   remote auth api key
//	-t int      idle timeout in minutes
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-b", "-a", "-r", "-n", "-d", "-e", "-k", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.Backend, "b", cfg.Backend, "store backend (memory, redis, postgres)")
	fs.StringVar(&cfg.AppID, "a", cfg.AppID, "tenant application id")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "redis address")
	fs.IntVar(&cfg.RedisDB, "n", cfg.RedisDB, "redis database number")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.AuthEndpoint, "e", cfg.AuthEndpoint, "remote auth endpoint")
	fs.StringVar(&cfg.AuthAPIKey, "k", cfg.AuthAPIKey, "remote auth api key")
	idleTimeout := fs.Int("t", int(cfg.IdleTimeout.Minutes()), "idle timeout (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.IdleTimeout = time.Duration(*idleTimeout) * time.Minute
}

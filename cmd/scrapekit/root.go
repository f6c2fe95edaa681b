package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"scrapekit/pkg/config"
	"scrapekit/pkg/logger"
)

var (
	// Global flags
	configFile  string
	logLevel    string
	userAgent   string
	rpm         int
	attempts    int
	timeout     string
	noRedirects bool
	cacheDir    string
	writeOnly   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scrapekit",
	Short: "A resilient HTTP/FTP client for unattended scraping",
	Long: `scrapekit fetches pages from unreliable remote servers, wrapping each
request with rate limiting, retries with exponential backoff, and
transparent response caching.`,
	Version:       config.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default: scrapekit.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&userAgent, "ua", "", "user agent to make requests with")
	rootCmd.PersistentFlags().IntVar(&rpm, "rpm", -1, "max requests per minute (0 disables throttling)")
	rootCmd.PersistentFlags().IntVar(&attempts, "retries", -1, "attempt budget per request")
	rootCmd.PersistentFlags().StringVar(&timeout, "timeout", "", "per-attempt timeout (e.g. 30s)")
	rootCmd.PersistentFlags().BoolVar(&noRedirects, "noredirect", false, "don't follow redirects")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "enable the file cache under this directory")
	rootCmd.PersistentFlags().BoolVar(&writeOnly, "cache-write-only", false, "write to cache but never serve from it")
}

// loadConfig merges flags over file and environment configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	if rpm >= 0 {
		cfg.RateLimit.RequestsPerMinute = rpm
	}
	if attempts >= 0 {
		cfg.Retry.Attempts = attempts
	}
	if timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout: %w", err)
		}
		cfg.HTTP.Timeout = d
	}
	if noRedirects {
		cfg.HTTP.FollowRedirects = false
	}
	if cacheDir != "" {
		cfg.Cache.Backend = "file"
		cfg.Cache.Dir = cacheDir
	}
	if writeOnly {
		cfg.Cache.WriteOnly = true
	}

	log, err := logger.New(logger.Options{Level: cfg.Logging.Level})
	if err != nil {
		return nil, err
	}
	logger.SetLogger(log)

	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// Command articgrid runs the terminal artwork grid browser.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/articgrid/articgrid/internal/tui"
	"github.com/articgrid/articgrid/pkg/client"
	"github.com/articgrid/articgrid/pkg/grid"
	"github.com/articgrid/articgrid/pkg/logging"
	"github.com/articgrid/articgrid/pkg/pagecache"
)

const defaultUserAgent = "articgrid/0.1.0 (https://github.com/articgrid/articgrid)"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "articgrid",
		Short: "Browse and bulk-select Art Institute of Chicago artworks",
		Long: `articgrid is a terminal browser for the Art Institute of Chicago
artworks API with cross-page bulk row selection. Pages are cached for
the session; bulk selections prefetch missing pages in parallel.`,
		SilenceUsage: true,
		RunE:         run,
	}

	flags := cmd.Flags()
	flags.String("base-url", client.DefaultBaseURL, "artworks API base URL")
	flags.String("user-agent", defaultUserAgent, "User-Agent header")
	flags.Int("page-size", grid.DefaultPageSize, "rows per page")
	flags.Int("max-concurrency", 5, "parallel page fetches during bulk selection")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.Bool("pretty", false, "human-readable log output")
	flags.String("log-file", "", "log file path (default: stderr)")
	flags.String("redis-addr", "", "optional Redis address for a shared page cache")
	flags.Duration("redis-ttl", time.Hour, "TTL for Redis-cached pages (0 for none)")

	return cmd
}

// loadConfig merges flags, environment, and an optional config file.
// Precedence: flags > ARTICGRID_* env > ~/.config/articgrid/config.yaml.
func loadConfig(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	v.SetEnvPrefix("ARTICGRID")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home + "/.config/articgrid")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return v, nil
}

func run(cmd *cobra.Command, _ []string) error {
	v, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logOutput := os.Stderr
	if path := v.GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOutput = f
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(v.GetString("log-level")),
		Pretty: v.GetBool("pretty"),
		Output: logOutput,
	})

	apiClient, err := client.New(client.Config{
		BaseURL:   v.GetString("base-url"),
		UserAgent: v.GetString("user-agent"),
	})
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	var store pagecache.Store
	if addr := v.GetString("redis-addr"); addr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: addr})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("connect to redis at %s: %w", addr, err)
		}
		store = pagecache.NewRedis(redisClient, v.GetInt("page-size"), v.GetDuration("redis-ttl"))
		logger.Info().Str("addr", addr).Msg("Using Redis page cache")
	}

	session, err := grid.NewSession(grid.Config{
		Fetcher:        apiClient,
		Store:          store,
		PageSize:       v.GetInt("page-size"),
		MaxConcurrency: v.GetInt("max-concurrency"),
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	program := tea.NewProgram(tui.New(session), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

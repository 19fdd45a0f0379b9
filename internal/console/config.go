package console

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the console CLI configuration. Environment variables provide
// defaults and flags override them.
type Config struct {
	Addr     string        `env:"ADDR" envDefault:"localhost:8080"`
	Username string        `env:"USERNAME"`
	Password string        `env:"PASSWORD"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"10s"`
	LogLevel string        `env:"LOG_LEVEL" envDefault:"error"`

	PageSize      int    `env:"PAGE_SIZE" envDefault:"20"`
	Page          int    `env:"PAGE" envDefault:"0"`
	Search        string `env:"SEARCH"`
	SortField     string `env:"SORT_FIELD"`
	SortDirection string `env:"SORT_DIRECTION"`

	Activate   string
	Deactivate string
	Delete     string
	Open       string
}

// Query is the grid query the configuration asks for.
func (c *Config) Query() Query {
	return Query{
		PageSize:      c.PageSize,
		Page:          c.Page,
		Search:        c.Search,
		SortField:     c.SortField,
		SortDirection: c.SortDirection,
	}
}

// LoadConfig parses CONSOLE_* environment variables and then args.
func LoadConfig(args []string, output io.Writer) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: "CONSOLE_"})
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("console", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "server address")
	fs.StringVar(&cfg.Username, "username", cfg.Username, "login username")
	fs.StringVar(&cfg.Password, "password", cfg.Password, "login password")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "request timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "rows per page")
	fs.IntVar(&cfg.Page, "page", cfg.Page, "zero-based page index")
	fs.StringVar(&cfg.Search, "search", cfg.Search, "substring filter")
	fs.StringVar(&cfg.SortField, "sort-field", cfg.SortField, "sort column")
	fs.StringVar(&cfg.SortDirection, "sort-direction", cfg.SortDirection, "asc or desc")
	fs.StringVar(&cfg.Activate, "activate", "", "activate the user with this id")
	fs.StringVar(&cfg.Deactivate, "deactivate", "", "deactivate the user with this id")
	fs.StringVar(&cfg.Delete, "delete", "", "delete the user with this id")
	fs.StringVar(&cfg.Open, "open", "", "open the case of the user with this id")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Username == "" || c.Password == "" {
		return errors.New("username and password are required")
	}
	if c.PageSize < 0 || c.Page < 0 {
		return errors.New("page and page-size must not be negative")
	}
	actions := 0
	for _, id := range []string{c.Activate, c.Deactivate, c.Delete, c.Open} {
		if id != "" {
			actions++
		}
	}
	if actions > 1 {
		return errors.New("only one of -activate, -deactivate, -delete and -open may be given")
	}
	return nil
}

package cmd

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"tabula/internal/model"
)

// DefaultLengths is the page length menu offered when -lengths is not set.
const DefaultLengths = "10,25,50,100,-1"

// Config holds CLI configuration.
type Config struct {
	DBPath      string
	Table       string
	Query       string
	Demo        bool
	PageLength  int
	Lengths     []int
	NoSort      bool
	NoSearch    bool
	NoPaging    bool
	LogPath     string
	Debug       bool
	ShowVersion bool
}

// Source returns what the UI should load first.
func (c *Config) Source() model.Source {
	return model.Source{Table: c.Table, Query: c.Query}
}

// ParseFlags parses command-line arguments (without the program name) and
// returns configuration. Environment variables provide flag defaults.
func ParseFlags(args []string) (*Config, error) {
	config := &Config{}

	// Load .env files first so env-based defaults work with existing flag parsing.
	for _, path := range []string{".env", ".env.local"} {
		if err := loadDotEnv(path); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	defaultLength := 10
	if v := os.Getenv("TABULA_PAGE_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse TABULA_PAGE_LENGTH: %w", err)
		}
		defaultLength = n
	}

	var lengths string
	fs := flag.NewFlagSet("tabula", flag.ContinueOnError)
	fs.StringVar(&config.DBPath, "db", os.Getenv("TABULA_DB"), "Path to SQLite database file (or set TABULA_DB)")
	fs.StringVar(&config.Table, "table", os.Getenv("TABULA_TABLE"), "Table or view to open (default: first table)")
	fs.StringVar(&config.Query, "query", os.Getenv("TABULA_QUERY"), "SQL query to browse instead of a table")
	fs.BoolVar(&config.Demo, "demo", false, "Browse the built-in demo dataset")
	fs.IntVar(&config.PageLength, "length", defaultLength, "Rows per page, -1 for all")
	fs.StringVar(&lengths, "lengths", DefaultLengths, "Comma-separated page length menu")
	fs.BoolVar(&config.NoSort, "no-sort", false, "Disable sorting")
	fs.BoolVar(&config.NoSearch, "no-search", false, "Disable search")
	fs.BoolVar(&config.NoPaging, "no-paging", false, "Disable pagination")
	fs.StringVar(&config.LogPath, "log", os.Getenv("TABULA_LOG"), "Write diagnostics to this file")
	fs.BoolVar(&config.Debug, "debug", false, "Log debug diagnostics")
	fs.BoolVar(&config.ShowVersion, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if config.ShowVersion {
		return config, nil
	}

	if fs.NArg() > 0 && config.DBPath == "" {
		config.DBPath = fs.Arg(0)
	}

	switch {
	case config.DBPath == "" && !config.Demo:
		return nil, errors.New("no data source: pass -db <file> or -demo")
	case config.DBPath != "" && config.Demo:
		return nil, errors.New("-db and -demo cannot be combined")
	case config.Table != "" && config.Query != "":
		return nil, errors.New("-table and -query cannot be combined")
	}

	if config.DBPath != "" {
		if _, err := os.Stat(config.DBPath); err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
	}

	if !validLength(config.PageLength) {
		return nil, fmt.Errorf("invalid page length %d: must be -1 or positive", config.PageLength)
	}

	menu, err := parseLengths(lengths)
	if err != nil {
		return nil, fmt.Errorf("failed to parse -lengths: %w", err)
	}
	config.Lengths = withLength(menu, config.PageLength)

	return config, nil
}

func validLength(n int) bool {
	return n == -1 || n > 0
}

// parseLengths reads a comma-separated length menu.
func parseLengths(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		if !validLength(n) {
			return nil, fmt.Errorf("invalid page length %d", n)
		}
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("empty length menu")
	}
	return out, nil
}

// withLength makes sure the menu offers n, keeping it ascending with "all"
// last.
func withLength(menu []int, n int) []int {
	if !slices.Contains(menu, n) {
		menu = append(menu, n)
	}
	slices.SortFunc(menu, func(a, b int) int {
		switch {
		case a == b:
			return 0
		case a == -1:
			return 1
		case b == -1:
			return -1
		default:
			return a - b
		}
	})
	return menu
}

func loadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}

		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if _, set := os.LookupEnv(key); !set {
			_ = os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

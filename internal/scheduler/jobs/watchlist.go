package jobs

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultRefreshSchedule runs after the regulator's overnight batch
const DefaultRefreshSchedule = "0 30 6 * * *"

// Watchlist is the YAML file listing tickers kept warm in the store
//
//	schedule: "0 30 6 * * *"
//	workers: 4
//	tickers: [AAPL, MSFT, BRK.B]
type Watchlist struct {
	Schedule string   `yaml:"schedule"`
	Workers  int      `yaml:"workers"`
	Tickers  []string `yaml:"tickers"`
}

// LoadWatchlist reads and validates a watchlist file.
// Unknown keys fail the load so a typo never silently empties the list.
func LoadWatchlist(path string) (*Watchlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}
	return ParseWatchlist(data)
}

// ParseWatchlist decodes watchlist YAML, uppercases and dedups tickers and
// fills defaults
func ParseWatchlist(data []byte) (*Watchlist, error) {
	var wl Watchlist
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&wl); err != nil {
		return nil, fmt.Errorf("decode watchlist: %w", err)
	}

	seen := make(map[string]bool, len(wl.Tickers))
	tickers := make([]string, 0, len(wl.Tickers))
	for _, t := range wl.Tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tickers = append(tickers, t)
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("watchlist has no tickers")
	}
	wl.Tickers = tickers

	if wl.Schedule == "" {
		wl.Schedule = DefaultRefreshSchedule
	}
	if wl.Workers < 0 {
		return nil, fmt.Errorf("watchlist workers must not be negative")
	}

	return &wl, nil
}

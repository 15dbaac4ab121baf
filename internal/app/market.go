package app

import (
	"fmt"
	"net/url"

	"github.com/guttosm/b3view/config"
	"github.com/guttosm/b3view/internal/marketapi"
)

// InitMarketClient builds the market API client from configuration.
//
// Behavior:
//   - Validates that cfg.Market.URL is an absolute http(s) URL.
//   - Applies cfg.Market.Timeout to every request.
//
// No request is made here; the first call is the directory load.
//
// Example usage:
//
//	client, err := app.InitMarketClient(config.AppConfig)
//	if err != nil {
//	    logger.L().Fatal().Err(err).Msg("market client")
//	}
func InitMarketClient(cfg config.Config) (*marketapi.Client, error) {
	u, err := url.Parse(cfg.Market.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid API_URL %q: %w", cfg.Market.URL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid API_URL %q: want http(s)://host[:port]", cfg.Market.URL)
	}
	return marketapi.NewClient(cfg.Market.URL, cfg.Market.Timeout), nil
}

// marketOpener is an indirection used by InitializeApp; tests override it.
var marketOpener = InitMarketClient

// Package webpage fetches public HTML pages for the scraping providers.
package webpage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/steamachieve/steamachieve-backend/internal/logger"
	"github.com/steamachieve/steamachieve-backend/internal/utils"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Pages can be large; anything past this is cut off rather than buffered.
const maxBodyBytes = 4 << 20

type Fetcher interface {
	Get(ctx context.Context, pageURL string) ([]byte, error)
}

type client struct {
	log        *logger.Logger
	httpClient *http.Client
}

func NewClient(log *logger.Logger) Fetcher {
	timeoutSec := utils.GetEnvAsInt("SCRAPE_TIMEOUT_SECONDS", 10, log)
	return &client{
		log:        log.With("client", "WebpageClient"),
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}
}

func (c *client) Get(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: http %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: read body: %w", pageURL, err)
	}
	return body, nil
}

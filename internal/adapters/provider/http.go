package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/mlerank/internal/domain/model"
	"github.com/okian/mlerank/pkg/logger"
)

// maxBodyBytes caps the response size read from a data service.
const maxBodyBytes = 32 << 20

// GamesResponse is the payload served by GET {base}/games.
type GamesResponse struct {
	Games []model.GameOutcome `json:"games"`
}

// HTTPProvider fetches games from a remote data service.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
	log     logger.Logger
}

// NewHTTPProvider creates a provider calling baseURL + "/games".
func NewHTTPProvider(baseURL string, opts ...Option) *HTTPProvider {
	o := newOptions(opts)
	client := o.client
	if client == nil {
		client = &http.Client{Timeout: o.timeout}
	}
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		log:     o.logger,
	}
}

// Games implements Provider.
func (p *HTTPProvider) Games(ctx context.Context, sel model.Selection) (out []model.GameOutcome, err error) {
	const op = "provider.http"
	defer observe("http", time.Now(), &err)
	if err = validate(op, &sel); err != nil {
		return nil, err
	}

	endpoint := p.baseURL + "/games?" + query(sel).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("%s: %w: %s returned %d", op, ErrFetch, endpoint, resp.StatusCode)
	}

	var body GamesResponse
	if err = json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrDecode, err)
	}

	out = collect(ctx, p.log, body.Games, sel)
	p.log.Debug(ctx, "fetched games",
		logger.String("url", endpoint),
		logger.Int("read", len(body.Games)),
		logger.Int("selected", len(out)),
	)
	return out, nil
}

func query(sel model.Selection) url.Values {
	q := url.Values{}
	q.Set("season", strconv.Itoa(sel.Season))
	q.Set("kind", sel.Kind)
	if len(sel.Weeks) > 0 {
		weeks := make([]string, len(sel.Weeks))
		for i, w := range sel.Weeks {
			weeks[i] = strconv.Itoa(w)
		}
		q.Set("weeks", strings.Join(weeks, ","))
	}
	return q
}

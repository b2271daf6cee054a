package sportsdata

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/gridiron-sync/internal/domain/player"
	"github.com/riskibarqy/gridiron-sync/internal/domain/playerstats"
	"github.com/riskibarqy/gridiron-sync/internal/platform/logging"
	"github.com/riskibarqy/gridiron-sync/internal/usecase"
	"github.com/valyala/fasthttp"
)

const (
	defaultBaseURL     = "https://api.sportsdata.io/v3/nfl"
	defaultTimeout     = 20 * time.Second
	maxResponseBodyLen = 8 << 20
	apiKeyHeader       = "Ocp-Apim-Subscription-Key"
)

var apiKeyParamRegex = regexp.MustCompile(`key=[^&\s"']+`)
var errSportsDataTransient = crerr.New("sportsdata transient failure")

type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Logger  *logging.Logger
	// HTTPClient overrides the pooled fasthttp client, mainly for tests.
	HTTPClient *fasthttp.Client
}

// Client reads the NFL roster, schedule and box score endpoints. It makes a
// single attempt per call; retries belong to the caller.
type Client struct {
	httpClient *fasthttp.Client
	baseURL    string
	apiKey     string
	timeout    time.Duration
	logger     *logging.Logger
	location   *time.Location
}

var _ usecase.DataSource = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                "gridiron-sync",
			MaxConnsPerHost:     32,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxResponseBodyLen,
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	location, err := time.LoadLocation("America/New_York")
	if err != nil {
		location = time.UTC
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		timeout:    timeout,
		logger:     logger,
		location:   location,
	}
}

func (c *Client) FetchRoster(ctx context.Context) ([]player.ExternalPlayer, error) {
	var items []playerDTO
	if err := c.doJSON(ctx, "/scores/json/Players", &items); err != nil {
		return nil, fmt.Errorf("fetch roster: %w", err)
	}

	out := make([]player.ExternalPlayer, 0, len(items))
	for _, item := range items {
		if item.PlayerID <= 0 {
			continue
		}
		out = append(out, player.ExternalPlayer{
			ExternalID:       strconv.FormatInt(item.PlayerID, 10),
			FirstName:        strings.TrimSpace(item.FirstName),
			LastName:         strings.TrimSpace(item.LastName),
			DisplayName:      strings.TrimSpace(item.Name),
			TeamAbbreviation: strings.ToUpper(strings.TrimSpace(item.Team)),
			Position:         strings.ToUpper(strings.TrimSpace(item.Position)),
			Active:           strings.EqualFold(strings.TrimSpace(item.Status), "Active"),
		})
	}
	return out, nil
}

func (c *Client) FetchGamesForWeek(ctx context.Context, season, week int) ([]playerstats.GameRef, error) {
	if season <= 0 || week <= 0 {
		return nil, fmt.Errorf("%w: season and week must be greater than zero", usecase.ErrInvalidInput)
	}

	path := fmt.Sprintf("/scores/json/ScoresByWeek/%d/%d", season, week)
	var items []gameDTO
	if err := c.doJSON(ctx, path, &items); err != nil {
		return nil, fmt.Errorf("fetch games season=%d week=%d: %w", season, week, err)
	}
	return c.mapGames(items), nil
}

func (c *Client) FetchGamesForDate(ctx context.Context, date time.Time) ([]playerstats.GameRef, error) {
	path := "/scores/json/ScoresByDate/" + formatProviderDate(date)
	var items []gameDTO
	if err := c.doJSON(ctx, path, &items); err != nil {
		return nil, fmt.Errorf("fetch games date=%s: %w", date.Format("2006-01-02"), err)
	}
	return c.mapGames(items), nil
}

func (c *Client) FetchRawStats(ctx context.Context, gameID string) ([]playerstats.RawStatRecord, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, fmt.Errorf("%w: game id is required", usecase.ErrInvalidInput)
	}

	var rows []map[string]any
	if err := c.doJSON(ctx, "/stats/json/PlayerGameStatsByScoreID/"+url.PathEscape(gameID), &rows); err != nil {
		return nil, fmt.Errorf("fetch stats game=%s: %w", gameID, err)
	}

	out := make([]playerstats.RawStatRecord, 0, len(rows)*2)
	for _, row := range rows {
		out = append(out, splitStatRow(gameID, row)...)
	}
	return out, nil
}

func (c *Client) mapGames(items []gameDTO) []playerstats.GameRef {
	out := make([]playerstats.GameRef, 0, len(items))
	for _, item := range items {
		gameID := strings.TrimSpace(item.GameKey)
		if item.ScoreID > 0 {
			gameID = strconv.FormatInt(item.ScoreID, 10)
		}
		if gameID == "" {
			continue
		}

		ref := playerstats.GameRef{
			GameID:   gameID,
			Season:   item.Season,
			Week:     item.Week,
			HomeTeam: strings.ToUpper(strings.TrimSpace(item.HomeTeam)),
			AwayTeam: strings.ToUpper(strings.TrimSpace(item.AwayTeam)),
			Status:   strings.TrimSpace(item.Status),
		}
		if kickoff, err := time.ParseInLocation("2006-01-02T15:04:05", strings.TrimSpace(item.DateTime), c.location); err == nil {
			ref.KickoffAt = kickoff.UTC()
		}
		out = append(out, ref)
	}
	return out
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	fullURL := c.baseURL + path
	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := c.httpClient.DoDeadline(req, resp, deadline); err != nil {
		callErr := crerr.Wrapf(errSportsDataTransient, "send request: %s", c.sanitize(err.Error()))
		c.logger.WarnContext(ctx, "sportsdata request failed", "path", path, "error", callErr)
		return toUsecaseError(callErr)
	}

	status := resp.StatusCode()
	body := resp.Body()
	if status < 200 || status >= 300 {
		var callErr error
		if isRetryableStatus(status) {
			callErr = crerr.Wrapf(errSportsDataTransient, "provider status=%d body=%s", status, abbreviateBody(body))
		} else {
			callErr = crerr.Newf("provider status=%d body=%s", status, abbreviateBody(body))
		}
		c.logger.WarnContext(ctx, "sportsdata request rejected", "path", path, "status", status)
		return toUsecaseError(callErr)
	}

	if err := sonic.Unmarshal(body, target); err != nil {
		return crerr.Wrap(err, "decode provider payload")
	}
	return nil
}

// toUsecaseError surfaces transient provider failures as ErrTransientProvider
// so callers can decide whether to retry.
func toUsecaseError(err error) error {
	if stderrors.Is(err, errSportsDataTransient) {
		return fmt.Errorf("%w: %v", usecase.ErrTransientProvider, err)
	}
	return err
}

func isRetryableStatus(status int) bool {
	return status == fasthttp.StatusRequestTimeout ||
		status == fasthttp.StatusTooManyRequests ||
		status >= fasthttp.StatusInternalServerError
}

func formatProviderDate(date time.Time) string {
	return strings.ToUpper(date.Format("2006-Jan-02"))
}

func abbreviateBody(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) > 256 {
		return text[:256] + "..."
	}
	return text
}

func (c *Client) sanitize(value string) string {
	if c.apiKey != "" {
		value = strings.ReplaceAll(value, c.apiKey, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(value, "key=REDACTED")
}

package acl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jsamuelsen/quote-finder/internal/adapters/clients"
	"github.com/jsamuelsen/quote-finder/internal/domain"
	"github.com/jsamuelsen/quote-finder/internal/platform/logging"
)

// maxPages stops a remote whose "next" links never end.
const maxPages = 1000

// RemoteSourceConfig configures a RemoteSource.
type RemoteSourceConfig struct {
	// Client must have its BaseURL set to the remote's origin.
	Client *clients.Client

	// Path is the first catalog page, e.g. "/v1/quotations".
	Path string

	Logger *slog.Logger
}

// RemoteSource loads a catalog from a paginated JSON endpoint:
//
//	{"data": [{"id": "...", "author": {...}, "quote": "..."}], "next": "/v1/quotations?page=2"}
//
// Pages are followed until "next" is empty. It implements ports.CatalogSource
// and ports.HealthChecker.
type RemoteSource struct {
	BaseAdapter

	path   string
	logger *slog.Logger
}

// NewRemoteSource creates a RemoteSource. Panics if Client is nil.
func NewRemoteSource(cfg RemoteSourceConfig) *RemoteSource {
	if cfg.Client == nil {
		panic("RemoteSource: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	path := cfg.Path
	if path == "" {
		path = "/"
	}

	return &RemoteSource{
		BaseAdapter: NewBaseAdapter(cfg.Client, cfg.Client.ServiceName()),
		path:        path,
		logger:      logger.With(slog.String("source", "remote:"+cfg.Client.ServiceName())),
	}
}

type remotePage struct {
	Data []remoteQuotation `json:"data"`
	Next string            `json:"next"`
}

type remoteQuotation struct {
	ID       string        `json:"id"`
	Author   *remoteAuthor `json:"author"`
	Citation string        `json:"citation"`
	Topic    string        `json:"topic"`
	Quote    string        `json:"quote"`
}

type remoteAuthor struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Bio       string `json:"bio"`
}

// Name implements ports.CatalogSource and ports.HealthChecker.
func (s *RemoteSource) Name() string {
	return "remote:" + s.ServiceName()
}

// Load fetches every page and returns the quotations in remote order.
func (s *RemoteSource) Load(ctx context.Context) (domain.Catalog, error) {
	logger := logging.FromContextOr(ctx, s.logger)

	var catalog domain.Catalog

	seen := map[string]bool{}
	next := s.path

	for page := 1; next != ""; page++ {
		if page > maxPages {
			return nil, domain.NewUnavailableError(s.ServiceName(), fmt.Sprintf("more than %d pages", maxPages))
		}

		if seen[next] {
			return nil, domain.NewUnavailableError(s.ServiceName(), fmt.Sprintf("page %q links back to itself", next))
		}

		seen[next] = true

		logger.Log(ctx, logging.LevelTrace, "fetching catalog page",
			slog.String("path", next),
			slog.Int("page", page),
		)

		quotations, following, err := s.fetchPage(ctx, next)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		catalog = append(catalog, quotations...)
		next = following
	}

	logger.DebugContext(ctx, "remote catalog loaded", slog.Int("quotations", len(catalog)))

	return catalog, nil
}

func (s *RemoteSource) fetchPage(ctx context.Context, path string) (domain.Catalog, string, error) {
	body, err := s.Get(ctx, path, "load catalog")
	if err != nil {
		return nil, "", err
	}

	page, err := DecodeResponse[remotePage](body)
	if err != nil {
		return nil, "", err
	}

	quotations, err := TranslateSlice(page.Data, translateQuotation)
	if err != nil {
		return nil, "", err
	}

	return quotations, page.Next, nil
}

// translateQuotation maps the remote shape onto domain.Quotation. A missing
// author is anonymous, a missing ID is derived from the content.
func translateQuotation(ext *remoteQuotation) (*domain.Quotation, error) {
	if err := ValidateRequired(strings.TrimSpace(ext.Quote), "quote"); err != nil {
		return nil, err
	}

	q := &domain.Quotation{
		ID:     ext.ID,
		Source: ext.Citation,
		Topic:  ext.Topic,
		Text:   ext.Quote,
	}

	if ext.Author != nil {
		q.FirstName = ext.Author.FirstName
		q.LastName = ext.Author.LastName
		q.Bio = ext.Author.Bio
	}

	if q.ID == "" {
		q.ID = domain.StableID(q.FirstName, q.LastName, q.Text)
	}

	return q, nil
}

// Check fails fast while the circuit is open, otherwise fetches the first
// page to verify the remote answers.
func (s *RemoteSource) Check(ctx context.Context) error {
	if s.Client().CircuitState() == clients.StateOpen {
		return domain.NewUnavailableError(s.ServiceName(), "circuit breaker open")
	}

	body, err := s.Get(ctx, s.path, "health check")
	if err != nil {
		return err
	}

	return body.Close()
}

package catalog

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jsamuelsen/quote-finder/internal/adapters/clients"
	"github.com/jsamuelsen/quote-finder/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quote-finder/internal/app"
	"github.com/jsamuelsen/quote-finder/internal/platform/config"
)

// SourceSet is the catalog sources built from configuration, in load order:
// files first, then remotes.
type SourceSet struct {
	Sources []app.Source

	// Files are the paths of the file sources, for the watcher.
	Files []string

	// Remotes are also registered as health checks.
	Remotes []*acl.RemoteSource
}

// BuildSources creates a FileSource per configured file and a RemoteSource
// per configured remote, each remote with its own resilient client.
func BuildSources(catalog config.CatalogConfig, client config.ClientConfig, logger *slog.Logger) (*SourceSet, error) {
	set := &SourceSet{Files: append([]string(nil), catalog.Files...)}

	for _, path := range catalog.Files {
		set.Sources = append(set.Sources, app.Source{CatalogSource: NewFileSource(path)})
	}

	for _, remote := range catalog.Remotes {
		source, err := newRemoteSource(remote, client, logger)
		if err != nil {
			return nil, err
		}

		set.Remotes = append(set.Remotes, source)
		set.Sources = append(set.Sources, app.Source{CatalogSource: source, Optional: remote.Optional})
	}

	return set, nil
}

func newRemoteSource(remote config.RemoteSourceConfig, client config.ClientConfig, logger *slog.Logger) (*acl.RemoteSource, error) {
	cfg := &clients.Config{
		BaseURL:     remote.BaseURL,
		ServiceName: remote.Name,
		Timeout:     client.Timeout,
		Retry:       client.Retry,
		Circuit:     client.CircuitBreaker,
		Transport:   client.Transport,
		Logger:      logger,
	}

	if token := remote.Token; token != "" {
		cfg.AuthFunc = func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c, err := clients.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating client for remote %s: %w", remote.Name, err)
	}

	return acl.NewRemoteSource(acl.RemoteSourceConfig{
		Client: c,
		Path:   remote.Path,
		Logger: logger,
	}), nil
}

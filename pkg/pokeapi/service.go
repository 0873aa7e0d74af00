// Package pokeapi fetches the creature catalog from PokeAPI: one list request,
// then one detail request per reference, joined in list order.
package pokeapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/pokedex-client/pkg/client"
	"github.com/Sternrassler/pokedex-client/pkg/fanout"
	"github.com/Sternrassler/pokedex-client/pkg/logging"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the public PokeAPI v2 root.
	DefaultBaseURL = "https://pokeapi.co/api/v2"

	// DefaultLimit is the catalog size requested from the list endpoint.
	DefaultLimit = 150
)

// JSONGetter fetches a URL and decodes its JSON body into v.
// *client.Client satisfies it.
type JSONGetter interface {
	GetJSON(ctx context.Context, url string, v any) error
}

// Config holds the service configuration.
type Config struct {
	// BaseURL is the API root, e.g. https://pokeapi.co/api/v2
	BaseURL string

	// Limit is the number of references requested from the list endpoint
	Limit int

	// Fanout bounds the detail fetches
	Fanout fanout.Config
}

// DefaultConfig returns the configuration matching the public API.
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Limit:   DefaultLimit,
		Fanout:  fanout.DefaultConfig(),
	}
}

// Service runs the list, detail and fan-out steps.
type Service struct {
	api    JSONGetter
	base   *url.URL
	config Config
	logger zerolog.Logger
}

// New creates a service on top of api.
func New(api JSONGetter, cfg Config) (*Service, error) {
	if api == nil {
		return nil, fmt.Errorf("api client is required")
	}
	if cfg.Limit <= 0 {
		return nil, fmt.Errorf("limit must be > 0 (got %d)", cfg.Limit)
	}
	if cfg.Fanout.MaxConcurrency < 0 {
		return nil, fmt.Errorf("max_concurrency must be >= 0 (got %d)", cfg.Fanout.MaxConcurrency)
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url must be absolute (got %q)", cfg.BaseURL)
	}

	return &Service{
		api:    api,
		base:   base,
		config: cfg,
		logger: logging.NewLogger("pokeapi"),
	}, nil
}

// ListURL returns the collection endpoint for the configured limit.
func (s *Service) ListURL() string {
	u := *s.base
	u.Path = strings.TrimRight(u.Path, "/") + "/pokemon"
	q := url.Values{}
	q.Set("limit", strconv.Itoa(s.config.Limit))
	u.RawQuery = q.Encode()
	return u.String()
}

// FetchReferences issues the list request and returns the references in API order.
func (s *Service) FetchReferences(ctx context.Context) ([]Reference, error) {
	listURL := s.ListURL()

	var doc listResponse
	if err := s.api.GetJSON(ctx, listURL, &doc); err != nil {
		return nil, fmt.Errorf("fetch list: %w", err)
	}
	if doc.Results == nil {
		return nil, fmt.Errorf("fetch list: %w", client.NewDecodeError(listURL, `missing field "results"`, nil))
	}

	refs := make([]Reference, 0, len(*doc.Results))
	for i, ref := range *doc.Results {
		if ref.URL == "" {
			return nil, fmt.Errorf("fetch list: %w",
				client.NewDecodeError(listURL, fmt.Sprintf(`results[%d]: missing field "url"`, i), nil))
		}
		resolved, err := s.resolve(ref.URL)
		if err != nil {
			return nil, fmt.Errorf("fetch list: %w",
				client.NewDecodeError(listURL, fmt.Sprintf("results[%d]: invalid url %q", i, ref.URL), err))
		}
		refs = append(refs, Reference{Name: ref.Name, URL: resolved})
	}

	s.logger.Info().
		Int("count", len(refs)).
		Int("limit", s.config.Limit).
		Msg("Reference list fetched")

	return refs, nil
}

// FetchRecord fetches one detail document and projects it into a Record.
func (s *Service) FetchRecord(ctx context.Context, ref Reference) (Record, error) {
	var doc detailResponse
	if err := s.api.GetJSON(ctx, ref.URL, &doc); err != nil {
		return Record{}, fmt.Errorf("fetch %q: %w", ref.Name, err)
	}

	rec, err := project(doc)
	if err != nil {
		return Record{}, fmt.Errorf("fetch %q: %w", ref.Name, client.NewDecodeError(ref.URL, err.Error(), nil))
	}
	return rec, nil
}

// FetchDetails fetches every reference concurrently. The result has one record
// per reference, in reference order, or an error and no records.
func (s *Service) FetchDetails(ctx context.Context, refs []Reference) ([]Record, error) {
	start := time.Now()

	records, err := fanout.Gather(ctx, refs, s.config.Fanout,
		func(ctx context.Context, _ int, ref Reference) (Record, error) {
			return s.FetchRecord(ctx, ref)
		})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("count", len(records)).
		Dur("duration", time.Since(start)).
		Msg("Detail fetch complete")

	return records, nil
}

// FetchAll runs the list request and the detail fan-out.
func (s *Service) FetchAll(ctx context.Context) ([]Record, error) {
	refs, err := s.FetchReferences(ctx)
	if err != nil {
		return nil, err
	}
	return s.FetchDetails(ctx, refs)
}

// resolve makes relative reference URLs absolute against the base URL.
func (s *Service) resolve(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	return s.base.ResolveReference(u).String(), nil
}

func project(doc detailResponse) (Record, error) {
	switch {
	case doc.ID == nil:
		return Record{}, errors.New(`missing field "id"`)
	case doc.Name == nil:
		return Record{}, errors.New(`missing field "name"`)
	case doc.Types == nil:
		return Record{}, errors.New(`missing field "types"`)
	case doc.Height == nil:
		return Record{}, errors.New(`missing field "height"`)
	case doc.Weight == nil:
		return Record{}, errors.New(`missing field "weight"`)
	}

	types := make([]string, 0, len(*doc.Types))
	for i, slot := range *doc.Types {
		if slot.Type == nil || slot.Type.Name == nil {
			return Record{}, fmt.Errorf(`types[%d]: missing field "type.name"`, i)
		}
		types = append(types, *slot.Type.Name)
	}

	return Record{
		ID:     *doc.ID,
		Name:   *doc.Name,
		Types:  types,
		Height: *doc.Height,
		Weight: *doc.Weight,
	}, nil
}

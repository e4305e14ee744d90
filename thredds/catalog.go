// Package thredds talks to a THREDDS data server: client catalogs and the
// NetCDF Subset Service.
package thredds

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/icodeforyou/rapsounding-go/metrics"
)

var ErrNoDatasets = errors.New("catalog has no datasets")

const errorBodyLimit = 512

type Client struct {
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func NewClient(timeout time.Duration, m *metrics.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: m,
		logger:  logger,
	}
}

// CatalogXMLURL turns the HTML view of a catalog into its XML document.
func CatalogXMLURL(catalogURL string) string {
	if base, ok := strings.CutSuffix(catalogURL, ".html"); ok {
		return base + ".xml"
	}
	return catalogURL
}

// Catalog fetches and parses a client catalog.
func (c *Client) Catalog(ctx context.Context, catalogURL string) (*Catalog, error) {
	xmlURL := CatalogXMLURL(catalogURL)
	c.logger.Info("fetching catalog...", "url", xmlURL)

	start := time.Now()
	resp, err := c.get(ctx, xmlURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading catalog body: %w", err)
	}
	c.metrics.FetchBytes.WithLabelValues("catalog").Add(float64(len(body)))
	c.metrics.FetchDuration.WithLabelValues("catalog").Observe(time.Since(start).Seconds())

	return ParseCatalog(body, xmlURL)
}

// ParseCatalog decodes catalog XML. catalogURL is the document's own URL,
// used to resolve service bases.
func ParseCatalog(body []byte, catalogURL string) (*Catalog, error) {
	var doc xmlCatalog
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("error unmarshaling catalog xml: %w", err)
	}
	base, err := url.Parse(catalogURL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog url %q: %w", catalogURL, err)
	}

	cat := &Catalog{
		URL:      catalogURL,
		Name:     doc.Name,
		Services: convertServices(doc.Services),
	}
	for _, ds := range doc.Datasets {
		cat.Datasets = appendDatasets(cat.Datasets, ds, "", cat.Services, base)
	}
	return cat, nil
}

// FirstDataset is the dataset the catalog lists first, for a "latest"
// catalog the newest model run.
func (c *Catalog) FirstDataset() (Dataset, error) {
	if len(c.Datasets) == 0 {
		return Dataset{}, ErrNoDatasets
	}
	return c.Datasets[0], nil
}

func convertServices(in []xmlService) []Service {
	out := make([]Service, 0, len(in))
	for _, s := range in {
		out = append(out, Service{
			Name:     s.Name,
			Type:     s.Type,
			Base:     s.Base,
			Services: convertServices(s.Services),
		})
	}
	return out
}

// appendDatasets flattens the dataset tree in document order, keeping only
// datasets with data behind them.
func appendDatasets(out []Dataset, ds xmlDataset, inherited string, services []Service, base *url.URL) []Dataset {
	serviceName := ds.ServiceName
	for _, m := range ds.Metadata {
		if serviceName == "" && m.ServiceName != "" {
			serviceName = m.ServiceName
		}
		if m.Inherited && m.ServiceName != "" {
			inherited = m.ServiceName
		}
	}
	if serviceName == "" {
		serviceName = inherited
	}

	if ds.URLPath != "" || len(ds.Access) > 0 {
		d := Dataset{
			Name:        ds.Name,
			ID:          ds.ID,
			URLPath:     ds.URLPath,
			ServiceName: serviceName,
			AccessURLs:  map[string]string{},
		}
		if ds.URLPath != "" {
			for _, s := range resolveServices(services, serviceName) {
				d.AccessURLs[s.Type] = accessURL(base, s.Base, ds.URLPath)
			}
		}
		for _, a := range ds.Access {
			for _, s := range resolveServices(services, a.ServiceName) {
				d.AccessURLs[s.Type] = accessURL(base, s.Base, a.URLPath)
			}
		}
		out = append(out, d)
	}

	for _, child := range ds.Datasets {
		out = appendDatasets(out, child, inherited, services, base)
	}
	return out
}

// resolveServices returns the leaf services behind name. An empty name
// means every service in the catalog.
func resolveServices(services []Service, name string) []Service {
	var out []Service
	for _, s := range services {
		switch {
		case name == "" || s.Name == name:
			out = append(out, leaves(s)...)
		case len(s.Services) > 0:
			out = append(out, resolveServices(s.Services, name)...)
		}
	}
	return out
}

func leaves(s Service) []Service {
	if len(s.Services) == 0 {
		if strings.EqualFold(s.Type, "Compound") {
			return nil
		}
		return []Service{s}
	}
	var out []Service
	for _, child := range s.Services {
		out = append(out, leaves(child)...)
	}
	return out
}

func accessURL(catalog *url.URL, serviceBase, urlPath string) string {
	ref, err := url.Parse(serviceBase + urlPath)
	if err != nil {
		return serviceBase + urlPath
	}
	return catalog.ResolveReference(ref).String()
}

func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error requesting %s: %w", rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, fmt.Errorf("thredds error: status %d: %s", resp.StatusCode, body)
	}
	return resp, nil
}

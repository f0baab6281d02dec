package azure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"StoryGenerator/internal/config"
	"StoryGenerator/internal/ports"
)

// Wiki reads the Azure DevOps wiki hierarchy as a flat document corpus.
type Wiki struct {
	orgURL  string
	project string
	token   string
	client  *http.Client
}

var _ ports.WikiSource = (*Wiki)(nil)

// NewWiki wires organization, project, and PAT from configuration.
func NewWiki(cfg config.AzureConfig) *Wiki {
	return &Wiki{
		orgURL:  strings.TrimRight(cfg.OrgURL, "/"),
		project: cfg.Project,
		token:   cfg.Token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type wikiListResponse struct {
	Value []struct {
		ID string `json:"id"`
	} `json:"value"`
}

type wikiPage struct {
	Path     string     `json:"path"`
	Content  string     `json:"content"`
	SubPages []wikiPage `json:"subPages"`
}

// ListPages flattens the full page tree of the project's first wiki into an
// ordered list of paths. A project without a wiki yields an empty list.
func (w *Wiki) ListPages(ctx context.Context) ([]string, error) {
	listURL := fmt.Sprintf("%s/%s/_apis/wiki/wikis?api-version=%s", w.orgURL, w.project, apiVersion)

	var wikis wikiListResponse
	if err := w.get(ctx, listURL, &wikis); err != nil {
		return nil, fmt.Errorf("list wikis: %w", err)
	}
	if len(wikis.Value) == 0 {
		return []string{}, nil
	}

	pagesURL := fmt.Sprintf("%s/%s/_apis/wiki/wikis/%s/pages?recursionLevel=full&api-version=%s",
		w.orgURL, w.project, wikis.Value[0].ID, apiVersion)

	var root wikiPage
	if err := w.get(ctx, pagesURL, &root); err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	return flattenPages(root, nil), nil
}

// flattenPages walks the subPages tree depth-first, stripping surrounding
// slashes. The wiki root itself has no usable path and is skipped.
func flattenPages(page wikiPage, paths []string) []string {
	if trimmed := strings.Trim(page.Path, "/"); trimmed != "" {
		paths = append(paths, trimmed)
	}
	for _, sub := range page.SubPages {
		paths = flattenPages(sub, paths)
	}
	return paths
}

// FetchPage returns the markdown body of one wiki page.
func (w *Wiki) FetchPage(ctx context.Context, path string) (string, error) {
	query := url.Values{}
	query.Set("path", "/"+strings.Trim(path, "/"))
	query.Set("includeContent", "true")
	query.Set("api-version", apiVersion)

	pageURL := fmt.Sprintf("%s/%s/_apis/wiki/wikis/%s.wiki/pages?%s",
		w.orgURL, w.project, w.project, query.Encode())

	var page wikiPage
	if err := w.get(ctx, pageURL, &page); err != nil {
		return "", fmt.Errorf("fetch page %s: %w", path, err)
	}

	return page.Content, nil
}

func (w *Wiki) get(ctx context.Context, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", basicAuth(w.token))
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

package azure

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"StoryGenerator/internal/config"
	"StoryGenerator/internal/domain"
	"StoryGenerator/internal/ports"
)

const apiVersion = "7.0"

// Boards talks to the Azure DevOps work-item tracking API.
type Boards struct {
	orgURL  string
	project string
	token   string
	client  *http.Client
}

var _ ports.EpicReader = (*Boards)(nil)
var _ ports.StoryPublisher = (*Boards)(nil)

// NewBoards wires organization, project, and PAT from configuration.
func NewBoards(cfg config.AzureConfig) *Boards {
	return &Boards{
		orgURL:  strings.TrimRight(cfg.OrgURL, "/"),
		project: cfg.Project,
		token:   cfg.Token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type workItemResponse struct {
	ID     int            `json:"id"`
	Fields map[string]any `json:"fields"`
	Links  struct {
		HTML struct {
			Href string `json:"href"`
		} `json:"html"`
	} `json:"_links"`
}

// GetEpic reads one work item and extracts its title.
func (b *Boards) GetEpic(ctx context.Context, id int) (domain.Epic, error) {
	endpoint := fmt.Sprintf("%s/%s/_apis/wit/workitems/%d?api-version=%s", b.orgURL, b.project, id, apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Epic{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", basicAuth(b.token))

	resp, err := b.client.Do(req)
	if err != nil {
		return domain.Epic{}, fmt.Errorf("get work item: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Epic{}, fmt.Errorf("work item %d: %s", id, resp.Status)
	}

	var parsed workItemResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.Epic{}, fmt.Errorf("decode work item: %w", err)
	}

	title, _ := parsed.Fields["System.Title"].(string)
	if title == "" {
		return domain.Epic{}, fmt.Errorf("work item %d has no title", id)
	}

	return domain.Epic{ID: parsed.ID, Title: title}, nil
}

type patchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// CreateStory creates an Issue work item, optionally linked under an epic via
// a reverse hierarchy relation.
func (b *Boards) CreateStory(ctx context.Context, title, description string, epicID int) (domain.CreatedItem, error) {
	payload := []patchOp{
		{Op: "add", Path: "/fields/System.Title", Value: title},
		{Op: "add", Path: "/fields/System.Description", Value: description},
	}

	if epicID != 0 {
		payload = append(payload, patchOp{
			Op:   "add",
			Path: "/relations/-",
			Value: map[string]string{
				"rel": "System.LinkTypes.Hierarchy-Reverse",
				"url": fmt.Sprintf("%s/%s/_apis/wit/workItems/%d", b.orgURL, b.project, epicID),
			},
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.CreatedItem{}, fmt.Errorf("marshal patch: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/_apis/wit/workitems/$Issue?api-version=%s", b.orgURL, b.project, apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.CreatedItem{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", basicAuth(b.token))
	req.Header.Set("Content-Type", "application/json-patch+json")

	resp, err := b.client.Do(req)
	if err != nil {
		return domain.CreatedItem{}, fmt.Errorf("create work item: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.CreatedItem{}, fmt.Errorf("create work item %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var parsed workItemResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.CreatedItem{}, fmt.Errorf("decode work item: %w", err)
	}

	return domain.CreatedItem{ID: parsed.ID, URL: parsed.Links.HTML.Href}, nil
}

// CheckAuth probes the projects endpoint to verify the PAT works. Intended as
// a non-fatal startup diagnostic.
func (b *Boards) CheckAuth(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/_apis/projects?api-version=%s", b.orgURL, apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", basicAuth(b.token))

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("auth check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth check: %s", resp.Status)
	}

	return nil
}

// basicAuth builds the PAT authorization header Azure DevOps expects:
// basic auth with an empty user name.
func basicAuth(token string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(":"+token))
}

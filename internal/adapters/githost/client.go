package githost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bilalafzal6349/ssc-system/internal/domain"
	"github.com/bilalafzal6349/ssc-system/internal/ports"
)

// Client materializes contributions on a GitLab-compatible code host:
// branch off the default branch, commit the submitted change, then open a
// merge request. The merge request IID becomes the external change ref.
type Client struct {
	baseURL       string
	token         string
	defaultBranch string
	httpClient    *http.Client
}

type Config struct {
	BaseURL       string
	Token         string
	DefaultBranch string
	Timeout       time.Duration
	HTTPClient    *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("code host base url is required")
	}
	defaultBranch := cfg.DefaultBranch
	if defaultBranch == "" {
		defaultBranch = "main"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:       baseURL,
		token:         cfg.Token,
		defaultBranch: defaultBranch,
		httpClient:    httpClient,
	}, nil
}

type commitRequest struct {
	Branch        string         `json:"branch"`
	CommitMessage string         `json:"commit_message"`
	Actions       []commitAction `json:"actions"`
}

type commitAction struct {
	Action   string `json:"action"`
	FilePath string `json:"file_path"`
	Content  string `json:"content"`
}

type mergeRequestRequest struct {
	SourceBranch string `json:"source_branch"`
	TargetBranch string `json:"target_branch"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
}

type mergeRequestResponse struct {
	IID    int    `json:"iid"`
	WebURL string `json:"web_url"`
}

func (c *Client) CreateChange(ctx context.Context, repositoryID, authorID, code, description string) (ports.ChangeRef, error) {
	branch := fmt.Sprintf("contribution/%s-%d", authorID, time.Now().UnixNano())
	project := url.PathEscape(repositoryID)

	branchURL := fmt.Sprintf("%s/projects/%s/repository/branches?branch=%s&ref=%s",
		c.baseURL, project, url.QueryEscape(branch), url.QueryEscape(c.defaultBranch))
	if err := c.post(ctx, branchURL, nil, nil); err != nil {
		return ports.ChangeRef{}, err
	}

	commit := commitRequest{
		Branch:        branch,
		CommitMessage: "Contribution from " + authorID,
		Actions: []commitAction{{
			Action:   "create",
			FilePath: fmt.Sprintf("contributions/%s.patch", branch[strings.LastIndex(branch, "/")+1:]),
			Content:  code,
		}},
	}
	commitURL := fmt.Sprintf("%s/projects/%s/repository/commits", c.baseURL, project)
	if err := c.post(ctx, commitURL, commit, nil); err != nil {
		return ports.ChangeRef{}, err
	}

	mr := mergeRequestRequest{
		SourceBranch: branch,
		TargetBranch: c.defaultBranch,
		Title:        "Contribution from " + authorID,
		Description:  description,
	}
	var created mergeRequestResponse
	mrURL := fmt.Sprintf("%s/projects/%s/merge_requests", c.baseURL, project)
	if err := c.post(ctx, mrURL, mr, &created); err != nil {
		return ports.ChangeRef{}, err
	}

	return ports.ChangeRef{
		ID:     fmt.Sprintf("%s!%d", repositoryID, created.IID),
		Branch: branch,
		WebURL: created.WebURL,
	}, nil
}

func (c *Client) post(ctx context.Context, rawURL string, payload, out any) error {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode code host request: %w", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("PRIVATE-TOKEN", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: code host returned %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode response: %v", domain.ErrUpstreamUnavailable, err)
		}
	}
	return nil
}

package reconapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ReportFormat selects the artifact variant the scan-job API returns.
type ReportFormat string

const (
	FormatAll  ReportFormat = "all"
	FormatCSV  ReportFormat = "csv"
	FormatJSON ReportFormat = "json"
)

// Client downloads scan-job reports. Credentials are injected at
// construction and validated there, never read from the environment
// mid-request.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
	logger     *zerolog.Logger
}

func NewClient(baseURL, apiToken string, logger *zerolog.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("recon API base URL is required")
	}
	if apiToken == "" {
		return nil, fmt.Errorf("recon API token is required")
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}, nil
}

// DownloadReport fetches the report for one scan job and returns the raw
// body.
func (c *Client) DownloadReport(ctx context.Context, jobID string, format ReportFormat) ([]byte, error) {
	if jobID == "" {
		return nil, fmt.Errorf("job ID is required")
	}

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, url.PathEscape(jobID),
		url.Values{"file_format": {string(format)}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build report request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("report request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("report request for job %s returned status %d", jobID, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read report body: %w", err)
	}

	c.logger.Info().
		Str("job_id", jobID).
		Str("format", string(format)).
		Int("bytes", len(body)).
		Msg("report downloaded")

	return body, nil
}

// SaveReport downloads the report archive and writes it to
// {outputDir}/{jobID}_report.zip, creating the directory when needed.
func (c *Client) SaveReport(ctx context.Context, jobID string, format ReportFormat, outputDir string) (string, error) {
	body, err := c.DownloadReport(ctx, jobID, format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	path := filepath.Join(outputDir, jobID+"_report.zip")
	if err := os.WriteFile(path, body, 0644); err != nil {
		return "", fmt.Errorf("failed to save report to %s: %w", path, err)
	}

	c.logger.Info().Str("path", path).Msg("report saved")
	return path, nil
}

// FetchReportJSON downloads the JSON report variant and decodes it.
func (c *Client) FetchReportJSON(ctx context.Context, jobID string) (map[string]any, error) {
	body, err := c.DownloadReport(ctx, jobID, FormatJSON)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("report for job %s is not valid JSON: %w", jobID, err)
	}
	return doc, nil
}

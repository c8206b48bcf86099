package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// maxFetchBodyBytes caps downloaded response bodies.
const maxFetchBodyBytes = 10 << 20

const fetchSchema = `{
	"type": "object",
	"required": ["url"],
	"additionalProperties": false,
	"properties": {
		"url": {"type": "string", "minLength": 1},
		"method": {"type": "string", "enum": ["GET", "POST", "PUT", "DELETE", "HEAD", "get", "post", "put", "delete", "head"]},
		"headers": {"type": "object", "additionalProperties": {"type": "string"}},
		"timeout": {"type": "integer", "minimum": 1},
		"extract": {"type": "string"}
	}
}`

// FetchResult mirrors the response shape the GUI expects from the fetch tool.
type FetchResult struct {
	Success     bool              `json:"success"`
	Status      int               `json:"status"`
	Headers     map[string]string `json:"headers"`
	ContentType string            `json:"contentType"`
	Body        string            `json:"body"`
	BodyLength  int               `json:"bodyLength"`
	ElapsedMs   int64             `json:"elapsedMs"`
	URL         string            `json:"url"`
	Extracted   string            `json:"extracted,omitempty"`
}

// NewFetchTool returns the fetch tool. Only http and https URLs are accepted.
// When extract names a gjson path and the body is JSON, the matched fragment
// is returned alongside the body.
func NewFetchTool(client *http.Client, defaultTimeout time.Duration, userAgent string) Tool {
	if client == nil {
		client = &http.Client{}
	}
	return Tool{
		Name:        "fetch",
		Description: "Fetch a URL over HTTP(S) with optional headers, timeout and JSON extraction.",
		Schema:      fetchSchema,
		Handler: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args struct {
				URL     string            `json:"url"`
				Method  string            `json:"method"`
				Headers map[string]string `json:"headers"`
				Timeout int               `json:"timeout"`
				Extract string            `json:"extract"`
			}
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("decode fetch arguments: %w", err)
			}

			if !strings.HasPrefix(args.URL, "http://") && !strings.HasPrefix(args.URL, "https://") {
				return nil, fmt.Errorf("only http and https URLs are allowed, got %q", args.URL)
			}

			method := strings.ToUpper(strings.TrimSpace(args.Method))
			if method == "" {
				method = http.MethodGet
			}

			timeout := defaultTimeout
			if args.Timeout > 0 {
				timeout = time.Duration(args.Timeout) * time.Second
			}
			reqCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			req, err := http.NewRequestWithContext(reqCtx, method, args.URL, nil)
			if err != nil {
				return nil, fmt.Errorf("build request: %w", err)
			}
			req.Header.Set("User-Agent", userAgent)
			for key, value := range args.Headers {
				req.Header.Set(key, value)
			}

			start := time.Now()
			resp, err := client.Do(req)
			if err != nil {
				return nil, fmt.Errorf("fetch %s: %w", args.URL, err)
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBodyBytes))
			if err != nil {
				return nil, fmt.Errorf("read response body: %w", err)
			}
			elapsed := time.Since(start).Milliseconds()

			headers := make(map[string]string, len(resp.Header))
			for key := range resp.Header {
				headers[strings.ToLower(key)] = resp.Header.Get(key)
			}
			contentType := headers["content-type"]
			if contentType == "" {
				contentType = "text/plain"
			}

			result := FetchResult{
				Success:     resp.StatusCode >= 200 && resp.StatusCode < 300,
				Status:      resp.StatusCode,
				Headers:     headers,
				ContentType: contentType,
				Body:        string(body),
				BodyLength:  len(body),
				ElapsedMs:   elapsed,
				URL:         args.URL,
			}

			if path := strings.TrimSpace(args.Extract); path != "" {
				if !gjson.ValidBytes(body) {
					return nil, fmt.Errorf("extract requested but response body is not valid JSON")
				}
				result.Extracted = gjson.GetBytes(body, path).Raw
			}

			return result, nil
		},
	}
}

// Utilities for reusing browser request headers captured as a cURL command.
package shared

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
)

var (
	curlHeaderRe = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	curlCookieRe = regexp.MustCompile(`(?:-b|--cookie)\s+'([^']+)'|(?:-b|--cookie)\s+"([^"]+)"`)
)

// skippedHeaders are set per request by the search client or the transport.
var skippedHeaders = map[string]bool{
	"accept-encoding": true,
	"content-length":  true,
	"host":            true,
	"connection":      true,
}

// CurlHeaders holds the headers and cookie string copied from a browser request.
type CurlHeaders struct {
	Headers map[string]string
	Cookie  string
}

// ParseCurlFile reads a file containing a cURL command and extracts its headers.
func ParseCurlFile(path string) (*CurlHeaders, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}
	return ParseCurlCommand(string(content))
}

// ParseCurlCommand extracts -H headers and the cookie (-b/--cookie, else a Cookie header) from a cURL command.
func ParseCurlCommand(cmd string) (*CurlHeaders, error) {
	cmd = strings.ReplaceAll(cmd, "\\\n", " ")

	result := &CurlHeaders{Headers: make(map[string]string)}
	var headerCookie string

	for _, match := range curlHeaderRe.FindAllStringSubmatch(cmd, -1) {
		line := firstNonEmpty(match[1], match[2])
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch lower := strings.ToLower(key); {
		case lower == "cookie":
			if headerCookie == "" {
				headerCookie = value
			}
		case skippedHeaders[lower]:
		default:
			result.Headers[key] = value
		}
	}

	if match := curlCookieRe.FindStringSubmatch(cmd); match != nil {
		result.Cookie = firstNonEmpty(match[1], match[2])
	} else {
		result.Cookie = headerCookie
	}

	if len(result.Headers) == 0 && result.Cookie == "" {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrInvalidInput)
	}
	return result, nil
}

// Apply copies the captured headers onto req without replacing headers already set on it.
func (c *CurlHeaders) Apply(req *http.Request) {
	if c == nil {
		return
	}
	for key, value := range c.Headers {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, value)
		}
	}
	if c.Cookie != "" && req.Header.Get("Cookie") == "" {
		req.Header.Set("Cookie", c.Cookie)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

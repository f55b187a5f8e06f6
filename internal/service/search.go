package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// SearchService forwards business searches to the provider with a fixed
// bearer token. Responses are returned untouched.
type SearchService struct {
	client  *http.Client
	baseURL string
}

func NewSearchService(baseURL, apiKey string) *SearchService {
	src := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: apiKey,
		TokenType:   "Bearer",
	})

	return &SearchService{
		client:  oauth2.NewClient(context.Background(), src),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// SearchResult is the provider's raw reply.
type SearchResult struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Search calls GET {base}/search?term=...&location=...
func (s *SearchService) Search(ctx context.Context, term, location string) (*SearchResult, error) {
	params := url.Values{}
	params.Set("term", term)
	params.Set("location", location)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	return &SearchResult{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

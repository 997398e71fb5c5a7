// Package preferences retrieves user preference profiles from the
// external preferences service and caches them briefly in memory.
package preferences

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/medwire/newscore/internal/domain"
)

// Service fetches preference profiles. The core only reads profiles;
// writes go through the owning service elsewhere.
type Service interface {
	FetchProfile(ctx context.Context, userID string) (*domain.PreferenceProfile, error)
}

// HTTPService is the HTTP client for the preferences service.
type HTTPService struct {
	baseURL string
	client  *http.Client
}

// NewHTTPService creates a client for the preferences service at baseURL.
func NewHTTPService(baseURL string, timeout time.Duration) *HTTPService {
	return &HTTPService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// FetchProfile retrieves the profile for userID.
func (s *HTTPService) FetchProfile(ctx context.Context, userID string) (*domain.PreferenceProfile, error) {
	endpoint := fmt.Sprintf("%s/api/v1/preferences/%s", s.baseURL, url.PathEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build preferences request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch preferences for %s: %w", userID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("preferences service returned status %d for %s", resp.StatusCode, userID)
	}

	var profile domain.PreferenceProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode preferences response: %w", err)
	}
	if profile.UserID == "" {
		profile.UserID = userID
	}
	return &profile, nil
}

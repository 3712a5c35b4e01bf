package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yourusername/catbot-chat/internal/content"
)

// DefaultCatAPIURL is TheCatAPI base address
const DefaultCatAPIURL = "https://api.thecatapi.com"

// ErrNoCat is returned when the cat service had nothing to offer
var ErrNoCat = errors.New("no cat available")

// Cat is one random cat picture with optional breed details
type Cat struct {
	ImageURL    string `json:"image_url"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Origin      string `json:"origin,omitempty"`
}

// Markdown renders the cat as chat text with an inline image
func (c Cat) Markdown() string {
	var b strings.Builder
	if c.Name != "" {
		fmt.Fprintf(&b, "Meet a %s", c.Name)
		if c.Origin != "" {
			fmt.Fprintf(&b, " from %s", c.Origin)
		}
		b.WriteString("!")
		if c.Description != "" {
			b.WriteString(" " + c.Description)
		}
	} else {
		b.WriteString("Here's a cute random cat!")
	}
	b.WriteString("\n\n")
	b.WriteString(content.Image("cat", c.ImageURL))
	return b.String()
}

// CatFetcher returns random cats
type CatFetcher interface {
	RandomCat(ctx context.Context) (Cat, error)
}

// CatAPI is a TheCatAPI client
type CatAPI struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewCatAPI creates a client. An empty baseURL uses DefaultCatAPIURL.
func NewCatAPI(baseURL, apiKey string) *CatAPI {
	if baseURL == "" {
		baseURL = DefaultCatAPIURL
	}
	return &CatAPI{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type catImage struct {
	URL    string `json:"url"`
	Breeds []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Origin      string `json:"origin"`
	} `json:"breeds"`
}

// RandomCat fetches one image, preferring ones with breed information
func (c *CatAPI) RandomCat(ctx context.Context) (cat Cat, err error) {
	defer func() { catFetches.WithLabelValues(outcome(err)).Inc() }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/images/search?has_breeds=1", nil)
	if err != nil {
		return Cat{}, err
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Cat{}, fmt.Errorf("cat api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Cat{}, fmt.Errorf("cat api: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Cat{}, fmt.Errorf("cat api: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var images []catImage
	if err := json.Unmarshal(body, &images); err != nil {
		return Cat{}, fmt.Errorf("cat api: bad response: %w", err)
	}
	if len(images) == 0 || images[0].URL == "" {
		return Cat{}, ErrNoCat
	}

	img := images[0]
	cat = Cat{ImageURL: img.URL}
	if len(img.Breeds) > 0 {
		b := img.Breeds[0]
		cat.Name = cleanExternalText(b.Name)
		cat.Description = cleanExternalText(b.Description)
		cat.Origin = cleanExternalText(b.Origin)
		if cat.Origin == "" {
			cat.Origin = "Unknown"
		}
	}
	return cat, nil
}

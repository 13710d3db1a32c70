package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Feed is the export document served by the source customs system. All
// identifiers are assigned by the source and reused verbatim, which is what
// makes repeated imports converge.
type Feed struct {
	Vehicles []FeedVehicle `json:"vehicles"`
	Parties  []FeedParty   `json:"parties"`
	Cases    []FeedCase    `json:"cases"`
}

type FeedVehicle struct {
	ID      string `json:"id"`
	PlateNo string `json:"plate_no"`
	Country string `json:"country"`
	Make    string `json:"make"`
	Model   string `json:"model"`
	VIN     string `json:"vin"`
}

type FeedParty struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	Country        string `json:"country"`
	RegistrationNo string `json:"registration_no"`
}

type FeedCase struct {
	ID                 string           `json:"id"`
	VehicleID          string           `json:"vehicle_id"`
	Status             string           `json:"status"`
	Route              string           `json:"route"`
	OriginCountry      string           `json:"origin_country"`
	DestinationCountry string           `json:"destination_country"`
	DeclaredValue      *float64         `json:"declared_value"`
	ActualValue        *float64         `json:"actual_value"`
	PreviousViolations int              `json:"previous_violations"`
	ArrivedAt          *time.Time       `json:"arrived_at"`
	Cargo              []FeedCargo      `json:"cargo_items"`
	Inspections        []FeedInspection `json:"inspections"`
	Documents          []FeedDocument   `json:"documents"`
	Parties            []FeedCaseParty  `json:"parties"`
}

type FeedCargo struct {
	ID          string  `json:"id"`
	HSCode      string  `json:"hs_code"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
	Value       float64 `json:"value"`
	Currency    string  `json:"currency"`
}

type FeedInspection struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	Decision    string     `json:"decision"`
	Reason      string     `json:"reason"`
	Comment     string     `json:"comment"`
	PerformedAt *time.Time `json:"performed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

type FeedDocument struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	FilePath   string     `json:"file_path"`
	UploadedAt *time.Time `json:"uploaded_at"`
}

type FeedCaseParty struct {
	PartyID string `json:"party_id"`
	Role    string `json:"role"`
}

// Client fetches the export feed over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Fetch downloads and decodes one full export document.
func (c *Client) Fetch(ctx context.Context) (Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/export/cases", nil)
	if err != nil {
		return Feed{}, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Feed{}, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Feed{}, fmt.Errorf("fetch feed: unexpected status %d", resp.StatusCode)
	}

	var feed Feed
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return Feed{}, fmt.Errorf("decode feed: %w", err)
	}
	return feed, nil
}

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"log_collector/internal/models"
)

// tokens is the static credential table the collector ships with, keyed by
// service. The "admin" entry is deliberately unknown to the server so
// rejection paths can be exercised.
var tokens = map[string]string{
	"auth-service":    "token123",
	"payment-service": "token456",
	"api-service":     "token789",
	"admin":           "xXAdminXx",
}

var severities = []string{models.SeverityInfo, models.SeverityWarn, models.SeverityError}

type client struct {
	serverURL string
	http      *http.Client
}

func newClient(serverURL string) *client {
	return &client{
		serverURL: serverURL,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

func makeLog(service string) map[string]string {
	return map[string]string{
		"service":   service,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"severity":  severities[rand.Intn(len(severities))],
		"message":   fmt.Sprintf("Log event from %s", service),
	}
}

func (c *client) post(service string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.serverURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+tokens[service])
	req.Header.Set("Content-Type", "application/json")

	return c.http.Do(req)
}

func (c *client) sendOne(service string) {
	resp, err := c.post(service, makeLog(service))
	if err != nil {
		fmt.Printf("[%s] ERROR: %v\n", service, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errBody)
		fmt.Printf("[%s] ONE -> FAILED (%d): %s\n", service, resp.StatusCode, errBody.Error)
		return
	}

	fmt.Printf("[%s] ONE -> SUCCESS %d\n", service, resp.StatusCode)
}

func (c *client) sendBatch(service string, n int) {
	logs := make([]map[string]string, n)
	for i := range logs {
		logs[i] = makeLog(service)
	}

	resp, err := c.post(service, map[string]any{"logs": logs})
	if err != nil {
		fmt.Printf("[%s] ERROR: %v\n", service, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errBody)
		fmt.Printf("[%s] BATCH x%d -> FAILED (%d): %s\n", service, n, resp.StatusCode, errBody.Error)
		return
	}

	var result struct {
		Accepted int `json:"accepted"`
		Failed   int `json:"failed"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	fmt.Printf("[%s] BATCH x%d -> SUCCESS %d (accepted=%d failed=%d)\n",
		service, n, resp.StatusCode, result.Accepted, result.Failed)
}

type queryFilters struct {
	Service         string
	Severity        string
	Limit           int
	Offset          int
	TimestampStart  string
	TimestampEnd    string
	ReceivedAtStart string
	ReceivedAtEnd   string
}

func (c *client) getLogs(filters queryFilters) error {
	params := url.Values{}
	if filters.Service != "" && filters.Service != "all" {
		params.Set("service", filters.Service)
	}
	if filters.Severity != "" && filters.Severity != "all" {
		params.Set("severity", filters.Severity)
	}
	if filters.TimestampStart != "" {
		params.Set("timestamp_start", filters.TimestampStart)
	}
	if filters.TimestampEnd != "" {
		params.Set("timestamp_end", filters.TimestampEnd)
	}
	if filters.ReceivedAtStart != "" {
		params.Set("received_at_start", filters.ReceivedAtStart)
	}
	if filters.ReceivedAtEnd != "" {
		params.Set("received_at_end", filters.ReceivedAtEnd)
	}
	params.Set("limit", strconv.Itoa(filters.Limit))
	if filters.Offset > 0 {
		params.Set("offset", strconv.Itoa(filters.Offset))
	}

	fullURL := c.serverURL + "?" + params.Encode()
	fmt.Println("Fetching:", fullURL)

	resp, err := c.http.Get(fullURL)
	if err != nil {
		return fmt.Errorf("GET failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errBody)
		return fmt.Errorf("GET failed (%d): %s", resp.StatusCode, errBody.Error)
	}

	var result struct {
		Count   int                `json:"count"`
		Results []models.LogRecord `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	fmt.Printf("Retrieved %d logs\n", result.Count)
	for _, rec := range result.Results {
		fmt.Printf("  %-6d %-18s %-6s %-24s %s\n",
			rec.ID, rec.Service, rec.Severity, rec.Timestamp, rec.Message)
	}
	return nil
}

package main

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

type Config struct {
	TotalRequests int
	Concurrency   int
	Format        string
	Rows          int
	Description   string
}

type Result struct {
	JobID          string
	Status         int
	AcceptDuration time.Duration
	TotalDuration  time.Duration // Time until job "COMPLETED"
	Error          error
}

func main() {
	// Define Scenarios
	scenarios := []Config{
		{TotalRequests: 50, Concurrency: 10, Format: "pdf", Rows: 100, Description: "Baseline (Low Load)"},
		{TotalRequests: 100, Concurrency: 50, Format: "csv", Rows: 2000, Description: "Stress Test (High Concurrency)"},
		{
			TotalRequests: 5,
			Concurrency:   2,
			Format:        "excel",
			Rows:          100000,
			Description:   "Large Input - 100k rows",
		},
	}

	for _, scenario := range scenarios {
		runScenario(scenario)
	}
}

func runScenario(cfg Config) {
	fmt.Printf("\n=======================================================\n")
	fmt.Printf("Scenario: %s\n", cfg.Description)
	fmt.Printf("Requests: %d | Concurrency: %d | Format: %s | Rows: %d\n", cfg.TotalRequests, cfg.Concurrency, cfg.Format, cfg.Rows)
	fmt.Printf("=======================================================\n")

	input := buildInput(cfg.Rows)

	results := make(chan Result, cfg.TotalRequests)
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, cfg.Concurrency) // Limit concurrency

	startTime := time.Now()

	for i := 0; i < cfg.TotalRequests; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			res := executeRequest(cfg, input)
			results <- res

			// Simple progress bar
			if id%10 == 0 {
				fmt.Print(".")
			}
		}(i)
	}

	wg.Wait()
	close(results)
	totalTime := time.Since(startTime)
	fmt.Println()

	// Analyze Results
	var acceptLatencies []time.Duration
	var processLatencies []time.Duration
	var failures int

	for res := range results {
		if res.Error != nil || res.Status != 202 {
			failures++
		} else {
			acceptLatencies = append(acceptLatencies, res.AcceptDuration)
			if res.TotalDuration > 0 {
				processLatencies = append(processLatencies, res.TotalDuration)
			}
		}
	}

	sort.Slice(acceptLatencies, func(i, j int) bool { return acceptLatencies[i] < acceptLatencies[j] })
	sort.Slice(processLatencies, func(i, j int) bool { return processLatencies[i] < processLatencies[j] })

	// Report
	fmt.Printf("\nRESULTS:\n")
	fmt.Printf("Total Duration: %v\n", totalTime)
	fmt.Printf("Throughput: %.2f req/sec\n", float64(cfg.TotalRequests)/totalTime.Seconds())
	fmt.Printf("Success Rate: %.1f%%\n", float64(cfg.TotalRequests-failures)/float64(cfg.TotalRequests)*100)

	if len(acceptLatencies) > 0 {
		fmt.Printf("API Response Time (P95): %v\n", acceptLatencies[int(float64(len(acceptLatencies))*0.95)])
	}
	if len(processLatencies) > 0 {
		fmt.Printf("Job Completion Time (P95): %v\n", processLatencies[int(float64(len(processLatencies))*0.95)])
	}
}

// buildInput renders a well-formed delimited body with four columns.
func buildInput(rows int) []byte {
	var sb strings.Builder
	sb.WriteString("id%name%score%notes\n")
	for i := 1; i <= rows; i++ {
		fmt.Fprintf(&sb, "%d%%user_%d%%%.2f%%generated row\n", i, i, float64(i)*0.1)
	}
	return []byte(sb.String())
}

func executeRequest(cfg Config, input []byte) Result {
	secret := "devsecret"
	baseURL := "http://localhost:8080"

	start := time.Now()

	// 1. Build the multipart body
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, _ := writer.CreateFormFile("file", "bench_input.txt")
	part.Write(input)
	writer.WriteField("columns", "4")
	writer.WriteField("format", cfg.Format)
	writer.WriteField("email", "benchmark@example.com")
	writer.Close()

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	// Sign
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("POST" + "/convert" + body.String() + timestamp))
	signature := hex.EncodeToString(mac.Sum(nil))

	req, _ := http.NewRequest("POST", baseURL+"/convert", bytes.NewReader(body.Bytes()))
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Timestamp", timestamp)
	req.Header.Set("X-Signature", signature)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Error: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != 202 {
		return Result{Status: resp.StatusCode, AcceptDuration: time.Since(start)}
	}

	var respJson map[string]string
	json.NewDecoder(resp.Body).Decode(&respJson)
	jobID := respJson["job_id"]
	acceptTime := time.Since(start)

	// 2. Poll for Completion
	// Poll every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	timeout := time.After(300 * time.Second) // Large inputs take a while

	for {
		select {
		case <-timeout:
			return Result{JobID: jobID, Status: 202, AcceptDuration: acceptTime, Error: fmt.Errorf("timeout waiting for job")}
		case <-ticker.C:
			_, finished, err := checkStatus(baseURL, jobID)
			if err != nil {
				continue // Retry on temp error
			}
			if finished {
				return Result{
					JobID:          jobID,
					Status:         202,
					AcceptDuration: acceptTime,
					TotalDuration:  time.Since(start),
				}
			}
			// If status is PENDING or PROCESSING, continue
		}
	}
}

func checkStatus(baseURL, jobID string) (string, bool, error) {
	req, _ := http.NewRequest("GET", baseURL+"/jobs/"+jobID, nil)
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", false, fmt.Errorf("status check failed: %d", resp.StatusCode)
	}

	var data map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", false, err
	}

	status, _ := data["status"].(string)
	if status == "COMPLETED" || status == "FAILED" {
		return status, true, nil
	}
	return status, false, nil
}

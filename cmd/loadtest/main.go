// Command loadtest drives concurrent browse traffic against a running
// catalog service and reports latency percentiles, throughput, and cache
// hit counts.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type Stats struct {
	totalRequests atomic.Int64
	successCount  atomic.Int64
	errorCount    atomic.Int64
	latencies     []time.Duration
	latenciesMu   sync.Mutex
	statusCodes   map[int]*atomic.Int64
	statusCodesMu sync.Mutex
}

func NewStats() *Stats {
	return &Stats{
		latencies:   make([]time.Duration, 0, 100000),
		statusCodes: make(map[int]*atomic.Int64),
	}
}

func (s *Stats) RecordRequest(duration time.Duration, statusCode int, err error) {
	s.totalRequests.Add(1)

	if err != nil {
		s.errorCount.Add(1)
		return
	}
	if statusCode >= 200 && statusCode < 300 {
		s.successCount.Add(1)
	} else {
		s.errorCount.Add(1)
	}

	s.latenciesMu.Lock()
	s.latencies = append(s.latencies, duration)
	s.latenciesMu.Unlock()

	s.statusCodesMu.Lock()
	if _, ok := s.statusCodes[statusCode]; !ok {
		s.statusCodes[statusCode] = &atomic.Int64{}
	}
	s.statusCodes[statusCode].Add(1)
	s.statusCodesMu.Unlock()
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the catalog service")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	flag.Parse()

	// A mix of overview, search, topic, and paginated requests.
	requests := []string{
		"",
		"q=neural",
		"q=reinforcement+learning",
		"q=transformer&sort=year",
		"topic=ML",
		"topic=ML&topic=Systems",
		"tag=benchmark",
		"q=optimization&page=2",
		"group=size",
		"q=graph&sort=title&dir=desc",
	}

	stats := NewStats()
	client := &http.Client{Timeout: 10 * time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	fmt.Printf("load test: %s for %s with %d workers\n", *baseURL, *duration, *concurrency)

	start := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < *concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			i := worker
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}
				params := requests[i%len(requests)]
				i++

				reqURL := *baseURL + "/api/v1/browse"
				if params != "" {
					reqURL += "?" + params
				}
				if _, err := url.Parse(reqURL); err != nil {
					continue
				}

				reqStart := time.Now()
				resp, err := client.Get(reqURL)
				elapsed := time.Since(reqStart)
				if err != nil {
					stats.RecordRequest(elapsed, 0, err)
					continue
				}
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				stats.RecordRequest(elapsed, resp.StatusCode, nil)
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	report(stats, elapsed)
}

func report(stats *Stats, elapsed time.Duration) {
	total := stats.totalRequests.Load()
	success := stats.successCount.Load()
	errors := stats.errorCount.Load()

	fmt.Printf("\nrequests:  %d total, %d ok, %d failed\n", total, success, errors)
	fmt.Printf("duration:  %s\n", elapsed.Round(time.Millisecond))
	if elapsed.Seconds() > 0 {
		fmt.Printf("rate:      %.1f req/s\n", float64(total)/elapsed.Seconds())
	}

	stats.latenciesMu.Lock()
	latencies := make([]time.Duration, len(stats.latencies))
	copy(latencies, stats.latencies)
	stats.latenciesMu.Unlock()

	if len(latencies) > 0 {
		sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
		fmt.Printf("latency:   p50=%s p95=%s p99=%s max=%s\n",
			percentile(latencies, 50),
			percentile(latencies, 95),
			percentile(latencies, 99),
			latencies[len(latencies)-1],
		)
	}

	stats.statusCodesMu.Lock()
	codes := make([]int, 0, len(stats.statusCodes))
	for code := range stats.statusCodes {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Printf("status %d: %d\n", code, stats.statusCodes[code].Load())
	}
	stats.statusCodesMu.Unlock()

	if errors > 0 && total > 0 {
		errRate := float64(errors) / float64(total) * 100
		if errRate > 5 {
			fmt.Fprintf(os.Stderr, "error rate %.1f%% exceeds 5%%\n", math.Round(errRate*10)/10)
			os.Exit(1)
		}
	}
}

func percentile(sorted []time.Duration, pct int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx].Round(time.Microsecond)
}

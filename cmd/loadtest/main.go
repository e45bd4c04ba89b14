package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

type bailoutPayload struct {
	NetworkDOT string  `json:"network_dot"`
	Trigger    int     `json:"trigger"`
	FundLimit  float64 `json:"fund_limit"`
}

type result struct {
	latency time.Duration
	status  int
	err     error
}

func main() {
	url := flag.String("url", "http://localhost:8080/v1/bailout", "bailout endpoint URL")
	rps := flag.Int("rps", 50, "target requests per second")
	duration := flag.Duration("duration", 60*time.Second, "test duration")
	workers := flag.Int("workers", 50, "number of concurrent workers")
	timeout := flag.Duration("timeout", 5*time.Second, "HTTP client timeout")
	trigger := flag.Int("trigger", 1, "failing bank id")
	fund := flag.Float64("fund", 10, "bailout fund limit")
	p90Target := flag.Duration("p90", 30*time.Millisecond, "P90 latency target")
	flag.Parse()

	if *rps <= 0 || *duration <= 0 || *workers <= 0 {
		fmt.Fprintln(os.Stderr, "rps, duration and workers must be > 0")
		os.Exit(2)
	}

	payload := bailoutPayload{
		NetworkDOT: `digraph banks {
			1 [name="JPM", equity=100];
			2 [name="BNP", equity=20];
			3 [name="HSBC", equity=25];
			4 [name="ING", equity=5];
			5 [name="UBS", equity=12];
			1 -> 2 [exposure=30];
			1 -> 3 [exposure=30];
			3 -> 4 [exposure=10];
			4 -> 5 [exposure=15];
			2 -> 5 [exposure=4];
		}`,
		Trigger:   *trigger,
		FundLimit: *fund,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal payload: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: *timeout}
	jobs := make(chan struct{}, *workers)

	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make([]result, 0, *rps*int(duration.Seconds())+1)

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				start := time.Now()
				req, err := http.NewRequest(http.MethodPost, *url, bytes.NewReader(body))
				if err != nil {
					mu.Lock()
					results = append(results, result{latency: time.Since(start), err: err})
					mu.Unlock()
					continue
				}
				req.Header.Set("Content-Type", "application/json")

				resp, err := client.Do(req)
				lat := time.Since(start)
				if err != nil {
					mu.Lock()
					results = append(results, result{latency: lat, err: err})
					mu.Unlock()
					continue
				}

				_, _ = io.Copy(io.Discard, resp.Body)
				_ = resp.Body.Close()
				mu.Lock()
				results = append(results, result{latency: lat, status: resp.StatusCode})
				mu.Unlock()
			}
		}()
	}

	interval := time.Second / time.Duration(*rps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	deadline := time.Now().Add(*duration)
	launched := 0

	for now := range ticker.C {
		if now.After(deadline) {
			break
		}
		jobs <- struct{}{}
		launched++
	}
	close(jobs)
	wg.Wait()

	latencies := make([]float64, 0, len(results))
	success2xx := 0
	non2xx := 0
	errs := 0

	for _, r := range results {
		latencies = append(latencies, ms(r.latency))
		if r.err != nil {
			errs++
			continue
		}
		if r.status >= 200 && r.status < 300 {
			success2xx++
		} else {
			non2xx++
		}
	}

	if len(latencies) == 0 {
		fmt.Fprintln(os.Stderr, "no requests executed")
		os.Exit(1)
	}

	sort.Float64s(latencies)
	p50 := stat.Quantile(0.50, stat.Empirical, latencies, nil)
	p90 := stat.Quantile(0.90, stat.Empirical, latencies, nil)
	p99 := stat.Quantile(0.99, stat.Empirical, latencies, nil)
	avg := stat.Mean(latencies, nil)
	achievedRPS := float64(len(latencies)) / duration.Seconds()

	fmt.Printf("Load test finished\n")
	fmt.Printf("- target_rps: %d\n", *rps)
	fmt.Printf("- achieved_rps: %.2f\n", achievedRPS)
	fmt.Printf("- duration: %s\n", duration.String())
	fmt.Printf("- requests: %d\n", len(latencies))
	fmt.Printf("- 2xx: %d\n", success2xx)
	fmt.Printf("- non_2xx: %d\n", non2xx)
	fmt.Printf("- errors: %d\n", errs)
	fmt.Printf("- avg_ms: %.3f\n", avg)
	fmt.Printf("- p50_ms: %.3f\n", p50)
	fmt.Printf("- p90_ms: %.3f\n", p90)
	fmt.Printf("- p99_ms: %.3f\n", p99)

	minRPS := float64(*rps) * 0.98
	if achievedRPS >= minRPS && p90 < ms(*p90Target) && errs == 0 && non2xx == 0 {
		fmt.Printf("PASS: meets %d RPS and P90 < %s\n", *rps, p90Target.String())
		return
	}

	fmt.Println("FAIL: does not meet target (or has request errors)")
	os.Exit(1)
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

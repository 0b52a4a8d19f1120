// Smoke load test for the public feedback endpoints. Each virtual user
// submits a random entry and reads the public list once per second, and the
// run fails when the error rate reaches 1% or the p95 latency exceeds 500ms.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"guest-feedback-server/client"
)

type recorder struct {
	mu        sync.Mutex
	latencies []time.Duration
	failures  int
	requests  int
}

func (r *recorder) record(d time.Duration, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests++
	r.latencies = append(r.latencies, d)
	if !ok {
		r.failures++
	}
}

func (r *recorder) percentile(p float64) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.latencies) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(r.latencies))
	copy(sorted, r.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

func main() {
	base := flag.String("base", "http://127.0.0.1:8080", "API origin under test")
	vus := flag.Int("vus", 20, "concurrent virtual users")
	duration := flag.Duration("duration", time.Minute, "test duration")
	maxFailRate := flag.Float64("max-fail-rate", 0.01, "failure rate threshold")
	maxP95 := flag.Duration("max-p95", 500*time.Millisecond, "p95 latency threshold")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	rec := &recorder{}
	httpClient := &http.Client{Timeout: 10 * time.Second}

	var wg sync.WaitGroup
	for vu := 1; vu <= *vus; vu++ {
		wg.Add(1)
		go func(vu int) {
			defer wg.Done()
			api := client.New(*base, nil, httpClient)
			rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(vu)))

			for iter := 0; ; iter++ {
				select {
				case <-ctx.Done():
					return
				default:
				}

				start := time.Now()
				_, err := api.Submit(ctx, client.Submission{
					Type:    "review",
					Rating:  rng.Intn(10) + 1,
					Text:    fmt.Sprintf("smoke message %d-%d-%d", time.Now().UnixMilli(), vu, iter),
					Name:    fmt.Sprintf("loadtest-user-%d", vu),
					Contact: fmt.Sprintf("@loadtest-%d", vu),
				})
				rec.record(time.Since(start), err == nil)

				start = time.Now()
				_, err = api.PublicFeedback(ctx)
				rec.record(time.Since(start), err == nil)

				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
			}
		}(vu)
	}
	wg.Wait()

	failRate := 0.0
	if rec.requests > 0 {
		failRate = float64(rec.failures) / float64(rec.requests)
	}
	p95 := rec.percentile(0.95)

	log.Printf("requests=%d failures=%d fail-rate=%.4f p95=%v", rec.requests, rec.failures, failRate, p95)

	if failRate >= *maxFailRate {
		log.Printf("❌ failure rate %.4f breaches threshold %.4f", failRate, *maxFailRate)
		os.Exit(1)
	}
	if p95 > *maxP95 {
		log.Printf("❌ p95 latency %v breaches threshold %v", p95, *maxP95)
		os.Exit(1)
	}
	log.Println("✅ thresholds met")
}

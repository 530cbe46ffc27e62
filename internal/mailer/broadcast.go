package mailer

import (
	"context"
	"sync"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/metrics"
	"golang.org/x/sync/errgroup"
)

type Failure struct {
	Recipient string `json:"recipient"`
	Error     string `json:"error"`
}

type BroadcastResult struct {
	Sent     int       `json:"sent"`
	Failed   int       `json:"failed"`
	Total    int       `json:"total"`
	Failures []Failure `json:"failures,omitempty"`
}

// Broadcast sends one message per recipient concurrently and waits for every
// outcome. Individual failures are counted, never returned.
func Broadcast(ctx context.Context, sender Sender, recipients []string, build func(to string) Message) BroadcastResult {
	result := BroadcastResult{Total: len(recipients)}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for _, to := range recipients {
		g.Go(func() error {
			err := sender.Send(ctx, build(to))
			metrics.EmailResult("broadcast", err)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				result.Failures = append(result.Failures, Failure{Recipient: to, Error: err.Error()})
			} else {
				result.Sent++
			}
			return nil
		})
	}
	g.Wait()
	return result
}

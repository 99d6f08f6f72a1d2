// Command test_discovery is a manual integration test for the GitHub client
// and candidate discovery. It hits the live API, so it needs network access;
// set GITHUB_TOKEN to avoid anonymous rate limits.
//
// Usage:
//
//	go run cmd/tools/test_discovery/main.go <owner/repo-or-org-or-username>
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/signal-now/signal-agent/internal/discovery"
	"github.com/signal-now/signal-agent/internal/github"
	"github.com/signal-now/signal-agent/internal/types"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: test_discovery <owner/repo-or-org-or-username>")
		os.Exit(1)
	}
	identifier := os.Args[1]

	client := github.NewClient(&github.Options{Token: os.Getenv("GITHUB_TOKEN")})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fmt.Println("=== Discovery Integration Test ===")
	fmt.Println()

	fmt.Printf("Test 1: Fetching activity for %s...\n", identifier)
	events, err := client.FetchEvents(ctx, identifier)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: FetchEvents: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  %d events\n", len(events))
	for i, ev := range events {
		if i >= 3 {
			break
		}
		fmt.Printf("  [%s] %s: %s\n", ev.Kind, ev.Repository, firstLine(ev.Message))
	}
	fmt.Println()

	targetType := types.TargetUsername
	if strings.Contains(identifier, "/") {
		targetType = types.TargetRepository
	}

	fmt.Printf("Test 2: Resolving %s candidates...\n", targetType)
	resolver := discovery.NewResolver(client)
	candidates, warnings := resolver.Discover(ctx,
		[]discovery.Target{{Type: targetType, Value: identifier}},
		"", 10)
	for _, w := range warnings {
		fmt.Printf("  warning: %s: %s\n", w.Target, w.Message)
	}
	fmt.Printf("  %d candidates\n", len(candidates))
	for _, c := range candidates {
		fmt.Printf("  %-20s score=%-3d followers=%d\n", c.Handle, c.HeuristicScore, c.FollowerCount)
	}

	fmt.Println()
	fmt.Println("PASS")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

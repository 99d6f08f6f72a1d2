package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/signal-now/signal-agent/internal/discovery"
	"github.com/signal-now/signal-agent/internal/enrich"
	"github.com/signal-now/signal-agent/internal/github"
	"github.com/signal-now/signal-agent/internal/observability"
	"github.com/signal-now/signal-agent/internal/types"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find and rank candidates from repos, orgs, and usernames",
	Long: `Resolves repositories and organizations into their recent contributors,
enriches each candidate's profile, and ranks them against your outreach goal.`,
	RunE: runDiscoverCmd,
}

var (
	discoverRepos   []string
	discoverOrgs    []string
	discoverUsers   []string
	discoverGoal    string
	discoverToken   string
	discoverLimit   int
	discoverEnrich  bool
	discoverJSON    bool
)

func init() {
	discoverCmd.Flags().StringSliceVar(&discoverRepos, "repo", nil, "Repository to mine for contributors (owner/name, repeatable)")
	discoverCmd.Flags().StringSliceVar(&discoverOrgs, "org", nil, "Organization to mine for contributors (repeatable)")
	discoverCmd.Flags().StringSliceVar(&discoverUsers, "user", nil, "Username to include directly (repeatable)")
	discoverCmd.Flags().StringVarP(&discoverGoal, "goal", "g", "", "Outreach goal to rank against (defaults to OUTREACH_GOAL env var)")
	discoverCmd.Flags().StringVar(&discoverToken, "github-token", "", "GitHub token (defaults to GITHUB_TOKEN env var)")
	discoverCmd.Flags().IntVar(&discoverLimit, "limit", 20, "Maximum candidates to return")
	discoverCmd.Flags().BoolVar(&discoverEnrich, "enrich", false, "Fetch candidate websites for extra context")
	discoverCmd.Flags().BoolVar(&discoverJSON, "json", false, "Print raw candidates as JSON")
	rootCmd.AddCommand(discoverCmd)
}

func runDiscoverCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	var targets []discovery.Target
	for _, repo := range discoverRepos {
		targets = append(targets, discovery.Target{Type: types.TargetRepository, Value: repo})
	}
	for _, org := range discoverOrgs {
		targets = append(targets, discovery.Target{Type: types.TargetOrganization, Value: org})
	}
	for _, user := range discoverUsers {
		targets = append(targets, discovery.Target{Type: types.TargetUsername, Value: user})
	}
	if len(targets) == 0 {
		return fmt.Errorf("at least one --repo, --org, or --user is required")
	}

	token := discoverToken
	if !cmd.Flags().Changed("github-token") {
		token = os.Getenv("GITHUB_TOKEN")
	}
	goal := discoverGoal
	if !cmd.Flags().Changed("goal") {
		goal = os.Getenv("OUTREACH_GOAL")
	}

	githubClient := github.NewClient(&github.Options{Token: token})
	resolver := discovery.NewResolver(githubClient)

	candidates, warnings := resolver.Discover(ctx, targets, goal, discoverLimit)

	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", w.Target, w.Message)
	}

	if discoverJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(candidates)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintCandidates(candidates)

	if discoverEnrich {
		for i, c := range candidates {
			if i >= 5 || !c.HasWebsite() {
				continue
			}
			summary, err := enrich.Website(ctx, c.Website, nil)
			if err != nil {
				continue
			}
			fmt.Printf("%s: %s", c.Handle, summary.Title)
			if summary.Description != "" {
				fmt.Printf(" - %s", summary.Description)
			}
			fmt.Println()
		}
	}

	return nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/signal-now/signal-agent/internal/agent"
	"github.com/signal-now/signal-agent/internal/config"
	"github.com/signal-now/signal-agent/internal/db"
	"github.com/signal-now/signal-agent/internal/github"
	"github.com/signal-now/signal-agent/internal/llm"
	"github.com/signal-now/signal-agent/internal/observability"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <target>",
	Short: "Assess one target's outreach readiness",
	Long: `Fetches the target's recent public activity, runs the three-stage
assessment (research, strategy, icebreaker), and prints the decision.

The target is a GitHub username or an owner/name repository path.
Configuration can be loaded from a JSON file using --config; command-line
arguments override config file values. Without --db-url the run is
stateless: no change detection, no history.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyzeCmd,
}

var (
	analyzeConfigPath string
	analyzeSource     string
	analyzeGoal       string
	analyzeAPIKey     string
	analyzeToken      string
	analyzeDBURL      string
	analyzeUserID     string
	analyzeJSON       bool
	analyzeVerbose    bool
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	analyzeCmd.Flags().StringVarP(&analyzeSource, "source", "s", "", "Your own GitHub handle (defaults to SOURCE_GITHUB_HANDLE env var)")
	analyzeCmd.Flags().StringVarP(&analyzeGoal, "goal", "g", "", "Outreach goal, e.g. \"find Rust developers\" (defaults to OUTREACH_GOAL env var)")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Gemini API key (defaults to GEMINI_API_KEY env var)")
	analyzeCmd.Flags().StringVar(&analyzeToken, "github-token", "", "GitHub token (defaults to GITHUB_TOKEN env var)")
	analyzeCmd.Flags().StringVar(&analyzeDBURL, "db-url", "", "PostgreSQL connection URL for snapshots and history (defaults to DATABASE_URL env var)")
	analyzeCmd.Flags().StringVar(&analyzeUserID, "user-id", "", "User UUID owning the snapshot (required with --db-url)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the raw result as JSON")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print each stage's output")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadCLIConfig(analyzeConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("source") {
		cfg.SourceHandle = analyzeSource
	}
	if cmd.Flags().Changed("goal") {
		cfg.Goal = analyzeGoal
	}
	if cmd.Flags().Changed("api-key") {
		cfg.GeminiAPIKey = analyzeAPIKey
	}
	if cmd.Flags().Changed("github-token") {
		cfg.GithubToken = analyzeToken
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = analyzeDBURL
	}

	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("a Gemini API key is required (--api-key or GEMINI_API_KEY)")
	}
	if cfg.SourceHandle == "" {
		return fmt.Errorf("your own GitHub handle is required (--source or SOURCE_GITHUB_HANDLE)")
	}

	githubClient := github.NewClient(&github.Options{Token: cfg.GithubToken})

	llmClient, err := llm.NewClient(ctx, llm.DefaultGeminiConfig(), cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer llmClient.Close()

	var store agent.SnapshotStore
	userID := uuid.Nil
	if cfg.DatabaseURL != "" {
		if analyzeUserID == "" {
			return fmt.Errorf("--user-id is required when a database URL is set")
		}
		userID, err = uuid.Parse(analyzeUserID)
		if err != nil {
			return fmt.Errorf("invalid --user-id: %w", err)
		}
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		store = database
	}

	pipeline, err := agent.New(agent.Options{
		Source: githubClient,
		LLM:    llmClient,
		Store:  store,
	})
	if err != nil {
		return err
	}

	result, err := pipeline.Analyze(ctx, agent.AnalyzeRequest{
		UserID:       userID,
		SourceHandle: cfg.SourceHandle,
		Target:       args[0],
		Goal:         cfg.Goal,
	})
	if err != nil {
		return err
	}

	if analyzeJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	printer := observability.NewPrinter(os.Stdout)
	if analyzeVerbose && result.Trace != nil {
		printer.PrintResearchReport(result.Trace.Researcher)
		printer.PrintStrategy(result.Trace.Strategist)
	}
	printer.PrintResult(result)
	return nil
}

// loadCLIConfig loads the JSON config file when given, then fills gaps from
// the environment.
func loadCLIConfig(path string) (config.Config, error) {
	var cfg config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loaded
	}
	return cfg.MergeWithDefaults(*config.FromEnv()), nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/daniel-SCAU/oldAIagent/internal/client"
	"github.com/daniel-SCAU/oldAIagent/internal/ingest"
)

var (
	logger     *slog.Logger
	baseURL    string
	apiKey     string
	configPath string
)

// ctlConfig is the optional YAML config file. Flags win over the file,
// the file wins over environment variables.
type ctlConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "msgmonctl",
		Short: "Command line client for the msgmon message aggregation API",
	}

	root.PersistentFlags().StringVar(&baseURL, "base-url", "", "API base URL (default: $API_BASE_URL or http://localhost:8000)")
	root.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key (default: $API_KEY)")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")

	root.AddCommand(conversationsCmd())
	root.AddCommand(summaryCmd())
	root.AddCommand(tasksCmd())
	root.AddCommand(suggestCmd())
	root.AddCommand(searchCmd())
	root.AddCommand(ingestCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveClient builds an API client from flags, config file, and
// environment, in that order of precedence.
func resolveClient() (*client.Client, error) {
	url := baseURL
	key := apiKey

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		var cfg ctlConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		if url == "" {
			url = cfg.BaseURL
		}
		if key == "" {
			key = cfg.APIKey
		}
	}

	if url == "" {
		url = os.Getenv("API_BASE_URL")
	}
	if url == "" {
		url = "http://localhost:8000"
	}
	if key == "" {
		key = os.Getenv("API_KEY")
	}
	if key == "" {
		return nil, fmt.Errorf("no API key: set --api-key, api_key in the config file, or $API_KEY")
	}

	return client.New(url, key), nil
}

func conversationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conversations",
		Short: "List known conversation IDs",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveClient()
			if err != nil {
				return err
			}
			ids, err := c.ListConversations(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}
}

func summaryCmd() *cobra.Command {
	var request bool
	cmd := &cobra.Command{
		Use:   "summary [conversation-id]",
		Short: "Show the latest completed summary for a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveClient()
			if err != nil {
				return err
			}
			if request {
				task, err := c.RequestSummary(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				logger.Info("summary task enqueued", "id", task.ID, "conversation_id", task.ConversationID)
				return nil
			}
			summary, err := c.GetSummary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(summary)
			return nil
		},
	}
	cmd.Flags().BoolVar(&request, "request", false, "enqueue a new summary task instead of reading an existing one")
	return cmd
}

func tasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List summary tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveClient()
			if err != nil {
				return err
			}
			tasks, err := c.ListTasks(cmd.Context())
			if err != nil {
				return err
			}
			data, _ := json.MarshalIndent(tasks, "", "  ")
			fmt.Println(string(data))
			return nil
		},
	}
}

func suggestCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "suggest [conversation-id]",
		Short: "Ask for reply suggestions for a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveClient()
			if err != nil {
				return err
			}
			suggestions, err := c.RequestSuggestions(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			for i, s := range suggestions {
				fmt.Printf("%d. %s\n", i+1, s)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 3, "maximum number of suggestions")
	return cmd
}

func searchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search stored messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveClient()
			if err != nil {
				return err
			}
			results, err := c.Search(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			data, _ := json.MarshalIndent(results, "", "  ")
			fmt.Println(string(data))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results")
	return cmd
}

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [platform]",
		Short: "Pull messages from a platform and forward them to the API",
		Long: "Fetches messages from one platform (sms, whatsapp, messenger, outlook, aula)\n" +
			"using the platform's environment credentials and posts them to the API.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"sms", "whatsapp", "messenger", "outlook", "aula"},
		RunE: func(cmd *cobra.Command, args []string) error {
			url := baseURL
			if url == "" {
				url = os.Getenv("API_BASE_URL")
			}
			if url == "" {
				url = "http://localhost:8000"
			}
			key := apiKey
			if key == "" {
				key = os.Getenv("API_KEY")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fwd := ingest.NewForwarder(url, key, logger)
			return runIngest(ctx, args[0], fwd)
		},
	}
}

func runIngest(ctx context.Context, platform string, fwd *ingest.Forwarder) error {
	switch platform {
	case "sms":
		adapter := ingest.NewSMS(os.Getenv("TWILIO_ACCOUNT_SID"), os.Getenv("TWILIO_AUTH_TOKEN"), logger)
		return adapter.Ingest(ctx, fwd)
	case "whatsapp":
		adapter := ingest.NewWhatsApp(os.Getenv("WHATSAPP_TOKEN"), os.Getenv("WHATSAPP_PHONE_NUMBER_ID"), logger)
		return adapter.Ingest(ctx, fwd)
	case "messenger":
		adapter := ingest.NewMessenger(os.Getenv("MESSENGER_PAGE_ID"), os.Getenv("MESSENGER_PAGE_TOKEN"), logger)
		return adapter.Ingest(ctx, fwd)
	case "outlook":
		adapter := ingest.NewOutlook(os.Getenv("OUTLOOK_TOKEN"), os.Getenv("OUTLOOK_USER_ID"), logger)
		return adapter.Ingest(ctx, fwd)
	case "aula":
		adapter := ingest.NewAula(os.Getenv("AULA_API_URL"), os.Getenv("AULA_TOKEN"), logger)
		return adapter.Ingest(ctx, fwd)
	default:
		return fmt.Errorf("unknown platform %q", platform)
	}
}

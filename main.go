package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danharahap/schedbot/internal/config"
	"github.com/danharahap/schedbot/internal/extract"
	"github.com/danharahap/schedbot/internal/gcal"
	"github.com/danharahap/schedbot/internal/intent"
	"github.com/danharahap/schedbot/internal/schedule"
	"github.com/danharahap/schedbot/internal/telegram"
	"github.com/danharahap/schedbot/internal/timeutil"
)

func main() {
	cfg := config.LoadFromEnv()

	gcalClient, err := initCalendar(cfg)
	if err != nil {
		fatal("creating calendar client", err)
	}

	extractor := initExtractor(cfg)

	loc, fallback := timeutil.ResolveLocation(cfg.Timezone)
	if fallback {
		fmt.Printf("Warning: timezone %q not found, using fixed UTC+7 offset\n", cfg.Timezone)
	}

	orchestrator := schedule.New(
		gcalClient,
		extractor,
		intent.NewValidator(cfg.DefaultCategory),
		schedule.Config{
			ExcludeSubstring: cfg.ExcludeSubstring,
			FetchLimit:       cfg.FetchLimit,
			DisplayLimit:     cfg.DisplayLimit,
			Location:         loc,
		},
	)

	tgClient, err := initTelegram(cfg, orchestrator)
	if err != nil {
		fatal("creating telegram client", err)
	}

	fmt.Println("Bot is running...")
	waitForShutdown(tgClient)
}

func initCalendar(cfg *config.Config) (*gcal.Client, error) {
	client, err := gcal.NewClient(cfg.GoogleCredentialsFile, cfg.GoogleTokenFile, cfg.CalendarID, cfg.Timezone)
	if err != nil {
		return nil, err
	}

	if !client.IsAuthenticated() {
		fmt.Println("Calendar: Not authenticated - open this URL in your browser:")
		fmt.Println(client.GetAuthURL())
		fmt.Print("Paste the authorization code here: ")

		var code string
		if _, err := fmt.Scanln(&code); err != nil {
			return nil, fmt.Errorf("failed to read authorization code: %w", err)
		}
		if err := client.ExchangeCode(context.Background(), code); err != nil {
			return nil, err
		}
	}

	fmt.Println("Calendar: Client authenticated")
	return client, nil
}

func initExtractor(cfg *config.Config) *extract.Client {
	client := extract.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Categories)
	if !client.IsConfigured() {
		fmt.Println("Warning: GEMINI_API_KEY not set, schedule extraction will fail")
	} else {
		fmt.Printf("Extractor configured (model %s)\n", cfg.GeminiModel)
	}
	return client
}

func initTelegram(cfg *config.Config, orchestrator *schedule.Orchestrator) (*telegram.Client, error) {
	handler := telegram.NewHandler(orchestrator)

	tgClient, err := telegram.NewClient(telegram.ClientConfig{
		APIID:       cfg.TelegramAPIID,
		APIHash:     cfg.TelegramAPIHash,
		BotToken:    cfg.TelegramBotToken,
		SessionPath: cfg.SessionFile,
		Handler:     handler,
	})
	if err != nil {
		return nil, err
	}

	if err := tgClient.Connect(); err != nil {
		return nil, err
	}

	return tgClient, nil
}

func fatal(context string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", context, err)
	os.Exit(1)
}

func waitForShutdown(tgClient *telegram.Client) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	fmt.Println("Shutting down...")
	tgClient.Disconnect()
}

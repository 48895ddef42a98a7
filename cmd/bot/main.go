package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"haru-assistant/internal/calendar"
	"haru-assistant/internal/config"
	"haru-assistant/internal/diary"
	"haru-assistant/internal/gateway"
	"haru-assistant/internal/history"
	"haru-assistant/internal/llm"
	"haru-assistant/internal/router"
	"haru-assistant/internal/scheduler"
	"haru-assistant/internal/session"
	"haru-assistant/internal/speech"
	"haru-assistant/internal/sports"
	"haru-assistant/internal/storage"
	"haru-assistant/internal/telegram"
	"haru-assistant/internal/weather"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	gw := gateway.NewClient(cfg.GatewayBaseURL(), gateway.Options{
		Timeout:      cfg.RequestTimeout,
		RetryBudget:  cfg.RetryBudget,
		Backoff:      cfg.RetryBackoff,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})

	chatClient, err := llm.NewClient(cfg, gw)
	if err != nil {
		log.Fatalf("failed to create chat client: %v", err)
	}

	var rec storage.Recorder
	if cfg.LogFilePath != "" {
		fr, err := storage.NewFileRecorder(cfg.LogFilePath)
		if err != nil {
			log.Printf("failed to init file recorder: %v", err)
		} else {
			rec = fr
		}
	}

	var voice speech.Sink
	if cfg.VoiceEnabled {
		voice = speech.LogSink{}
	}

	weatherSvc := weather.NewService(gw)
	r := router.New(router.Deps{
		Diary:    diary.NewService(gw),
		Calendar: calendar.NewService(gw),
		Weather:  weatherSvc,
		Sports:   sports.NewService(gw),
		Chat:     chatClient,
		History:  history.NewManager(cfg.ContextWindow),
		Recorder: rec,
		Voice:    voice,
	})

	resolver := session.NewResolver(gw, nil)
	bot, err := telegram.New(cfg.TelegramBotToken, cfg.AllowedUsers, r, resolver, cfg.GatewayAccessToken)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	sched := scheduler.New(cfg.BriefingSpec)
	sched.SetBriefingFunction(func(ctx context.Context) error {
		f, ok := weatherSvc.MidRange(ctx, cfg.BriefingRegion)
		if !ok {
			return fmt.Errorf("no forecast available for %s", cfg.BriefingRegion)
		}
		text := fmt.Sprintf("오늘의 %s 날씨: %s (최저 %.0f° / 최고 %.0f°)", f.Region, f.Outlook, f.TempMin, f.TempMax)
		for _, id := range cfg.AllowedUsers {
			bot.SendTo(id, text)
		}
		return nil
	})
	if err := sched.Start(); err != nil {
		log.Printf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	bot.Start(context.Background())
}

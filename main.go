package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"AIBlog/internal/config"

	"github.com/spf13/cobra"
)

var (
	// cfgFile путь к YAML-конфигу
	cfgFile string
	// debug включает подробные логи и debug-режим бота и gin
	debug bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "aiblog",
		Short:         "AI-генератор постов для блога",
		Long:          "Генерирует посты для блога по теме (текст и иллюстрация) и показывает их через Telegram-бота и HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runApp,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "путь к конфигу (по умолчанию $CONFIG_PATH или "+config.DefaultPath+")")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "подробные логи")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Запустить бота и HTTP API",
			RunE:  runApp,
		},
		&cobra.Command{
			Use:   "generate <тема>",
			Short: "Сгенерировать один пост и вывести его в JSON",
			Args:  cobra.MinimumNArgs(1),
			RunE:  generateOnce,
		},
	)

	return root
}

func runApp(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.Run(cmd.Context())
}

func generateOnce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	post, err := app.coordinator.GenerateFromTopic(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	out := json.NewEncoder(cmd.OutOrStdout())
	out.SetIndent("", "  ")
	return out.Encode(post)
}

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.GetPath(config.DefaultPath)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if debug {
		cfg.Logging.Level = "debug"
		cfg.Logging.Development = true
		cfg.Telegram.Debug = true
		cfg.HTTP.Debug = true
	}
	return cfg, nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"stock_forecast/internal/app/di"
	"stock_forecast/internal/feature/dashboard/transport/tui"
	"stock_forecast/internal/platform/config"
	"stock_forecast/internal/platform/logging"
)

func main() {
	config.LoadDotEnv()

	// 画面を崩さないようログはファイルへ（未設定なら破棄）
	logFile, err := logging.OpenFile(os.Getenv("TUI_LOG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(logFile, logging.LoadConfig())

	if err := run(); err != nil {
		_ = logFile.Close()
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
	_ = logFile.Close()
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.LoadConfig()

	var model *tui.Model
	gen, err := di.NewForecastGenerator(ctx, cfg)
	if err != nil {
		// APIキー未設定は画面全体をブロックするメッセージとして表示
		slog.Error("forecast generator unavailable", "error", err)
		model = tui.NewConfigErrorModel(err)
	} else {
		dashboard := di.NewDashboard(ctx, di.NewForecastUsecase(gen, nil, cfg), cfg)
		defer dashboard.Close()
		model = tui.NewModel(dashboard)
		defer model.Close()
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

package main

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/marcopiovanello/tubedrop/server"
	"github.com/marcopiovanello/tubedrop/server/config"
	"github.com/marcopiovanello/tubedrop/server/status"
	"github.com/marcopiovanello/tubedrop/server/updater"
	"github.com/spf13/cobra"
)

//go:embed frontend/dist/index.html
//go:embed frontend/dist/assets/*
var frontend embed.FS

var configFile string

func main() {
	root := &cobra.Command{
		Use:           "tubedrop",
		Short:         "Download YouTube videos and audio from the browser",
		Version:       status.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}

	root.PersistentFlags().StringVar(&configFile, "conf", "./config.yml", "Config file path")

	root.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE:  printConfig,
	})

	root.AddCommand(&cobra.Command{
		Use:   "update",
		Short: "Update yt-dlp with its builtin updater",
		RunE:  updateYtdlp,
	})

	if err := root.Execute(); err != nil {
		slog.Error("command failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func serve(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	var appFS fs.FS
	if fp := cfg.Paths.FrontendPath; fp != "" {
		appFS = os.DirFS(fp)
	} else {
		sub, err := fs.Sub(frontend, "frontend/dist")
		if err != nil {
			return err
		}
		appFS = sub
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"download_path", cfg.Paths.DownloadPath,
	)

	if err := server.Run(ctx, &server.RunConfig{App: appFS}); err != nil {
		return err
	}

	slog.Info("server exited cleanly")
	return nil
}

func printConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	out, err := cfg.YAML()
	if err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func updateYtdlp(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	executable, err := updater.EnsureExecutable(cmd.Context(), cfg.Paths)
	if err != nil {
		return err
	}

	return updater.UpdateExecutable(cmd.Context(), executable)
}

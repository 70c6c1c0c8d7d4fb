// Command ocr-cli recognizes a photo or PDF on the local machine and prints
// the text, or saves it to a file when it is too long for one message.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Lllllllleong/documentocr/internal/config"
	"github.com/Lllllllleong/documentocr/internal/messenger"
	"github.com/Lllllllleong/documentocr/internal/models"
	"github.com/Lllllllleong/documentocr/internal/services"
)

func main() {
	os.Exit(run())
}

func run() int {
	kindFlag := flag.String("kind", "", "input kind: photo or pdf (default: from the file extension)")
	outDir := flag.String("out", ".", "directory for long results saved as attachments")
	verbose := flag.Bool("v", false, "log debug output")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-kind photo|pdf] [-out dir] FILE\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if flag.NArg() != 1 {
		flag.Usage()
		return 2
	}
	path := flag.Arg(0)

	kind := services.KindForObject(path, "")
	if *kindFlag != "" {
		var ok bool
		if kind, ok = models.ParseInputKind(*kindFlag); !ok {
			slog.Error("Unknown input kind.", "kind", *kindFlag)
			return 2
		}
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration.", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("Failed to read input.", "path", path, "error", err)
		return 1
	}
	if cfg.MaxUploadBytes > 0 && int64(len(data)) > cfg.MaxUploadBytes {
		slog.Error("Input exceeds the upload limit.", "bytes", len(data), "limit", cfg.MaxUploadBytes)
		return 1
	}

	engine, closeEngine, err := services.NewEngine(ctx, cfg)
	if err != nil {
		slog.Error("Failed to create recognition engine.", "error", err)
		return 1
	}
	defer closeEngine()

	console := messenger.NewConsole(os.Stdout, os.Stderr, *outDir)
	processor := services.NewPipeline(cfg, engine, console)

	in := models.RawInput{Data: data, Kind: kind, Filename: filepath.Base(path)}
	if _, err := processor.Handle(ctx, models.Chat{ID: "local"}, in); err != nil {
		if errors.Is(err, context.Canceled) {
			return 130
		}
		if services.IsUserError(err) {
			return 2
		}
		return 1
	}
	return 0
}

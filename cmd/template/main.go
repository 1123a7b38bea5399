// Command template writes the built-in mileage spreadsheet template to disk
// so it can be customized and passed back to the server via TEMPLATE_PATH.
//
//	go run ./cmd/template -out template.xlsx
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/pkordes/mileage-log/internal/export"
)

func main() {
	out := flag.String("out", "template.xlsx", "destination file")
	force := flag.Bool("force", false, "overwrite an existing file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if _, err := os.Stat(*out); err == nil && !*force {
		logger.Error("refusing to overwrite existing file (use -force)", "path", *out)
		os.Exit(1)
	}

	b, err := export.DefaultTemplate()
	if err != nil {
		logger.Error("build template", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, b, 0o644); err != nil {
		logger.Error("write template", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("template written", "path", *out, "bytes", len(b))
}

// Command analyze classifies one tongue photo from the command line using the
// same pipeline as the web pages.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"go-prakriti-web/internal/config"
	"go-prakriti-web/internal/container"
	apperrors "go-prakriti-web/internal/errors"
	"go-prakriti-web/internal/logger"
	"go-prakriti-web/internal/render"
)

func main() {
	imagePath := flag.String("image", "", "path to the tongue photo")
	endpoint := flag.String("endpoint", "", "prediction endpoint (overrides PREDICT_API_URL)")
	flag.Parse()

	if *imagePath == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -image <file> [-endpoint URL]")
		os.Exit(2)
	}

	if err := run(*imagePath, *endpoint); err != nil {
		fmt.Fprintln(os.Stderr, apperrors.UserMessage(err))
		logger.WithError(err).Debug("Analysis failed")
		os.Exit(1)
	}
}

func run(imagePath, endpoint string) error {
	if endpoint != "" {
		os.Setenv("PREDICT_API_URL", endpoint)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return apperrors.NewValidationError(err.Error(), err)
	}
	logger.SetLevel(cfg.LogLevel)
	logger.Logger.SetOutput(os.Stderr)
	gin.SetMode(gin.ReleaseMode)

	c, err := container.NewContainer(cfg)
	if err != nil {
		return err
	}
	defer c.Close(context.Background())

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("Cannot read %s", imagePath), err)
	}

	// The declared type is left empty so the content decides.
	ctrl, err := c.Sessions().Create()
	if err != nil {
		return err
	}
	if err := ctrl.SelectBytes(filepath.Base(imagePath), "", data); err != nil {
		return err
	}

	view := ctrl.Snapshot()
	for _, hint := range view.Selection.Hints {
		fmt.Fprintf(os.Stderr, "tip: %s\n", hint.Message)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()
	if err := ctrl.Submit(ctx); err != nil {
		return err
	}

	result := ctrl.Snapshot().Result
	return render.NewResultView(*result, c.Catalog()).WriteText(os.Stdout)
}

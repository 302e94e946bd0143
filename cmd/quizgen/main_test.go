package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/angelmondragon/quizfinderz-backend/internal/catalog"
	"github.com/angelmondragon/quizfinderz-backend/pkg/logger"
)

func TestDecodeCatalogShapes(t *testing.T) {
	cases := map[string]string{
		"array":   `[{"id":1,"title":"Board","variants":[{"price":"10"}]}]`,
		"wrapped": ` {"products":[{"id":"1","title":"Board","variants":[{"price":10}]}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			products, err := decodeCatalog([]byte(body))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(products) != 1 || products[0].ID != "1" {
				t.Fatalf("unexpected products %+v", products)
			}
		})
	}
}

func TestDecodeCatalogEmpty(t *testing.T) {
	if _, err := decodeCatalog([]byte("  ")); !errors.Is(err, catalog.ErrEmptyCatalog) {
		t.Fatalf("expected empty catalog error, got %v", err)
	}
	if _, err := decodeCatalog([]byte("{not json")); err == nil {
		t.Fatalf("expected malformed json error")
	}
}

func TestLoadDotEnvLogsMissingAndUnreadableFiles(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "quizgen", Level: zerolog.DebugLevel, Output: &buf})
	ctx := context.Background()

	loadDotEnv(ctx, logg, filepath.Join(t.TempDir(), "missing.env"))
	if out := buf.String(); !strings.Contains(out, `"level":"debug"`) || !strings.Contains(out, ".env file not found") {
		t.Fatalf("expected debug line for a missing file, got %s", out)
	}

	buf.Reset()
	loadDotEnv(ctx, logg, t.TempDir())
	if out := buf.String(); !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, ".env file could not be loaded") {
		t.Fatalf("expected warning for an unreadable file, got %s", out)
	}
}

// Command quizgen prints the question set the engine produces for a catalog file.
//
//	quizgen -catalog products.json -style fun
//
// The catalog is either a JSON array of products or an object with a "products" array.
// The generative source is used when QUIZFINDERZ_LLM_* is configured and -offline is not set.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/angelmondragon/quizfinderz-backend/internal/catalog"
	"github.com/angelmondragon/quizfinderz-backend/internal/questions"
	"github.com/angelmondragon/quizfinderz-backend/pkg/config"
	"github.com/angelmondragon/quizfinderz-backend/pkg/enums"
	"github.com/angelmondragon/quizfinderz-backend/pkg/llm"
	"github.com/angelmondragon/quizfinderz-backend/pkg/logger"
)

func main() {
	catalogPath := flag.String("catalog", "-", "catalog JSON file, - for stdin")
	style := flag.String("style", string(enums.QuizStyleProfessional), "quiz style: fun|professional|detailed")
	offline := flag.Bool("offline", false, "skip the llm and use rule-based questions")
	verbose := flag.Bool("v", false, "log engine decisions to stderr")
	flag.Parse()

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logg := logger.New(logger.Options{ServiceName: "quizgen", Level: level, Output: os.Stderr})
	ctx := context.Background()
	loadDotEnv(ctx, logg, ".env")

	products, err := readCatalog(*catalogPath)
	if err != nil {
		fail("read catalog", err)
	}

	opts := questions.EngineOptions{Logger: logg}
	if !*offline {
		gen, err := generativeFromEnv(ctx)
		if err != nil {
			fail("configure llm", err)
		}
		opts.Generative = gen
	}

	result, err := questions.NewEngine(opts).Generate(ctx, products, enums.CoerceQuizStyle(*style))
	if err != nil {
		fail("generate", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fail("encode", err)
	}
}

// loadDotEnv reads path when present. A missing file is only worth a debug line;
// an unreadable one is a warning.
func loadDotEnv(ctx context.Context, logg *logger.Logger, path string) {
	err := godotenv.Load(path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		logg.Debug(ctx, ".env file not found, relying on environment")
	default:
		logg.Warn(logg.WithField(ctx, "error", err.Error()), ".env file could not be loaded")
	}
}

// generativeFromEnv returns nil without error when no provider is configured.
func generativeFromEnv(ctx context.Context) (questions.Source, error) {
	cfg, err := config.LoadLLM()
	if err != nil {
		return nil, err
	}
	client, err := llm.New(ctx, cfg)
	if errors.Is(err, llm.ErrNotConfigured) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return questions.NewGenerative(client, questions.GenerativeOptions{
		Timeout:         cfg.Timeout,
		MaxOutputTokens: cfg.MaxOutputTokens,
		Temperature:     cfg.Temperature,
	}), nil
}

func readCatalog(path string) ([]catalog.Product, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return decodeCatalog(raw)
}

func decodeCatalog(raw []byte) ([]catalog.Product, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, catalog.ErrEmptyCatalog
	}
	if raw[0] == '[' {
		var products []catalog.Product
		if err := json.Unmarshal(raw, &products); err != nil {
			return nil, err
		}
		return products, nil
	}
	var wrapped struct {
		Products []catalog.Product `json:"products"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Products, nil
}

func fail(step string, err error) {
	fmt.Fprintf(os.Stderr, "quizgen: %s: %v\n", step, err)
	os.Exit(1)
}

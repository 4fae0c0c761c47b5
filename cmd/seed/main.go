package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"foodgram/internal/config"
	"foodgram/internal/db"
	"foodgram/internal/log"
	"foodgram/internal/model"
	"foodgram/internal/repository"
	"foodgram/internal/service"
)

func main() {
	ingredientsSrc := flag.String("ingredients", "data/ingredients.csv", "path or URL of the name,measurement_unit CSV")
	tagsSrc := flag.String("tags", "", "optional path or URL of the name,slug CSV")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := log.New(cfg.LogLevel)

	if err := run(context.Background(), cfg, logger, *ingredientsSrc, *tagsSrc); err != nil {
		logger.Error("seed failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, ingredientsSrc, tagsSrc string) error {
	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	catalog := service.NewCatalogService(
		repository.NewIngredientRepository(gormDB),
		repository.NewTagRepository(gormDB),
		nil,
		0,
	)
	client := newHTTPClient(logger)

	if ingredientsSrc != "" {
		rows, err := readRows(ctx, client, ingredientsSrc)
		if err != nil {
			return fmt.Errorf("read ingredients: %w", err)
		}
		ingredients := parseIngredients(rows)
		added, err := catalog.ImportIngredients(ctx, ingredients)
		if err != nil {
			return err
		}
		logger.Info("ingredients seeded",
			slog.Int("read", len(ingredients)),
			slog.Int64("created", added))
	}

	if tagsSrc != "" {
		rows, err := readRows(ctx, client, tagsSrc)
		if err != nil {
			return fmt.Errorf("read tags: %w", err)
		}
		tags := parseTags(rows)
		added, err := catalog.ImportTags(ctx, tags)
		if err != nil {
			return err
		}
		logger.Info("tags seeded",
			slog.Int("read", len(tags)),
			slog.Int64("created", added))
	}
	return nil
}

func newHTTPClient(logger *slog.Logger) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = logger
	return client
}

// readRows loads CSV records from a local file or an HTTP(S) URL.
func readRows(ctx context.Context, client *retryablehttp.Client, src string) ([][]string, error) {
	var body io.ReadCloser
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, src)
		}
		body = resp.Body
	} else {
		f, err := os.Open(src)
		if err != nil {
			return nil, err
		}
		body = f
	}
	defer body.Close()
	return parseCSV(body)
}

func parseCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
	}
}

// parseIngredients keeps rows with a name and a unit. Duplicate pairs inside
// the file collapse to one.
func parseIngredients(rows [][]string) []model.Ingredient {
	seen := make(map[[2]string]bool, len(rows))
	out := make([]model.Ingredient, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		name := strings.TrimSpace(row[0])
		unit := strings.TrimSpace(row[1])
		if name == "" || unit == "" {
			continue
		}
		key := [2]string{name, unit}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, model.Ingredient{Name: name, MeasurementUnit: unit})
	}
	return out
}

func parseTags(rows [][]string) []model.Tag {
	seen := make(map[string]bool, len(rows))
	out := make([]model.Tag, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		name := strings.TrimSpace(row[0])
		slug := strings.TrimSpace(row[1])
		if name == "" || slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		out = append(out, model.Tag{Name: name, Slug: slug})
	}
	return out
}

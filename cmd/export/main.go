package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"EmaQuest/internal/service"
	"EmaQuest/pkg/logger"
	"EmaQuest/storage/database"
)

// export dumps the analysis CSVs without going through the HTTP surface.
// It only opens the database, no redis or broker needed.
func main() {
	table := flag.String("table", "", "export a single table (participants, responses, screen_time)")
	outDir := flag.String("out", ".", "output directory")
	flag.Parse()

	logger.Init()
	defer logger.Sync()

	if err := database.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := database.Close(ctx); err != nil {
			logger.Logger.Error("Failed to close database", zap.Error(err))
		}
	}()

	tables := service.ExportTables
	if *table != "" {
		tables = []string{*table}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	for _, t := range tables {
		path := filepath.Join(*outDir, t+".csv")
		if err := writeTable(ctx, t, path); err != nil {
			logger.Logger.Fatal("Export failed",
				zap.String("table", t),
				zap.Error(err),
			)
		}
		fmt.Printf("wrote %s\n", path)
	}
}

func writeTable(ctx context.Context, table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := service.Export().ExportCSV(ctx, table, f); err != nil {
		return err
	}
	return f.Sync()
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"youngscholars/internal/catalogimport"
	"youngscholars/internal/config"
	"youngscholars/internal/database"
	"youngscholars/internal/repository"
)

func main() {
	defaults := catalogimport.DefaultImportConfig()

	file := flag.String("file", "", "Spreadsheet to import, .xlsx or .csv (required)")
	booksSheet := flag.String("books", defaults.BooksSheet, "Sheet holding one row per book")
	pagesSheet := flag.String("pages", defaults.PagesSheet, "Sheet holding one row per page")
	quizSheet := flag.String("quiz", defaults.QuizSheet, "Sheet holding one row per quiz question")
	dryRun := flag.Bool("dry-run", false, "Validate the spreadsheet without saving")
	flag.Parse()

	if *file == "" {
		fmt.Println("Error: -file flag is required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := config.Load()
	ctx := context.Background()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	result, err := catalogimport.Import(ctx, repository.NewBookRepository(db), catalogimport.ImportConfig{
		FilePath:   *file,
		BooksSheet: *booksSheet,
		PagesSheet: *pagesSheet,
		QuizSheet:  *quizSheet,
		DryRun:     *dryRun,
	})
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	for _, msg := range result.Errors {
		log.Printf("  %s", msg)
	}
	log.Printf("Processed %d books: %d saved, %d skipped", result.TotalProcessed, result.Saved, result.Skipped)
	if *dryRun {
		log.Println("Dry run, nothing was written")
	}
}

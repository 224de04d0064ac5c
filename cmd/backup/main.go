package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"robinhoodarmy/internal/config"
	"robinhoodarmy/internal/database"
	"robinhoodarmy/internal/service"
)

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	exportOutput := exportCmd.String("output", "", "Backup file to write (default: robinhoodarmy_YYYYMMDD_HHMMSS.json)")

	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importInput := importCmd.String("input", "", "Backup file to restore (required)")
	importClear := importCmd.Bool("clear", false, "Delete every volunteer, child, drive and lesson first")
	importForce := importCmd.Bool("force", false, "Restore even when the backup's counters disagree with its rows")

	verifyCmd := flag.NewFlagSet("verify", flag.ExitOnError)
	verifyInput := verifyCmd.String("input", "", "Backup file to check (required)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "verify":
		verifyCmd.Parse(os.Args[2:])
		requireInput(verifyCmd, *verifyInput)
		backup := readBackup(*verifyInput)
		printCounts(backup)
		if problems := backup.CheckCounters(); len(problems) > 0 {
			printProblems(problems)
			os.Exit(1)
		}
		log.Println("Counters match the attendance and drive records")

	case "export":
		exportCmd.Parse(os.Args[2:])
		handleExport(ctx, openBackupService(), *exportOutput)

	case "import":
		importCmd.Parse(os.Args[2:])
		requireInput(importCmd, *importInput)

		backup := readBackup(*importInput)
		printCounts(backup)
		if problems := backup.CheckCounters(); len(problems) > 0 {
			printProblems(problems)
			if !*importForce {
				log.Fatalf("Refusing to import an inconsistent backup; pass -force to restore it anyway")
			}
		}
		handleImport(ctx, openBackupService(), *importInput, *importClear)

	default:
		printUsage()
		os.Exit(1)
	}
}

// openBackupService connects to the configured database and brings its schema up to date
func openBackupService() *service.BackupService {
	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	return service.NewBackupService(db)
}

func requireInput(cmd *flag.FlagSet, input string) {
	if input == "" {
		fmt.Println("Error: -input flag is required")
		cmd.PrintDefaults()
		os.Exit(1)
	}
}

func readBackup(path string) *service.BackupData {
	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open backup: %v", err)
	}
	defer file.Close()

	backup, err := service.ReadBackup(file)
	if err != nil {
		log.Fatalf("Failed to read backup: %v", err)
	}
	log.Printf("Backup version %s exported at %s", backup.Version, backup.ExportedAt.Format(time.RFC3339))
	return backup
}

func printCounts(backup *service.BackupData) {
	for _, c := range backup.Counts() {
		fmt.Printf("  %-22s %6d\n", c.Table, c.Rows)
	}
}

func printProblems(problems []string) {
	fmt.Printf("%d counter mismatches:\n", len(problems))
	for _, p := range problems {
		fmt.Println("  " + p)
	}
}

func handleExport(ctx context.Context, backupService *service.BackupService, outputPath string) {
	if outputPath == "" {
		outputPath = fmt.Sprintf("robinhoodarmy_%s.json", time.Now().Format("20060102_150405"))
	}

	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	if err := backupService.Export(ctx, outputPath); err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	fileInfo, err := os.Stat(outputPath)
	if err == nil {
		log.Printf("Wrote %s (%.2f MB)", outputPath, float64(fileInfo.Size())/1024/1024)
	}
}

func handleImport(ctx context.Context, backupService *service.BackupService, inputPath string, clearData bool) {
	if clearData {
		fmt.Printf("WARNING: This deletes every row in %s. Type 'yes' to confirm: ", strings.Join(service.BackupTables, ", "))
		var confirmation string
		fmt.Scanln(&confirmation)
		if confirmation != "yes" {
			log.Println("Import cancelled")
			return
		}

		if err := backupService.Clear(ctx); err != nil {
			log.Fatalf("Failed to clear database: %v", err)
		}
	}

	if err := backupService.Import(ctx, inputPath); err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	log.Println("Import complete")
}

func printUsage() {
	fmt.Println(`Robinhood Army backup tool

Copies children, robins, drives, attendance, unavailability and generated
lessons between a database and a JSON file. Ids, counters and timestamps are
kept as they are, so a restored database keeps every attendance and drive count.

Usage:
  backup export [-output <file>]
  backup import -input <file> [-clear] [-force]
  backup verify -input <file>

Commands:
  export    Write every table to a JSON file
  import    Restore a JSON file in one transaction; refuses backups whose
            attendance_count or drive_count disagree with their records
  verify    Print row counts and check counters without touching a database

Examples:
  backup export -output backups/sunday.json
  backup verify -input backups/sunday.json
  backup import -input backups/sunday.json -clear

Environment Variables:
  DB_TYPE          sqlite, postgres or mysql (default: sqlite)
  DB_PATH          SQLite database path (default: ./robinhoodarmy.db)
  DATABASE_URL     PostgreSQL or MySQL connection URL
  MIGRATIONS_PATH  Schema migrations (default: ./migrations)`)
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"robinhoodarmy/internal/database"
	"robinhoodarmy/internal/models"
	"robinhoodarmy/internal/repository"
)

const backupVersion = "1.0"

// BackupTables lists the tables in dependency order. Clearing runs in reverse.
var BackupTables = []string{
	models.TableChildren,
	models.TableRobins,
	models.TableDrives,
	models.TableChildAttendance,
	models.TableRobinDrives,
	models.TableRobinUnavailability,
	models.TableEducationalContent,
}

// BackupData represents the complete database backup structure
type BackupData struct {
	Version        string                       `json:"version"`
	ExportedAt     time.Time                    `json:"exported_at"`
	DatabaseType   string                       `json:"database_type"`
	Children       []models.Child               `json:"children"`
	Robins         []models.Robin               `json:"robins"`
	Drives         []models.Drive               `json:"drives"`
	Attendance     []models.ChildAttendance     `json:"child_attendance"`
	RobinDrives    []models.RobinDrive          `json:"robin_drives"`
	Unavailability []models.RobinUnavailability `json:"robin_unavailability"`
	Content        []models.EducationalContent  `json:"educational_content"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportTo(ctx, file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportTo writes a complete backup as indented JSON
func (s *BackupService) ExportTo(ctx context.Context, w io.Writer) error {
	log.Println("Starting database export...")

	backup, err := s.snapshot(ctx)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported: %d children, %d robins, %d drives, %d attendance, %d robin drives, %d unavailability, %d content",
		len(backup.Children), len(backup.Robins), len(backup.Drives), len(backup.Attendance),
		len(backup.RobinDrives), len(backup.Unavailability), len(backup.Content))
	return nil
}

func (s *BackupService) snapshot(ctx context.Context) (*BackupData, error) {
	backup := &BackupData{
		Version:      backupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: "universal",
	}

	var err error
	if backup.Children, err = repository.NewChildRepository(s.db).ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export children: %w", err)
	}
	if backup.Robins, err = repository.NewRobinRepository(s.db).ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export robins: %w", err)
	}
	if backup.Drives, err = repository.NewDriveRepository(s.db).ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export drives: %w", err)
	}
	if backup.Attendance, err = repository.NewAttendanceRepository(s.db).ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export attendance: %w", err)
	}
	if backup.RobinDrives, err = repository.NewRobinDriveRepository(s.db).ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export robin drives: %w", err)
	}
	if backup.Unavailability, err = repository.NewUnavailabilityRepository(s.db).ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export unavailability: %w", err)
	}
	if backup.Content, err = repository.NewContentRepository(s.db).ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export content: %w", err)
	}
	return backup, nil
}

// ReadBackup decodes a backup without touching the database
func ReadBackup(reader io.Reader) (*BackupData, error) {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	return &backup, nil
}

// TableCount is the number of rows a backup holds for one table
type TableCount struct {
	Table string
	Rows  int
}

// Counts returns the row count of every table in BackupTables order
func (b *BackupData) Counts() []TableCount {
	rows := map[string]int{
		models.TableChildren:            len(b.Children),
		models.TableRobins:              len(b.Robins),
		models.TableDrives:              len(b.Drives),
		models.TableChildAttendance:     len(b.Attendance),
		models.TableRobinDrives:         len(b.RobinDrives),
		models.TableRobinUnavailability: len(b.Unavailability),
		models.TableEducationalContent:  len(b.Content),
	}

	counts := make([]TableCount, 0, len(BackupTables))
	for _, table := range BackupTables {
		counts = append(counts, TableCount{Table: table, Rows: rows[table]})
	}
	return counts
}

// CheckCounters compares the stored counters with the join rows. A child's
// attendance_count must equal its attendance rows; a robin's drive_count may
// exceed its robin_drives rows only by the initial offset, never fall short.
func (b *BackupData) CheckCounters() []string {
	attended := make(map[string]int)
	for _, a := range b.Attendance {
		attended[a.ChildID]++
	}
	drove := make(map[string]int)
	for _, d := range b.RobinDrives {
		drove[d.RobinID]++
	}

	var problems []string
	for _, c := range b.Children {
		if c.AttendanceCount != attended[c.ID] {
			problems = append(problems, fmt.Sprintf("child %s (%s): attendance_count %d, %d attendance rows",
				c.ID, c.Name, c.AttendanceCount, attended[c.ID]))
		}
	}
	for _, r := range b.Robins {
		if r.DriveCount < drove[r.ID] {
			problems = append(problems, fmt.Sprintf("robin %s (%s): drive_count %d, %d robin_drives rows",
				r.ID, r.Name, r.DriveCount, drove[r.ID]))
		}
	}
	return problems
}

// Import restores a database from a backup file
func (s *BackupService) Import(ctx context.Context, inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file)
}

// ImportFromReader restores a backup in a single transaction. Rows are
// written with their original ids, counters and timestamps.
func (s *BackupService) ImportFromReader(ctx context.Context, reader io.Reader) error {
	backup, err := ReadBackup(reader)
	if err != nil {
		return err
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	err = s.db.WithTx(ctx, func(tx *database.Tx) error {
		children := repository.NewChildRepository(tx)
		for _, c := range backup.Children {
			if err := children.Insert(ctx, c); err != nil {
				return err
			}
		}
		robins := repository.NewRobinRepository(tx)
		for _, r := range backup.Robins {
			if err := robins.Insert(ctx, r); err != nil {
				return err
			}
		}
		drives := repository.NewDriveRepository(tx)
		for _, d := range backup.Drives {
			if err := drives.Insert(ctx, d); err != nil {
				return err
			}
		}
		attendance := repository.NewAttendanceRepository(tx)
		for _, a := range backup.Attendance {
			if err := attendance.Insert(ctx, a); err != nil {
				return err
			}
		}
		robinDrives := repository.NewRobinDriveRepository(tx)
		for _, d := range backup.RobinDrives {
			if err := robinDrives.Insert(ctx, d); err != nil {
				return err
			}
		}
		unavailability := repository.NewUnavailabilityRepository(tx)
		for _, u := range backup.Unavailability {
			if err := unavailability.Insert(ctx, u); err != nil {
				return err
			}
		}
		content := repository.NewContentRepository(tx)
		for _, c := range backup.Content {
			if err := content.Insert(ctx, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to import backup: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

// Clear deletes every row, children of foreign keys first
func (s *BackupService) Clear(ctx context.Context) error {
	return s.db.WithTx(ctx, func(tx *database.Tx) error {
		for i := len(BackupTables) - 1; i >= 0; i-- {
			table := BackupTables[i]
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
			log.Printf("Cleared table: %s", table)
		}
		return nil
	})
}

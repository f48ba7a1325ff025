package models

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

/*
Schema tooling.

Migrate is run at startup (AUTO_MIGRATE=true) and by the store tests.

GENERATE_MODELS=true migrates, prints the column report and writes typed query helpers
into ./generated using gorm/gen, then exits.

GENERATE_COLUMN_REPORT=true only prints the column report: every column present in the
database that no model field maps to.

	=== COLUMN REPORT ===
	--- Table: projects ---
	  - legacy_gif_link
	=== SUMMARY: 1 unmapped column(s) ===
*/

// All lists every persisted model in dependency order.
func All() []any {
	return []any{
		&Tag{},
		&Image{},
		&Project{},
		&ProjectTag{},
		&ProjectImage{},
	}
}

// Migrate creates or updates every table, index and constraint.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// GenerateModels migrates the schema and generates query helpers under ./generated.
func GenerateModels(db *gorm.DB) error {
	db = db.Session(&gorm.Session{
		Logger:                 db.Logger.LogMode(logger.Info),
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})

	log.Info().Msg("Migrating models...")
	if err := Migrate(db); err != nil {
		return err
	}

	if _, err := GenerateColumnReport(db); err != nil {
		return err
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:           "./generated",
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(Tag{}, Image{}, Project{}, ProjectTag{}, ProjectImage{})
	g.Execute()

	log.Info().Msg("Model generation complete")
	return nil
}

// GenerateColumnReport prints, per table, the database columns that no model field maps to
// and returns them keyed by table name.
func GenerateColumnReport(db *gorm.DB) (map[string][]string, error) {
	fmt.Println("=== COLUMN REPORT ===")

	report := make(map[string][]string)
	total := 0

	for _, model := range All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", model, err)
		}
		table := stmt.Schema.Table

		fmt.Printf("--- Table: %s ---\n", table)
		if !db.Migrator().HasTable(table) {
			fmt.Println("Table does not exist yet (will be created during migration)")
			continue
		}

		columns, err := db.Migrator().ColumnTypes(model)
		if err != nil {
			return nil, fmt.Errorf("read columns for %s: %w", table, err)
		}

		var unmapped []string
		for _, col := range columns {
			if stmt.Schema.LookUpField(col.Name()) == nil {
				unmapped = append(unmapped, col.Name())
			}
		}
		sort.Strings(unmapped)

		if len(unmapped) == 0 {
			fmt.Println("All columns are accounted for in the model.")
			continue
		}
		for _, col := range unmapped {
			fmt.Printf("  - %s\n", col)
		}
		report[table] = unmapped
		total += len(unmapped)
	}

	fmt.Printf("=== SUMMARY: %d unmapped column(s) ===\n", total)
	return report, nil
}

package database

import (
	"context"

	"gorm.io/gorm"
)

type Database struct {
	db               *gorm.DB
	tagRepo          *TagRepo
	imageRepo        *ImageRepo
	projectRepo      *ProjectRepo
	projectTagRepo   *ProjectTagRepo
	projectImageRepo *ProjectImageRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:               db,
		tagRepo:          NewTagRepo(db),
		imageRepo:        NewImageRepo(db),
		projectRepo:      NewProjectRepo(db),
		projectTagRepo:   NewProjectTagRepo(db),
		projectImageRepo: NewProjectImageRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) TagRepo() *TagRepo {
	return d.tagRepo
}

func (d Database) ImageRepo() *ImageRepo {
	return d.imageRepo
}

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) ProjectTagRepo() *ProjectTagRepo {
	return d.projectTagRepo
}

func (d Database) ProjectImageRepo() *ProjectImageRepo {
	return d.projectImageRepo
}

// Ping checks that the underlying connection pool can reach the database.
func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (d Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

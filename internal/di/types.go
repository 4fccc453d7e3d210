// Package di wires configuration into the databases, fetcher, analyzer and jobs.
//
// The Container is the single owner of every long-lived dependency; command
// entry points build one with Wire and hand pieces of it to the server, the
// scheduler or the CLI.
package di

import (
	"errors"

	"github.com/aristath/tefas/internal/clientdata"
	"github.com/aristath/tefas/internal/clients/tefas"
	"github.com/aristath/tefas/internal/config"
	"github.com/aristath/tefas/internal/database"
	"github.com/aristath/tefas/internal/export"
	"github.com/aristath/tefas/internal/modules/statistics"
	"github.com/aristath/tefas/internal/reliability"
	"github.com/aristath/tefas/internal/services/analyzer"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config

	// Storage; nil when wired without a database
	SnapshotsDB *database.DB
	Snapshots   *statistics.Repository

	// Page cache; nil when disabled or when pages come from disk
	ClientDataDB *database.DB
	PageCache    *clientdata.Repository

	Fetcher  tefas.PageFetcher
	Analyzer *analyzer.Service

	// Uploader is nil unless TEFAS_S3_BUCKET is set
	Uploader *export.S3Uploader
	// Backup is set when both the snapshot database and the uploader are
	Backup *reliability.BackupService
}

// Databases returns the open databases
func (c *Container) Databases() []*database.DB {
	var dbs []*database.DB
	for _, db := range []*database.DB{c.SnapshotsDB, c.ClientDataDB} {
		if db != nil {
			dbs = append(dbs, db)
		}
	}
	return dbs
}

// Close releases the resources held by the container
func (c *Container) Close() error {
	var errs []error
	for _, db := range c.Databases() {
		errs = append(errs, db.Close())
	}
	return errors.Join(errs...)
}

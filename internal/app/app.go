// Package app builds the object graph shared by trackar-server and
// trackar-report from a Config.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/trackar/server/internal/attendance"
	"github.com/trackar/server/internal/config"
	"github.com/trackar/server/internal/db"
	"github.com/trackar/server/internal/trackar/service"
	"github.com/trackar/server/internal/trackar/store"
	"github.com/trackar/server/internal/trackar/store/memory"
	sqlitestore "github.com/trackar/server/internal/trackar/store/sqlite"
	"github.com/trackar/server/internal/upstream"
)

type App struct {
	Config     config.Config
	Access     *service.AccessService
	Attendance *service.AttendanceService
	Pruner     *service.EventPruner

	conn   *sql.DB
	writer *db.Worker
}

// Build opens the configured store and wires the services.  Close releases
// the store.
func Build(ctx context.Context, cfg config.Config, logger *log.Logger) (*App, error) {
	a := &App{Config: cfg}

	var (
		events store.AccessEventStore
		people store.PersonStore
	)
	switch cfg.Store {
	case config.StoreMemory:
		events = memory.NewAccessEventStore()
		people = memory.NewPersonStore()
	default:
		conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
		if err != nil {
			return nil, err
		}
		a.conn = conn
		a.writer = db.NewWorker(conn)

		if cfg.SeedDev && cfg.Env == "dev" {
			if err := db.SeedDev(ctx, conn, db.SeedDevOptions{Location: cfg.Location()}); err != nil {
				a.Close()
				return nil, fmt.Errorf("seed dev: %w", err)
			}
			logger.Printf("seeded demo attendance for today")
		}

		events = sqlitestore.NewAccessEventStore(conn, a.writer)
		people = sqlitestore.NewPersonStore(conn, a.writer)
	}

	rec := attendance.New(cfg.Location())
	directory := service.NewPersonDirectory(people)

	var src service.Source = service.NewLocalSource(events, directory)
	if cfg.Source == config.SourceRemote {
		client, err := upstream.NewClient(cfg.APIURL, cfg.APITimeout)
		if err != nil {
			a.Close()
			return nil, err
		}
		src = upstream.NewSource(client, cfg.APIPhone, cfg.APIPIN)
	}

	a.Access = service.NewAccessService(directory, events, rec)
	a.Attendance = service.NewAttendanceService(src, rec, cfg.HourWindow())
	a.Pruner = service.NewEventPruner(events, service.PrunerConfig{
		RetentionDays: cfg.EventRetentionDays,
		IntervalHours: cfg.PruneIntervalHours,
	}, logger)

	logger.Printf("store=%s source=%s tz=%s", cfg.Store, cfg.Source, rec.Location())
	return a, nil
}

func (a *App) Close() {
	if a.writer != nil {
		a.writer.Close()
	}
	if a.conn != nil {
		_ = a.conn.Close()
	}
}

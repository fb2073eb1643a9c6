// Package store persists the table bundle to a single SQLite file,
// implementing ports.TableStore.
package store

import (
	"context"
	"sort"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"nucoinc/domain/astro"
	"nucoinc/internal/errors"
	"nucoinc/ports"
)

var _ ports.TableStore = (*SQLite)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS effective_area_bins (
	table_name TEXT NOT NULL,
	energy_min_log10_gev REAL NOT NULL,
	energy_max_log10_gev REAL NOT NULL,
	dec_min_deg REAL NOT NULL,
	dec_max_deg REAL NOT NULL,
	area_cm2 REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS events (
	table_name TEXT NOT NULL,
	time_mjd REAL NOT NULL,
	ra_deg REAL NOT NULL,
	dec_deg REAL NOT NULL,
	energy_log10_gev REAL NOT NULL,
	sigma_deg REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS catalog_entries (
	time_gps REAL NOT NULL,
	ra_deg REAL NOT NULL,
	dec_deg REAL NOT NULL,
	alt_deg REAL NOT NULL,
	az_deg REAL NOT NULL,
	distance_mpc REAL NOT NULL,
	mass1_msun REAL NOT NULL,
	mass2_msun REAL NOT NULL,
	inclination_rad REAL NOT NULL,
	far_gstlal_hz REAL NOT NULL,
	far_pycbc_hz REAL NOT NULL,
	far_mbta_hz REAL NOT NULL,
	far_cwb_hz REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS far_samples (
	kind TEXT NOT NULL,
	far_hz REAL NOT NULL
);`

const (
	farKindPipeline   = "pipeline"
	farKindBackground = "background"
)

// SQLite is the file-backed table store.
type SQLite struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the store at path.
func Open(path string) (*SQLite, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeStore, "open table store", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.CodeStore, "initialize table store schema", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

type effAreaRow struct {
	TableName string `db:"table_name"`
	astro.EffectiveAreaBin
}

type eventRow struct {
	TableName string `db:"table_name"`
	astro.Event
}

type farRow struct {
	Kind  string  `db:"kind"`
	FARHz float64 `db:"far_hz"`
}

// Save replaces the stored bundle with b.
func (s *SQLite) Save(ctx context.Context, b *astro.Bundle) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.CodeStore, "begin save", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"effective_area_bins", "events", "catalog_entries", "far_samples"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return errors.Wrap(errors.CodeStore, "clear "+table, err)
		}
	}

	for _, name := range sortedKeys(b.EffectiveAreas) {
		for _, bin := range b.EffectiveAreas[name] {
			if _, err := tx.NamedExecContext(ctx, `INSERT INTO effective_area_bins
				(table_name, energy_min_log10_gev, energy_max_log10_gev, dec_min_deg, dec_max_deg, area_cm2)
				VALUES (:table_name, :energy_min_log10_gev, :energy_max_log10_gev, :dec_min_deg, :dec_max_deg, :area_cm2)`,
				effAreaRow{TableName: name, EffectiveAreaBin: bin}); err != nil {
				return errors.Wrap(errors.CodeStore, "save effective-area bin", err)
			}
		}
	}

	for _, name := range sortedKeys(b.Events) {
		for _, ev := range b.Events[name] {
			if _, err := tx.NamedExecContext(ctx, `INSERT INTO events
				(table_name, time_mjd, ra_deg, dec_deg, energy_log10_gev, sigma_deg)
				VALUES (:table_name, :time_mjd, :ra_deg, :dec_deg, :energy_log10_gev, :sigma_deg)`,
				eventRow{TableName: name, Event: ev}); err != nil {
				return errors.Wrap(errors.CodeStore, "save event", err)
			}
		}
	}

	for _, e := range b.Catalog {
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO catalog_entries
			(time_gps, ra_deg, dec_deg, alt_deg, az_deg, distance_mpc, mass1_msun, mass2_msun,
			 inclination_rad, far_gstlal_hz, far_pycbc_hz, far_mbta_hz, far_cwb_hz)
			VALUES (:time_gps, :ra_deg, :dec_deg, :alt_deg, :az_deg, :distance_mpc, :mass1_msun, :mass2_msun,
			 :inclination_rad, :far_gstlal_hz, :far_pycbc_hz, :far_mbta_hz, :far_cwb_hz)`, e); err != nil {
			return errors.Wrap(errors.CodeStore, "save catalog entry", err)
		}
	}

	for kind, sample := range map[string][]float64{
		farKindPipeline:   b.PipelineFARsHz,
		farKindBackground: b.BackgroundFARsHz,
	} {
		for _, far := range sample {
			if _, err := tx.NamedExecContext(ctx,
				`INSERT INTO far_samples (kind, far_hz) VALUES (:kind, :far_hz)`,
				farRow{Kind: kind, FARHz: far}); err != nil {
				return errors.Wrap(errors.CodeStore, "save far sample", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.CodeStore, "commit save", err)
	}
	return nil
}

// Load reads the full stored bundle.
func (s *SQLite) Load(ctx context.Context) (*astro.Bundle, error) {
	b := &astro.Bundle{
		EffectiveAreas: make(map[string][]astro.EffectiveAreaBin),
		Events:         make(map[string][]astro.Event),
	}

	var aeffRows []effAreaRow
	if err := s.db.SelectContext(ctx, &aeffRows,
		`SELECT * FROM effective_area_bins ORDER BY rowid`); err != nil {
		return nil, errors.Wrap(errors.CodeStore, "load effective-area bins", err)
	}
	for _, r := range aeffRows {
		b.EffectiveAreas[r.TableName] = append(b.EffectiveAreas[r.TableName], r.EffectiveAreaBin)
	}

	var evRows []eventRow
	if err := s.db.SelectContext(ctx, &evRows, `SELECT * FROM events ORDER BY rowid`); err != nil {
		return nil, errors.Wrap(errors.CodeStore, "load events", err)
	}
	for _, r := range evRows {
		b.Events[r.TableName] = append(b.Events[r.TableName], r.Event)
	}

	if err := s.db.SelectContext(ctx, &b.Catalog,
		`SELECT * FROM catalog_entries ORDER BY rowid`); err != nil {
		return nil, errors.Wrap(errors.CodeStore, "load catalog", err)
	}

	var farRows []farRow
	if err := s.db.SelectContext(ctx, &farRows, `SELECT * FROM far_samples ORDER BY rowid`); err != nil {
		return nil, errors.Wrap(errors.CodeStore, "load far samples", err)
	}
	for _, r := range farRows {
		switch r.Kind {
		case farKindPipeline:
			b.PipelineFARsHz = append(b.PipelineFARsHz, r.FARHz)
		case farKindBackground:
			b.BackgroundFARsHz = append(b.BackgroundFARsHz, r.FARHz)
		default:
			return nil, errors.BadTable("unknown far sample kind %q", r.Kind)
		}
	}

	return b, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

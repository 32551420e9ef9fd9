package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"nychealth/internal"
	"nychealth/internal/util"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

// Key columns are NOT NULL with '' for absent: sqlite treats NULLs as
// distinct in a UNIQUE constraint.
func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS records (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  date TEXT NOT NULL,
  country_id TEXT NOT NULL,
  region_id TEXT NOT NULL,
  subregion TEXT NOT NULL DEFAULT '',
  sex TEXT NOT NULL DEFAULT '',
  age_min TEXT NOT NULL DEFAULT '',
  age_max TEXT NOT NULL DEFAULT '',
  underlying_conditions TEXT NOT NULL DEFAULT '',
  confirmed_tot INTEGER,
  deaths_tot INTEGER,
  hospitalized_tot INTEGER,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(date, country_id, region_id, subregion, sex, age_min, age_max, underlying_conditions)
);
CREATE INDEX IF NOT EXISTS idx_records_date ON records(date);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  date TEXT NOT NULL,
  reportsJson TEXT NOT NULL,
  records INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// SaveRecords upserts records by stratification key. Counts already stored
// survive when the incoming record leaves them absent.
func (d *DB) SaveRecords(records []internal.Record) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO records (
  date, country_id, region_id, subregion, sex, age_min, age_max, underlying_conditions,
  confirmed_tot, deaths_tot, hospitalized_tot
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(date, country_id, region_id, subregion, sex, age_min, age_max, underlying_conditions) DO UPDATE SET
  confirmed_tot=COALESCE(excluded.confirmed_tot, records.confirmed_tot),
  deaths_tot=COALESCE(excluded.deaths_tot, records.deaths_tot),
  hospitalized_tot=COALESCE(excluded.hospitalized_tot, records.hospitalized_tot),
  updatedAt=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		k := r.Key()
		if _, err := stmt.Exec(
			k.Date, k.CountryID, k.RegionID, k.Subregion, k.Sex, k.AgeMin, k.AgeMax, k.UnderlyingConditions.String(),
			r.ConfirmedTot, r.DeathsTot, r.HospitalizedTot,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListRecords returns stored records with from <= date <= to, oldest first.
func (d *DB) ListRecords(from, to time.Time) ([]internal.Record, error) {
	rows, err := d.conn.Query(`
SELECT date, country_id, region_id, subregion, sex, age_min, age_max, underlying_conditions,
       confirmed_tot, deaths_tot, hospitalized_tot
FROM records
WHERE date >= ? AND date <= ?
ORDER BY date ASC, id ASC`, from.Format(internal.DateLayout), to.Format(internal.DateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Record
	for rows.Next() {
		var k internal.Key
		var condition string
		var confirmed, deaths, hospitalized sql.NullInt64
		if err := rows.Scan(
			&k.Date, &k.CountryID, &k.RegionID, &k.Subregion, &k.Sex, &k.AgeMin, &k.AgeMax, &condition,
			&confirmed, &deaths, &hospitalized,
		); err != nil {
			return nil, err
		}

		rec, err := recordFromColumns(k, condition)
		if err != nil {
			return nil, err
		}
		rec.ConfirmedTot = nullInt(confirmed)
		rec.DeathsTot = nullInt(deaths)
		rec.HospitalizedTot = nullInt(hospitalized)
		out = append(out, rec)
	}

	return out, rows.Err()
}

// LatestDate returns the newest date with stored records, or nil.
func (d *DB) LatestDate() (*time.Time, error) {
	var value sql.NullString
	if err := d.conn.QueryRow(`SELECT MAX(date) FROM records`).Scan(&value); err != nil {
		return nil, err
	}
	if !value.Valid {
		return nil, nil
	}
	date, err := internal.ParseDate(value.String)
	if err != nil {
		return nil, err
	}
	return &date, nil
}

func (d *DB) InsertRun(traceID string, date time.Time, reports map[string]int, records int) error {
	reportsJSON, _ := json.Marshal(reports)
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, date, reportsJson, records) VALUES (?, ?, ?, ?)`,
		traceID, date.Format(internal.DateLayout), string(reportsJSON), records)
	return err
}

func (d *DB) ListRuns(limit int) ([]internal.RunRow, error) {
	rows, err := d.conn.Query(`
SELECT id, traceId, date, reportsJson, records, createdAt
FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRow
	for rows.Next() {
		var row internal.RunRow
		var reportsJSON string
		if err := rows.Scan(&row.ID, &row.TraceID, &row.Date, &reportsJSON, &row.Records, &row.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(reportsJSON), &row.Reports)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func recordFromColumns(k internal.Key, condition string) (internal.Record, error) {
	date, err := internal.ParseDate(k.Date)
	if err != nil {
		return internal.Record{}, err
	}
	rec := internal.Record{Date: date, CountryID: k.CountryID, RegionID: k.RegionID}
	if k.Subregion != "" {
		rec.Subregion = util.StringPtr(k.Subregion)
	}
	if k.Sex != "" {
		rec.Sex = util.StringPtr(k.Sex)
	}

	var ok bool
	if rec.AgeMin, ok = internal.ParseBound(k.AgeMin); !ok {
		return internal.Record{}, &ColumnError{Column: "age_min", Value: k.AgeMin}
	}
	if rec.AgeMax, ok = internal.ParseBound(k.AgeMax); !ok {
		return internal.Record{}, &ColumnError{Column: "age_max", Value: k.AgeMax}
	}
	if rec.UnderlyingConditions, ok = internal.ParseCondition(condition); !ok {
		return internal.Record{}, &ColumnError{Column: "underlying_conditions", Value: condition}
	}
	return rec, nil
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	return util.IntPtr(int(v.Int64))
}

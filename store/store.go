/*
Package store persists the last successfully fetched weather snapshot and a
short history of refresh cycles in a SQLite database, so a device that
reboots during an outage still has something to show.
*/
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/machinelevel/sp433-pinup-weather/weather"
	_ "github.com/mattn/go-sqlite3"
)

// historyLimit bounds the number of refresh records kept
const historyLimit = 1000

// Refresh is one completed draw cycle.
type Refresh struct {
	At    time.Time
	Stale bool
	Volts float64
}

type DB struct {
	db *sql.DB
}

// Open opens or creates the database in file.
func Open(file string) (*DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS snapshot (id INTEGER PRIMARY KEY NOT NULL CHECK (id = 1), fetched INTEGER NOT NULL, temp INTEGER, feels_like INTEGER, icon TEXT, wind_mph INTEGER NOT NULL, hour INTEGER NOT NULL, minute INTEGER NOT NULL, weekday INTEGER NOT NULL, month INTEGER NOT NULL, day INTEGER NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS refresh (id INTEGER PRIMARY KEY NOT NULL, at INTEGER NOT NULL, stale INTEGER NOT NULL, volts REAL NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{
		db: db,
	}, nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

// SaveSnapshot replaces the stored snapshot.
func (db *DB) SaveSnapshot(s *weather.Snapshot, fetched time.Time) error {
	_, err := db.db.Exec("INSERT OR REPLACE INTO snapshot (id, fetched, temp, feels_like, icon, wind_mph, hour, minute, weekday, month, day) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		fetched.Unix(), s.Temp, s.FeelsLike, s.Icon, s.WindMPH, s.Hour, s.Minute, s.Weekday, s.Month, s.Day)
	return err
}

// Snapshot returns the stored snapshot and when it was fetched, or a nil
// snapshot if none has been saved.
func (db *DB) Snapshot() (*weather.Snapshot, time.Time, error) {
	var s weather.Snapshot
	var fetched int64
	switch err := db.db.QueryRow("SELECT fetched, temp, feels_like, icon, wind_mph, hour, minute, weekday, month, day FROM snapshot WHERE id = 1").Scan(&fetched, &s.Temp, &s.FeelsLike, &s.Icon, &s.WindMPH, &s.Hour, &s.Minute, &s.Weekday, &s.Month, &s.Day); err {
	case sql.ErrNoRows:
		return nil, time.Time{}, nil
	case nil:
		return &s, time.Unix(fetched, 0), nil
	default:
		return nil, time.Time{}, err
	}
}

// AddRefresh records a completed cycle, discarding the oldest records beyond
// the history limit.
func (db *DB) AddRefresh(r Refresh) error {
	if _, err := db.db.Exec("INSERT INTO refresh (at, stale, volts) VALUES (?, ?, ?)", r.At.UnixNano(), r.Stale, r.Volts); err != nil {
		return err
	}
	if _, err := db.db.Exec("DELETE FROM refresh WHERE id NOT IN (SELECT id FROM refresh ORDER BY id DESC LIMIT ?)", historyLimit); err != nil {
		return err
	}
	return nil
}

// Refreshes returns up to n of the most recent refresh records, newest first.
func (db *DB) Refreshes(n int) ([]Refresh, error) {
	rows, err := db.db.Query("SELECT at, stale, volts FROM refresh ORDER BY id DESC LIMIT ?", n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refreshes []Refresh
	for rows.Next() {
		var at int64
		var r Refresh
		if err := rows.Scan(&at, &r.Stale, &r.Volts); err != nil {
			return nil, err
		}
		r.At = time.Unix(0, at)
		refreshes = append(refreshes, r)
	}
	return refreshes, rows.Err()
}

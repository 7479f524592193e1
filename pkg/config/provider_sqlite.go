package config

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from the SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	instrument, err := s.GetInstrument()
	if err != nil {
		return nil, fmt.Errorf("failed to load instrument: %w", err)
	}
	config.Instrument = instrument

	services, err := s.GetServices()
	if err != nil {
		return nil, fmt.Errorf("failed to load services: %w", err)
	}
	config.Services = *services

	storage, err := s.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load storage: %w", err)
	}
	config.Storage = *storage

	controllers, err := s.GetControllers()
	if err != nil {
		return nil, fmt.Errorf("failed to load controllers: %w", err)
	}
	config.Controllers = controllers

	return config, nil
}

// GetInstrument loads the single-row instrument table; a missing row means
// the built-in defaults apply.
func (s *SQLiteProvider) GetInstrument() (*InstrumentData, error) {
	row := s.db.QueryRow(`
		SELECT observatory, name, collection_area_m2, pixel_scale_arcsec,
		       dark_current, read_noise, quantum_efficiency, filters
		FROM instrument LIMIT 1`)

	var in InstrumentData
	var filters string
	err := row.Scan(&in.Observatory, &in.Name, &in.CollectionArea, &in.PixelScale,
		&in.DarkCurrent, &in.ReadNoise, &in.QuantumEfficiency, &filters)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if filters != "" {
		in.Filters = strings.Split(filters, ",")
	}
	return &in, nil
}

// GetServices loads the single-row services table
func (s *SQLiteProvider) GetServices() (*ServicesData, error) {
	row := s.db.QueryRow(`
		SELECT flux_url, sky_url, transmission_url, timeout_seconds, cache_dir
		FROM services LIMIT 1`)

	var sv ServicesData
	err := row.Scan(&sv.FluxURL, &sv.SkyURL, &sv.TransmissionURL, &sv.TimeoutSeconds, &sv.CacheDir)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no services row configured in %s", s.dbPath)
	}
	if err != nil {
		return nil, err
	}
	return &sv, nil
}

// GetStorageConfig loads the storage table
func (s *SQLiteProvider) GetStorageConfig() (*StorageData, error) {
	row := s.db.QueryRow(`SELECT postgres_connection_string FROM storage LIMIT 1`)

	var connStr sql.NullString
	err := row.Scan(&connStr)
	if errors.Is(err, sql.ErrNoRows) {
		return &StorageData{}, nil
	}
	if err != nil {
		return nil, err
	}

	st := &StorageData{}
	if connStr.Valid && connStr.String != "" {
		st.Postgres = &PostgresData{ConnectionString: connStr.String}
	}
	return st, nil
}

// GetControllers loads the controllers table
func (s *SQLiteProvider) GetControllers() ([]ControllerData, error) {
	rows, err := s.db.Query(`SELECT type, listen_addr, port, log_file FROM controllers`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var controllers []ControllerData
	for rows.Next() {
		var typ string
		var listenAddr, logFile sql.NullString
		var port sql.NullInt64
		if err := rows.Scan(&typ, &listenAddr, &port, &logFile); err != nil {
			return nil, err
		}
		ctrl := ControllerData{Type: typ}
		if typ == "rest" {
			ctrl.RESTServer = &RESTServerData{
				ListenAddr: listenAddr.String,
				Port:       int(port.Int64),
				LogFile:    logFile.String,
			}
		}
		controllers = append(controllers, ctrl)
	}
	return controllers, rows.Err()
}

// IsReadOnly returns false: the SQLite backend supports editing
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database handle
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}

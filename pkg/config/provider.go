// Package config defines the configuration model for the exposure time
// calculator service and providers that load it from YAML files or SQLite
// databases.
package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetInstrument() (*InstrumentData, error)
	GetServices() (*ServicesData, error)
	GetStorageConfig() (*StorageData, error)
	GetControllers() ([]ControllerData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Instrument  *InstrumentData  `json:"instrument,omitempty"`
	Services    ServicesData     `json:"services"`
	Storage     StorageData      `json:"storage,omitempty"`
	Controllers []ControllerData `json:"controllers,omitempty"`
}

// InstrumentData overrides the built-in instrument constants. A nil section
// means the HAWK-I defaults apply; individual zero fields fall back to the
// defaults too.
type InstrumentData struct {
	Observatory       string   `json:"observatory,omitempty"`
	Name              string   `json:"name,omitempty"`
	CollectionArea    float64  `json:"collection_area_m2,omitempty"`
	PixelScale        float64  `json:"pixel_scale_arcsec,omitempty"`
	DarkCurrent       float64  `json:"dark_current,omitempty"`
	ReadNoise         float64  `json:"read_noise,omitempty"`
	QuantumEfficiency float64  `json:"quantum_efficiency,omitempty"`
	Filters           []string `json:"filters,omitempty"`
}

// ServicesData holds the endpoints of the three external lookup services
type ServicesData struct {
	FluxURL         string `json:"flux_url"`
	SkyURL          string `json:"sky_url"`
	TransmissionURL string `json:"transmission_url"`
	TimeoutSeconds  int    `json:"timeout_seconds,omitempty"`
	CacheDir        string `json:"cache_dir,omitempty"` // transmission curve cache; empty disables
}

// StorageData holds the configuration for the run-history store
type StorageData struct {
	Postgres *PostgresData `json:"postgres,omitempty"`
}

type PostgresData struct {
	ConnectionString string `json:"connection_string"`
}

// ControllerData holds the configuration for outward-facing controllers
type ControllerData struct {
	Type       string          `json:"type,omitempty"`
	RESTServer *RESTServerData `json:"rest,omitempty"`
}

type RESTServerData struct {
	ListenAddr string `json:"listen_addr,omitempty"`
	Port       int    `json:"port,omitempty"`
	LogFile    string `json:"log_file,omitempty"` // rotated access log; empty logs to stdout only
}

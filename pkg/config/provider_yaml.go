package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// yaml-facing mirror structs; the JSON-tagged ConfigData structs stay the
// canonical form shared by both providers.
type yamlConfig struct {
	Instrument *yamlInstrument `yaml:"instrument,omitempty"`
	Services   yamlServices    `yaml:"services"`
	Storage    yamlStorage     `yaml:"storage,omitempty"`
	Controllers []yamlController `yaml:"controllers,omitempty"`
}

type yamlInstrument struct {
	Observatory       string   `yaml:"observatory,omitempty"`
	Name              string   `yaml:"name,omitempty"`
	CollectionArea    float64  `yaml:"collection_area_m2,omitempty"`
	PixelScale        float64  `yaml:"pixel_scale_arcsec,omitempty"`
	DarkCurrent       float64  `yaml:"dark_current,omitempty"`
	ReadNoise         float64  `yaml:"read_noise,omitempty"`
	QuantumEfficiency float64  `yaml:"quantum_efficiency,omitempty"`
	Filters           []string `yaml:"filters,omitempty"`
}

type yamlServices struct {
	FluxURL         string `yaml:"flux_url"`
	SkyURL          string `yaml:"sky_url"`
	TransmissionURL string `yaml:"transmission_url"`
	TimeoutSeconds  int    `yaml:"timeout_seconds,omitempty"`
	CacheDir        string `yaml:"cache_dir,omitempty"`
}

type yamlStorage struct {
	Postgres *yamlPostgres `yaml:"postgres,omitempty"`
}

type yamlPostgres struct {
	ConnectionString string `yaml:"connection_string"`
}

type yamlController struct {
	Type string          `yaml:"type"`
	REST *yamlRESTServer `yaml:"rest,omitempty"`
}

type yamlRESTServer struct {
	ListenAddr string `yaml:"listen_addr,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	LogFile    string `yaml:"log_file,omitempty"`
}

// LoadConfig loads the complete configuration from the YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var raw yamlConfig
	if err := yaml.Unmarshal(cfgFile, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", y.filename, err)
	}

	config := &ConfigData{
		Services: ServicesData{
			FluxURL:         raw.Services.FluxURL,
			SkyURL:          raw.Services.SkyURL,
			TransmissionURL: raw.Services.TransmissionURL,
			TimeoutSeconds:  raw.Services.TimeoutSeconds,
			CacheDir:        raw.Services.CacheDir,
		},
	}

	if raw.Instrument != nil {
		config.Instrument = &InstrumentData{
			Observatory:       raw.Instrument.Observatory,
			Name:              raw.Instrument.Name,
			CollectionArea:    raw.Instrument.CollectionArea,
			PixelScale:        raw.Instrument.PixelScale,
			DarkCurrent:       raw.Instrument.DarkCurrent,
			ReadNoise:         raw.Instrument.ReadNoise,
			QuantumEfficiency: raw.Instrument.QuantumEfficiency,
			Filters:           raw.Instrument.Filters,
		}
	}

	if raw.Storage.Postgres != nil {
		config.Storage.Postgres = &PostgresData{
			ConnectionString: raw.Storage.Postgres.ConnectionString,
		}
	}

	for _, c := range raw.Controllers {
		ctrl := ControllerData{Type: c.Type}
		if c.REST != nil {
			ctrl.RESTServer = &RESTServerData{
				ListenAddr: c.REST.ListenAddr,
				Port:       c.REST.Port,
				LogFile:    c.REST.LogFile,
			}
		}
		config.Controllers = append(config.Controllers, ctrl)
	}

	y.config = config
	return config, nil
}

func (y *YAMLProvider) loaded() (*ConfigData, error) {
	if y.config != nil {
		return y.config, nil
	}
	return y.LoadConfig()
}

// GetInstrument returns the instrument section, which may be nil
func (y *YAMLProvider) GetInstrument() (*InstrumentData, error) {
	cfg, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return cfg.Instrument, nil
}

// GetServices returns the external service endpoints
func (y *YAMLProvider) GetServices() (*ServicesData, error) {
	cfg, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &cfg.Services, nil
}

// GetStorageConfig returns the storage section
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	cfg, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &cfg.Storage, nil
}

// GetControllers returns the controller configurations
func (y *YAMLProvider) GetControllers() ([]ControllerData, error) {
	cfg, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return cfg.Controllers, nil
}

// IsReadOnly returns true: YAML files are not modified by the application
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for the YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/icodeforyou/rapsounding-go/logging"
	"github.com/spf13/viper"
)

type AppConfigApi struct {
	Address string
	Port    int16
	// If not assigned, the server will serve embedded files.
	// If assigned, the server will serve files from the directory,
	// that must contain a "static" and "templates" directory.
	// This is useful for development.
	WwwDir *string `mapstructure:"www_dir"`
	// Signs the flash message cookie. A random key is used when empty.
	SessionKey string `mapstructure:"session_key"`
}

type AppConfigDatabase struct {
	Path string
	// How many days model runs and soundings are kept before they get purged
	DataRetentionDays *int `mapstructure:"data_retention_days"`
	// How many days daily backup files should be stored before they gets deleted
	BackupRetentionDays *int `mapstructure:"backup_retention_days"`
}

func (d AppConfigDatabase) GetDataRetentionDays() int {
	if d.DataRetentionDays == nil {
		return 30
	}
	return *d.DataRetentionDays
}

func (d AppConfigDatabase) GetBackupRetentionDays() int {
	if d.BackupRetentionDays == nil {
		return 30
	}
	return *d.BackupRetentionDays
}

// AppConfigTarget is the point the sounding is taken at (WGS84).
type AppConfigTarget struct {
	Latitude  *float64
	Longitude *float64
}

func (t AppConfigTarget) GetLatitude() float64 {
	if t.Latitude == nil {
		return 42.66
	}
	return *t.Latitude
}

func (t AppConfigTarget) GetLongitude() float64 {
	if t.Longitude == nil {
		return -83.41
	}
	return *t.Longitude
}

type AppConfigModel struct {
	// THREDDS catalog of the model runs, the first dataset is used
	CatalogUrl *string `mapstructure:"catalog_url"`
	// Cron expression, RAP runs are usually on the server ~50 minutes after the hour
	RunAt *string `mapstructure:"run_at"`
	// HTTP timeout in seconds for catalog and subset requests
	Timeout *int `mapstructure:"timeout"`
	// Degrees added around the target in each direction of the subset request
	BboxPadding *float64 `mapstructure:"bbox_padding"`
	// Initialization hours (UTC) of the runs that go further out
	ExtendedRunHours []int `mapstructure:"extended_run_hours"`
	// Last forecast hour of a normal run, default: 21
	ForecastHours *int `mapstructure:"forecast_hours"`
	// Last forecast hour of an extended run, default: 51
	ExtendedForecastHours *int `mapstructure:"extended_forecast_hours"`
	// Directory for downloaded subsets, default: the OS temp dir
	WorkDir *string `mapstructure:"work_dir"`
}

const DefaultCatalogUrl = "https://thredds.ucar.edu/thredds/catalog/grib/NCEP/RAP/CONUS_13km/latest.html"

func (m AppConfigModel) GetCatalogUrl() string {
	if m.CatalogUrl == nil {
		return DefaultCatalogUrl
	}
	return *m.CatalogUrl
}

func (m AppConfigModel) GetRunAt() string {
	if m.RunAt == nil {
		return "25 * * * *"
	}
	return *m.RunAt
}

func (m AppConfigModel) GetTimeout() time.Duration {
	if m.Timeout == nil {
		return 5 * time.Minute
	}
	return time.Duration(*m.Timeout) * time.Second
}

func (m AppConfigModel) GetBboxPadding() float64 {
	if m.BboxPadding == nil {
		return 0.5
	}
	return *m.BboxPadding
}

func (m AppConfigModel) GetExtendedRunHours() []int {
	if m.ExtendedRunHours == nil {
		return []int{3, 9, 15, 21}
	}
	return m.ExtendedRunHours
}

func (m AppConfigModel) GetForecastHours() int {
	if m.ForecastHours == nil {
		return 21
	}
	return *m.ForecastHours
}

func (m AppConfigModel) GetExtendedForecastHours() int {
	if m.ExtendedForecastHours == nil {
		return 51
	}
	return *m.ExtendedForecastHours
}

func (m AppConfigModel) GetWorkDir() string {
	if m.WorkDir == nil {
		return ""
	}
	return *m.WorkDir
}

type AppConfigOutput struct {
	// Where sounding_<fh>.png files are written, default: "models/rap"
	Dir          *string
	WidthInches  *float64 `mapstructure:"width_inches"`
	HeightInches *float64 `mapstructure:"height_inches"`
	Dpi          *int
}

func (o AppConfigOutput) GetDir() string {
	if o.Dir == nil {
		return "models/rap"
	}
	return *o.Dir
}

// GetSize returns the image size in pixels, default 9x9 inches at 100 dpi.
func (o AppConfigOutput) GetSize() (width, height int) {
	w, h, dpi := 9.0, 9.0, 100
	if o.WidthInches != nil {
		w = *o.WidthInches
	}
	if o.HeightInches != nil {
		h = *o.HeightInches
	}
	if o.Dpi != nil {
		dpi = *o.Dpi
	}
	return int(w * float64(dpi)), int(h * float64(dpi))
}

func (o AppConfigOutput) GetDpi() float64 {
	if o.Dpi == nil {
		return 100
	}
	return float64(*o.Dpi)
}

// AppConfigMqtt is optional, nothing is published when Host is empty.
type AppConfigMqtt struct {
	Host        string
	Port        int16
	Username    string
	Password    string
	ClientId    *string `mapstructure:"client_id"`
	TopicPrefix *string `mapstructure:"topic_prefix"`
}

func (m AppConfigMqtt) Enabled() bool {
	return m.Host != ""
}

func (m AppConfigMqtt) GetClientId() string {
	if m.ClientId == nil {
		return "rapsounding"
	}
	return *m.ClientId
}

func (m AppConfigMqtt) GetTopicPrefix() string {
	if m.TopicPrefix == nil {
		return "rapsounding"
	}
	return strings.TrimSuffix(*m.TopicPrefix, "/")
}

type AppConfigGui struct {
	// Timezone for displaying times in the GUI, default: UTC
	Timezone *string `mapstructure:"timezone"`
}

func (g AppConfigGui) GetTimezone() string {
	if g.Timezone == nil {
		return "UTC"
	}
	return *g.Timezone
}

type AppConfigLogging struct {
	// Min log level for database : "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	DbLevel *string `mapstructure:"db_level"`
	// Log attributes format: "TEXT", "JSON", default: "JSON"
	DbAttrsFormat *string `mapstructure:"db_attrs_format"`
	// Maximum number of log entries in the database, default: 10000
	DbMaxEntries *int `mapstructure:"db_max_entries"`
	// Min log level for database console: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	ConsoleLevel *string `mapstructure:"console_level"`
}

func (l AppConfigLogging) GetDbLevel() slog.Level {
	return logging.LevelFromString(l.DbLevel)
}

func (l AppConfigLogging) GetDbAttrsFormat() logging.LogAttrFormat {
	if l.DbAttrsFormat != nil && strings.EqualFold(*l.DbAttrsFormat, "text") {
		return logging.LogAttrFormatText
	}
	return logging.LogAttrFormatJSON
}

func (l AppConfigLogging) GetDbMaxEntries() int {
	if l.DbMaxEntries == nil {
		return 10000
	}
	return *l.DbMaxEntries
}

func (l AppConfigLogging) GetConsoleLevel() slog.Level {
	return logging.LevelFromString(l.ConsoleLevel)
}

type AppConfig struct {
	Api      AppConfigApi
	Database AppConfigDatabase
	Target   AppConfigTarget
	Model    AppConfigModel
	Output   AppConfigOutput
	Mqtt     AppConfigMqtt
	Gui      AppConfigGui     `mapstructure:"gui"`
	Logging  AppConfigLogging `mapstructure:"logging"`
}

func Load(path string) (*AppConfig, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("config")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	var c AppConfig
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config file: %w", err)
	}

	return &c, nil
}

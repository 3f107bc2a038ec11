package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Drivers soportados para la fuente de datos.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Formatos de salida del reporte.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App           AppConfig
	DB            DBConfig
	Investigation InvestigationConfig
	Report        ReportConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración de la fuente de datos (solo lectura).
// Con Driver sqlite se usan Path y FallbackPath; con mysql/postgres, DatabaseURL.
type DBConfig struct {
	Driver       string
	Path         string // ruta del archivo SQLite; admite prefijo "file:"
	FallbackPath string // se intenta una sola vez si Path no existe
	DatabaseURL  string // DSN de MySQL o URL postgres://
}

// InvestigationConfig valores por defecto de la investigación (los flags los sobrescriben).
type InvestigationConfig struct {
	ProductCode string
	Period      string // YYYY-MM; vacío = mes en curso
	Pattern     string
	ListLimit   int
}

// ReportConfig formato de salida.
type ReportConfig struct {
	Format string // text | json
}

// Validate verifica combinaciones que harían fallar la ejecución más adelante.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverSQLite:
		if c.DB.Path == "" && c.DB.FallbackPath == "" {
			return fmt.Errorf("config: DB_PATH o DB_FALLBACK_PATH es obligatorio con driver %q", c.DB.Driver)
		}
	case DriverMySQL, DriverPostgres:
		if c.DB.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL es obligatorio con driver %q", c.DB.Driver)
		}
	default:
		return fmt.Errorf("config: driver %q no soportado", c.DB.Driver)
	}
	switch c.Report.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("config: formato de reporte %q no soportado", c.Report.Format)
	}
	if c.Investigation.ListLimit <= 0 {
		return fmt.Errorf("config: DISCOVERY_LIST_LIMIT debe ser mayor que 0")
	}
	return nil
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_DRIVER, DB_PATH, DATABASE_URL, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	// También intenta config.env
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	databaseURL := getString(v, "DATABASE_URL", "")
	// DATABASE_URL estilo Prisma ("file:./dev.db") sirve de ruta SQLite si DB_PATH no está definido.
	defaultPath := "./prisma/dev.db"
	if strings.HasPrefix(databaseURL, "file:") {
		defaultPath = databaseURL
	}

	return &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "cost-reconciler"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			Driver:       strings.ToLower(getString(v, "DB_DRIVER", DriverSQLite)),
			Path:         getString(v, "DB_PATH", defaultPath),
			FallbackPath: getString(v, "DB_FALLBACK_PATH", "./prisma/dev.db.bak"),
			DatabaseURL:  databaseURL,
		},
		Investigation: InvestigationConfig{
			ProductCode: getString(v, "INVESTIGATE_PRODUCT_CODE", ""),
			Period:      getString(v, "INVESTIGATE_PERIOD", ""),
			Pattern:     getString(v, "INVESTIGATE_PATTERN", ""),
			ListLimit:   getInt(v, "DISCOVERY_LIST_LIMIT", 50),
		},
		Report: ReportConfig{
			Format: strings.ToLower(getString(v, "REPORT_FORMAT", FormatText)),
		},
	}
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

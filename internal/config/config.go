// internal/config/config.go
// Loader konfigurasi: default → file YAML (opsional, PETROCALC_CONFIG) → environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"petrocalc/internal/services"
)

type MySQLConfig struct {
	DSN      string `yaml:"dsn"` // jika diisi, menimpa host/port/db/user/password
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	DB       string `yaml:"db"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	MaxOpen  int    `yaml:"max_open_conns"`
	MaxIdle  int    `yaml:"max_idle_conns"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"` // default: openai
	APIKey   string `yaml:"api_key"`
	APIBase  string `yaml:"api_base"`
	Model    string `yaml:"model"`
}

// NodalConfig: default kalkulator nodal bila request tidak mengisi parameter.
type NodalConfig struct {
	ReservoirPressure  float64                 `yaml:"reservoir_pressure"`
	Depth              float64                 `yaml:"depth"`
	Gradient           float64                 `yaml:"gradient"`
	WellheadPressures  []float64               `yaml:"wellhead_pressures"`
	Samples            int                     `yaml:"samples"`
	Refine             bool                    `yaml:"refine"`
	Tolerance          float64                 `yaml:"tolerance"`
	FrictionPreset     string                  `yaml:"friction_preset"`
	FrictionModel      *services.FrictionModel `yaml:"friction"` // k/p eksplisit, menimpa preset
	Anchor             string                  `yaml:"anchor"`
	IntersectTolerance float64                 `yaml:"intersect_tolerance"`
}

type EconomicsConfig struct {
	OilPrice         float64 `yaml:"oil_price"` // USD/bbl
	GasPrice         float64 `yaml:"gas_price"` // USD/Mscf
	CO2Factor        float64 `yaml:"co2_factor"`
	EfficiencyFactor float64 `yaml:"efficiency_factor"`
}

type Config struct {
	AppName        string        `yaml:"app_name"`
	AppEnv         string        `yaml:"app_env"`
	AppPort        string        `yaml:"app_port"`
	MCPPort        string        `yaml:"mcp_port"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	MySQL     MySQLConfig     `yaml:"mysql"`
	LLM       LLMConfig       `yaml:"llm"`
	Nodal     NodalConfig     `yaml:"nodal"`
	Economics EconomicsConfig `yaml:"economics"`
}

func Default() *Config {
	gl := services.DefaultGasLiftParams()
	oil, _ := gl.OilPrice.Float64()
	gas, _ := gl.GasPrice.Float64()
	return &Config{
		AppName:        "petrocalc",
		AppEnv:         "development",
		AppPort:        "8080",
		MCPPort:        "8090",
		LogLevel:       "debug",
		LogFormat:      "json",
		RequestTimeout: 6 * time.Second,
		MySQL: MySQLConfig{
			Host:    "localhost",
			Port:    "3306",
			DB:      "petro",
			User:    "root",
			MaxOpen: 10,
			MaxIdle: 5,
		},
		LLM: LLMConfig{
			Provider: "openai",
			APIBase:  "https://api.openai.com/v1",
			Model:    "gpt-4o-mini",
		},
		Nodal: NodalConfig{
			ReservoirPressure:  1400,
			Depth:              8000,
			Gradient:           0.12,
			WellheadPressures:  []float64{100, 300, 500},
			Samples:            services.DefaultSolveSamples,
			Tolerance:          1e-6,
			FrictionPreset:     "fetkovich",
			Anchor:             string(services.AnchorFirstSample),
			IntersectTolerance: 10,
		},
		Economics: EconomicsConfig{
			OilPrice:         oil,
			GasPrice:         gas,
			CO2Factor:        gl.CO2Factor,
			EfficiencyFactor: gl.EfficiencyFactor,
		},
	}
}

// Load membaca file dari PETROCALC_CONFIG (jika di-set) lalu menerapkan env override.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("PETROCALC_CONFIG"))
}

// LoadFile: path kosong atau file tidak ada → default + env.
func LoadFile(path string) (*Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, c); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() {
	c.AppName = getEnv("APP_NAME", c.AppName)
	c.AppEnv = getEnv("APP_ENV", c.AppEnv)
	c.AppPort = getEnv("APP_PORT", c.AppPort)
	c.MCPPort = getEnv("MCP_PORT", c.MCPPort)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", c.RequestTimeout)

	c.MySQL.DSN = getEnv("DB_DSN", c.MySQL.DSN)
	c.MySQL.Enabled = getEnvBool("MYSQL_ENABLED", c.MySQL.Enabled || c.MySQL.DSN != "")
	c.MySQL.Host = getEnv("MYSQL_HOST", c.MySQL.Host)
	c.MySQL.Port = getEnv("MYSQL_PORT", c.MySQL.Port)
	c.MySQL.DB = getEnv("MYSQL_DB", c.MySQL.DB)
	c.MySQL.User = getEnv("MYSQL_USER", c.MySQL.User)
	c.MySQL.Password = getEnv("MYSQL_PASSWORD", c.MySQL.Password)
	c.MySQL.MaxOpen = getEnvInt("MYSQL_MAX_OPEN_CONNS", c.MySQL.MaxOpen)
	c.MySQL.MaxIdle = getEnvInt("MYSQL_MAX_IDLE_CONNS", c.MySQL.MaxIdle)

	// LLM / OpenAI
	c.LLM.Provider = getEnv("LLM_PROVIDER", c.LLM.Provider)
	c.LLM.APIKey = getEnv("OPENAI_API_KEY", c.LLM.APIKey)
	c.LLM.APIBase = getEnv("OPENAI_API_BASE", c.LLM.APIBase)
	c.LLM.Model = getEnv("OPENAI_MODEL", c.LLM.Model)

	c.Nodal.ReservoirPressure = getEnvFloat("NODAL_RESERVOIR_PRESSURE", c.Nodal.ReservoirPressure)
	c.Nodal.Depth = getEnvFloat("NODAL_DEPTH", c.Nodal.Depth)
	c.Nodal.Gradient = getEnvFloat("NODAL_GRADIENT", c.Nodal.Gradient)
	c.Nodal.WellheadPressures = getEnvFloats("NODAL_WHP", c.Nodal.WellheadPressures)
	c.Nodal.Samples = getEnvInt("NODAL_SAMPLES", c.Nodal.Samples)
	c.Nodal.Refine = getEnvBool("NODAL_REFINE", c.Nodal.Refine)
	c.Nodal.Tolerance = getEnvFloat("NODAL_TOLERANCE", c.Nodal.Tolerance)
	c.Nodal.FrictionPreset = getEnv("NODAL_FRICTION", c.Nodal.FrictionPreset)
	c.Nodal.Anchor = getEnv("NODAL_ANCHOR", c.Nodal.Anchor)
	c.Nodal.IntersectTolerance = getEnvFloat("NODAL_INTERSECT_TOL", c.Nodal.IntersectTolerance)

	c.Economics.OilPrice = getEnvFloat("OIL_PRICE", c.Economics.OilPrice)
	c.Economics.GasPrice = getEnvFloat("GAS_PRICE", c.Economics.GasPrice)
}

// Validate memastikan default nodal bisa dipakai solver.
func (c *Config) Validate() error {
	if c.Nodal.Samples < 2 {
		return fmt.Errorf("nodal.samples must be at least 2, got %d", c.Nodal.Samples)
	}
	if _, err := c.Nodal.Friction(); err != nil {
		return fmt.Errorf("nodal.friction_preset: %w", err)
	}
	if _, err := services.ParseAnchorMode(c.Nodal.Anchor); err != nil {
		return fmt.Errorf("nodal.anchor: %w", err)
	}
	if c.Nodal.IntersectTolerance < 0 {
		return fmt.Errorf("nodal.intersect_tolerance must be non-negative")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	return nil
}

func (n NodalConfig) Friction() (services.FrictionModel, error) {
	if n.FrictionModel != nil {
		return *n.FrictionModel, n.FrictionModel.Validate()
	}
	return services.FrictionPreset(n.FrictionPreset)
}

func (n NodalConfig) SolveOptions() services.SolveOptions {
	return services.SolveOptions{Samples: n.Samples, Refine: n.Refine, Tolerance: n.Tolerance}
}

// MySQLDSN: parseTime=true agar kolom DATE ter-scan ke time.Time.
func (c *Config) MySQLDSN() string {
	m := c.MySQL
	if m.DSN != "" {
		return m.DSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", m.User, m.Password, m.Host, m.Port, m.DB)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		_, err := fmt.Sscanf(v, "%d", &i)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// getEnvFloats: daftar dipisah koma, mis. NODAL_WHP=100,300,500
func getEnvFloats(key string, def []float64) []float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []float64
	for _, part := range strings.Split(v, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return def
		}
		out = append(out, f)
	}
	return out
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

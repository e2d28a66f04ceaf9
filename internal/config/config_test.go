// internal/config/config_test.go

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petrocalc/internal/config"
	"petrocalc/internal/services"
)

func TestLoadDefaults(t *testing.T) {
	c, err := config.LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, "petrocalc", c.AppName)
	assert.Equal(t, 6*time.Second, c.RequestTimeout)
	assert.Equal(t, 1400.0, c.Nodal.ReservoirPressure)
	assert.Equal(t, services.DefaultSolveSamples, c.Nodal.Samples)
	assert.Equal(t, 65.0, c.Economics.OilPrice)
	assert.Equal(t, 3.7, c.Economics.GasPrice)

	f, err := c.Nodal.Friction()
	require.NoError(t, err)
	assert.Equal(t, services.FrictionFetkovich, f)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "petrocalc.yaml")
	yml := `
app_port: "9000"
request_timeout: 10s
mysql:
  host: db.internal
nodal:
  samples: 400
  refine: true
  friction_preset: vogel
  wellhead_pressures: [150, 250]
economics:
  oil_price: 80
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	t.Setenv("APP_PORT", "9100")
	t.Setenv("NODAL_WHP", "120, 220,320")
	t.Setenv("NODAL_TOLERANCE", "1e-4")

	c, err := config.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", c.AppPort, "env wins over file")
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, "db.internal", c.MySQL.Host)
	assert.Equal(t, "3306", c.MySQL.Port, "unset keys keep defaults")
	assert.Equal(t, []float64{120, 220, 320}, c.Nodal.WellheadPressures)
	assert.Equal(t, services.SolveOptions{Samples: 400, Refine: true, Tolerance: 1e-4}, c.Nodal.SolveOptions())
	assert.Equal(t, 80.0, c.Economics.OilPrice)

	f, err := c.Nodal.Friction()
	require.NoError(t, err)
	assert.Equal(t, services.FrictionVogel, f)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := config.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "8080", c.AppPort)
}

func TestLoadRejectsBadNodalConfig(t *testing.T) {
	t.Setenv("NODAL_FRICTION", "hagedorn-brown")
	_, err := config.LoadFile("")
	assert.ErrorIs(t, err, services.ErrInvalidParameter)

	t.Setenv("NODAL_FRICTION", "")
	t.Setenv("NODAL_SAMPLES", "1")
	_, err = config.LoadFile("")
	assert.Error(t, err)
}

func TestLoadFrictionCoefficients(t *testing.T) {
	path := filepath.Join(t.TempDir(), "petrocalc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nodal:\n  friction_preset: vogel\n  friction:\n    k: 0.0005\n    p: 1.3\n"), 0o644))
	c, err := config.LoadFile(path)
	require.NoError(t, err)
	f, err := c.Nodal.Friction()
	require.NoError(t, err)
	assert.Equal(t, services.FrictionModel{K: 0.0005, P: 1.3}, f)

	require.NoError(t, os.WriteFile(path, []byte("nodal:\n  friction:\n    k: -1\n    p: 1.5\n"), 0o644))
	_, err = config.LoadFile(path)
	assert.ErrorIs(t, err, services.ErrInvalidParameter)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nodal: [unclosed"), 0o644))
	_, err := config.LoadFile(path)
	assert.Error(t, err)
}

func TestMySQLDSN(t *testing.T) {
	c := config.Default()
	c.MySQL.User, c.MySQL.Password = "petro", "s3cret"
	assert.Equal(t, "petro:s3cret@tcp(localhost:3306)/petro?parseTime=true", c.MySQLDSN())
}

func TestMySQLDSNOverride(t *testing.T) {
	t.Setenv("DB_DSN", "u:p@tcp(db:3306)/x?parseTime=true")
	c, err := config.LoadFile("")
	require.NoError(t, err)
	assert.True(t, c.MySQL.Enabled)
	assert.Equal(t, "u:p@tcp(db:3306)/x?parseTime=true", c.MySQLDSN())
}

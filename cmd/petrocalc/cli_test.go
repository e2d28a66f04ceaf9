package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petrocalc/internal/services"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PETROCALC_CONFIG", "")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNodalDefaults(t *testing.T) {
	out, err := run(t, "nodal")
	require.NoError(t, err)
	assert.Contains(t, out, "n=1.2693")
	assert.Contains(t, out, "398.148")
	assert.Contains(t, out, "1076.163")
	assert.Contains(t, out, "false") // WHP 500 tidak berpotongan
}

func TestNodalJSON(t *testing.T) {
	out, err := run(t, "nodal", "--json", "--whp", "100")
	require.NoError(t, err)

	var res services.NodalResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Scenarios, 1)
	assert.InDelta(t, 398.148, res.Scenarios[0].OperatingPoint.Rate, 1e-3)
	assert.True(t, res.Scenarios[0].Intersects)
	assert.Nil(t, res.Scenarios[0].Curve)
}

func TestNodalFrictionCoefficients(t *testing.T) {
	// k=0: VLP datar di WHP + gradien × kedalaman
	out, err := run(t, "nodal", "--whp", "100", "--k", "0", "--p", "1", "--json")
	require.NoError(t, err)
	var res services.NodalResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Scenarios, 1)
	assert.InDelta(t, 1060, res.Scenarios[0].OperatingPoint.OutflowPressure, 1e-9)

	path := writeFile(t, "friction.yaml", "nodal:\n  friction:\n    k: 0\n    p: 1\n")
	out, err = run(t, "--config", path, "nodal", "--whp", "100", "--json")
	require.NoError(t, err)
	res = services.NodalResult{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Scenarios, 1)
	assert.InDelta(t, 1060, res.Scenarios[0].OperatingPoint.OutflowPressure, 1e-9)

	_, err = run(t, "nodal", "--whp", "100", "--k", "-1", "--json")
	assert.Error(t, err)
}

func TestNodalCurveCSV(t *testing.T) {
	out, err := run(t, "nodal", "--curve", "1")
	require.NoError(t, err)
	assert.Equal(t, 201, strings.Count(out, "\n"))

	_, err = run(t, "nodal", "--curve", "3")
	assert.Error(t, err)
}

func TestNodalCustomTestsAndErrors(t *testing.T) {
	_, err := run(t, "nodal", "--test", "100:1300", "--test", "400:1100", "--whp", "100")
	require.NoError(t, err)

	_, err = run(t, "nodal", "--test", "100-1300")
	assert.ErrorContains(t, err, "rate:pwf")

	_, err = run(t, "nodal", "--model", "vogel")
	assert.ErrorIs(t, err, services.ErrInvalidParameter)

	_, err = run(t, "nodal", "--model", "linear", "--pi", "1.5", "--whp", "100")
	assert.NoError(t, err)
}

func TestDeclineCSV(t *testing.T) {
	out, err := run(t, "decline", "--model", "harmonic", "--qi", "1000", "--d", "0.1", "--months", "12", "--csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "time_months,rate_stbd\n0,1000.0000\n"))
	assert.Contains(t, out, "\n12,454.5455\n")
}

func TestDeclineTableAndRequiredFlags(t *testing.T) {
	out, err := run(t, "decline", "--qi", "1000", "--d", "0.05", "--months", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "exponential")
	assert.Contains(t, out, "1000.00")

	_, err = run(t, "decline", "--qi", "1000")
	assert.Error(t, err)

	_, err = run(t, "decline", "--model", "cubic", "--qi", "1000", "--d", "0.1")
	assert.Error(t, err)
}

func TestGasLiftTop(t *testing.T) {
	recs, err := services.RunGasLiftSweep(services.DefaultGasLiftParams())
	require.NoError(t, err)
	best := recs[0]
	for _, r := range recs {
		if r.Profit.GreaterThan(best.Profit) {
			best = r
		}
	}

	out, err := run(t, "gaslift", "--top", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "720 records, showing top 3")
	assert.Contains(t, out, best.Profit.StringFixed(2))
}

func TestGasLiftCSV(t *testing.T) {
	out, err := run(t, "gaslift", "--csv")
	require.NoError(t, err)
	assert.Equal(t, 721, strings.Count(out, "\n"))
}

const sampleLAS = `~VERSION INFORMATION
 VERS.   2.0 : CWLS LOG ASCII STANDARD - VERSION 2.0
 WRAP.   NO  : ONE LINE PER DEPTH STEP
~WELL INFORMATION
 STRT.M       1000.0            : START DEPTH
 STOP.M       1001.5            : STOP DEPTH
 STEP.M       0.5               : STEP
 NULL.        -999.25           : NULL VALUE
 WELL.        BNG-07            : WELL
~CURVE INFORMATION
 DEPT.M            : DEPTH
 GR  .GAPI         : GAMMA RAY
 RDEP.OHMM         : DEEP RESISTIVITY
 RHOB.G/CC         : BULK DENSITY
 NPHI.V/V          : NEUTRON POROSITY
~PARAMETER INFORMATION
 RW  .OHMM  0.05   : FORMATION WATER RESISTIVITY
~A
1000.0   30.0   50.0   2.30   25.0
1000.5  120.0    2.0   2.55   35.0
1001.0   40.0  100.0   2.20   28.0
1001.5 -999.25  20.0   2.30   20.0
`

func TestPetroSummary(t *testing.T) {
	path := writeFile(t, "bng07.las", sampleLAS)

	out, err := run(t, "petro", path)
	require.NoError(t, err)
	assert.Contains(t, out, "BNG-07")
	assert.Contains(t, out, "0.500")
	assert.Contains(t, out, "0.2297")

	out, err = run(t, "petro", path, "--json")
	require.NoError(t, err)
	var res struct {
		Well    string `json:"well"`
		Summary struct {
			NetThickness float64 `json:"net_thickness"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "BNG-07", res.Well)
	assert.InDelta(t, 1.0, res.Summary.NetThickness, 1e-9)

	out, err = run(t, "petro", path, "--csv", "--top", "1000.5")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "DEPT,GR,RT,RHOB,NPHI,VSH,PHID,PHIN,PHIE,SW,PAY\n"))
	assert.Equal(t, 4, strings.Count(out, "\n"))
}

func TestPetroErrors(t *testing.T) {
	path := writeFile(t, "bng07.las", sampleLAS)

	_, err := run(t, "petro", path, "--csv", "--json")
	assert.Error(t, err)

	_, err = run(t, "petro", path, "--gr-curve", "SGR")
	assert.ErrorIs(t, err, services.ErrInvalidParameter)

	_, err = run(t, "petro", filepath.Join(t.TempDir(), "missing.las"))
	assert.Error(t, err)

	_, err = run(t, "petro")
	assert.Error(t, err)
}

const (
	ofmProductionCSV = "Well Name,Date,Oil Rate (bbl/d),Gas Rate (Mscf/d),Water Rate (bbl/d),WHP (psi),Status\n" +
		"W-01,2024-01-01,850,420,120,210,ON\n" +
		"W-02,2024-01-01,300,150,600,180,ON\n"
	ofmWellTestCSV = "Well Name,Test Date,Q_liq (bbl/d),Water Cut (%),GOR (scf/bbl),THP (psi),Lift Method\n" +
		"W-01,2023-12-20,960,12.5,494,205,ESP\n" +
		"W-02,2023-12-21,900,66.7,500,175,GL\n"
)

func TestOFMExportStdout(t *testing.T) {
	prod := writeFile(t, "prod.csv", ofmProductionCSV)
	tests := writeFile(t, "tests.csv", ofmWellTestCSV)

	out, err := run(t, "ofm-export", "--production", prod, "--welltest", tests, "--wells", "W-01", "-o", "-")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "WELL,DATE,OIL_BOPD"))
	assert.True(t, strings.HasPrefix(lines[1], "W-01,2024-01-01,850"))
}

func TestOFMExportFile(t *testing.T) {
	prod := writeFile(t, "prod.csv", ofmProductionCSV)
	tests := writeFile(t, "tests.csv", ofmWellTestCSV)
	dst := filepath.Join(t.TempDir(), "dash.csv")

	out, err := run(t, "ofm-export", "--production", prod, "--welltest", tests, "-o", dst)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 2 rows (2 wells)")

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "\n"))

	_, err = run(t, "ofm-export", "--production", prod)
	assert.Error(t, err)
}

func TestConfigFileOverridesNodalDefaults(t *testing.T) {
	path := writeFile(t, "petrocalc.yaml", "nodal:\n  wellhead_pressures: [300]\n  samples: 50\n")

	out, err := run(t, "--config", path, "nodal", "--json")
	require.NoError(t, err)
	var res services.NodalResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Scenarios, 1)
	assert.Equal(t, 300.0, res.Scenarios[0].WellheadPressure)
	assert.Equal(t, 50, res.Scenarios[0].OperatingPoint.Samples)

	bad := writeFile(t, "bad.yaml", "nodal:\n  anchor: median\n")
	_, err = run(t, "--config", bad, "nodal")
	assert.Error(t, err)
}

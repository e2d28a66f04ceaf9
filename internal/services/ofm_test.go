// internal/services/ofm_test.go

package services_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petrocalc/internal/services"
)

const ofmProductionCSV = "\ufeffWell Name,Date,Oil Rate (bbl/d),Gas Rate (Mscf/d),Water Rate (bbl/d),WHP (psi),Status,Remarks\n" +
	"W-01,2024-01-01,850,420,120,210,ON,\n" +
	"W-02,2024-01-01,300,150,600,180,ON,choke\n" +
	"W-03,2024-01-01,0,0,0,0,SHUT-IN,\n"

const ofmWellTestCSV = "Well Name,Test Date,Q_liq (bbl/d),Water Cut (%),GOR (scf/bbl),THP (psi),Lift Method\n" +
	"W-01,2023-12-20,960,12.5,494,205,ESP\n" +
	"W-02,2023-12-21,900,66.7,500,175,GL\n" +
	"W-02,2023-11-02,880,65.0,480,170,GL\n"

func readTable(t *testing.T, s string) services.Table {
	t.Helper()
	tbl, err := services.ReadTable(strings.NewReader(s))
	require.NoError(t, err)
	return tbl
}

func TestCleanOFMProduction(t *testing.T) {
	tbl, err := services.CleanOFMProduction(readTable(t, ofmProductionCSV))
	require.NoError(t, err)

	assert.Equal(t, services.OFMProductionColumns, tbl.Header)
	require.Len(t, tbl.Rows, 3)
	if diff := cmp.Diff([]string{"W-02", "2024-01-01", "300", "150", "600", "180", "ON"}, tbl.Rows[1]); diff != "" {
		t.Fatalf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestCleanOFMMissingColumn(t *testing.T) {
	_, err := services.CleanOFMWellTests(readTable(t, "Well Name,Test Date\nW-01,2024-01-01\n"))
	assert.ErrorIs(t, err, services.ErrInvalidParameter)
}

func TestOFMExportLeftJoin(t *testing.T) {
	out, err := services.OFMExport(readTable(t, ofmProductionCSV), readTable(t, ofmWellTestCSV), services.OFMFilter{}, false)
	require.NoError(t, err)

	wantHeader := []string{
		"WELL", "DATE", "OIL_BOPD", "GAS_MSCFD", "WATER_BWPD", "WHP_PSIG", "STATUS",
		"TEST_DATE", "Q_LIQ", "WCUT", "GOR", "THP_PSIG", "LIFT_METHOD",
	}
	if diff := cmp.Diff(wantHeader, out.Header); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}
	// W-02 punya dua test → dua baris; W-03 tanpa test tetap ada
	require.Len(t, out.Rows, 4)
	assert.Equal(t, "W-03", out.Rows[3][0])
	assert.Equal(t, "", out.Rows[3][12])
	assert.Equal(t, []string{"ESP", "GL"}, out.Unique("LIFT_METHOD"))
	assert.Equal(t, []string{"W-01", "W-02", "W-03"}, out.Unique("WELL"))
}

func TestOFMExportFilter(t *testing.T) {
	out, err := services.OFMExport(readTable(t, ofmProductionCSV), readTable(t, ofmWellTestCSV),
		services.OFMFilter{LiftMethods: []string{"GL"}}, false)
	require.NoError(t, err)
	require.Len(t, out.Rows, 2)
	for _, row := range out.Rows {
		assert.Equal(t, "W-02", row[0])
	}

	out, err = services.OFMExport(readTable(t, ofmProductionCSV), readTable(t, ofmWellTestCSV),
		services.OFMFilter{Wells: []string{"W-01", "W-03"}}, false)
	require.NoError(t, err)
	assert.Len(t, out.Rows, 2)

	_, err = services.OFMExport(readTable(t, ofmProductionCSV), readTable(t, ofmWellTestCSV),
		services.OFMFilter{TestTypes: []string{"FLOWING"}}, false)
	assert.ErrorIs(t, err, services.ErrInvalidParameter)
}

func TestMergeOFMColumnCollision(t *testing.T) {
	prod := services.Table{Header: []string{"WELL", "STATUS"}, Rows: [][]string{{"A", "ON"}}}
	tests := services.Table{Header: []string{"WELL", "STATUS"}, Rows: [][]string{{"A", "VALID"}}}
	out, err := services.MergeOFM(prod, tests)
	require.NoError(t, err)
	assert.Equal(t, []string{"WELL", "STATUS", "STATUS_TEST"}, out.Header)
	assert.Equal(t, [][]string{{"A", "ON", "VALID"}}, out.Rows)
}

func TestReadTableErrors(t *testing.T) {
	_, err := services.ReadTable(strings.NewReader(""))
	assert.ErrorIs(t, err, services.ErrInsufficientData)
}

func TestWriteTableAndFilename(t *testing.T) {
	var buf bytes.Buffer
	tbl := services.Table{Header: []string{"WELL", "Q"}, Rows: [][]string{{"W-01", "1,200"}}}
	require.NoError(t, services.WriteTable(&buf, tbl))
	assert.Equal(t, "WELL,Q\nW-01,\"1,200\"\n", buf.String())

	now := time.Date(2024, 3, 9, 7, 5, 1, 0, time.UTC)
	assert.Equal(t, "powerbi_export_20240309_070501.csv", services.OFMExportFilename(now))
}

// internal/services/ofm_service.go
// Export data OFM (produksi + well test) ke CSV bersih untuk dashboard Power BI.

package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
)

// Table adalah CSV generik: header + baris string.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

func (t Table) index(col string) int {
	for i, h := range t.Header {
		if h == col {
			return i
		}
	}
	return -1
}

// Header OFM → kode kolom dashboard.
var (
	ofmProductionRename = map[string]string{
		"Well Name":          "WELL",
		"Date":               "DATE",
		"Oil Rate (bbl/d)":   "OIL_BOPD",
		"Gas Rate (Mscf/d)":  "GAS_MSCFD",
		"Water Rate (bbl/d)": "WATER_BWPD",
		"WHP (psi)":          "WHP_PSIG",
		"Status":             "STATUS",
	}
	OFMProductionColumns = []string{"WELL", "DATE", "OIL_BOPD", "GAS_MSCFD", "WATER_BWPD", "WHP_PSIG", "STATUS"}

	ofmWellTestRename = map[string]string{
		"Well Name":     "WELL",
		"Test Date":     "TEST_DATE",
		"Q_liq (bbl/d)": "Q_LIQ",
		"Water Cut (%)": "WCUT",
		"GOR (scf/bbl)": "GOR",
		"THP (psi)":     "THP_PSIG",
		"Lift Method":   "LIFT_METHOD",
	}
	OFMWellTestColumns = []string{"WELL", "TEST_DATE", "Q_LIQ", "WCUT", "GOR", "THP_PSIG", "LIFT_METHOD"}
)

const ofmKey = "WELL"

// ReadTable membaca CSV dengan header di baris pertama.
func ReadTable(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	recs, err := cr.ReadAll()
	if err != nil {
		return Table{}, invalidSample("read csv: %v", err)
	}
	if len(recs) == 0 {
		return Table{}, insufficient("csv has no header row")
	}
	hdr := recs[0]
	if len(hdr) > 0 {
		hdr[0] = strings.TrimPrefix(hdr[0], "\ufeff")
	}
	for i := range hdr {
		hdr[i] = strings.TrimSpace(hdr[i])
	}
	t := Table{Header: hdr, Rows: recs[1:]}
	for i, row := range t.Rows {
		if len(row) != len(hdr) {
			return Table{}, invalidSample("csv row %d: expected %d columns, got %d", i+2, len(hdr), len(row))
		}
	}
	return t, nil
}

// cleanTable me-rename header lalu memproyeksikan kolom sesuai urutan cols.
func cleanTable(t Table, rename map[string]string, cols []string) (Table, error) {
	renamed := Table{Header: make([]string, len(t.Header)), Rows: t.Rows}
	for i, h := range t.Header {
		if to, ok := rename[h]; ok {
			renamed.Header[i] = to
		} else {
			renamed.Header[i] = h
		}
	}
	idx := make([]int, len(cols))
	for i, c := range cols {
		idx[i] = renamed.index(c)
		if idx[i] < 0 {
			return Table{}, invalidParam("column %q missing", c)
		}
	}
	out := Table{Header: append([]string(nil), cols...), Rows: make([][]string, 0, len(t.Rows))}
	for _, row := range renamed.Rows {
		rec := make([]string, len(cols))
		for i, j := range idx {
			rec[i] = strings.TrimSpace(row[j])
		}
		out.Rows = append(out.Rows, rec)
	}
	return out, nil
}

func CleanOFMProduction(t Table) (Table, error) {
	return cleanTable(t, ofmProductionRename, OFMProductionColumns)
}

func CleanOFMWellTests(t Table) (Table, error) {
	return cleanTable(t, ofmWellTestRename, OFMWellTestColumns)
}

// MergeOFM: left join well test ke produksi berdasarkan WELL.
// Baris produksi tanpa well test tetap ada dengan kolom test kosong.
func MergeOFM(prod, tests Table) (Table, error) {
	pk, tk := prod.index(ofmKey), tests.index(ofmKey)
	if pk < 0 || tk < 0 {
		return Table{}, invalidParam("both tables need a %s column", ofmKey)
	}
	byWell := map[string][][]string{}
	for _, row := range tests.Rows {
		byWell[row[tk]] = append(byWell[row[tk]], row)
	}

	hdr := append([]string(nil), prod.Header...)
	var testCols []int
	for i, h := range tests.Header {
		if i == tk {
			continue
		}
		name := h
		if prod.index(h) >= 0 {
			name = h + "_TEST"
		}
		hdr = append(hdr, name)
		testCols = append(testCols, i)
	}

	out := Table{Header: hdr}
	for _, prow := range prod.Rows {
		matches := byWell[prow[pk]]
		if len(matches) == 0 {
			rec := append(append([]string(nil), prow...), make([]string, len(testCols))...)
			out.Rows = append(out.Rows, rec)
			continue
		}
		for _, trow := range matches {
			rec := append([]string(nil), prow...)
			for _, j := range testCols {
				rec = append(rec, trow[j])
			}
			out.Rows = append(out.Rows, rec)
		}
	}
	return out, nil
}

// OFMFilter: daftar kosong berarti tidak difilter.
type OFMFilter struct {
	Wells       []string `json:"wells,omitempty"`
	LiftMethods []string `json:"lift_methods,omitempty"`
	TestTypes   []string `json:"test_types,omitempty"`
}

func FilterOFM(t Table, f OFMFilter) (Table, error) {
	type cond struct {
		col int
		set map[string]struct{}
	}
	var conds []cond
	add := func(col string, vals []string) error {
		if len(vals) == 0 {
			return nil
		}
		i := t.index(col)
		if i < 0 {
			return invalidParam("cannot filter on missing column %q", col)
		}
		set := make(map[string]struct{}, len(vals))
		for _, v := range vals {
			set[strings.TrimSpace(v)] = struct{}{}
		}
		conds = append(conds, cond{col: i, set: set})
		return nil
	}
	if err := add("WELL", f.Wells); err != nil {
		return Table{}, err
	}
	if err := add("LIFT_METHOD", f.LiftMethods); err != nil {
		return Table{}, err
	}
	if err := add("TEST_TYPE", f.TestTypes); err != nil {
		return Table{}, err
	}

	out := Table{Header: t.Header, Rows: make([][]string, 0, len(t.Rows))}
	for _, row := range t.Rows {
		keep := true
		for _, c := range conds {
			if _, ok := c.set[row[c.col]]; !ok {
				keep = false
				break
			}
		}
		if keep {
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}

// Unique mengembalikan nilai unik non-kosong sebuah kolom (urutan kemunculan).
func (t Table) Unique(col string) []string {
	i := t.index(col)
	if i < 0 {
		return nil
	}
	seen := map[string]struct{}{}
	var out []string
	for _, row := range t.Rows {
		v := row[i]
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func WriteTable(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// OFMExportFilename: powerbi_export_YYYYmmdd_HHMMSS.csv.
func OFMExportFilename(now time.Time) string {
	return "powerbi_export_" + now.Format("20060102_150405") + ".csv"
}

// OFMExport menjalankan clean → merge → filter. raw=true melewati tahap clean
// (untuk file yang sudah memakai kode kolom dashboard).
func OFMExport(prod, tests Table, f OFMFilter, raw bool) (Table, error) {
	if !raw {
		var err error
		if prod, err = CleanOFMProduction(prod); err != nil {
			return Table{}, fmt.Errorf("production: %w", err)
		}
		if tests, err = CleanOFMWellTests(tests); err != nil {
			return Table{}, fmt.Errorf("well test: %w", err)
		}
	}
	merged, err := MergeOFM(prod, tests)
	if err != nil {
		return Table{}, err
	}
	return FilterOFM(merged, f)
}

/*
Kompilasi manual:
  go build -o tools/gen_dummy/load_to_mysql ./tools/gen_dummy

Generate CSV dummy lalu load:
  ./tools/gen_dummy/load_to_mysql -gen -table well_test -wells BNG-07,BNG-09 > /tmp/wt.csv
  ./tools/gen_dummy/load_to_mysql -table well_test -csv /tmp/wt.csv \
    -dsn "petro:secret@tcp(127.0.0.1:3306)/petro?parseTime=true" -batch 2000
*/

// [FILE] tools/gen_dummy/load_to_mysql.go
package main

import (
	"bufio"
	"database/sql"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"petrocalc/internal/services"
)

var (
	csvPath   = flag.String("csv", "tools/gen_dummy/sample_well_test.csv", "CSV path")
	dsn       = flag.String("dsn", "root:password@tcp(127.0.0.1:3306)/petro?parseTime=true", "MySQL DSN")
	table     = flag.String("table", "well_test", "Target table (well_master|well_test|prod_allocation_daily)")
	batchSize = flag.Int("batch", 1000, "Insert batch size")
	truncate  = flag.Bool("truncate", false, "TRUNCATE target table first")
	gen       = flag.Bool("gen", false, "Write dummy CSV for -table to stdout instead of loading")
	wells     = flag.String("wells", "BNG-07", "Comma separated well ids for -gen")
	days      = flag.Int("days", 365, "Days of production for -gen prod_allocation_daily")
)

// tableSpec: kolom CSV sama dengan kolom tabel; nilai kosong → NULL.
type tableSpec struct {
	cols   []string
	update string
}

var tables = map[string]tableSpec{
	"well_master": {
		cols:   []string{"well_id", "well_name"},
		update: "well_name=VALUES(well_name)",
	},
	"well_test": {
		cols:   []string{"well_id", "test_date", "rate_stbd", "pwf_psig", "reservoir_pressure_psig"},
		update: "rate_stbd=VALUES(rate_stbd), pwf_psig=VALUES(pwf_psig), reservoir_pressure_psig=VALUES(reservoir_pressure_psig)",
	},
	"prod_allocation_daily": {
		cols:   []string{"date", "well_id", "oil_bopd", "gas_mmscfd", "water_bwpd"},
		update: "oil_bopd=VALUES(oil_bopd), gas_mmscfd=VALUES(gas_mmscfd), water_bwpd=VALUES(water_bwpd)",
	},
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	flag.Parse()

	ts, ok := tables[*table]
	if !ok {
		log.Fatalf("unsupported table: %s", *table)
	}

	if *gen {
		start := time.Now().UTC().AddDate(0, 0, -*days).Truncate(24 * time.Hour)
		must(generate(os.Stdout, *table, strings.Split(*wells, ","), start, *days))
		return
	}

	db, err := sql.Open("mysql", *dsn)
	must(err)
	defer db.Close()
	must(db.Ping())

	if *truncate {
		_, err := db.Exec("TRUNCATE TABLE " + *table)
		must(err)
		log.Printf("[ok] truncated %s", *table)
	}

	f, err := os.Open(*csvPath)
	must(err)
	defer f.Close()

	n, err := load(db, *table, ts, bufio.NewReader(f), *batchSize)
	must(err)
	log.Printf("[ok] inserted %s rows: ~%d", *table, n)
}

/* ======================= Common Helpers ======================= */

func headerIndex(h []string) map[string]int {
	m := map[string]int{}
	for i, c := range h {
		c = strings.TrimSpace(strings.ToLower(c))
		c = strings.TrimPrefix(c, "\ufeff")
		m[c] = i
	}
	return m
}

func ensureColumns(idx map[string]int, need []string) error {
	for _, c := range need {
		if _, ok := idx[c]; !ok {
			return fmt.Errorf("missing column %q in CSV header", c)
		}
	}
	return nil
}

/* ======================= loader ======================= */

// load membaca CSV lalu INSERT ... ON DUPLICATE KEY UPDATE per batch.
func load(db *sql.DB, name string, ts tableSpec, src io.Reader, batch int) (int, error) {
	if batch < 1 {
		batch = 1
	}
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1

	head, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	idx := headerIndex(head)
	if err := ensureColumns(idx, ts.cols); err != nil {
		return 0, err
	}

	width := len(ts.cols)
	vals := make([]any, 0, batch*width)
	rows := 0
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, err
		}
		for _, c := range ts.cols {
			i := idx[c]
			if i >= len(rec) || strings.TrimSpace(rec[i]) == "" {
				vals = append(vals, nil)
				continue
			}
			vals = append(vals, strings.TrimSpace(rec[i]))
		}
		rows++
		if rows%batch == 0 {
			if err := flush(db, name, ts, &vals); err != nil {
				return rows, err
			}
		}
	}
	return rows, flush(db, name, ts, &vals)
}

func flush(db *sql.DB, name string, ts tableSpec, vals *[]any) error {
	if len(*vals) == 0 {
		return nil
	}
	width := len(ts.cols)
	group := "(" + strings.TrimRight(strings.Repeat("?, ", width), ", ") + ")"
	placeholders := strings.TrimRight(strings.Repeat(group+",", len(*vals)/width), ",")
	q := "INSERT INTO " + name + "(" + strings.Join(ts.cols, ", ") + ") VALUES " + placeholders +
		" ON DUPLICATE KEY UPDATE " + ts.update
	if _, err := db.Exec(q, *vals...); err != nil {
		return fmt.Errorf("insert %s: %w", name, err)
	}
	*vals = (*vals)[:0]
	return nil
}

/* ======================= generator ======================= */

const daysPerMonth = 30.4375

// generate menulis CSV dummy: well test dari sampel bawaan (Pr 1400) dan
// produksi harian mengikuti decline eksponensial D=0.05/bulan.
func generate(w io.Writer, name string, wellIDs []string, start time.Time, nDays int) error {
	ts, ok := tables[name]
	if !ok {
		return fmt.Errorf("unsupported table: %s", name)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(ts.cols); err != nil {
		return err
	}
	ff := func(v float64, prec int) string { return strconv.FormatFloat(v, 'f', prec, 64) }

	k := 0
	for _, id := range wellIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		scale := 1 + 0.1*float64(k) // sumur berikutnya sedikit lebih produktif
		k++
		var err error
		switch name {
		case "well_master":
			err = cw.Write([]string{id, "Well " + id})
		case "well_test":
			for i, s := range services.DefaultWellTestSamples() {
				pr := ""
				if i == 0 {
					pr = "1400"
				}
				day := start.AddDate(0, 0, i*7).Format("2006-01-02")
				if err = cw.Write([]string{id, day, ff(s.Rate*scale, 1), ff(s.Pwf, 1), pr}); err != nil {
					break
				}
			}
		case "prod_allocation_daily":
			for d := 0; d < nDays; d++ {
				q, derr := services.DeclineRate(services.DeclineExponential, 1000*scale, 0.05, 0, float64(d)/daysPerMonth)
				if derr != nil {
					return derr
				}
				day := start.AddDate(0, 0, d).Format("2006-01-02")
				if err = cw.Write([]string{day, id, ff(q, 2), ff(q*0.5/1000, 4), ff(q*0.3, 2)}); err != nil {
					break
				}
			}
		}
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

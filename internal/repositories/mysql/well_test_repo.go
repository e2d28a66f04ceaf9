// repositories/mysql/well_test_repo.go
// Repo untuk data well test (kalibrasi IPR)

package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"petrocalc/internal/services"
)

type WellTestRepo struct {
	DB *sql.DB
}

func NewWellTestRepo(db *sql.DB) *WellTestRepo { return &WellTestRepo{DB: db} }

// ErrWellNotFound dikembalikan ResolveWell jika ident tidak cocok dengan well mana pun.
var ErrWellNotFound = errors.New("well not found")

type WellTestFilter struct {
	WellIDs []string
	Start   *time.Time
	End     *time.Time
	Limit   int
}

// Asumsi skema:
//
//	well_test(well_id VARCHAR, test_date DATE, rate_stbd DOUBLE, pwf_psig DOUBLE,
//	          reservoir_pressure_psig DOUBLE NULL)
type WellTestRow struct {
	WellID            string
	TestDate          time.Time
	RateSTBD          float64
	PwfPsig           float64
	ReservoirPressure sql.NullFloat64
}

// ResolveWell menerima well_id atau well_name (case-insensitive) dan mengembalikan keduanya.
func (r *WellTestRepo) ResolveWell(ctx context.Context, ident string) (string, string, error) {
	if r == nil || r.DB == nil {
		return "", "", errors.New("well test repo: DB is nil")
	}
	ident = strings.TrimSpace(ident)
	if ident == "" {
		return "", "", errors.New("well test repo: empty ident")
	}

	var id, name string
	const q = `
		SELECT well_id, well_name
		FROM well_master
		WHERE well_id = ? OR LOWER(well_name) = LOWER(?)
		ORDER BY (well_id = ?) DESC
		LIMIT 1`
	err := r.DB.QueryRowContext(ctx, q, ident, ident, ident).Scan(&id, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", fmt.Errorf("%w: %s", ErrWellNotFound, ident)
	}
	if err != nil {
		return "", "", fmt.Errorf("resolve well: %w", err)
	}
	return id, name, nil
}

// List mengembalikan test terbaru lebih dulu.
func (r *WellTestRepo) List(ctx context.Context, f WellTestFilter) ([]WellTestRow, error) {
	sb := strings.Builder{}
	sb.WriteString(`
		SELECT well_id, test_date, rate_stbd, pwf_psig, reservoir_pressure_psig
		FROM well_test`)

	var (
		where []string
		args  []any
	)
	if len(f.WellIDs) > 0 {
		where = append(where, "well_id IN ("+placeholders(len(f.WellIDs))+")")
		for _, id := range f.WellIDs {
			args = append(args, id)
		}
	}
	if f.Start != nil {
		where = append(where, "test_date >= ?")
		args = append(args, f.Start.Format("2006-01-02"))
	}
	if f.End != nil {
		where = append(where, "test_date < ?")
		args = append(args, f.End.Format("2006-01-02"))
	}
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY test_date DESC, rate_stbd ASC LIMIT ?")

	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	args = append(args, limit)

	rows, err := r.DB.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query well_test: %w", err)
	}
	defer rows.Close()

	var out []WellTestRow
	for rows.Next() {
		var w WellTestRow
		if err := rows.Scan(&w.WellID, &w.TestDate, &w.RateSTBD, &w.PwfPsig, &w.ReservoirPressure); err != nil {
			return nil, fmt.Errorf("scan well_test: %w", err)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

// Samples mengubah baris test menjadi input FitInflow, diurutkan naik menurut rate
// (sampel pertama = drawdown terkecil, dipakai sebagai anchor C).
// Reservoir pressure diambil dari test terbaru yang mengisinya; 0 jika tidak ada.
func Samples(rows []WellTestRow) ([]services.WellTestSample, float64) {
	out := make([]services.WellTestSample, 0, len(rows))
	var pr float64
	var prDate time.Time
	for _, w := range rows {
		out = append(out, services.WellTestSample{Rate: w.RateSTBD, Pwf: w.PwfPsig})
		if w.ReservoirPressure.Valid && w.TestDate.After(prDate) {
			pr, prDate = w.ReservoirPressure.Float64, w.TestDate
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rate < out[j].Rate })
	return out, pr
}

// repositories/mysql/production_repo.go
// Repo untuk data produksi harian + histori bulanan untuk decline fit
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"petrocalc/internal/services"
)

type ProductionRepo struct{ DB *sql.DB }

func NewProductionRepo(db *sql.DB) *ProductionRepo { return &ProductionRepo{DB: db} }

type ProdRow struct {
	ProdDate  time.Time
	WellID    string
	OilBOPD   sql.NullFloat64
	GasMMSCFD sql.NullFloat64
	WaterBWPD sql.NullFloat64
}

type ProdFilter struct {
	WellID string
	Start  *time.Time // inclusive
	End    *time.Time // exclusive
	Limit  int
	Offset int
}

// Asumsi skema:
//
//	prod_allocation_daily(date DATE, well_id VARCHAR, oil_bopd DOUBLE, gas_mmscfd DOUBLE, water_bwpd DOUBLE)
func (r *ProductionRepo) ListDaily(ctx context.Context, f ProdFilter) ([]ProdRow, error) {
	if f.Limit <= 0 || f.Limit > 1000 {
		f.Limit = 200
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	const base = `
		SELECT date, well_id, oil_bopd, gas_mmscfd, water_bwpd
		FROM prod_allocation_daily
		WHERE 1=1`
	args := []any{}
	q := base

	if f.WellID != "" {
		q += ` AND well_id = ?`
		args = append(args, f.WellID)
	}
	if f.Start != nil {
		q += ` AND date >= ?`
		args = append(args, f.Start.Format("2006-01-02"))
	}
	if f.End != nil {
		q += ` AND date < ?`
		args = append(args, f.End.Format("2006-01-02"))
	}

	q += ` ORDER BY date DESC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query production daily: %w", err)
	}
	defer rows.Close()

	var out []ProdRow
	for rows.Next() {
		var rrow ProdRow
		if err := rows.Scan(&rrow.ProdDate, &rrow.WellID, &rrow.OilBOPD, &rrow.GasMMSCFD, &rrow.WaterBWPD); err != nil {
			return nil, fmt.Errorf("scan production daily: %w", err)
		}
		out = append(out, rrow)
	}
	return out, rows.Err()
}

// MonthlyRate: rata-rata oil rate satu bulan kalender.
type MonthlyRate struct {
	Month   time.Time
	OilBOPD float64
}

// MonthlyOil mengagregasi produksi harian per bulan (urut naik), hari tanpa nilai diabaikan.
func (r *ProductionRepo) MonthlyOil(ctx context.Context, wellID string, start, end *time.Time) ([]MonthlyRate, error) {
	q := `
		SELECT DATE_FORMAT(date, '%Y-%m-01') AS month, AVG(oil_bopd)
		FROM prod_allocation_daily
		WHERE well_id = ? AND oil_bopd IS NOT NULL`
	args := []any{wellID}
	if start != nil {
		q += ` AND date >= ?`
		args = append(args, start.Format("2006-01-02"))
	}
	if end != nil {
		q += ` AND date < ?`
		args = append(args, end.Format("2006-01-02"))
	}
	q += ` GROUP BY month ORDER BY month ASC`

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query production monthly: %w", err)
	}
	defer rows.Close()

	var out []MonthlyRate
	for rows.Next() {
		var (
			month string
			rate  float64
		)
		if err := rows.Scan(&month, &rate); err != nil {
			return nil, fmt.Errorf("scan production monthly: %w", err)
		}
		m, err := time.Parse("2006-01-02", month)
		if err != nil {
			return nil, fmt.Errorf("parse month %q: %w", month, err)
		}
		out = append(out, MonthlyRate{Month: m, OilBOPD: rate})
	}
	return out, rows.Err()
}

// HistoryPoints mengubah histori bulanan menjadi titik decline; T = bulan sejak bulan pertama.
func HistoryPoints(months []MonthlyRate) []services.ProductionPoint {
	if len(months) == 0 {
		return nil
	}
	y0, m0, _ := months[0].Month.Date()
	out := make([]services.ProductionPoint, len(months))
	for i, m := range months {
		y, mo, _ := m.Month.Date()
		out[i] = services.ProductionPoint{
			T:    float64((y-y0)*12 + int(mo-m0)),
			Rate: m.OilBOPD,
		}
	}
	return out
}

// internal/repositories/mysql/repo_test.go

package mysql_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petrocalc/internal/repositories/mysql"
	"petrocalc/internal/services"
)

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestWellTestRepoList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	start := date(2024, 1, 1)
	mock.ExpectQuery(`FROM well_test WHERE well_id IN \(\?,\?\) AND test_date >= \? ORDER BY test_date DESC`).
		WithArgs("BNG-07", "BNG-08", "2024-01-01", 50).
		WillReturnRows(sqlmock.NewRows([]string{"well_id", "test_date", "rate_stbd", "pwf_psig", "reservoir_pressure_psig"}).
			AddRow("BNG-07", date(2024, 3, 1), 550.0, 1000.0, 1400.0).
			AddRow("BNG-07", date(2024, 2, 1), 100.0, 1300.0, nil))

	repo := mysql.NewWellTestRepo(db)
	rows, err := repo.List(context.Background(), mysql.WellTestFilter{WellIDs: []string{"BNG-07", "BNG-08"}, Start: &start})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].ReservoirPressure.Valid)
	assert.False(t, rows[1].ReservoirPressure.Valid)
	require.NoError(t, mock.ExpectationsWereMet())

	samples, pr := mysql.Samples(rows)
	assert.Equal(t, 1400.0, pr)
	assert.Equal(t, []services.WellTestSample{{Rate: 100, Pwf: 1300}, {Rate: 550, Pwf: 1000}}, samples)
}

func TestWellTestRepoResolveWell(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM well_master`).
		WithArgs("bunga 7", "bunga 7", "bunga 7").
		WillReturnRows(sqlmock.NewRows([]string{"well_id", "well_name"}).AddRow("BNG-07", "Bunga 7"))
	mock.ExpectQuery(`FROM well_master`).
		WithArgs("XX", "XX", "XX").
		WillReturnError(sql.ErrNoRows)

	repo := mysql.NewWellTestRepo(db)
	id, name, err := repo.ResolveWell(context.Background(), " bunga 7 ")
	require.NoError(t, err)
	assert.Equal(t, "BNG-07", id)
	assert.Equal(t, "Bunga 7", name)

	_, _, err = repo.ResolveWell(context.Background(), "XX")
	assert.ErrorIs(t, err, mysql.ErrWellNotFound)
	require.NoError(t, mock.ExpectationsWereMet())

	_, _, err = (&mysql.WellTestRepo{}).ResolveWell(context.Background(), "BNG-07")
	assert.Error(t, err)
}

func TestProductionRepoMonthlyOil(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`GROUP BY month ORDER BY month ASC`).
		WithArgs("BNG-07").
		WillReturnRows(sqlmock.NewRows([]string{"month", "avg"}).
			AddRow("2023-11-01", 1000.0).
			AddRow("2023-12-01", 950.0).
			AddRow("2024-02-01", 860.0))

	repo := mysql.NewProductionRepo(db)
	months, err := repo.MonthlyOil(context.Background(), "BNG-07", nil, nil)
	require.NoError(t, err)
	require.Len(t, months, 3)
	assert.Equal(t, date(2024, 2, 1), months[2].Month)
	require.NoError(t, mock.ExpectationsWereMet())

	pts := mysql.HistoryPoints(months)
	assert.Equal(t, []services.ProductionPoint{{T: 0, Rate: 1000}, {T: 1, Rate: 950}, {T: 3, Rate: 860}}, pts)
	assert.Nil(t, mysql.HistoryPoints(nil))
}

func TestProductionRepoListDaily(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM prod_allocation_daily`).
		WithArgs("BNG-07", 200, 0).
		WillReturnRows(sqlmock.NewRows([]string{"date", "well_id", "oil_bopd", "gas_mmscfd", "water_bwpd"}).
			AddRow(date(2024, 3, 2), "BNG-07", 812.5, nil, 140.0))

	repo := mysql.NewProductionRepo(db)
	rows, err := repo.ListDaily(context.Background(), mysql.ProdFilter{WellID: "BNG-07"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 812.5, rows[0].OilBOPD.Float64)
	assert.False(t, rows[0].GasMMSCFD.Valid)
	require.NoError(t, mock.ExpectationsWereMet())
}

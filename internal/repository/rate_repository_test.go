package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
)

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func TestGetPlanByCode_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT .+ FROM rate_plans WHERE property_id = \\? AND code = \\?").
		WithArgs(uint64(1), "BAR").
		WillReturnRows(sqlmock.NewRows([]string{"id", "property_id", "code", "name"}))

	repo := NewRateRepo(db)
	_, err = repo.GetPlanByCode(context.Background(), 1, "BAR")
	if err != ErrPlanNotFound {
		t.Fatalf("err = %v, want ErrPlanNotFound", err)
	}
}

func TestIntervalsForRange_OverlapPredicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	// Half-open overlap: start_date < to AND end_date > from, with the
	// bounds formatted as DATE strings.
	mock.ExpectQuery("FROM rate_price_intervals").
		WithArgs(uint64(5), uint64(3), "2026-06-12", "2026-06-10").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "property_id", "room_type_id", "rate_plan_id", "start_date", "end_date",
			"weekday_mask", "base_rate_cents", "min_los", "closed", "priority",
		}).AddRow(1, 1, 5, 3, mustDay(t, "2026-06-01"), mustDay(t, "2026-07-01"), 127, 10000, 0, false, 0))

	repo := NewRateRepo(db)
	ivs, err := repo.IntervalsForRange(context.Background(), 5, 3,
		mustDay(t, "2026-06-10"), mustDay(t, "2026-06-12"))
	if err != nil {
		t.Fatalf("intervals: %v", err)
	}
	if len(ivs) != 1 || ivs[0].BaseRateCents != 10000 {
		t.Fatalf("unexpected intervals: %+v", ivs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestReplaceRangeTx_DeleteThenInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM rate_price_intervals").
		WithArgs(uint64(5), uint64(3), "2026-07-01", "2026-06-01").
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("INSERT INTO rate_price_intervals").
		WithArgs(uint64(1), uint64(5), uint64(3), "2026-06-01", "2026-07-01",
			uint8(127), int64(12000), 2, true, 0).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectCommit()

	repo := NewRateRepo(db)
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	iv := model.RatePriceInterval{
		PropertyID: 1, RoomTypeID: 5, RatePlanID: 3,
		StartDate: mustDay(t, "2026-06-01"), EndDate: mustDay(t, "2026-07-01"),
		WeekdayMask: model.AllWeekdays, BaseRateCents: 12000, MinLOS: 2, Closed: true,
	}
	if err := repo.ReplaceRangeTx(context.Background(), tx, iv); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

package repository

import (
	"net/url"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&ticket{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedTickets(t *testing.T, db *gorm.DB, n int) {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		status := "OPEN"
		if i%2 == 1 {
			status = "CLOSED"
		}
		row := ticket{
			Subject:   "ticket",
			Status:    status,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestPageCount(t *testing.T) {
	cases := []struct {
		total   int64
		perPage int
		want    int
	}{
		{0, 40, 0},
		{1, 40, 1},
		{40, 40, 1},
		{41, 40, 2},
		{100, 25, 4},
		{0, 0, 0},
		{7, 0, 1},
	}
	for _, tc := range cases {
		if got := PageCount(tc.total, tc.perPage); got != tc.want {
			t.Errorf("PageCount(%d, %d) = %d, want %d", tc.total, tc.perPage, got, tc.want)
		}
	}
}

func TestListPaginated(t *testing.T) {
	db := openTestDB(t)
	seedTickets(t, db, 7)

	p := ParseListParams(url.Values{"page": {"2"}, "per_page": {"3"}}, nil)
	page, err := List[ticket](db.Model(&ticket{}), p, SortMap{"id": "id"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if page.Total != 7 {
		t.Errorf("total = %d, want 7", page.Total)
	}
	if page.PageCount != 3 {
		t.Errorf("page count = %d, want 3", page.PageCount)
	}
	if len(page.Data) != 3 {
		t.Fatalf("window size = %d, want 3", len(page.Data))
	}
	// Fallback order is created_at DESC, so page 2 of 7 holds rows 4..2.
	if page.Data[0].ID != 4 || page.Data[2].ID != 2 {
		t.Errorf("window = [%d..%d], want [4..2]", page.Data[0].ID, page.Data[2].ID)
	}
}

func TestListUnbounded(t *testing.T) {
	db := openTestDB(t)
	seedTickets(t, db, 5)

	p := ParseListParams(url.Values{"per_page": {"all"}}, nil)
	page, err := List[ticket](db.Model(&ticket{}), p, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Data) != 5 || page.Total != 5 {
		t.Errorf("expected all 5 rows, got %d (total %d)", len(page.Data), page.Total)
	}
	if page.PageCount != 1 {
		t.Errorf("unbounded page count = %d, want 1", page.PageCount)
	}
}

func TestListEmptyResult(t *testing.T) {
	db := openTestDB(t)

	p := ParseListParams(url.Values{}, nil)
	page, err := List[ticket](db.Model(&ticket{}), p, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Data == nil {
		t.Error("data must be an empty slice, not nil")
	}
	if page.Total != 0 || page.PageCount != 0 {
		t.Errorf("expected zero total and page count, got %d/%d", page.Total, page.PageCount)
	}
}

func TestListSortPriority(t *testing.T) {
	db := openTestDB(t)
	seedTickets(t, db, 4)

	p := ParseListParams(url.Values{"sort": {"status:asc,id:desc"}}, nil)
	page, err := List[ticket](db.Model(&ticket{}), p, SortMap{"status": "status", "id": "id"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	// CLOSED (ids 2,4) sorts before OPEN (ids 1,3); within a status the
	// secondary sort is id descending.
	wantIDs := []uint{4, 2, 3, 1}
	for i, row := range page.Data {
		if row.ID != wantIDs[i] {
			t.Fatalf("order = %v..., want %v", row.ID, wantIDs)
		}
	}
}

func TestListUnknownSortFallsBack(t *testing.T) {
	db := openTestDB(t)
	seedTickets(t, db, 3)

	p := ParseListParams(url.Values{"sort": {"bogus:desc"}}, nil)
	page, err := List[ticket](db.Model(&ticket{}), p, SortMap{"id": "id"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// created_at DESC fallback puts the newest row first.
	if page.Data[0].ID != 3 {
		t.Errorf("expected fallback created_at DESC order, got first id %d", page.Data[0].ID)
	}
}

func TestCountByColumn(t *testing.T) {
	db := openTestDB(t)
	seedTickets(t, db, 5)

	counts, err := CountByColumn(db.Model(&ticket{}), "status")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts["OPEN"] != 3 || counts["CLOSED"] != 2 {
		t.Errorf("counts = %v, want OPEN:3 CLOSED:2", counts)
	}
}

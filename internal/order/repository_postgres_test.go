package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

var orderColumnNames = []string{"orderId", "userId", "items", "totalAmount", "deliveryFee", "status", "paymentMethod", "deliveryAddress", "orderDate", "estimatedDelivery", "trackingLocation"}

func orderRow(rows *sqlmock.Rows, id, status string, loc []byte) *sqlmock.Rows {
	placed := time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)
	return rows.AddRow(id, "u-1", []byte(`[{"id":"2","name":"Pizza","quantity":2,"price":40}]`), 80, 40, status, "upi", "Carter Road", placed, placed.Add(DeliveryWindow), loc)
}

func TestPostgresAppend(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	o, err := Build(testUser, []Item{{ID: "2", Name: "Pizza", Quantity: 2, Price: 40}}, PaymentUPI, time.Now())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(o.ID, "u-1", sqlmock.AnyArg(), 80, 40, "preparing", "upi", "Carter Road", sqlmock.AnyArg(), sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Append(context.Background(), o); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	rows := sqlmock.NewRows(orderColumnNames)
	orderRow(rows, "ORD2-b", "on-way", []byte(`{"lat":19.068,"lng":72.87,"address":"Linking Road Junction"}`))
	orderRow(rows, "ORD1-a", "preparing", nil)
	mock.ExpectQuery(`WHERE "userId" = \$1\s+ORDER BY seq DESC`).WithArgs("u-1").WillReturnRows(rows)

	orders, err := repo.ListByUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 2 || orders[0].ID != "ORD2-b" {
		t.Fatalf("unexpected orders %+v", orders)
	}
	if orders[0].TrackingLocation == nil || orders[0].TrackingLocation.Address != "Linking Road Junction" {
		t.Fatalf("tracking location not decoded: %+v", orders[0].TrackingLocation)
	}
	if orders[1].TrackingLocation != nil || orders[1].Items[0].Quantity != 2 {
		t.Fatalf("unexpected second order %+v", orders[1])
	}

	active := sqlmock.NewRows(orderColumnNames)
	orderRow(active, "ORD1-a", "preparing", nil)
	mock.ExpectQuery("status = ANY").
		WithArgs("u-1", pq.Array([]string{"preparing", "on-way"})).
		WillReturnRows(active)
	orders, err = repo.ListByUser(context.Background(), "u-1", StatusPreparing, StatusOnWay)
	if err != nil || len(orders) != 1 {
		t.Fatalf("filtered list: %v %+v", err, orders)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresUpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("ORD1-a").
		WillReturnRows(orderRow(sqlmock.NewRows(orderColumnNames), "ORD1-a", "preparing", nil))
	mock.ExpectExec("UPDATE orders").
		WithArgs("on-way", sqlmock.AnyArg(), "ORD1-a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	loc := &TrackingLocation{Lat: 19.072, Lng: 72.874, Address: "Near Bandra Station"}
	o, err := repo.UpdateStatus(context.Background(), "ORD1-a", StatusOnWay, loc)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if o.Status != StatusOnWay || o.TrackingLocation.Address != "Near Bandra Station" {
		t.Fatalf("unexpected order %+v", o)
	}

	// a skipped step is refused and rolled back without writing
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("ORD1-a").
		WillReturnRows(orderRow(sqlmock.NewRows(orderColumnNames), "ORD1-a", "preparing", nil))
	mock.ExpectRollback()
	if _, err := repo.UpdateStatus(context.Background(), "ORD1-a", StatusDelivered, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("nope").WillReturnRows(sqlmock.NewRows(orderColumnNames))
	mock.ExpectRollback()
	if _, err := repo.UpdateStatus(context.Background(), "nope", StatusOnWay, nil); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

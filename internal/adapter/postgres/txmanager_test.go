package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/heartmarshall/pricewatch-backend/internal/adapter/postgres"
	"github.com/heartmarshall/pricewatch-backend/internal/adapter/postgres/testhelper"
)

func TestRunInTx_CommitMock(t *testing.T) {
	t.Parallel()

	mock := testhelper.NewMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM products`).WithArgs(int64(1)).WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	tm := postgres.NewTxManager(mock)
	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		_, err := postgres.QuerierFromCtx(ctx, mock).Exec(ctx, `DELETE FROM products WHERE id = $1`, int64(1))
		return err
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}
}

func TestRunInTx_RollbackOnErrorMock(t *testing.T) {
	t.Parallel()

	mock := testhelper.NewMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	sentinel := errors.New("business logic error")
	err := postgres.NewTxManager(mock).RunInTx(context.Background(), func(context.Context) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got: %v", err)
	}
}

func TestRunInTx_BeginError(t *testing.T) {
	t.Parallel()

	mock := testhelper.NewMockDB(t)
	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	called := false
	err := postgres.NewTxManager(mock).RunInTx(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if called {
		t.Fatal("fn must not run when Begin fails")
	}
}

func TestRunInTx_RollbackOnPanicMock(t *testing.T) {
	t.Parallel()

	mock := testhelper.NewMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	defer func() {
		if r := recover(); r != "test panic" {
			t.Fatalf("expected panic %q to be re-raised, got %v", "test panic", r)
		}
	}()

	_ = postgres.NewTxManager(mock).RunInTx(context.Background(), func(context.Context) error {
		panic("test panic")
	})
}

func TestQuerierFromCtx_WithoutTx(t *testing.T) {
	t.Parallel()

	mock := testhelper.NewMockDB(t)
	if got := postgres.QuerierFromCtx(context.Background(), mock); got != mock {
		t.Fatal("expected the db itself outside a transaction")
	}
}

// receiptExists checks whether a receipt with the given unique key exists.
func receiptExists(t *testing.T, pool *pgxpool.Pool, key string) bool {
	t.Helper()
	var exists bool
	err := pool.QueryRow(context.Background(),
		`SELECT EXISTS(SELECT 1 FROM receipts WHERE unique_key = $1)`, key,
	).Scan(&exists)
	if err != nil {
		t.Fatalf("receiptExists query: %v", err)
	}
	return exists
}

func insertReceipt(ctx context.Context, q postgres.Querier, key string) error {
	_, err := q.Exec(ctx,
		`INSERT INTO receipts (unique_key, issuer_name, issued_at, total) VALUES ($1, 'Test Store', now(), 0)`,
		key,
	)
	return err
}

func TestRunInTx_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	t.Run("commit", func(t *testing.T) {
		key := uuid.NewString()
		err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
			q := postgres.QuerierFromCtx(ctx, pool)
			if err := insertReceipt(ctx, q, key); err != nil {
				return err
			}
			var visible bool
			if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM receipts WHERE unique_key = $1)`, key).Scan(&visible); err != nil {
				return err
			}
			if !visible {
				t.Error("expected receipt to be visible within the transaction")
			}
			return nil
		})
		if err != nil {
			t.Fatalf("RunInTx returned error: %v", err)
		}
		if !receiptExists(t, pool, key) {
			t.Fatal("expected receipt to exist after commit")
		}
	})

	t.Run("rollback", func(t *testing.T) {
		key := uuid.NewString()
		sentinel := errors.New("abort")
		err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
			if err := insertReceipt(ctx, postgres.QuerierFromCtx(ctx, pool), key); err != nil {
				t.Fatalf("insert inside tx failed: %v", err)
			}
			return sentinel
		})
		if !errors.Is(err, sentinel) {
			t.Fatalf("expected sentinel error, got: %v", err)
		}
		if receiptExists(t, pool, key) {
			t.Fatal("expected receipt NOT to exist after rollback")
		}
	})
}

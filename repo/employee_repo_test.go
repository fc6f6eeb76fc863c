package repo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Skryldev/employee-payroll/db"
	"github.com/Skryldev/employee-payroll/migrations"
	"github.com/Skryldev/employee-payroll/models"
	"github.com/Skryldev/employee-payroll/repo"
)

// ─────────────────────────────────────────────────────────────────────────────
// Test fixture
// ─────────────────────────────────────────────────────────────────────────────

func newTestRepo(t *testing.T) (repo.EmployeeRepository, *db.DB) {
	t.Helper()

	database, err := db.Open(db.Config{
		DSN:          ":memory:",
		DriverName:   "sqlite3",
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(database, zerolog.Nop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repo.NewEmployeeRepo(database), database
}

func employee(name, email string) *models.Employee {
	return &models.Employee{Name: name, Email: email, NetSalary: 460, Age: 30, WorkedHours: 40}
}

// storages runs fn against both implementations.
func storages(t *testing.T, fn func(t *testing.T, r repo.EmployeeRepository)) {
	t.Run("sql", func(t *testing.T) {
		r, _ := newTestRepo(t)
		fn(t, r)
	})
	t.Run("memory", func(t *testing.T) {
		fn(t, repo.NewMemoryRepo())
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Create
// ─────────────────────────────────────────────────────────────────────────────

func TestEmployeeRepo_Create(t *testing.T) {
	storages(t, func(t *testing.T, r repo.EmployeeRepository) {
		ctx := context.Background()

		e := employee("Alice", "alice@repo.com")
		n, err := r.Create(ctx, e)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if n != 1 {
			t.Fatalf("expected 1 affected, got %d", n)
		}
		if e.ID == 0 {
			t.Fatal("expected non-zero ID")
		}
		if e.CreatedAt.IsZero() {
			t.Fatal("expected non-zero CreatedAt")
		}

		second := employee("Bob", "bob@repo.com")
		if _, err := r.Create(ctx, second); err != nil {
			t.Fatalf("create second: %v", err)
		}
		if second.ID <= e.ID {
			t.Fatalf("expected increasing ids, got %d then %d", e.ID, second.ID)
		}
	})
}

func TestEmployeeRepo_Create_DuplicateEmail(t *testing.T) {
	storages(t, func(t *testing.T, r repo.EmployeeRepository) {
		ctx := context.Background()

		if _, err := r.Create(ctx, employee("Alice", "dup@repo.com")); err != nil {
			t.Fatalf("first create: %v", err)
		}
		_, err := r.Create(ctx, employee("Alice Two", "dup@repo.com"))
		if !db.IsDuplicateKey(err) {
			t.Fatalf("expected ErrDuplicateKey, got %v", err)
		}
	})
}

func TestEmployeeRepo_Create_NegativeHoursRejectedBySchema(t *testing.T) {
	r, _ := newTestRepo(t)
	e := employee("Neg", "neg@repo.com")
	e.WorkedHours = -1

	_, err := r.Create(context.Background(), e)
	if !db.IsCheckViolation(err) {
		t.Fatalf("expected ErrCheckViolation, got %v", err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// FindByID / FindAll
// ─────────────────────────────────────────────────────────────────────────────

func TestEmployeeRepo_FindByID(t *testing.T) {
	storages(t, func(t *testing.T, r repo.EmployeeRepository) {
		ctx := context.Background()

		created := employee("Bob", "bob@repo.com")
		created.NetSalary = 546.25
		created.WorkedHours = 45
		if _, err := r.Create(ctx, created); err != nil {
			t.Fatalf("create: %v", err)
		}

		fetched, err := r.FindByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if fetched.Email != "bob@repo.com" || fetched.NetSalary != 546.25 || fetched.WorkedHours != 45 {
			t.Fatalf("unexpected row: %v", fetched)
		}
	})
}

func TestEmployeeRepo_FindByID_NotFound(t *testing.T) {
	storages(t, func(t *testing.T, r repo.EmployeeRepository) {
		_, err := r.FindByID(context.Background(), 99999)
		if !db.IsNotFound(err) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestEmployeeRepo_FindAll_Empty(t *testing.T) {
	storages(t, func(t *testing.T, r repo.EmployeeRepository) {
		all, err := r.FindAll(context.Background())
		if err != nil {
			t.Fatalf("find all: %v", err)
		}
		if all == nil || len(all) != 0 {
			t.Fatalf("expected empty non-nil slice, got %#v", all)
		}
	})
}

func TestEmployeeRepo_FindAll_Ordered(t *testing.T) {
	storages(t, func(t *testing.T, r repo.EmployeeRepository) {
		ctx := context.Background()
		for _, email := range []string{"a@repo.com", "b@repo.com", "c@repo.com"} {
			if _, err := r.Create(ctx, employee("Someone", email)); err != nil {
				t.Fatalf("create: %v", err)
			}
		}

		all, err := r.FindAll(ctx)
		if err != nil {
			t.Fatalf("find all: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3, got %d", len(all))
		}
		for i := 1; i < len(all); i++ {
			if all[i-1].ID >= all[i].ID {
				t.Fatalf("not ordered by id: %d before %d", all[i-1].ID, all[i].ID)
			}
		}
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Update
// ─────────────────────────────────────────────────────────────────────────────

func TestEmployeeRepo_Update(t *testing.T) {
	storages(t, func(t *testing.T, r repo.EmployeeRepository) {
		ctx := context.Background()

		e := employee("Old Name", "upd@repo.com")
		if _, err := r.Create(ctx, e); err != nil {
			t.Fatalf("create: %v", err)
		}

		e.Name = "New Name"
		e.NetSalary = 276
		n, err := r.Update(ctx, e)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if n != 1 {
			t.Fatalf("expected 1 affected, got %d", n)
		}

		got, _ := r.FindByID(ctx, e.ID)
		if got.Name != "New Name" || got.NetSalary != 276 {
			t.Fatalf("update not persisted: %v", got)
		}
	})
}

func TestEmployeeRepo_Update_Missing(t *testing.T) {
	storages(t, func(t *testing.T, r repo.EmployeeRepository) {
		e := employee("Ghost", "ghost@repo.com")
		e.ID = 404

		n, err := r.Update(context.Background(), e)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if n != 0 {
			t.Fatalf("expected 0 affected, got %d", n)
		}
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete
// ─────────────────────────────────────────────────────────────────────────────

func TestEmployeeRepo_Delete(t *testing.T) {
	storages(t, func(t *testing.T, r repo.EmployeeRepository) {
		ctx := context.Background()

		e := employee("Del", "del@repo.com")
		_, _ = r.Create(ctx, e)

		n, err := r.Delete(ctx, e.ID)
		if err != nil || n != 1 {
			t.Fatalf("delete: n=%d err=%v", n, err)
		}
		if _, err := r.FindByID(ctx, e.ID); !db.IsNotFound(err) {
			t.Fatalf("expected not found after delete, got %v", err)
		}

		n, err = r.Delete(ctx, e.ID)
		if err != nil || n != 0 {
			t.Fatalf("second delete: n=%d err=%v", n, err)
		}
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// ExistsByEmail
// ─────────────────────────────────────────────────────────────────────────────

func TestEmployeeRepo_ExistsByEmail(t *testing.T) {
	storages(t, func(t *testing.T, r repo.EmployeeRepository) {
		ctx := context.Background()

		e := employee("Eve", "eve@repo.com")
		_, _ = r.Create(ctx, e)

		cases := []struct {
			email   string
			exclude int64
			want    bool
		}{
			{"eve@repo.com", 0, true},
			{"eve@repo.com", e.ID, false},
			{"eve@repo.com", e.ID + 1, true},
			{"EVE@repo.com", 0, false},
			{"nobody@repo.com", 0, false},
		}
		for _, tc := range cases {
			got, err := r.ExistsByEmail(ctx, tc.email, tc.exclude)
			if err != nil {
				t.Fatalf("exists %q: %v", tc.email, err)
			}
			if got != tc.want {
				t.Fatalf("exists(%q, %d) = %v, want %v", tc.email, tc.exclude, got, tc.want)
			}
		}
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Transactions
// ─────────────────────────────────────────────────────────────────────────────

func TestTxRunner_Commit(t *testing.T) {
	r, database := newTestRepo(t)
	ctx := context.Background()

	err := repo.NewTxRunner(database).RunInTx(ctx, func(tx repo.EmployeeRepository) error {
		_, err := tx.Create(ctx, employee("Tx User", "tx@repo.com"))
		return err
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	all, _ := r.FindAll(ctx)
	if len(all) != 1 || all[0].Email != "tx@repo.com" {
		t.Fatalf("expected committed row, got %v", all)
	}
}

func TestTxRunner_Rollback(t *testing.T) {
	ctx := context.Background()
	sqlRepo, database := newTestRepo(t)
	mem := repo.NewMemoryRepo()

	runners := map[string]struct {
		runner repo.TxRunner
		read   repo.EmployeeRepository
	}{
		"sql":    {repo.NewTxRunner(database), sqlRepo},
		"memory": {mem, mem},
	}
	for name, rc := range runners {
		t.Run(name, func(t *testing.T) {
			boom := errors.New("boom")
			err := rc.runner.RunInTx(ctx, func(tx repo.EmployeeRepository) error {
				if _, err := tx.Create(ctx, employee("First", "first@repo.com")); err != nil {
					return err
				}
				return boom
			})
			if !errors.Is(err, boom) {
				t.Fatalf("expected boom, got %v", err)
			}

			all, _ := rc.read.FindAll(ctx)
			if len(all) != 0 {
				t.Fatalf("expected rollback, found %d rows", len(all))
			}
		})
	}
}

package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/employee-payroll/db"
	"github.com/Skryldev/employee-payroll/models"
	"github.com/Skryldev/employee-payroll/payroll"
	"github.com/Skryldev/employee-payroll/repo"
	"github.com/Skryldev/employee-payroll/service"
)

const eps = 1e-9

func jane() models.CreateEmployeeParams {
	return models.CreateEmployeeParams{
		Name: "Jane Doe", Email: "jane@x.com", BaseSalary: 500, Age: 30, WorkedHours: 45,
	}
}

// recordingRepo counts writes so tests can prove that nothing was stored.
type recordingRepo struct {
	repo.EmployeeRepository
	creates, updates int
}

func (r *recordingRepo) Create(ctx context.Context, e *models.Employee) (int64, error) {
	r.creates++
	return r.EmployeeRepository.Create(ctx, e)
}

func (r *recordingRepo) Update(ctx context.Context, e *models.Employee) (int64, error) {
	r.updates++
	return r.EmployeeRepository.Update(ctx, e)
}

// brokenRepo fails every call.
type brokenRepo struct {
	repo.EmployeeRepository
	err error
}

func (b brokenRepo) FindAll(context.Context) ([]*models.Employee, error) { return nil, b.err }
func (b brokenRepo) Delete(context.Context, int64) (int64, error)       { return 0, b.err }
func (b brokenRepo) ExistsByEmail(context.Context, string, int64) (bool, error) {
	return false, b.err
}
func (b brokenRepo) FindByID(context.Context, int64) (*models.Employee, error) { return nil, b.err }

func newService(t *testing.T) (*service.EmployeeService, *repo.MemoryRepo) {
	t.Helper()
	mem := repo.NewMemoryRepo()
	return service.NewEmployeeService(mem, service.WithTxRunner(mem)), mem
}

// ─────────────────────────────────────────────────────────────────────────────
// Create
// ─────────────────────────────────────────────────────────────────────────────

func TestCreate_Overtime(t *testing.T) {
	svc, _ := newService(t)

	e, err := svc.Create(context.Background(), jane())
	require.NoError(t, err)

	assert.NotZero(t, e.ID)
	assert.Equal(t, "Jane Doe", e.Name)
	assert.InDelta(t, 546.25, e.NetSalary, eps)
}

func TestCreate_Undertime(t *testing.T) {
	svc, _ := newService(t)

	p := jane()
	p.BaseSalary, p.WorkedHours = 600, 20
	e, err := svc.Create(context.Background(), p)
	require.NoError(t, err)
	assert.InDelta(t, 276.0, e.NetSalary, eps)
}

func TestCreate_PersistsNetBelowMinimumBase(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p := jane()
	p.BaseSalary, p.WorkedHours = 300, 8
	e, err := svc.Create(ctx, p)
	require.NoError(t, err)

	stored, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Less(t, stored.NetSalary, 300.0)
	assert.InDelta(t, 55.2, stored.NetSalary, eps)
}

func TestCreate_ValidationFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.CreateEmployeeParams)
		want   error
	}{
		{"short name", func(p *models.CreateEmployeeParams) { p.Name = "Al" }, payroll.ErrInvalidName},
		{"digit in name", func(p *models.CreateEmployeeParams) { p.Name = "Ann3" }, payroll.ErrInvalidName},
		{"too young", func(p *models.CreateEmployeeParams) { p.Age = 21 }, payroll.ErrInvalidAge},
		{"too old", func(p *models.CreateEmployeeParams) { p.Age = 61 }, payroll.ErrInvalidAge},
		{"salary low", func(p *models.CreateEmployeeParams) { p.BaseSalary = 299 }, payroll.ErrInvalidSalary},
		{"salary high", func(p *models.CreateEmployeeParams) { p.BaseSalary = 1001 }, payroll.ErrInvalidSalary},
		{"negative hours", func(p *models.CreateEmployeeParams) { p.WorkedHours = -1 }, payroll.ErrInvalidWorkedHours},
		{"email without at", func(p *models.CreateEmployeeParams) { p.Email = "jane.x.com" }, service.ErrInvalidEmail},
		{"name before age", func(p *models.CreateEmployeeParams) { p.Name = "X"; p.Age = 5 }, payroll.ErrInvalidName},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mem := repo.NewMemoryRepo()
			rec := &recordingRepo{EmployeeRepository: mem}
			svc := service.NewEmployeeService(rec)

			p := jane()
			tc.mutate(&p)
			_, err := svc.Create(context.Background(), p)

			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.Zero(t, rec.creates)
			assert.Zero(t, mem.Len())
		})
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	svc, mem := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, jane())
	require.NoError(t, err)

	p := jane()
	p.Name = "Janet Doe"
	_, err = svc.Create(ctx, p)
	assert.ErrorIs(t, err, service.ErrDuplicateEmail)
	assert.Equal(t, 1, mem.Len())
}

func TestCreate_StorageFailure(t *testing.T) {
	cause := &db.DBError{Sentinel: db.ErrConnectionFailed, Cause: errors.New("dial tcp: refused")}
	svc := service.NewEmployeeService(brokenRepo{err: cause})

	_, err := svc.Create(context.Background(), jane())
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrStorage)
	assert.True(t, db.IsConnectionFailed(err))

	var se *service.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "exists by email", se.Op)
}

// ─────────────────────────────────────────────────────────────────────────────
// Update
// ─────────────────────────────────────────────────────────────────────────────

func TestUpdate_RecomputesSalary(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, jane())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, models.UpdateEmployeeParams{
		ID: created.ID, Name: "Jane Smith", Email: "jane@x.com", BaseSalary: 600, Age: 31, WorkedHours: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Jane Smith", updated.Name)
	assert.InDelta(t, 276.0, updated.NetSalary, eps)

	stored, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 31, stored.Age)
	assert.InDelta(t, 276.0, stored.NetSalary, eps)
}

func TestUpdate_MissingID(t *testing.T) {
	mem := repo.NewMemoryRepo()
	rec := &recordingRepo{EmployeeRepository: mem}
	svc := service.NewEmployeeService(rec)
	ctx := context.Background()

	existing, err := svc.Create(ctx, jane())
	require.NoError(t, err)

	_, err = svc.Update(ctx, models.UpdateEmployeeParams{
		ID: 999, Name: "Nobody Here", Email: "nobody@x.com", BaseSalary: 500, Age: 30, WorkedHours: 40,
	})
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Zero(t, rec.updates)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, *existing, *all[0])
}

func TestUpdate_KeepOwnEmail(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	e, err := svc.Create(ctx, jane())
	require.NoError(t, err)

	_, err = svc.Update(ctx, models.UpdateEmployeeParams{
		ID: e.ID, Name: e.Name, Email: e.Email, BaseSalary: 700, Age: e.Age, WorkedHours: 40,
	})
	assert.NoError(t, err)
}

func TestUpdate_EmailOfAnotherEmployee(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, jane())
	require.NoError(t, err)
	p := jane()
	p.Email = "john@x.com"
	john, err := svc.Create(ctx, p)
	require.NoError(t, err)

	_, err = svc.Update(ctx, models.UpdateEmployeeParams{
		ID: john.ID, Name: "John Doe", Email: "jane@x.com", BaseSalary: 500, Age: 30, WorkedHours: 40,
	})
	assert.ErrorIs(t, err, service.ErrDuplicateEmail)

	stored, err := svc.Get(ctx, john.ID)
	require.NoError(t, err)
	assert.Equal(t, "john@x.com", stored.Email)
}

func TestUpdate_InvalidLeavesRowUntouched(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	e, err := svc.Create(ctx, jane())
	require.NoError(t, err)

	_, err = svc.Update(ctx, models.UpdateEmployeeParams{
		ID: e.ID, Name: e.Name, Email: e.Email, BaseSalary: 500, Age: 70, WorkedHours: 40,
	})
	assert.ErrorIs(t, err, payroll.ErrInvalidAge)

	stored, err := svc.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, stored.Age)
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete / List / Get
// ─────────────────────────────────────────────────────────────────────────────

func TestDelete(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	e, err := svc.Create(ctx, jane())
	require.NoError(t, err)

	ok, err := svc.Delete(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Delete(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelete_StorageFailure(t *testing.T) {
	svc := service.NewEmployeeService(brokenRepo{err: errors.New("disk full")})
	_, err := svc.Delete(context.Background(), 1)
	assert.ErrorIs(t, err, service.ErrStorage)
}

func TestList_Empty(t *testing.T) {
	svc, _ := newService(t)

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestList_StorageFailure(t *testing.T) {
	svc := service.NewEmployeeService(brokenRepo{err: errors.New("disk full")})
	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, service.ErrStorage)
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Get(context.Background(), 42)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.NotErrorIs(t, err, service.ErrStorage)
}

// ─────────────────────────────────────────────────────────────────────────────
// Import / Preview
// ─────────────────────────────────────────────────────────────────────────────

func TestImport(t *testing.T) {
	svc, mem := newService(t)

	p2 := jane()
	p2.Name, p2.Email = "John Roe", "john@x.com"
	out, err := svc.Import(context.Background(), []models.CreateEmployeeParams{jane(), p2})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Less(t, out[0].ID, out[1].ID)
	assert.Equal(t, 2, mem.Len())
}

func TestImport_InvalidRowWritesNothing(t *testing.T) {
	svc, mem := newService(t)

	bad := jane()
	bad.Email, bad.Age = "old@x.com", 99
	_, err := svc.Import(context.Background(), []models.CreateEmployeeParams{jane(), bad})

	var ie *service.ImportError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 2, ie.Row)
	assert.ErrorIs(t, err, payroll.ErrInvalidAge)
	assert.Zero(t, mem.Len())
}

func TestImport_DuplicateInsideBatch(t *testing.T) {
	svc, mem := newService(t)

	_, err := svc.Import(context.Background(), []models.CreateEmployeeParams{jane(), jane()})
	assert.ErrorIs(t, err, service.ErrDuplicateEmail)
	assert.Zero(t, mem.Len())
}

func TestImport_ConflictWithStoredRollsBack(t *testing.T) {
	svc, mem := newService(t)
	ctx := context.Background()

	existing := jane()
	existing.Email = "taken@x.com"
	_, err := svc.Create(ctx, existing)
	require.NoError(t, err)

	clash := jane()
	clash.Email = "taken@x.com"
	_, err = svc.Import(ctx, []models.CreateEmployeeParams{jane(), clash})
	assert.ErrorIs(t, err, service.ErrDuplicateEmail)
	assert.Equal(t, 1, mem.Len())
}

func TestPreview(t *testing.T) {
	svc, mem := newService(t)

	b, err := svc.Preview(500, 45)
	require.NoError(t, err)
	assert.InDelta(t, 546.25, b.Net, eps)
	assert.Zero(t, mem.Len())

	_, err = svc.Preview(200, 45)
	assert.ErrorIs(t, err, payroll.ErrInvalidSalary)
}

func TestWithPolicy(t *testing.T) {
	p := payroll.DefaultPolicy()
	p.SIORate = 0
	svc := service.NewEmployeeService(repo.NewMemoryRepo(), service.WithPolicy(p))

	e, err := svc.Create(context.Background(), jane())
	require.NoError(t, err)
	assert.InDelta(t, 593.75, e.NetSalary, eps)
	assert.Equal(t, p, svc.Policy())
}

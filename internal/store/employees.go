package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/skillmap/internal/apperr"
)

var employeeColumns = []string{
	"id", "email", "name", "description", "role", "manager_id",
	"location", "hire_date", "profile", "created_at", "updated_at",
}

type employeeRepo struct{ repos }

func (r employeeRepo) selectEmployees() *entsql.Selector {
	return r.b().Select(employeeColumns...).From(r.b().Table("employees"))
}

func (r employeeRepo) Get(ctx context.Context, id string) (*Employee, error) {
	list, err := r.list(ctx, r.selectEmployees().Where(entsql.EQ("id", id)))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, apperr.NotFound("employee", id)
	}
	return &list[0], nil
}

func (r employeeRepo) List(ctx context.Context) ([]Employee, error) {
	return r.list(ctx, r.selectEmployees().OrderBy("name"))
}

func (r employeeRepo) ListByManager(ctx context.Context, managerID string) ([]Employee, error) {
	return r.list(ctx, r.selectEmployees().Where(entsql.EQ("manager_id", managerID)).OrderBy("name"))
}

func (r employeeRepo) Upsert(ctx context.Context, e *Employee) error {
	now := time.Now().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	if e.Profile == nil {
		e.Profile = Profile{}
	}
	profile, err := encodeJSON(e.Profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	ins := r.b().Insert("employees").
		Columns(employeeColumns...).
		Values(e.ID, e.Email, e.Name, e.Description, e.Role, nullString(e.ManagerID),
			e.Location, nullTime(e.HireDate), profile, formatTime(e.CreatedAt), formatTime(e.UpdatedAt)).
		OnConflict(entsql.ConflictColumns("id"), updateExcluded(employeeColumns[1:9], "updated_at"))
	if _, err := r.exec(ctx, ins); err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("employee with email %q already exists", e.Email)
		}
		return fmt.Errorf("upsert employee %s: %w", e.ID, err)
	}
	return nil
}

func (r employeeRepo) SaveProfile(ctx context.Context, employeeID string, p Profile) error {
	profile, err := encodeJSON(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	upd := r.b().Update("employees").
		Set("profile", profile).
		Set("updated_at", formatTime(time.Now())).
		Where(entsql.EQ("id", employeeID))
	res, err := r.exec(ctx, upd)
	if err != nil {
		return fmt.Errorf("save profile %s: %w", employeeID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("employee", employeeID)
	}
	return nil
}

func (r employeeRepo) Delete(ctx context.Context, id string) error {
	res, err := r.exec(ctx, r.b().Delete("employees").Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("delete employee %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("employee", id)
	}
	return nil
}

func (r employeeRepo) list(ctx context.Context, sel *entsql.Selector) ([]Employee, error) {
	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		var (
			e                   Employee
			managerID, hireDate sql.NullString
			profile             sql.NullString
			createdAt, updated  string
		)
		if err := rows.Scan(&e.ID, &e.Email, &e.Name, &e.Description, &e.Role, &managerID,
			&e.Location, &hireDate, &profile, &createdAt, &updated); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		e.ManagerID = managerID.String
		e.HireDate = parseNullTime(hireDate)
		e.Profile = Profile{}
		if err := decodeJSON(profile, &e.Profile); err != nil {
			return nil, fmt.Errorf("decode profile of %s: %w", e.ID, err)
		}
		e.CreatedAt = parseTime(createdAt)
		e.UpdatedAt = parseTime(updated)
		out = append(out, e)
	}
	return out, rows.Err()
}

// updateExcluded resolves an insert conflict by copying the given
// columns from the rejected row.
func updateExcluded(cols []string, extra ...string) entsql.ConflictOption {
	return entsql.ResolveWith(func(u *entsql.UpdateSet) {
		for _, c := range cols {
			u.SetExcluded(c)
		}
		for _, c := range extra {
			u.SetExcluded(c)
		}
	})
}

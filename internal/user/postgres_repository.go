package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const usersTable = "users"

var userColumns = []string{"id", "first_name", "last_name", "email", "birth_date", "address", "phone_number"}

var tracer = otel.Tracer("github.com/vasiliy-maslov/users-api/internal/user")

// DB is the subset of *pgxpool.Pool used by the repository.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type postgresRepository struct {
	db      DB
	builder squirrel.StatementBuilderType
}

func NewPostgresRepository(db DB) Repository {
	return &postgresRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *postgresRepository) Create(ctx context.Context, u *User) (created *User, err error) {
	ctx, span := startSpan(ctx, "Create", u.ID)
	defer func() { endSpan(span, err) }()

	q := r.builder.
		Insert(usersTable).
		Columns(userColumns...).
		Values(u.ID, u.FirstName, u.LastName, u.Email, u.BirthDate, u.Address, u.PhoneNumber).
		Suffix("RETURNING " + strings.Join(userColumns, ", "))

	created = &User{}
	if err = r.get(ctx, created, q); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("repository: insert user: %w", err)
	}

	return created, nil
}

func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, u *User) (*User, error) {
	return r.overwrite(ctx, "Update", id, u)
}

func (r *postgresRepository) Replace(ctx context.Context, id uuid.UUID, u *User) (*User, error) {
	return r.overwrite(ctx, "Replace", id, u)
}

// overwrite writes every column of u to the row with the given id. Update and
// Replace differ only in how the service builds u.
func (r *postgresRepository) overwrite(ctx context.Context, op string, id uuid.UUID, u *User) (saved *User, err error) {
	ctx, span := startSpan(ctx, op, id)
	defer func() { endSpan(span, err) }()

	q := r.builder.
		Update(usersTable).
		SetMap(map[string]any{
			"first_name":   u.FirstName,
			"last_name":    u.LastName,
			"email":        u.Email,
			"birth_date":   u.BirthDate,
			"address":      u.Address,
			"phone_number": u.PhoneNumber,
		}).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(userColumns, ", "))

	saved = &User{}
	if err = r.get(ctx, saved, q); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: %s user '%s': %w", strings.ToLower(op), id, err)
	}

	return saved, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	ctx, span := startSpan(ctx, "Delete", id)
	defer func() { endSpan(span, err) }()

	query, args, err := r.builder.Delete(usersTable).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("repository: build delete: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("repository: delete user '%s': %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (found *User, err error) {
	ctx, span := startSpan(ctx, "FindByID", id)
	defer func() {
		if errors.Is(err, ErrNotFound) {
			endSpan(span, nil)
			return
		}
		endSpan(span, err)
	}()

	q := r.builder.
		Select(userColumns...).
		From(usersTable).
		Where(squirrel.Eq{"id": id}).
		Limit(1)

	found = &User{}
	if err = r.get(ctx, found, q); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: get user by id '%s': %w", id, err)
	}

	return found, nil
}

func (r *postgresRepository) FindByBirthDateRange(ctx context.Context, from, to time.Time) (users []User, err error) {
	ctx, span := tracer.Start(ctx, "UserRepository.FindByBirthDateRange", trace.WithAttributes(
		attribute.String("users.range.from", from.Format(DateLayout)),
		attribute.String("users.range.to", to.Format(DateLayout)),
	))
	defer func() { endSpan(span, err) }()

	query, args, err := r.rangeQuery(from, to).ToSql()
	if err != nil {
		return nil, fmt.Errorf("repository: build range query: %w", err)
	}

	users = []User{}
	if err = pgxscan.Select(ctx, r.db, &users, query, args...); err != nil {
		return nil, fmt.Errorf("repository: select users by birth date range: %w", err)
	}

	return users, nil
}

func (r *postgresRepository) rangeQuery(from, to time.Time) squirrel.SelectBuilder {
	lower, upper := rangeBounds(from, to)

	return r.builder.
		Select(userColumns...).
		From(usersTable).
		Where(squirrel.GtOrEq{"birth_date": lower}).
		Where(squirrel.Lt{"birth_date": upper}).
		OrderBy("birth_date", "id")
}

func (r *postgresRepository) get(ctx context.Context, dst *User, q squirrel.Sqlizer) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return pgxscan.Get(ctx, r.db, dst, query, args...)
}

func startSpan(ctx context.Context, op string, id uuid.UUID) (context.Context, trace.Span) {
	return tracer.Start(ctx, "UserRepository."+op, trace.WithAttributes(attribute.String("user.id", id.String())))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

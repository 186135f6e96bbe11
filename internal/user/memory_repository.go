package user

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-memdb"
)

const (
	memTable          = "users"
	memIndexID        = "id"
	memIndexBirthDate = "birth_date"

	// birthKeyLayout sorts lexicographically in chronological order.
	birthKeyLayout = "2006-01-02T15:04:05.000000000"
)

type memRecord struct {
	ID       string
	BirthKey string
	User     User
}

func memSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			memTable: {
				Name: memTable,
				Indexes: map[string]*memdb.IndexSchema{
					memIndexID: {
						Name:    memIndexID,
						Unique:  true,
						Indexer: &memdb.UUIDFieldIndex{Field: "ID"},
					},
					memIndexBirthDate: {
						Name:    memIndexBirthDate,
						Indexer: &memdb.StringFieldIndex{Field: "BirthKey"},
					},
				},
			},
		},
	}
}

type memoryRepository struct {
	db *memdb.MemDB
}

// NewMemoryRepository returns a Repository kept in process memory.
func NewMemoryRepository() (Repository, error) {
	db, err := memdb.NewMemDB(memSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory user store: %w", err)
	}
	return &memoryRepository{db: db}, nil
}

func (r *memoryRepository) Create(_ context.Context, u *User) (*User, error) {
	txn := r.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(memTable, memIndexID, u.ID.String())
	if err != nil {
		return nil, fmt.Errorf("repository: lookup user '%s': %w", u.ID, err)
	}
	if existing != nil {
		return nil, ErrAlreadyExists
	}

	return r.save(txn, u)
}

func (r *memoryRepository) Update(_ context.Context, id uuid.UUID, u *User) (*User, error) {
	return r.overwrite(id, u)
}

func (r *memoryRepository) Replace(_ context.Context, id uuid.UUID, u *User) (*User, error) {
	return r.overwrite(id, u)
}

func (r *memoryRepository) overwrite(id uuid.UUID, u *User) (*User, error) {
	txn := r.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(memTable, memIndexID, id.String())
	if err != nil {
		return nil, fmt.Errorf("repository: lookup user '%s': %w", id, err)
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	updated := *u
	updated.ID = id
	return r.save(txn, &updated)
}

func (r *memoryRepository) save(txn *memdb.Txn, u *User) (*User, error) {
	stored := cloneUser(*u)
	rec := &memRecord{
		ID:       stored.ID.String(),
		BirthKey: birthKey(stored.BirthDate),
		User:     stored,
	}

	if err := txn.Insert(memTable, rec); err != nil {
		return nil, fmt.Errorf("repository: save user '%s': %w", u.ID, err)
	}
	txn.Commit()

	out := cloneUser(stored)
	return &out, nil
}

func (r *memoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	txn := r.db.Txn(true)
	defer txn.Abort()

	removed, err := txn.DeleteAll(memTable, memIndexID, id.String())
	if err != nil {
		return fmt.Errorf("repository: delete user '%s': %w", id, err)
	}
	if removed == 0 {
		return ErrNotFound
	}

	txn.Commit()
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id uuid.UUID) (*User, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(memTable, memIndexID, id.String())
	if err != nil {
		return nil, fmt.Errorf("repository: get user by id '%s': %w", id, err)
	}
	if raw == nil {
		return nil, ErrNotFound
	}

	found := cloneUser(raw.(*memRecord).User)
	return &found, nil
}

func (r *memoryRepository) FindByBirthDateRange(_ context.Context, from, to time.Time) ([]User, error) {
	lower, upper := rangeBounds(from, to)
	upperKey := birthKey(upper)

	txn := r.db.Txn(false)
	defer txn.Abort()

	it, err := txn.LowerBound(memTable, memIndexBirthDate, birthKey(lower))
	if err != nil {
		return nil, fmt.Errorf("repository: scan users by birth date: %w", err)
	}

	users := []User{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		rec := raw.(*memRecord)
		if rec.BirthKey >= upperKey {
			break
		}
		users = append(users, cloneUser(rec.User))
	}

	return users, nil
}

func birthKey(t time.Time) string {
	return t.Format(birthKeyLayout)
}

func cloneUser(u User) User {
	out := u
	if u.Address != nil {
		address := *u.Address
		out.Address = &address
	}
	if u.PhoneNumber != nil {
		phone := *u.PhoneNumber
		out.PhoneNumber = &phone
	}
	return out
}

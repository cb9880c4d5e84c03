package session

import (
	"context"
)

// CityDB is the storage needed by SQLiteStore. *db.DB satisfies it.
type CityDB interface {
	SessionCity(ctx context.Context, id string) (string, bool, error)
	SaveSessionCity(ctx context.Context, id, city string) error
	Ping() error
}

// SQLiteStore keeps each visitor's last city in the sessions table so it
// survives a restart. Nothing but the city is written.
type SQLiteStore struct {
	db CityDB
}

func NewSQLiteStore(db CityDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (*State, error) {
	city, _, err := s.db.SessionCity(ctx, id)
	if err != nil {
		return nil, err
	}
	return New(city), nil
}

func (s *SQLiteStore) Save(ctx context.Context, id string, st *State) error {
	return s.db.SaveSessionCity(ctx, id, st.City())
}

// Ping checks the underlying database.
func (s *SQLiteStore) Ping() error {
	return s.db.Ping()
}

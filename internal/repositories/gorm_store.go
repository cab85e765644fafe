package repositories

import (
	"gorm.io/gorm"
)

// GORMStore is the GORM-backed Store. Transaction delegates to the
// database's own transaction, so all repositories obtained inside the
// callback share one atomic scope with rollback on error.
type GORMStore struct {
	db *gorm.DB
}

// NewGORMStore creates a new instance of GORMStore.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{
		db: db,
	}
}

func (s *GORMStore) Users() UserRepository {
	return NewGORMUserRepository(s.db)
}

func (s *GORMStore) Products() ProductRepository {
	return NewGORMProductRepository(s.db)
}

func (s *GORMStore) Addresses() AddressRepository {
	return NewGORMAddressRepository(s.db)
}

func (s *GORMStore) Carts() CartRepository {
	return NewGORMCartRepository(s.db)
}

func (s *GORMStore) Orders() OrderRepository {
	return NewGORMOrderRepository(s.db)
}

// Transaction runs fn inside a database transaction. An error from fn rolls
// everything back and is returned unchanged. Nested calls join the
// enclosing transaction via GORM's savepoint handling.
func (s *GORMStore) Transaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMStore(tx))
	})
}

package repositories

import "fmt"

// Store bundles the per-entity repositories with the transaction-scope
// primitive. Transaction runs fn against a Store whose repositories all
// share one atomic scope; if fn returns an error every mutation made inside
// the scope is rolled back and the error is returned unchanged.
type Store interface {
	Users() UserRepository
	Products() ProductRepository
	Addresses() AddressRepository
	Carts() CartRepository
	Orders() OrderRepository
	Transaction(fn func(Store) error) error
}

// Mutation is one named step of a unit of work.
type Mutation struct {
	Name  string
	Apply func(Store) error
}

// UnitOfWork is an ordered list of mutations committed as one atomic scope.
// It makes the all-or-nothing contract of a multi-entity write sequence
// (order, order items, stock decrements, cart flag) explicit and testable
// independent of the storage engine.
type UnitOfWork struct {
	mutations []Mutation
}

// NewUnitOfWork creates an empty unit of work.
func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{}
}

// Add appends a named mutation. Mutations run in the order they were added.
func (u *UnitOfWork) Add(name string, apply func(Store) error) {
	u.mutations = append(u.mutations, Mutation{Name: name, Apply: apply})
}

// Len returns the number of recorded mutations.
func (u *UnitOfWork) Len() int {
	return len(u.mutations)
}

// Commit applies every mutation in order inside a single transaction on the
// given store. The first failure aborts the scope; the underlying error
// stays reachable through errors.Is/As.
func (u *UnitOfWork) Commit(store Store) error {
	return store.Transaction(func(tx Store) error {
		for _, m := range u.mutations {
			if err := m.Apply(tx); err != nil {
				return fmt.Errorf("%s: %w", m.Name, err)
			}
		}
		return nil
	})
}

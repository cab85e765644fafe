package repositories

import (
	"sync"
	"time"

	"lapak/internal/models"
	"lapak/pkg/apperrors"

	"github.com/google/uuid"
)

// memoryData holds every table of the in-memory store. Cart lines and order
// items are stored flat, with insertion-order slices so listings are stable.
type memoryData struct {
	users      map[string]models.User
	products   map[string]models.Product
	addresses  map[string]models.Address
	carts      map[string]models.Cart
	cartLines  map[string]models.CartLine
	lineOrder  []string
	orders     map[string]models.Order
	orderItems map[string]models.OrderItem
	itemOrder  []string
}

func newMemoryData() *memoryData {
	return &memoryData{
		users:      make(map[string]models.User),
		products:   make(map[string]models.Product),
		addresses:  make(map[string]models.Address),
		carts:      make(map[string]models.Cart),
		cartLines:  make(map[string]models.CartLine),
		orders:     make(map[string]models.Order),
		orderItems: make(map[string]models.OrderItem),
	}
}

func (d *memoryData) clone() *memoryData {
	c := newMemoryData()
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.addresses {
		c.addresses[k] = v
	}
	for k, v := range d.carts {
		c.carts[k] = v
	}
	for k, v := range d.cartLines {
		c.cartLines[k] = v
	}
	for k, v := range d.orders {
		c.orders[k] = v
	}
	for k, v := range d.orderItems {
		c.orderItems[k] = v
	}
	c.lineOrder = append([]string(nil), d.lineOrder...)
	c.itemOrder = append([]string(nil), d.itemOrder...)
	return c
}

// MemoryStore is an in-memory implementation of Store. Transaction takes a
// snapshot of all tables and restores it when the callback fails, so the
// all-or-nothing contract of a unit of work can be exercised without a
// database.
type MemoryStore struct {
	mu   sync.Mutex
	data *memoryData
}

// NewMemoryStore creates a new instance of MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: newMemoryData()}
}

func (s *MemoryStore) Users() UserRepository        { return &memoryUserRepo{s: s} }
func (s *MemoryStore) Products() ProductRepository  { return &memoryProductRepo{s: s} }
func (s *MemoryStore) Addresses() AddressRepository { return &memoryAddressRepo{s: s} }
func (s *MemoryStore) Carts() CartRepository        { return &memoryCartRepo{s: s} }
func (s *MemoryStore) Orders() OrderRepository      { return &memoryOrderRepo{s: s} }

// Transaction snapshots the store, runs fn against it, and restores the
// snapshot if fn returns an error. The error is returned unchanged.
func (s *MemoryStore) Transaction(fn func(Store) error) error {
	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// --- users ---

type memoryUserRepo struct {
	s *MemoryStore
}

func (r *memoryUserRepo) Create(user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = models.UserRoleCustomer
	}
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	r.s.data.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepo) GetByUsername(username string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.data.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, apperrors.New(apperrors.KindNotFound, "user with username %s not found", username)
}

func (r *memoryUserRepo) GetByEmail(email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.data.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, apperrors.New(apperrors.KindNotFound, "user with email %s not found", email)
}

func (r *memoryUserRepo) GetByID(id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.data.users[id]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "user with ID %s not found", id)
	}
	user := u
	return &user, nil
}

// --- products ---

type memoryProductRepo struct {
	s *MemoryStore
}

func (r *memoryProductRepo) GetAll() ([]models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	products := make([]models.Product, 0, len(r.s.data.products))
	for _, p := range r.s.data.products {
		products = append(products, p)
	}
	return products, nil
}

func (r *memoryProductRepo) GetByID(id string) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.data.products[id]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "product with ID %s not found", id)
	}
	product := p
	return &product, nil
}

func (r *memoryProductRepo) GetByIDs(ids []string) ([]models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var products []models.Product
	for _, id := range ids {
		if p, ok := r.s.data.products[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func (r *memoryProductRepo) Create(product *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.Status == "" {
		product.Status = models.ProductStatusActive
	}
	r.s.data.products[product.ID] = *product
	return nil
}

func (r *memoryProductRepo) Update(product *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.products[product.ID]; !ok {
		return apperrors.New(apperrors.KindNotFound, "product with ID %s not found for update", product.ID)
	}
	r.s.data.products[product.ID] = *product
	return nil
}

func (r *memoryProductRepo) Delete(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.products[id]; !ok {
		return apperrors.New(apperrors.KindNotFound, "product with ID %s not found for deletion", id)
	}
	delete(r.s.data.products, id)
	return nil
}

func (r *memoryProductRepo) DecrementStock(id string, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.data.products[id]
	if !ok || p.Stock < qty {
		return apperrors.New(apperrors.KindInsufficientStock,
			"insufficient stock for product %s (requested: %d)", id, qty)
	}
	p.Stock -= qty
	r.s.data.products[id] = p
	return nil
}

// --- addresses ---

type memoryAddressRepo struct {
	s *MemoryStore
}

func (r *memoryAddressRepo) GetByID(id string) (*models.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.data.addresses[id]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "address with ID %s not found", id)
	}
	address := a
	return &address, nil
}

func (r *memoryAddressRepo) GetByCustomer(customerID string) ([]models.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var addresses []models.Address
	for _, a := range r.s.data.addresses {
		if a.CustomerID == customerID {
			addresses = append(addresses, a)
		}
	}
	return addresses, nil
}

func (r *memoryAddressRepo) Create(address *models.Address) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if address.ID == "" {
		address.ID = uuid.New().String()
	}
	r.s.data.addresses[address.ID] = *address
	return nil
}

func (r *memoryAddressRepo) Update(address *models.Address) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.addresses[address.ID]; !ok {
		return apperrors.New(apperrors.KindNotFound, "address with ID %s not found for update", address.ID)
	}
	r.s.data.addresses[address.ID] = *address
	return nil
}

func (r *memoryAddressRepo) Delete(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.addresses[id]; !ok {
		return apperrors.New(apperrors.KindNotFound, "address with ID %s not found for deletion", id)
	}
	delete(r.s.data.addresses, id)
	return nil
}

// --- carts ---

type memoryCartRepo struct {
	s *MemoryStore
}

func (r *memoryCartRepo) GetActiveByCustomer(customerID string) (*models.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.data.carts {
		if c.CustomerID == customerID && !c.CheckedOut {
			cart := c
			cart.Lines = r.linesOf(cart.ID)
			return &cart, nil
		}
	}
	return nil, apperrors.New(apperrors.KindNoActiveCart, "no active cart for customer %s", customerID)
}

// linesOf collects a cart's lines in insertion order. Caller holds the lock.
func (r *memoryCartRepo) linesOf(cartID string) []models.CartLine {
	var lines []models.CartLine
	for _, id := range r.s.data.lineOrder {
		if l, ok := r.s.data.cartLines[id]; ok && l.CartID == cartID {
			lines = append(lines, l)
		}
	}
	return lines
}

func (r *memoryCartRepo) Create(cart *models.Cart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	// Mirrors the database's partial unique index on open carts.
	for _, existing := range r.s.data.carts {
		if existing.CustomerID == cart.CustomerID && !existing.CheckedOut {
			return apperrors.New(apperrors.KindConflict,
				"customer %s already has an open cart", cart.CustomerID)
		}
	}

	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	cart.CreatedAt = time.Now()
	stored := *cart
	stored.Lines = nil
	r.s.data.carts[cart.ID] = stored
	return nil
}

func (r *memoryCartRepo) AddLine(line *models.CartLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	r.s.data.cartLines[line.ID] = *line
	r.s.data.lineOrder = append(r.s.data.lineOrder, line.ID)
	return nil
}

func (r *memoryCartRepo) UpdateLine(line *models.CartLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.cartLines[line.ID]; !ok {
		return apperrors.New(apperrors.KindNotFound, "cart line with ID %s not found for update", line.ID)
	}
	r.s.data.cartLines[line.ID] = *line
	return nil
}

func (r *memoryCartRepo) DeleteLine(lineID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.cartLines[lineID]; !ok {
		return apperrors.New(apperrors.KindNotFound, "cart line with ID %s not found for deletion", lineID)
	}
	delete(r.s.data.cartLines, lineID)
	for i, id := range r.s.data.lineOrder {
		if id == lineID {
			r.s.data.lineOrder = append(r.s.data.lineOrder[:i], r.s.data.lineOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memoryCartRepo) MarkCheckedOut(cartID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.data.carts[cartID]
	if !ok || c.CheckedOut {
		return apperrors.New(apperrors.KindConflict, "cart %s is already checked out", cartID)
	}
	c.CheckedOut = true
	r.s.data.carts[cartID] = c
	return nil
}

// --- orders ---

type memoryOrderRepo struct {
	s *MemoryStore
}

func (r *memoryOrderRepo) GetAll() ([]models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	orders := make([]models.Order, 0, len(r.s.data.orders))
	for _, o := range r.s.data.orders {
		o.Items = r.itemsOf(o.ID)
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *memoryOrderRepo) GetByID(id string) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.data.orders[id]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "order with ID %s not found", id)
	}
	order := o
	order.Items = r.itemsOf(order.ID)
	return &order, nil
}

func (r *memoryOrderRepo) GetByCustomer(customerID string) ([]models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var orders []models.Order
	for _, o := range r.s.data.orders {
		if o.CustomerID == customerID {
			o.Items = r.itemsOf(o.ID)
			orders = append(orders, o)
		}
	}
	return orders, nil
}

// itemsOf collects an order's items in insertion order. Caller holds the lock.
func (r *memoryOrderRepo) itemsOf(orderID string) []models.OrderItem {
	var items []models.OrderItem
	for _, id := range r.s.data.itemOrder {
		if it, ok := r.s.data.orderItems[id]; ok && it.OrderID == orderID {
			items = append(items, it)
		}
	}
	return items
}

func (r *memoryOrderRepo) Create(order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	stored := *order
	stored.Items = nil
	r.s.data.orders[order.ID] = stored
	return nil
}

func (r *memoryOrderRepo) AddItems(items []models.OrderItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.New().String()
		}
		r.s.data.orderItems[items[i].ID] = items[i]
		r.s.data.itemOrder = append(r.s.data.itemOrder, items[i].ID)
	}
	return nil
}

func (r *memoryOrderRepo) UpdateStatus(id string, status models.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.data.orders[id]
	if !ok {
		return apperrors.New(apperrors.KindNotFound, "order with ID %s not found for status update", id)
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	r.s.data.orders[id] = o
	return nil
}

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"eshop/models"
)

// Memory is an in-process implementation of the store interfaces. It
// backs the test suites and mirrors the Mongo behavior, including the
// all-or-nothing placement and cascade delete, the newest-first order
// sort, and the unique index on user email.
type Memory struct {
	mu         sync.RWMutex
	categories map[primitive.ObjectID]models.Category
	products   map[primitive.ObjectID]models.Product
	orders     map[primitive.ObjectID]models.Order
	orderItems map[primitive.ObjectID]models.OrderItem
	users      map[primitive.ObjectID]models.User
}

func NewMemory() *Memory {
	return &Memory{
		categories: map[primitive.ObjectID]models.Category{},
		products:   map[primitive.ObjectID]models.Product{},
		orders:     map[primitive.ObjectID]models.Order{},
		orderItems: map[primitive.ObjectID]models.OrderItem{},
		users:      map[primitive.ObjectID]models.User{},
	}
}

var (
	_ CategoryStore = (*Memory)(nil)
	_ ProductStore  = (*Memory)(nil)
	_ OrderStore    = (*Memory)(nil)
	_ UserStore     = (*Memory)(nil)
)

func (m *Memory) ListCategories(ctx context.Context) ([]models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	categories := []models.Category{}
	for _, c := range m.categories {
		categories = append(categories, c)
	}
	return categories, nil
}

func (m *Memory) GetCategory(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	category, ok := m.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &category, nil
}

func (m *Memory) InsertCategory(ctx context.Context, category *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	m.categories[category.ID] = *category
	return nil
}

func (m *Memory) UpdateCategory(ctx context.Context, id primitive.ObjectID, category *models.Category) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	existing.Name = category.Name
	existing.Icon = category.Icon
	existing.Color = category.Color
	m.categories[id] = existing
	return &existing, nil
}

func (m *Memory) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[id]; !ok {
		return ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *Memory) ListProducts(ctx context.Context, categoryIDs []primitive.ObjectID) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wanted := map[primitive.ObjectID]bool{}
	for _, id := range categoryIDs {
		wanted[id] = true
	}

	products := []models.Product{}
	for _, p := range m.products {
		if len(wanted) > 0 && !wanted[p.CategoryID] {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

func (m *Memory) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	product, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &product, nil
}

func (m *Memory) InsertProduct(ctx context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	m.products[product.ID] = *product
	return nil
}

func (m *Memory) UpdateProduct(ctx context.Context, id primitive.ObjectID, product *models.Product) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	updated := *product
	updated.ID = id
	updated.DateCreated = existing.DateCreated
	m.products[id] = updated
	return &updated, nil
}

func (m *Memory) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *Memory) CountProducts(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.products)), nil
}

func (m *Memory) ListFeatured(ctx context.Context, limit int64) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	products := []models.Product{}
	for _, p := range m.products {
		if !p.IsFeatured {
			continue
		}
		products = append(products, p)
		if limit > 0 && int64(len(products)) == limit {
			break
		}
	}
	return products, nil
}

func (m *Memory) PlaceOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, item := range items {
		m.orderItems[item.ID] = item
	}
	m.orders[order.ID] = *order
	return nil
}

func (m *Memory) GetOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &order, nil
}

func (m *Memory) GetOrderItem(ctx context.Context, id primitive.ObjectID) (*models.OrderItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.orderItems[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (m *Memory) ListOrders(ctx context.Context) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedOrders(func(models.Order) bool { return true }), nil
}

func (m *Memory) ListOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedOrders(func(o models.Order) bool { return o.UserID == userID }), nil
}

func (m *Memory) sortedOrders(keep func(models.Order) bool) []models.Order {
	orders := []models.Order{}
	for _, o := range m.orders {
		if keep(o) {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].DateOrdered.After(orders[j].DateOrdered)
	})
	return orders
}

func (m *Memory) UpdateOrder(ctx context.Context, id primitive.ObjectID, patch OrderPatch) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.ShippingAddress != nil {
		order.ShippingAddress = *patch.ShippingAddress
	}
	if patch.City != nil {
		order.City = *patch.City
	}
	if patch.Zip != nil {
		order.Zip = *patch.Zip
	}
	if patch.Country != nil {
		order.Country = *patch.Country
	}
	if patch.Phone != nil {
		order.Phone = *patch.Phone
	}
	if patch.Status != nil {
		order.Status = *patch.Status
	}
	m.orders[id] = order
	return &order, nil
}

func (m *Memory) DeleteOrder(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	for _, itemID := range order.OrderItems {
		delete(m.orderItems, itemID)
	}
	delete(m.orders, id)
	return nil
}

func (m *Memory) TotalSales(ctx context.Context) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total float64
	for _, o := range m.orders {
		total += o.TotalPrice
	}
	return total, nil
}

func (m *Memory) CountOrders(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.orders)), nil
}

func (m *Memory) ListUsers(ctx context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := []models.User{}
	for _, u := range m.users {
		users = append(users, u)
	}
	return users, nil
}

func (m *Memory) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) InsertUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return fmt.Errorf("%w: email %s", ErrDuplicate, user.Email)
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	m.users[user.ID] = *user
	return nil
}

func (m *Memory) UpdateUser(ctx context.Context, id primitive.ObjectID, patch UserPatch) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.PasswordHash != nil {
		user.PasswordHash = *patch.PasswordHash
	}
	if patch.Phone != nil {
		user.Phone = *patch.Phone
	}
	if patch.IsAdmin != nil {
		user.IsAdmin = *patch.IsAdmin
	}
	if patch.Street != nil {
		user.Street = *patch.Street
	}
	if patch.Apartment != nil {
		user.Apartment = *patch.Apartment
	}
	if patch.City != nil {
		user.City = *patch.City
	}
	if patch.Zip != nil {
		user.Zip = *patch.Zip
	}
	if patch.Country != nil {
		user.Country = *patch.Country
	}
	m.users[id] = user
	return &user, nil
}

func (m *Memory) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *Memory) CountUsers(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.users)), nil
}

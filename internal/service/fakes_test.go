package service

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/example/autodrive/internal/datamodels/cart"
	"github.com/example/autodrive/internal/datamodels/category"
	"github.com/example/autodrive/internal/datamodels/order"
	"github.com/example/autodrive/internal/datamodels/product"
	"github.com/example/autodrive/internal/datamodels/user"
)

// 内存版仓储，行为对齐 MySQL 实现：未命中返回 gorm.ErrRecordNotFound，
// 激活购物车唯一约束冲突返回 gorm.ErrDuplicatedKey。

type fakeProductRepo struct {
	products map[int64]*product.Product
	nextID   int64
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[int64]*product.Product)}
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) ListAll(ctx context.Context) ([]*product.Product, error) {
	var out []*product.Product
	for _, p := range r.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeProductRepo) ListByCategory(ctx context.Context, categoryID int64) ([]*product.Product, error) {
	var out []*product.Product
	for _, p := range r.products {
		if p.CategoryID == categoryID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) Create(ctx context.Context, p *product.Product) error {
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p *product.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.products, id)
	return nil
}

type fakeCartRepo struct {
	carts      map[int64]*cart.Cart
	items      map[int64]*cart.CartItem
	nextCartID int64
	nextItemID int64
	products   *fakeProductRepo
}

func newFakeCartRepo(products *fakeProductRepo) *fakeCartRepo {
	return &fakeCartRepo{
		carts:    make(map[int64]*cart.Cart),
		items:    make(map[int64]*cart.CartItem),
		products: products,
	}
}

func (r *fakeCartRepo) GetByID(ctx context.Context, id int64) (*cart.Cart, error) {
	c, ok := r.carts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCartRepo) GetActiveByUser(ctx context.Context, userID int64) (*cart.Cart, error) {
	for _, c := range r.carts {
		if c.UserID == userID && c.Status == cart.StatusActive {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCartRepo) GetByUserAndStatus(ctx context.Context, userID int64, status string) (*cart.Cart, error) {
	var latest *cart.Cart
	for _, c := range r.carts {
		if c.UserID == userID && c.Status == status {
			if latest == nil || c.ID > latest.ID {
				latest = c
			}
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *latest
	return &cp, nil
}

func (r *fakeCartRepo) GetLatestByUser(ctx context.Context, userID int64) (*cart.Cart, error) {
	var latest *cart.Cart
	for _, c := range r.carts {
		if c.UserID == userID {
			if latest == nil || c.ID > latest.ID {
				latest = c
			}
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *latest
	return &cp, nil
}

func (r *fakeCartRepo) Create(ctx context.Context, c *cart.Cart) error {
	if c.ActiveUserID != nil {
		for _, exist := range r.carts {
			if exist.ActiveUserID != nil && *exist.ActiveUserID == *c.ActiveUserID {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	r.nextCartID++
	c.ID = r.nextCartID
	cp := *c
	r.carts[c.ID] = &cp
	return nil
}

func (r *fakeCartRepo) UpdateStatus(ctx context.Context, cartID int64, status string) error {
	c, ok := r.carts[cartID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Status = status
	if status == cart.StatusActive {
		uid := c.UserID
		c.ActiveUserID = &uid
	} else {
		c.ActiveUserID = nil
	}
	return nil
}

func (r *fakeCartRepo) Delete(ctx context.Context, cartID int64) error {
	if _, ok := r.carts[cartID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.carts, cartID)
	for id, it := range r.items {
		if it.CartID == cartID {
			delete(r.items, id)
		}
	}
	return nil
}

func (r *fakeCartRepo) GetItem(ctx context.Context, itemID int64) (*cart.CartItem, error) {
	it, ok := r.items[itemID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *it
	return &cp, nil
}

func (r *fakeCartRepo) FindItemByProduct(ctx context.Context, cartID, productID int64) (*cart.CartItem, error) {
	for _, it := range r.items {
		if it.CartID == cartID && it.ProductID == productID {
			cp := *it
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCartRepo) ListItems(ctx context.Context, cartID int64) ([]*cart.CartItem, error) {
	var out []*cart.CartItem
	for _, it := range r.items {
		if it.CartID == cartID {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCartRepo) ListItemDetails(ctx context.Context, cartID int64) ([]*cart.ItemDetail, error) {
	items, _ := r.ListItems(ctx, cartID)
	out := make([]*cart.ItemDetail, 0, len(items))
	for _, it := range items {
		d := &cart.ItemDetail{
			ID:         it.ID,
			CartID:     it.CartID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
			Image:      it.Image,
		}
		if r.products != nil {
			if p, ok := r.products.products[it.ProductID]; ok {
				d.ProductName = p.Name
				d.ProductPrice = p.Price
				d.ProductImage = p.MainImage
			}
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *fakeCartRepo) CountItems(ctx context.Context, cartID int64) (int64, error) {
	var n int64
	for _, it := range r.items {
		if it.CartID == cartID {
			n++
		}
	}
	return n, nil
}

func (r *fakeCartRepo) ApplyItemChange(ctx context.Context, item *cart.CartItem, totalDelta int64) error {
	c, ok := r.carts[item.CartID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if item.ID == 0 {
		r.nextItemID++
		item.ID = r.nextItemID
	}
	cp := *item
	r.items[item.ID] = &cp
	c.TotalAmount += totalDelta
	return nil
}

func (r *fakeCartRepo) RemoveItem(ctx context.Context, item *cart.CartItem) error {
	c, ok := r.carts[item.CartID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if _, ok := r.items[item.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.items, item.ID)
	c.TotalAmount -= item.TotalPrice
	return nil
}

func (r *fakeCartRepo) RecomputeTotal(ctx context.Context, cartID int64) (int64, error) {
	c, ok := r.carts[cartID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	var sum int64
	for _, it := range r.items {
		if it.CartID == cartID {
			sum += it.TotalPrice
		}
	}
	c.TotalAmount = sum
	return sum, nil
}

type fakeOrderRepo struct {
	orders map[int64]*order.TestDriveOrder
	nextID int64
	carts  *fakeCartRepo
}

func newFakeOrderRepo(carts *fakeCartRepo) *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int64]*order.TestDriveOrder), carts: carts}
}

func (r *fakeOrderRepo) Finalize(ctx context.Context, o *order.TestDriveOrder) error {
	c, ok := r.carts.carts[o.CartID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.TotalAmount = c.TotalAmount
	r.nextID++
	o.ID = r.nextID
	cp := *o
	r.orders[o.ID] = &cp
	c.Status = cart.StatusCompleted
	c.ActiveUserID = nil
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id int64) (*order.TestDriveOrder, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) ListAll(ctx context.Context) ([]*order.TestDriveOrder, error) {
	var out []*order.TestDriveOrder
	for _, o := range r.orders {
		cp := *o
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeOrderRepo) ListByUser(ctx context.Context, userID int64) ([]*order.TestDriveOrder, error) {
	var out []*order.TestDriveOrder
	for _, o := range r.orders {
		if o.UserID == userID {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeOrderRepo) Update(ctx context.Context, o *order.TestDriveOrder) error {
	if _, ok := r.orders[o.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.orders[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *fakeOrderRepo) MarkNotified(ctx context.Context, id int64, at time.Time) error {
	o, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.NotifiedAt = &at
	return nil
}

func (r *fakeOrderRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.orders)), nil
}

func (r *fakeOrderRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	for _, o := range r.orders {
		if o.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeOrderRepo) SumTotalAmount(ctx context.Context) (int64, error) {
	var sum int64
	for _, o := range r.orders {
		sum += o.TotalAmount
	}
	return sum, nil
}

type fakeUserRepo struct {
	users  map[int64]*user.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*user.User)}
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	r.nextID++
	u.ID = r.nextID
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, u *user.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) ListAll(ctx context.Context) ([]*user.User, error) {
	var out []*user.User
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeCategoryRepo struct {
	categories map[int64]*category.Category
	nextID     int64
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[int64]*category.Category)}
}

func (r *fakeCategoryRepo) GetByID(ctx context.Context, id int64) (*category.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCategoryRepo) GetByName(ctx context.Context, name string) (*category.Category, error) {
	for _, c := range r.categories {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCategoryRepo) ListAll(ctx context.Context) ([]*category.Category, error) {
	var out []*category.Category
	for _, c := range r.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCategoryRepo) Create(ctx context.Context, c *category.Category) error {
	for _, exist := range r.categories {
		if exist.Name == c.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *fakeCategoryRepo) Update(ctx context.Context, c *category.Category) error {
	if _, ok := r.categories[c.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *fakeCategoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.categories[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.categories, id)
	return nil
}

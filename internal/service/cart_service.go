package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/example/autodrive/internal/datamodels/cart"
	"github.com/example/autodrive/internal/datamodels/product"
)

// CartService 购物车领域服务
// 负责：
//   - 行项目的增/改/删，含库存校验与价格快照
//   - 购物车总额的增量维护（与行项目写入同一事务，由仓储保证）
//   - 激活购物车的获取或创建（每用户至多一个）
//   - 总额校正（以行项目求和覆盖，幂等）
//
// 价格与库存的不对称是刻意的：单价在加入时冻结（"当时报的价"），
// 库存在每次影响数量的写入时按最新值重新校验（"可用性必须是当下的"）。
type CartService struct {
	cartRepo    cart.Repository
	productRepo product.Repository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo cart.Repository, productRepo product.Repository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// CartDetail 购物车 + 行项目明细
type CartDetail struct {
	Cart  *cart.Cart         `json:"cart"`
	Items []*cart.ItemDetail `json:"items"`
}

// GetOrCreateActiveCart 返回用户的激活购物车，不存在则创建。
// 并发同入时由 active_user_id 唯一索引裁决，落败方重读胜出方的记录。
func (s *CartService) GetOrCreateActiveCart(ctx context.Context, userID int64) (*cart.Cart, error) {
	c, err := s.cartRepo.GetActiveByUser(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	uid := userID
	c = &cart.Cart{
		UserID:       userID,
		Status:       cart.StatusActive,
		TotalAmount:  0,
		ActiveUserID: &uid,
	}
	if err := s.cartRepo.Create(ctx, c); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.cartRepo.GetActiveByUser(ctx, userID)
		}
		return nil, err
	}
	return c, nil
}

// GetUserCart 按状态查用户购物车及其明细，status 为空时取 active。
// 没有对应购物车时返回 (nil, nil)，由调用方决定如何呈现空结果。
func (s *CartService) GetUserCart(ctx context.Context, userID int64, status string) (*CartDetail, error) {
	if status == "" {
		status = cart.StatusActive
	}
	if !cart.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	c, err := s.cartRepo.GetByUserAndStatus(ctx, userID, status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	items, err := s.cartRepo.ListItemDetails(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return &CartDetail{Cart: c, Items: items}, nil
}

// ChangeStatusByUser 修改用户最近一个购物车的状态，不触碰行项目与总额
func (s *CartService) ChangeStatusByUser(ctx context.Context, userID int64, status string) (*cart.Cart, error) {
	if !cart.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	c, err := s.cartRepo.GetLatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	if err := s.cartRepo.UpdateStatus(ctx, c.ID, status); err != nil {
		return nil, err
	}
	c.Status = status
	return c, nil
}

// DeleteCartByUser 删除用户最近一个购物车，级联删除其所有行项目
func (s *CartService) DeleteCartByUser(ctx context.Context, userID int64) error {
	c, err := s.cartRepo.GetLatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartNotFound
		}
		return err
	}
	if err := s.cartRepo.Delete(ctx, c.ID); err != nil {
		return err
	}
	GetMonitor().RecordCartMutation()
	return nil
}

// AddItem 向购物车加入商品。同一 (购物车, 商品) 已有行项目时合并数量，
// 否则以商品当前价格与主图快照新建行项目。购物车总额按行项目
// 总价的变化量增量调整，与行项目写入同一事务
func (s *CartService) AddItem(ctx context.Context, cartID, productID, qty int64) (*cart.CartItem, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	if _, err := s.cartRepo.GetByID(ctx, cartID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	p, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if p.Stock < qty {
		return nil, ErrInsufficientStock
	}

	var oldTotal int64
	item, err := s.cartRepo.FindItemByProduct(ctx, cartID, productID)
	switch {
	case err == nil:
		// 合并数量时单价沿用已存快照，总额差值按快照价算
		oldTotal = item.TotalPrice
		item.Quantity += qty
		item.Recalculate()
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = &cart.CartItem{
			CartID:    cartID,
			ProductID: productID,
			Quantity:  qty,
			UnitPrice: p.Price, // 加入时快照，后续不随商品改价变动
			Image:     p.MainImage,
		}
		item.Recalculate()
	default:
		return nil, err
	}

	if err := s.cartRepo.ApplyItemChange(ctx, item, item.TotalPrice-oldTotal); err != nil {
		return nil, err
	}
	GetMonitor().RecordCartMutation()
	return item, nil
}

// UpdateItem 把行项目数量改为绝对值 qty。库存按新的绝对数量校验，
// 总额按 新总价-旧总价 的差值调整
func (s *CartService) UpdateItem(ctx context.Context, cartID, itemID, qty int64) (*cart.CartItem, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	item, err := s.cartRepo.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	if item.CartID != cartID {
		return nil, ErrCartItemNotFound
	}
	p, err := s.productRepo.GetByID(ctx, item.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if p.Stock < qty {
		return nil, ErrInsufficientStock
	}

	oldTotal := item.TotalPrice
	item.Quantity = qty
	item.Recalculate()

	if err := s.cartRepo.ApplyItemChange(ctx, item, item.TotalPrice-oldTotal); err != nil {
		return nil, err
	}
	GetMonitor().RecordCartMutation()
	return item, nil
}

// RemoveItem 删除行项目并从购物车总额中扣除其总价
func (s *CartService) RemoveItem(ctx context.Context, cartID, itemID int64) error {
	item, err := s.cartRepo.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartItemNotFound
		}
		return err
	}
	if item.CartID != cartID {
		return ErrCartItemNotFound
	}
	if err := s.cartRepo.RemoveItem(ctx, item); err != nil {
		return err
	}
	GetMonitor().RecordCartMutation()
	return nil
}

// ListItems 列出购物车行项目，附带商品名称/现价/主图投影
func (s *CartService) ListItems(ctx context.Context, cartID int64) ([]*cart.ItemDetail, error) {
	if _, err := s.cartRepo.GetByID(ctx, cartID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return s.cartRepo.ListItemDetails(ctx, cartID)
}

// RecomputeTotal 权威校正路径：以行项目总价之和覆盖购物车总额。
// 幂等，不受增量历史影响，用于修复部分失败造成的漂移
func (s *CartService) RecomputeTotal(ctx context.Context, cartID int64) (int64, error) {
	if _, err := s.cartRepo.GetByID(ctx, cartID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrCartNotFound
		}
		return 0, err
	}
	total, err := s.cartRepo.RecomputeTotal(ctx, cartID)
	if err != nil {
		return 0, err
	}
	GetMonitor().RecordReconcileRun()
	return total, nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/gorm"

	"github.com/example/autodrive/internal/datamodels/cart"
	"github.com/example/autodrive/internal/datamodels/order"
	"github.com/example/autodrive/internal/datamodels/user"
)

// BookingQueue 试驾预约事件队列
const BookingQueue = "test_drive_booking_queue"

// BookingMessage 预约创建事件，写入 MQ 供 worker 消费
type BookingMessage struct {
	OrderID     int64 `json:"order_id"`
	UserID      int64 `json:"user_id"`
	CartID      int64 `json:"cart_id"`
	TotalAmount int64 `json:"total_amount"`
}

// OrderService 试驾预约服务：下单（购物车终结）、查询、状态管理与统计
type OrderService struct {
	orderRepo order.Repository
	cartRepo  cart.Repository
	userRepo  user.Repository
	mqConn    *amqp.Connection
}

// NewOrderService 创建预约服务，mqConn 允许为 nil（此时不发事件）
func NewOrderService(orderRepo order.Repository, cartRepo cart.Repository, userRepo user.Repository, mqConn *amqp.Connection) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		userRepo:  userRepo,
		mqConn:    mqConn,
	}
}

// FinalizeRequest 下单入参
type FinalizeRequest struct {
	UserID        int64
	CartID        int64
	TestDriveDate time.Time
	Address       string
	Notes         string
	ImageURL      string
}

// Finalize 把购物车转为试驾预约单：快照当前总额、创建预约、
// 购物车置为 completed。空购物车拒绝下单。快照与状态翻转由仓储
// 在同一事务内完成，之后尽力投递预约事件到 MQ（失败只记录不回滚）
func (s *OrderService) Finalize(ctx context.Context, req *FinalizeRequest) (*order.TestDriveOrder, error) {
	GetMonitor().RecordBookingRequest()

	c, err := s.cartRepo.GetByID(ctx, req.CartID)
	if err != nil {
		GetMonitor().RecordBookingError()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	n, err := s.cartRepo.CountItems(ctx, req.CartID)
	if err != nil {
		GetMonitor().RecordBookingError()
		return nil, err
	}
	if n == 0 {
		GetMonitor().RecordBookingError()
		return nil, ErrEmptyCart
	}

	o := &order.TestDriveOrder{
		UserID:        req.UserID,
		CartID:        req.CartID,
		OrderDate:     time.Now(),
		TestDriveDate: req.TestDriveDate,
		Address:       req.Address,
		Notes:         req.Notes,
		TotalAmount:   c.TotalAmount, // 仓储 Finalize 会在锁内重读覆盖
		ImageURL:      req.ImageURL,
		Status:        order.StatusPending,
	}
	if err := s.orderRepo.Finalize(ctx, o); err != nil {
		GetMonitor().RecordBookingError()
		return nil, err
	}
	GetMonitor().RecordBookingSuccess()

	s.publishBookingCreated(ctx, o)
	return o, nil
}

// publishBookingCreated 投递预约创建事件，尽力而为
func (s *OrderService) publishBookingCreated(ctx context.Context, o *order.TestDriveOrder) {
	if s.mqConn == nil {
		return
	}
	ch, err := s.mqConn.Channel()
	if err != nil {
		GetMonitor().RecordMQError()
		log.Printf("open mq channel failed: %v", err)
		return
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(BookingQueue, true, false, false, false, nil); err != nil {
		GetMonitor().RecordMQError()
		log.Printf("declare booking queue failed: %v", err)
		return
	}

	body, err := json.Marshal(&BookingMessage{
		OrderID:     o.ID,
		UserID:      o.UserID,
		CartID:      o.CartID,
		TotalAmount: o.TotalAmount,
	})
	if err != nil {
		log.Printf("marshal booking message failed: %v", err)
		return
	}

	err = ch.PublishWithContext(
		ctx,
		"",
		BookingQueue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		GetMonitor().RecordMQError()
		log.Printf("publish booking message failed: %v", err)
	}
}

// OrderUser 预约单上展示的用户摘要
type OrderUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	FullName string `json:"full_name"`
}

// OrderDetail 预约单 + 用户摘要 + 购物车行项目明细
type OrderDetail struct {
	Order *order.TestDriveOrder `json:"order"`
	User  *OrderUser            `json:"user,omitempty"`
	Items []*cart.ItemDetail    `json:"items"`
}

func (s *OrderService) buildDetail(ctx context.Context, o *order.TestDriveOrder) *OrderDetail {
	detail := &OrderDetail{Order: o}
	if u, err := s.userRepo.GetByID(ctx, o.UserID); err == nil {
		detail.User = &OrderUser{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			Phone:    u.Phone,
			FullName: u.FullName,
		}
	}
	if items, err := s.cartRepo.ListItemDetails(ctx, o.CartID); err == nil {
		detail.Items = items
	}
	return detail
}

// GetDetail 按 ID 查预约单明细
func (s *OrderService) GetDetail(ctx context.Context, id int64) (*OrderDetail, error) {
	o, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return s.buildDetail(ctx, o), nil
}

// ListDetailed 列出全部预约单（新→旧），附带用户摘要与行项目明细
func (s *OrderService) ListDetailed(ctx context.Context) ([]*OrderDetail, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*OrderDetail, 0, len(orders))
	for _, o := range orders {
		out = append(out, s.buildDetail(ctx, o))
	}
	return out, nil
}

// ListByUser 列出指定用户的预约单明细
func (s *OrderService) ListByUser(ctx context.Context, userID int64) ([]*OrderDetail, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*OrderDetail, 0, len(orders))
	for _, o := range orders {
		out = append(out, s.buildDetail(ctx, o))
	}
	return out, nil
}

// UpdateStatus 更新预约状态
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status string) (*order.TestDriveOrder, error) {
	if !order.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	o, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	o.Status = status
	if err := s.orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Delete 删除预约单
func (s *OrderService) Delete(ctx context.Context, id int64) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	return nil
}

// Statistics 预约统计：各状态数量与总金额
func (s *OrderService) Statistics(ctx context.Context) (*order.Statistics, error) {
	total, err := s.orderRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats := &order.Statistics{Total: total}
	for _, st := range []struct {
		name string
		dst  *int64
	}{
		{order.StatusPending, &stats.Pending},
		{order.StatusConfirmed, &stats.Confirmed},
		{order.StatusCompleted, &stats.Completed},
		{order.StatusCancelled, &stats.Cancelled},
	} {
		n, err := s.orderRepo.CountByStatus(ctx, st.name)
		if err != nil {
			return nil, err
		}
		*st.dst = n
	}
	amount, err := s.orderRepo.SumTotalAmount(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalAmount = amount
	return stats, nil
}

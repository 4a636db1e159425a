package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	radix "github.com/mediocregopher/radix/v3"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/example/autodrive/internal/config"
	"github.com/example/autodrive/internal/datamodels/order"
	"github.com/example/autodrive/internal/infra/mq"
	"github.com/example/autodrive/internal/infra/redis"
	"github.com/example/autodrive/internal/repository/mysql"
	"github.com/example/autodrive/internal/service"
)

func init() {
	// 初始化监控
	_ = service.GetMonitor()
}

const (
	// 当日预约计数，key 按日期切分，保留一周够运营看趋势
	redisDailyBookingKey     = "booking:daily:%s" // 2006-01-02
	dailyCounterExpireSecond = 7 * 86400
)

func main() {
	cfg := config.DefaultConfig()

	db := mysql.Init(&cfg.MySQL)
	mqConn := mq.Init(&cfg.RabbitMQ)
	redisClient := redis.Init(&cfg.Redis)

	orderRepo := mysql.NewOrderRepository(db)

	ch, err := mqConn.Channel()
	if err != nil {
		log.Fatalf("failed to open channel: %v", err)
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(service.BookingQueue, true, false, false, false, nil); err != nil {
		log.Fatalf("failed to declare queue: %v", err)
	}

	// 手动确认模式（auto-ack=false），处理失败的消息可以重回队列
	msgs, err := ch.Consume(service.BookingQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("failed to consume: %v", err)
	}

	log.Println("booking worker started, waiting for messages...")

	for d := range msgs {
		var m service.BookingMessage
		if err := json.Unmarshal(d.Body, &m); err != nil {
			log.Printf("invalid message: %v", err)
			service.GetMonitor().RecordWorkerFailed()
			// 消息格式错误，拒绝并丢弃
			_ = d.Nack(false, false)
			continue
		}
		handleMessage(context.Background(), orderRepo, redisClient, &m, d)
	}
}

func handleMessage(ctx context.Context, orderRepo order.Repository, redisClient radix.Client, m *service.BookingMessage, d amqp.Delivery) {
	now := time.Now()

	// 二次投递时 NotifiedAt 已有值，直接确认，保证处理幂等
	if o, err := orderRepo.GetByID(ctx, m.OrderID); err == nil && o.NotifiedAt != nil {
		log.Printf("booking %d already notified at %s, skip", m.OrderID, o.NotifiedAt.Format(time.RFC3339))
		_ = d.Ack(false)
		return
	}

	if err := orderRepo.MarkNotified(ctx, m.OrderID, now); err != nil {
		log.Printf("mark booking %d notified failed: %v", m.OrderID, err)
		service.GetMonitor().RecordDBError()
		service.GetMonitor().RecordWorkerFailed()
		// 数据库暂时不可用，重回队列稍后再试
		_ = d.Nack(false, true)
		return
	}

	// 通知渠道暂时只有日志，后面接短信/邮件时在这里扩展
	log.Printf("booking confirmed: order=%d user=%d cart=%d total=%d", m.OrderID, m.UserID, m.CartID, m.TotalAmount)

	key := fmt.Sprintf(redisDailyBookingKey, now.Format("2006-01-02"))
	if err := redisClient.Do(radix.Cmd(nil, "INCR", key)); err != nil {
		log.Printf("bump daily counter failed: %v", err)
		service.GetMonitor().RecordRedisError()
	} else {
		_ = redisClient.Do(radix.FlatCmd(nil, "EXPIRE", key, dailyCounterExpireSecond))
	}

	service.GetMonitor().RecordWorkerProcessed()
	_ = d.Ack(false)
}

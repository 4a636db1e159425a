package service

import (
	"sync"
	"time"
)

// Monitor 监控服务，用于统计错误和性能指标
type Monitor struct {
	mu sync.RWMutex

	// 错误统计
	RedisErrors   int64
	MQErrors      int64
	DBErrors      int64
	BookingErrors int64
	WorkerErrors  int64

	// 性能统计
	BookingRequests int64
	BookingSuccess  int64
	CartMutations   int64
	ReconcileRuns   int64
	WorkerProcessed int64
	WorkerFailed    int64

	// 时间统计
	LastRedisError  time.Time
	LastMQError     time.Time
	LastDBError     time.Time
	LastBookingTime time.Time
	LastWorkerTime  time.Time
}

var globalMonitor = &Monitor{}

// GetMonitor 获取全局监控实例
func GetMonitor() *Monitor {
	return globalMonitor
}

// RecordRedisError 记录Redis错误
func (m *Monitor) RecordRedisError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RedisErrors++
	m.LastRedisError = time.Now()
}

// RecordMQError 记录MQ错误
func (m *Monitor) RecordMQError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MQErrors++
	m.LastMQError = time.Now()
}

// RecordDBError 记录数据库错误
func (m *Monitor) RecordDBError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors++
	m.LastDBError = time.Now()
}

// RecordBookingRequest 记录预约请求
func (m *Monitor) RecordBookingRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BookingRequests++
	m.LastBookingTime = time.Now()
}

// RecordBookingSuccess 记录预约成功
func (m *Monitor) RecordBookingSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BookingSuccess++
}

// RecordBookingError 记录预约失败
func (m *Monitor) RecordBookingError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BookingErrors++
}

// RecordCartMutation 记录购物车写操作
func (m *Monitor) RecordCartMutation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CartMutations++
}

// RecordReconcileRun 记录总额校正执行
func (m *Monitor) RecordReconcileRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReconcileRuns++
}

// RecordWorkerProcessed 记录Worker处理成功
func (m *Monitor) RecordWorkerProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WorkerProcessed++
	m.LastWorkerTime = time.Now()
}

// RecordWorkerFailed 记录Worker处理失败
func (m *Monitor) RecordWorkerFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WorkerFailed++
	m.WorkerErrors++
}

// GetStats 获取统计信息
func (m *Monitor) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	successRate := float64(0)
	if m.BookingRequests > 0 {
		successRate = float64(m.BookingSuccess) / float64(m.BookingRequests) * 100
	}

	workerSuccessRate := float64(0)
	totalWorker := m.WorkerProcessed + m.WorkerFailed
	if totalWorker > 0 {
		workerSuccessRate = float64(m.WorkerProcessed) / float64(totalWorker) * 100
	}

	return map[string]interface{}{
		"errors": map[string]interface{}{
			"redis":   m.RedisErrors,
			"mq":      m.MQErrors,
			"db":      m.DBErrors,
			"booking": m.BookingErrors,
			"worker":  m.WorkerErrors,
		},
		"performance": map[string]interface{}{
			"booking_requests":     m.BookingRequests,
			"booking_success":      m.BookingSuccess,
			"booking_success_rate": successRate,
			"cart_mutations":       m.CartMutations,
			"reconcile_runs":       m.ReconcileRuns,
			"worker_processed":     m.WorkerProcessed,
			"worker_failed":        m.WorkerFailed,
			"worker_success_rate":  workerSuccessRate,
		},
		"last_events": map[string]interface{}{
			"redis_error":  m.LastRedisError,
			"mq_error":     m.LastMQError,
			"db_error":     m.LastDBError,
			"last_booking": m.LastBookingTime,
			"last_worker":  m.LastWorkerTime,
		},
	}
}

// Reset 重置统计（用于测试或定期清理）
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RedisErrors = 0
	m.MQErrors = 0
	m.DBErrors = 0
	m.BookingErrors = 0
	m.WorkerErrors = 0
	m.BookingRequests = 0
	m.BookingSuccess = 0
	m.CartMutations = 0
	m.ReconcileRuns = 0
	m.WorkerProcessed = 0
	m.WorkerFailed = 0
}

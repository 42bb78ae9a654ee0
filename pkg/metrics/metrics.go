package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 数据库查询延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "habits_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		},
		[]string{"operation", "table"},
	)

	// 慢查询计数
	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habits_db_slow_query_count",
			Help: "Total number of queries slower than the configured threshold",
		},
		[]string{"operation"},
	)

	// 存储操作计数
	StoreOperationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habits_store_operation_count",
			Help: "Total number of habit store operations",
		},
		[]string{"operation", "status"}, // status: success, not_found, duplicate, invalid, decode_error, error
	)

	// 打卡事件计数
	CompletionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habits_completion_count",
			Help: "Total number of completion events recorded",
		},
		[]string{"completed"},
	)

	// 连续打卡检查结果
	StreakCheckCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habits_streak_check_count",
			Help: "Total number of streak evaluations",
		},
		[]string{"frequency", "result"}, // result: on_streak, broken, error
	)
)

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// IncrementSlowQuery 记录一次慢查询
func IncrementSlowQuery(operation string) {
	SlowQueryCount.WithLabelValues(operation).Inc()
}

// IncrementStoreOperation 记录存储操作结果
func IncrementStoreOperation(operation, status string) {
	StoreOperationCount.WithLabelValues(operation, status).Inc()
}

// IncrementCompletion 记录打卡事件
func IncrementCompletion(completed bool) {
	label := "false"
	if completed {
		label = "true"
	}
	CompletionCount.WithLabelValues(label).Inc()
}

// IncrementStreakCheck 记录连续打卡检查结果
func IncrementStreakCheck(frequency, result string) {
	StreakCheckCount.WithLabelValues(frequency, result).Inc()
}

// WriteTextfile 以 Prometheus 文本格式写出默认 registry（node_exporter textfile collector）
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

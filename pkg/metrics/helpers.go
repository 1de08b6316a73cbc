package metrics

import (
	"time"
)

type RedisOperation string

const (
	RedisOpGet RedisOperation = "get"
	RedisOpSet RedisOperation = "set"
	RedisOpDel RedisOperation = "del"
)

type RedisTimer struct {
	service   string
	operation RedisOperation
	start     time.Time
}

func NewRedisTimer(service string, op RedisOperation) *RedisTimer {
	return &RedisTimer{
		service:   service,
		operation: op,
		start:     time.Now(),
	}
}

func (rt *RedisTimer) ObserveDuration() {
	duration := time.Since(rt.start).Seconds()
	RedisOperationDuration.WithLabelValues(rt.service, string(rt.operation)).Observe(duration)
}

func RecordCacheHit(service, keyPrefix string) {
	RedisCacheHits.WithLabelValues(service, keyPrefix).Inc()
}

func RecordCacheMiss(service, keyPrefix string) {
	RedisCacheMisses.WithLabelValues(service, keyPrefix).Inc()
}

func RecordRedisError(service string, op RedisOperation) {
	RedisErrors.WithLabelValues(service, string(op)).Inc()
}

type DbOperation string

const (
	DbOpSelect DbOperation = "select"
	DbOpInsert DbOperation = "insert"
	DbOpUpdate DbOperation = "update"
	DbOpDelete DbOperation = "delete"
)

type DbTimer struct {
	service   string
	operation DbOperation
	table     string
	start     time.Time
}

func NewDbTimer(service string, op DbOperation, table string) *DbTimer {
	return &DbTimer{
		service:   service,
		operation: op,
		table:     table,
		start:     time.Now(),
	}
}

func (dt *DbTimer) ObserveDuration() {
	duration := time.Since(dt.start).Seconds()
	DbQueryDuration.WithLabelValues(dt.service, string(dt.operation), dt.table).Observe(duration)
}

func RecordDbError(service string, op DbOperation) {
	DbErrors.WithLabelValues(service, string(op)).Inc()
}

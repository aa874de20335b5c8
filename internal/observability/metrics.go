package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters for bot operations and HTTP
// requests.
type Metrics struct {
	mu             sync.Mutex
	operationCount map[string]int64
	requestCount   map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		operationCount: make(map[string]int64),
		requestCount:   make(map[string]int64),
	}
}

// RecordOperation increments the counter for a bot operation outcome.
func (m *Metrics) RecordOperation(operation string, success bool) {
	if m == nil {
		return
	}
	key := operation + "|" + strconv.FormatBool(success)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operationCount[key]++
}

// RecordRequest increments counters for HTTP requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// Snapshot copies the current counters for reporting.
func (m *Metrics) Snapshot() (operations, requests map[string]int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	operations = make(map[string]int64, len(m.operationCount))
	for k, v := range m.operationCount {
		operations[k] = v
	}
	requests = make(map[string]int64, len(m.requestCount))
	for k, v := range m.requestCount {
		requests[k] = v
	}
	return operations, requests
}

package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics keeps in-process request and error counters, keyed by route, method
// and outcome. Request counters also accumulate handler latency. There is no
// export surface; the counters exist for inspection from a debugger or test.
type Metrics struct {
	mu       sync.Mutex
	requests map[metricKey]*requestStat
	errors   map[metricKey]int64
}

type metricKey struct {
	path    string
	method  string
	outcome string
}

type requestStat struct {
	count   int64
	elapsed time.Duration
}

// NewMetrics initializes empty counter storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: make(map[metricKey]*requestStat),
		errors:   make(map[metricKey]int64),
	}
}

// RecordRequest counts a completed request and accumulates its latency.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := metricKey{path: path, method: method, outcome: strconv.Itoa(status)}
	m.mu.Lock()
	defer m.mu.Unlock()
	stat := m.requests[key]
	if stat == nil {
		stat = &requestStat{}
		m.requests[key] = stat
	}
	stat.count++
	stat.elapsed += duration
}

// RecordError counts a request that ended in a domain error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[metricKey{path: path, method: method, outcome: code}]++
}

package ephemeris

import (
	"encoding/json"
	"errors"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/orbitronica/orbitronica/kvstore"
)

// Cache keeps raw Horizons documents in memory and, if a store is set, persistently.
// Documents are returned exactly as they were stored.
type Cache struct {
	mem     *lru.Cache[string, json.RawMessage]
	store   kvstore.Store
	logger  kitlog.Logger
	lookups *prometheus.CounterVec
}

// NewCache returns a cache holding up to size documents in memory in front of the store, which may be
// nil. The lookup counter is registered on reg unless nil.
func NewCache(store kvstore.Store, size int, reg prometheus.Registerer, logger kitlog.Logger) (*Cache, error) {
	if size <= 0 {
		size = 1
	}
	mem, err := lru.New[string, json.RawMessage](size)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	c := &Cache{
		mem:    mem,
		store:  store,
		logger: kitlog.With(logger, "subsys", "ephemeris"),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orbitronica",
			Name:      "ephemeris_cache_lookups_total",
			Help:      "Ephemeris cache lookups by result",
		}, []string{"result"}),
	}
	if reg != nil {
		if err := reg.Register(c.lookups); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Get returns the cached document. Persisted entries which are not valid JSON are deleted and
// reported as a miss.
func (c *Cache) Get(key string) (json.RawMessage, bool) {
	if doc, ok := c.mem.Get(key); ok {
		c.lookups.WithLabelValues("hit").Inc()
		return doc, true
	}
	if c.store == nil {
		c.lookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	b, err := c.store.Get(key)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			level.Warn(c.logger).Log("key", key, "err", err)
		}
		c.lookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	if !json.Valid(b) {
		level.Warn(c.logger).Log("key", key, "status", "corrupted entry discarded")
		if err := c.store.Delete(key); err != nil {
			level.Error(c.logger).Log("key", key, "err", err)
		}
		c.lookups.WithLabelValues("corrupt").Inc()
		return nil, false
	}
	c.mem.Add(key, b)
	c.lookups.WithLabelValues("hit").Inc()
	return b, true
}

// Put stores the document verbatim.
func (c *Cache) Put(key string, doc json.RawMessage) error {
	c.mem.Add(key, doc)
	if c.store == nil {
		return nil
	}
	return c.store.Put(key, doc)
}

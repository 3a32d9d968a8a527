package metrics

import (
	"fmt"
	"time"

	"github.com/latticedb/lattice/pkg/catalog"
	"github.com/latticedb/lattice/pkg/shaper"
	"github.com/latticedb/lattice/pkg/txn"
)

// Collector periodically samples a vocbase, its shape dictionary, and
// its transaction manager into the package's gauges.
type Collector struct {
	vocbase *catalog.Vocbase
	shaper  *shaper.Shaper
	manager *txn.Manager
	stopCh  chan struct{}
}

// NewCollector creates a new metrics collector.
func NewCollector(v *catalog.Vocbase, sh *shaper.Shaper, mgr *txn.Manager) *Collector {
	return &Collector{
		vocbase: v,
		shaper:  sh,
		manager: mgr,
		stopCh:  make(chan struct{}),
	}
}

// Start begins collecting metrics on a fixed interval.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.collectCollectionMetrics()
	c.collectShapeMetrics()
	c.collectTransactionMetrics()
	c.collectHealth()
}

func (c *Collector) collectCollectionMetrics() {
	if c.vocbase == nil {
		return
	}

	DatabasesTotal.Set(1)

	counts := map[string]int{}
	for _, col := range c.vocbase.Collections() {
		counts[col.Status().String()]++
	}

	for status, n := range counts {
		CollectionsTotal.WithLabelValues(status).Set(float64(n))
	}
}

func (c *Collector) collectShapeMetrics() {
	if c.shaper == nil {
		return
	}

	ShapesTotal.Set(float64(c.shaper.ShapeCount()))
	AttributeNamesTotal.Set(float64(c.shaper.AttributeNameCount()))
	AttributePathsTotal.Set(float64(c.shaper.AttributePathCount()))
}

func (c *Collector) collectTransactionMetrics() {
	if c.manager == nil {
		return
	}

	TransactionsActive.Set(float64(c.manager.ActiveCount()))
}

// collectHealth registers the catalog and store components that
// GetReadiness treats as critical, based on the actual vocbase this
// collector samples.
func (c *Collector) collectHealth() {
	if c.vocbase == nil {
		return
	}

	RegisterComponent("catalog", true, fmt.Sprintf("%d collections tracked", len(c.vocbase.Collections())))

	if err := c.vocbase.StoreHealthy(); err != nil {
		RegisterComponent("store", false, err.Error())
	} else {
		RegisterComponent("store", true, "")
	}
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/latticedb/lattice/pkg/catalog"
	"github.com/latticedb/lattice/pkg/jsonvalue"
	"github.com/latticedb/lattice/pkg/shaper"
	"github.com/latticedb/lattice/pkg/txn"
)

func TestCollectorSamplesCollectionCounts(t *testing.T) {
	v := catalog.New(t.TempDir(), catalog.Defaults{})
	_, err := v.Create("users", catalog.Document)
	require.NoError(t, err)
	_, err = v.Create("orders", catalog.Document)
	require.NoError(t, err)

	c := NewCollector(v, nil, nil)
	c.collect()

	require.Equal(t, float64(1), testutil.ToFloat64(DatabasesTotal))
	require.Equal(t, float64(2), testutil.ToFloat64(CollectionsTotal.WithLabelValues("loaded")))
}

func TestCollectorSamplesShapeAndTransactionCounts(t *testing.T) {
	sh := shaper.NewShaper(32)
	z := jsonvalue.NewZone("test")
	_, err := sh.Shape(z.NewString("hello"))
	require.NoError(t, err)

	mgr := txn.NewManager()
	mgr.Begin("db")

	c := NewCollector(nil, sh, mgr)
	c.collect()

	require.Equal(t, float64(sh.ShapeCount()), testutil.ToFloat64(ShapesTotal))
	require.Equal(t, float64(1), testutil.ToFloat64(TransactionsActive))
}

func TestCollectorNilComponentsAreSkippedWithoutPanicking(t *testing.T) {
	c := NewCollector(nil, nil, nil)
	require.NotPanics(t, func() { c.collect() })
}

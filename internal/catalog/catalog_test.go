package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/store"
)

type seqIDs struct{ n int64 }

func (s *seqIDs) NextID() int64 { return atomic.AddInt64(&s.n, 1) }

func newCatalog(t *testing.T, opts ...Option) (*Catalog, *store.RecordStore[domain.Product]) {
	t.Helper()
	st := store.NewRecordStore[domain.Product](filepath.Join(t.TempDir(), "products.json"))
	return New(st, opts...), st
}

func chair() domain.ProductInput {
	return domain.ProductInput{Name: "Chair", Price: decimal.NewFromInt(100), Description: "oak"}
}

func TestCreateAssignsFreshID(t *testing.T) {
	c, _ := newCatalog(t)
	first, err := c.Create(chair())
	require.NoError(t, err)
	second, err := c.Create(chair())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "Chair", first.Name)
	assert.True(t, first.Price.Equal(decimal.NewFromInt(100)))

	got := c.List()
	require.Len(t, got, 2)
	assert.Equal(t, first, got[0])
	assert.Equal(t, second, got[1])
}

func TestGet(t *testing.T) {
	c, _ := newCatalog(t, WithIDGenerator(&seqIDs{}))
	p, err := c.Create(chair())
	require.NoError(t, err)

	got, err := c.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = c.Get(999)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestUpdateMergesPatch(t *testing.T) {
	c, _ := newCatalog(t, WithIDGenerator(&seqIDs{}))
	p, err := c.Create(chair())
	require.NoError(t, err)

	price := decimal.NewFromInt(150)
	got, err := c.Update(p.ID, domain.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "Chair", got.Name)
	assert.Equal(t, "oak", got.Description)
	assert.True(t, got.Price.Equal(price))

	stored, err := c.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, got, stored)
}

func TestUpdateEmptyPatchReturnsOriginal(t *testing.T) {
	bus := EventBus.New()
	c, st := newCatalog(t, WithIDGenerator(&seqIDs{}), WithEventBus(bus))
	p, err := c.Create(chair())
	require.NoError(t, err)
	before, err := os.Stat(st.Path())
	require.NoError(t, err)

	updates := 0
	require.NoError(t, bus.Subscribe(TopicProductUpdated, func(domain.Product) { updates++ }))

	got, err := c.Update(p.ID, domain.ProductPatch{})
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.Equal(t, 0, updates)

	after, err := os.Stat(st.Path())
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime(), "nothing is written")

	_, err = c.Update(999, domain.ProductPatch{})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestUpdateMissingLeavesStoreUntouched(t *testing.T) {
	c, st := newCatalog(t, WithIDGenerator(&seqIDs{}))
	_, err := c.Create(chair())
	require.NoError(t, err)
	before := st.LoadAll()

	name := "Ghost"
	_, err = c.Update(42, domain.ProductPatch{Name: &name})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, before, st.LoadAll())
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	c, _ := newCatalog(t, WithIDGenerator(&seqIDs{}))
	a, _ := c.Create(chair())
	b, _ := c.Create(domain.ProductInput{Name: "Table", Price: decimal.NewFromInt(300)})
	d, _ := c.Create(domain.ProductInput{Name: "Lamp", Price: decimal.NewFromInt(40)})

	require.NoError(t, c.Delete(b.ID))
	assert.Equal(t, []domain.Product{a, d}, c.List())

	err := c.Delete(b.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Len(t, c.List(), 2)
}

func TestConcurrentCreatesBothPersist(t *testing.T) {
	c, _ := newCatalog(t, WithIDGenerator(&seqIDs{}))

	var wg sync.WaitGroup
	for _, name := range []string{"A", "B"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, err := c.Create(domain.ProductInput{Name: name, Price: decimal.NewFromInt(1)})
			assert.NoError(t, err)
		}(name)
	}
	wg.Wait()

	got := c.List()
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []string{"A", "B"}, []string{got[0].Name, got[1].Name})
}

func TestEventsPublishedAfterSave(t *testing.T) {
	bus := EventBus.New()
	c, st := newCatalog(t, WithIDGenerator(&seqIDs{}), WithEventBus(bus))

	var created []domain.Product
	var deleted []int64
	require.NoError(t, bus.Subscribe(TopicProductCreated, func(p domain.Product) {
		// the record is already on disk when handlers run
		assert.NotEqual(t, -1, store.FindByID(st.LoadAll(), p.ID))
		created = append(created, p)
	}))
	require.NoError(t, bus.Subscribe(TopicProductDeleted, func(id int64) {
		deleted = append(deleted, id)
	}))

	p, err := c.Create(chair())
	require.NoError(t, err)
	require.NoError(t, c.Delete(p.ID))
	_ = c.Delete(p.ID)

	assert.Equal(t, []domain.Product{p}, created)
	assert.Equal(t, []int64{p.ID}, deleted, "failed delete publishes nothing")
}

func TestMillisGeneratorStrictlyIncreasing(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	g := &MillisGenerator{now: func() time.Time { return fixed }}

	assert.Equal(t, int64(1_700_000_000_000), g.NextID())
	assert.Equal(t, int64(1_700_000_000_001), g.NextID())
	assert.Equal(t, int64(1_700_000_000_002), g.NextID())
}

func TestNewIDGenerator(t *testing.T) {
	g, err := NewIDGenerator("millis", 0)
	require.NoError(t, err)
	assert.IsType(t, &MillisGenerator{}, g)

	g, err = NewIDGenerator("snowflake", 3)
	require.NoError(t, err)
	a, b := g.NextID(), g.NextID()
	assert.NotEqual(t, a, b)

	_, err = NewIDGenerator("snowflake", 5000)
	assert.Error(t, err)

	_, err = NewIDGenerator("uuid", 0)
	assert.Error(t, err)
}

func TestExportCSV(t *testing.T) {
	c, _ := newCatalog(t, WithIDGenerator(&seqIDs{}))
	_, err := c.Create(domain.ProductInput{Name: "Chair", Price: decimal.RequireFromString("99.90")})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.ExportCSV(&buf))
	assert.Equal(t, "id,name,price,description,image\n1,Chair,99.9,,\n", buf.String())
}

func TestSummarize(t *testing.T) {
	c, _ := newCatalog(t, WithIDGenerator(&seqIDs{}))

	s, err := c.Summarize()
	require.NoError(t, err)
	assert.Equal(t, Summary{}, s)

	for _, price := range []int64{10, 20, 60} {
		_, err := c.Create(domain.ProductInput{Name: "p", Price: decimal.NewFromInt(price)})
		require.NoError(t, err)
	}
	s, err = c.Summarize()
	require.NoError(t, err)
	assert.Equal(t, Summary{Count: 3, Min: 10, Max: 60, Mean: 30, Median: 20}, s)
}

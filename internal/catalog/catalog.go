package catalog

import (
	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/store"
)

// Event topics published after a mutation has been persisted
const (
	TopicProductCreated = "catalog:created"
	TopicProductUpdated = "catalog:updated"
	TopicProductDeleted = "catalog:deleted"
)

// Catalog manages product records on top of a RecordStore. Every mutation is
// one load -> modify -> save cycle of the whole collection.
type Catalog struct {
	store *store.RecordStore[domain.Product]
	ids   IDGenerator
	bus   EventBus.Bus
}

type Option func(*Catalog)

func WithIDGenerator(g IDGenerator) Option {
	return func(c *Catalog) { c.ids = g }
}

// WithEventBus publishes product events on bus. Handlers run synchronously
// after the store has been written.
func WithEventBus(bus EventBus.Bus) Option {
	return func(c *Catalog) { c.bus = bus }
}

func New(st *store.RecordStore[domain.Product], opts ...Option) *Catalog {
	c := &Catalog{store: st, ids: NewMillisGenerator()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns all products in storage order
func (c *Catalog) List() []domain.Product {
	return c.store.LoadAll()
}

func (c *Catalog) Get(id int64) (domain.Product, error) {
	products := c.store.LoadAll()
	idx := store.FindByID(products, id)
	if idx == -1 {
		return domain.Product{}, errors.Wrapf(domain.ErrNotFound, "product %d", id)
	}
	return products[idx], nil
}

// Create assigns an id to the input, appends it and persists the collection.
// The input is stored as given, validation belongs to the caller.
func (c *Catalog) Create(in domain.ProductInput) (domain.Product, error) {
	var created domain.Product
	err := c.store.Mutate(func(products []domain.Product) ([]domain.Product, error) {
		created = domain.Product{
			ID:          c.ids.NextID(),
			Name:        in.Name,
			Price:       in.Price,
			Description: in.Description,
			Image:       in.Image,
		}
		return append(products, created), nil
	})
	if err != nil {
		return domain.Product{}, errors.WithMessage(err, "create product")
	}
	c.publish(TopicProductCreated, created)
	return created, nil
}

// Update shallow-merges patch into the product with id and returns the result.
// An empty patch writes nothing and publishes no event.
func (c *Catalog) Update(id int64, patch domain.ProductPatch) (domain.Product, error) {
	if patch.IsEmpty() {
		return c.Get(id)
	}
	var updated domain.Product
	err := c.store.Mutate(func(products []domain.Product) ([]domain.Product, error) {
		idx := store.FindByID(products, id)
		if idx == -1 {
			return nil, errors.Wrapf(domain.ErrNotFound, "product %d", id)
		}
		products[idx] = patch.Apply(products[idx])
		updated = products[idx]
		return products, nil
	})
	if err != nil {
		return domain.Product{}, errors.WithMessage(err, "update product")
	}
	c.publish(TopicProductUpdated, updated)
	return updated, nil
}

// Delete removes every product with id. ErrNotFound is returned, and nothing
// is written, when no product matches.
func (c *Catalog) Delete(id int64) error {
	err := c.store.Mutate(func(products []domain.Product) ([]domain.Product, error) {
		kept := products[:0:0]
		for _, p := range products {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		if len(kept) == len(products) {
			return nil, errors.Wrapf(domain.ErrNotFound, "product %d", id)
		}
		return kept, nil
	})
	if err != nil {
		return errors.WithMessage(err, "delete product")
	}
	c.publish(TopicProductDeleted, id)
	return nil
}

// Check reports a corrupt products file
func (c *Catalog) Check() error {
	return c.store.Check()
}

func (c *Catalog) publish(topic string, arg interface{}) {
	if c.bus != nil {
		c.bus.Publish(topic, arg)
	}
}

package catalog

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"comandero/internal/models"
)

const (
	snapshotKey          = "catalog"
	catalogSchemaVersion = 1
)

var ErrProductNotFound = errors.New("product not found")

// Store is the snapshot persistence the catalog needs; it matches the
// floor engine's view of the store.
type Store interface {
	Load(key string, out interface{}) (bool, error)
	Save(key string, v interface{}) error
}

type snapshot struct {
	SchemaVersion int               `json:"schema_version"`
	Categories    []models.Category `json:"categories"`
	Products      []models.Product  `json:"products"`
}

// Catalog is the editable list of sellable products. The order engine only
// ever reads it; prices and availability change here.
type Catalog struct {
	mu         sync.RWMutex
	categories []models.Category
	products   []models.Product
	store      Store
	now        func() time.Time
}

// New builds a catalog from the persisted snapshot, seeding the default
// product list when none exists or it cannot be read.
func New(store Store) *Catalog {
	c := &Catalog{store: store, now: time.Now}

	c.categories, c.products = defaultCatalog()
	if store != nil {
		var saved snapshot
		found, err := store.Load(snapshotKey, &saved)
		switch {
		case err != nil:
			log.Printf("catalog: could not load snapshot, using defaults: %v", err)
		case found && saved.SchemaVersion != catalogSchemaVersion:
			log.Printf("catalog: snapshot has schema version %d, want %d; using defaults", saved.SchemaVersion, catalogSchemaVersion)
		case found:
			c.categories = saved.Categories
			c.products = saved.Products
		}
	}
	return c
}

// Categories returns the product categories in display order.
func (c *Catalog) Categories() []models.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Category(nil), c.categories...)
}

// Search returns available products whose name contains the query,
// case-insensitively. An empty query matches nothing: the order screen only
// shows results once staff start typing.
func (c *Catalog) Search(query string) []models.Product {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var matches []models.Product
	for _, p := range c.products {
		if p.Available && strings.Contains(strings.ToLower(p.Name), query) {
			matches = append(matches, p)
		}
	}
	return matches
}

// ListByCategory returns every product of a category, available or not.
func (c *Catalog) ListByCategory(category string) []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var list []models.Product
	for _, p := range c.products {
		if p.Category == category {
			list = append(list, p)
		}
	}
	return list
}

// Add validates and inserts a new product, assigning it an id.
func (c *Catalog) Add(p models.Product) (models.Product, error) {
	if err := models.ValidateProduct(&p); err != nil {
		return models.Product{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p.ID = c.nextID()
	p.Available = true
	c.products = append(c.products, p)
	c.persist()
	return p, nil
}

// UpdatePrice changes a product's price. Identity and category stay fixed
// after creation.
func (c *Catalog) UpdatePrice(id string, price float64) error {
	if price < 0 {
		return fmt.Errorf("product price must not be negative")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.find(id)
	if p == nil {
		return ErrProductNotFound
	}
	p.Price = price
	c.persist()
	return nil
}

// SetAvailability marks a product as sellable or not. Unavailable products
// drop out of search but keep their place in the category lists.
func (c *Catalog) SetAvailability(id string, available bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.find(id)
	if p == nil {
		return ErrProductNotFound
	}
	p.Available = available
	c.persist()
	return nil
}

func (c *Catalog) find(id string) *models.Product {
	for i := range c.products {
		if c.products[i].ID == id {
			return &c.products[i]
		}
	}
	return nil
}

// nextID mints a product id from the clock, bumping past collisions from
// rapid inserts.
func (c *Catalog) nextID() string {
	ts := c.now().UnixMilli()
	for {
		id := fmt.Sprintf("p%d", ts)
		if c.find(id) == nil {
			return id
		}
		ts++
	}
}

// persist saves the catalog best-effort; callers hold the lock.
func (c *Catalog) persist() {
	if c.store == nil {
		return
	}
	snap := snapshot{
		SchemaVersion: catalogSchemaVersion,
		Categories:    c.categories,
		Products:      c.products,
	}
	if err := c.store.Save(snapshotKey, &snap); err != nil {
		log.Printf("catalog: could not save snapshot: %v", err)
	}
}

func defaultCatalog() ([]models.Category, []models.Product) {
	categories := []models.Category{
		{ID: "bebidas", Name: "Bebidas"},
		{ID: "cocteles", Name: "Cocteles"},
		{ID: "cocteles_autor", Name: "Cocteles de Autor"},
	}
	products := []models.Product{
		{ID: "p1", Name: "Coca-Cola", Category: "bebidas", Price: 50, Available: true},
		{ID: "p2", Name: "Agua sin gas", Category: "bebidas", Price: 40, Available: true},
		{ID: "p3", Name: "Agua con gas", Category: "bebidas", Price: 45, Available: true},
		{ID: "p4", Name: "Cerveza Corona", Category: "bebidas", Price: 60, Available: true},
		{ID: "p5", Name: "Margarita", Category: "cocteles", Price: 120, Available: true},
		{ID: "p6", Name: "Mojito", Category: "cocteles", Price: 110, Available: true},
		{ID: "p7", Name: "Daiquiri", Category: "cocteles", Price: 115, Available: true},
		{ID: "p8", Name: "Mamazzita Sour", Category: "cocteles_autor", Price: 180, Available: true},
		{ID: "p9", Name: "Pasión Tropical", Category: "cocteles_autor", Price: 190, Available: true},
	}
	return categories, products
}

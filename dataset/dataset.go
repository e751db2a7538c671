package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"marketplace-ai-service/models"
)

// ErrNotFound is returned when a product id is absent from the dataset.
var ErrNotFound = errors.New("product not found")

// Dataset is a read-only in-memory product store loaded from CSV. It is safe
// for concurrent reads after Load returns.
type Dataset struct {
	products []models.Product
	byID     map[int]models.Product
}

// Load reads the product CSV at path. The file must have a header row with
// the columns id, title, category, brand, condition, age_months,
// asking_price, location (in any order).
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: read %q: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("dataset: %q has no product rows", path)
	}

	col := map[string]int{}
	for i, name := range rows[0] {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"id", "title", "category", "brand", "condition", "age_months", "asking_price", "location"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("dataset: %q is missing column %q", path, required)
		}
	}

	ds := &Dataset{byID: make(map[int]models.Product, len(rows)-1)}
	for i, row := range rows[1:] {
		p, err := parseRow(row, col)
		if err != nil {
			return nil, fmt.Errorf("dataset: row %d: %w", i+2, err)
		}
		if _, dup := ds.byID[p.ID]; dup {
			return nil, fmt.Errorf("dataset: row %d: duplicate product id %d", i+2, p.ID)
		}
		ds.products = append(ds.products, p)
		ds.byID[p.ID] = p
	}
	return ds, nil
}

func parseRow(row []string, col map[string]int) (models.Product, error) {
	get := func(name string) string { return strings.TrimSpace(row[col[name]]) }

	id, err := strconv.Atoi(get("id"))
	if err != nil {
		return models.Product{}, fmt.Errorf("bad id %q", get("id"))
	}
	age, err := strconv.Atoi(get("age_months"))
	if err != nil || age < 0 {
		return models.Product{}, fmt.Errorf("bad age_months %q", get("age_months"))
	}
	price, err := strconv.ParseFloat(get("asking_price"), 64)
	if err != nil || price <= 0 {
		return models.Product{}, fmt.Errorf("bad asking_price %q", get("asking_price"))
	}

	return models.Product{
		ID:          id,
		Title:       get("title"),
		Category:    get("category"),
		Brand:       get("brand"),
		Condition:   get("condition"),
		AgeMonths:   age,
		AskingPrice: price,
		Location:    get("location"),
	}, nil
}

// Get returns the product with the given id, or ErrNotFound.
func (d *Dataset) Get(id int) (models.Product, error) {
	p, ok := d.byID[id]
	if !ok {
		return models.Product{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return p, nil
}

// ListAll returns all products in dataset order. Callers must not modify
// the returned slice.
func (d *Dataset) ListAll() []models.Product {
	return d.products
}

// First returns the first product record.
func (d *Dataset) First() models.Product {
	return d.products[0]
}

// Len returns the number of products.
func (d *Dataset) Len() int {
	return len(d.products)
}

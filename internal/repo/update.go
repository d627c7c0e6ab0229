package repo

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// updateSet collects column assignments in the order they were set. Column
// names only ever come from the typed setters below, never from input.
type updateSet struct {
	cols []string
	vals map[string]any
}

func (s *updateSet) put(col string, v any) {
	if s.vals == nil {
		s.vals = make(map[string]any)
	}
	if _, ok := s.vals[col]; !ok {
		s.cols = append(s.cols, col)
	}
	s.vals[col] = v
}

func (s *updateSet) putJSON(col string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", col, err)
	}
	s.put(col, string(b))
	return nil
}

func (s *updateSet) empty() bool { return len(s.cols) == 0 }

func (s *updateSet) columns() []string {
	out := make([]string, len(s.cols))
	copy(out, s.cols)
	return out
}

func (s *updateSet) values() map[string]any {
	out := make(map[string]any, len(s.vals))
	for k, v := range s.vals {
		out[k] = v
	}
	return out
}

// ProductUpdate is a partial update of a product. Each setter maps to exactly
// one column.
type ProductUpdate struct {
	set updateSet
	err error
}

func NewProductUpdate() *ProductUpdate { return &ProductUpdate{} }

func (u *ProductUpdate) Name(v string) *ProductUpdate {
	u.set.put("name", v)
	return u
}
func (u *ProductUpdate) Slug(v string) *ProductUpdate {
	u.set.put("slug", v)
	return u
}
func (u *ProductUpdate) Description(v string) *ProductUpdate {
	u.set.put("description", v)
	return u
}
func (u *ProductUpdate) Price(v decimal.Decimal) *ProductUpdate {
	u.set.put("price", v)
	return u
}
func (u *ProductUpdate) Stock(v int) *ProductUpdate {
	u.set.put("stock", v)
	return u
}
func (u *ProductUpdate) IsActive(v bool) *ProductUpdate {
	u.set.put("is_active", v)
	return u
}

// CategoryID sets or clears (nil) the category reference.
func (u *ProductUpdate) CategoryID(v *uuid.UUID) *ProductUpdate {
	if v == nil {
		u.set.put("category_id", nil)
		return u
	}
	u.set.put("category_id", *v)
	return u
}

func (u *ProductUpdate) Images(v []string) *ProductUpdate {
	if v == nil {
		v = []string{}
	}
	if err := u.set.putJSON("images", v); err != nil && u.err == nil {
		u.err = err
	}
	return u
}

func (u *ProductUpdate) Specifications(v map[string]any) *ProductUpdate {
	if v == nil {
		v = map[string]any{}
	}
	if err := u.set.putJSON("specifications", v); err != nil && u.err == nil {
		u.err = err
	}
	return u
}

func (u *ProductUpdate) Empty() bool { return u.set.empty() }
func (u *ProductUpdate) Columns() []string { return u.set.columns() }
func (u *ProductUpdate) Has(col string) bool {
	_, ok := u.set.vals[col]
	return ok
}
func (u *ProductUpdate) Err() error { return u.err }

type CategoryUpdate struct {
	set updateSet
}

func NewCategoryUpdate() *CategoryUpdate { return &CategoryUpdate{} }

func (u *CategoryUpdate) Name(v string) *CategoryUpdate {
	u.set.put("name", v)
	return u
}
func (u *CategoryUpdate) Slug(v string) *CategoryUpdate {
	u.set.put("slug", v)
	return u
}

// Image sets or clears (nil) the category image.
func (u *CategoryUpdate) Image(v *string) *CategoryUpdate {
	if v == nil {
		u.set.put("image", nil)
		return u
	}
	u.set.put("image", *v)
	return u
}

func (u *CategoryUpdate) Empty() bool { return u.set.empty() }
func (u *CategoryUpdate) Columns() []string { return u.set.columns() }

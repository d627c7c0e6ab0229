package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/phone_shop/internal/models"
)

type OrderRepo struct {
	DB *gorm.DB
}

type PlaceOrder struct {
	UserID          uuid.UUID
	ShippingAddress models.ShippingAddress
	PaymentMethod   *string
	Notes           *string
}

type OrderFilter struct {
	UserID uuid.UUID
	Status models.OrderStatus
	Offset int
	Limit  int
}

// PlaceOrder turns the user's cart into a pending order in one transaction:
// stock is re-checked under row locks, the total is computed from current
// prices, items snapshot name and price, stock is decremented and the cart is
// cleared. Any failure rolls back every step.
func (r *OrderRepo) PlaceOrder(ctx context.Context, in PlaceOrder) (*models.Order, error) {
	var order models.Order

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart []models.CartItem
		if err := tx.Where("user_id = ?", in.UserID).Order("product_id ASC").Find(&cart).Error; err != nil {
			return err
		}
		if len(cart) == 0 {
			return ErrEmptyCart
		}

		ids := make([]uuid.UUID, 0, len(cart))
		for _, it := range cart {
			ids = append(ids, it.ProductID)
		}

		var products []models.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", ids).
			Order("id ASC").
			Find(&products).Error; err != nil {
			return err
		}
		byID := make(map[uuid.UUID]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		total := decimal.Zero
		lines := make([]models.OrderItem, 0, len(cart))
		for _, it := range cart {
			p, ok := byID[it.ProductID]
			if !ok {
				return &InsufficientStockError{ProductName: it.ProductID.String()}
			}
			if !p.IsActive || p.Stock < it.Quantity {
				return &InsufficientStockError{ProductName: p.Name}
			}

			productID := p.ID
			line := models.OrderItem{
				ProductID:   &productID,
				ProductName: p.Name,
				Quantity:    it.Quantity,
				Price:       p.Price,
			}
			total = total.Add(line.LineTotal())
			lines = append(lines, line)
		}

		order = models.Order{
			UserID:          in.UserID,
			Status:          models.OrderStatusPending,
			Total:           total,
			ShippingAddress: in.ShippingAddress,
			PaymentMethod:   in.PaymentMethod,
			Notes:           in.Notes,
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return err
		}

		for i := range lines {
			lines[i].OrderID = order.ID
		}
		if err := tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
			return err
		}

		for _, line := range lines {
			ok, err := decrementStock(tx, *line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &InsufficientStockError{ProductName: line.ProductName}
			}
		}

		if err := tx.Where("user_id = ?", in.UserID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		order.Items = lines
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// decrementStock only succeeds while enough stock is left, so it stays
// correct even where the store ignores row locks.
func decrementStock(tx *gorm.DB, productID uuid.UUID, qty int) (bool, error) {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *OrderRepo) List(ctx context.Context, f OrderFilter) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if f.UserID != uuid.Nil {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	orders := make([]models.Order, 0, f.Limit)
	list := q.Order("created_at DESC").Order("id ASC").Offset(f.Offset).Limit(f.Limit)
	if f.UserID == uuid.Nil {
		list = list.Preload("User")
	}
	if err := list.Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

// Get loads an order with its items. A non-nil userID restricts the lookup to
// that owner.
func (r *OrderRepo) Get(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Order, error) {
	q := r.DB.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("product_name ASC")
	}).Where("id = ?", id)
	if userID != uuid.Nil {
		q = q.Where("user_id = ?", userID)
	} else {
		q = q.Preload("User")
	}

	var order models.Order
	if err := q.First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus sets any status on any order.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var order models.Order
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepo) Recent(ctx context.Context, limit int) ([]models.Order, error) {
	orders := make([]models.Order, 0, limit)
	err := r.DB.WithContext(ctx).
		Preload("User").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *OrderRepo) CountByStatus(ctx context.Context, status models.OrderStatus) (int64, error) {
	var n int64
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&n).Error
	return n, err
}

func (r *OrderRepo) Revenue(ctx context.Context, status models.OrderStatus) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("SUM(total)").
		Where("status = ?", status).
		Row().Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

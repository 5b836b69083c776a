package progression

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/deukgeun/deukgeun/internal/domain"
)

// CreateOrder spends cost points on item. Fulfillment happens elsewhere;
// the order starts in the preparing status.
func (e *Engine) CreateOrder(s domain.ProgressionState, item domain.ShopItem, cost int64) (domain.ProgressionState, domain.Order, error) {
	if strings.TrimSpace(item.ID) == "" {
		return s, domain.Order{}, domain.Invalid("item", "id is required")
	}
	if cost <= 0 {
		return s, domain.Order{}, domain.Invalid("cost", "must be positive, got %d", cost)
	}
	if s.Points < cost {
		return s, domain.Order{}, fmt.Errorf("%w: have %d, need %d", domain.ErrInsufficientPoints, s.Points, cost)
	}

	order := domain.Order{
		ID:        "order-" + uuid.NewString(),
		ItemID:    item.ID,
		ItemName:  item.Name,
		ItemImage: item.Image,
		Points:    cost,
		Status:    domain.OrderPreparing,
		OrderedAt: e.clock.Now(),
	}

	s = s.Clone()
	s.Points -= cost
	s.Orders = append(s.Orders, order)
	return s, order, nil
}

// UpdateOrderStatus moves an order along. Delivered stamps the delivery
// time.
func (e *Engine) UpdateOrderStatus(s domain.ProgressionState, orderID string, status domain.OrderStatus) (domain.ProgressionState, error) {
	if !status.Valid() {
		return s, domain.Invalid("status", "unknown order status %q", status)
	}

	idx := -1
	for i, o := range s.Orders {
		if o.ID == orderID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderID)
	}

	s = s.Clone()
	o := &s.Orders[idx]
	o.Status = status
	if status == domain.OrderDelivered {
		now := e.clock.Now()
		o.DeliveredAt = &now
	}
	return s, nil
}

// UpdateShippingAddress replaces the shipping address.
func UpdateShippingAddress(s domain.ProgressionState, addr domain.ShippingAddress) (domain.ProgressionState, error) {
	if strings.TrimSpace(addr.Name) == "" || strings.TrimSpace(addr.Address) == "" {
		return s, domain.Invalid("shipping_address", "name and address are required")
	}
	s = s.Clone()
	s.ShippingAddress = &addr
	return s, nil
}

package orders

import (
	"sort"
	"time"

	"github.com/angelmondragon/marketflow-backend/pkg/db/models"
	"github.com/angelmondragon/marketflow-backend/pkg/enums"
)

const (
	confirmedAfter      = 2 * time.Hour
	shippedAfter        = 24 * time.Hour
	inTransitBefore     = 24 * time.Hour
	outForDeliveryAhead = 4 * time.Hour

	locationOnline      = "Online"
	locationFulfillment = "Fulfillment Center"
	locationShipOrigin  = "Seattle, WA"
	locationTransitHub  = "Portland, OR"
)

var (
	shippedOrLater        = []enums.OrderStatus{enums.OrderStatusShipped, enums.OrderStatusInTransit, enums.OrderStatusOutForDelivery, enums.OrderStatusDelivered}
	inTransitOrLater      = []enums.OrderStatus{enums.OrderStatusInTransit, enums.OrderStatusOutForDelivery, enums.OrderStatusDelivered}
	outForDeliveryOrLater = []enums.OrderStatus{enums.OrderStatusOutForDelivery, enums.OrderStatusDelivered}
)

// BuildTracking derives the milestone list from the order's status and dates.
// Milestones anchored on the delivery date are skipped while it is unknown.
func BuildTracking(order models.Order) TrackingInfo {
	events := []TrackingEvent{{
		Date:        order.OrderDate,
		Status:      "Order Placed",
		Location:    locationOnline,
		Description: "Your order has been received and is being processed.",
	}}

	if order.Status != enums.OrderStatusProcessing {
		events = append(events, TrackingEvent{
			Date:        order.OrderDate.Add(confirmedAfter),
			Status:      "Order Confirmed",
			Location:    locationFulfillment,
			Description: "Your order has been confirmed and is being prepared for shipment.",
		})
	}

	if order.Status.In(shippedOrLater...) {
		events = append(events, TrackingEvent{
			Date:        order.OrderDate.Add(shippedAfter),
			Status:      "Shipped",
			Location:    locationShipOrigin,
			Description: "Your package has been shipped and is on its way.",
		})
	}

	if delivery := order.DeliveryDate; delivery != nil {
		destination := order.ShippingAddress.CityState()
		if order.Status.In(inTransitOrLater...) {
			events = append(events, TrackingEvent{
				Date:        delivery.Add(-inTransitBefore),
				Status:      "In Transit",
				Location:    locationTransitHub,
				Description: "Your package is in transit to the destination.",
			})
		}
		if order.Status.In(outForDeliveryOrLater...) {
			events = append(events, TrackingEvent{
				Date:        delivery.Add(-outForDeliveryAhead),
				Status:      "Out for Delivery",
				Location:    destination,
				Description: "Your package is out for delivery and will arrive today.",
			})
		}
		if order.Status == enums.OrderStatusDelivered {
			events = append(events, TrackingEvent{
				Date:        *delivery,
				Status:      "Delivered",
				Location:    destination,
				Description: "Your package has been delivered.",
			})
		}
	}

	// Newest first; ties keep the later milestone on top. A short delivery
	// window can put In Transit before Shipped.
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.After(events[j].Date)
	})

	return TrackingInfo{
		OrderID:           order.ID,
		TrackingNumber:    order.TrackingNumber,
		CurrentStatus:     order.Status,
		EstimatedDelivery: order.DeliveryDate,
		Events:            events,
	}
}

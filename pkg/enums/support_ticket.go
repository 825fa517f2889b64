package enums

import "slices"

// TicketCategory routes a support ticket.
type TicketCategory string

const (
	TicketCategoryGeneral   TicketCategory = "general"
	TicketCategoryOrder     TicketCategory = "order"
	TicketCategoryShipping  TicketCategory = "shipping"
	TicketCategoryRefund    TicketCategory = "refund"
	TicketCategoryTechnical TicketCategory = "technical"
)

var validTicketCategories = []TicketCategory{
	TicketCategoryGeneral,
	TicketCategoryOrder,
	TicketCategoryShipping,
	TicketCategoryRefund,
	TicketCategoryTechnical,
}

// IsValid reports whether the value is a known TicketCategory.
func (c TicketCategory) IsValid() bool {
	return slices.Contains(validTicketCategories, c)
}

type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

var validTicketPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityUrgent,
}

// IsValid reports whether the value is a known TicketPriority.
func (p TicketPriority) IsValid() bool {
	return slices.Contains(validTicketPriorities, p)
}

// TicketStatus is the lifecycle state of a support ticket.
type TicketStatus string

const (
	TicketStatusOpen    TicketStatus = "open"
	TicketStatusPending TicketStatus = "pending"
	TicketStatusClosed  TicketStatus = "closed"
)

var validTicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusPending,
	TicketStatusClosed,
}

// IsValid reports whether the value is a known TicketStatus.
func (s TicketStatus) IsValid() bool {
	return slices.Contains(validTicketStatuses, s)
}

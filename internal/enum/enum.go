package enum

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	OrderStatusPending    = "PENDING"
	OrderStatusAccepted   = "ACCEPTED"
	OrderStatusInProgress = "IN_PROGRESS"
	OrderStatusDelivered  = "DELIVERED"
	OrderStatusCompleted  = "COMPLETED"
	OrderStatusCancelled  = "CANCELLED"
)

// ── Group B: Order categories (CHECK constrained in DB) ──
// The category fixes both the delivery-fee schedule and which price
// catalog item names resolve against.

const (
	CategoryDeliverItems    = "DELIVER_ITEMS"
	CategoryFoodDelivery    = "FOOD_DELIVERY"
	CategorySchoolMaterials = "SCHOOL_MATERIALS"
	CategoryPrinting        = "PRINTING"
)

// ── Group C: Printing dimensions ──

const (
	PrintSizeA3 = "A3"
	PrintSizeA4 = "A4"
)

const (
	PrintColorColored = "COLORED"
	PrintColorPlain   = "NOT_COLORED"
)

// ── Group D: Users and scheduling ──

const (
	UserRoleCustomer = "CUSTOMER"
	UserRoleRunner   = "RUNNER"
	UserRoleAdmin    = "ADMIN"
)

const (
	PeriodAM = "AM"
	PeriodPM = "PM"
)

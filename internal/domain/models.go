package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Enumerations
const (
	RoleAdmin    UserRole = "admin"
	RoleSeller   UserRole = "seller"
	RoleSupplier UserRole = "supplier"
	RoleBuyer    UserRole = "buyer"

	LogInfo    ActivityLogType = "info"
	LogWarning ActivityLogType = "warning"
	LogError   ActivityLogType = "error"

	OrderPendingPayment OrderStatus = "pending_payment"
	OrderReadyToFly     OrderStatus = "ready_to_fly"
	OrderDelivered      OrderStatus = "delivered"
	OrderCancelled      OrderStatus = "cancelled"
)

type UserRole string
type ActivityLogType string
type OrderStatus string

type User struct {
	ID         string
	Role       UserRole
	Status     string
	FirstName  string
	LastName   string
	Username   string
	Email      string
	Avatar     string
	GardenName string
}

// DisplayName prefers "first last", then username, then email.
func (u User) DisplayName() string {
	name := joinName(u.FirstName, u.LastName)
	if name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

type Buyer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Avatar    string `json:"avatar"`
}

// BuyerFromUser projects a user record into the buyer picker shape.
func BuyerFromUser(u User) Buyer {
	return Buyer{
		ID:        u.ID,
		Name:      u.DisplayName(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Avatar:    u.Avatar,
	}
}

// Garden is derived from supplier user records; it has no backend identity.
type Garden struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	SellerName   string   `json:"sellerName"`
	SellerAvatar string   `json:"sellerAvatar"`
	SellerIDs    []string `json:"sellerIds"`
}

type ReferenceItem struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Extra map[string]any `json:"extra,omitempty"`
}

type CartItem struct {
	ListingID   string  `json:"listingId"`
	ListingType string  `json:"listingType,omitempty"`
	Genus       string  `json:"genus,omitempty"`
	Species     string  `json:"species,omitempty"`
	Country     string  `json:"country,omitempty"`
	Garden      string  `json:"garden,omitempty"`
	SellerID    string  `json:"sellerId,omitempty"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasMore    bool `json:"hasMore"`
}

type Order struct {
	ID                string      `json:"id"`
	TransactionNumber string      `json:"transactionNumber"`
	BuyerID           string      `json:"buyerId"`
	BuyerName         string      `json:"buyerName"`
	Status            OrderStatus `json:"status"`
	FinalTotal        float64     `json:"finalTotal"`
	CreatedAt         *time.Time  `json:"createdAt,omitempty"`
	FlightDate        string      `json:"flightDate,omitempty"`
	CargoDate         string      `json:"cargoDate,omitempty"`
	PlantName         string      `json:"plantName"`
	GardenName        string      `json:"gardenName"`
	SellerID          string      `json:"sellerId,omitempty"`
	SellerName        string      `json:"sellerName"`
	Quantity          int         `json:"quantity"`
	TrackingNumber    string      `json:"trackingNumber,omitempty"`
}

// Transaction groups the orders of one checkout for invoicing.
type Transaction struct {
	TransactionNumber string          `json:"transactionNumber"`
	Orders            []Order         `json:"orders"`
	Total             decimal.Decimal `json:"total"`
	OrderDate         *time.Time      `json:"orderDate,omitempty"`
	FlightDate        string          `json:"flightDate,omitempty"`
}

type ValidationResult struct {
	Valid          bool      `json:"valid"`
	DiscountAmount float64   `json:"discountAmount"`
	Message        string    `json:"message"`
	Discount       *Discount `json:"discount,omitempty"`
}

type ActivityLog struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Message  string          `json:"message"`
	Actor    string          `json:"actor"`
	Type     ActivityLogType `json:"type"`
	LoggedAt time.Time       `json:"loggedAt"`
}

func joinName(first, last string) string {
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	default:
		return last
	}
}

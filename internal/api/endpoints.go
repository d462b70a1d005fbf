// internal/api/endpoints.go
package api

import "net/http"

// Capability tells the client which session token a call carries
type Capability int

const (
	// Public calls carry no token
	Public Capability = iota
	// StaffOnly calls require the staff token
	StaffOnly
	// CustomerOnly calls require the customer token
	CustomerOnly
	// Shared calls accept either token, customer preferred
	Shared
)

func (c Capability) String() string {
	switch c {
	case Public:
		return "public"
	case StaffOnly:
		return "staff"
	case CustomerOnly:
		return "customer"
	case Shared:
		return "shared"
	default:
		return "unknown"
	}
}

// Endpoint is a single remote API route definition
type Endpoint struct {
	Name       string
	Method     string
	Path       string
	Capability Capability
}

// Auth
var (
	StaffLogin     = Endpoint{"auth.staff.login", http.MethodPost, "/auth/staff/login", Public}
	StaffLogout    = Endpoint{"auth.staff.logout", http.MethodPost, "/auth/staff/logout", StaffOnly}
	StaffUser      = Endpoint{"auth.staff.user", http.MethodGet, "/auth/staff/user", StaffOnly}
	CustomerLogin  = Endpoint{"auth.customer.login", http.MethodPost, "/auth/customer/login", Public}
	CustomerLogout = Endpoint{"auth.customer.logout", http.MethodPost, "/auth/customer/logout", CustomerOnly}
	CustomerUser   = Endpoint{"auth.customer.user", http.MethodGet, "/auth/customer/user", CustomerOnly}
)

// Catalog
var (
	ProductList   = Endpoint{"product.list", http.MethodGet, "/product", Shared}
	ProductGet    = Endpoint{"product.get", http.MethodGet, "/product/{id}", Shared}
	ProductCreate = Endpoint{"product.create", http.MethodPost, "/product", StaffOnly}
	ProductUpdate = Endpoint{"product.update", http.MethodPut, "/product/{id}", StaffOnly}
	ProductDelete = Endpoint{"product.delete", http.MethodDelete, "/product/{id}", StaffOnly}
	// ProductStock is the post-order stock decrement; customers issue it too.
	ProductStock = Endpoint{"product.stock", http.MethodPut, "/product/{id}", Shared}

	CategoryList   = Endpoint{"category.list", http.MethodGet, "/category", Shared}
	CategoryCreate = Endpoint{"category.create", http.MethodPost, "/category", StaffOnly}
	CategoryUpdate = Endpoint{"category.update", http.MethodPut, "/category/{id}", StaffOnly}
	CategoryDelete = Endpoint{"category.delete", http.MethodDelete, "/category/{id}", StaffOnly}
)

// Cart
var (
	CartGet    = Endpoint{"cart.get", http.MethodGet, "/cart/{userId}", Shared}
	CartAdd    = Endpoint{"cart.add", http.MethodPost, "/cart", Shared}
	CartUpdate = Endpoint{"cart.update", http.MethodPut, "/cart/{id}", Shared}
	CartDelete = Endpoint{"cart.delete", http.MethodDelete, "/cart/{id}", Shared}
	CartClear  = Endpoint{"cart.clear", http.MethodDelete, "/cart", Shared}
)

// Orders
var (
	OrderList   = Endpoint{"order.list", http.MethodGet, "/orders", Shared}
	OrderAll    = Endpoint{"order.all", http.MethodGet, "/orders/all", StaffOnly}
	OrderGet    = Endpoint{"order.get", http.MethodGet, "/orders/{id}", Shared}
	OrderCreate = Endpoint{"order.create", http.MethodPost, "/orders", Shared}
	OrderUpdate = Endpoint{"order.update", http.MethodPut, "/orders/{id}", StaffOnly}
	OrderStatus = Endpoint{"order.status", http.MethodPatch, "/orders/{id}/status", Shared}
	OrderCancel = Endpoint{"order.cancel", http.MethodPatch, "/orders/{id}/cancel", Shared}
)

// Payments
var (
	PaymentList    = Endpoint{"payment.list", http.MethodGet, "/payments", StaffOnly}
	PaymentCreate  = Endpoint{"payment.create", http.MethodPost, "/payments", Shared}
	GatewayCreate  = Endpoint{"payment.gateway.create", http.MethodPost, "/payments/midtrans/create", Shared}
	GatewayStatus  = Endpoint{"payment.gateway.status", http.MethodGet, "/payments/midtrans/status/{orderId}", Shared}
	GatewayCashPay = Endpoint{"payment.gateway.cash", http.MethodPost, "/payments/midtrans/cash", StaffOnly}
)

// Reviews
var (
	ReviewList        = Endpoint{"review.list", http.MethodGet, "/reviews", Shared}
	ReviewUserList    = Endpoint{"review.user", http.MethodGet, "/reviews/user", CustomerOnly}
	ReviewCreate      = Endpoint{"review.create", http.MethodPost, "/reviews", Shared}
	ReviewReplyCreate = Endpoint{"review.reply.create", http.MethodPost, "/reviews/{id}/reply", StaffOnly}
	ReviewReplyUpdate = Endpoint{"review.reply.update", http.MethodPut, "/reviews/{id}/reply", StaffOnly}
	ReviewDelete      = Endpoint{"review.delete", http.MethodDelete, "/reviews/{id}", StaffOnly}
)

// Chat
var (
	ChatUsers    = Endpoint{"chat.users", http.MethodGet, "/chat/users", Shared}
	ChatMessages = Endpoint{"chat.messages", http.MethodGet, "/chat/messages/{userId}", Shared}
	ChatSend     = Endpoint{"chat.send", http.MethodPost, "/chat/send", Shared}
)

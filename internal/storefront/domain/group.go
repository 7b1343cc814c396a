package domain

import "time"

// Capabilities checked by the storefront endpoints.
const (
	CapViewProduct  = "view_product"
	CapViewCategory = "view_category"
	CapAddWishlist  = "add_wishlist"
	CapViewWishlist = "view_wishlist"
)

// DefaultGroupName is the group every new account joins.
const DefaultGroupName = "buyer"

// DefaultCapabilities is the fixed capability set of the default group.
var DefaultCapabilities = []string{
	"add_address", "change_address", "delete_address", "view_address",
	"view_category", "view_stock", "view_product", "view_image",
	"add_orders", "change_orders", "delete_orders", "view_orders",
	"add_cart", "change_cart", "delete_cart", "view_cart",
	"add_wishlist", "change_wishlist", "delete_wishlist", "view_wishlist",
}

type Group struct {
	ID           string
	Name         string
	Capabilities []string
	CreatedAt    time.Time
}

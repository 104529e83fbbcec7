package client

import "github.com/pandamall/atlogistics/internal/domain"

// Wire types re-exported so consumers of the SDK never have to name an
// internal package. These are aliases, not copies: values flow between
// the SDK and the server packages without conversion.
type (
	User                  = domain.User
	Role                  = domain.Role
	UserStatus            = domain.UserStatus
	UserUpdate            = domain.UserUpdate
	Product               = domain.Product
	Category              = domain.Category
	CartItem              = domain.CartItem
	CartSnapshot          = domain.CartSnapshot
	AddToCartRequest      = domain.AddToCartRequest
	UpdateCartItemRequest = domain.UpdateCartItemRequest
	Platform              = domain.Platform
	MarketProduct         = domain.MarketProduct
	SearchResult          = domain.SearchResult
)

// Roles and account states.
const (
	RoleCustomer = domain.RoleCustomer
	RoleStaff    = domain.RoleStaff
	RoleAdmin    = domain.RoleAdmin

	StatusActive    = domain.StatusActive
	StatusSuspended = domain.StatusSuspended
	StatusDeleted   = domain.StatusDeleted
)

// Marketplace platforms.
const (
	PlatformAliExpress = domain.PlatformAliExpress
	PlatformTaobao     = domain.PlatformTaobao
	Platform1688       = domain.Platform1688
)

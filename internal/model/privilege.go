package model

// Privilege codes checked by the HTTP middleware
const (
	PrivCartManage     = "cart:manage"
	PrivOrderPlace     = "order:place"
	PrivOrderView      = "order:view"
	PrivOrderCancel    = "order:cancel"
	PrivOrderProcess   = "order:process"
	PrivProductCreate  = "product:create"
	PrivProductToggle  = "product:toggle"
	PrivProductRestock = "product:restock"
	PrivProductApprove = "product:approve"
	PrivProductView    = "product:view"
	PrivSellerManage   = "seller:manage"
	PrivDashboardView  = "dashboard:view"
	PrivProfileUpdate  = "profile:update"
	PrivMovementView   = "movement:view"
)

var rolePrivileges = map[Role][]string{
	RoleCustomer: {
		PrivCartManage,
		PrivOrderPlace,
		PrivOrderView,
		PrivOrderCancel,
		PrivProfileUpdate,
	},
	RoleSeller: {
		PrivOrderView,
		PrivOrderProcess,
		PrivProductCreate,
		PrivProductToggle,
		PrivProductRestock,
		PrivProductView,
		PrivDashboardView,
		PrivMovementView,
	},
	RoleAdmin: {
		PrivOrderView,
		PrivOrderCancel,
		PrivOrderProcess,
		PrivProductToggle,
		PrivProductApprove,
		PrivProductView,
		PrivSellerManage,
		PrivMovementView,
	},
}

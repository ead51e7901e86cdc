package model

// AccountType tags the account variants. Deployments may extend the set
// through configuration; the values below ship with every deployment.
type AccountType string

const (
	AccountSupplier AccountType = "supplier"
	AccountArtisan  AccountType = "artisan"
	AccountBuyer    AccountType = "buyer"
	AccountAdmin    AccountType = "admin"
)

// AssetType tags the asset variants.
type AssetType string

const (
	AssetRawMaterial   AssetType = "raw_material"
	AssetWorkOrder     AssetType = "work_order"
	AssetProduct       AssetType = "product"
	AssetProductBatch  AssetType = "product_batch"
	AssetPackaging     AssetType = "packaging"
	AssetLogistics     AssetType = "logistics"
	AssetSubAssignment AssetType = "sub_assignment"
	AssetCertification AssetType = "certification"
)

// AuthenticationStatus tracks platform verification of an entity.
type AuthenticationStatus string

const (
	AuthPending  AuthenticationStatus = "pending"
	AuthApproved AuthenticationStatus = "approved"
	AuthRejected AuthenticationStatus = "rejected"
)

// AdminPermissionLevel scopes what an admin account may do.
type AdminPermissionLevel string

const (
	AdminModerator     AdminPermissionLevel = "moderator"
	AdminAuthenticator AdminPermissionLevel = "authenticator"
	AdminSuperAdmin    AdminPermissionLevel = "super_admin"
	AdminCertifier     AdminPermissionLevel = "certifier"
)

// AdminAccountStatus is the lifecycle state of an admin account.
type AdminAccountStatus string

const (
	AdminActive      AdminAccountStatus = "active"
	AdminSuspended   AdminAccountStatus = "suspended"
	AdminDeactivated AdminAccountStatus = "deactivated"
)

// ArtisanSkillLevel grades an artisan account.
type ArtisanSkillLevel string

const (
	SkillBeginner     ArtisanSkillLevel = "beginner"
	SkillIntermediate ArtisanSkillLevel = "intermediate"
	SkillExpert       ArtisanSkillLevel = "expert"
)

// BuyerType refines a buyer account.
type BuyerType string

const (
	BuyerEndCustomer BuyerType = "end_customer"
	BuyerWholesaler  BuyerType = "wholesaler"
	BuyerRetailer    BuyerType = "retailer"
	BuyerDistributor BuyerType = "distributor"
)

// WorkOrderStatus is the work-order state machine.
// pending -> accepted | rejected; accepted -> completed.
type WorkOrderStatus string

const (
	WorkOrderPending   WorkOrderStatus = "pending"
	WorkOrderAccepted  WorkOrderStatus = "accepted"
	WorkOrderRejected  WorkOrderStatus = "rejected"
	WorkOrderCompleted WorkOrderStatus = "completed"
)

// SubAssignmentStatus is the sub-assignment state machine.
type SubAssignmentStatus string

const (
	SubAssignmentPending   SubAssignmentStatus = "pending"
	SubAssignmentAccepted  SubAssignmentStatus = "accepted"
	SubAssignmentRejected  SubAssignmentStatus = "rejected"
	SubAssignmentCompleted SubAssignmentStatus = "completed"
)

// BatchStatus is the product-batch state machine.
type BatchStatus string

const (
	BatchInProgress BatchStatus = "in_progress"
	BatchCompleted  BatchStatus = "completed"
)

// WorkOrderType classifies the requested work.
type WorkOrderType string

const (
	WorkProduction WorkOrderType = "production"
	WorkRepair     WorkOrderType = "repair"
)

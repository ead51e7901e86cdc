// Package engine turns one incoming transaction into an ordered chain
// of listeners that validate and mutate ledger entities through a state
// provider. Dispatch is deterministic: the same registration set and the
// same transaction always produce the same listener order and the same
// net writes on every node.
package engine

// EventType names the business action a transaction requests. The
// string values are part of the payload wire contract.
type EventType string

const (
	AccountCreated          EventType = "create/account"
	AssetCreated            EventType = "create/asset"
	AssetsTransferred       EventType = "transfer/asset"
	WorkOrderAccepted       EventType = "accept/work_order"
	WorkOrderRejected       EventType = "reject/work_order"
	WorkOrderCompleted      EventType = "complete/work_order"
	RawMaterialAdded        EventType = "add/raw_material"
	SubAssignmentAccepted   EventType = "accept/sub_assignment"
	SubAssignmentRejected   EventType = "reject/sub_assignment"
	SubAssignmentCompleted  EventType = "complete/sub_assignment"
	SubAssignmentMarkedPaid EventType = "paid/sub_assignment"
	BatchCompleted          EventType = "complete/batch"
	EntityEdited            EventType = "edit/entity"
	EntityDeleted           EventType = "delete/entity"
	ProductUnpacked         EventType = "unpackage/product"

	Bootstrap           EventType = "bootstrap"
	AdminCreated        EventType = "create/admin"
	CertificationIssued EventType = "issue/certification"
	ModeratorEdited     EventType = "moderate/edit"
	EntityAuthenticated EventType = "authenticate/entity"
)

// Derived event types. The dispatcher appends these to the chain when a
// top-level event implies a finer-grained one, so listeners can bind to
// the specific shape (e.g. work-order creation) instead of filtering
// inside a generic handler.
const (
	WorkOrderCreated     EventType = "create/asset/work_order"
	PackagingCreated     EventType = "create/asset/packaging"
	SubAssignmentCreated EventType = "create/asset/sub_assignment"
	LogisticsCreated     EventType = "create/asset/logistics"
	BatchCreated         EventType = "accept/work_order/batch_created"
)

package listeners

import (
	"context"

	"github.com/craftlore/craftlore-go/internal/config"
	"github.com/craftlore/craftlore-go/internal/engine"
	"github.com/craftlore/craftlore-go/internal/model"
)

// CreatorAccountValidator closes the asset creation chain: the signer
// must hold an account whose type the deployment policy allows to
// create the asset kind.
type CreatorAccountValidator struct {
	base
	cfg config.Config
}

func NewCreatorAccountValidator(cfg config.Config) *CreatorAccountValidator {
	return &CreatorAccountValidator{
		base: base{
			name: "CreatorAccountValidator",
			priorities: map[engine.EventType]int{
				engine.AssetCreated: -100,
			},
		},
		cfg: cfg,
	}
}

func (l *CreatorAccountValidator) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	asset, ok := ev.Shared.Entity.(model.Asset)
	if !ok || asset == nil {
		return engine.Validationf("no asset in event context for CreatorAccountValidator")
	}

	creator := ev.Shared.Owner
	if creator == nil {
		resolved, _, err := ev.GetAccount(ctx, ev.SignerPublicKey)
		if err != nil {
			return err
		}
		creator = resolved
	}
	if creator.AccountBase().IsDeleted {
		return engine.Permissionf("deleted accounts cannot create assets")
	}
	if !l.cfg.CreatorPermitted(creator.Kind(), asset.Kind()) {
		return engine.Permissionf("account type %s cannot create %s assets", creator.Kind(), asset.Kind())
	}
	return nil
}

// AssigneeAccountValidator closes the work-order creation chain: the
// assignee must exist, must not be the assigner and must be of an
// account type the policy allows to take work.
type AssigneeAccountValidator struct {
	base
	cfg config.Config
}

func NewAssigneeAccountValidator(cfg config.Config) *AssigneeAccountValidator {
	return &AssigneeAccountValidator{
		base: base{
			name: "AssigneeAccountValidator",
			priorities: map[engine.EventType]int{
				engine.WorkOrderCreated: -100,
			},
		},
		cfg: cfg,
	}
}

func (l *AssigneeAccountValidator) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	workOrder, ok := ev.Shared.Entity.(*model.WorkOrder)
	if !ok || workOrder == nil {
		return engine.Validationf("no work order in event context for AssigneeAccountValidator")
	}
	if workOrder.Assignee == workOrder.Assigner {
		return engine.Validationf("work orders cannot be self-assigned")
	}

	assignee := ev.Shared.Assignee
	if assignee == nil {
		return engine.Validationf("no assignee in event context for AssigneeAccountValidator")
	}
	if assignee.AccountBase().IsDeleted {
		return engine.Validationf("assignee account is deleted")
	}
	if !l.cfg.AssigneePermitted(assignee.Kind()) {
		return engine.Validationf("account type %s cannot be assigned work orders", assignee.Kind())
	}
	return nil
}

// AcceptContextValidator closes every work-order and sub-assignment
// progression chain: the updater must have resolved both the target and
// the assignee, the target must be live and actually assigned to the
// resolved assignee, and the assignee account must still be live.
type AcceptContextValidator struct {
	base
}

func NewAcceptContextValidator() *AcceptContextValidator {
	return &AcceptContextValidator{base{
		name: "AcceptContextValidator",
		priorities: map[engine.EventType]int{
			engine.WorkOrderAccepted:       -100,
			engine.WorkOrderRejected:       -100,
			engine.WorkOrderCompleted:      -100,
			engine.SubAssignmentAccepted:   -100,
			engine.SubAssignmentRejected:   -100,
			engine.SubAssignmentCompleted:  -100,
			engine.SubAssignmentMarkedPaid: -100,
		},
	}}
}

func (l *AcceptContextValidator) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	entity := ev.Shared.Entity
	if entity == nil {
		return engine.Validationf("no target entity in event context for AcceptContextValidator")
	}
	if entity.Base().IsDeleted {
		return engine.Validationf("entity %q is deleted", entity.Identifier())
	}
	assignee := ev.Shared.Assignee
	if assignee == nil {
		return engine.Validationf("no assignee in event context for AcceptContextValidator")
	}
	if assignee.AccountBase().IsDeleted {
		return engine.Validationf("assignee account is deleted")
	}

	var assigned string
	switch v := entity.(type) {
	case *model.WorkOrder:
		assigned = v.Assignee
	case *model.SubAssignment:
		assigned = v.Assignee
	default:
		return engine.Validationf("entity %q is not an assignable asset", entity.Identifier())
	}
	if assigned != assignee.Identifier() {
		return engine.Validationf("account %q is not the assignee of %q", assignee.Identifier(), entity.Identifier())
	}
	return nil
}

// SubAssignmentValidator closes the sub-assignment creation chain: the
// batch must be live, in progress and owned by the assigner, and the
// assignment must not point back at the assigner.
type SubAssignmentValidator struct {
	base
}

func NewSubAssignmentValidator() *SubAssignmentValidator {
	return &SubAssignmentValidator{base{
		name: "SubAssignmentValidator",
		priorities: map[engine.EventType]int{
			engine.SubAssignmentCreated: -100,
		},
	}}
}

func (l *SubAssignmentValidator) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	assignment, ok := ev.Shared.Entity.(*model.SubAssignment)
	if !ok || assignment == nil {
		return engine.Validationf("no sub-assignment in event context for SubAssignmentValidator")
	}
	if assignment.Assignee == assignment.Assigner {
		return engine.Validationf("sub-assignments cannot be self-assigned")
	}

	batch := ev.Shared.Batch
	if batch == nil {
		return engine.Validationf("no batch in event context for SubAssignmentValidator")
	}
	if batch.IsDeleted {
		return engine.Validationf("batch %q is deleted", batch.UID)
	}
	if batch.AssetOwner != ev.SignerPublicKey {
		return engine.Permissionf("only the batch owner may sub-assign batch %q", batch.UID)
	}
	if batch.Status != model.BatchInProgress {
		return engine.Validationf("batch %q is %s, only in-progress batches can be sub-assigned", batch.UID, batch.Status)
	}

	assignee := ev.Shared.Assignee
	if assignee != nil && assignee.AccountBase().IsDeleted {
		return engine.Validationf("assignee account is deleted")
	}
	return nil
}

// BatchCompletionValidator closes the direct batch completion chain.
// Batches minted by a work order complete through the work order, never
// directly.
type BatchCompletionValidator struct {
	base
}

func NewBatchCompletionValidator() *BatchCompletionValidator {
	return &BatchCompletionValidator{base{
		name: "BatchCompletionValidator",
		priorities: map[engine.EventType]int{
			engine.BatchCompleted: -100,
		},
	}}
}

func (l *BatchCompletionValidator) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	batch := ev.Shared.Batch
	if batch == nil {
		return engine.Validationf("no batch in event context for BatchCompletionValidator")
	}
	if batch.IsDeleted {
		return engine.Validationf("batch %q is deleted", batch.UID)
	}
	if batch.AssetOwner != ev.SignerPublicKey {
		return engine.Permissionf("only the batch owner may complete batch %q", batch.UID)
	}
	if batch.WorkOrder != "" {
		return engine.Validationf("batch %q belongs to work order %q and completes through it", batch.UID, batch.WorkOrder)
	}
	return nil
}

// RawMaterialAdditionValidator closes the raw-material addition chain:
// the signer must own the receiving batch, the batch must still be in
// progress and the consumed quantity must be covered by what the
// material has left.
type RawMaterialAdditionValidator struct {
	base
}

func NewRawMaterialAdditionValidator() *RawMaterialAdditionValidator {
	return &RawMaterialAdditionValidator{base{
		name: "RawMaterialAdditionValidator",
		priorities: map[engine.EventType]int{
			engine.RawMaterialAdded: -100,
		},
	}}
}

func (l *RawMaterialAdditionValidator) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	batch := ev.Shared.Batch
	material := ev.Shared.RawMaterial
	if batch == nil || material == nil {
		return engine.Validationf("no batch or raw material in event context for RawMaterialAdditionValidator")
	}
	if batch.AssetOwner != ev.SignerPublicKey {
		return engine.Permissionf("only the batch owner may add materials to batch %q", batch.UID)
	}
	if batch.Status != model.BatchInProgress {
		return engine.Validationf("batch %q is %s, materials can only be added while in progress", batch.UID, batch.Status)
	}
	if material.IsDeleted {
		return engine.Validationf("raw material %q is deleted", material.UID)
	}
	// The updater already subtracted the usage; a negative remainder
	// means the payload asked for more than the material had.
	if material.Quantity.IsNegative() {
		return engine.Validationf("raw material %q does not have the requested quantity", material.UID)
	}
	return nil
}

// nonTransferable lists the asset kinds that never change hands: orders
// and contracts bind their original parties, batches bind their
// producer, logistics records bind their transfer.
var nonTransferable = map[model.AssetType]bool{
	model.AssetWorkOrder:     true,
	model.AssetProductBatch:  true,
	model.AssetSubAssignment: true,
	model.AssetLogistics:     true,
}

// TransferValidator closes the transfer chain.
type TransferValidator struct {
	base
}

func NewTransferValidator() *TransferValidator {
	return &TransferValidator{base{
		name: "TransferValidator",
		priorities: map[engine.EventType]int{
			engine.AssetsTransferred: -200,
		},
	}}
}

func (l *TransferValidator) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	recipient := ev.Shared.Recipient
	if recipient == nil {
		return engine.Validationf("no recipient in event context for TransferValidator")
	}
	if recipient.AccountBase().IsDeleted {
		return engine.Validationf("recipient account is deleted")
	}
	if recipient.Identifier() == ev.SignerPublicKey {
		return engine.Validationf("assets cannot be transferred to their current owner")
	}

	for _, asset := range ev.Shared.Assets {
		if nonTransferable[asset.Kind()] {
			return engine.Validationf("%s assets cannot be transferred", asset.Kind())
		}
		if material, ok := asset.(*model.RawMaterial); ok && material.ProcessorPublicKey != "" {
			return engine.Validationf("raw material %q has been processed and can no longer be transferred", material.UID)
		}
	}
	return nil
}

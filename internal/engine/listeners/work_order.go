package listeners

import (
	"context"

	"github.com/craftlore/craftlore-go/internal/engine"
	"github.com/craftlore/craftlore-go/internal/model"
)

// WorkOrderAssigneeUpdater records a freshly created work order on the
// assignee's ledger and publishes the resolved assignee for validation.
type WorkOrderAssigneeUpdater struct {
	base
}

func NewWorkOrderAssigneeUpdater() *WorkOrderAssigneeUpdater {
	return &WorkOrderAssigneeUpdater{base{
		name: "WorkOrderAssigneeUpdater",
		priorities: map[engine.EventType]int{
			engine.WorkOrderCreated: 0,
		},
	}}
}

func (l *WorkOrderAssigneeUpdater) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	workOrder, ok := ev.Shared.Entity.(*model.WorkOrder)
	if !ok || workOrder == nil {
		return engine.Validationf("no work order in event context for WorkOrderAssigneeUpdater")
	}

	assignee, assigneeAddr, err := ev.GetAccount(ctx, workOrder.Assignee)
	if err != nil {
		return err
	}

	if artisan, ok := assignee.(*model.ArtisanAccount); ok {
		artisan.WorkOrdersAssigned = append(artisan.WorkOrdersAssigned, workOrder.UID)
	}
	assignee.AccountBase().AppendHistory(ev.NewHistoryEntry(l.name, assignee.Identifier(), workOrder.UID))
	if err := ev.SetState(ctx, assigneeAddr, assignee); err != nil {
		return err
	}

	ev.Shared.Assignee = assignee
	ev.Shared.AssigneeAddress = assigneeAddr
	return nil
}

// WorkOrderProgressUpdater drives the work-order state machine. Only
// the assignee may progress an order: pending to accepted or rejected,
// accepted to completed. Acceptance derives the batch-creation event;
// completion marks the linked batch done further down the chain.
type WorkOrderProgressUpdater struct {
	base
}

func NewWorkOrderProgressUpdater() *WorkOrderProgressUpdater {
	return &WorkOrderProgressUpdater{base{
		name: "WorkOrderProgressUpdater",
		priorities: map[engine.EventType]int{
			engine.WorkOrderAccepted:  1000,
			engine.WorkOrderRejected:  1000,
			engine.WorkOrderCompleted: 1000,
		},
	}}
}

func (l *WorkOrderProgressUpdater) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	uid, ok := ev.StringField("work_order")
	if !ok {
		return engine.Validationf("missing 'work_order' in payload")
	}

	asset, addr, err := ev.GetAsset(ctx, uid)
	if err != nil {
		return err
	}
	workOrder, ok := asset.(*model.WorkOrder)
	if !ok {
		return engine.Validationf("asset %q is not a work order", uid)
	}
	if workOrder.IsDeleted {
		return engine.Validationf("work order %q is deleted", uid)
	}
	if ev.SignerPublicKey != workOrder.Assignee {
		return engine.Permissionf("only the assignee may progress work order %q", uid)
	}

	assignee, assigneeAddr, err := ev.GetAccount(ctx, workOrder.Assignee)
	if err != nil {
		return err
	}
	artisan, _ := assignee.(*model.ArtisanAccount)

	switch ev.EventType {
	case engine.WorkOrderAccepted:
		if workOrder.Status != model.WorkOrderPending {
			return engine.Validationf("work order %q is %s, only pending orders can be accepted", uid, workOrder.Status)
		}
		workOrder.Status = model.WorkOrderAccepted
		if artisan != nil {
			artisan.WorkOrdersAccepted = append(artisan.WorkOrdersAccepted, uid)
		}
	case engine.WorkOrderRejected:
		if workOrder.Status != model.WorkOrderPending {
			return engine.Validationf("work order %q is %s, only pending orders can be rejected", uid, workOrder.Status)
		}
		reason, ok := ev.StringField("rejection_reason")
		if !ok {
			return engine.Validationf("rejecting a work order requires a rejection_reason")
		}
		workOrder.Status = model.WorkOrderRejected
		workOrder.RejectionReason = reason
		if artisan != nil {
			artisan.WorkOrdersRejected = append(artisan.WorkOrdersRejected, uid)
		}
	case engine.WorkOrderCompleted:
		if workOrder.Status != model.WorkOrderAccepted {
			return engine.Validationf("work order %q is %s, only accepted orders can be completed", uid, workOrder.Status)
		}
		workOrder.Status = model.WorkOrderCompleted
		workOrder.CompletionDate = ev.Timestamp
		if artisan != nil {
			artisan.WorkOrdersCompleted = append(artisan.WorkOrdersCompleted, uid)
		}
	}

	workOrder.UpdatedTimestamp = ev.Timestamp
	workOrder.AppendHistory(ev.NewHistoryEntry(l.name, uid))
	if err := ev.SetState(ctx, addr, workOrder); err != nil {
		return err
	}

	assignee.AccountBase().AppendHistory(ev.NewHistoryEntry(l.name, assignee.Identifier(), uid))
	if err := ev.SetState(ctx, assigneeAddr, assignee); err != nil {
		return err
	}

	ev.Shared.Entity = workOrder
	ev.Shared.EntityAddress = addr
	ev.Shared.Assignee = assignee
	ev.Shared.AssigneeAddress = assigneeAddr

	// Completion hands the linked batch to the batch updater.
	if ev.EventType == engine.WorkOrderCompleted && workOrder.Batch != "" {
		batchAsset, batchAddr, err := ev.GetAsset(ctx, workOrder.Batch)
		if err != nil {
			return err
		}
		batch, ok := batchAsset.(*model.ProductBatch)
		if !ok {
			return engine.Validationf("asset %q linked to work order %q is not a product batch", workOrder.Batch, uid)
		}
		ev.Shared.Batch = batch
		ev.Shared.BatchAddress = batchAddr
	}
	return nil
}

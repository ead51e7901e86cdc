package listeners

import (
	"context"

	"github.com/craftlore/craftlore-go/internal/engine"
	"github.com/craftlore/craftlore-go/internal/model"
)

// SubAssigneeUpdater maintains both sides of the sub-assignment state
// machine. On creation it links the assignment to its batch and the
// assignee's ledger; afterwards it progresses the status on behalf of
// the assignee (accept, reject, complete) or the assigner (paid).
type SubAssigneeUpdater struct {
	base
}

func NewSubAssigneeUpdater() *SubAssigneeUpdater {
	return &SubAssigneeUpdater{base{
		name: "SubAssigneeUpdater",
		priorities: map[engine.EventType]int{
			engine.SubAssignmentCreated:    0,
			engine.SubAssignmentAccepted:   1000,
			engine.SubAssignmentRejected:   1000,
			engine.SubAssignmentCompleted:  1000,
			engine.SubAssignmentMarkedPaid: 1000,
		},
	}}
}

func (l *SubAssigneeUpdater) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	if ev.EventType == engine.SubAssignmentCreated {
		return l.linkCreation(ctx, ev)
	}
	return l.progress(ctx, ev)
}

// linkCreation records a freshly created sub-assignment on its batch
// and on the assignee's ledger.
func (l *SubAssigneeUpdater) linkCreation(ctx context.Context, ev *engine.EventContext) error {
	assignment, ok := ev.Shared.Entity.(*model.SubAssignment)
	if !ok || assignment == nil {
		return engine.Validationf("no sub-assignment in event context for SubAssigneeUpdater")
	}

	batchAsset, batchAddr, err := ev.GetAsset(ctx, assignment.Batch)
	if err != nil {
		return err
	}
	batch, ok := batchAsset.(*model.ProductBatch)
	if !ok {
		return engine.Validationf("asset %q is not a product batch", assignment.Batch)
	}
	batch.SubAssignments = append(batch.SubAssignments, assignment.UID)
	batch.AppendHistory(ev.NewHistoryEntry(l.name, batch.UID, assignment.UID))
	if err := ev.SetState(ctx, batchAddr, batch); err != nil {
		return err
	}

	assignee, assigneeAddr, err := ev.GetAccount(ctx, assignment.Assignee)
	if err != nil {
		return err
	}
	if artisan, ok := assignee.(*model.ArtisanAccount); ok {
		artisan.SubAssignments = append(artisan.SubAssignments, assignment.UID)
	}
	assignee.AccountBase().AppendHistory(ev.NewHistoryEntry(l.name, assignee.Identifier(), assignment.UID))
	if err := ev.SetState(ctx, assigneeAddr, assignee); err != nil {
		return err
	}

	ev.Shared.Batch = batch
	ev.Shared.BatchAddress = batchAddr
	ev.Shared.Assignee = assignee
	ev.Shared.AssigneeAddress = assigneeAddr
	return nil
}

func (l *SubAssigneeUpdater) progress(ctx context.Context, ev *engine.EventContext) error {
	uid, ok := ev.StringField("sub_assignment")
	if !ok {
		return engine.Validationf("missing 'sub_assignment' in payload")
	}

	asset, addr, err := ev.GetAsset(ctx, uid)
	if err != nil {
		return err
	}
	assignment, ok := asset.(*model.SubAssignment)
	if !ok {
		return engine.Validationf("asset %q is not a sub-assignment", uid)
	}
	if assignment.IsDeleted {
		return engine.Validationf("sub-assignment %q is deleted", uid)
	}

	assignee, assigneeAddr, err := ev.GetAccount(ctx, assignment.Assignee)
	if err != nil {
		return err
	}
	artisan, _ := assignee.(*model.ArtisanAccount)

	switch ev.EventType {
	case engine.SubAssignmentAccepted:
		if ev.SignerPublicKey != assignment.Assignee {
			return engine.Permissionf("only the assignee may accept sub-assignment %q", uid)
		}
		if assignment.Status != model.SubAssignmentPending {
			return engine.Validationf("sub-assignment %q is %s, only pending assignments can be accepted", uid, assignment.Status)
		}
		assignment.Status = model.SubAssignmentAccepted
		if artisan != nil {
			artisan.SubAssignmentsAccepted = append(artisan.SubAssignmentsAccepted, uid)
		}
		if err := l.recordAssigneeOnBatch(ctx, ev, assignment); err != nil {
			return err
		}
	case engine.SubAssignmentRejected:
		if ev.SignerPublicKey != assignment.Assignee {
			return engine.Permissionf("only the assignee may reject sub-assignment %q", uid)
		}
		if assignment.Status != model.SubAssignmentPending {
			return engine.Validationf("sub-assignment %q is %s, only pending assignments can be rejected", uid, assignment.Status)
		}
		reason, ok := ev.StringField("rejection_reason")
		if !ok {
			return engine.Validationf("rejecting a sub-assignment requires a rejection_reason")
		}
		assignment.Status = model.SubAssignmentRejected
		assignment.RejectionReason = reason
		if artisan != nil {
			artisan.SubAssignmentsRejected = append(artisan.SubAssignmentsRejected, uid)
		}
	case engine.SubAssignmentCompleted:
		if ev.SignerPublicKey != assignment.Assignee {
			return engine.Permissionf("only the assignee may complete sub-assignment %q", uid)
		}
		if assignment.Status != model.SubAssignmentAccepted {
			return engine.Validationf("sub-assignment %q is %s, only accepted assignments can be completed", uid, assignment.Status)
		}
		assignment.Status = model.SubAssignmentCompleted
	case engine.SubAssignmentMarkedPaid:
		if ev.SignerPublicKey != assignment.Assigner {
			return engine.Permissionf("only the assigner may mark sub-assignment %q paid", uid)
		}
		if assignment.IsPaid {
			return engine.Validationf("sub-assignment %q is already paid", uid)
		}
		assignment.IsPaid = true
	}

	assignment.UpdatedTimestamp = ev.Timestamp
	assignment.AppendHistory(ev.NewHistoryEntry(l.name, uid))
	if err := ev.SetState(ctx, addr, assignment); err != nil {
		return err
	}

	assignee.AccountBase().AppendHistory(ev.NewHistoryEntry(l.name, assignee.Identifier(), uid))
	if err := ev.SetState(ctx, assigneeAddr, assignee); err != nil {
		return err
	}

	ev.Shared.Entity = assignment
	ev.Shared.EntityAddress = addr
	ev.Shared.Assignee = assignee
	ev.Shared.AssigneeAddress = assigneeAddr
	return nil
}

// recordAssigneeOnBatch adds the accepting artisan to the batch's
// sub-assignee roster.
func (l *SubAssigneeUpdater) recordAssigneeOnBatch(ctx context.Context, ev *engine.EventContext, assignment *model.SubAssignment) error {
	batchAsset, batchAddr, err := ev.GetAsset(ctx, assignment.Batch)
	if err != nil {
		return err
	}
	batch, ok := batchAsset.(*model.ProductBatch)
	if !ok {
		return engine.Validationf("asset %q is not a product batch", assignment.Batch)
	}
	for _, existing := range batch.SubAssignees {
		if existing == assignment.Assignee {
			return nil
		}
	}
	batch.SubAssignees = append(batch.SubAssignees, assignment.Assignee)
	return ev.SetState(ctx, batchAddr, batch)
}

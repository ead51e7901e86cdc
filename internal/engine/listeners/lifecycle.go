package listeners

import (
	"context"

	"github.com/craftlore/craftlore-go/internal/engine"
	"github.com/craftlore/craftlore-go/internal/model"
)

// EntityEditor applies an edit transaction to its target. The field
// policy enforcer has already confirmed every update is editable; the
// editor resolves the target again, applies the updates and records the
// before/after values in the history entry.
type EntityEditor struct {
	base
}

func NewEntityEditor() *EntityEditor {
	return &EntityEditor{base{
		name: "EntityEditor",
		priorities: map[engine.EventType]int{
			engine.EntityEdited: 1000,
		},
	}}
}

func (l *EntityEditor) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	entity, addr, err := resolveTarget(ctx, ev)
	if err != nil {
		return err
	}
	if entity.Base().IsDeleted {
		return engine.Validationf("entity %q is deleted", entity.Identifier())
	}
	if err := checkEditAuthority(entity, ev.SignerPublicKey); err != nil {
		return err
	}
	if material, ok := entity.(*model.RawMaterial); ok && len(material.BatchesUsedIn) > 0 {
		return engine.Validationf("raw material %q has been processed and can no longer be edited", material.UID)
	}

	updates, ok := ev.Fields()["updates"].(map[string]any)
	if !ok || len(updates) == 0 {
		return engine.Validationf("edit requires a non-empty 'updates' mapping")
	}

	changes, err := model.ApplyUpdates(entity, updates)
	if err != nil {
		return engine.Validationf("apply edit: %v", err)
	}

	entity.Base().UpdatedTimestamp = ev.Timestamp
	entry := ev.NewHistoryEntry(l.name, entity.Identifier())
	entry.Edits = changes
	entity.Base().AppendHistory(entry)
	if err := ev.SetState(ctx, addr, entity); err != nil {
		return err
	}

	ev.Shared.Entity = entity
	ev.Shared.EntityAddress = addr
	return nil
}

// checkEditAuthority restricts edits to the entity's principal: an
// account edits itself, an asset is edited by its owner.
func checkEditAuthority(entity model.Entity, signer string) error {
	switch v := entity.(type) {
	case model.Account:
		if v.AccountBase().PublicKey != signer {
			return engine.Permissionf("accounts can only be edited by their owner")
		}
	case model.Asset:
		if v.AssetBase().AssetOwner != signer {
			return engine.Permissionf("assets can only be edited by their owner")
		}
	}
	return nil
}

// EntityDeleter soft-deletes an entity. Deletion is monotonic: a
// deleted entity never comes back and a second delete fails. Deleting
// an asset also removes it from the owner's asset list.
type EntityDeleter struct {
	base
}

func NewEntityDeleter() *EntityDeleter {
	return &EntityDeleter{base{
		name: "EntityDeleter",
		priorities: map[engine.EventType]int{
			engine.EntityDeleted: 1000,
		},
	}}
}

func (l *EntityDeleter) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	entity, addr, err := resolveTarget(ctx, ev)
	if err != nil {
		return err
	}
	env := entity.Base()
	if env.IsDeleted {
		return engine.Validationf("entity %q is already deleted", entity.Identifier())
	}

	switch v := entity.(type) {
	case model.Account:
		if v.AccountBase().PublicKey != ev.SignerPublicKey {
			return engine.Permissionf("accounts can only be deleted by their owner")
		}
	case model.Asset:
		assetEnv := v.AssetBase()
		if assetEnv.AssetOwner != ev.SignerPublicKey {
			return engine.Permissionf("assets can only be deleted by their owner")
		}
		owner, ownerAddr, err := ev.GetAccount(ctx, assetEnv.AssetOwner)
		if err != nil {
			return err
		}
		removeString(&owner.AccountBase().Assets, assetEnv.UID)
		owner.AccountBase().AppendHistory(ev.NewHistoryEntry(l.name, owner.Identifier(), assetEnv.UID))
		if err := ev.SetState(ctx, ownerAddr, owner); err != nil {
			return err
		}
	}

	reason, ok := ev.StringField("deletion_reason")
	if !ok {
		return engine.Validationf("a reason for deletion must be provided")
	}
	env.IsDeleted = true
	env.DeletionReason = reason
	env.UpdatedTimestamp = ev.Timestamp
	env.AppendHistory(ev.NewHistoryEntry(l.name, entity.Identifier()))
	if err := ev.SetState(ctx, addr, entity); err != nil {
		return err
	}

	ev.Shared.Entity = entity
	ev.Shared.EntityAddress = addr
	return nil
}

// EntityAuthenticator lets an admin approve or reject the platform
// verification of an entity.
type EntityAuthenticator struct {
	base
}

func NewEntityAuthenticator() *EntityAuthenticator {
	return &EntityAuthenticator{base{
		name: "EntityAuthenticator",
		priorities: map[engine.EventType]int{
			engine.EntityAuthenticated: 1000,
		},
	}}
}

func (l *EntityAuthenticator) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	if err := resolveSignerAdmin(ctx, ev); err != nil {
		return err
	}

	entity, addr, err := resolveTarget(ctx, ev)
	if err != nil {
		return err
	}
	if entity.Base().IsDeleted {
		return engine.Validationf("entity %q is deleted", entity.Identifier())
	}

	status, ok := ev.StringField("status")
	if !ok {
		return engine.Validationf("authentication requires a 'status' field")
	}
	switch model.AuthenticationStatus(status) {
	case model.AuthApproved, model.AuthRejected:
	default:
		return engine.Validationf("authentication status must be approved or rejected, got %q", status)
	}

	env := entity.Base()
	env.AuthenticationStatus = model.AuthenticationStatus(status)
	env.UpdatedTimestamp = ev.Timestamp
	env.AppendHistory(ev.NewHistoryEntry(l.name, entity.Identifier()))
	if err := ev.SetState(ctx, addr, entity); err != nil {
		return err
	}

	ev.Shared.Entity = entity
	ev.Shared.EntityAddress = addr
	return nil
}

// ModeratorEditor applies a moderation edit. Moderators reach past the
// owner's editable set but never past the engine-managed fields.
type ModeratorEditor struct {
	base
}

func NewModeratorEditor() *ModeratorEditor {
	return &ModeratorEditor{base{
		name: "ModeratorEditor",
		priorities: map[engine.EventType]int{
			engine.ModeratorEdited: 1000,
		},
	}}
}

func (l *ModeratorEditor) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	if err := resolveSignerAdmin(ctx, ev); err != nil {
		return err
	}

	entity, addr, err := resolveTarget(ctx, ev)
	if err != nil {
		return err
	}

	policy, ok := model.PolicyFor(entity)
	if !ok {
		return engine.Validationf("no field policy for entity %q", entity.Identifier())
	}
	updates, ok := ev.Fields()["updates"].(map[string]any)
	if !ok || len(updates) == 0 {
		return engine.Validationf("moderation edit requires a non-empty 'updates' mapping")
	}
	for name := range updates {
		if policy.Forbidden.Has(name) {
			return engine.Validationf("field %q is engine-managed and cannot be moderated", name)
		}
	}

	changes, err := model.ApplyUpdates(entity, updates)
	if err != nil {
		return engine.Validationf("apply moderation edit: %v", err)
	}

	entity.Base().UpdatedTimestamp = ev.Timestamp
	entry := ev.NewHistoryEntry(l.name, entity.Identifier())
	entry.Edits = changes
	entity.Base().AppendHistory(entry)
	if err := ev.SetState(ctx, addr, entity); err != nil {
		return err
	}

	ev.Shared.Entity = entity
	ev.Shared.EntityAddress = addr
	return nil
}

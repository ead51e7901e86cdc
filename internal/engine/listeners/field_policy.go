package listeners

import (
	"context"

	"github.com/craftlore/craftlore-go/internal/engine"
	"github.com/craftlore/craftlore-go/internal/model"
)

// FieldPolicyEnforcer guards the field-permission contract and runs at
// the highest priority of every creation and edit chain.
//
// On creation it silently removes forbidden fields from the payload, so
// the creator listener that follows applies engine defaults instead; a
// creation payload is never rejected for naming a forbidden field. On
// edit it aborts the transaction when any target field lies outside the
// entity's editable set.
type FieldPolicyEnforcer struct {
	base
}

// NewFieldPolicyEnforcer builds the enforcer.
func NewFieldPolicyEnforcer() *FieldPolicyEnforcer {
	return &FieldPolicyEnforcer{base{
		name: "FieldPolicyEnforcer",
		priorities: map[engine.EventType]int{
			engine.AccountCreated: 2000,
			engine.AssetCreated:   2000,
			engine.AdminCreated:   2000,
			engine.EntityEdited:   2000,
		},
	}}
}

func (l *FieldPolicyEnforcer) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	if ev.EventType == engine.EntityEdited {
		return l.checkEdit(ctx, ev)
	}
	return l.stripCreation(ev)
}

// stripCreation drops forbidden fields from the creation payload.
func (l *FieldPolicyEnforcer) stripCreation(ev *engine.EventContext) error {
	fields := ev.Fields()

	var policy model.FieldPolicy
	switch ev.EventType {
	case engine.AdminCreated:
		p, _ := model.AccountPolicy(model.AccountAdmin)
		policy = p
	case engine.AccountCreated:
		accountType, ok := ev.StringField("account_type")
		if !ok {
			return engine.Validationf("account creation requires an account_type field")
		}
		p, known := model.AccountPolicy(model.AccountType(accountType))
		if !known {
			return engine.Validationf("unknown account type %q", accountType)
		}
		policy = p
	case engine.AssetCreated:
		assetType, ok := ev.StringField("asset_type")
		if !ok {
			return engine.Validationf("asset creation requires an asset_type field")
		}
		p, known := model.AssetPolicy(model.AssetType(assetType))
		if !known {
			return engine.Validationf("unknown asset type %q", assetType)
		}
		policy = p
	}

	for name := range policy.Forbidden {
		// Admin creation names the target account by public_key; the
		// selector survives stripping.
		if ev.EventType == engine.AdminCreated && name == "public_key" {
			continue
		}
		delete(fields, name)
	}
	return nil
}

// checkEdit resolves the edit target and rejects any update outside its
// editable set.
func (l *FieldPolicyEnforcer) checkEdit(ctx context.Context, ev *engine.EventContext) error {
	entity, _, err := resolveTarget(ctx, ev)
	if err != nil {
		return err
	}

	policy, ok := model.PolicyFor(entity)
	if !ok {
		return engine.Validationf("no field policy for entity %q", entity.Identifier())
	}

	updates, ok := ev.Fields()["updates"].(map[string]any)
	if !ok || len(updates) == 0 {
		return engine.Validationf("edit requires a non-empty 'updates' mapping")
	}
	for name := range updates {
		if !policy.Editable.Has(name) {
			return engine.Validationf("field %q cannot be edited", name)
		}
	}
	return nil
}

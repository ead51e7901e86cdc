package listeners

import (
	"context"

	"github.com/craftlore/craftlore-go/internal/addressing"
	"github.com/craftlore/craftlore-go/internal/engine"
	"github.com/craftlore/craftlore-go/internal/model"
)

// EntityHistoryUpdater stamps the creation entry onto the entity a
// creator listener just materialized.
type EntityHistoryUpdater struct {
	base
}

func NewEntityHistoryUpdater() *EntityHistoryUpdater {
	return &EntityHistoryUpdater{base{
		name: "EntityHistoryUpdater",
		priorities: map[engine.EventType]int{
			engine.AccountCreated:      0,
			engine.AssetCreated:        0,
			engine.AdminCreated:        0,
			engine.BatchCreated:        0,
			engine.CertificationIssued: -100,
		},
	}}
}

func (l *EntityHistoryUpdater) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	entity := ev.Shared.Entity
	if entity == nil {
		return engine.Validationf("no entity in event context for EntityHistoryUpdater")
	}
	entity.Base().AppendHistory(ev.NewHistoryEntry(l.name, entity.Identifier()))
	return ev.SetState(ctx, ev.Shared.EntityAddress, entity)
}

// OwnerHistoryUpdater maintains the creator's side of an asset
// creation: the asset lands in the signer's asset list, kind-specific
// ledger lists are extended, and the signer's history records the
// event. It also publishes the resolved signer account into the shared
// context for the validators that follow.
type OwnerHistoryUpdater struct {
	base
}

func NewOwnerHistoryUpdater() *OwnerHistoryUpdater {
	return &OwnerHistoryUpdater{base{
		name: "OwnerHistoryUpdater",
		priorities: map[engine.EventType]int{
			engine.AssetCreated:        0,
			engine.BatchCreated:        0,
			engine.CertificationIssued: 0,
			engine.LogisticsCreated:    -100,
		},
	}}
}

func (l *OwnerHistoryUpdater) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	asset, ok := ev.Shared.Entity.(model.Asset)
	if !ok || asset == nil {
		return engine.Validationf("no asset in event context for OwnerHistoryUpdater")
	}
	uid := asset.AssetBase().UID

	owner, ownerAddr, err := ev.GetAccount(ctx, ev.SignerPublicKey)
	if err != nil {
		return err
	}

	env := owner.AccountBase()
	env.Assets = append(env.Assets, uid)
	switch v := owner.(type) {
	case *model.SupplierAccount:
		if asset.Kind() == model.AssetRawMaterial {
			v.RawMaterialsCreated = append(v.RawMaterialsCreated, uid)
		}
	}
	if asset.Kind() == model.AssetWorkOrder {
		env.WorkOrdersIssued = append(env.WorkOrdersIssued, uid)
	}

	env.AppendHistory(ev.NewHistoryEntry(l.name, env.PublicKey, uid))
	if err := ev.SetState(ctx, ownerAddr, owner); err != nil {
		return err
	}

	ev.Shared.Owner = owner
	ev.Shared.OwnerAddress = ownerAddr
	ev.Shared.Signer = owner
	return nil
}

// emailIndexRecord is the payload stored at an email index address.
type emailIndexRecord struct {
	Email     string `json:"email"`
	PublicKey string `json:"public_key"`
}

// EmailIndexUpdater enforces email uniqueness across accounts. It runs
// last in the account creation chain so the account record is already
// staged when the index entry lands.
type EmailIndexUpdater struct {
	base
}

func NewEmailIndexUpdater() *EmailIndexUpdater {
	return &EmailIndexUpdater{base{
		name: "EmailIndexUpdater",
		priorities: map[engine.EventType]int{
			engine.AccountCreated: -1000,
			engine.AdminCreated:   -1000,
			engine.Bootstrap:      -1000,
		},
	}}
}

func (l *EmailIndexUpdater) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	account, ok := ev.Shared.Entity.(model.Account)
	if !ok || account == nil {
		return engine.Validationf("no account in event context for EmailIndexUpdater")
	}
	env := account.AccountBase()

	addr := addressing.EmailIndex(env.Email)
	taken, err := ev.HasState(ctx, addr)
	if err != nil {
		return err
	}
	if taken {
		return engine.Validationf("email %q is already registered", env.Email)
	}
	return ev.SetState(ctx, addr, emailIndexRecord{Email: env.Email, PublicKey: env.PublicKey})
}

package listeners

import (
	"context"

	"github.com/craftlore/craftlore-go/internal/addressing"
	"github.com/craftlore/craftlore-go/internal/engine"
	"github.com/craftlore/craftlore-go/internal/model"
)

// AssetsTransferrer moves ownership of one or more assets to a
// recipient account. Each asset keeps its provenance: the outgoing
// owner joins previous_owners and both account ledgers record the
// transfer. Transferring a packaging asset carries its packaged
// products along.
type AssetsTransferrer struct {
	base
}

func NewAssetsTransferrer() *AssetsTransferrer {
	return &AssetsTransferrer{base{
		name: "AssetsTransferrer",
		priorities: map[engine.EventType]int{
			engine.AssetsTransferred: 1000,
		},
	}}
}

func (l *AssetsTransferrer) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	recipientKey, ok := ev.StringField("recipient")
	if !ok {
		return engine.Validationf("missing 'recipient' in transfer payload")
	}
	uids, err := stringSlice(ev.Fields()["assets"])
	if err != nil || len(uids) == 0 {
		return engine.Validationf("transfer requires a non-empty 'assets' list")
	}

	recipient, recipientAddr, err := ev.GetAccount(ctx, recipientKey)
	if err != nil {
		return err
	}
	oldOwner, oldOwnerAddr, err := ev.GetAccount(ctx, ev.SignerPublicKey)
	if err != nil {
		return err
	}

	transferred := make([]model.Asset, 0, len(uids))
	queue := append([]string{}, uids...)
	seen := map[string]bool{}
	for len(queue) > 0 {
		uid := queue[0]
		queue = queue[1:]
		if seen[uid] {
			continue
		}
		seen[uid] = true

		asset, addr, err := ev.GetAsset(ctx, uid)
		if err != nil {
			return err
		}
		env := asset.AssetBase()
		if env.AssetOwner != ev.SignerPublicKey {
			return engine.Permissionf("signer does not own asset %q", uid)
		}
		if env.IsDeleted {
			return engine.Validationf("asset %q is deleted", uid)
		}

		env.PreviousOwners = append(env.PreviousOwners, env.AssetOwner)
		env.AssetOwner = recipientKey
		env.UpdatedTimestamp = ev.Timestamp
		env.AppendHistory(ev.NewHistoryEntry(l.name, uid, recipientKey))
		if err := ev.SetState(ctx, addr, asset); err != nil {
			return err
		}

		removeString(&oldOwner.AccountBase().Assets, uid)
		recipient.AccountBase().Assets = append(recipient.AccountBase().Assets, uid)
		transferred = append(transferred, asset)

		// Packaged products travel with their packaging.
		if pkg, ok := asset.(*model.Packaging); ok {
			queue = append(queue, pkg.Products...)
		}
	}

	oldOwner.AccountBase().AppendHistory(ev.NewHistoryEntry(l.name, append([]string{oldOwner.Identifier()}, uids...)...))
	if err := ev.SetState(ctx, oldOwnerAddr, oldOwner); err != nil {
		return err
	}
	recipient.AccountBase().AppendHistory(ev.NewHistoryEntry(l.name, append([]string{recipient.Identifier()}, uids...)...))
	if err := ev.SetState(ctx, recipientAddr, recipient); err != nil {
		return err
	}

	ev.Shared.Assets = transferred
	ev.Shared.Recipient = recipient
	ev.Shared.OldOwner = oldOwner
	return nil
}

// TransferLogisticsLinker runs after the logistics record of a transfer
// is minted and stamps its uid onto every transferred asset.
type TransferLogisticsLinker struct {
	base
}

func NewTransferLogisticsLinker() *TransferLogisticsLinker {
	return &TransferLogisticsLinker{base{
		name: "TransferLogisticsLinker",
		priorities: map[engine.EventType]int{
			engine.LogisticsCreated: -200,
		},
	}}
}

func (l *TransferLogisticsLinker) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	logistics, ok := ev.Shared.Entity.(*model.Logistics)
	if !ok || logistics == nil {
		return engine.Validationf("no logistics record in event context for TransferLogisticsLinker")
	}
	for _, asset := range ev.Shared.Assets {
		env := asset.AssetBase()
		env.TransferLogistics = append(env.TransferLogistics, logistics.UID)
		addr := addressing.Asset(env.UID, string(env.AssetType))
		if err := ev.SetState(ctx, addr, asset); err != nil {
			return err
		}
	}
	return nil
}

func stringSlice(raw any) ([]string, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, engine.Validationf("expected a list of asset uids")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok || s == "" {
			return nil, engine.Validationf("asset uids must be non-empty strings")
		}
		out = append(out, s)
	}
	return out, nil
}

func removeString(list *[]string, want string) {
	out := (*list)[:0]
	for _, have := range *list {
		if have != want {
			out = append(out, have)
		}
	}
	*list = out
}

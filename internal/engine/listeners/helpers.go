package listeners

import (
	"context"

	"github.com/google/uuid"

	"github.com/craftlore/craftlore-go/internal/addressing"
	"github.com/craftlore/craftlore-go/internal/engine"
	"github.com/craftlore/craftlore-go/internal/model"
)

// uidNamespace scopes engine-minted uids to the transaction family.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte(addressing.FamilyName))

// mintUID derives the uid for an engine-minted asset. The uid is a
// name-based uuid of the transaction signature and the event minting
// it, so every node replaying the same transaction mints the same uid.
// At most one asset is minted per (transaction, event) pair; products,
// which are minted in bulk, carry batch-uid+serial uids instead.
func mintUID(ev *engine.EventContext) string {
	return uuid.NewSHA1(uidNamespace, []byte(ev.Signature+"/"+string(ev.EventType))).String()
}

// resolveTarget picks the entity an edit/delete/authenticate payload
// points at: an asset when 'uid' is present, an account when
// 'public_key' is. The two selectors are mutually exclusive.
func resolveTarget(ctx context.Context, ev *engine.EventContext) (model.Entity, addressing.Address, error) {
	uid, hasUID := ev.StringField("uid")
	publicKey, hasKey := ev.StringField("public_key")

	switch {
	case hasUID && hasKey:
		return nil, "", engine.Validationf("'uid' and 'public_key' are mutually exclusive target selectors")
	case hasUID:
		return ev.GetAsset(ctx, uid)
	case hasKey:
		return ev.GetAccount(ctx, publicKey)
	default:
		return nil, "", engine.Validationf("either 'uid' or 'public_key' must identify the target entity")
	}
}

// isAssetIdentifier reports whether an identifier names an asset. Asset
// uids carry hyphens (generated uuids and minted product serials);
// account public keys never do.
func isAssetIdentifier(id string) bool {
	for i := 0; i < len(id); i++ {
		if id[i] == '-' {
			return true
		}
	}
	return false
}

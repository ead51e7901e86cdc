package listeners

import (
	"context"

	"github.com/craftlore/craftlore-go/internal/engine"
	"github.com/craftlore/craftlore-go/internal/model"
)

// PackagingProductsUpdater links a freshly created packaging asset with
// the products it contains. A product belongs to at most one packaging
// at a time.
type PackagingProductsUpdater struct {
	base
}

func NewPackagingProductsUpdater() *PackagingProductsUpdater {
	return &PackagingProductsUpdater{base{
		name: "PackagingProductsUpdater",
		priorities: map[engine.EventType]int{
			engine.PackagingCreated: 0,
		},
	}}
}

func (l *PackagingProductsUpdater) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	packaging, ok := ev.Shared.Entity.(*model.Packaging)
	if !ok || packaging == nil {
		return engine.Validationf("no packaging in event context for PackagingProductsUpdater")
	}
	if len(packaging.Products) == 0 {
		return engine.Validationf("packaging %q lists no products", packaging.UID)
	}

	for _, uid := range packaging.Products {
		asset, addr, err := ev.GetAsset(ctx, uid)
		if err != nil {
			return err
		}
		product, ok := asset.(*model.Product)
		if !ok {
			return engine.Validationf("asset %q is not a product", uid)
		}
		if product.AssetOwner != ev.SignerPublicKey {
			return engine.Permissionf("signer does not own product %q", uid)
		}
		if product.IsDeleted {
			return engine.Validationf("product %q is deleted", uid)
		}
		if product.Packaging != "" {
			return engine.Validationf("product %q is already packaged in %q", uid, product.Packaging)
		}

		product.Packaging = packaging.UID
		product.UpdatedTimestamp = ev.Timestamp
		product.AppendHistory(ev.NewHistoryEntry(l.name, uid, packaging.UID))
		if err := ev.SetState(ctx, addr, product); err != nil {
			return err
		}
	}
	return nil
}

// ProductUnpacker removes one product from its packaging.
type ProductUnpacker struct {
	base
}

func NewProductUnpacker() *ProductUnpacker {
	return &ProductUnpacker{base{
		name: "ProductUnpacker",
		priorities: map[engine.EventType]int{
			engine.ProductUnpacked: 1000,
		},
	}}
}

func (l *ProductUnpacker) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	uid, ok := ev.StringField("uid")
	if !ok {
		return engine.Validationf("missing 'uid' in payload")
	}

	asset, addr, err := ev.GetAsset(ctx, uid)
	if err != nil {
		return err
	}
	product, ok := asset.(*model.Product)
	if !ok {
		return engine.Validationf("asset %q is not a product", uid)
	}
	if product.AssetOwner != ev.SignerPublicKey {
		return engine.Permissionf("signer does not own product %q", uid)
	}
	if product.Packaging == "" {
		return engine.Validationf("product %q is not packaged", uid)
	}

	pkgAsset, pkgAddr, err := ev.GetAsset(ctx, product.Packaging)
	if err != nil {
		return err
	}
	packaging, ok := pkgAsset.(*model.Packaging)
	if !ok {
		return engine.Validationf("asset %q is not a packaging", product.Packaging)
	}

	removeString(&packaging.Products, uid)
	packaging.UpdatedTimestamp = ev.Timestamp
	packaging.AppendHistory(ev.NewHistoryEntry(l.name, packaging.UID, uid))
	if err := ev.SetState(ctx, pkgAddr, packaging); err != nil {
		return err
	}

	product.Packaging = ""
	product.UpdatedTimestamp = ev.Timestamp
	product.AppendHistory(ev.NewHistoryEntry(l.name, uid))
	if err := ev.SetState(ctx, addr, product); err != nil {
		return err
	}

	ev.Shared.Entity = product
	ev.Shared.EntityAddress = addr
	return nil
}

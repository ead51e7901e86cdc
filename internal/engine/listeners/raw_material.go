package listeners

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/craftlore/craftlore-go/internal/engine"
	"github.com/craftlore/craftlore-go/internal/model"
)

// RawMaterialBatchUpdater records the consumption of a raw material by
// a product batch: the usage lands on both records, the material's
// remaining quantity shrinks and its processor is pinned to the batch
// owner on first use.
type RawMaterialBatchUpdater struct {
	base
}

func NewRawMaterialBatchUpdater() *RawMaterialBatchUpdater {
	return &RawMaterialBatchUpdater{base{
		name: "RawMaterialBatchUpdater",
		priorities: map[engine.EventType]int{
			engine.RawMaterialAdded: 100,
		},
	}}
}

func (l *RawMaterialBatchUpdater) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	batchUID, ok := ev.StringField("batch")
	if !ok {
		return engine.Validationf("missing 'batch' in payload")
	}
	materialUID, ok := ev.StringField("raw_material")
	if !ok {
		return engine.Validationf("missing 'raw_material' in payload")
	}
	quantity, err := usageQuantity(ev.Fields()["usage_quantity"])
	if err != nil {
		return err
	}

	batchAsset, batchAddr, err := ev.GetAsset(ctx, batchUID)
	if err != nil {
		return err
	}
	batch, ok := batchAsset.(*model.ProductBatch)
	if !ok {
		return engine.Validationf("asset %q is not a product batch", batchUID)
	}

	materialAsset, materialAddr, err := ev.GetAsset(ctx, materialUID)
	if err != nil {
		return err
	}
	material, ok := materialAsset.(*model.RawMaterial)
	if !ok {
		return engine.Validationf("asset %q is not a raw material", materialUID)
	}

	usage := model.UsageRecord{
		Batch:         batchUID,
		RawMaterial:   materialUID,
		UsageQuantity: quantity,
	}
	batch.RawMaterials = append(batch.RawMaterials, usage)
	batch.AppendHistory(ev.NewHistoryEntry(l.name, batchUID, materialUID))

	material.BatchesUsedIn = append(material.BatchesUsedIn, usage)
	material.Quantity = material.Quantity.Sub(quantity)
	if material.ProcessorPublicKey == "" {
		material.ProcessorPublicKey = batch.AssetOwner
	}
	material.UpdatedTimestamp = ev.Timestamp
	material.AppendHistory(ev.NewHistoryEntry(l.name, materialUID, batchUID))

	if err := ev.SetState(ctx, batchAddr, batch); err != nil {
		return err
	}
	if err := ev.SetState(ctx, materialAddr, material); err != nil {
		return err
	}

	supplier, supplierAddr, err := ev.GetAccount(ctx, material.Supplier)
	if err != nil {
		return err
	}
	if s, ok := supplier.(*model.SupplierAccount); ok {
		if !contains(s.RawMaterialsSupplied, materialUID) {
			s.RawMaterialsSupplied = append(s.RawMaterialsSupplied, materialUID)
			if err := ev.SetState(ctx, supplierAddr, supplier); err != nil {
				return err
			}
		}
	}

	ev.Shared.Batch = batch
	ev.Shared.BatchAddress = batchAddr
	ev.Shared.RawMaterial = material
	return nil
}

// usageQuantity coerces the payload's usage quantity, which arrives as
// a JSON number or a decimal string.
func usageQuantity(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		q, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, engine.Validationf("invalid usage_quantity %q", v)
		}
		return q, nil
	default:
		return decimal.Zero, engine.Validationf("missing 'usage_quantity' in payload")
	}
}

func contains(list []string, want string) bool {
	for _, have := range list {
		if have == want {
			return true
		}
	}
	return false
}

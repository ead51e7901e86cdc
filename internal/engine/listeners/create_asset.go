package listeners

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/craftlore/craftlore-go/internal/addressing"
	"github.com/craftlore/craftlore-go/internal/engine"
	"github.com/craftlore/craftlore-go/internal/model"
)

// AssetCreator materializes asset records. It serves three chains:
//
//   - AssetCreated: direct creation from the payload fields.
//   - BatchCreated (derived from work-order acceptance): mints the
//     product batch the accepted work order calls for and links the two.
//   - LogisticsCreated (derived from a transfer): records the shipment
//     described by the transfer payload's logistics block.
//
// Products and certifications are never created directly; they are
// minted by batch completion and certification issuance respectively.
type AssetCreator struct {
	base
}

func NewAssetCreator() *AssetCreator {
	return &AssetCreator{base{
		name: "AssetCreator",
		priorities: map[engine.EventType]int{
			engine.AssetCreated:     1000,
			engine.BatchCreated:     1000,
			engine.LogisticsCreated: 0,
		},
	}}
}

func (l *AssetCreator) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	switch ev.EventType {
	case engine.BatchCreated:
		return l.createBatchForWorkOrder(ctx, ev)
	case engine.LogisticsCreated:
		return l.createLogistics(ctx, ev)
	default:
		return l.createFromPayload(ctx, ev)
	}
}

func (l *AssetCreator) createFromPayload(ctx context.Context, ev *engine.EventContext) error {
	fields := ev.Fields()
	if len(fields) == 0 {
		return engine.Validationf("missing 'fields' in asset creation payload")
	}

	assetType, ok := ev.StringField("asset_type")
	if !ok {
		return engine.Validationf("asset creation requires an asset_type field")
	}
	switch model.AssetType(assetType) {
	case model.AssetProduct:
		return engine.Validationf("direct creation of products is not supported; complete a batch or work order instead")
	case model.AssetCertification:
		return engine.Validationf("certifications are issued through the certification action")
	case model.AssetLogistics:
		return engine.Validationf("logistics assets can only be created when transferring assets")
	}

	asset, err := model.NewAsset(model.AssetType(assetType))
	if err != nil {
		return engine.Validationf("unsupported asset type %q", assetType)
	}
	if err := model.PopulateFromPayload(asset, fields); err != nil {
		return err
	}

	env := asset.AssetBase()
	env.AssetOwner = ev.SignerPublicKey
	env.CreatedTimestamp = ev.Timestamp
	if env.UID == "" {
		env.UID = mintUID(ev)
	}

	// Kind-specific engine fields the payload may not decide.
	switch v := asset.(type) {
	case *model.RawMaterial:
		v.Supplier = ev.SignerPublicKey
	case *model.ProductBatch:
		v.Producer = ev.SignerPublicKey
	case *model.WorkOrder:
		v.Assigner = ev.SignerPublicKey
		if v.Assignee == "" {
			return engine.Validationf("work order creation requires an assignee field")
		}
	case *model.SubAssignment:
		v.Assigner = ev.SignerPublicKey
		if v.Assignee == "" || v.Batch == "" {
			return engine.Validationf("sub-assignment creation requires assignee and batch fields")
		}
	}

	return l.store(ctx, ev, asset)
}

// createBatchForWorkOrder mints the batch an accepted work order calls
// for and links batch and work order both ways.
func (l *AssetCreator) createBatchForWorkOrder(ctx context.Context, ev *engine.EventContext) error {
	workOrder, ok := ev.Shared.Entity.(*model.WorkOrder)
	if !ok || workOrder == nil {
		return engine.Validationf("work order not found in event context for AssetCreator")
	}

	asset, err := model.NewAsset(model.AssetProductBatch)
	if err != nil {
		return err
	}
	batch := asset.(*model.ProductBatch)
	batch.UID = mintUID(ev)
	batch.AssetOwner = ev.SignerPublicKey
	batch.CreatedTimestamp = ev.Timestamp
	batch.Producer = ev.SignerPublicKey
	batch.Quantity = decimal.NewFromInt(int64(workOrder.OrderQuantity))
	batch.Unit = workOrder.OrderQuantityUnit
	batch.ProductDescription = workOrder.ProductDescription
	batch.Specifications = workOrder.Specifications
	batch.DesignReference = workOrder.DesignReference
	batch.SpecialInstructions = workOrder.SpecialInstructions
	batch.WorkOrder = workOrder.UID

	workOrder.Batch = batch.UID
	workOrderAddr := ev.Shared.EntityAddress
	if err := ev.SetState(ctx, workOrderAddr, workOrder); err != nil {
		return err
	}

	return l.store(ctx, ev, batch)
}

// createLogistics records the shipment described by the transfer
// payload. The transfer updater has already validated assets and
// recipient.
func (l *AssetCreator) createLogistics(ctx context.Context, ev *engine.EventContext) error {
	fields := ev.Fields()
	logisticsFields, ok := fields["logistics"].(map[string]any)
	if !ok || len(logisticsFields) == 0 {
		return engine.Validationf("missing 'logistics' block in transfer payload")
	}

	asset, err := model.NewAsset(model.AssetLogistics)
	if err != nil {
		return err
	}
	if err := model.PopulateFromPayload(asset, logisticsFields); err != nil {
		return err
	}

	logistics := asset.(*model.Logistics)
	logistics.AssetOwner = ev.SignerPublicKey
	logistics.CreatedTimestamp = ev.Timestamp
	logistics.Transaction = ev.Signature
	if logistics.UID == "" {
		logistics.UID = mintUID(ev)
	}
	if assets, ok := fields["assets"].([]any); ok {
		logistics.Assets = make([]string, 0, len(assets))
		for _, a := range assets {
			if s, ok := a.(string); ok {
				logistics.Assets = append(logistics.Assets, s)
			}
		}
	}
	if recipient, ok := ev.StringField("recipient"); ok {
		logistics.Recipient = recipient
	}

	return l.store(ctx, ev, logistics)
}

func (l *AssetCreator) store(ctx context.Context, ev *engine.EventContext, asset model.Asset) error {
	env := asset.AssetBase()
	addr := addressing.Asset(env.UID, string(env.AssetType))

	exists, err := ev.HasState(ctx, addr)
	if err != nil {
		return err
	}
	if exists {
		return engine.Validationf("asset %q already exists", env.UID)
	}

	if err := ev.SetState(ctx, addr, asset); err != nil {
		return err
	}

	ev.Shared.Entity = asset
	ev.Shared.EntityAddress = addr
	if batch, ok := asset.(*model.ProductBatch); ok {
		ev.Shared.Batch = batch
		ev.Shared.BatchAddress = addr
	}
	return nil
}

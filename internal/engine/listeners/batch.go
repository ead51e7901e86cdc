package listeners

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/craftlore/craftlore-go/internal/addressing"
	"github.com/craftlore/craftlore-go/internal/engine"
	"github.com/craftlore/craftlore-go/internal/model"
)

// BatchProducerUpdater handles direct batch completion (batches with no
// work order behind them). It resolves the batch, records the event on
// the producer's ledger and hands the batch to the BatchUpdater.
type BatchProducerUpdater struct {
	base
}

func NewBatchProducerUpdater() *BatchProducerUpdater {
	return &BatchProducerUpdater{base{
		name: "BatchProducerUpdater",
		priorities: map[engine.EventType]int{
			engine.BatchCompleted: 1000,
		},
	}}
}

func (l *BatchProducerUpdater) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	uid, ok := ev.StringField("batch")
	if !ok {
		return engine.Validationf("missing 'batch' in payload")
	}

	asset, addr, err := ev.GetAsset(ctx, uid)
	if err != nil {
		return err
	}
	batch, ok := asset.(*model.ProductBatch)
	if !ok {
		return engine.Validationf("asset %q is not a product batch", uid)
	}

	producer, producerAddr, err := ev.GetAccount(ctx, ev.SignerPublicKey)
	if err != nil {
		return err
	}
	producer.AccountBase().AppendHistory(ev.NewHistoryEntry(l.name, producer.Identifier(), uid))
	if err := ev.SetState(ctx, producerAddr, producer); err != nil {
		return err
	}

	ev.Shared.Entity = batch
	ev.Shared.EntityAddress = addr
	ev.Shared.Batch = batch
	ev.Shared.BatchAddress = addr
	ev.Shared.Owner = producer
	ev.Shared.OwnerAddress = producerAddr
	return nil
}

// BatchUpdater marks the shared batch completed. It serves both
// completion paths: work-order completion (the progress updater staged
// the batch) and direct batch completion.
type BatchUpdater struct {
	base
}

func NewBatchUpdater() *BatchUpdater {
	return &BatchUpdater{base{
		name: "BatchUpdater",
		priorities: map[engine.EventType]int{
			engine.WorkOrderCompleted: 0,
			engine.BatchCompleted:     0,
		},
	}}
}

func (l *BatchUpdater) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	batch := ev.Shared.Batch
	if batch == nil {
		// Work orders accepted before batch derivation shipped have no
		// linked batch; completing them is a no-op here.
		if ev.EventType == engine.WorkOrderCompleted {
			return nil
		}
		return engine.Validationf("no batch in event context for BatchUpdater")
	}
	if batch.Status != model.BatchInProgress {
		return engine.Validationf("batch %q is %s, only in-progress batches can be completed", batch.UID, batch.Status)
	}

	batch.Status = model.BatchCompleted
	batch.ProductionDate = ev.Timestamp
	batch.UnitsProduced = int(batch.Quantity.IntPart())
	batch.UpdatedTimestamp = ev.Timestamp
	batch.AppendHistory(ev.NewHistoryEntry(l.name, batch.UID))
	return ev.SetState(ctx, ev.Shared.BatchAddress, batch)
}

// ProductsCreator mints one product per unit of a completed batch.
// Product uids are deterministic: the batch uid plus the serial number,
// so every node mints identical records.
type ProductsCreator struct {
	base
}

func NewProductsCreator() *ProductsCreator {
	return &ProductsCreator{base{
		name: "ProductsCreator",
		priorities: map[engine.EventType]int{
			engine.WorkOrderCompleted: -200,
			engine.BatchCompleted:     -200,
		},
	}}
}

func (l *ProductsCreator) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	batch := ev.Shared.Batch
	if batch == nil {
		if ev.EventType == engine.WorkOrderCompleted {
			return nil
		}
		return engine.Validationf("no batch in event context for ProductsCreator")
	}

	units := batch.UnitsProduced
	if units <= 0 {
		return engine.Validationf("batch %q has no units to mint products for", batch.UID)
	}

	unitPrice := decimal.Zero
	if raw, ok := ev.Fields()["unit_price_usd"]; ok {
		switch v := raw.(type) {
		case float64:
			unitPrice = decimal.NewFromFloat(v)
		case string:
			p, err := decimal.NewFromString(v)
			if err != nil {
				return engine.Validationf("invalid unit_price_usd %q", v)
			}
			unitPrice = p
		}
	}

	records := make(map[addressing.Address]any, units)
	products := make([]*model.Product, 0, units)
	for serial := 1; serial <= units; serial++ {
		asset, err := model.NewAsset(model.AssetProduct)
		if err != nil {
			return err
		}
		product := asset.(*model.Product)
		product.UID = fmt.Sprintf("%s-%d", batch.UID, serial)
		product.AssetOwner = batch.Producer
		product.CreatedTimestamp = ev.Timestamp
		product.Batch = batch.UID
		product.SerialNo = serial
		product.PriceUSD = unitPrice
		product.Quantity = decimal.NewFromInt(1)
		product.Unit = batch.Unit
		product.AppendHistory(ev.NewHistoryEntry(l.name, product.UID, batch.UID))

		records[addressing.Asset(product.UID, string(model.AssetProduct))] = product
		products = append(products, product)
	}
	if err := ev.SetStates(ctx, records); err != nil {
		return err
	}

	producer, producerAddr, err := ev.GetAccount(ctx, batch.Producer)
	if err != nil {
		return err
	}
	for _, product := range products {
		producer.AccountBase().Assets = append(producer.AccountBase().Assets, product.UID)
	}
	if err := ev.SetState(ctx, producerAddr, producer); err != nil {
		return err
	}

	ev.Shared.Products = products
	return nil
}

package listeners

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/craftlore/craftlore-go/internal/engine"
	"github.com/craftlore/craftlore-go/internal/model"
)

func createWorkOrder(h *harness, assigner, uid string, quantity int) {
	h.t.Helper()
	h.mustApply(assigner, "create/asset", map[string]any{
		"asset_type":          "work_order",
		"uid":                 uid,
		"assignee":            keyArtisan,
		"order_quantity":      quantity,
		"order_quantity_unit": "pieces",
		"product_description": "walnut wood jewelry box",
	})
}

func TestWorkOrderCreation(t *testing.T) {
	h := newHarness(t)
	h.standardAccounts()

	createWorkOrder(h, keyBuyer, "wo-1", 3)

	workOrder := h.asset("wo-1", "work_order").(*model.WorkOrder)
	require.Equal(t, keyBuyer, workOrder.Assigner, "signer becomes the assigner")
	require.Equal(t, keyArtisan, workOrder.Assignee)
	require.Equal(t, model.WorkOrderPending, workOrder.Status)
	require.Empty(t, workOrder.Batch, "no batch before acceptance")

	buyer := h.account(keyBuyer)
	require.Contains(t, buyer.AccountBase().Assets, "wo-1")
	require.Contains(t, buyer.AccountBase().WorkOrdersIssued, "wo-1")

	artisan := h.account(keyArtisan).(*model.ArtisanAccount)
	require.Contains(t, artisan.WorkOrdersAssigned, "wo-1")
}

func TestWorkOrderCreationStripsStatusOverride(t *testing.T) {
	h := newHarness(t)
	h.standardAccounts()

	// status is engine-managed; a payload trying to mint an accepted
	// order gets the default instead.
	h.mustApply(keyBuyer, "create/asset", map[string]any{
		"asset_type":     "work_order",
		"uid":            "wo-1",
		"assignee":       keyArtisan,
		"status":         "accepted",
		"order_quantity": 1,
	})

	workOrder := h.asset("wo-1", "work_order").(*model.WorkOrder)
	require.Equal(t, model.WorkOrderPending, workOrder.Status)
}

func TestWorkOrderCannotSelfAssign(t *testing.T) {
	h := newHarness(t)
	h.standardAccounts()
	h.createAccount(keyArtisan2, "artisan", "artisan2@example.com")

	err := h.apply(keyArtisan, "create/asset", map[string]any{
		"asset_type":     "work_order",
		"uid":            "wo-1",
		"assignee":       keyArtisan,
		"order_quantity": 1,
	})
	require.Error(t, err)
	require.ErrorContains(t, err, "self-assigned")
	require.False(t, h.hasAsset("wo-1", "work_order"), "rejected creation leaves no state")
}

func TestWorkOrderAssigneeMustBePermittedType(t *testing.T) {
	h := newHarness(t)
	h.standardAccounts()

	err := h.apply(keySupplier, "create/asset", map[string]any{
		"asset_type":     "work_order",
		"uid":            "wo-1",
		"assignee":       keyBuyer,
		"order_quantity": 1,
	})
	require.Error(t, err)
	require.ErrorContains(t, err, "cannot be assigned")
}

func TestWorkOrderAcceptOnlyByAssignee(t *testing.T) {
	h := newHarness(t)
	h.standardAccounts()
	h.createAccount(keyArtisan2, "artisan", "artisan2@example.com")
	createWorkOrder(h, keyBuyer, "wo-1", 3)

	err := h.apply(keyArtisan2, "accept/work_order", map[string]any{"work_order": "wo-1"})
	var permission *engine.PermissionError
	require.ErrorAs(t, err, &permission)

	workOrder := h.asset("wo-1", "work_order").(*model.WorkOrder)
	require.Equal(t, model.WorkOrderPending, workOrder.Status, "failed accept leaves the order untouched")
	require.Len(t, workOrder.History, 1)
}

func TestWorkOrderAcceptanceCreatesLinkedBatch(t *testing.T) {
	h := newHarness(t)
	h.standardAccounts()
	createWorkOrder(h, keyBuyer, "wo-1", 3)

	h.mustApply(keyArtisan, "accept/work_order", map[string]any{"work_order": "wo-1"})

	workOrder := h.asset("wo-1", "work_order").(*model.WorkOrder)
	require.Equal(t, model.WorkOrderAccepted, workOrder.Status)
	require.NotEmpty(t, workOrder.Batch, "acceptance mints the production batch")

	batch := h.asset(workOrder.Batch, "product_batch").(*model.ProductBatch)
	require.Equal(t, "wo-1", batch.WorkOrder, "batch links back to its order")
	require.Equal(t, keyArtisan, batch.Producer)
	require.Equal(t, model.BatchInProgress, batch.Status)
	require.Equal(t, "3", batch.Quantity.String())
	require.Equal(t, "walnut wood jewelry box", batch.ProductDescription)

	artisan := h.account(keyArtisan).(*model.ArtisanAccount)
	require.Contains(t, artisan.WorkOrdersAccepted, "wo-1")

	// Exactly one acceptance entry lands on each side.
	require.Len(t, workOrder.History, 2)
	acceptEntries := 0
	for _, entry := range artisan.History {
		if entry.Event == "accept/work_order" {
			acceptEntries++
		}
	}
	require.Equal(t, 1, acceptEntries)
}

func TestWorkOrderRejectionRequiresReason(t *testing.T) {
	h := newHarness(t)
	h.standardAccounts()
	createWorkOrder(h, keyBuyer, "wo-1", 3)

	err := h.apply(keyArtisan, "reject/work_order", map[string]any{"work_order": "wo-1"})
	require.Error(t, err)
	require.ErrorContains(t, err, "rejection_reason")

	h.mustApply(keyArtisan, "reject/work_order", map[string]any{
		"work_order":       "wo-1",
		"rejection_reason": "fully booked this season",
	})

	workOrder := h.asset("wo-1", "work_order").(*model.WorkOrder)
	require.Equal(t, model.WorkOrderRejected, workOrder.Status)
	require.Equal(t, "fully booked this season", workOrder.RejectionReason)
	require.Empty(t, workOrder.Batch, "rejection mints no batch")
}

func TestWorkOrderStateMachine(t *testing.T) {
	h := newHarness(t)
	h.standardAccounts()
	createWorkOrder(h, keyBuyer, "wo-1", 3)

	// Completing a pending order skips the accepted state and fails.
	err := h.apply(keyArtisan, "complete/work_order", map[string]any{"work_order": "wo-1"})
	require.Error(t, err)
	require.ErrorContains(t, err, "only accepted orders")

	h.mustApply(keyArtisan, "accept/work_order", map[string]any{"work_order": "wo-1"})

	// Accepting twice fails.
	err = h.apply(keyArtisan, "accept/work_order", map[string]any{"work_order": "wo-1"})
	require.Error(t, err)
	require.ErrorContains(t, err, "only pending orders")
}

func TestWorkOrderCompletionMintsProducts(t *testing.T) {
	h := newHarness(t)
	h.standardAccounts()
	createWorkOrder(h, keyBuyer, "wo-1", 3)
	h.mustApply(keyArtisan, "accept/work_order", map[string]any{"work_order": "wo-1"})

	h.mustApply(keyArtisan, "complete/work_order", map[string]any{
		"work_order":     "wo-1",
		"unit_price_usd": 45.5,
	})

	workOrder := h.asset("wo-1", "work_order").(*model.WorkOrder)
	require.Equal(t, model.WorkOrderCompleted, workOrder.Status)
	require.Equal(t, testTimestamp, workOrder.CompletionDate)

	batch := h.asset(workOrder.Batch, "product_batch").(*model.ProductBatch)
	require.Equal(t, model.BatchCompleted, batch.Status)
	require.Equal(t, 3, batch.UnitsProduced)

	// One product per unit, deterministic serials.
	for serial := 1; serial <= 3; serial++ {
		uid := batch.UID + "-" + string(rune('0'+serial))
		product := h.asset(uid, "product").(*model.Product)
		require.Equal(t, serial, product.SerialNo)
		require.Equal(t, batch.UID, product.Batch)
		require.Equal(t, keyArtisan, product.AssetOwner)
		require.Equal(t, "45.5", product.PriceUSD.String())
	}
}

func TestAddRawMaterialToBatch(t *testing.T) {
	h := newHarness(t)
	h.standardAccounts()

	h.mustApply(keySupplier, "create/asset", map[string]any{
		"asset_type":    "raw_material",
		"uid":           "rm-1",
		"material_type": "walnut wood",
		"quantity":      100,
		"quantity_unit": "kg",
	})
	h.mustApply(keyArtisan, "create/asset", map[string]any{
		"asset_type": "product_batch",
		"uid":        "batch-1",
		"quantity":   10,
		"unit":       "pieces",
	})

	h.mustApply(keyArtisan, "add/raw_material", map[string]any{
		"batch":          "batch-1",
		"raw_material":   "rm-1",
		"usage_quantity": 25,
	})

	batch := h.asset("batch-1", "product_batch").(*model.ProductBatch)
	require.Len(t, batch.RawMaterials, 1)
	require.Equal(t, "rm-1", batch.RawMaterials[0].RawMaterial)
	require.Equal(t, "25", batch.RawMaterials[0].UsageQuantity.String())

	material := h.asset("rm-1", "raw_material").(*model.RawMaterial)
	require.Equal(t, "75", material.Quantity.String())
	require.Equal(t, keyArtisan, material.ProcessorPublicKey, "first use pins the processor")
	require.Len(t, material.BatchesUsedIn, 1)

	supplier := h.account(keySupplier).(*model.SupplierAccount)
	require.Contains(t, supplier.RawMaterialsSupplied, "rm-1")
}

func TestAddRawMaterialOverdraw(t *testing.T) {
	h := newHarness(t)
	h.standardAccounts()

	h.mustApply(keySupplier, "create/asset", map[string]any{
		"asset_type": "raw_material",
		"uid":        "rm-1",
		"quantity":   10,
	})
	h.mustApply(keyArtisan, "create/asset", map[string]any{
		"asset_type": "product_batch",
		"uid":        "batch-1",
	})

	err := h.apply(keyArtisan, "add/raw_material", map[string]any{
		"batch":          "batch-1",
		"raw_material":   "rm-1",
		"usage_quantity": 11,
	})
	require.Error(t, err)
	require.ErrorContains(t, err, "does not have the requested quantity")

	// The staged subtraction is discarded with the transaction.
	material := h.asset("rm-1", "raw_material").(*model.RawMaterial)
	require.Equal(t, "10", material.Quantity.String())
}

func TestDirectBatchCompletion(t *testing.T) {
	h := newHarness(t)
	h.standardAccounts()

	h.mustApply(keyArtisan, "create/asset", map[string]any{
		"asset_type": "product_batch",
		"uid":        "batch-1",
		"quantity":   2,
		"unit":       "pieces",
	})

	h.mustApply(keyArtisan, "complete/batch", map[string]any{"batch": "batch-1"})

	batch := h.asset("batch-1", "product_batch").(*model.ProductBatch)
	require.Equal(t, keyArtisan, batch.Producer)
	require.Equal(t, model.BatchCompleted, batch.Status)
	require.Equal(t, 2, batch.UnitsProduced)
	require.True(t, h.hasAsset("batch-1-1", "product"))
	require.True(t, h.hasAsset("batch-1-2", "product"))
	require.False(t, h.hasAsset("batch-1-3", "product"))
}

func TestMintedUIDsAreDeterministic(t *testing.T) {
	// Two nodes replaying the same transactions must mint the same uids,
	// or their state roots diverge.
	run := func() (batchUID, materialUID string) {
		h := newHarness(t)
		h.standardAccounts()
		createWorkOrder(h, keyBuyer, "wo-1", 3)
		h.mustApply(keyArtisan, "accept/work_order", map[string]any{"work_order": "wo-1"})
		h.mustApply(keySupplier, "create/asset", map[string]any{
			"asset_type": "raw_material",
			"quantity":   10,
		})

		workOrder := h.asset("wo-1", "work_order").(*model.WorkOrder)
		assets := h.account(keySupplier).AccountBase().Assets
		require.NotEmpty(t, assets)
		return workOrder.Batch, assets[len(assets)-1]
	}

	batch1, material1 := run()
	batch2, material2 := run()
	require.Equal(t, batch1, batch2)
	require.Equal(t, material1, material2)
	require.NotEqual(t, batch1, material1)
	// Minted uids carry hyphens so they read as asset identifiers.
	require.Contains(t, batch1, "-")
	require.Contains(t, material1, "-")
}

func TestWorkOrderBatchCannotCompleteDirectly(t *testing.T) {
	h := newHarness(t)
	h.standardAccounts()
	createWorkOrder(h, keyBuyer, "wo-1", 3)
	h.mustApply(keyArtisan, "accept/work_order", map[string]any{"work_order": "wo-1"})

	workOrder := h.asset("wo-1", "work_order").(*model.WorkOrder)
	err := h.apply(keyArtisan, "complete/batch", map[string]any{"batch": workOrder.Batch})
	require.Error(t, err)
	require.ErrorContains(t, err, "completes through it")
}

func TestAssetCreationPolicy(t *testing.T) {
	h := newHarness(t)
	h.standardAccounts()

	// Buyers may order work but never mint raw materials.
	err := h.apply(keyBuyer, "create/asset", map[string]any{
		"asset_type": "raw_material",
		"uid":        "rm-1",
	})
	var permission *engine.PermissionError
	require.ErrorAs(t, err, &permission)
	require.False(t, h.hasAsset("rm-1", "raw_material"))

	// Products are minted by completion, never directly.
	err = h.apply(keyArtisan, "create/asset", map[string]any{
		"asset_type": "product",
		"uid":        "p-1",
	})
	require.Error(t, err)
	require.ErrorContains(t, err, "direct creation of products")
}

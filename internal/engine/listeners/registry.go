package listeners

import (
	"github.com/craftlore/craftlore-go/internal/config"
	"github.com/craftlore/craftlore-go/internal/engine"
)

// RegisterAll wires the full listener inventory into the manager. The
// order below is part of the dispatch contract: listeners registered
// earlier win ties within a priority level, so every node must register
// in exactly this order.
func RegisterAll(m *engine.Manager, cfg config.Config) {
	// Field policy runs ahead of every creator and editor.
	m.Register(NewFieldPolicyEnforcer())

	// Creators.
	m.Register(NewAccountCreator())
	m.Register(NewAssetCreator())
	m.Register(NewAdminCreator())
	m.Register(NewBootstrapHandler())
	m.Register(NewCertificationIssuer())

	// Updaters. OwnerHistory precedes EntityHistory at equal priority.
	m.Register(NewOwnerHistoryUpdater())
	m.Register(NewEntityHistoryUpdater())
	m.Register(NewWorkOrderAssigneeUpdater())
	m.Register(NewWorkOrderProgressUpdater())
	m.Register(NewSubAssigneeUpdater())
	m.Register(NewBatchProducerUpdater())
	m.Register(NewBatchUpdater())
	m.Register(NewProductsCreator())
	m.Register(NewRawMaterialBatchUpdater())
	m.Register(NewAssetsTransferrer())
	m.Register(NewTransferLogisticsLinker())
	m.Register(NewPackagingProductsUpdater())
	m.Register(NewProductUnpacker())
	m.Register(NewEntityEditor())
	m.Register(NewEntityDeleter())
	m.Register(NewEntityAuthenticator())
	m.Register(NewModeratorEditor())
	m.Register(NewCertificateHolderUpdater())
	m.Register(NewAdminActionsUpdater())

	// Indexes.
	m.Register(NewEmailIndexUpdater())

	// Validators close their chains.
	m.Register(NewCreatorAccountValidator(cfg))
	m.Register(NewAssigneeAccountValidator(cfg))
	m.Register(NewAcceptContextValidator())
	m.Register(NewSubAssignmentValidator())
	m.Register(NewBatchCompletionValidator())
	m.Register(NewRawMaterialAdditionValidator())
	m.Register(NewTransferValidator())
	m.Register(NewAdminAccountValidator())
}

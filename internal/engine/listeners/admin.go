package listeners

import (
	"context"
	"fmt"

	"github.com/craftlore/craftlore-go/internal/addressing"
	"github.com/craftlore/craftlore-go/internal/engine"
	"github.com/craftlore/craftlore-go/internal/model"
)

// resolveSignerAdmin loads the signer's admin account into the shared
// context. Admin-only chains call it first; a signer without an admin
// account cannot run them.
func resolveSignerAdmin(ctx context.Context, ev *engine.EventContext) error {
	if ev.Shared.Admin != nil {
		return nil
	}
	account, addr, err := ev.GetAccount(ctx, ev.SignerPublicKey)
	if err != nil {
		return err
	}
	admin, ok := account.(*model.AdminAccount)
	if !ok {
		return engine.Permissionf("signer is not an admin account")
	}
	ev.Shared.Admin = admin
	ev.Shared.AdminAddress = addr
	return nil
}

// AdminCreator materializes an admin account for the public key named
// in the payload. Unlike regular account creation the signer and the
// new account differ: only an existing super admin may mint admins,
// which the admin validator enforces at the end of the chain.
type AdminCreator struct {
	base
}

func NewAdminCreator() *AdminCreator {
	return &AdminCreator{base{
		name: "AdminCreator",
		priorities: map[engine.EventType]int{
			engine.AdminCreated: 1000,
		},
	}}
}

func (l *AdminCreator) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	if err := resolveSignerAdmin(ctx, ev); err != nil {
		return err
	}

	fields := ev.Fields()
	publicKey, ok := ev.StringField("public_key")
	if !ok {
		return engine.Validationf("admin creation requires a public_key field")
	}
	if publicKey == ev.SignerPublicKey {
		return engine.Validationf("admins cannot mint an admin account for themselves")
	}

	account, err := model.NewAccount(model.AccountAdmin)
	if err != nil {
		return err
	}
	if err := model.PopulateFromPayload(account, fields); err != nil {
		return err
	}

	admin := account.(*model.AdminAccount)
	admin.PublicKey = publicKey
	admin.CreatedTimestamp = ev.Timestamp
	if admin.Email == "" {
		return engine.Validationf("admin creation requires an email field")
	}
	if level, ok := ev.StringField("permission_level"); ok {
		switch model.AdminPermissionLevel(level) {
		case model.AdminModerator, model.AdminAuthenticator, model.AdminSuperAdmin, model.AdminCertifier:
			admin.PermissionLevel = model.AdminPermissionLevel(level)
		default:
			return engine.Validationf("unknown permission level %q", level)
		}
	}

	addr := addressing.Account(publicKey)
	exists, err := ev.HasState(ctx, addr)
	if err != nil {
		return err
	}
	if exists {
		return engine.Validationf("account %q already exists", publicKey)
	}
	if err := ev.SetState(ctx, addr, admin); err != nil {
		return err
	}

	ev.Shared.Entity = admin
	ev.Shared.EntityAddress = addr
	return nil
}

// bootstrapRecord marks that the one-time bootstrap ran.
type bootstrapRecord struct {
	Complete   bool   `json:"complete"`
	SuperAdmin string `json:"super_admin"`
	Timestamp  string `json:"timestamp"`
}

// BootstrapHandler mints the first super admin. It runs exactly once
// per ledger: the singleton bootstrap address guards re-runs.
type BootstrapHandler struct {
	base
}

func NewBootstrapHandler() *BootstrapHandler {
	return &BootstrapHandler{base{
		name: "BootstrapHandler",
		priorities: map[engine.EventType]int{
			engine.Bootstrap: 1000,
		},
	}}
}

func (l *BootstrapHandler) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	guard := addressing.Bootstrap()
	done, err := ev.HasState(ctx, guard)
	if err != nil {
		return err
	}
	if done {
		return engine.Validationf("ledger is already bootstrapped")
	}

	account, err := model.NewAccount(model.AccountAdmin)
	if err != nil {
		return err
	}
	admin := account.(*model.AdminAccount)
	admin.PublicKey = ev.SignerPublicKey
	admin.CreatedTimestamp = ev.Timestamp
	admin.PermissionLevel = model.AdminSuperAdmin
	email, ok := ev.StringField("email")
	if !ok {
		return engine.Validationf("bootstrap requires an email field")
	}
	admin.Email = email
	admin.AppendHistory(ev.NewHistoryEntry(l.name, admin.PublicKey))

	addr := addressing.Account(admin.PublicKey)
	exists, err := ev.HasState(ctx, addr)
	if err != nil {
		return err
	}
	if exists {
		return engine.Validationf("bootstrap signer already has an account")
	}
	if err := ev.SetState(ctx, addr, admin); err != nil {
		return err
	}
	if err := ev.SetState(ctx, guard, bootstrapRecord{
		Complete:   true,
		SuperAdmin: admin.PublicKey,
		Timestamp:  ev.Timestamp,
	}); err != nil {
		return err
	}

	ev.Shared.Entity = admin
	ev.Shared.EntityAddress = addr
	return nil
}

// AdminActionsUpdater appends the event to the signing admin's action
// ledger. Every admin-signed chain carries it so the account itself
// documents everything done with its authority.
type AdminActionsUpdater struct {
	base
}

func NewAdminActionsUpdater() *AdminActionsUpdater {
	return &AdminActionsUpdater{base{
		name: "AdminActionsUpdater",
		priorities: map[engine.EventType]int{
			engine.AdminCreated:        0,
			engine.CertificationIssued: -300,
			engine.EntityAuthenticated: -300,
			engine.ModeratorEdited:     -300,
		},
	}}
}

func (l *AdminActionsUpdater) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	// Re-read through the provider instead of reusing the copy cached
	// by resolveSignerAdmin: earlier listeners in the chain may have
	// staged writes to the signer's account (asset list, history).
	account, addr, err := ev.GetAccount(ctx, ev.SignerPublicKey)
	if err != nil {
		return err
	}
	admin, ok := account.(*model.AdminAccount)
	if !ok {
		return engine.Permissionf("signer is not an admin account")
	}

	target := ""
	if ev.Shared.Entity != nil {
		target = ev.Shared.Entity.Identifier()
	}
	admin.Actions = append(admin.Actions, model.AdminAction{
		Details:     fmt.Sprintf("%s %s", ev.EventType, target),
		Transaction: ev.Signature,
		Timestamp:   ev.Timestamp,
	})
	if err := ev.SetState(ctx, addr, admin); err != nil {
		return err
	}

	ev.Shared.Admin = admin
	ev.Shared.AdminAddress = addr
	return nil
}

// adminAuthority maps each admin-only event to the permission levels
// allowed to sign it. Super admins may sign everything.
var adminAuthority = map[engine.EventType][]model.AdminPermissionLevel{
	engine.AdminCreated:        {},
	engine.CertificationIssued: {model.AdminCertifier},
	engine.EntityAuthenticated: {model.AdminAuthenticator},
	engine.ModeratorEdited:     {model.AdminModerator},
}

// AdminAccountValidator closes every admin chain: the signing admin
// must exist, be active and hold a permission level that covers the
// event.
type AdminAccountValidator struct {
	base
}

func NewAdminAccountValidator() *AdminAccountValidator {
	return &AdminAccountValidator{base{
		name: "AdminAccountValidator",
		priorities: map[engine.EventType]int{
			engine.AdminCreated:        -1000,
			engine.CertificationIssued: -1000,
			engine.EntityAuthenticated: -1000,
			engine.ModeratorEdited:     -1000,
		},
	}}
}

func (l *AdminAccountValidator) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	if err := resolveSignerAdmin(ctx, ev); err != nil {
		return err
	}
	admin := ev.Shared.Admin
	if admin.IsDeleted {
		return engine.Permissionf("admin account is deleted")
	}
	if admin.Status != model.AdminActive {
		return engine.Permissionf("admin account is %s", admin.Status)
	}
	if admin.PermissionLevel == model.AdminSuperAdmin {
		return nil
	}
	for _, allowed := range adminAuthority[ev.EventType] {
		if admin.PermissionLevel == allowed {
			return nil
		}
	}
	return engine.Permissionf("permission level %s cannot sign %s", admin.PermissionLevel, ev.EventType)
}

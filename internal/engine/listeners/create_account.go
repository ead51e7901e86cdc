package listeners

import (
	"context"

	"github.com/craftlore/craftlore-go/internal/addressing"
	"github.com/craftlore/craftlore-go/internal/engine"
	"github.com/craftlore/craftlore-go/internal/model"
)

// AccountCreator materializes a new account record from the creation
// payload. The signer becomes the account's public key; forbidden
// fields were already stripped upstream, so whatever remains in the
// payload is payload-settable by contract.
type AccountCreator struct {
	base
}

func NewAccountCreator() *AccountCreator {
	return &AccountCreator{base{
		name: "AccountCreator",
		priorities: map[engine.EventType]int{
			engine.AccountCreated: 1000,
		},
	}}
}

func (l *AccountCreator) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	fields := ev.Fields()
	if len(fields) == 0 {
		return engine.Validationf("missing 'fields' in account creation payload")
	}

	accountType, ok := ev.StringField("account_type")
	if !ok {
		return engine.Validationf("account creation requires an account_type field")
	}
	if model.AccountType(accountType) == model.AccountAdmin {
		return engine.Validationf("admin accounts are created through the admin creation action")
	}

	account, err := model.NewAccount(model.AccountType(accountType))
	if err != nil {
		return engine.Validationf("unsupported account type %q", accountType)
	}
	if err := model.PopulateFromPayload(account, fields); err != nil {
		return err
	}

	env := account.AccountBase()
	env.PublicKey = ev.SignerPublicKey
	env.CreatedTimestamp = ev.Timestamp
	if env.Email == "" {
		return engine.Validationf("account creation requires an email field")
	}

	addr := addressing.Account(env.PublicKey)
	exists, err := ev.HasState(ctx, addr)
	if err != nil {
		return err
	}
	if exists {
		return engine.Validationf("account already exists")
	}

	if err := ev.SetState(ctx, addr, account); err != nil {
		return err
	}

	ev.Shared.Entity = account
	ev.Shared.EntityAddress = addr
	return nil
}

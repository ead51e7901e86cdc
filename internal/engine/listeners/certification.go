package listeners

import (
	"context"

	"github.com/craftlore/craftlore-go/internal/addressing"
	"github.com/craftlore/craftlore-go/internal/engine"
	"github.com/craftlore/craftlore-go/internal/model"
)

// CertificationIssuer mints a certification asset signed by a certifier
// admin. The issuer is always the signer; the holder is named in the
// payload and updated further down the chain.
type CertificationIssuer struct {
	base
}

func NewCertificationIssuer() *CertificationIssuer {
	return &CertificationIssuer{base{
		name: "CertificationIssuer",
		priorities: map[engine.EventType]int{
			engine.CertificationIssued: 1000,
		},
	}}
}

func (l *CertificationIssuer) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	if err := resolveSignerAdmin(ctx, ev); err != nil {
		return err
	}

	fields := ev.Fields()
	if len(fields) == 0 {
		return engine.Validationf("missing 'fields' in certification payload")
	}

	asset, err := model.NewAsset(model.AssetCertification)
	if err != nil {
		return err
	}
	if err := model.PopulateFromPayload(asset, fields); err != nil {
		return err
	}

	cert := asset.(*model.Certification)
	cert.AssetOwner = ev.SignerPublicKey
	cert.CreatedTimestamp = ev.Timestamp
	cert.Issuer = ev.SignerPublicKey
	cert.IssueTimestamp = ev.Timestamp
	if cert.UID == "" {
		cert.UID = mintUID(ev)
	}
	if cert.Title == "" {
		return engine.Validationf("certification requires a title field")
	}
	if cert.Holder == "" {
		return engine.Validationf("certification requires a holder field")
	}

	addr := addressing.Asset(cert.UID, string(model.AssetCertification))
	exists, err := ev.HasState(ctx, addr)
	if err != nil {
		return err
	}
	if exists {
		return engine.Validationf("certification %q already exists", cert.UID)
	}
	if err := ev.SetState(ctx, addr, cert); err != nil {
		return err
	}

	ev.Shared.Entity = cert
	ev.Shared.EntityAddress = addr
	return nil
}

// CertificateHolderUpdater attaches the freshly issued certification to
// its holder, which may be an account or an asset.
type CertificateHolderUpdater struct {
	base
}

func NewCertificateHolderUpdater() *CertificateHolderUpdater {
	return &CertificateHolderUpdater{base{
		name: "CertificateHolderUpdater",
		priorities: map[engine.EventType]int{
			engine.CertificationIssued: -200,
		},
	}}
}

func (l *CertificateHolderUpdater) OnEvent(ctx context.Context, ev *engine.EventContext) error {
	cert, ok := ev.Shared.Entity.(*model.Certification)
	if !ok || cert == nil {
		return engine.Validationf("no certification in event context for CertificateHolderUpdater")
	}

	var (
		holder model.Entity
		addr   addressing.Address
		err    error
	)
	if isAssetIdentifier(cert.Holder) {
		holder, addr, err = ev.GetAsset(ctx, cert.Holder)
	} else {
		holder, addr, err = ev.GetAccount(ctx, cert.Holder)
	}
	if err != nil {
		return err
	}
	if holder.Base().IsDeleted {
		return engine.Validationf("certification holder %q is deleted", cert.Holder)
	}

	env := holder.Base()
	env.Certifications = append(env.Certifications, cert.UID)
	env.AppendHistory(ev.NewHistoryEntry(l.name, holder.Identifier(), cert.UID))
	if err := ev.SetState(ctx, addr, holder); err != nil {
		return err
	}

	ev.Shared.Holder = holder
	ev.Shared.HolderAddress = addr
	return nil
}

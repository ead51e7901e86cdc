package model

// TPVersion is stamped into every record envelope.
const TPVersion = "1.0"

// Envelope carries the fields every entity record shares.
type Envelope struct {
	TPVersion            string               `json:"tp_version"`
	Certifications       []string             `json:"certifications"`
	AuthenticationStatus AuthenticationStatus `json:"authentication_status"`
	CreatedTimestamp     string               `json:"created_timestamp"`
	UpdatedTimestamp     string               `json:"updated_timestamp"`
	IsDeleted            bool                 `json:"is_deleted"`
	DeletionReason       string               `json:"deletion_reason,omitempty"`
	History              []HistoryEntry       `json:"history"`
}

// AppendHistory appends one entry to the append-only history log.
// Entries are never mutated or removed.
func (e *Envelope) AppendHistory(entry HistoryEntry) {
	e.History = append(e.History, entry)
}

// Entity is the common surface of accounts and assets.
type Entity interface {
	// Identifier returns the primary identifier: the public key for an
	// account, the uid for an asset.
	Identifier() string
	// Base returns the shared envelope for mutation.
	Base() *Envelope
}

// AccountEnvelope carries the fields every account variant shares.
type AccountEnvelope struct {
	Envelope
	PublicKey        string      `json:"public_key"`
	Email            string      `json:"email"`
	AccountType      AccountType `json:"account_type"`
	Assets           []string    `json:"assets"`
	WorkOrdersIssued []string    `json:"work_orders_issued"`
	Region           string      `json:"region"`
	Specializations  []string    `json:"specializations"`
}

func (a *AccountEnvelope) Identifier() string            { return a.PublicKey }
func (a *AccountEnvelope) Base() *Envelope               { return &a.Envelope }
func (a *AccountEnvelope) AccountBase() *AccountEnvelope { return a }
func (a *AccountEnvelope) Kind() AccountType             { return a.AccountType }

// Account is implemented by every account variant.
type Account interface {
	Entity
	AccountBase() *AccountEnvelope
	Kind() AccountType
}

// SupplierAccount sources raw materials.
type SupplierAccount struct {
	AccountEnvelope
	RawMaterialsSupplied []string `json:"raw_materials_supplied"`
	RawMaterialsCreated  []string `json:"raw_materials_created"`
	SupplierType         string   `json:"supplier_type"`
}

// ArtisanAccount produces finished goods.
type ArtisanAccount struct {
	AccountEnvelope
	SkillLevel             ArtisanSkillLevel `json:"skill_level"`
	CraftCategories        []string          `json:"craft_categories"`
	YearsOfExperience      int               `json:"years_of_experience"`
	TraditionalTechniques  []string          `json:"traditional_techniques"`
	WorkOrdersAssigned     []string          `json:"work_orders_assigned"`
	WorkOrdersAccepted     []string          `json:"work_orders_accepted"`
	WorkOrdersRejected     []string          `json:"work_orders_rejected"`
	WorkOrdersCompleted    []string          `json:"work_orders_completed"`
	SubAssignments         []string          `json:"sub_assignments"`
	SubAssignmentsAccepted []string          `json:"sub_assignments_accepted"`
	SubAssignmentsRejected []string          `json:"sub_assignments_rejected"`
}

// BuyerAccount orders work and purchases products.
type BuyerAccount struct {
	AccountEnvelope
	BuyerType BuyerType `json:"buyer_type"`
}

// AdminAccount manages the platform. Its action ledger records every
// admin event the account signed.
type AdminAccount struct {
	AccountEnvelope
	PermissionLevel AdminPermissionLevel `json:"permission_level"`
	Actions         []AdminAction        `json:"actions"`
	Status          AdminAccountStatus   `json:"status"`
}

// NewAccount returns a zero account of the given type with engine
// defaults applied: empty lists, pending authentication, current
// tp_version. Unknown types are rejected.
func NewAccount(t AccountType) (Account, error) {
	env := AccountEnvelope{
		Envelope: Envelope{
			TPVersion:            TPVersion,
			Certifications:       []string{},
			AuthenticationStatus: AuthPending,
			History:              []HistoryEntry{},
		},
		AccountType:      t,
		Assets:           []string{},
		WorkOrdersIssued: []string{},
		Specializations:  []string{},
	}

	switch t {
	case AccountSupplier:
		return &SupplierAccount{
			AccountEnvelope:      env,
			RawMaterialsSupplied: []string{},
			RawMaterialsCreated:  []string{},
		}, nil
	case AccountArtisan:
		return &ArtisanAccount{
			AccountEnvelope:        env,
			CraftCategories:        []string{},
			TraditionalTechniques:  []string{},
			WorkOrdersAssigned:     []string{},
			WorkOrdersAccepted:     []string{},
			WorkOrdersRejected:     []string{},
			WorkOrdersCompleted:    []string{},
			SubAssignments:         []string{},
			SubAssignmentsAccepted: []string{},
			SubAssignmentsRejected: []string{},
		}, nil
	case AccountBuyer:
		return &BuyerAccount{
			AccountEnvelope: env,
			BuyerType:       BuyerEndCustomer,
		}, nil
	case AccountAdmin:
		return &AdminAccount{
			AccountEnvelope: env,
			PermissionLevel: AdminModerator,
			Actions:         []AdminAction{},
			Status:          AdminActive,
		}, nil
	default:
		return nil, &UnknownTypeError{Kind: "account", Tag: string(t)}
	}
}

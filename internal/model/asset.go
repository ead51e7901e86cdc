package model

import "github.com/shopspring/decimal"

// AssetEnvelope carries the fields every asset variant shares.
type AssetEnvelope struct {
	Envelope
	UID               string    `json:"uid"`
	AssetOwner        string    `json:"asset_owner"`
	AssetType         AssetType `json:"asset_type"`
	TransferLogistics []string  `json:"transfer_logistics"`
	PreviousOwners    []string  `json:"previous_owners"`
}

func (a *AssetEnvelope) Identifier() string        { return a.UID }
func (a *AssetEnvelope) Base() *Envelope           { return &a.Envelope }
func (a *AssetEnvelope) AssetBase() *AssetEnvelope { return a }
func (a *AssetEnvelope) Kind() AssetType           { return a.AssetType }

// Asset is implemented by every asset variant.
type Asset interface {
	Entity
	AssetBase() *AssetEnvelope
	Kind() AssetType
}

// UsageRecord links a raw material to a batch it was consumed by.
type UsageRecord struct {
	Batch         string          `json:"batch"`
	RawMaterial   string          `json:"raw_material"`
	UsageQuantity decimal.Decimal `json:"usage_quantity"`
}

// RawMaterial is produced by suppliers and consumed by batches.
type RawMaterial struct {
	AssetEnvelope
	MaterialType       string          `json:"material_type"`
	Supplier           string          `json:"supplier"`
	Quantity           decimal.Decimal `json:"quantity"`
	QuantityUnit       string          `json:"quantity_unit"`
	UnitPriceUSD       decimal.Decimal `json:"unit_price_usd"`
	ProcessorPublicKey string          `json:"processor_public_key"`
	HarvestedDate      string          `json:"harvested_date"`
	SourceLocation     string          `json:"source_location"`
	BatchesUsedIn      []UsageRecord   `json:"batches_used_in"`
}

// WorkOrder is handed to an artisan for production or repair.
type WorkOrder struct {
	AssetEnvelope
	Assigner                string          `json:"assigner"`
	Assignee                string          `json:"assignee"`
	Batch                   string          `json:"batch"`
	Status                  WorkOrderStatus `json:"status"`
	RejectionReason         string          `json:"rejection_reason"`
	WorkType                WorkOrderType   `json:"work_type"`
	EstimatedCompletionDate string          `json:"estimated_completion_date"`
	CompletionDate          string          `json:"completion_date"`
	OrderQuantity           int             `json:"order_quantity"`
	OrderQuantityUnit       string          `json:"order_quantity_unit"`
	SubAssignees            []string        `json:"sub_assignees"`
	TotalPriceUSD           decimal.Decimal `json:"total_price_usd"`
	ProductDescription      string          `json:"product_description"`
	Specifications          []string        `json:"specifications"`
	DesignReference         string          `json:"design_reference"`
	SpecialInstructions     string          `json:"special_instructions"`
}

// ProductBatch groups products produced together, either directly or
// through a work order.
type ProductBatch struct {
	AssetEnvelope
	Producer            string          `json:"producer"`
	Quantity            decimal.Decimal `json:"quantity"`
	Unit                string          `json:"unit"`
	ProductDescription  string          `json:"product_description"`
	Specifications      []string        `json:"specifications"`
	DesignReference     string          `json:"design_reference"`
	SpecialInstructions string          `json:"special_instructions"`
	Status              BatchStatus     `json:"status"`
	WorkOrder           string          `json:"work_order"`
	ProductionDate      string          `json:"production_date"`
	UnitsProduced       int             `json:"units_produced"`
	SubAssignees        []string        `json:"sub_assignees"`
	SubAssignments      []string        `json:"sub_assignments"`
	RawMaterials        []UsageRecord   `json:"raw_materials"`
}

// Product is one unit minted from a completed batch.
type Product struct {
	AssetEnvelope
	Batch     string          `json:"batch"`
	SerialNo  int             `json:"serial_no"`
	PriceUSD  decimal.Decimal `json:"price_usd"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
	Packaging string          `json:"packaging"`
}

// SubAssignment contracts part of a batch to another artisan.
type SubAssignment struct {
	AssetEnvelope
	Batch           string              `json:"batch"`
	PayUSD          decimal.Decimal     `json:"pay_usd"`
	TaskDescription string              `json:"task_description"`
	Status          SubAssignmentStatus `json:"status"`
	Assignee        string              `json:"assignee"`
	Assigner        string              `json:"assigner"`
	RejectionReason string              `json:"rejection_reason"`
	IsPaid          bool                `json:"is_paid"`
}

// Certification is a generic certificate (GI, ISO, ...) issued by a
// certifier admin to an account or an asset.
type Certification struct {
	AssetEnvelope
	Title           string         `json:"title"`
	IssueTimestamp  string         `json:"issue_timestamp"`
	ExpiryTimestamp string         `json:"expiry_timestamp"`
	Issuer          string         `json:"issuer"`
	Holder          string         `json:"holder"`
	Description     string         `json:"description"`
	Fields          map[string]any `json:"fields"`
}

// Packaging groups finished products for shipment.
type Packaging struct {
	AssetEnvelope
	Products      []string        `json:"products"`
	PackageType   string          `json:"package_type"`
	PriceUSD      decimal.Decimal `json:"price_usd"`
	MaterialsUsed []string        `json:"materials_used"`
	Labelling     map[string]any  `json:"labelling"`
	SealID        string          `json:"seal_id"`
	NetWeight     decimal.Decimal `json:"net_weight"`
	GrossWeight   decimal.Decimal `json:"gross_weight"`
	PackageWidth  decimal.Decimal `json:"package_width"`
	PackageHeight decimal.Decimal `json:"package_height"`
}

// Logistics records one movement of packaged goods.
type Logistics struct {
	AssetEnvelope
	Transaction           string          `json:"transaction"`
	Assets                []string        `json:"assets"`
	Carrier               string          `json:"carrier"`
	TrackingID            string          `json:"tracking_id"`
	Origin                string          `json:"origin"`
	Destination           string          `json:"destination"`
	Recipient             string          `json:"recipient"`
	TransitPoints         []string        `json:"transit_points"`
	DispatchDate          string          `json:"dispatch_date"`
	EstimatedDeliveryDate string          `json:"estimated_delivery_date"`
	FreightCostUSD        decimal.Decimal `json:"freight_cost_usd"`
	InsuranceDetails      map[string]any  `json:"insurance_details"`
}

// NewAsset returns a zero asset of the given type with engine defaults
// applied. Unknown types are rejected.
func NewAsset(t AssetType) (Asset, error) {
	env := AssetEnvelope{
		Envelope: Envelope{
			TPVersion:            TPVersion,
			Certifications:       []string{},
			AuthenticationStatus: AuthPending,
			History:              []HistoryEntry{},
		},
		AssetType:         t,
		TransferLogistics: []string{},
		PreviousOwners:    []string{},
	}

	switch t {
	case AssetRawMaterial:
		return &RawMaterial{AssetEnvelope: env, BatchesUsedIn: []UsageRecord{}}, nil
	case AssetWorkOrder:
		return &WorkOrder{
			AssetEnvelope:  env,
			Status:         WorkOrderPending,
			WorkType:       WorkProduction,
			SubAssignees:   []string{},
			Specifications: []string{},
		}, nil
	case AssetProductBatch:
		return &ProductBatch{
			AssetEnvelope:  env,
			Status:         BatchInProgress,
			Specifications: []string{},
			SubAssignees:   []string{},
			SubAssignments: []string{},
			RawMaterials:   []UsageRecord{},
		}, nil
	case AssetProduct:
		return &Product{AssetEnvelope: env}, nil
	case AssetSubAssignment:
		return &SubAssignment{AssetEnvelope: env, Status: SubAssignmentPending}, nil
	case AssetCertification:
		return &Certification{AssetEnvelope: env, Fields: map[string]any{}}, nil
	case AssetPackaging:
		return &Packaging{
			AssetEnvelope: env,
			Products:      []string{},
			MaterialsUsed: []string{},
			Labelling:     map[string]any{},
		}, nil
	case AssetLogistics:
		return &Logistics{
			AssetEnvelope:    env,
			Assets:           []string{},
			TransitPoints:    []string{},
			InsuranceDetails: map[string]any{},
		}, nil
	default:
		return nil, &UnknownTypeError{Kind: "asset", Tag: string(t)}
	}
}

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FieldSet is a set of JSON field names.
type FieldSet map[string]struct{}

// Has reports membership.
func (s FieldSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func set(names ...string) FieldSet {
	out := make(FieldSet, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

func union(sets ...FieldSet) FieldSet {
	out := FieldSet{}
	for _, s := range sets {
		for n := range s {
			out[n] = struct{}{}
		}
	}
	return out
}

// FieldPolicy declares, for one entity type, the fields a creation
// payload may never set (the engine overwrites them with its own
// defaults) and the only fields an edit transaction may change.
type FieldPolicy struct {
	Forbidden FieldSet
	Editable  FieldSet
}

// Base sets shared by every entity. Subtype tables are derived by set
// union at package init, never by inheritance.
var (
	envelopeForbidden = set(
		"tp_version", "certifications", "authentication_status",
		"created_timestamp", "updated_timestamp",
		"is_deleted", "deletion_reason", "history",
	)

	accountForbidden = union(envelopeForbidden, set(
		"public_key", "assets", "work_orders_issued",
	))
	accountEditable = set("region", "specializations")

	assetForbidden = union(envelopeForbidden, set(
		"asset_owner", "transfer_logistics", "previous_owners",
	))
	assetEditable = FieldSet{}
)

// accountPolicies is the static permission table per account type.
var accountPolicies = map[AccountType]FieldPolicy{
	AccountSupplier: {
		Forbidden: union(accountForbidden, set(
			"raw_materials_supplied", "raw_materials_created",
		)),
		Editable: union(accountEditable, set("supplier_type")),
	},
	AccountArtisan: {
		Forbidden: union(accountForbidden, set(
			"work_orders_assigned", "work_orders_accepted",
			"work_orders_rejected", "work_orders_completed",
			"sub_assignments", "sub_assignments_accepted",
			"sub_assignments_rejected",
		)),
		Editable: union(accountEditable, set(
			"skill_level", "craft_categories",
			"years_of_experience", "traditional_techniques",
		)),
	},
	AccountBuyer: {
		Forbidden: accountForbidden,
		Editable:  union(accountEditable, set("buyer_type")),
	},
	AccountAdmin: {
		Forbidden: union(accountForbidden, set("actions", "status")),
		Editable:  accountEditable,
	},
}

// assetPolicies is the static permission table per asset type. Status
// and rejection-reason fields are engine-managed from creation onward:
// only the listener driving the state machine may progress them.
var assetPolicies = map[AssetType]FieldPolicy{
	AssetRawMaterial: {
		Forbidden: union(assetForbidden, set(
			"supplier", "processor_public_key", "batches_used_in",
		)),
		Editable: union(assetEditable, set("source_location", "unit_price_usd")),
	},
	AssetWorkOrder: {
		Forbidden: union(assetForbidden, set(
			"status", "rejection_reason", "completion_date",
			"batch", "sub_assignees",
		)),
		Editable: union(assetEditable, set(
			"estimated_completion_date", "design_reference",
			"special_instructions",
		)),
	},
	AssetProductBatch: {
		Forbidden: union(assetForbidden, set(
			"status", "producer", "production_date", "units_produced",
			"work_order", "sub_assignees", "sub_assignments",
			"raw_materials",
		)),
		Editable: union(assetEditable, set(
			"design_reference", "special_instructions",
		)),
	},
	AssetProduct: {
		Forbidden: union(assetForbidden, set(
			"batch", "serial_no", "packaging",
		)),
		Editable: union(assetEditable, set("price_usd")),
	},
	AssetSubAssignment: {
		Forbidden: union(assetForbidden, set(
			"status", "rejection_reason", "is_paid",
		)),
		Editable: union(assetEditable, set("task_description")),
	},
	AssetCertification: {
		Forbidden: union(assetForbidden, set("issuer")),
		Editable:  assetEditable,
	},
	AssetPackaging: {
		Forbidden: assetForbidden,
		Editable:  union(assetEditable, set("labelling")),
	},
	AssetLogistics: {
		Forbidden: union(assetForbidden, set("transaction")),
		Editable: union(assetEditable, set(
			"tracking_id", "transit_points",
			"estimated_delivery_date", "insurance_details",
		)),
	},
}

// AccountPolicy returns the permission table for an account type.
func AccountPolicy(t AccountType) (FieldPolicy, bool) {
	p, ok := accountPolicies[t]
	return p, ok
}

// AssetPolicy returns the permission table for an asset type.
func AssetPolicy(t AssetType) (FieldPolicy, bool) {
	p, ok := assetPolicies[t]
	return p, ok
}

// PolicyFor returns the permission table for any entity.
func PolicyFor(e Entity) (FieldPolicy, bool) {
	switch v := e.(type) {
	case Account:
		return AccountPolicy(v.Kind())
	case Asset:
		return AssetPolicy(v.Kind())
	default:
		return FieldPolicy{}, false
	}
}

// Fields renders an entity as its JSON field mapping.
func Fields(e Entity) (map[string]any, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode entity fields: %w", err)
	}
	return out, nil
}

// NoSuchFieldError reports an update naming a field the entity does not
// have.
type NoSuchFieldError struct {
	Field string
}

func (e *NoSuchFieldError) Error() string {
	return fmt.Sprintf("entity has no field %q", e.Field)
}

// ApplyUpdates sets the given fields on the entity and returns the
// before/after values of each. Callers enforce the editable-field
// policy before applying; ApplyUpdates only rejects unknown fields and
// type-incompatible values.
func ApplyUpdates(e Entity, updates map[string]any) (map[string]FieldChange, error) {
	current, err := Fields(e)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]FieldChange, len(updates))
	for name, value := range updates {
		old, ok := current[name]
		if !ok {
			return nil, &NoSuchFieldError{Field: name}
		}
		current[name] = value
		changes[name] = FieldChange{Old: old, New: value}
	}

	raw, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("encode updated entity: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(e); err != nil {
		return nil, fmt.Errorf("apply updates: %w", err)
	}
	return changes, nil
}

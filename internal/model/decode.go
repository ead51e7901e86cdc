package model

import (
	"encoding/json"
	"fmt"

	"github.com/craftlore/craftlore-go/internal/codec"
)

// UnknownTypeError reports an entity type tag with no registered variant.
type UnknownTypeError struct {
	Kind string // "account" or "asset"
	Tag  string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown %s type %q", e.Kind, e.Tag)
}

// DecodeAccount decodes stored bytes into the account variant named by
// the record's account_type tag.
func DecodeAccount(data []byte) (Account, error) {
	var tag struct {
		AccountType AccountType `json:"account_type"`
	}
	if err := codec.Unmarshal(data, &tag); err != nil {
		return nil, err
	}
	account, err := NewAccount(tag.AccountType)
	if err != nil {
		return nil, err
	}
	if err := codec.Unmarshal(data, account); err != nil {
		return nil, err
	}
	return account, nil
}

// DecodeAsset decodes stored bytes into the asset variant named by the
// record's asset_type tag.
func DecodeAsset(data []byte) (Asset, error) {
	var tag struct {
		AssetType AssetType `json:"asset_type"`
	}
	if err := codec.Unmarshal(data, &tag); err != nil {
		return nil, err
	}
	asset, err := NewAsset(tag.AssetType)
	if err != nil {
		return nil, err
	}
	if err := codec.Unmarshal(data, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// PopulateFromPayload fills an entity's payload-settable fields from a
// transaction's fields mapping. Forbidden fields must already be
// stripped by the field-policy listener; anything remaining overwrites
// the engine defaults set by NewAccount/NewAsset.
func PopulateFromPayload(entity Entity, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode payload fields: %w", err)
	}
	return codec.Unmarshal(raw, entity)
}

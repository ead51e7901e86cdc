// Package addressing derives deterministic storage addresses for every
// entity the ledger tracks. An address is a 70-character hex string:
// a 6-character family namespace, a 2-character kind prefix, and the
// first 62 characters of the SHA-512 of the entity identifier.
//
// The layout is a wire-format contract shared with every other
// implementation reading the same ledger; it must never change.
package addressing

import (
	"crypto/sha512"
	"encoding/hex"
)

// FamilyName is the transaction family this engine serves.
const FamilyName = "craftlore"

// Address is a fully derived 70-character hex storage key.
type Address string

// Prefix distinguishes entity kinds and secondary indexes inside the
// family namespace.
type Prefix string

// Account-space prefixes.
const (
	PrefixAccount          Prefix = "00"
	PrefixEmailIndex       Prefix = "01"
	PrefixAccountTypeIndex Prefix = "02"
	PrefixBootstrap        Prefix = "03"
)

// Asset-space prefixes.
const (
	PrefixRawMaterial   Prefix = "10"
	PrefixProduct       Prefix = "11"
	PrefixProductBatch  Prefix = "12"
	PrefixWorkOrder     Prefix = "13"
	PrefixSubAssignment Prefix = "14"
	PrefixCertification Prefix = "15"
	PrefixPackaging     Prefix = "16"
	PrefixLogistics     Prefix = "17"

	// PrefixAssetFallback covers asset kinds introduced after this
	// release so their addresses stay inside the asset space.
	PrefixAssetFallback Prefix = "1f"
)

// Index-space prefixes.
const (
	PrefixOwnerIndex     Prefix = "f0"
	PrefixAssetTypeIndex Prefix = "f1"
	PrefixBatchIndex     Prefix = "f2"
)

// namespace is computed once from the family name; sha512("craftlore")[:6].
var namespace = func() string {
	sum := sha512.Sum512([]byte(FamilyName))
	return hex.EncodeToString(sum[:])[:6]
}()

// Namespace returns the 6-character family namespace.
func Namespace() string {
	return namespace
}

// Derive maps (prefix, identifier) to its storage address. It is a pure
// function: the same inputs always produce the same address.
func Derive(prefix Prefix, identifier string) Address {
	sum := sha512.Sum512([]byte(identifier))
	return Address(namespace + string(prefix) + hex.EncodeToString(sum[:])[:62])
}

// Account returns the address holding an account record.
func Account(publicKey string) Address {
	return Derive(PrefixAccount, publicKey)
}

// EmailIndex returns the address of the email uniqueness index entry.
func EmailIndex(email string) Address {
	return Derive(PrefixEmailIndex, email)
}

// Bootstrap returns the singleton address marking bootstrap completion.
func Bootstrap() Address {
	return Derive(PrefixBootstrap, "bootstrap_complete")
}

// assetPrefixes maps an asset kind tag to its address prefix. Kind tags
// here mirror the asset_type values stored on chain.
var assetPrefixes = map[string]Prefix{
	"raw_material":   PrefixRawMaterial,
	"product":        PrefixProduct,
	"product_batch":  PrefixProductBatch,
	"work_order":     PrefixWorkOrder,
	"sub_assignment": PrefixSubAssignment,
	"certification":  PrefixCertification,
	"packaging":      PrefixPackaging,
	"logistics":      PrefixLogistics,
}

// Asset returns the address holding an asset record. The asset uid alone
// determines the hash; the kind only selects the prefix, so lookups that
// do not know the kind can probe every asset prefix for the same uid.
func Asset(uid, assetType string) Address {
	prefix, ok := assetPrefixes[assetType]
	if !ok {
		prefix = PrefixAssetFallback
	}
	return Derive(prefix, uid)
}

// AssetCandidates returns the addresses the uid may live at, one per
// asset prefix. Used when resolving an asset by uid only.
func AssetCandidates(uid string) []Address {
	sum := sha512.Sum512([]byte(uid))
	hash := hex.EncodeToString(sum[:])[:62]
	out := make([]Address, 0, len(assetPrefixes)+1)
	for _, prefix := range []Prefix{
		PrefixRawMaterial, PrefixProduct, PrefixProductBatch,
		PrefixWorkOrder, PrefixSubAssignment, PrefixCertification,
		PrefixPackaging, PrefixLogistics, PrefixAssetFallback,
	} {
		out = append(out, Address(namespace+string(prefix)+hash))
	}
	return out
}

// IsAccount reports whether the address lies in the account space.
func (a Address) IsAccount() bool {
	return len(a) == 70 && a[6] == '0'
}

// IsAsset reports whether the address lies in the asset space.
func (a Address) IsAsset() bool {
	return len(a) == 70 && a[6] == '1'
}

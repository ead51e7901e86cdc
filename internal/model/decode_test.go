package model

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/craftlore/craftlore-go/internal/codec"
)

func TestDecodeAccountByTag(t *testing.T) {
	account, err := NewAccount(AccountSupplier)
	require.NoError(t, err)
	supplier := account.(*SupplierAccount)
	supplier.PublicKey = "02aa"
	supplier.Email = "supplier@example.com"
	supplier.SupplierType = "cooperative"

	data, err := codec.Marshal(supplier)
	require.NoError(t, err)

	decoded, err := DecodeAccount(data)
	require.NoError(t, err)

	out, ok := decoded.(*SupplierAccount)
	require.True(t, ok, "decoded into %T", decoded)
	require.Equal(t, "02aa", out.PublicKey)
	require.Equal(t, "cooperative", out.SupplierType)
	require.Equal(t, AccountSupplier, out.Kind())
}

func TestDecodeAssetByTag(t *testing.T) {
	asset, err := NewAsset(AssetWorkOrder)
	require.NoError(t, err)
	workOrder := asset.(*WorkOrder)
	workOrder.UID = "wo-1"
	workOrder.Assignee = "02bb"
	workOrder.OrderQuantity = 40

	data, err := codec.Marshal(workOrder)
	require.NoError(t, err)

	decoded, err := DecodeAsset(data)
	require.NoError(t, err)

	out, ok := decoded.(*WorkOrder)
	require.True(t, ok, "decoded into %T", decoded)
	require.Equal(t, "wo-1", out.UID)
	require.Equal(t, 40, out.OrderQuantity)
	require.Equal(t, WorkOrderPending, out.Status)
}

func TestDecodeUnknownTag(t *testing.T) {
	_, err := DecodeAccount([]byte(`{"account_type":"ghost"}`))
	var unknown *UnknownTypeError
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "account", unknown.Kind)

	_, err = DecodeAsset([]byte(`{"asset_type":"hologram"}`))
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, "asset", unknown.Kind)
}

func TestNewAccountDefaults(t *testing.T) {
	for _, accountType := range []AccountType{AccountSupplier, AccountArtisan, AccountBuyer, AccountAdmin} {
		account, err := NewAccount(accountType)
		require.NoError(t, err)

		env := account.AccountBase()
		require.Equal(t, TPVersion, env.TPVersion)
		require.Equal(t, AuthPending, env.AuthenticationStatus)
		require.NotNil(t, env.Assets)
		require.NotNil(t, env.History)
		require.Equal(t, accountType, account.Kind())
	}
}

func TestNewAssetDefaults(t *testing.T) {
	workOrder, err := NewAsset(AssetWorkOrder)
	require.NoError(t, err)
	require.Equal(t, WorkOrderPending, workOrder.(*WorkOrder).Status)

	batch, err := NewAsset(AssetProductBatch)
	require.NoError(t, err)
	require.Equal(t, BatchInProgress, batch.(*ProductBatch).Status)

	assignment, err := NewAsset(AssetSubAssignment)
	require.NoError(t, err)
	require.Equal(t, SubAssignmentPending, assignment.(*SubAssignment).Status)
}

package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsellShapesNormalizeToOneSchema(t *testing.T) {
	payload := `[
		{"n":"Chocolade","p":12.5,"q":2},
		{"title":"Brussel in 100 verhalen","price":"24,95","quantity":1},
		{"name":"Tote bag","price":15},
		{"n":"Gratis sticker","p":0,"q":3},
		{"n":"Broken","p":"abc","q":1}
	]`
	var items []UpsellItem
	require.NoError(t, json.Unmarshal([]byte(payload), &items))
	require.Len(t, items, 5)

	assert.Equal(t, "Chocolade", items[0].Name)
	assert.Equal(t, "12.50", items[0].UnitPrice.String())
	assert.Equal(t, 2, items[0].Quantity)

	assert.Equal(t, "Brussel in 100 verhalen", items[1].Name)
	assert.Equal(t, "24.95", items[1].UnitPrice.String())

	assert.Equal(t, 1, items[2].Quantity, "missing quantity counts as one")

	valid := ValidUpsells(items)
	require.Len(t, valid, 3)
	assert.Equal(t, "Tote bag", valid[2].Name)
}

func TestValidUpsellsDropsOversizedLines(t *testing.T) {
	payload := `[
		{"n":"Book","p":100,"q":1e17},
		{"n":"Atlas","p":100,"q":1e21},
		{"n":"Gold","p":"9999999999999","q":1},
		{"n":"Crate","p":5,"q":99},
		{"n":"Map","p":10000,"q":1}
	]`
	var items []UpsellItem
	require.NoError(t, json.Unmarshal([]byte(payload), &items))
	require.Len(t, items, 5)

	valid := ValidUpsells(items)
	require.Len(t, valid, 2)
	assert.Equal(t, "Crate", valid[0].Name)
	assert.Equal(t, "Map", valid[1].Name)
}

func TestProfilePatchAcceptsBothFlagSpellings(t *testing.T) {
	var camel ProfilePatch
	require.NoError(t, json.Unmarshal([]byte(`{"isAdmin":true,"fullName":"An Peeters"}`), &camel))
	require.NotNil(t, camel.IsAdmin)
	assert.True(t, *camel.IsAdmin)
	require.NotNil(t, camel.FullName)
	assert.Equal(t, "An Peeters", *camel.FullName)

	var snake ProfilePatch
	require.NoError(t, json.Unmarshal([]byte(`{"is_admin":"false","phone":"+32 470 00 00 00"}`), &snake))
	require.NotNil(t, snake.IsAdmin)
	assert.False(t, *snake.IsAdmin)
	assert.Nil(t, snake.FullName)

	var both ProfilePatch
	require.NoError(t, json.Unmarshal([]byte(`{"isAdmin":true,"is_admin":false}`), &both))
	assert.False(t, *both.IsAdmin)

	var none ProfilePatch
	require.NoError(t, json.Unmarshal([]byte(`{"locale":"fr"}`), &none))
	assert.Nil(t, none.IsAdmin)
}

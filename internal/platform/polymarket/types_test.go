package polymarket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookLevel_ObjectAndPairDecodeEqually(t *testing.T) {
	encodings := []string{
		`{"price": 0.45, "size": 120.5}`,
		`{"price": "0.45", "size": "120.5"}`,
		`{"p": 0.45, "s": 120.5}`,
		`[0.45, 120.5]`,
		`["0.45", "120.5"]`,
	}

	for _, enc := range encodings {
		var lvl BookLevel
		require.NoError(t, json.Unmarshal([]byte(enc), &lvl), enc)
		assert.Equal(t, 0.45, lvl.Price, enc)
		assert.Equal(t, 120.5, lvl.Size, enc)
	}
}

func TestBookLevel_RejectsShortPair(t *testing.T) {
	var lvl BookLevel
	assert.Error(t, json.Unmarshal([]byte(`[0.45]`), &lvl))
	assert.Error(t, json.Unmarshal([]byte(`"0.45"`), &lvl))
}

func TestAPIBook_AskAliasAndTimestamp(t *testing.T) {
	raw := `{
		"asset_id": "tok-1",
		"ask": [[0.45, 10], [0.46, 5]],
		"bids": [{"price": "0.44", "size": "8"}],
		"timestamp": "1767225600000"
	}`

	var book APIBook
	require.NoError(t, json.Unmarshal([]byte(raw), &book))

	db := book.ToDomainOrderBook()
	assert.Equal(t, "tok-1", db.AssetID)
	require.Len(t, db.Asks, 2)
	assert.Equal(t, 0.45, db.Asks[0].Price)
	assert.Equal(t, 10.0, db.Asks[0].Size)
	require.Len(t, db.Bids, 1)
	assert.Equal(t, 0.44, db.Bids[0].Price)
	assert.Equal(t, int64(1767225600000), db.Timestamp.UnixMilli())
}

func TestAPIMarket_TopLevelTokenFields(t *testing.T) {
	for _, raw := range []string{
		`{"id": "m1", "yes_token_id": "y1", "no_token_id": "n1"}`,
		`{"id": "m1", "yesTokenId": "y1", "noTokenId": "n1"}`,
	} {
		var m APIMarket
		require.NoError(t, json.Unmarshal([]byte(raw), &m), raw)
		info := m.ToDomainMarket()
		assert.Equal(t, "y1", info.YesTokenID, raw)
		assert.Equal(t, "n1", info.NoTokenID, raw)
	}
}

func TestAPIMarket_TokensCollectionByOutcome(t *testing.T) {
	raw := `{
		"id": "m1",
		"tokens": [
			{"token_id": "n1", "outcome": "No"},
			{"token_id": "y1", "outcome": "Yes"}
		]
	}`

	var m APIMarket
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	info := m.ToDomainMarket()
	assert.Equal(t, "y1", info.YesTokenID)
	assert.Equal(t, "n1", info.NoTokenID)
}

func TestAPIMarket_OutcomesCollectionTrueFalse(t *testing.T) {
	raw := `{
		"id": "m1",
		"outcomes": [
			{"tokenId": "y1", "outcome": "TRUE"},
			{"tokenId": "n1", "outcome": "false"}
		]
	}`

	var m APIMarket
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	info := m.ToDomainMarket()
	assert.Equal(t, "y1", info.YesTokenID)
	assert.Equal(t, "n1", info.NoTokenID)
}

func TestAPIMarket_FlexNumericsAndActivity(t *testing.T) {
	raw := `{
		"id": "m1",
		"volume": "12500.5",
		"liquidityNum": 900,
		"active": "true",
		"closed": false
	}`

	var m APIMarket
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	info := m.ToDomainMarket()
	assert.Equal(t, 12500.5, info.Volume)
	assert.Equal(t, 900.0, info.Liquidity)
	assert.True(t, info.Active)
}

func TestAPIMarket_ClosedOverridesActive(t *testing.T) {
	var m APIMarket
	require.NoError(t, json.Unmarshal([]byte(`{"id": "m1", "active": true, "closed": "true"}`), &m))
	assert.False(t, m.ToDomainMarket().Active)
}

func TestMarketList_Envelopes(t *testing.T) {
	for _, raw := range []string{
		`[{"id": "m1"}]`,
		`{"data": [{"id": "m1"}]}`,
		`{"markets": [{"id": "m1"}]}`,
		`{"results": [{"id": "m1"}]}`,
	} {
		var list marketList
		require.NoError(t, json.Unmarshal([]byte(raw), &list), raw)
		require.Len(t, list, 1, raw)
		assert.Equal(t, "m1", list[0].ID, raw)
	}
}

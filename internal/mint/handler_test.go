package mint

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditionSizeUnmarshal(t *testing.T) {
	var req mintReq

	require.NoError(t, json.Unmarshal([]byte(`{"size": 50, "price": 0.01}`), &req))
	assert.Equal(t, EditionSize(50), req.Size)

	require.NoError(t, json.Unmarshal([]byte(`{"size": "unlimited", "price": 0.01}`), &req))
	assert.Equal(t, EditionSize(UnlimitedSupply), req.Size)

	assert.Error(t, json.Unmarshal([]byte(`{"size": "fifty"}`), &req))
}

func TestValidateSplits(t *testing.T) {
	assert.NoError(t, validateSplits(nil))
	assert.NoError(t, validateSplits([]Split{{Address: "0xaaa", Percentage: 100}}))
	assert.NoError(t, validateSplits([]Split{
		{Address: "0xaaa", Percentage: 70},
		{Address: "0xbbb", Percentage: 30},
	}))

	assert.Error(t, validateSplits([]Split{{Address: "0xaaa", Percentage: 99}}))
	assert.Error(t, validateSplits([]Split{{Address: "", Percentage: 100}}))
	assert.Error(t, validateSplits([]Split{{Address: "0xaaa", Percentage: -10}, {Address: "0xbbb", Percentage: 110}}))
}

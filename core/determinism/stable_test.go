package determinism

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMoneyKeepsPrecisionUntilRounded proves intermediate values are not rounded
func TestMoneyKeepsPrecisionUntilRounded(t *testing.T) {
	third := NewMoneyFromInt(10).Div(NewMoneyFromInt(3).Amount())
	total := third.MulInt(3)

	assert.Equal(t, "10.00", total.Round2().String())
	assert.True(t, total.Round2().Equal(NewMoneyFromInt(10)))
	assert.NotEqual(t, "3.33", third.StringRaw())
	assert.Equal(t, "3.33", third.Round2().String())
}

func TestMoneyRoundsHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, "0.13", MustMoney("0.125").Round2().String())
	assert.Equal(t, "2.68", MustMoney("2.675").Round2().String())
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Price Money `json:"price"`
	}{Price: MustMoney("1120")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":"1120.00"}`, string(data))

	var decoded struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"19.99","b":5}`), &decoded))
	assert.True(t, decoded.A.Equal(MustMoney("19.99")))
	assert.True(t, decoded.B.Equal(NewMoneyFromInt(5)))
}

func TestIDGeneratorIsStable(t *testing.T) {
	gen := NewIDGenerator("plan")
	a := gen.Generate("base", "3")
	b := gen.Generate("base", "3")
	c := gen.Generate("base3")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, string(a), 16)
}

func TestSortedKeys(t *testing.T) {
	keys := SortedKeys(map[string]int{"size": 1, "color": 2, "brand": 3})
	assert.Equal(t, []string{"brand", "color", "size"}, keys)
}

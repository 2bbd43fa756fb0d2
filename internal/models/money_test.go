package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in      string
		want    Money
		wantErr bool
	}{
		{"1000", 100000, false},
		{"1000.5", 100050, false},
		{"1000.50", 100050, false},
		{"1000.500", 100050, false},
		{"0.99", 99, false},
		{".5", 50, false},
		{"-12.30", -1230, false},
		{"1000.505", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseMoney(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMoneyJSON(t *testing.T) {
	var body struct {
		Price Money  `json:"price"`
		Ref   *Money `json:"ref"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"price": 1050.5, "ref": "1000.00"}`), &body))
	assert.Equal(t, Money(105050), body.Price)
	require.NotNil(t, body.Ref)
	assert.Equal(t, "1000.00", body.Ref.String())

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":"1050.50","ref":"1000.00"}`, string(out))
}

func TestMoneyScan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan([]byte("99.90")))
	assert.Equal(t, Money(9990), m)
	require.NoError(t, m.Scan(int64(12)))
	assert.Equal(t, Money(1200), m)
	require.NoError(t, m.Scan(12.34))
	assert.Equal(t, Money(1234), m)

	var n NullMoney
	require.NoError(t, n.Scan(nil))
	assert.Nil(t, n.Ptr())
	require.NoError(t, n.Scan("5"))
	require.NotNil(t, n.Ptr())
	assert.Equal(t, Money(500), *n.Ptr())
}

func TestSKUDisplayName(t *testing.T) {
	assert.Equal(t, "Urea 46-0-0 - IFFCO (50kg)", SKUDisplayName("Urea 46-0-0", "IFFCO", 50))
	assert.Equal(t, "DAP - NFL (22.5kg)", SKUDisplayName("DAP", "NFL", 22.5))
}

func TestNewPage(t *testing.T) {
	assert.Equal(t, Page{Limit: DefaultPageSize, Offset: 0}, NewPage(0, 0))
	assert.Equal(t, Page{Limit: 10, Offset: 20}, NewPage(3, 10))
	assert.Equal(t, Page{Limit: MaxPageSize, Offset: 0}, NewPage(1, 1000))
}

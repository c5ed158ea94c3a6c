package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSide(t *testing.T) {
	tests := []struct {
		in      string
		want    Side
		wantErr bool
	}{
		{in: "long", want: SideLong},
		{in: "LONG", want: SideLong},
		{in: " 롱 ", want: SideLong},
		{in: "롱/long", want: SideLong},
		{in: "short", want: SideShort},
		{in: "숏", want: SideShort},
		{in: "Sell", want: SideShort},
		{in: "롱/short", wantErr: true},
		{in: "sideways", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSide(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSwingTradeOutcome(t *testing.T) {
	open := SwingTrade{ID: "a", UserID: 1, Symbol: "BTC", Side: SideLong}
	assert.True(t, open.IsOpen())
	assert.Nil(t, open.Outcome().PnLPct)

	exit, pnl := 27000.0, 30.61
	closed := open
	closed.ExitPrice = &exit
	closed.PnLPct = &pnl
	assert.False(t, closed.IsOpen())
	require.NotNil(t, closed.Outcome().PnLPct)
	assert.Equal(t, 30.61, *closed.Outcome().PnLPct)
	assert.Equal(t, KindSwing, closed.Outcome().Kind)
}

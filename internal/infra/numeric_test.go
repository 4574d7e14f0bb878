package infra

import (
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericToInt64(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		for _, v := range []int64{0, 1, -1, 100_00, 999_999_999_999_999} {
			got, err := NumericToInt64(Int64ToNumeric(v))
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})

	t.Run("positive exponent scales up", func(t *testing.T) {
		n := pgtype.Numeric{Int: big.NewInt(5), Exp: 3, Valid: true}
		got, err := NumericToInt64(n)
		require.NoError(t, err)
		assert.Equal(t, int64(5000), got)
	})

	t.Run("negative exponent truncates", func(t *testing.T) {
		n := pgtype.Numeric{Int: big.NewInt(12345), Exp: -2, Valid: true}
		got, err := NumericToInt64(n)
		require.NoError(t, err)
		assert.Equal(t, int64(123), got)
	})

	t.Run("null rejected", func(t *testing.T) {
		_, err := NumericToInt64(pgtype.Numeric{})
		assert.Error(t, err)
	})

	t.Run("overflow rejected", func(t *testing.T) {
		huge := new(big.Int).Lsh(big.NewInt(1), 80)
		_, err := NumericToInt64(pgtype.Numeric{Int: huge, Valid: true})
		assert.Error(t, err)
	})
}

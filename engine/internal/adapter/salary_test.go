package adapter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSalary_DollarRange(t *testing.T) {
	min, max, currency, cycle := ParseSalary("$120,000 - $150,000 per year")
	require.NotNil(t, min)
	require.NotNil(t, max)
	require.Equal(t, 120000.0, *min)
	require.Equal(t, 150000.0, *max)
	require.Equal(t, "USD", currency)
	require.Equal(t, "yearly", cycle)
}

func TestParseSalary_KShorthand(t *testing.T) {
	min, max, currency, _ := ParseSalary("€50k to €70k")
	require.NotNil(t, min)
	require.NotNil(t, max)
	require.Equal(t, 50000.0, *min)
	require.Equal(t, 70000.0, *max)
	require.Equal(t, "EUR", currency)
}

func TestParseSalary_Unparseable(t *testing.T) {
	min, max, currency, cycle := ParseSalary("competitive salary")
	require.Nil(t, min)
	require.Nil(t, max)
	require.Empty(t, currency)
	require.Empty(t, cycle)
}

func TestParseSalary_EmptyInput(t *testing.T) {
	min, max, currency, cycle := ParseSalary("")
	require.Nil(t, min)
	require.Nil(t, max)
	require.Empty(t, currency)
	require.Empty(t, cycle)
}

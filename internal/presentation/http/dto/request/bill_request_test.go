package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaxPercentOrDefault(t *testing.T) {
	unset := SettleBillRequest{}
	assert.Equal(t, 18.0, unset.TaxPercentOrDefault(18))

	zero := 0.0
	exempt := SettleBillRequest{TaxPercent: &zero}
	assert.Equal(t, 0.0, exempt.TaxPercentOrDefault(18), "explicit zero means tax-exempt, not unset")

	sixteen := 16.0
	explicit := SettleBillRequest{TaxPercent: &sixteen}
	assert.Equal(t, 16.0, explicit.TaxPercentOrDefault(18))
}

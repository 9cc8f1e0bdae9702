// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lean

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/votewallet/pkg/types"
)

func TestOrganization(t *testing.T) {
	tests := []struct {
		name string
		want types.Lean
		ok   bool
	}{
		{"Sierra Club", types.LeanGreen, true},
		{"  WINRED ", types.LeanConservative, true},
		{"Sierra Club Political Committee", types.LeanGreen, true},
		{"Friends of the Democratic National Committee PAC", types.LeanLiberal, true},
		{"Acme Employees PAC", types.LeanUnset, false},
		{"", types.LeanUnset, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Organization(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInfer(t *testing.T) {
	l, hits := Infer("The company pledged to cut carbon emissions and expand renewable energy.")
	assert.Equal(t, types.LeanGreen, l)
	assert.Equal(t, 2, hits)

	l, hits = Infer("Quarterly earnings rose four percent.")
	assert.Equal(t, types.LeanUnset, l)
	assert.Zero(t, hits)

	// One hit each: the first axis in vector order wins.
	l, _ = Infer("progressive and bipartisan")
	assert.Equal(t, types.LeanLiberal, l)
}

func TestResolve(t *testing.T) {
	assert.Equal(t, types.LeanLibertarian, Resolve(types.LeanLibertarian, "Sierra Club", ""))
	assert.Equal(t, types.LeanGreen, Resolve(types.LeanUnset, "Sierra Club", ""))
	assert.Equal(t, types.LeanConservative, Resolve(types.LeanUnset, "Committee to Elect a Republican Senate", ""))
	assert.Equal(t, types.LeanCentrist, Resolve(types.LeanUnset, "Acme Employees PAC", "annual picnic"))
	assert.Equal(t, types.LeanCentrist, Resolve(types.Lean("bogus"), "", ""))
}

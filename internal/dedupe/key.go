// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedupe

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/votewallet/pkg/types"
)

// Key strategy names accepted by KeyFuncFor.
const (
	StrategyNameCityState        = "name_city_state"
	StrategyNameCityStateAddress = "name_city_state_address"
)

// KeyFunc derives the identity key of a candidate.
type KeyFunc func(types.BusinessCandidate) types.IdentityKey

// NameCityState keys a candidate on its normalized name, city and state.
func NameCityState(c types.BusinessCandidate) types.IdentityKey {
	return types.IdentityKey{
		Name:  Fold(c.Name),
		City:  Fold(c.City),
		State: Fold(c.State),
	}
}

// NameCityStateAddress additionally keys on the street address, which keeps
// chain locations in the same city apart.
func NameCityStateAddress(c types.BusinessCandidate) types.IdentityKey {
	k := NameCityState(c)
	k.Address = Fold(c.Address)
	return k
}

// KeyFuncFor returns the KeyFunc for a configured strategy name. The empty
// name selects NameCityState.
func KeyFuncFor(strategy string) (KeyFunc, error) {
	switch strategy {
	case "", StrategyNameCityState:
		return NameCityState, nil
	case StrategyNameCityStateAddress:
		return NameCityStateAddress, nil
	}
	return nil, fmt.Errorf("unknown identity strategy %q", strategy)
}

// Fold returns s in key form: NFKC, lower-cased, trimmed, with internal
// whitespace collapsed.
func Fold(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(norm.NFKC.String(s))), " ")
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handlespace_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/rserpoold/handlespace"
	"github.com/bitmark-inc/rserpoold/policy"
)

// mixed operations over several pools and policies keep every index
// consistent
func TestRandomOperations(t *testing.T) {
	r := rand.New(rand.NewSource(20200101))
	hs := handlespace.New[string](ownRegistrar, &handlespace.Configuration[string]{Random: r})

	policies := []policy.Type{
		policy.RoundRobin,
		policy.WeightedRoundRobin,
		policy.WeightedRandom,
		policy.LeastUsedDegradation,
		policy.RandomizedLeastUsedDegradation,
		policy.WeightedRandomDPF,
	}
	owners := []uint32{ownRegistrar, otherRegistrar, handlespace.UndefinedRegistrar}

	now := uint64(0)
	for i := 0; i < 2000; i += 1 {
		now += uint64(r.Intn(100000))
		n := r.Intn(len(policies))
		name := fmt.Sprintf("pool-%d", n)
		id := uint32(1 + r.Intn(20))

		switch op := r.Intn(10); {
		case op < 5:
			reg := registration(t, name, id, owners[r.Intn(len(owners))], policy.Settings{
				Type:            policies[n],
				Weight:          uint32(r.Intn(10)),
				Load:            uint32(r.Int63n(policy.MaxLoad)),
				LoadDegradation: uint32(r.Intn(1000000)),
				WeightDPF:       uint32(r.Int63n(policy.MaxWeightDPF)),
				Distance:        uint32(r.Intn(200)),
			})
			reg.RegistrationLife = uint64(1 + r.Intn(5)*second)
			reg.ConnectionSocket = r.Intn(4)
			_, err := hs.RegisterPoolElement(reg, now, name)
			assert.Nil(t, err, "%d: register", i)
		case op < 7:
			_ = hs.DeregisterPoolElement(handle(t, name), id)
		case op < 9:
			selected, err := hs.HandleResolution(handle(t, name), 1+r.Intn(4), r.Intn(3))
			if nil == err {
				seen := map[uint32]bool{}
				for _, e := range selected {
					assert.False(t, seen[e.Identifier], "%d: duplicate selection", i)
					seen[e.Identifier] = true
				}
			}
		default:
			hs.PurgeExpiredPoolElements(now)
		}

		if err := hs.Verify(); nil != err {
			t.Fatalf("%d: verify error: %s", i, err)
		}
	}
}

/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Fri Mar 16 13:56:39 2018 mstenber
 * Last modified: Mon Oct 12 11:47:55 2026 mstenber
 * Edit time:     3 min
 *
 */

package util

import (
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/fingon/go-actree/mlog"
)

// GetSeededRng returns rng seeded from SEED environment variable, or
// the current time if it is not set. The seed is logged so that
// failing randomized tests can be reproduced.
func GetSeededRng() *rand.Rand {
	seedvalue := time.Now().UnixNano()
	if seed := os.Getenv("SEED"); seed != "" {
		v, err := strconv.ParseInt(seed, 10, 64)
		if err != nil {
			log.Panic(err)
		}
		seedvalue = v
	}
	log.Printf("Seed: %v (use SEED= to fix)", seedvalue)
	mlog.Printf2("util/random", "GetSeededRng %v", seedvalue)
	return rand.New(rand.NewSource(seedvalue))
}

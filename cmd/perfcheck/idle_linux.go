// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"golang.org/x/perfcheck/common/log"
)

const idleMaxLoad = 0.2

// loadAvg returns the 1-minute load average.
func loadAvg() (float64, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, fmt.Errorf("sysinfo: %w", err)
	}
	// Loads are fixed point with 16 fractional bits.
	avg := float64(info.Loads[0]) / (1 << 16)
	log.Printf("Load average: %.2f", avg)
	return avg, nil
}

func waitForIdle(ctx context.Context) error {
	avg, err := loadAvg()
	if err != nil {
		return fmt.Errorf("error reading load average: %w", err)
	}
	if avg < idleMaxLoad {
		return nil
	}

	log.Printf("Waiting for load average to drop below %.2f...", idleMaxLoad)

	tick := time.NewTicker(30 * time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
		avg, err := loadAvg()
		if err != nil {
			return fmt.Errorf("error reading load average: %w", err)
		}
		if avg < idleMaxLoad {
			return nil
		}
		log.Printf("Waiting for load average to drop below %.2f...", idleMaxLoad)
	}
}

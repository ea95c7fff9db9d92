// Copyright (C) 2025 Jeff Rose
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package poller

import (
	"sync"
	"time"
)

// Start launches the configured number of resolution workers. Each worker
// repeats at Interval / Workers with no initial delay, so the aggregate
// rate stays at one resolution per Interval and firings interleave evenly
// across it. Workers run until the context is cancelled; a failing
// invocation never cancels future firings of its own worker or of any
// other.
func Start(pc PollContext, wg *sync.WaitGroup) {
	pc.ruleErrors = &ruleErrorTracker{}
	period := workerPeriod(pc.Interval, pc.Workers)

	if pc.Metrics != nil {
		pc.Metrics.SetWorkers(pc.Workers)
	}

	for i := 0; i < pc.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runWorker(pc, id, period)
		}(i)
	}
}

func workerPeriod(interval time.Duration, workers int) time.Duration {
	if workers < 1 {
		workers = 1
	}
	return interval / time.Duration(workers)
}

func runWorker(pc PollContext, id int, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		resolveOnce(pc, id)

		select {
		case <-pc.Ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Copyright 2025 Serveup Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/frostbyte73/core"
	"go.uber.org/atomic"
	"golang.org/x/time/rate"

	"github.com/serveup-dev/serveup/pkg/logger"
	"github.com/serveup-dev/serveup/pkg/util"
)

const (
	healthPath = "/api/health"

	probeInterval = 250 * time.Millisecond
	probeTimeout  = time.Second
	probeWindow   = time.Minute
)

// probeServer polls the local port until the server answers, then
// reports readiness once. Any HTTP response counts; the server is up
// even if the app has no health route.
func probeServer(ctx context.Context, done *core.Fuse, ready *atomic.Bool, open bool) {
	limiter := rate.NewLimiter(rate.Every(probeInterval), 1)
	client := &http.Client{Timeout: probeTimeout}
	started := time.Now()

	for time.Since(started) < probeWindow {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		select {
		case <-done.Watch():
			return
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, LocalServerURL+healthPath, nil)
		if err != nil {
			return
		}
		resp, err := client.Do(req)
		if err != nil {
			continue
		}
		resp.Body.Close()

		ready.Store(true)
		logger.Debugw("server responding", "status", resp.StatusCode, "after", time.Since(started))
		fmt.Println(util.Accented(fmt.Sprintf(
			"Server ready at %s (%s)",
			LocalServerURL, time.Since(started).Round(time.Millisecond),
		)))
		if open {
			if err := util.OpenInBrowser(LocalServerURL); err != nil {
				logger.Warnw("failed to open browser", err)
			}
		}
		return
	}

	logger.Warnw("server has not answered at "+LocalServerURL, nil, "waited", probeWindow)
}

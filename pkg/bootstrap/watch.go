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
	"fmt"
	"path/filepath"

	"github.com/frostbyte73/core"
	"github.com/fsnotify/fsnotify"

	"github.com/serveup-dev/serveup/pkg/logger"
	"github.com/serveup-dev/serveup/pkg/requirements"
	"github.com/serveup-dev/serveup/pkg/util"
)

// manifestWatcher nudges the user when the requirements manifest
// changes under a running server. The server's reloader picks up code
// edits on its own, but new packages still need a sync.
type manifestWatcher struct {
	dir      string
	manifest string
	baseline string
	fuse     *core.Fuse
	watcher  *fsnotify.Watcher
}

func newManifestWatcher(dir, manifest string) *manifestWatcher {
	baseline, err := requirements.Fingerprint(filepath.Join(dir, manifest))
	if err != nil {
		baseline = ""
	}
	return &manifestWatcher{
		dir:      dir,
		manifest: manifest,
		baseline: baseline,
	}
}

func (w *manifestWatcher) Start() error {
	if w.fuse != nil {
		return nil
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// watch the directory, not the file: editors replace files on save
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return err
	}
	w.watcher = fw
	w.fuse = new(core.Fuse)
	go w.worker()
	return nil
}

func (w *manifestWatcher) Stop() {
	if w.fuse == nil || w.fuse.IsBroken() {
		return
	}
	w.fuse.Break()
	w.watcher.Close()
	w.fuse = nil
}

func (w *manifestWatcher) worker() {
	fuse := w.fuse
	fw := w.watcher
	for {
		select {
		case <-fuse.Watch():
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != w.manifest {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			current, err := requirements.Fingerprint(filepath.Join(w.dir, w.manifest))
			if err != nil || current == w.baseline {
				continue
			}
			w.baseline = current
			fmt.Println(util.WarningStyle.Render(
				w.manifest + " changed while the server is running. Run `serveup sync` to install updates.",
			))
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Debugw("manifest watch error", "error", err)
		}
	}
}

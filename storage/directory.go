/*
 * Author: Markus Stenberg <fingon@iki.fi>
 *
 * Copyright (c) 2018 Markus Stenberg
 *
 * Created:       Wed Jan  3 15:55:15 2018 mstenber
 * Last modified: Mon Oct 12 14:03:44 2026 mstenber
 * Edit time:     41 min
 *
 */

package storage

import (
	"os"
	"path/filepath"

	"github.com/fingon/go-actree/mlog"
	"github.com/pkg/errors"
)

// DirectoryBackendBase is embedded by the backends that keep their
// data within a local directory.
type DirectoryBackendBase struct {
	BackendConfiguration
	Dir string
}

// Init ensures the directory exists.
func (self *DirectoryBackendBase) Init(config BackendConfiguration) error {
	if config.Directory == "" {
		return ErrNoDirectory
	}
	self.BackendConfiguration = config
	self.Dir = config.Directory
	mlog.Printf2("storage/directory", "Init %v", self.Dir)
	if err := os.MkdirAll(self.Dir, 0700); err != nil {
		return errors.Wrapf(err, "creating %v", self.Dir)
	}
	return nil
}

// Path returns path of a file within the directory.
func (self *DirectoryBackendBase) Path(elem ...string) string {
	return filepath.Join(append([]string{self.Dir}, elem...)...)
}

// BytesUsed sums the sizes of the files within the directory.
func (self *DirectoryBackendBase) BytesUsed() (sum uint64) {
	filepath.Walk(self.Dir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			sum += uint64(info.Size())
		}
		return nil
	})
	return sum
}

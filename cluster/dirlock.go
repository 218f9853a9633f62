// Copyright 2026 The Databank Authors
// This file is part of Databank.
//
// Databank is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Databank is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Databank. If not, see <http://www.gnu.org/licenses/>.

package cluster

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/Blackfall-Labs/databank/dberr"
)

// lockDir takes an advisory exclusive lock on dir's sentinel lock file for
// the duration of a flush, so two cluster instances writing the same
// directory never interleave. The returned func releases the lock.
func lockDir(dir string) (func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, dberr.Io("mkdir "+dir, err)
	}
	lockPath := filepath.Join(dir, ".databank.lock")
	fl := flock.New(lockPath)
	if err := fl.Lock(); err != nil {
		return nil, dberr.Io("lock "+lockPath, err)
	}
	return func() { _ = fl.Unlock() }, nil
}

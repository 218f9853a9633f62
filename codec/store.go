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

package codec

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cenkalti/backoff/v4"
	"github.com/edsrzf/mmap-go"

	"github.com/Blackfall-Labs/databank/bank"
	"github.com/Blackfall-Labs/databank/dberr"
)

// SnapshotStore abstracts the filesystem calls behind atomic snapshot
// writes, so tests can substitute a mock and exercise retry/backoff
// behavior without real disk latency.
type SnapshotStore interface {
	// WriteAndRename writes data to a temporary sibling of finalPath and
	// renames it into place.
	WriteAndRename(finalPath string, data []byte) error
}

// osStore is the default SnapshotStore, backed by real file I/O.
type osStore struct{}

func (osStore) WriteAndRename(finalPath string, data []byte) error {
	dir := filepath.Dir(finalPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := finalPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, finalPath)
}

// DefaultStore is the production SnapshotStore used outside tests.
var DefaultStore SnapshotStore = osStore{}

// SaveAtomic encodes b and writes it to path via store's atomic
// write-then-rename contract. Readers never observe a partial file.
func SaveAtomic(path string, b *bank.DataBank, store SnapshotStore) error {
	data, err := Encode(b)
	if err != nil {
		return err
	}
	if err := store.WriteAndRename(path, data); err != nil {
		return dberr.Io("write "+path, err)
	}
	return nil
}

// SaveAtomicWithRetry wraps SaveAtomic in a bounded exponential backoff,
// retrying only the write syscalls (transient I/O errors such as ENOSPC
// clearing or a brief lock contention) — never masking a logical encode
// error, which backoff.Permanent surfaces immediately.
func SaveAtomicWithRetry(ctx context.Context, path string, b *bank.DataBank) error {
	return SaveAtomicWithRetryStore(ctx, path, b, DefaultStore)
}

// SaveAtomicWithRetryStore is SaveAtomicWithRetry parameterized over the
// SnapshotStore, for use by tests with a mocked store.
func SaveAtomicWithRetryStore(ctx context.Context, path string, b *bank.DataBank, store SnapshotStore) error {
	data, err := Encode(b)
	if err != nil {
		return backoff.Permanent(err)
	}
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4)
	op := func() error {
		if err := store.WriteAndRename(path, data); err != nil {
			return err
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		return dberr.Io(fmt.Sprintf("write %s after retries", path), err)
	}
	return nil
}

// Load reads path and decodes it as a *.bank snapshot.
func Load(path string) (*bank.DataBank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dberr.Io("read "+path, err)
	}
	return Decode(data)
}

// LoadMapped reads path via a read-only mmap instead of copying it into a
// []byte with os.ReadFile, for large snapshot files. Decoding is identical
// to Load; only the byte source differs.
func LoadMapped(path string) (*bank.DataBank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dberr.Io("open "+path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, dberr.Io("stat "+path, err)
	}
	if info.Size() == 0 {
		return nil, dberr.Codec("snapshot file is empty")
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, dberr.Io("mmap "+path, err)
	}
	defer m.Unmap()

	return Decode([]byte(m))
}

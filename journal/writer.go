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

package journal

import (
	"bufio"
	"os"
	"sync"

	"github.com/Blackfall-Labs/databank/bank"
	"github.com/Blackfall-Labs/databank/types"
)

// Writer is an append-only journal handle. It wraps its *os.File in a
// bufio.Writer and Syncs after every append, so a mutation is durable
// before the caller's call returns — a crash-recovery journal that only
// flushes userspace buffering gives no real crash guarantee.
type Writer struct {
	mu   sync.Mutex
	file *os.File
	buf  *bufio.Writer
}

// Open opens (creating if absent) the journal file at path for appending.
func Open(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &Writer{file: f, buf: bufio.NewWriter(f)}, nil
}

func (w *Writer) appendRecord(rec Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.buf.Write(encode(rec)); err != nil {
		return err
	}
	if err := w.buf.Flush(); err != nil {
		return err
	}
	return w.file.Sync()
}

// AppendInsert records an Insert mutation.
func (w *Writer) AppendInsert(bankId types.BankId, entryId types.EntryId, tick uint64, temperature types.Temperature, vector []types.Signal) error {
	return w.appendRecord(Record{Tag: TagInsert, Bank: bankId, Entry: entryId, Tick: tick, Temperature: temperature, Vector: vector})
}

// AppendRemove records a Remove mutation.
func (w *Writer) AppendRemove(bankId types.BankId, entryId types.EntryId) error {
	return w.appendRecord(Record{Tag: TagRemove, Bank: bankId, Entry: entryId})
}

// AppendTouch records a Touch mutation.
func (w *Writer) AppendTouch(bankId types.BankId, entryId types.EntryId, tick uint64) error {
	return w.appendRecord(Record{Tag: TagTouch, Bank: bankId, Entry: entryId, Tick: tick})
}

// AppendAddEdge records an AddEdge mutation.
func (w *Writer) AppendAddEdge(bankId types.BankId, entryId types.EntryId, edge types.Edge) error {
	return w.appendRecord(Record{Tag: TagAddEdge, Bank: bankId, Entry: entryId, Edge: edge})
}

// AppendSetTemperature records a SetTemperature mutation.
func (w *Writer) AppendSetTemperature(bankId types.BankId, entryId types.EntryId, temperature types.Temperature) error {
	return w.appendRecord(Record{Tag: TagSetTemperature, Bank: bankId, Entry: entryId, NewTemperature: temperature})
}

// AppendPromote records a Promote mutation.
func (w *Writer) AppendPromote(bankId types.BankId, entryId types.EntryId, newTemperature types.Temperature) error {
	return w.appendRecord(Record{Tag: TagPromote, Bank: bankId, Entry: entryId, NewTemperature: newTemperature})
}

// AppendDemote records a Demote mutation.
func (w *Writer) AppendDemote(bankId types.BankId, entryId types.EntryId, newTemperature types.Temperature) error {
	return w.appendRecord(Record{Tag: TagDemote, Bank: bankId, Entry: entryId, NewTemperature: newTemperature})
}

// AppendBatchEvict records a BatchEvict mutation.
func (w *Writer) AppendBatchEvict(bankId types.BankId, victims []types.EntryId) error {
	return w.appendRecord(Record{Tag: TagBatchEvict, Bank: bankId, Victims: victims})
}

// Truncate overwrites the journal file with zero bytes, discarding all
// records written so far.
func (w *Writer) Truncate() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.file.Truncate(0); err != nil {
		return err
	}
	if _, err := w.file.Seek(0, 0); err != nil {
		return err
	}
	w.buf.Reset(w.file)
	return nil
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.buf.Flush(); err != nil {
		return err
	}
	return w.file.Close()
}

// ClusterView is the narrow surface Replay needs from a BankCluster —
// resolving a bank by identity. Defined here (rather than imported) to
// avoid a package cycle, since cluster imports journal.
type ClusterView interface {
	Get(types.BankId) *bank.DataBank
}

// Replay reads path and applies every well-formed record to view, skipping
// records whose bank or entry is absent (the snapshot that originally held
// it may not have been loaded). Returns the count of records applied.
func Replay(path string, view ClusterView) (int, error) {
	records, err := ReadAllFile(path)
	if err != nil {
		return 0, err
	}
	applied := 0
	for _, rec := range records {
		if Apply(view, rec) {
			applied++
		}
	}
	return applied, nil
}

// Apply applies a single record to view, returning whether it found a
// target to apply to.
func Apply(view ClusterView, rec Record) bool {
	b := view.Get(rec.Bank)
	if b == nil {
		return false
	}
	switch rec.Tag {
	case TagInsert:
		if _, err := b.Insert(rec.Vector, rec.Temperature, rec.Tick); err != nil {
			return false
		}
		return true
	case TagRemove:
		return b.Remove(rec.Entry) != nil
	case TagTouch:
		e := b.Get(rec.Entry)
		if e == nil {
			return false
		}
		e.Touch(rec.Tick)
		return true
	case TagAddEdge:
		return b.AddEdge(rec.Entry, rec.Edge) == nil
	case TagSetTemperature:
		e := b.Get(rec.Entry)
		if e == nil {
			return false
		}
		e.Temperature = rec.NewTemperature
		return true
	case TagPromote:
		return b.PromoteEntry(rec.Entry)
	case TagDemote:
		return b.DemoteEntry(rec.Entry)
	case TagBatchEvict:
		removed := 0
		for _, id := range rec.Victims {
			if b.Remove(id) != nil {
				removed++
			}
		}
		return removed > 0
	default:
		return false
	}
}

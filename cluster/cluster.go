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

// Package cluster implements BankCluster: a directory-backed collection of
// banks, cross-bank linking and traversal, and aggregated multi-bank query.
package cluster

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Blackfall-Labs/databank/bank"
	"github.com/Blackfall-Labs/databank/codec"
	"github.com/Blackfall-Labs/databank/dberr"
	"github.com/Blackfall-Labs/databank/index"
	"github.com/Blackfall-Labs/databank/journal"
	"github.com/Blackfall-Labs/databank/similarity"
	"github.com/Blackfall-Labs/databank/types"
)

// BankCluster owns every bank in one directory, a name-to-identity index,
// and an optional journal writer for crash-tolerant recovery.
type BankCluster struct {
	banks   map[types.BankId]*bank.DataBank
	byName  map[string]types.BankId
	journal *journal.Writer
	logger  *zap.SugaredLogger
}

// Option configures a BankCluster at construction.
type Option func(*BankCluster)

// WithLogger attaches a structured logger; a nil logger is replaced by a
// no-op logger, so call sites never need a nil check.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(c *BankCluster) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs an empty BankCluster.
func New(opts ...Option) *BankCluster {
	c := &BankCluster{
		banks:  make(map[types.BankId]*bank.DataBank),
		byName: make(map[string]types.BankId),
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCreate returns the bank identified by id, creating it (and
// registering name) if absent.
func (c *BankCluster) GetOrCreate(id types.BankId, name string, config types.BankConfig) *bank.DataBank {
	if b, ok := c.banks[id]; ok {
		return b
	}
	b := bank.New(id, name, config)
	c.banks[id] = b
	c.byName[name] = id
	return b
}

// Get returns the bank identified by id, or nil if absent.
func (c *BankCluster) Get(id types.BankId) *bank.DataBank {
	return c.banks[id]
}

// GetByName returns the bank registered under name, or nil if absent.
func (c *BankCluster) GetByName(name string) *bank.DataBank {
	id, ok := c.byName[name]
	if !ok {
		return nil
	}
	return c.banks[id]
}

// Remove deletes the bank identified by id from both indexes.
func (c *BankCluster) Remove(id types.BankId) {
	b, ok := c.banks[id]
	if !ok {
		return
	}
	delete(c.banks, id)
	delete(c.byName, b.Name)
}

// Banks returns every bank in the cluster, unordered.
func (c *BankCluster) Banks() map[types.BankId]*bank.DataBank {
	return c.banks
}

// Link records an edge from an entry in the bank named by from.Bank to the
// BankRef to, appending to from's entry.
func (c *BankCluster) Link(from types.BankRef, to types.BankRef, edgeType types.EdgeType, weight uint8, tick uint64) error {
	b, ok := c.banks[from.Bank]
	if !ok {
		return dberr.BankNotFound(from.Bank)
	}
	edge := types.Edge{Type: edgeType, Target: to, Weight: weight, CreatedTick: tick}
	if err := b.AddEdge(from.Entry, edge); err != nil {
		return err
	}
	if c.journal != nil {
		if werr := c.journal.AppendAddEdge(from.Bank, from.Entry, edge); werr != nil {
			c.logger.Warnw("journal append failed", "op", "AddEdge", "error", werr)
		}
	}
	return nil
}

// Traverse performs a breadth-first walk from start following only edges
// of edgeType, up to depth hops, returning visited BankRefs in FIFO
// discovery order (excluding start itself). Duplicates are suppressed by a
// visited set.
func (c *BankCluster) Traverse(start types.BankRef, edgeType types.EdgeType, depth int) []types.BankRef {
	if depth <= 0 {
		return nil
	}
	visited := map[types.BankRef]struct{}{start: {}}
	frontier := []types.BankRef{start}
	var order []types.BankRef

	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []types.BankRef
		for _, ref := range frontier {
			b, ok := c.banks[ref.Bank]
			if !ok {
				continue
			}
			for _, edge := range b.EdgesFrom(ref.Entry) {
				if edge.Type != edgeType {
					continue
				}
				if _, seen := visited[edge.Target]; seen {
					continue
				}
				visited[edge.Target] = struct{}{}
				order = append(order, edge.Target)
				next = append(next, edge.Target)
			}
		}
		frontier = next
	}
	return order
}

// BankQuery is one bank's half of a QueryAll request.
type BankQuery struct {
	Bank  types.BankId
	Query []types.Signal
}

// NormalizedResult is one hit from QueryAll, carrying its originating bank.
type NormalizedResult struct {
	Bank            types.BankId
	Entry           types.EntryId
	RawScore        int32
	NormalizedScore int64
}

// QueryAll runs query_sparse independently against each named bank, then
// z-score normalizes within each bank (sample variance, n-1 divisor,
// stddev clamped to >= 1) before merging and truncating to topK overall.
// This prevents a bank with larger raw score magnitudes from dominating.
func (c *BankCluster) QueryAll(queries []BankQuery, topK int) []NormalizedResult {
	var all []NormalizedResult
	for _, q := range queries {
		b, ok := c.banks[q.Bank]
		if !ok {
			continue
		}
		hits := b.QuerySparse(q.Query, topK)
		if len(hits) == 0 {
			continue
		}
		all = append(all, normalize(q.Bank, hits)...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].NormalizedScore > all[j].NormalizedScore })
	if topK > 0 && len(all) > topK {
		all = all[:topK]
	}
	return all
}

func normalize(bankId types.BankId, hits []index.ScoredEntry) []NormalizedResult {
	n := int64(len(hits))
	var sum int64
	for _, h := range hits {
		sum += int64(h.Score)
	}
	mean := sum / n

	var sqDiff int64
	for _, h := range hits {
		d := int64(h.Score) - mean
		sqDiff += d * d
	}
	var stddev int64
	if n < 2 {
		stddev = 1
	} else {
		variance := sqDiff / (n - 1)
		stddev = int64(similarity.Isqrt(uint64(variance)))
	}
	if stddev < 1 {
		stddev = 1
	}

	out := make([]NormalizedResult, len(hits))
	for i, h := range hits {
		out[i] = NormalizedResult{
			Bank:            bankId,
			Entry:           h.Id,
			RawScore:        h.Score,
			NormalizedScore: (int64(h.Score) - mean) * 256 / stddev,
		}
	}
	return out
}

// QueryByPrefix runs QueryAll against every bank whose registered name
// starts with prefix.
func (c *BankCluster) QueryByPrefix(prefix string, query []types.Signal, topK int) []NormalizedResult {
	var qs []BankQuery
	for name, id := range c.byName {
		if strings.HasPrefix(name, prefix) {
			qs = append(qs, BankQuery{Bank: id, Query: query})
		}
	}
	return c.QueryAll(qs, topK)
}

// FlushDirty atomically persists every bank with ShouldPersist(tick) to
// dir/<name>.bank, returning the count flushed.
func (c *BankCluster) FlushDirty(ctx context.Context, dir string, tick uint64) (int, error) {
	unlock, err := lockDir(dir)
	if err != nil {
		return 0, err
	}
	defer unlock()

	count := 0
	for _, b := range c.banks {
		if ctx.Err() != nil {
			return count, ctx.Err()
		}
		if !b.ShouldPersist(tick) {
			continue
		}
		path := filepath.Join(dir, b.Name+".bank")
		if err := codec.SaveAtomicWithRetry(ctx, path, b); err != nil {
			return count, dberr.Io("flush "+path, err)
		}
		b.MarkPersisted(tick)
		count++
		c.logger.Infow("bank flushed", "bank", b.Name, "path", path, "tick", tick)
	}
	return count, nil
}

// FlushDirtyWithJournal flushes every dirty bank, truncating the journal
// afterward if anything was flushed.
func (c *BankCluster) FlushDirtyWithJournal(ctx context.Context, dir string, tick uint64) (int, error) {
	count, err := c.FlushDirty(ctx, dir, tick)
	if err != nil {
		return count, err
	}
	if count > 0 && c.journal != nil {
		if err := c.journal.Truncate(); err != nil {
			return count, dberr.Io("truncate journal", err)
		}
	}
	return count, nil
}

// LoadAll reads every *.bank file in dir and registers the resulting banks.
// A nonexistent directory is treated as empty.
func (c *BankCluster) LoadAll(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return dberr.Io("read dir "+dir, err)
	}
	for _, de := range entries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".bank") {
			continue
		}
		path := filepath.Join(dir, de.Name())
		b, err := codec.Load(path)
		if err != nil {
			return err
		}
		c.banks[b.Id] = b
		c.byName[b.Name] = b.Id
		c.logger.Infow("bank loaded", "bank", b.Name, "path", path)
	}
	return nil
}

// LoadWithJournal loads every snapshot in dir, then replays
// dir/databank.journal if it exists, then opens a fresh journal writer.
func (c *BankCluster) LoadWithJournal(dir string) error {
	if err := c.LoadAll(dir); err != nil {
		return err
	}
	journalPath := filepath.Join(dir, "databank.journal")
	if _, err := os.Stat(journalPath); err == nil {
		replayed, err := journal.Replay(journalPath, c)
		if err != nil {
			return err
		}
		c.logger.Infow("journal replayed", "path", journalPath, "records", replayed)
		if err := journal.Truncate(journalPath); err != nil {
			return dberr.Io("truncate journal", err)
		}
	}
	w, err := journal.Open(journalPath)
	if err != nil {
		return dberr.Io("open journal", err)
	}
	c.journal = w
	return nil
}

// Journal exposes the cluster's open journal writer, if any, so callers
// can append further mutations.
func (c *BankCluster) Journal() *journal.Writer {
	return c.journal
}

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

package ctlcmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Blackfall-Labs/databank/cluster"
	"github.com/Blackfall-Labs/databank/journal"
)

func newReplayCommand(logger *zap.SugaredLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "replay <dir>",
		Short: "Load snapshots and dry-run replay databank.journal without writing anything back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			c := cluster.New(cluster.WithLogger(logger))
			if err := c.LoadAll(dir); err != nil {
				return fmt.Errorf("replay %s: %w", dir, err)
			}
			journalPath := filepath.Join(dir, "databank.journal")
			replayed, err := journal.Replay(journalPath, c)
			if err != nil {
				return fmt.Errorf("replay %s: %w", journalPath, err)
			}
			for id, b := range c.Banks() {
				fmt.Printf("bank=%s name=%q entries=%d\n", id, b.Name, b.EntryCount())
			}
			fmt.Printf("replayed %d journal records (dry run, nothing written)\n", replayed)
			return nil
		},
	}
}

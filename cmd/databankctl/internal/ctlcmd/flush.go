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
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Blackfall-Labs/databank/cluster"
)

func newFlushCommand(logger *zap.SugaredLogger, tick *uint64) *cobra.Command {
	return &cobra.Command{
		Use:   "flush <dir>",
		Short: "Load a cluster, replay its journal, and atomically flush every dirty bank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			c := cluster.New(cluster.WithLogger(logger))
			if err := c.LoadWithJournal(dir); err != nil {
				return fmt.Errorf("flush %s: %w", dir, err)
			}
			count, err := c.FlushDirtyWithJournal(context.Background(), dir, *tick)
			if err != nil {
				return fmt.Errorf("flush %s: %w", dir, err)
			}
			fmt.Printf("flushed %d banks at tick %d\n", count, *tick)
			return nil
		},
	}
}

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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Blackfall-Labs/databank/codec"
	"github.com/Blackfall-Labs/databank/mathutil"
	"github.com/Blackfall-Labs/databank/types"
)

func newInspectCommand(logger *zap.SugaredLogger) *cobra.Command {
	var startEntry string
	cmd := &cobra.Command{
		Use:   "inspect <path-to.bank>",
		Short: "Decode a snapshot and print its header and entry summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			b, err := codec.Load(path)
			if err != nil {
				return fmt.Errorf("inspect %s: %w", path, err)
			}
			var floor types.EntryId
			if startEntry != "" {
				v, ok := mathutil.ParseUint64(startEntry)
				if !ok {
					return fmt.Errorf("inspect: --start-entry %q is not a valid decimal or 0x-hex value", startEntry)
				}
				floor = types.EntryId(v)
			}
			fmt.Printf("bank=%s name=%q vector_width=%d entries=%d\n", mathutil.FormatHexOrDecimal(uint64(b.Id)), b.Name, b.Config.VectorWidth, b.EntryCount())
			shown := 0
			for _, id := range b.SortedEntryIds() {
				if id < floor {
					continue
				}
				e := b.Get(id)
				fmt.Printf("  entry=%s temperature=%s edges=%d access_count=%d tag=%q\n",
					mathutil.FormatHexOrDecimal(uint64(e.Id)), e.Temperature, len(e.Edges), e.AccessCount, e.DebugTag)
				shown++
			}
			logger.Infow("inspected snapshot", "path", path, "entries", b.EntryCount(), "shown", shown)
			return nil
		},
	}
	cmd.Flags().StringVar(&startEntry, "start-entry", "", "skip entries below this EntryId (decimal or 0x-hex)")
	return cmd
}

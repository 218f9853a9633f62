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

// Package ctlcmd wires the databankctl subcommand tree with cobra/pflag.
package ctlcmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewRootCommand builds the databankctl command tree.
func NewRootCommand(logger *zap.SugaredLogger) *cobra.Command {
	var tick uint64

	root := &cobra.Command{
		Use:           "databankctl",
		Short:         "Inspect, recover, and back up a databank cluster directory",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().Uint64Var(&tick, "tick", 0, "logical tick to use for persistence decisions")

	root.AddCommand(
		newInspectCommand(logger),
		newReplayCommand(logger),
		newFlushCommand(logger, &tick),
		newBackupCommand(logger, &tick),
	)
	return root
}

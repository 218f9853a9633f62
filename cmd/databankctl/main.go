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

// Command databankctl is an operator CLI for inspecting, recovering, and
// backing up a databank cluster directory.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Blackfall-Labs/databank/cmd/databankctl/internal/ctlcmd"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := ctlcmd.NewRootCommand(logger.Sugar()).Execute(); err != nil {
		os.Exit(1)
	}
}

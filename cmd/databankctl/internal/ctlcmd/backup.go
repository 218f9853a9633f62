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
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Blackfall-Labs/databank/cluster"
)

func newBackupCommand(logger *zap.SugaredLogger, tick *uint64) *cobra.Command {
	return &cobra.Command{
		Use:   "backup <dir> <archive.tar.zst>",
		Short: "Flush a cluster, then tar and zstd-compress its directory for offline storage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, archivePath := args[0], args[1]
			c := cluster.New(cluster.WithLogger(logger))
			if err := c.LoadWithJournal(dir); err != nil {
				return fmt.Errorf("backup %s: %w", dir, err)
			}
			if _, err := c.FlushDirtyWithJournal(context.Background(), dir, *tick); err != nil {
				return fmt.Errorf("backup %s: %w", dir, err)
			}
			if err := archiveDir(dir, archivePath); err != nil {
				return fmt.Errorf("backup %s: %w", dir, err)
			}
			fmt.Printf("wrote %s\n", archivePath)
			return nil
		},
	}
}

// archiveDir writes every file in dir into a tar stream compressed with
// zstd. This wraps the directory only; it never touches the *.bank or
// databank.journal byte layouts themselves.
func archiveDir(dir, archivePath string) error {
	out, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	defer out.Close()

	zw, err := zstd.NewWriter(out)
	if err != nil {
		return err
	}
	defer zw.Close()

	tw := tar.NewWriter(zw)
	defer tw.Close()

	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = rel
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
}

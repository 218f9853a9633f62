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
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Blackfall-Labs/databank/bank"
	"github.com/Blackfall-Labs/databank/types"
)

func TestSaveAtomicWithRetryStoreRetriesTransientFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockSnapshotStore(ctrl)

	transient := errors.New("device busy")
	gomock.InOrder(
		store.EXPECT().WriteAndRename(gomock.Any(), gomock.Any()).Return(transient),
		store.EXPECT().WriteAndRename(gomock.Any(), gomock.Any()).Return(transient),
		store.EXPECT().WriteAndRename(gomock.Any(), gomock.Any()).Return(nil),
	)

	b := bank.New(1, "region", types.DefaultBankConfig(1))
	err := SaveAtomicWithRetryStore(context.Background(), "/tmp/region.bank", b, store)
	require.NoError(t, err)
}

func TestSaveAtomicWithRetryStoreGivesUpAfterMaxRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockSnapshotStore(ctrl)

	persistent := errors.New("disk full")
	store.EXPECT().WriteAndRename(gomock.Any(), gomock.Any()).Return(persistent).AnyTimes()

	b := bank.New(1, "region", types.DefaultBankConfig(1))
	err := SaveAtomicWithRetryStore(context.Background(), "/tmp/region.bank", b, store)
	require.Error(t, err)
}

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
	"reflect"

	"go.uber.org/mock/gomock"
)

// MockSnapshotStore is a hand-written gomock-style mock of SnapshotStore,
// in the shape go.uber.org/mock's mockgen would generate — written by hand
// here since mockgen is not invoked in this codebase.
type MockSnapshotStore struct {
	ctrl     *gomock.Controller
	recorder *MockSnapshotStoreRecorder
}

// MockSnapshotStoreRecorder records expected calls on MockSnapshotStore.
type MockSnapshotStoreRecorder struct {
	mock *MockSnapshotStore
}

// NewMockSnapshotStore constructs a MockSnapshotStore bound to ctrl.
func NewMockSnapshotStore(ctrl *gomock.Controller) *MockSnapshotStore {
	m := &MockSnapshotStore{ctrl: ctrl}
	m.recorder = &MockSnapshotStoreRecorder{mock: m}
	return m
}

// EXPECT returns the recorder used to set up expectations.
func (m *MockSnapshotStore) EXPECT() *MockSnapshotStoreRecorder {
	return m.recorder
}

func (m *MockSnapshotStore) WriteAndRename(finalPath string, data []byte) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "WriteAndRename", finalPath, data)
	err, _ := ret[0].(error)
	return err
}

func (r *MockSnapshotStoreRecorder) WriteAndRename(finalPath, data interface{}) *gomock.Call {
	r.mock.ctrl.T.Helper()
	return r.mock.ctrl.RecordCallWithMethodType(r.mock, "WriteAndRename", reflect.TypeOf((*MockSnapshotStore)(nil).WriteAndRename), finalPath, data)
}

// Copyright 2026 The Millstone Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_InvokeN(t *testing.T) {
	var ran [4]int32
	err := InvokeN(context.Background(), 4, func(ctx context.Context, i int) error {
		atomic.AddInt32(&ran[i], 1)
		return nil
	})
	require.NoError(t, err)
	for i := range ran {
		assert.Equal(t, int32(1), ran[i], "callback %d", i)
	}
}

func Test_InvokeN_firstErrorCancels(t *testing.T) {
	boom := errors.New("boom")
	var canceled int32
	err := InvokeN(context.Background(), 2, func(ctx context.Context, i int) error {
		if i == 0 {
			return boom
		}
		<-ctx.Done()
		atomic.AddInt32(&canceled, 1)
		return ctx.Err()
	})
	assert.Equal(t, boom, err, "the first error wins over the cancellation it caused")
	assert.Equal(t, int32(1), atomic.LoadInt32(&canceled))
}

func Test_Go(t *testing.T) {
	var n int32
	wait := Go(func() {
		atomic.AddInt32(&n, 1)
	})
	wait()
	wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&n), "wait is safe to call repeatedly")
}

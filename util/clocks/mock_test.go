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

package clocks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_Mock_Now(t *testing.T) {
	clock := NewMock()
	assert.Equal(t, time.Unix(0, 0), clock.Now())
	clock.Advance(time.Second)
	assert.Equal(t, time.Unix(1, 0), clock.Now())
	clock.Advance(500 * time.Millisecond)
	assert.Equal(t, time.Unix(1, 0).Add(500*time.Millisecond), clock.Now())
}

func Test_Wall_Now(t *testing.T) {
	before := time.Now()
	now := Wall.Now()
	after := time.Now()
	assert.False(t, now.Before(before))
	assert.False(t, now.After(after))
}

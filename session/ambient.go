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

package session

import (
	"runtime"
	"strconv"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"
)

// planning holds the session currently planning on each goroutine. Physical
// operator constructors read it through Planning() instead of having the
// session threaded through every call. The entry is scoped to the goroutine
// that published it, so concurrently-planning sessions cannot observe each
// other.
var planning = xsync.NewMapOf[int64, *Session]()

// EnterPlanning publishes s as the ambient session for the calling
// goroutine. It returns a release function that must run on the same
// goroutine before the planning call returns, on every exit path:
//
//	release := sess.EnterPlanning()
//	defer release()
//
// Nested publishes are allowed; release restores the previous session.
func (s *Session) EnterPlanning() (release func()) {
	id := gid()
	prev, hadPrev := planning.Load(id)
	planning.Store(id, s)
	return func() {
		if hadPrev {
			planning.Store(id, prev)
		} else {
			planning.Delete(id)
		}
	}
}

// Planning returns the session published on the calling goroutine, or nil if
// no planning call is in progress here.
func Planning() *Session {
	s, _ := planning.Load(gid())
	return s
}

// gid returns the calling goroutine's id. The runtime does not expose this
// on purpose; parsing the stack header is the usual workaround and is cheap
// enough for once-per-planning-call use.
func gid() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// The header looks like "goroutine 123 [running]:".
	s := strings.TrimPrefix(string(buf[:n]), "goroutine ")
	i := strings.IndexByte(s, ' ')
	if i < 0 {
		return -1
	}
	id, err := strconv.ParseInt(s[:i], 10, 64)
	if err != nil {
		return -1
	}
	return id
}

// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ids

import (
	"fmt"
	"time"

	"github.com/blinklabs-io/gohiero/cbor"
)

// Timestamp is a point in time with nanosecond precision as carried on the wire
type Timestamp struct {
	cbor.StructAsArray
	Seconds int64
	Nanos   int32
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{
		Seconds: t.Unix(),
		Nanos:   int32(t.Nanosecond()), // #nosec G115
	}
}

func (t Timestamp) Time() time.Time {
	return time.Unix(t.Seconds, int64(t.Nanos)).UTC()
}

func (t Timestamp) UnixNano() int64 {
	return t.Seconds*int64(time.Second) + int64(t.Nanos)
}

func (t Timestamp) IsZero() bool {
	return t.Seconds == 0 && t.Nanos == 0
}

func (t Timestamp) String() string {
	return fmt.Sprintf("%d.%09d", t.Seconds, t.Nanos)
}

// Duration is a length of time in whole seconds as carried on the wire
type Duration struct {
	cbor.StructAsArray
	Seconds int64
}

func NewDuration(d time.Duration) Duration {
	return Duration{Seconds: int64(d / time.Second)}
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d.Seconds) * time.Second
}

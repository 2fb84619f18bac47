// Copyright 2015 Google Inc. All rights reserved
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package annotate

import (
	"strconv"
	"strings"

	"github.com/daemoncli/daemon-gen/internal/diag"
)

// Safety is one command's validated safety envelope (spec §3).
type Safety struct {
	RateHz     int
	WatchdogMs int
	Clamp      bool
}

// ParseSafety parses one annotation's "safety=" value, a secondary
// comma-separated k=v list, per spec §4.B. All three keys are required
// (spec §3); a missing or malformed key is INVALID_SAFETY.
func ParseSafety(value string, pos diag.Pos, sink *diag.Sink) (Safety, bool) {
	fields := make(map[string]string)
	ok := true
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, found := strings.Cut(part, "=")
		if !found {
			sink.Add(diag.New(pos, diag.InvalidSafety, "malformed safety field %q", part))
			ok = false
			continue
		}
		fields[k] = v
	}

	var s Safety
	rate, present := fields["rate_hz"]
	if !present {
		sink.Add(diag.New(pos, diag.InvalidSafety, "safety missing required key %q", "rate_hz"))
		ok = false
	} else {
		n, err := strconv.Atoi(rate)
		if err != nil || n < 1 {
			sink.Add(diag.New(pos, diag.InvalidSafety, "safety rate_hz=%q must be a positive integer", rate))
			ok = false
		} else {
			s.RateHz = n
		}
	}

	wd, present := fields["watchdog_ms"]
	if !present {
		sink.Add(diag.New(pos, diag.InvalidSafety, "safety missing required key %q", "watchdog_ms"))
		ok = false
	} else {
		n, err := strconv.Atoi(wd)
		if err != nil || n < 1 {
			sink.Add(diag.New(pos, diag.InvalidSafety, "safety watchdog_ms=%q must be a positive integer", wd))
			ok = false
		} else {
			s.WatchdogMs = n
		}
	}

	clamp, present := fields["clamp"]
	if !present {
		sink.Add(diag.New(pos, diag.InvalidSafety, "safety missing required key %q", "clamp"))
		ok = false
	} else {
		switch clamp {
		case "true":
			s.Clamp = true
		case "false":
			s.Clamp = false
		default:
			sink.Add(diag.New(pos, diag.InvalidSafety, "safety clamp=%q must be \"true\" or \"false\"", clamp))
			ok = false
		}
	}

	for k := range fields {
		switch k {
		case "rate_hz", "watchdog_ms", "clamp":
		default:
			sink.Add(diag.New(pos, diag.InvalidSafety, "unknown safety key %q", k))
			ok = false
		}
	}

	if !ok {
		return Safety{}, false
	}
	return s, true
}

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

package codegen

import (
	"bytes"
	"fmt"
	"math"

	"github.com/daemoncli/daemon-gen/internal/catalog"
)

// RuntimeHeader is daemon_runtime.h: stable and independent of the
// catalog (spec §4.G).
const RuntimeHeader = `#ifndef DAEMON_RUNTIME_H
#define DAEMON_RUNTIME_H

#include <stdbool.h>
#include <stdint.h>

#define DAEMON_OK 0
#define DAEMON_ERR_BAD_TOKEN 10
#define DAEMON_ERR_BAD_ARGS 11
#define DAEMON_ERR_RANGE 12
#define DAEMON_ERR_RATE_LIMIT 13

void daemon_runtime_init(void);
void daemon_runtime_tick(uint32_t now_ms);
void daemon_runtime_handle_line(const char *line, uint32_t now_ms);
void daemon_runtime_stop(void);
void daemon_runtime_publish_telemetry(const char *key, const char *value);

bool daemon_parse_int(const char *raw, int *value);
bool daemon_parse_float(const char *raw, float *value);
int daemon_entry_dispatch(const char *token, int argc, const char **argv);

#endif
`

// EmitRuntimeHeader returns the fixed daemon_runtime.h.
func EmitRuntimeHeader() EmittedFile {
	return EmittedFile{Name: "daemon_runtime.h", Bytes: []byte(RuntimeHeader)}
}

// RuntimeParams are the per-profile constants derived from a Catalog
// (spec §4.G).
type RuntimeParams struct {
	WatchdogMs       int
	MinCmdIntervalMs int
}

// DeriveRuntimeParams computes watchdog_ms and min_cmd_interval_ms from
// a catalog's commands, per spec §4.G:
//
//	watchdog_ms = min over commands of safety.watchdog_ms, floor 100
//	min_cmd_interval_ms = ceil(1000 / max(rate_hz)), floor 10
//
// The implicit STOP command (injected by catalog.Builder.Finalize when
// the user declared no STOP of their own) is excluded: it has no backing
// C function and never appears in the original firmware's derivation, so
// its fixed Safety{RateHz:10, WatchdogMs:300} must not pull a profile's
// derived constants toward its own defaults.
func DeriveRuntimeParams(c catalog.Catalog) RuntimeParams {
	minWatchdog := math.MaxInt32
	maxRateHz := 0
	for _, cmd := range c.Commands {
		if cmd.Implicit {
			continue
		}
		if cmd.Safety.WatchdogMs < minWatchdog {
			minWatchdog = cmd.Safety.WatchdogMs
		}
		if cmd.Safety.RateHz > maxRateHz {
			maxRateHz = cmd.Safety.RateHz
		}
	}
	if minWatchdog < 100 {
		minWatchdog = 100
	}
	interval := 10
	if maxRateHz > 0 {
		interval = (1000 + maxRateHz - 1) / maxRateHz
	}
	if interval < 10 {
		interval = 10
	}
	return RuntimeParams{WatchdogMs: minWatchdog, MinCmdIntervalMs: interval}
}

// EmitRuntimeSource produces daemon_runtime.c: the line protocol state
// machine, rate limit, watchdog, and the manifest string embedded
// verbatim after the MANIFEST prefix (spec §4.G, §6).
func EmitRuntimeSource(params RuntimeParams, manifestJSON []byte) EmittedFile {
	var b bytes.Buffer
	b.WriteString("#include \"daemon_runtime.h\"\n\n")
	b.WriteString("#include <stdio.h>\n")
	b.WriteString("#include <stdlib.h>\n")
	b.WriteString("#include <string.h>\n\n")

	b.WriteString("static uint32_t g_last_cmd_ms = 0;\n")
	fmt.Fprintf(&b, "static const uint32_t g_watchdog_ms = %d;\n", params.WatchdogMs)
	fmt.Fprintf(&b, "static const uint32_t g_min_cmd_interval_ms = %d;\n", params.MinCmdIntervalMs)
	b.WriteString("\n")

	b.WriteString(`static void daemon_serial_write(const char *line) {
  puts(line);
}

bool daemon_parse_int(const char *raw, int *value) {
  if (raw == NULL || value == NULL) return false;
  char *end = NULL;
  long parsed = strtol(raw, &end, 10);
  if (end == raw || *end != '\0') return false;
  *value = (int)parsed;
  return true;
}

bool daemon_parse_float(const char *raw, float *value) {
  if (raw == NULL || value == NULL) return false;
  char *end = NULL;
  float parsed = strtof(raw, &end);
  if (end == raw || *end != '\0') return false;
  *value = parsed;
  return true;
}

void daemon_runtime_publish_telemetry(const char *key, const char *value) {
  char line[256];
  snprintf(line, sizeof(line), "TELEMETRY %s=%s", key, value);
  daemon_serial_write(line);
}

void daemon_runtime_stop(void) {
  daemon_serial_write("OK");
}

void daemon_runtime_init(void) {
  g_last_cmd_ms = 0;
}

void daemon_runtime_tick(uint32_t now_ms) {
  if (g_last_cmd_ms > 0 && (now_ms - g_last_cmd_ms) > g_watchdog_ms) {
    daemon_runtime_stop();
    g_last_cmd_ms = 0;
  }
}

void daemon_runtime_handle_line(const char *line, uint32_t now_ms) {
  if (line == NULL) {
    daemon_serial_write("ERR BAD_REQUEST empty_line");
    return;
  }

  if (strcmp(line, "HELLO") == 0) {
    daemon_serial_write("OK");
    return;
  }

  if (strcmp(line, "READ_MANIFEST") == 0) {
`)
	fmt.Fprintf(&b, "    daemon_serial_write(\"MANIFEST %s\");\n", cStringLiteral(manifestJSON))
	b.WriteString(`    return;
  }

  if (strcmp(line, "STOP") == 0) {
    daemon_runtime_stop();
    return;
  }

  if (strncmp(line, "RUN ", 4) == 0) {
    if (g_min_cmd_interval_ms > 0 && g_last_cmd_ms > 0 && (now_ms - g_last_cmd_ms) < g_min_cmd_interval_ms) {
      daemon_serial_write("ERR RATE_LIMIT too_fast");
      return;
    }

    char mutable_line[256];
    strncpy(mutable_line, line + 4, sizeof(mutable_line) - 1);
    mutable_line[sizeof(mutable_line) - 1] = '\0';

    const char *argv[16];
    int argc = 0;
    char *save_ptr = NULL;
    char *token = strtok_r(mutable_line, " ", &save_ptr);
    char *piece = NULL;
    while ((piece = strtok_r(NULL, " ", &save_ptr)) != NULL && argc < 16) {
      argv[argc++] = piece;
    }

    int result = daemon_entry_dispatch(token, argc, argv);
    if (result == DAEMON_OK) {
      daemon_serial_write("OK");
      g_last_cmd_ms = now_ms;
    } else if (result == DAEMON_ERR_BAD_TOKEN) {
      daemon_serial_write("ERR BAD_TOKEN unknown");
    } else if (result == DAEMON_ERR_BAD_ARGS) {
      daemon_serial_write("ERR BAD_ARGS invalid");
    } else if (result == DAEMON_ERR_RANGE) {
      daemon_serial_write("ERR RANGE out_of_bounds");
    } else {
      daemon_serial_write("ERR INTERNAL dispatch_failed");
    }
    return;
  }

  daemon_serial_write("ERR BAD_REQUEST unsupported");
}
`)

	return EmittedFile{
		Name:    "daemon_runtime.c",
		Bytes:   b.Bytes(),
		Depends: []string{"daemon_runtime.h"},
	}
}

// cStringLiteral escapes raw JSON bytes for embedding inside a C
// double-quoted string literal (spec §4.G: the manifest is embedded
// verbatim, escaped for C).
func cStringLiteral(data []byte) string {
	var b bytes.Buffer
	for _, r := range string(data) {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

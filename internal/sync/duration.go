// Aurasync - Immich to Aura Frame Photo Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aurasync

package sync

import (
	"math"
	"strconv"
	"strings"

	"github.com/tomtom215/aurasync/internal/logging"
)

// defaultVideoDuration is used when an Immich video carries no duration.
const defaultVideoDuration = "0:00:00.00"

// ParseDuration converts an Immich "H:MM:SS[.fraction]" duration into seconds.
//
// Malformed input logs a warning and yields 0. A bad duration only degrades
// video metadata, so it never fails the upload that carries it.
func ParseDuration(s string) float64 {
	seconds, ok := parseTimecode(s)
	if !ok {
		logging.Warn().Str("duration", s).Msg("Failed to parse duration, using 0")
		return 0
	}
	return seconds
}

func parseTimecode(s string) (float64, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, false
	}
	if !isDecimal(parts[0], false) || !isDecimal(parts[1], false) || !isDecimal(parts[2], true) {
		return 0, false
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	secs, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, false
	}

	total := float64(hours)*3600 + float64(minutes)*60 + secs
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return 0, false
	}
	return total, true
}

// isDecimal reports whether s is a run of ASCII digits, optionally with one
// fractional part when fraction is set. Signs, exponents, hex and the
// NaN/Inf spellings that strconv accepts are all rejected.
func isDecimal(s string, fraction bool) bool {
	digits := 0
	dot := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' && fraction && !dot:
			dot = true
		default:
			return false
		}
	}
	return digits > 0
}

// seehuhn.de/go/maprender - a streaming map renderer
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package maprender

import (
	"log/slog"

	"seehuhn.de/go/maprender/internal/logging"
)

// SetLogger configures the logger for maprender and all its sub-packages.
// By default, maprender produces no log output. Pass nil to restore the
// silent default.
//
// Log levels used by maprender:
//   - [slog.LevelDebug]: render states, skipped symbolizers
//   - [slog.LevelWarn]: aborted layers, ignored transformation arguments,
//     recovered listener panics
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return logging.Get()
}

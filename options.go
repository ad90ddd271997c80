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
	"runtime"

	"seehuhn.de/go/maprender/crs"
	"seehuhn.de/go/maprender/transform"
)

// DefaultQueueDepth is the number of features buffered between reading
// and painting, per layer.
const DefaultQueueDepth = 4

// Options configures a [Renderer].
type Options struct {
	// Workers is the maximal number of layers rendered concurrently.
	// Values below 1 mean 1.
	Workers int

	// QueueDepth is the number of features read ahead of the painter in
	// every layer. Values below 1 mean DefaultQueueDepth.
	QueueDepth int

	// Registry holds the rendering transformations. If nil, a registry
	// with the built-in transformations is used.
	Registry *transform.Registry

	// Resolver is used to reproject layers into the map CRS. If nil, the
	// resolver of the registry is used.
	Resolver crs.Resolver
}

// DefaultOptions returns options which render one layer per CPU.
func DefaultOptions() Options {
	return Options{
		Workers:    runtime.GOMAXPROCS(0),
		QueueDepth: DefaultQueueDepth,
	}
}

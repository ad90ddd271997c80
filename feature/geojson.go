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

package feature

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb/geojson"

	"seehuhn.de/go/maprender/crs"
)

// ReadGeoJSON reads a GeoJSON FeatureCollection into an indexed in-memory
// collection. Feature IDs are converted to strings; features without an ID
// are numbered from 1 in document order.
func ReadGeoJSON(r io.Reader, c crs.CRS) (*Memory, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "reading GeoJSON"), ErrDataAccess)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decoding GeoJSON"), ErrDataAccess)
	}

	features := make([]*Feature, 0, len(fc.Features))
	for i, gf := range fc.Features {
		id := fmt.Sprint(i + 1)
		if gf.ID != nil {
			id = fmt.Sprint(gf.ID)
		}
		props := make(map[string]any, len(gf.Properties))
		for k, v := range gf.Properties {
			props[k] = v
		}
		features = append(features, &Feature{
			ID:         id,
			Geometry:   gf.Geometry,
			Properties: props,
		})
	}
	return NewMemory(c, features...), nil
}

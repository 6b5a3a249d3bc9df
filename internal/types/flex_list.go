// flex_list.go
//
// A coaching nutrition data service: foods, recipes, meals and diet plans
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of macrosdb.
// macrosdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// macrosdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with macrosdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlexList accepts either a JSON array or a single element. Builders post a lone meal or
// ingredient as often as a list of them. Null and "" leave the list nil, which reads as
// not provided; [] is provided and empty.
type FlexList[T any] []T

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexList[T]) UnmarshalJSON(data []byte) error {
	if isBlank(data) {
		*f = nil
		return nil
	}

	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		items := []T{}
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("FlexList: %w", err)
		}
		*f = items
		return nil
	}

	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return fmt.Errorf("FlexList: %w", err)
	}
	*f = FlexList[T]{item}
	return nil
}

// Provided reports whether the list was present in the body, even when empty.
func (f FlexList[T]) Provided() bool {
	return f != nil
}

// Slice returns the elements as a plain slice.
func (f FlexList[T]) Slice() []T {
	return []T(f)
}

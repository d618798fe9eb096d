// Copyright (c) 2018 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package uuid

import (
	"database/sql/driver"
	"fmt"

	"github.com/gofrs/uuid"
)

type UUID []byte

func MustNewUUID() UUID {
	newUuid, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}

	return newUuid[:]
}

func MustParseUUID(s string) UUID {
	parsed := uuid.FromStringOrNil(s)
	if parsed == uuid.Nil {
		panic("invalid UUID string: " + s)
	}

	return parsed[:]
}

func ParseUUID(s string) (UUID, error) {
	parsed := uuid.FromStringOrNil(s)
	if parsed == uuid.Nil {
		return nil, fmt.Errorf("invalid UUID string: %s", s)
	}

	return parsed[:], nil
}

func (u UUID) String() string {
	if u == nil {
		return ""
	}

	parsed := uuid.FromBytesOrNil(u)
	if parsed == uuid.Nil {
		return ""
	}

	return parsed.String()
}

func (u *UUID) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	guuid := &uuid.UUID{}
	if err := guuid.Scan(src); err != nil {
		return err
	}
	*u = (*guuid)[:]
	return nil
}

func (u UUID) Value() (driver.Value, error) {
	return []byte(u), nil
}

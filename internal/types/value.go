/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"fmt"
	"math"
	"strconv"

	cerrors "corvusdb/internal/errors"
)

// Value is a single immutable, copyable scalar: a physical-type tag plus
// inline payload plus a NULL bit (spec §3 Value). Logical additionally
// records the originating LogicalKind, needed because DATE/TIMESTAMP
// share a physical representation with INTEGER/BIGINT (spec §3 Physical
// type) but format and cast differently — a Value alone has to be
// self-describing enough for TryCast to do the right thing.
type Value struct {
	Physical PhysicalType
	Logical  LogicalKind
	Null     bool

	i   int64   // BOOL (0/1), I8, I16, I32, I64, DATE (days), TIMESTAMP (micros)
	f   float64 // F32, F64
	str string  // STRING_REF
}

// NullValue returns a NULL value of the given logical type.
func NullValue(t LogicalType) Value {
	return Value{Physical: PhysicalOf(t), Logical: t.Kind, Null: true}
}

func BoolValue(b bool) Value {
	v := Value{Physical: PBOOL, Logical: BOOLEAN}
	if b {
		v.i = 1
	}
	return v
}

func Int8Value(x int8) Value   { return Value{Physical: PI8, Logical: TINYINT, i: int64(x)} }
func Int16Value(x int16) Value { return Value{Physical: PI16, Logical: SMALLINT, i: int64(x)} }
func Int32Value(x int32) Value { return Value{Physical: PI32, Logical: INTEGER, i: int64(x)} }
func Int64Value(x int64) Value { return Value{Physical: PI64, Logical: BIGINT, i: x} }
func Float32Value(x float32) Value {
	return Value{Physical: PF32, Logical: REAL, f: float64(x)}
}
func Float64Value(x float64) Value { return Value{Physical: PF64, Logical: DOUBLE, f: x} }
func StringValue(s string) Value   { return Value{Physical: PSTRING_REF, Logical: VARCHAR, str: s} }
func BlobValue(b string) Value     { return Value{Physical: PSTRING_REF, Logical: BLOB, str: b} }

// DateValue wraps a day count since the fixed epoch (spec §3: DATE is
// "32-bit integer days").
func DateValue(days int32) Value {
	return Value{Physical: PI32, Logical: DATE, i: int64(days)}
}

// TimestampValue wraps a microsecond count since the fixed epoch (spec
// §3: TIMESTAMP is "64-bit integer microseconds").
func TimestampValue(micros int64) Value {
	return Value{Physical: PI64, Logical: TIMESTAMP, i: micros}
}

func (v Value) Bool() bool       { return v.i != 0 }
func (v Value) Int64() int64     { return v.i }
func (v Value) Float64() float64 { return v.f }
func (v Value) String() string   { return v.str }
func (v Value) Type() LogicalType { return T(v.Logical) }

func (v Value) AsFloat() float64 {
	switch v.Physical {
	case PF32, PF64:
		return v.f
	default:
		return float64(v.i)
	}
}

// GoString renders v the way SQL CAST(... AS VARCHAR) would (spec §4.1
// round-trip invariant), used for display and by BLOB/VARCHAR casts.
func (v Value) GoString() string {
	if v.Null {
		return "NULL"
	}
	switch v.Logical {
	case BOOLEAN:
		return strconv.FormatBool(v.Bool())
	case TINYINT, SMALLINT, INTEGER, BIGINT:
		return strconv.FormatInt(v.i, 10)
	case REAL, DOUBLE:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case DATE:
		return FormatDate(int32(v.i))
	case TIMESTAMP:
		return FormatTimestamp(v.i)
	case VARCHAR, BLOB:
		return v.str
	default:
		return fmt.Sprintf("<value physical=%v>", v.Physical)
	}
}

// TryCast converts v to target, never panicking (spec §4.1). Failures
// return a *errors.Error of Kind ConversionError.
func TryCast(v Value, target LogicalType) (Value, error) {
	if v.Null {
		return NullValue(target), nil
	}
	switch target.Kind {
	case BOOLEAN:
		return castToBool(v)
	case TINYINT:
		return castToInt(v, target, math.MinInt8, math.MaxInt8, func(i int32) Value { return Int8Value(int8(i)) })
	case SMALLINT:
		return castToInt(v, target, math.MinInt16, math.MaxInt16, func(i int32) Value { return Int16Value(int16(i)) })
	case INTEGER:
		return castToInt(v, target, math.MinInt32, math.MaxInt32, Int32Value)
	case BIGINT:
		return castToBigint(v, target)
	case REAL:
		return castToFloat(v, target, true)
	case DOUBLE:
		return castToFloat(v, target, false)
	case DATE:
		return castToDate(v)
	case TIMESTAMP:
		return castToTimestamp(v)
	case VARCHAR:
		return StringValue(v.GoString()), nil
	case BLOB:
		return BlobValue(v.GoString()), nil
	default:
		return Value{}, cerrors.Internal("unknown cast target kind %v", target.Kind)
	}
}

func castToBool(v Value) (Value, error) {
	switch v.Logical {
	case BOOLEAN:
		return v, nil
	case TINYINT, SMALLINT, INTEGER, BIGINT:
		return BoolValue(v.i != 0), nil
	case REAL, DOUBLE:
		return BoolValue(v.f != 0), nil
	case VARCHAR:
		switch v.str {
		case "TRUE", "true", "t", "1":
			return BoolValue(true), nil
		case "FALSE", "false", "f", "0":
			return BoolValue(false), nil
		}
		return Value{}, cerrors.InvalidFormat(v.str, "BOOLEAN")
	}
	return Value{}, cerrors.InvalidFormat(v.GoString(), "BOOLEAN")
}

func castToInt(v Value, target LogicalType, lo, hi int64, build func(int32) Value) (Value, error) {
	var i int64
	switch v.Logical {
	case BOOLEAN, TINYINT, SMALLINT, INTEGER, BIGINT:
		i = v.i
	case REAL, DOUBLE:
		if v.f < float64(lo) || v.f > float64(hi) {
			return Value{}, cerrors.OutOfRange("", v.f, target.Kind.String())
		}
		i = int64(v.f)
	case VARCHAR:
		n, err := strconv.ParseInt(v.str, 10, 64)
		if err != nil {
			return Value{}, cerrors.InvalidFormat(v.str, target.Kind.String())
		}
		i = n
	default:
		return Value{}, cerrors.InvalidFormat(v.GoString(), target.Kind.String())
	}
	if i < lo || i > hi {
		return Value{}, cerrors.OutOfRange("", i, target.Kind.String())
	}
	return build(int32(i)), nil
}

func castToBigint(v Value, target LogicalType) (Value, error) {
	switch v.Logical {
	case BOOLEAN, TINYINT, SMALLINT, INTEGER, BIGINT:
		return Int64Value(v.i), nil
	case REAL, DOUBLE:
		if v.f < math.MinInt64 || v.f > math.MaxInt64 {
			return Value{}, cerrors.OutOfRange("", v.f, "BIGINT")
		}
		return Int64Value(int64(v.f)), nil
	case VARCHAR:
		n, err := strconv.ParseInt(v.str, 10, 64)
		if err != nil {
			return Value{}, cerrors.InvalidFormat(v.str, "BIGINT")
		}
		return Int64Value(n), nil
	}
	return Value{}, cerrors.InvalidFormat(v.GoString(), "BIGINT")
}

func castToFloat(v Value, target LogicalType, narrow bool) (Value, error) {
	var f float64
	switch v.Logical {
	case BOOLEAN, TINYINT, SMALLINT, INTEGER, BIGINT:
		f = float64(v.i)
	case REAL, DOUBLE:
		f = v.f
	case VARCHAR:
		n, err := strconv.ParseFloat(v.str, 64)
		if err != nil {
			return Value{}, cerrors.InvalidFormat(v.str, target.Kind.String())
		}
		f = n
	default:
		return Value{}, cerrors.InvalidFormat(v.GoString(), target.Kind.String())
	}
	if narrow {
		return Float32Value(float32(f)), nil
	}
	return Float64Value(f), nil
}

func castToDate(v Value) (Value, error) {
	switch v.Logical {
	case DATE:
		return v, nil
	case VARCHAR:
		days, err := ParseDate(v.str)
		if err != nil {
			return Value{}, err
		}
		return DateValue(days), nil
	}
	return Value{}, cerrors.InvalidFormat(v.GoString(), "DATE")
}

func castToTimestamp(v Value) (Value, error) {
	switch v.Logical {
	case TIMESTAMP:
		return v, nil
	case DATE:
		return TimestampValue(int64(v.i) * microsPerDay), nil
	case VARCHAR:
		micros, err := ParseTimestamp(v.str)
		if err != nil {
			return Value{}, err
		}
		return TimestampValue(micros), nil
	}
	return Value{}, cerrors.InvalidFormat(v.GoString(), "TIMESTAMP")
}

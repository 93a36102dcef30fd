package model

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Money is a fixed-point monetary amount. It is stored as Decimal128 in
// MongoDB so totals never accumulate float drift.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return Money{Decimal: d}, nil
}

// MustMoney panics on a malformed amount. Test and wiring helper only.
func MustMoney(s string) Money {
	m, err := MoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

func ZeroMoney() Money {
	return Money{Decimal: decimal.Zero}
}

func (m Money) Add(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

func (m Money) Sub(o Money) Money {
	return Money{Decimal: m.Decimal.Sub(o.Decimal)}
}

// MulInt scales the amount by an integer quantity.
func (m Money) MulInt(n int64) Money {
	return Money{Decimal: m.Decimal.Mul(decimal.NewFromInt(n))}
}

func (m Money) LessThan(o Money) bool {
	return m.Decimal.LessThan(o.Decimal)
}

func (m Money) Equal(o Money) bool {
	return m.Decimal.Equal(o.Decimal)
}

func (m Money) IsNegative() bool {
	return m.Decimal.IsNegative()
}

// Display renders the amount with two decimal places, e.g. "15.00".
func (m Money) Display() string {
	return m.Decimal.StringFixed(2)
}

func (m Money) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d128, err := primitive.ParseDecimal128(m.Decimal.String())
	if err != nil {
		return 0, nil, fmt.Errorf("money to decimal128: %w", err)
	}
	return bson.MarshalValue(d128)
}

func (m *Money) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeDecimal128:
		d128, ok := rv.Decimal128OK()
		if !ok {
			return fmt.Errorf("malformed decimal128 value")
		}
		d, err := decimal.NewFromString(d128.String())
		if err != nil {
			return fmt.Errorf("decimal128 to money: %w", err)
		}
		m.Decimal = d
		return nil
	case bson.TypeDouble:
		f, ok := rv.DoubleOK()
		if !ok {
			return fmt.Errorf("malformed double value")
		}
		m.Decimal = decimal.NewFromFloat(f)
		return nil
	case bson.TypeString:
		s, ok := rv.StringValueOK()
		if !ok {
			return fmt.Errorf("malformed string value")
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		m.Decimal = d
		return nil
	case bson.TypeNull:
		m.Decimal = decimal.Zero
		return nil
	default:
		return fmt.Errorf("cannot decode %s into money", t)
	}
}

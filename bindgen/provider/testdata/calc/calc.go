// Package calc is a fixture for the source provider tests.
package calc

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/broady/hostbind"
)

// Record is a stored value.
type Record struct {
	ID   string
	Tags []string
}

// Base is embedded in Calculator.
type Base struct{}

// Version is promoted to Calculator and not exposed.
func (Base) Version() string { return "1" }

// Calculator does arithmetic.
//
// It is stateless.
//
//hostbind:namespace
type Calculator struct {
	Base
	store map[string]*Record
}

// Add returns a+b.
func (c *Calculator) Add(a, b int) int { return a + b }

// Fetch loads a record.
//
//hostbind:permission auth.Role("reader")
//hostbind:permission auth.Scope("records", auth.Read)
func (c *Calculator) Fetch(ctx context.Context, id string) (*hostbind.Future[Record], error) {
	r, ok := c.store[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return hostbind.Resolved(*r), nil
}

// List returns the records whose ID starts with prefix.
//
//hostbind:named limit
func (c *Calculator) List(prefix string, limit *int, tags ...string) ([]*Record, error) {
	return nil, nil
}

// Convert exercises the primitive table.
func (c *Calculator) Convert(n json.Number, f float32, m map[string]any, at time.Time, null hostbind.NullValue) hostbind.NumberValue {
	return 0
}

// Reset clears the store.
func (c *Calculator) Reset() { c.store = nil }

//hostbind:method skip=true
func (c *Calculator) Debug() string { return "" }

//hostbind:method name=div
func (c *Calculator) Divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, errors.New("division by zero")
	}
	return a / b, nil
}

func (c *Calculator) helper() {}

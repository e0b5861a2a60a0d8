package viewcache

import (
	"context"
	"encoding/json"
)

const (
	RouteCustomers = "/dashboard/customers"
	RouteInvoices  = "/dashboard/invoices"
)

// Cache holds rendered list views. Revalidate makes every entry cached for a
// route stale at once.
//
// Get reports the route generation it read against, hit or miss. A value
// computed after that Get must be stored with Set under the same generation,
// so a Revalidate that lands while it is computed keeps it from being read.
// A negative generation means the cache could not be consulted; Set ignores
// it.
type Cache interface {
	Get(ctx context.Context, route, key string) (value []byte, generation int64, ok bool)
	Set(ctx context.Context, route, key string, generation int64, value []byte)
	Revalidate(ctx context.Context, route string) error
}

// Load returns the cached value for route/key or computes and stores it.
func Load[T any](ctx context.Context, c Cache, route, key string, compute func(context.Context) (T, error)) (T, error) {
	raw, generation, ok := c.Get(ctx, route, key)
	if ok {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	value, err := compute(ctx)
	if err != nil {
		return value, err
	}
	if raw, err := json.Marshal(value); err == nil {
		c.Set(ctx, route, key, generation, raw)
	}
	return value, nil
}

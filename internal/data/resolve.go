package data

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/armory/internal/errors"
	"github.com/roach88/armory/internal/record"
	"github.com/roach88/armory/internal/store"
)

// resolveOne reads the single record of kind matching criteria.
// Zero matches is errors.ErrNotFound; more than one is errors.ErrAmbiguous.
func resolveOne(ctx context.Context, a store.Adapter, kind record.Kind, criteria record.Criteria) (record.Record, error) {
	recs, err := a.Get(ctx, kind, criteria)
	if err != nil {
		return nil, err
	}
	switch len(recs) {
	case 0:
		return nil, errors.NotFoundf("no %s matching %s", kind, describe(criteria))
	case 1:
		return recs[0], nil
	default:
		return nil, errors.Ambiguousf("%d %s records match %s", len(recs), kind, describe(criteria))
	}
}

// only returns the single view in views, under the same policy as resolveOne.
func only[T any](views []T, kind record.Kind, criteria record.Criteria) (T, error) {
	var zero T
	switch len(views) {
	case 0:
		return zero, errors.NotFoundf("no %s matching %s", kind, describe(criteria))
	case 1:
		return views[0], nil
	default:
		return zero, errors.Ambiguousf("%d %s records match %s", len(views), kind, describe(criteria))
	}
}

// describe renders criteria as "a=1 b=x" in field order.
func describe(criteria record.Criteria) string {
	if len(criteria) == 0 {
		return "any criteria"
	}
	parts := make([]string, 0, len(criteria))
	for _, f := range criteria.Fields() {
		parts = append(parts, fmt.Sprintf("%s=%v", f, criteria[f]))
	}
	return strings.Join(parts, " ")
}

// views converts records with from, never returning nil.
func views[T any](recs []record.Record, from func(record.Record) T) []T {
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		out = append(out, from(r))
	}
	return out
}

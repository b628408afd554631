package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HimeshSalesDev/msc-inventory-platform-backend-sub000/internal/core"
)

func TestDiff_SingleChangedField(t *testing.T) {
	res := core.Diff(
		map[string]any{"a": 1, "b": 2},
		map[string]any{"a": 1, "b": 3},
		nil)

	require.Equal(t, []string{"b"}, res.ChangedPaths)
	assert.Equal(t, map[string]any{"b": 2}, res.Before)
	assert.Equal(t, map[string]any{"b": 3}, res.After)
}

func TestDiff_IdenticalYieldsNoChanges(t *testing.T) {
	x := map[string]any{"a": 1, "b": "two", "nested": map[string]any{"c": true}}
	res := core.Diff(x, x, nil)
	assert.Empty(t, res.ChangedPaths)
	assert.Empty(t, res.Before)
	assert.Empty(t, res.After)
}

func TestDiff_NestedDottedPaths(t *testing.T) {
	res := core.Diff(
		map[string]any{"address": map[string]any{"city": "Reno", "zip": "89501"}},
		map[string]any{"address": map[string]any{"city": "Sparks", "zip": "89501"}},
		nil)

	require.Equal(t, []string{"address.city"}, res.ChangedPaths)
	assert.Equal(t, "Reno", res.Before["address.city"])
	assert.Equal(t, "Sparks", res.After["address.city"])
}

func TestDiff_IgnoredKeys(t *testing.T) {
	res := core.Diff(
		map[string]any{"qty": "10", "updatedAt": "2026-01-01"},
		map[string]any{"qty": "10", "updatedAt": "2026-02-02"},
		[]string{"updatedAt"})
	assert.Empty(t, res.ChangedPaths)
}

func TestDiff_NilAndMissingAreEmpty(t *testing.T) {
	// An explicit nil and an absent key compare equal.
	res := core.Diff(
		map[string]any{"a": nil},
		map[string]any{},
		nil)
	assert.Empty(t, res.ChangedPaths)

	// nil -> value is a change recorded on the after side only.
	res = core.Diff(
		map[string]any{"a": nil},
		map[string]any{"a": "set"},
		nil)
	require.Equal(t, []string{"a"}, res.ChangedPaths)
	_, hasBefore := res.Before["a"]
	assert.False(t, hasBefore)
	assert.Equal(t, "set", res.After["a"])
}

func TestDiff_LooseScalarEquality(t *testing.T) {
	res := core.Diff(
		map[string]any{"qty": 15, "price": 15.0, "name": "x"},
		map[string]any{"qty": "15", "price": 15, "name": "x"},
		nil)
	assert.Empty(t, res.ChangedPaths)
}

func TestDiff_NewAndRemovedKeys(t *testing.T) {
	res := core.Diff(
		map[string]any{"gone": "old"},
		map[string]any{"added": "new"},
		nil)
	assert.ElementsMatch(t, []string{"gone", "added"}, res.ChangedPaths)
	assert.Equal(t, "old", res.Before["gone"])
	assert.Equal(t, "new", res.After["added"])
}

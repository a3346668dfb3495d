package checklist_test

import (
	"strings"
	"testing"

	"github.com/Lllllllleong/inspectionrequest/internal/checklist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	reg := checklist.Default()

	items := reg.Items()
	assert.Len(t, items, 68, "Default registry should carry every checklist item of the form")
	assert.Len(t, reg.Categories(), 6)
	assert.Len(t, reg.Fields(), 7)

	for _, it := range items {
		assert.True(t, strings.HasPrefix(it.ID, checklist.ItemPrefix), "%s should carry the item prefix", it.ID)
		assert.NotEmpty(t, it.Label, "%s should have a label", it.ID)
		assert.NotEmpty(t, it.Category, "%s should belong to a category", it.ID)
	}

	it, ok := reg.Item("chk_fire_alarm_first_fix")
	require.True(t, ok)
	assert.Equal(t, checklist.CategoryElectrical, it.Category)
	assert.Equal(t, "fire_alarm", it.Group)

	assert.True(t, reg.IsField(checklist.FieldSerialNo))
	assert.False(t, reg.IsItem(checklist.FieldSerialNo))
	assert.True(t, reg.Known(checklist.FieldDate))
	assert.False(t, reg.Known("chk_unknown"))
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		fields     []checklist.Field
		categories []checklist.Category

		wantErr bool
	}{
		"Valid registry": {
			fields:     []checklist.Field{{ID: "a"}},
			categories: []checklist.Category{{ID: "c", Groups: []checklist.Group{{Items: []checklist.Item{{ID: "chk_a"}}}}}},
		},

		"Error on field without identifier": {fields: []checklist.Field{{Label: "x"}}, wantErr: true},
		"Error on duplicate field":          {fields: []checklist.Field{{ID: "a"}, {ID: "a"}}, wantErr: true},
		"Error on item without prefix": {
			categories: []checklist.Category{{ID: "c", Groups: []checklist.Group{{Items: []checklist.Item{{ID: "a"}}}}}},
			wantErr:    true,
		},
		"Error on duplicate item across categories": {
			categories: []checklist.Category{
				{ID: "c1", Groups: []checklist.Group{{Items: []checklist.Item{{ID: "chk_a"}}}}},
				{ID: "c2", Groups: []checklist.Group{{Items: []checklist.Item{{ID: "chk_a"}}}}},
			},
			wantErr: true,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := checklist.New(tc.fields, tc.categories)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	reg, err := checklist.New(
		[]checklist.Field{{ID: "unit_name"}},
		[]checklist.Category{{ID: "c", Groups: []checklist.Group{{Items: []checklist.Item{{ID: "chk_a"}, {ID: "chk_b"}}}}}},
	)
	require.NoError(t, err)

	tests := map[string]struct {
		ids           []string
		allowUnplaced bool

		wantUnknown  []string
		wantUnplaced []string
		wantErr      bool
	}{
		"Complete set":                     {ids: []string{"unit_name", "chk_a", "chk_b"}},
		"Unplaced items are allowed":       {ids: []string{"chk_a"}, allowUnplaced: true, wantUnplaced: []string{"chk_b"}},
		"Fields are not required":          {ids: []string{"chk_b", "chk_a"}},
		"Error on unplaced items":          {ids: []string{"chk_a"}, wantUnplaced: []string{"chk_b"}, wantErr: true},
		"Error on unknown identifiers":     {ids: []string{"chk_a", "chk_b", "zz", "aa"}, wantUnknown: []string{"aa", "zz"}, wantErr: true},
		"Error on unknown even if allowed": {ids: []string{"chk_a", "chk_b", "x"}, allowUnplaced: true, wantUnknown: []string{"x"}, wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cov := reg.Check(tc.ids)
			assert.Equal(t, tc.wantUnknown, cov.Unknown)
			assert.Equal(t, tc.wantUnplaced, cov.Unplaced)
			if tc.wantErr {
				require.Error(t, cov.Err(tc.allowUnplaced))
				return
			}
			require.NoError(t, cov.Err(tc.allowUnplaced))
		})
	}
}

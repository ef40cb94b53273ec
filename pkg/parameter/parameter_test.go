// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parameter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{"", TypeString, false},
		{"string", TypeString, false},
		{"Number", TypeNumber, false},
		{" BOOLEAN ", TypeBoolean, false},
		{"object", TypeObject, false},
		{"array", TypeArray, false},
		{"date", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestList_Editing(t *testing.T) {
	l := NewList()
	a := l.Add("query", "weather", "")
	b := l.Add("count", "3", TypeNumber)

	assert.Equal(t, TypeString, a.Type)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, l.Len())

	require.True(t, l.Update(a.ID, "city", "Hangzhou", TypeString))
	items := l.Items()
	assert.Equal(t, a.ID, items[0].ID, "id must survive updates")
	assert.Equal(t, "city", items[0].Name)
	assert.Equal(t, "Hangzhou", items[0].Value)

	assert.False(t, l.Update("missing", "x", "y", TypeString))

	l.Remove(a.ID)
	l.Remove("missing")
	items = l.Items()
	require.Len(t, items, 1)
	assert.Equal(t, b.ID, items[0].ID)

	c := l.Add("flag", "true", TypeBoolean)
	assert.NotEqual(t, a.ID, c.ID, "ids are never reused")
}

func TestList_ItemsIsCopy(t *testing.T) {
	l := NewList(Parameter{Name: "a", Value: "1"})
	items := l.Items()
	items[0].Name = "changed"

	assert.Equal(t, "a", l.Items()[0].Name)
	assert.NotEmpty(t, l.Items()[0].ID)
	assert.Equal(t, TypeString, l.Items()[0].Type)
}

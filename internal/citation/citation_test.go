// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/paperforge/pkg/types"
)

func TestDedupe(t *testing.T) {
	tests := []struct {
		name string
		in   []types.Citation
		want []types.Citation
	}{
		{
			name: "first seen wins and order is preserved",
			in: []types.Citation{
				{Title: "t1", URI: "u1"},
				{Title: "t2", URI: "u1"},
				{Title: "t3", URI: "u2"},
			},
			want: []types.Citation{
				{Title: "t1", URI: "u1"},
				{Title: "t3", URI: "u2"},
			},
		},
		{
			name: "drops records missing title or uri",
			in: []types.Citation{
				{Title: "", URI: "u1"},
				{Title: "t2", URI: ""},
				{Title: "   ", URI: "u3"},
				{Title: "t4", URI: "u4"},
			},
			want: []types.Citation{
				{Title: "t4", URI: "u4"},
			},
		},
		{
			name: "dropped record does not claim its uri",
			in: []types.Citation{
				{Title: "", URI: "u1"},
				{Title: "t1", URI: "u1"},
			},
			want: []types.Citation{
				{Title: "t1", URI: "u1"},
			},
		},
		{
			name: "surrounding whitespace does not make a new uri",
			in: []types.Citation{
				{Title: "A", URI: "https://a"},
				{Title: "A copy", URI: " https://a\n"},
				{Title: "  B ", URI: "\thttps://b"},
			},
			want: []types.Citation{
				{Title: "A", URI: "https://a"},
				{Title: "B", URI: "https://b"},
			},
		},
		{
			name: "nil input",
			in:   nil,
			want: []types.Citation{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Dedupe(tt.in))
		})
	}
}

func TestDedupeDoesNotModifyInput(t *testing.T) {
	in := []types.Citation{{Title: "a", URI: "u"}, {Title: "b", URI: "u"}}
	Dedupe(in)
	assert.Equal(t, []types.Citation{{Title: "a", URI: "u"}, {Title: "b", URI: "u"}}, in)
}

func TestDedupeIdempotent(t *testing.T) {
	inputs := [][]types.Citation{
		nil,
		{{Title: "a", URI: "1"}},
		{{Title: "a", URI: "1"}, {Title: "b", URI: "1"}, {Title: "", URI: "2"}, {Title: "c", URI: "3"}},
	}
	// A larger list with many repeats.
	var big []types.Citation
	for i := 0; i < 50; i++ {
		big = append(big, types.Citation{Title: fmt.Sprintf("t%d", i), URI: fmt.Sprintf("u%d", i%7)})
	}
	inputs = append(inputs, big)

	for i, xs := range inputs {
		once := Dedupe(xs)
		assert.Equal(t, once, Dedupe(once), "input %d", i)
	}
	assert.Len(t, Dedupe(big), 7)
}

func TestMerge(t *testing.T) {
	outline := []types.Citation{{Title: "A", URI: "https://a"}}
	sec0 := []types.Citation{{Title: "B", URI: "https://b"}, {Title: "A again", URI: "https://a"}}
	sec1 := []types.Citation{{Title: "C", URI: "https://c"}}

	got := Merge(outline, sec0, sec1)
	assert.Equal(t, []types.Citation{
		{Title: "A", URI: "https://a"},
		{Title: "B", URI: "https://b"},
		{Title: "C", URI: "https://c"},
	}, got)
}

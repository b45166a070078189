package ocrtext

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *Result {
	return &Result{
		Text: "HELLO WORLD",
		Blocks: []Block{{
			Text: "HELLO WORLD",
			Box:  &Box{X: 10, Y: 20, Width: 200, Height: 40},
			Lines: []Line{{
				Text: "HELLO WORLD",
				Box:  &Box{X: 10, Y: 20, Width: 200, Height: 40},
				Words: []Word{
					{Text: "HELLO", Box: &Box{X: 10, Y: 20, Width: 90, Height: 40}},
					{Text: "WORLD"},
				},
			}},
		}},
	}
}

func TestResult_Empty(t *testing.T) {
	var nilResult *Result
	assert.True(t, nilResult.Empty())
	assert.True(t, (&Result{}).Empty())
	assert.False(t, (&Result{Text: "x"}).Empty())
}

func TestBlock_WordCount(t *testing.T) {
	b := Block{Lines: []Line{{Words: make([]Word, 2)}, {Words: make([]Word, 3)}, {}}}
	assert.Equal(t, 5, b.WordCount())
}

func TestResult_Rescale(t *testing.T) {
	src := sampleResult()
	out := src.Rescale(2, 4)

	require.Len(t, out.Blocks, 1)
	assert.Equal(t, &Box{X: 5, Y: 5, Width: 100, Height: 10}, out.Blocks[0].Box)
	assert.Equal(t, &Box{X: 5, Y: 5, Width: 45, Height: 10}, out.Blocks[0].Lines[0].Words[0].Box)
	assert.Nil(t, out.Blocks[0].Lines[0].Words[1].Box)

	assert.InDelta(t, 10.0, src.Blocks[0].Box.X, 1e-9, "source must not be modified")
}

func TestResult_RescaleZeroFactorIsIdentity(t *testing.T) {
	out := sampleResult().Rescale(0, 0)
	assert.Equal(t, sampleResult(), out)
}

func TestResult_JSONOmitsEmpty(t *testing.T) {
	data, err := json.Marshal(&Result{Text: "A", Blocks: []Block{{Text: "A"}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"A","blocks":[{"text":"A"}]}`, string(data))
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"collapse spaces", "  HELLO \t  WORLD ", "HELLO WORLD"},
		{"keeps line breaks", "ONE\r\n\n  TWO  ", "ONE\nTWO"},
		{"zero width", "A\u200bB", "AB"},
		{"control", "A\x07B", "AB"},
		{"nfc", "e\u0301", "\u00e9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in, DefaultCleanOptions()))
		})
	}
}

func TestResult_Clean(t *testing.T) {
	r := &Result{
		Text:   " A  B \n",
		Blocks: []Block{{Text: "A  B", Lines: []Line{{Text: " A B", Words: []Word{{Text: "A\u200b"}}}}}},
	}
	r.Clean(DefaultCleanOptions())

	assert.Equal(t, "A B", r.Text)
	assert.Equal(t, "A B", r.Blocks[0].Text)
	assert.Equal(t, "A B", r.Blocks[0].Lines[0].Text)
	assert.Equal(t, "A", r.Blocks[0].Lines[0].Words[0].Text)
}

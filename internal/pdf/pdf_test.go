package pdf

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/frameocr/internal/frame"
	"github.com/MeKo-Tech/frameocr/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageRange(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"single", "3", []int{3}, false},
		{"range", "1-3", []int{1, 2, 3}, false},
		{"mixed", "1, 4-5,9", []int{1, 4, 5, 9}, false},
		{"duplicates collapse", "2,1-3", []int{2, 1, 3}, false},
		{"reversed", "5-1", nil, true},
		{"zero", "0", nil, true},
		{"garbage", "a-b", nil, true},
		{"too many dashes", "1-2-3", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePageRange(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePageFromFilename(t *testing.T) {
	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{"page_2_image_1.png", 2, false},
		{"scan_7_Im0.jpg", 7, false},
		{"my_doc_12_Im3.png", 12, false},
		{"page_x_image_1.png", 0, true},
		{"cover.png", 0, true},
		{"doc_Im0.png", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePageFromFilename(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path) //nolint:gosec // controlled test path
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))))
	require.NoError(t, f.Close())
}

func TestCollectExtractedImages(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "doc_2_Im0.png"), 4, 4)
	writePNG(t, filepath.Join(dir, "doc_1_Im0.png"), 3, 3)
	writePNG(t, filepath.Join(dir, "doc_1_Im1.png"), 5, 5)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc_3_Im0.png"), []byte("broken"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	pages, err := collectExtractedImages(dir)
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Equal(t, 1, pages[0].Page)
	require.Len(t, pages[0].Images, 2)
	assert.Equal(t, 3, pages[0].Images[0].Bounds().Dx())
	assert.Equal(t, 2, pages[1].Page)
}

func TestExtractImages_Errors(t *testing.T) {
	_, err := ExtractImages(filepath.Join(t.TempDir(), "missing.pdf"), ExtractOptions{})
	require.Error(t, err)

	_, err = ExtractImages("whatever.pdf", ExtractOptions{Pages: "9-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid page range")
}

func TestExtractConfig(t *testing.T) {
	conf := extractConfig(ExtractOptions{UserPassword: "u", OwnerPassword: "o"})
	assert.Equal(t, "u", conf.UserPW)
	assert.Equal(t, "o", conf.OwnerPW)
}

type stubFrames struct {
	fail map[int]bool
	n    int
}

func (s *stubFrames) Process(_ context.Context, img image.Image, _ frame.Options) (*frame.Outcome, error) {
	defer func() { s.n++ }()
	if s.fail[s.n] {
		return nil, errors.New("bad frame")
	}
	return &frame.Outcome{Result: &frame.Result{Text: "T"}, Variant: "identity", Attempts: img.Bounds().Dx()}, nil
}

func TestProcessor_ProcessFile(t *testing.T) {
	frames := &stubFrames{fail: map[int]bool{1: true}}
	p := NewProcessor(frames)
	p.extract = func(string, ExtractOptions) ([]PageImages, error) {
		return []PageImages{
			{Page: 1, Images: []image.Image{testutil.BlankFrame(2, 2, color.White), testutil.BlankFrame(3, 3, color.White)}},
			{Page: 4, Images: []image.Image{testutil.BlankFrame(5, 5, color.White)}},
		}, nil
	}

	doc, err := p.ProcessFile(context.Background(), "doc.pdf", ExtractOptions{}, frame.DefaultOptions())
	require.NoError(t, err)

	require.Len(t, doc.Pages, 2)
	assert.Equal(t, 4, doc.Pages[1].PageNumber)
	assert.Equal(t, "T", doc.Pages[0].Images[0].Result.Text)
	assert.Equal(t, "bad frame", doc.Pages[0].Images[1].Error)
	assert.Nil(t, doc.Pages[0].Images[1].Result)
	assert.Equal(t, 5, doc.Pages[1].Images[0].Attempts)
	assert.Equal(t, []string{"T", "T"}, doc.Text())
}

func TestProcessor_ExtractError(t *testing.T) {
	p := NewProcessor(&stubFrames{})
	p.extract = func(string, ExtractOptions) ([]PageImages, error) { return nil, errors.New("no such file") }

	_, err := p.ProcessFile(context.Background(), "x.pdf", ExtractOptions{}, frame.DefaultOptions())
	require.EqualError(t, err, "no such file")
}

func TestProcessor_Canceled(t *testing.T) {
	p := NewProcessor(&stubFrames{})
	p.extract = func(string, ExtractOptions) ([]PageImages, error) {
		return []PageImages{{Page: 1, Images: []image.Image{testutil.BlankFrame(1, 1, color.White)}}}, nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ProcessFile(ctx, "x.pdf", ExtractOptions{}, frame.DefaultOptions())
	require.ErrorIs(t, err, context.Canceled)
}

func TestProcessor_TextLayer(t *testing.T) {
	p := NewProcessor(&stubFrames{})
	p.extract = func(string, ExtractOptions) ([]PageImages, error) {
		return []PageImages{{Page: 2, Images: []image.Image{testutil.BlankFrame(1, 1, color.White)}}}, nil
	}
	var gotRange string
	p.extractText = func(_ string, pageRange string) (map[int]string, error) {
		gotRange = pageRange
		return map[int]string{1: "cover", 2: "body"}, nil
	}

	doc, err := p.ProcessFile(context.Background(), "doc.pdf", ExtractOptions{Pages: "1-2", TextLayer: true}, frame.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "1-2", gotRange)
	require.Len(t, doc.Pages, 2)
	assert.Equal(t, 1, doc.Pages[0].PageNumber)
	assert.Equal(t, "cover", doc.Pages[0].TextLayer)
	assert.Empty(t, doc.Pages[0].Images)
	assert.Equal(t, "body", doc.Pages[1].TextLayer)
	assert.Equal(t, []string{"cover", "body", "T"}, doc.Text())
}

func TestProcessor_TextLayerFailureKeepsImages(t *testing.T) {
	p := NewProcessor(&stubFrames{})
	p.extract = func(string, ExtractOptions) ([]PageImages, error) {
		return []PageImages{{Page: 1, Images: []image.Image{testutil.BlankFrame(1, 1, color.White)}}}, nil
	}
	p.extractText = func(string, string) (map[int]string, error) { return nil, errors.New("encrypted") }

	doc, err := p.ProcessFile(context.Background(), "doc.pdf", ExtractOptions{TextLayer: true}, frame.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)
	assert.Empty(t, doc.Pages[0].TextLayer)
	assert.Equal(t, []string{"T"}, doc.Text())
}

func TestProcessor_TextLayerDisabled(t *testing.T) {
	p := NewProcessor(&stubFrames{})
	p.extract = func(string, ExtractOptions) ([]PageImages, error) { return nil, nil }
	p.extractText = func(string, string) (map[int]string, error) {
		t.Fatal("text layer read without being requested")
		return nil, nil
	}

	doc, err := p.ProcessFile(context.Background(), "doc.pdf", ExtractOptions{}, frame.DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, doc.Pages)
}

func TestExtractTextLayer_Errors(t *testing.T) {
	_, err := ExtractTextLayer(filepath.Join(t.TempDir(), "missing.pdf"), "")
	require.Error(t, err)

	_, err = ExtractTextLayer("whatever.pdf", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid page range")
}

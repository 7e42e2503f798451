package picture

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/chocolatkey/wadthumb/pkg/wad"
	"github.com/chocolatkey/wadthumb/pkg/wad/wadtest"
)

// render draws img as text, '.' for untouched pixels and the index as a hex digit otherwise.
func render(img *Indexed) string {
	var b bytes.Buffer
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			i, ok := img.At(x, y)
			if !ok {
				b.WriteByte('.')
				continue
			}
			b.WriteByte("0123456789abcdef"[i&0xf])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func TestParsePalette(t *testing.T) {
	lump := wadtest.Palette(map[byte][3]byte{7: {200, 10, 10}, 255: {1, 2, 3}})
	// PLAYPAL carries 14 palettes; trailing ones are ignored.
	lump = append(lump, bytes.Repeat([]byte{0xaa}, 768)...)

	p, err := ParsePalette(lump)
	if err != nil {
		t.Fatalf("ParsePalette: %v", err)
	}
	if got := p.RGBA(7); got != (color.RGBA{200, 10, 10, 255}) {
		t.Errorf("entry 7 = %v", got)
	}
	if got := p.RGBA(255); got != (color.RGBA{1, 2, 3, 255}) {
		t.Errorf("entry 255 = %v", got)
	}
	if got := p.RGBA(0); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("entry 0 = %v", got)
	}

	if _, err := ParsePalette(lump[:767]); !errors.Is(err, wad.ErrMalformedLump) {
		t.Errorf("767 byte palette err = %v, want ErrMalformedLump", err)
	}
}

func TestDecode_Solid(t *testing.T) {
	img, err := Decode(wadtest.SolidPicture(4, 4, 7))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := "7777\n7777\n7777\n7777\n"
	if got := render(img); got != want {
		t.Errorf("got\n%swant\n%s", got, want)
	}
	if img.Clipped != 0 {
		t.Errorf("clipped = %d", img.Clipped)
	}
}

// TestDecode_PostAdvance checks the per-post stride against a hand assembled
// column: top, count, pad, pixels, pad. Advancing one byte short lands on
// the trailing pad and misreads it as a post starting at row 0.
func TestDecode_PostAdvance(t *testing.T) {
	column := []byte{
		1, 2, 0, 0x3, 0x4, 0, // rows 1-2
		5, 1, 0, 0x9, 0,      // row 5
		0xff,
	}
	var lump bytes.Buffer
	binary.Write(&lump, binary.LittleEndian, []int16{1, 7, 0, 0})
	binary.Write(&lump, binary.LittleEndian, uint32(12))
	lump.Write(column)

	img, err := Decode(lump.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := ".\n3\n4\n.\n.\n9\n.\n"
	if got := render(img); got != want {
		t.Errorf("got\n%swant\n%s", got, want)
	}
}

func TestDecode_MultiplePostsAndGaps(t *testing.T) {
	columns := [][]wadtest.Post{
		{{Top: 0, Pixels: []byte{1}}, {Top: 3, Pixels: []byte{2}}},
		{},
		{{Top: 1, Pixels: []byte{3, 3, 3}}},
	}
	img, err := Decode(wadtest.Picture(3, 4, columns))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := "1..\n..3\n..3\n2.3\n"
	if got := render(img); got != want {
		t.Errorf("got\n%swant\n%s", got, want)
	}
}

func TestDecode_ClipsOverrunningPost(t *testing.T) {
	columns := [][]wadtest.Post{
		{{Top: 2, Pixels: []byte{1, 1, 1, 1}}}, // runs two rows past the bottom
		{{Top: 200, Pixels: []byte{2}}},        // starts past the bottom
		{{Top: 0, Pixels: []byte{5, 5, 5, 5}}}, // unaffected
	}
	img, err := Decode(wadtest.Picture(3, 4, columns))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := "..5\n..5\n1.5\n1.5\n"
	if got := render(img); got != want {
		t.Errorf("got\n%swant\n%s", got, want)
	}
	if img.Clipped != 2 {
		t.Errorf("clipped = %d, want 2", img.Clipped)
	}
}

func TestDecode_MissingTerminator(t *testing.T) {
	lump := wadtest.SolidPicture(2, 3, 4)
	// Drop the final 0xff so the last column runs into the end of the lump.
	lump = lump[:len(lump)-1]

	img, err := Decode(lump)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got, want := render(img), "44\n44\n44\n"; got != want {
		t.Errorf("got\n%swant\n%s", got, want)
	}
}

func TestDecode_TruncatedPixelRun(t *testing.T) {
	lump := wadtest.SolidPicture(1, 4, 6)
	// header(8) + table(4) + top, count, pad, then keep two of the four pixels.
	lump = lump[:8+4+3+2]

	img, err := Decode(lump)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got, want := render(img), "6\n6\n.\n.\n"; got != want {
		t.Errorf("got\n%swant\n%s", got, want)
	}
	if img.Clipped != 1 {
		t.Errorf("clipped = %d, want 1", img.Clipped)
	}
}

// Every column points at one long run of empty posts with no terminator.
// Each column must stop after its first out of order post instead of
// walking the whole run.
func TestDecode_SharedEndlessColumn(t *testing.T) {
	const width = 4096
	var lump bytes.Buffer
	binary.Write(&lump, binary.LittleEndian, []int16{width, 1, 0, 0})
	tableEnd := uint32(8 + 4*width)
	for x := 0; x < width; x++ {
		binary.Write(&lump, binary.LittleEndian, tableEnd)
	}
	lump.Write(make([]byte, 1<<20))

	start := time.Now()
	img, err := Decode(lump.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Clipped != width {
		t.Errorf("clipped = %d, want %d", img.Clipped, width)
	}
	if got := render(img); got != strings.Repeat(".", width)+"\n" {
		t.Error("empty posts drew pixels")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("decode took %v", elapsed)
	}
}

func TestDecode_OverlappingPostEndsColumn(t *testing.T) {
	columns := [][]wadtest.Post{
		{{Top: 0, Pixels: []byte{1, 1, 1}}, {Top: 1, Pixels: []byte{2}}, {Top: 3, Pixels: []byte{3}}},
		{{Top: 2, Pixels: []byte{4}}, {Top: 0, Pixels: []byte{5}}},
		{{Top: 0, Pixels: []byte{6}}, {Top: 1, Pixels: []byte{6}}},
	}
	img, err := Decode(wadtest.Picture(3, 4, columns))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := "1.6\n1.6\n14.\n...\n"
	if got := render(img); got != want {
		t.Errorf("got\n%swant\n%s", got, want)
	}
	if img.Clipped != 2 {
		t.Errorf("clipped = %d, want 2", img.Clipped)
	}
}

func TestDecode_Offsets(t *testing.T) {
	var lump bytes.Buffer
	binary.Write(&lump, binary.LittleEndian, []int16{1, 1, -5, 12})
	binary.Write(&lump, binary.LittleEndian, uint32(12))
	lump.Write([]byte{0, 1, 0, 9, 0, 0xff})

	img, err := Decode(lump.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.LeftOffset != -5 || img.TopOffset != 12 {
		t.Errorf("offsets = %d,%d", img.LeftOffset, img.TopOffset)
	}
}

func TestDecode_Malformed(t *testing.T) {
	pic := func(w, h int16, offsets ...uint32) []byte {
		var b bytes.Buffer
		binary.Write(&b, binary.LittleEndian, []int16{w, h, 0, 0})
		binary.Write(&b, binary.LittleEndian, offsets)
		b.WriteByte(0xff)
		return b.Bytes()
	}
	tests := []struct {
		name string
		lump []byte
	}{
		{"short header", []byte{1, 0, 1, 0}},
		{"zero width", pic(0, 4)},
		{"negative height", pic(1, -4, 12)},
		{"too many pixels", pic(32767, 32767)},
		{"column table overruns lump", pic(3, 3, 20)},
		{"column offset at lump end", pic(1, 1, 13)},
		{"column offset far outside", pic(1, 1, 0xffffffff)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.lump); !errors.Is(err, wad.ErrMalformedLump) {
				t.Errorf("err = %v, want ErrMalformedLump", err)
			}
		})
	}
}

func TestDecodeScreen(t *testing.T) {
	lump := make([]byte, ScreenSize)
	for i := range lump {
		lump[i] = byte(i % 251)
	}
	img, err := DecodeScreen(lump)
	if err != nil {
		t.Fatalf("DecodeScreen: %v", err)
	}
	if img.Width != ScreenWidth || img.Height != ScreenHeight {
		t.Fatalf("size = %dx%d", img.Width, img.Height)
	}
	idx, ok := img.At(10, 3)
	if !ok || idx != byte((3*ScreenWidth+10)%251) {
		t.Errorf("pixel (10,3) = %d, %v", idx, ok)
	}

	if _, err := DecodeScreen(lump[:ScreenSize-1]); !errors.Is(err, wad.ErrMalformedLump) {
		t.Errorf("short screen err = %v, want ErrMalformedLump", err)
	}
}

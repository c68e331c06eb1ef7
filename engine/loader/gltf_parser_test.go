package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

// buildGLB assembles a GLB container from the given chunks. Chunk payloads
// are padded to 4-byte alignment the way the format requires (spaces for
// JSON, zeros for BIN).
func buildGLB(t *testing.T, magic, version uint32, jsonChunk, binChunk []byte) []byte {
	t.Helper()

	pad := func(data []byte, padByte byte) []byte {
		for len(data)%4 != 0 {
			data = append(data, padByte)
		}
		return data
	}

	var body bytes.Buffer
	if jsonChunk != nil {
		padded := pad(append([]byte(nil), jsonChunk...), ' ')
		binary.Write(&body, binary.LittleEndian, uint32(len(padded)))
		binary.Write(&body, binary.LittleEndian, uint32(gltfGLBChunkJSON))
		body.Write(padded)
	}
	if binChunk != nil {
		padded := pad(append([]byte(nil), binChunk...), 0)
		binary.Write(&body, binary.LittleEndian, uint32(len(padded)))
		binary.Write(&body, binary.LittleEndian, uint32(gltfGLBChunkBIN))
		body.Write(padded)
	}

	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, magic)
	binary.Write(&out, binary.LittleEndian, version)
	binary.Write(&out, binary.LittleEndian, uint32(12+body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

func TestParseGLBRoundTrip(t *testing.T) {
	bin := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	doc := []byte(`{"asset":{"version":"2.0"},"buffers":[{"byteLength":8}]}`)
	glb := buildGLB(t, gltfGLBMagic, gltfGLBVersion, doc, bin)

	p := newGLTFParser()
	if err := p.ParseReader(bytes.NewReader(glb), true); err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	parsed := p.Document()
	if parsed == nil {
		t.Fatal("Document returned nil after successful parse")
	}
	if len(parsed.Buffers) != 1 {
		t.Fatalf("expected 1 buffer, got %d", len(parsed.Buffers))
	}
	if !bytes.Equal(parsed.Buffers[0].Data[:8], bin) {
		t.Errorf("binary chunk not wired to buffer 0: got %v", parsed.Buffers[0].Data[:8])
	}
}

func TestParseGLBBadMagic(t *testing.T) {
	doc := []byte(`{"asset":{"version":"2.0"}}`)
	glb := buildGLB(t, 0xDEADBEEF, gltfGLBVersion, doc, nil)

	p := newGLTFParser()
	err := p.ParseReader(bytes.NewReader(glb), true)
	if !errors.Is(err, errInvalidGLBMagic) {
		t.Fatalf("expected errInvalidGLBMagic, got %v", err)
	}

	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Errorf("expected a *FormatError, got %T", err)
	}
}

func TestParseGLBBadVersion(t *testing.T) {
	doc := []byte(`{"asset":{"version":"2.0"}}`)
	glb := buildGLB(t, gltfGLBMagic, 1, doc, nil)

	p := newGLTFParser()
	if err := p.ParseReader(bytes.NewReader(glb), true); !errors.Is(err, errInvalidGLBVersion) {
		t.Fatalf("expected errInvalidGLBVersion, got %v", err)
	}
}

func TestParseGLBTruncatedChunk(t *testing.T) {
	doc := []byte(`{"asset":{"version":"2.0"}}`)
	glb := buildGLB(t, gltfGLBMagic, gltfGLBVersion, doc, nil)

	// Rewrite the JSON chunk length to claim more bytes than the file holds.
	binary.LittleEndian.PutUint32(glb[12:], uint32(len(glb)))

	p := newGLTFParser()
	if err := p.ParseReader(bytes.NewReader(glb), true); !errors.Is(err, errTruncatedChunk) {
		t.Fatalf("expected errTruncatedChunk, got %v", err)
	}
}

func TestParseGLBMissingJSONChunk(t *testing.T) {
	glb := buildGLB(t, gltfGLBMagic, gltfGLBVersion, nil, []byte{1, 2, 3, 4})

	p := newGLTFParser()
	if err := p.ParseReader(bytes.NewReader(glb), true); !errors.Is(err, errMissingJSONChunk) {
		t.Fatalf("expected errMissingJSONChunk, got %v", err)
	}
}

func TestParseGLTFRejectsWrongVersion(t *testing.T) {
	doc := []byte(`{"asset":{"version":"1.0"}}`)

	p := newGLTFParser()
	if err := p.ParseReader(bytes.NewReader(doc), false); !errors.Is(err, errInvalidGLTFVersion) {
		t.Fatalf("expected errInvalidGLTFVersion, got %v", err)
	}
}

func TestParseGLTFDataURI(t *testing.T) {
	raw := []byte{10, 20, 30, 40}
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(raw)
	doc := []byte(`{"asset":{"version":"2.0"},"buffers":[{"byteLength":4,"uri":"` + uri + `"}]}`)

	p := newGLTFParser()
	if err := p.ParseReader(bytes.NewReader(doc), false); err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}
	if got := p.Document().Buffers[0].Data; !bytes.Equal(got, raw) {
		t.Errorf("data URI decode mismatch: got %v, want %v", got, raw)
	}
}

func TestParseGLTFBufferSizeMismatch(t *testing.T) {
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString([]byte{1, 2})
	doc := []byte(`{"asset":{"version":"2.0"},"buffers":[{"byteLength":100,"uri":"` + uri + `"}]}`)

	p := newGLTFParser()
	if err := p.ParseReader(bytes.NewReader(doc), false); !errors.Is(err, errBufferSizeMismatch) {
		t.Fatalf("expected errBufferSizeMismatch, got %v", err)
	}
}

// accessorParser builds a parser around a single-buffer document with one
// accessor over one bufferView.
func accessorParser(data []byte, byteStride *int, componentType int, accType string, count int) *gltfParserImpl {
	bvIdx := 0
	return &gltfParserImpl{
		document: &gltfDocument{
			Asset:   gltfAsset{Version: "2.0"},
			Buffers: []gltfBuffer{{ByteLength: len(data), Data: data}},
			BufferViews: []gltfBufferView{
				{Buffer: 0, ByteLength: len(data), ByteStride: byteStride},
			},
			Accessors: []gltfAccessor{
				{BufferView: &bvIdx, ComponentType: componentType, Count: count, Type: accType},
			},
		},
	}
}

// interleave spreads packed elements into stride-sized slots, filling the gap
// bytes with a sentinel pattern that must never leak into extracted data.
func interleave(packed []byte, elementSize, stride, count int) []byte {
	out := make([]byte, count*stride)
	for i := range out {
		out[i] = 0xAB
	}
	for i := 0; i < count; i++ {
		copy(out[i*stride:], packed[i*elementSize:(i+1)*elementSize])
	}
	return out
}

func TestReadAccessorDataInterleavedMatchesPacked(t *testing.T) {
	// One case per supported component type, each as SCALAR elements.
	cases := []struct {
		name          string
		componentType int
		elementSize   int
	}{
		{"byte", gltfComponentTypeByte, 1},
		{"unsigned_byte", gltfComponentTypeUnsignedByte, 1},
		{"short", gltfComponentTypeShort, 2},
		{"unsigned_short", gltfComponentTypeUnsignedShort, 2},
		{"unsigned_int", gltfComponentTypeUnsignedInt, 4},
		{"float", gltfComponentTypeFloat, 4},
	}

	const count = 5
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			packed := make([]byte, count*tc.elementSize)
			for i := range packed {
				packed[i] = byte(i + 1)
			}

			pPacked := accessorParser(packed, nil, tc.componentType, gltfAccessorTypeScalar, count)
			got, err := pPacked.ReadAccessorData(0)
			if err != nil {
				t.Fatalf("packed read failed: %v", err)
			}
			if !bytes.Equal(got, packed) {
				t.Fatalf("packed read altered data: got %v, want %v", got, packed)
			}

			stride := tc.elementSize + 3
			strided := interleave(packed, tc.elementSize, stride, count)
			pStrided := accessorParser(strided, &stride, tc.componentType, gltfAccessorTypeScalar, count)
			got, err = pStrided.ReadAccessorData(0)
			if err != nil {
				t.Fatalf("strided read failed: %v", err)
			}
			if !bytes.Equal(got, packed) {
				t.Errorf("strided read differs from packed: got %v, want %v", got, packed)
			}
		})
	}
}

func TestReadVec3AccessorInterleaved(t *testing.T) {
	positions := [][3]float32{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}

	var packed bytes.Buffer
	binary.Write(&packed, binary.LittleEndian, positions)

	// Interleave as position + 12 bytes of other vertex data per element.
	stride := 24
	strided := interleave(packed.Bytes(), 12, stride, len(positions))

	p := accessorParser(strided, &stride, gltfComponentTypeFloat, gltfAccessorTypeVec3, len(positions))
	got, err := p.ReadVec3Accessor(0)
	if err != nil {
		t.Fatalf("ReadVec3Accessor failed: %v", err)
	}
	for i := range positions {
		if got[i] != positions[i] {
			t.Errorf("element %d: got %v, want %v", i, got[i], positions[i])
		}
	}
}

func TestReadIndicesAccessorWidening(t *testing.T) {
	want := []uint32{0, 1, 2, 250, 3}

	u8 := make([]byte, len(want))
	for i, v := range want {
		u8[i] = byte(v)
	}

	var u16buf bytes.Buffer
	for _, v := range want {
		binary.Write(&u16buf, binary.LittleEndian, uint16(v))
	}

	var u32buf bytes.Buffer
	binary.Write(&u32buf, binary.LittleEndian, want)

	cases := []struct {
		name          string
		componentType int
		data          []byte
	}{
		{"unsigned_byte", gltfComponentTypeUnsignedByte, u8},
		{"unsigned_short", gltfComponentTypeUnsignedShort, u16buf.Bytes()},
		{"unsigned_int", gltfComponentTypeUnsignedInt, u32buf.Bytes()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := accessorParser(tc.data, nil, tc.componentType, gltfAccessorTypeScalar, len(want))
			got, err := p.ReadIndicesAccessor(0)
			if err != nil {
				t.Fatalf("ReadIndicesAccessor failed: %v", err)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("index %d: got %d, want %d", i, got[i], want[i])
				}
			}
		})
	}
}

func TestReadJointsAccessorWidening(t *testing.T) {
	want := [][4]uint32{{0, 1, 2, 3}, {10, 20, 30, 40}}

	var u8buf bytes.Buffer
	var u16buf bytes.Buffer
	for _, j := range want {
		for _, v := range j {
			u8buf.WriteByte(byte(v))
			binary.Write(&u16buf, binary.LittleEndian, uint16(v))
		}
	}

	for _, tc := range []struct {
		name          string
		componentType int
		data          []byte
	}{
		{"unsigned_byte", gltfComponentTypeUnsignedByte, u8buf.Bytes()},
		{"unsigned_short", gltfComponentTypeUnsignedShort, u16buf.Bytes()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p := accessorParser(tc.data, nil, tc.componentType, gltfAccessorTypeVec4, len(want))
			got, err := p.ReadJointsAccessor(0)
			if err != nil {
				t.Fatalf("ReadJointsAccessor failed: %v", err)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("element %d: got %v, want %v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestReadWeightsAccessorNormalization(t *testing.T) {
	want := [][4]float32{{0, 0.25, 0.5, 0.25}, {1, 0, 0, 0}}

	var f32buf bytes.Buffer
	binary.Write(&f32buf, binary.LittleEndian, want)

	var u8buf bytes.Buffer
	var u16buf bytes.Buffer
	for _, w := range want {
		for _, v := range w {
			u8buf.WriteByte(byte(math.Round(float64(v) * 255)))
			binary.Write(&u16buf, binary.LittleEndian, uint16(math.Round(float64(v)*65535)))
		}
	}

	for _, tc := range []struct {
		name          string
		componentType int
		data          []byte
		tol           float32
	}{
		{"float", gltfComponentTypeFloat, f32buf.Bytes(), 0},
		{"unsigned_byte", gltfComponentTypeUnsignedByte, u8buf.Bytes(), 1.0 / 255},
		{"unsigned_short", gltfComponentTypeUnsignedShort, u16buf.Bytes(), 1.0 / 65535},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p := accessorParser(tc.data, nil, tc.componentType, gltfAccessorTypeVec4, len(want))
			got, err := p.ReadWeightsAccessor(0)
			if err != nil {
				t.Fatalf("ReadWeightsAccessor failed: %v", err)
			}
			for i := range want {
				for k := 0; k < 4; k++ {
					if diff := float32(math.Abs(float64(got[i][k] - want[i][k]))); diff > tc.tol {
						t.Errorf("element %d[%d]: got %v, want %v", i, k, got[i][k], want[i][k])
					}
				}
			}
		})
	}
}

func TestReadAccessorDataOutOfBounds(t *testing.T) {
	data := make([]byte, 8)
	p := accessorParser(data, nil, gltfComponentTypeFloat, gltfAccessorTypeVec3, 2)

	if _, err := p.ReadAccessorData(0); !errors.Is(err, errAccessorOutOfBounds) {
		t.Fatalf("expected errAccessorOutOfBounds, got %v", err)
	}
}

func TestReadAccessorDataIndexOutOfRange(t *testing.T) {
	p := accessorParser(make([]byte, 4), nil, gltfComponentTypeFloat, gltfAccessorTypeScalar, 1)

	if _, err := p.ReadAccessorData(5); !errors.Is(err, errAccessorOutOfRange) {
		t.Fatalf("expected errAccessorOutOfRange, got %v", err)
	}
}

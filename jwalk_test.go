package jwalk

import (
    "bytes"
    "errors"
    "image"
    "image/color"
    "image/jpeg"
    "os"
    "path/filepath"
    "reflect"
    "testing"

    "github.com/davecgh/go-spew/spew"
)

type segmentRecorder struct {
    segments    []Segment
    fail        error       // returned by Report if not nil
}

func (r *segmentRecorder) Report( seg *Segment ) error {
    r.segments = append( r.segments, *seg )
    return r.fail
}

func walkBytes( data []byte, ctl *Control ) (uint, []Segment, error) {
    rec := new( segmentRecorder )
    total, err := Walk( NewSource( bytes.NewReader( data ) ), ctl, rec )
    return total, rec.segments, err
}

func TestWalkWellFormed( t *testing.T ) {
    tests := []struct {
        name        string
        data        []byte
        segments    []Segment
    }{
        { "empty image", []byte{ 0xff, 0xd8, 0xff, 0xd9 },
          []Segment{ { Kind: EndOfImage, Marker: 0xd9, Offset: 2 } } },

        { "quantization table",
          []byte{ 0xff, 0xd8, 0xff, 0xdb, 0x00, 0x05, 0x01, 0x02, 0x03, 0xff, 0xd9 },
          []Segment{
            { Kind: QuantizationTable, Marker: 0xdb, Offset: 2, Length: 5, HasLength: true },
            { Kind: EndOfImage, Marker: 0xd9, Offset: 9 } } },

        { "empty length segments",
          []byte{ 0xff, 0xd8, 0xff, 0xfe, 0x00, 0x02, 0xff, 0xc4, 0x00, 0x02,
                  0xff, 0xd9 },
          []Segment{
            { Kind: Comment, Marker: 0xfe, Offset: 2, Length: 2, HasLength: true },
            { Kind: HuffmanTable, Marker: 0xc4, Offset: 6, Length: 2, HasLength: true },
            { Kind: EndOfImage, Marker: 0xd9, Offset: 10 } } },

        { "application and frame",
          []byte{ 0xff, 0xd8, 0xff, 0xe0, 0x00, 0x07, 'J', 'F', 'I', 'F', 0x00,
                  0xff, 0xc2, 0x00, 0x03, 0x08, 0xff, 0xd9 },
          []Segment{
            { Kind: ApplicationData, Marker: 0xe0, Offset: 2, Length: 7, HasLength: true },
            { Kind: FrameHeader, Marker: 0xc2, Offset: 11, Length: 3, HasLength: true },
            { Kind: EndOfImage, Marker: 0xd9, Offset: 16 } } },

        { "scan",
          []byte{ 0xff, 0xd8, 0xff, 0xda, 0x00, 0x03, 0x01, 0x11, 0xff, 0x00,
                  0x22, 0xff, 0xd0, 0x33, 0xff, 0xd9 },
          []Segment{
            { Kind: StartOfScan, Marker: 0xda, Offset: 2, Length: 10, HasLength: true,
              Restarts: 1 },
            { Kind: EndOfImage, Marker: 0xd9, Offset: 14 } } },

        { "two scans",
          []byte{ 0xff, 0xd8, 0xff, 0xda, 0x00, 0x02, 0x11, 0xff, 0xc4, 0x00, 0x02,
                  0xff, 0xda, 0x00, 0x02, 0xff, 0xd9 },
          []Segment{
            { Kind: StartOfScan, Marker: 0xda, Offset: 2, Length: 3, HasLength: true },
            { Kind: HuffmanTable, Marker: 0xc4, Offset: 7, Length: 2, HasLength: true },
            { Kind: StartOfScan, Marker: 0xda, Offset: 11, Length: 2, HasLength: true },
            { Kind: EndOfImage, Marker: 0xd9, Offset: 15 } } },
    }
    for _, tc := range tests {
        t.Run( tc.name, func( t *testing.T ) {
            total, segments, err := walkBytes( tc.data, nil )
            if err != nil {
                t.Fatalf( "Walk: unexpected error %v", err )
            }
            if total != uint(len(tc.data)) {
                t.Fatalf( "Walk: total %d, want %d", total, len(tc.data) )
            }
            if ! reflect.DeepEqual( segments, tc.segments ) {
                t.Fatalf( "Walk: got segments\n%swant\n%s",
                          spew.Sdump( segments ), spew.Sdump( tc.segments ) )
            }
        } )
    }
}

func TestWalkTrailingData( t *testing.T ) {
    data := []byte{ 0xff, 0xd8, 0xff, 0xd9, 0x00, 0x01, 0x02 }
    total, _, err := walkBytes( data, nil )
    if err != nil {
        t.Fatalf( "Walk: unexpected error %v", err )
    }
    if total != 4 {
        t.Fatalf( "Walk: total %d, want 4", total )
    }
}

func TestWalkErrors( t *testing.T ) {
    tests := []struct {
        name        string
        data        []byte
        sentinel    error
        target      error       // expected concrete error, compared by value
    }{
        { "empty", nil, ErrTruncatedStream,
          &TruncatedStreamError{ Expected: 2, Missing: 2, Offset: 0 } },
        { "short header", []byte{ 0xff }, ErrTruncatedStream,
          &TruncatedStreamError{ Expected: 2, Missing: 1, Offset: 0 } },
        { "not a jpeg", []byte{ 0x89, 'P', 'N', 'G' }, ErrMalformedHeader,
          &HeaderError{ Got: [2]byte{ 0x89, 'P' } } },
        { "bad prefix", []byte{ 0xff, 0xd8, 0x00, 0xd9 }, ErrExpectedMarkerPrefix,
          &MarkerPrefixError{ Got: 0x00, Offset: 2 } },
        { "temporary marker", []byte{ 0xff, 0xd8, 0xff, 0x01 }, ErrUnknownMarker,
          &UnknownMarkerError{ Marker: 0x01, Offset: 2 } },
        { "arithmetic frame", []byte{ 0xff, 0xd8, 0xff, 0xc9, 0x00, 0x02 }, ErrUnknownMarker,
          &UnknownMarkerError{ Marker: 0xc9, Offset: 2 } },
        { "restart outside scan", []byte{ 0xff, 0xd8, 0xff, 0xd0 }, ErrUnknownMarker,
          &UnknownMarkerError{ Marker: 0xd0, Offset: 2 } },
        { "restart interval", []byte{ 0xff, 0xd8, 0xff, 0xdd, 0x00, 0x04, 0x00, 0x10 },
          ErrUnknownMarker, &UnknownMarkerError{ Marker: 0xdd, Offset: 2 } },
        { "missing EOI", []byte{ 0xff, 0xd8 }, ErrTruncatedStream,
          &TruncatedStreamError{ Expected: 2, Missing: 2, Offset: 2 } },
        { "truncated segment", []byte{ 0xff, 0xd8, 0xff, 0xdb, 0x00, 0x05, 0x01 },
          ErrTruncatedStream, &TruncatedStreamError{ Expected: 3, Missing: 2, Offset: 6 } },
        { "truncated length", []byte{ 0xff, 0xd8, 0xff, 0xc0, 0x00 },
          ErrTruncatedStream, &TruncatedStreamError{ Expected: 2, Missing: 1, Offset: 4 } },
        { "length too small", []byte{ 0xff, 0xd8, 0xff, 0xdb, 0x00, 0x01, 0xff, 0xd9 },
          ErrInvalidLength, &LengthError{ Length: 1, Offset: 4 } },
        { "scan without marker", []byte{ 0xff, 0xd8, 0xff, 0xda, 0x00, 0x02, 0x11, 0x22 },
          ErrTruncatedStream, &TruncatedStreamError{ Expected: 1, Missing: 1, Offset: 8 } },
    }
    for _, tc := range tests {
        t.Run( tc.name, func( t *testing.T ) {
            _, _, err := walkBytes( tc.data, nil )
            if ! errors.Is( err, tc.sentinel ) {
                t.Fatalf( "Walk: got error %v, want %v", err, tc.sentinel )
            }
            var got error
            switch tc.target.(type) {
            case *TruncatedStreamError:
                var e *TruncatedStreamError
                if errors.As( err, &e ) { got = e }
            case *HeaderError:
                var e *HeaderError
                if errors.As( err, &e ) { got = e }
            case *MarkerPrefixError:
                var e *MarkerPrefixError
                if errors.As( err, &e ) { got = e }
            case *UnknownMarkerError:
                var e *UnknownMarkerError
                if errors.As( err, &e ) { got = e }
            case *LengthError:
                var e *LengthError
                if errors.As( err, &e ) { got = e }
            }
            if ! reflect.DeepEqual( got, tc.target ) {
                t.Fatalf( "Walk: got %s, want %s", spew.Sdump( got ), spew.Sdump( tc.target ) )
            }
        } )
    }
}

func TestWalkerSequence( t *testing.T ) {
    data := []byte{ 0xff, 0xd8, 0xff, 0xd9 }
    w := NewWalker( NewSource( bytes.NewReader( data ) ), nil, nil )
    if _, err := w.Step( ); err == nil {
        t.Fatalf( "Step before Begin: expected an error" )
    }
    if err := w.Begin( ); err != nil {
        t.Fatalf( "Begin: %v", err )
    }
    if err := w.Begin( ); err == nil {
        t.Fatalf( "second Begin: expected an error" )
    }
    done, err := w.Step( )
    if err != nil || ! done {
        t.Fatalf( "Step on EOI: got done %v, error %v", done, err )
    }
    if w.Total() != 4 {
        t.Fatalf( "Total: got %d, want 4", w.Total() )
    }
    _, err = w.Step( )
    if ! errors.Is( err, ErrWalkEnded ) {
        t.Fatalf( "Step after EOI: got %v, want ErrWalkEnded", err )
    }
    if w.Total() != 4 {
        t.Fatalf( "Total after failed Step: got %d, want 4", w.Total() )
    }
}

func TestWalkReporterError( t *testing.T ) {
    stop := errors.New( "stop" )
    rec := &segmentRecorder{ fail: stop }
    data := []byte{ 0xff, 0xd8, 0xff, 0xfe, 0x00, 0x02, 0xff, 0xd9 }
    _, err := Walk( NewSource( bytes.NewReader( data ) ), nil, rec )
    if ! errors.Is( err, stop ) {
        t.Fatalf( "Walk: got %v, want the reporter error", err )
    }
    if len(rec.segments) != 1 {
        t.Fatalf( "Walk: %d segments reported, want 1", len(rec.segments) )
    }
}

func TestWalkExtended( t *testing.T ) {
    data := []byte{ 0xff, 0xd8,
                    0xff, 0xc1, 0x00, 0x03, 0x08,
                    0xff, 0xdd, 0x00, 0x04, 0x00, 0x10,
                    0xff, 0xda, 0x00, 0x02, 0x11, 0xff, 0xd0, 0x22,
                    0xff, 0xdc, 0x00, 0x04, 0x00, 0x20,
                    0xff, 0xd9 }
    total, segments, err := walkBytes( data, &Control{ Extended: true } )
    if err != nil {
        t.Fatalf( "Walk: unexpected error %v", err )
    }
    if total != uint(len(data)) {
        t.Fatalf( "Walk: total %d, want %d", total, len(data) )
    }
    kinds := make( []SegmentKind, len(segments) )
    for i, s := range segments {
        kinds[i] = s.Kind
    }
    want := []SegmentKind{ FrameHeader, RestartInterval, StartOfScan,
                           NumberOfLines, EndOfImage }
    if ! reflect.DeepEqual( kinds, want ) {
        t.Fatalf( "Walk: got kinds %v, want %v", kinds, want )
    }

    _, _, err = walkBytes( data, nil )
    var e *UnknownMarkerError
    if ! errors.As( err, &e ) || e.Marker != 0xc1 {
        t.Fatalf( "Walk without Extended: got %v, want unknown marker c1", err )
    }
}

func encodeTestImage( t *testing.T, w, h int ) []byte {
    t.Helper()
    img := image.NewRGBA( image.Rect( 0, 0, w, h ) )
    for y := 0; y < h; y++ {
        for x := 0; x < w; x++ {
            img.Set( x, y, color.RGBA{ uint8(x * 7), uint8(y * 5), uint8(x ^ y), 0xff } )
        }
    }
    var buf bytes.Buffer
    if err := jpeg.Encode( &buf, img, &jpeg.Options{ Quality: 90 } ); err != nil {
        t.Fatalf( "jpeg.Encode: %v", err )
    }
    return buf.Bytes()
}

func TestWalkEncodedImage( t *testing.T ) {
    data := encodeTestImage( t, 67, 45 )
    total, segments, err := walkBytes( data, &Control{ Markers: true, Warn: true } )
    if err != nil {
        t.Fatalf( "Walk: unexpected error %v", err )
    }
    if total != uint(len(data)) {
        t.Fatalf( "Walk: total %d, want file size %d", total, len(data) )
    }
    var scans int
    for _, s := range segments {
        if s.Kind == StartOfScan {
            scans ++
        }
    }
    if scans != 1 {
        t.Fatalf( "Walk: %d scans in a baseline image, want 1\n%s",
                  scans, spew.Sdump( segments ) )
    }
    if last := segments[len(segments)-1]; last.Kind != EndOfImage {
        t.Fatalf( "Walk: last segment %v, want EOI", last.Kind )
    }
}

func TestRead( t *testing.T ) {
    data := encodeTestImage( t, 16, 16 )
    path := filepath.Join( t.TempDir(), "test.jpg" )
    if err := os.WriteFile( path, data, 0644 ); err != nil {
        t.Fatal( err )
    }
    total, err := Read( path, nil, nil )
    if err != nil {
        t.Fatalf( "Read: unexpected error %v", err )
    }
    if total != uint(len(data)) {
        t.Fatalf( "Read: total %d, want %d", total, len(data) )
    }

    if _, err = Read( filepath.Join( t.TempDir(), "missing.jpg" ), nil, nil ); err == nil {
        t.Fatalf( "Read on a missing file: expected an error" )
    }
}

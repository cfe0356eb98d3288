// Package jwalk walks the marker segments of a JPEG codestream without
// decoding pixel data
package jwalk

import (
    "fmt"
    "io"
    "os"

    "github.com/golang/glog"
)

/*  ISO/IEC 10918-1:1993 defines JPEG document structure:

A JPEG document must start with 0xffd8 (Start Of Image) and end with 0xffd9
(End Of Image):
    0xffd8 <JPEG data> 0xffd9

Each structural unit in between starts with a 2 byte marker 0xffxx. Most
markers are followed by a 2 byte big endian length, which includes the 2
bytes of the length itself but not the marker, and by length-2 bytes of
payload:

    0xffxx <length high><length low> <payload>

    Application data (APP0 to APP15): 0xffe0 to 0xffef, opaque blobs, usually
    APP0 for JFIF and APP1 for Exif or XMP.
    Quantization Table (DQT): 0xffdb
    Frame header (SOFn): 0xffc0 (baseline), 0xffc2 (progressive), and in
    extended mode 0xffc1 (extended sequential) and 0xffc3 (lossless)
    Huffman Table (DHT): 0xffc4
    Comment (COM): 0xfffe
    Define Restart Interval (DRI): 0xffdd, extended mode only
    Define Number of Lines (DNL): 0xffdc, extended mode only

The start of scan segment (SOS, 0xffda) has a length for its header only. It
is followed by entropy coded data that has no length field. Inside that data
a 0xff value is always stuffed as 0xff00, and restart markers RST0 to RST7
(0xffd0 to 0xffd7) may appear between entropy coded segments. The scan data
ends at the first 0xffxx where xx is neither 0x00 nor a restart marker.

End Of Image (EOI) has no length and terminates the walk, even if some data
follows.
*/

const (                         // walk state
    _INIT = iota                // expecting SOI
    _MARKERS                    // after SOI, expecting markers until EOI
    _FINAL                      // after EOI
)

var stateNames = [...]string { "initial", "markers", "final" }

func (w *Walker) stateName( ) string {
    if w.state > _FINAL {
        return "Unknown state"
    }
    return stateNames[ w.state ]
}

// Control indicates what to log and what to accept during a walk.
type Control struct {
    Markers         bool        // log JPEG markers as they are walked
    Warn            bool        // log inconsistencies that do not stop the walk
    Extended        bool        // accept DRI, DNL, SOF1 and SOF3 markers
    Identify        bool        // identify application segments (JFIF, Exif...)
    Metadata        io.Writer   // if not nil, receives a summary of Exif metadata
}

type control struct {           // walk options, promoted into Walker
                    Control
}

// Segment describes one processed marker. Length is the declared length for
// segments with a length field and, for SOS, the header length plus the
// number of entropy coded bytes that follow it.
type Segment struct {
    Kind            SegmentKind
    Marker          byte        // second byte of the marker
    Offset          uint        // offset of the 0xff marker prefix
    Length          uint
    HasLength       bool        // false for EOI
    Restarts        uint        // RSTn markers crossed in scan data (SOS only)
    Identifier      string      // application identifier, if inspected
}

// Reporter receives segments in the order they are walked. An error returned
// by Report stops the walk.
type Reporter interface {
    Report( seg *Segment ) error
}

// Walker holds the state of one walk over one ByteSource. It is not safe for
// concurrent use.
type Walker struct {
    src             ByteSource
    reporter        Reporter
    total           uint        // running total of consumed bytes
    state           int         // INIT, MARKERS, FINAL
                    control
}

// NewWalker returns a Walker reading from src and reporting segments to r.
// Both ctl and r may be nil.
func NewWalker( src ByteSource, ctl *Control, r Reporter ) *Walker {
    w := new( Walker )
    w.src = src
    w.reporter = r
    if ctl != nil {
        w.Control = *ctl
    }
    return w
}

// Total returns the number of bytes consumed so far, including the SOI
// marker. After EOI it is the size of the codestream.
func (w *Walker) Total( ) uint {
    return w.total
}

// Begin reads the start of image marker. It must be called once, before Step.
func (w *Walker) Begin( ) error {
    if w.state != _INIT {
        return fmt.Errorf( "Begin: Wrong sequence SOI in state %s", w.stateName() )
    }
    b, err := w.src.ReadFull( 2 )
    if err != nil {
        return jwalkForwardError( "Begin", err )
    }
    if b[0] != _MARKER_PREFIX || b[1] != _SOI {
        return jwalkForwardError( "Begin", &HeaderError{ Got: [2]byte{ b[0], b[1] } } )
    }
    w.total += 2
    w.state = _MARKERS
    if w.Markers {
        glog.Infof( "Marker 0xff%02x, offset 0x0 (%s)", _SOI, markerName(_SOI) )
    }
    return nil
}

// Step processes the next marker and its segment, if any, and reports it.
// It returns true once the end of image marker has been processed; calling
// Step again after that fails with ErrWalkEnded.
func (w *Walker) Step( ) (done bool, err error) {
    switch w.state {
    case _INIT:
        return false, fmt.Errorf( "Step: Wrong sequence in state %s (Begin not called)",
                                  w.stateName() )
    case _FINAL:
        return true, jwalkForwardError( "Step", ErrWalkEnded )
    }
    defer func( ) { if err != nil { err = jwalkForwardError( "Step", err ) } }()

    offset := w.src.Offset()
    prefix, err := w.src.ReadFull( 2 )
    if err != nil {
        return false, err
    }
    if prefix[0] != _MARKER_PREFIX {
        return false, &MarkerPrefixError{ Got: prefix[0], Offset: offset }
    }
    w.total += 2

    marker := prefix[1]
    kind := classify( marker, w.Extended )
    seg := Segment{ Kind: kind, Marker: marker, Offset: offset,
                    HasLength: kind.HasLength() }

    switch seg.Kind {
    case Unrecognized:
        return false, &UnknownMarkerError{ Marker: marker, Offset: offset }
    case EndOfImage:            // no length, nothing else to account for
        w.state = _FINAL
        done = true
    case StartOfScan:
        err = w.startOfScan( &seg )
    case ApplicationData:
        err = w.application( &seg )
    default:
        err = w.lengthSegment( &seg )
    }
    if err != nil {
        return false, err
    }
    return done, w.report( &seg )
}

func (w *Walker) report( seg *Segment ) error {
    if w.Markers {
        glog.Infof( "Marker 0xff%02x, len %d, offset 0x%x (%s)",
                    seg.Marker, seg.Length, seg.Offset, markerName(seg.Marker) )
    }
    if w.reporter == nil {
        return nil
    }
    return w.reporter.Report( seg )
}

// readLength reads a segment length field and checks it covers at least
// its own 2 bytes.
func (w *Walker) readLength( ) (uint, error) {
    offset := w.src.Offset()
    b, err := w.src.ReadFull( 2 )
    if err != nil {
        return 0, err
    }
    sLen := uint(b[0]) << 8 + uint(b[1])
    if sLen < 2 {
        return 0, &LengthError{ Length: sLen, Offset: offset }
    }
    return sLen, nil
}

// lengthSegment accounts for a segment made of a length and an opaque
// payload, which is skipped without being read.
func (w *Walker) lengthSegment( seg *Segment ) error {
    sLen, err := w.readLength( )
    if err != nil {
        return err
    }
    w.total += sLen
    seg.Length = sLen
    return w.src.Skip( sLen - 2 )
}

// startOfScan skips the scan header then finds the end of the entropy coded
// data that follows. The reported length covers both.
func (w *Walker) startOfScan( seg *Segment ) error {
    sLen, err := w.readLength( )
    if err != nil {
        return err
    }
    if err = w.src.Skip( sLen - 2 ); err != nil {
        return err
    }
    st, err := w.scanEntropyCoded( )
    if err != nil {
        return jwalkForwardError( "startOfScan", err )
    }
    seg.Length = sLen + st.count
    seg.Restarts = st.restarts
    w.total += seg.Length
    return nil
}

// Walk reads a complete codestream from src, from SOI to EOI, reporting each
// segment to r. It returns the total number of bytes consumed, which is
// valid up to the point of failure if an error is returned.
func Walk( src ByteSource, ctl *Control, r Reporter ) (uint, error) {
    w := NewWalker( src, ctl, r )
    if err := w.Begin( ); err != nil {
        return w.Total(), err
    }
    for {
        done, err := w.Step( )
        if err != nil {
            return w.Total(), err
        }
        if done {
            return w.Total(), nil
        }
    }
}

// Read opens the file at path and walks it. The file is always closed
// before returning.
func Read( path string, ctl *Control, r Reporter ) (total uint, err error) {
    f, err := os.Open( path )
    if err != nil {
        return 0, fmt.Errorf( "Read: Unable to read file %s: %w", path, err )
    }
    defer func ( ) {
        if e := f.Close( ); err == nil && e != nil {
            err = e     // replace with close error only if no previous error
        }
    }()
    return Walk( NewSource( f ), ctl, r )
}

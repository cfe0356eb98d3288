package jwalk

import (
    "encoding/json"
    "fmt"
    "io"
)

// cumulative formatted writer
type cumulativeWriter struct {
    w       io.Writer
    count   int
    err     error
}
func newCumulativeWriter( w io.Writer ) *cumulativeWriter {
    cw := new( cumulativeWriter )
    cw.w = w
    return cw
}
func (cw *cumulativeWriter)format( f string, a ...interface{} ) {
    if cw.err != nil {
        return
    }
    n, err := fmt.Fprintf( cw.w, f, a... )
    cw.err = err
    cw.count += n
}
func (cw *cumulativeWriter)Write( v []byte ) (n int, err error) {
    // implements Writer interface for use with json.NewEncoder( cw )
    if cw.err != nil {
        return 0, cw.err
    }
    n, err = cw.w.Write( v )
    cw.err = err
    cw.count += n
    return
}
func (cw *cumulativeWriter)result( ) (int, error) {
    return cw.count, cw.err
}

// SummaryReporter is a Reporter that can also report the final total once
// the walk has ended.
type SummaryReporter interface {
    Reporter
    ReportTotal( total uint ) error
}

// TextReporter writes one human readable line per segment.
type TextReporter struct {
    cw              *cumulativeWriter
}

// NewTextReporter returns a TextReporter writing to w.
func NewTextReporter( w io.Writer ) *TextReporter {
    return &TextReporter{ cw: newCumulativeWriter( w ) }
}

func (t *TextReporter) Report( seg *Segment ) error {
    cw := t.cw
    switch seg.Kind {
    case ApplicationData:
        cw.format( "APP Data Type %02x: %d bytes of application data",
                   seg.Marker, seg.Length )
        if seg.Identifier != "" {
            cw.format( " (%s)", seg.Identifier )
        }
        cw.format( "\n" )
    case QuantizationTable:
        cw.format( "DQT: %d bytes of quantization data\n", seg.Length )
    case FrameHeader:
        cw.format( "SOF: %d bytes of frame data\n", seg.Length )
    case HuffmanTable:
        cw.format( "DHT: %d bytes of huffman tables\n", seg.Length )
    case StartOfScan:
        cw.format( "SOS: %d bytes of scan data\n", seg.Length )
    case Comment:
        cw.format( "COM: comment %d bytes\n", seg.Length )
    case EndOfImage:
        cw.format( "EOI: end of image\n" )
    case RestartInterval:
        cw.format( "DRI: %d bytes of restart interval\n", seg.Length )
    case NumberOfLines:
        cw.format( "DNL: %d bytes of number of lines\n", seg.Length )
    default:
        return fmt.Errorf( "Report: unexpected segment kind %v", seg.Kind )
    }
    _, err := cw.result()
    return err
}

func (t *TextReporter) ReportTotal( total uint ) error {
    t.cw.format( "Total size = %d\n", total )
    _, err := t.cw.result()
    return err
}

// Written returns the number of bytes written so far.
func (t *TextReporter) Written( ) int {
    n, _ := t.cw.result()
    return n
}

type segmentEvent struct {
    Kind            string  `json:"kind"`
    Marker          string  `json:"marker,omitempty"`
    Offset          uint    `json:"offset,omitempty"`
    Length          uint    `json:"length"`
    Restarts        uint    `json:"restarts,omitempty"`
    Identifier      string  `json:"identifier,omitempty"`
}

// JSONReporter writes one JSON object per segment (NDJSON), followed by a
// "total" object.
type JSONReporter struct {
    cw              *cumulativeWriter
    enc             *json.Encoder
}

// NewJSONReporter returns a JSONReporter writing to w.
func NewJSONReporter( w io.Writer ) *JSONReporter {
    j := new( JSONReporter )
    j.cw = newCumulativeWriter( w )
    j.enc = json.NewEncoder( j.cw )
    return j
}

func (j *JSONReporter) Report( seg *Segment ) error {
    ev := segmentEvent{ Kind: seg.Kind.String(),
                        Marker: fmt.Sprintf( "%02x", seg.Marker ),
                        Offset: seg.Offset,
                        Length: seg.Length,
                        Restarts: seg.Restarts,
                        Identifier: seg.Identifier }
    if err := j.enc.Encode( &ev ); err != nil {
        return fmt.Errorf( "Report: %w", err )
    }
    return nil
}

func (j *JSONReporter) ReportTotal( total uint ) error {
    if err := j.enc.Encode( &segmentEvent{ Kind: "total", Length: total } ); err != nil {
        return fmt.Errorf( "ReportTotal: %w", err )
    }
    return nil
}

// Written returns the number of bytes written so far.
func (j *JSONReporter) Written( ) int {
    n, _ := j.cw.result()
    return n
}

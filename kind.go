package jwalk

import "fmt"

const (                 // JPEG marker codes, second byte after the 0xff prefix

    _MARKER_PREFIX = 0xff

    _TEM   = 0x01       // Temporary use in arithmetic coding

    _SOF0  = 0xc0       // Start Of Frame Huffman-coding frames (Baseline DCT)
    _SOF1  = 0xc1       // Start Of Frame Huffman-coding frames (Extended Sequential DCT)
    _SOF2  = 0xc2       // Start Of Frame Huffman-coding frames (Progressive DCT)
    _SOF3  = 0xc3       // Start Of Frame Huffman-coding frames (Lossless / sequential)
    _DHT   = 0xc4       // Define Huffman Table

    _RST0  = 0xd0       // ReStarT #0
    _RST7  = 0xd7       // ReStarT #7
    _SOI   = 0xd8       // Start Of Image
    _EOI   = 0xd9       // End Of Image
    _SOS   = 0xda       // Start Of Scan
    _DQT   = 0xdb       // Define Quantization Table
    _DNL   = 0xdc       // Define Number of lines
    _DRI   = 0xdd       // Define Restart Interval

    _APP0  = 0xe0       // Application Vendor Specific #0 (JFIF)
    _APP1  = 0xe1       // Application Vendor Specific #1 (EXIF, XMP)
    _APP15 = 0xef       // Application Vendor Specific #15

    _COM   = 0xfe       // Comment (text)
)

var markerNames = [...]string {
    "SOF0 Start Of Frame Huffman-coding frames (Baseline DCT)",
    "SOF1 Start Of Frame Huffman-coding frames (Extended Sequential DCT)",
    "SOF2 Start Of Frame Huffman-coding frames (Progressive DCT)",
    "SOF3 Start Of Frame Huffman-coding frames (Lossless / sequential)",
    "DHT Define Huffman Table",
    "SOF5 Start Of Frame Differential Huffman-coding frames (Sequential DCT)",
    "SOF6 Start Of Frame Differential Huffman-coding frames (Progressive DCT)",
    "SOF7 Start Of Frame Differential Huffman-coding frames (Lossless)",
    "JPG Reserved for JPEG extensions",
    "SOF9 Start Of Frame Arithmetic-coding frames (Extended sequential DCT)",
    "SOF10 Start Of Frame Arithmetic-coding frames (Progressive DCT)",
    "SOF11 Start Of Frame Arithmetic-coding frames (Lossless / sequential)",
    "DAC Define Arithmetic Coding Table",
    "SOF13 Start Of Frame Differential Arithmetic-coding frames (Sequential DCT)",
    "SOF14 Start Of Frame Differential Arithmetic-coding frames (Progressive DCT)",
    "SOF15 Start Of Frame Differential Arithmetic-coding frames (Lossless)",

    "RST0 ReStarT #0",
    "RST1 ReStarT #1",
    "RST2 ReStarT #2",
    "RST3 ReStarT #3",
    "RST4 ReStarT #4",
    "RST5 ReStarT #5",
    "RST6 ReStarT #6",
    "RST7 ReStarT #7",
    "SOI Start Of Image",
    "EOI End Of Image",
    "SOS Start Of Scan",
    "DQT Define Quantization Table",
    "DNL Define Number of lines",
    "DRI Define Restart Interval",
    "DHP Define Hierarchical Progression",
    "EXP Expand reference image",

    "APP0 Application Vendor Specific #0 (JFIF)",
    "APP1 Application Vendor Specific #1 (EXIF, TIFF, DCF, TIFF/EP, Adobe XMP)",
    "APP2 Application Vendor Specific #2 (ICC)",
    "APP3 Application Vendor Specific #3 (META)",
    "APP4 Application Vendor Specific #4",
    "APP5 Application Vendor Specific #5",
    "APP6 Application Vendor Specific #6",
    "APP7 Application Vendor Specific #7",
    "APP8 Application Vendor Specific #8",
    "APP9 Application Vendor Specific #9",
    "APP10 Application Vendor Specific #10",
    "APP11 Application Vendor Specific #11",
    "APP12 Application Vendor Specific #12 (Picture Info, Ducky)",
    "APP13 Application Vendor Specific #13 (Photoshop Adobe IRB)",
    "APP14 Application Vendor Specific #14 (Adobe)",
    "APP15 Application Vendor Specific #15",

    "RES0 Reserved for JPEG extensions #0",
    "RES1 Reserved for JPEG extensions #1",
    "RES2 Reserved for JPEG extensions #2",
    "RES3 Reserved for JPEG extensions #3",
    "RES4 Reserved for JPEG extensions #4",
    "RES5 Reserved for JPEG extensions #5",
    "RES6 Reserved for JPEG extensions #6",
    "RES7 Reserved for JPEG extensions #7",
    "RES8 Reserved for JPEG extensions #8",
    "RES9 Reserved for JPEG extensions #9",
    "RES10 Reserved for JPEG extensions #10",
    "RES11 Reserved for JPEG extensions #11",
    "RES12 Reserved for JPEG extensions #12",
    "RES13 Reserved for JPEG extensions #13",

    "COM Comment",
}

func markerName( marker byte ) string {
    if marker == _TEM { return "TEM Temporary use in arithmetic coding" }
    if marker < _SOF0 || marker > _COM { return "RES Reserved Marker" }

    return markerNames[ marker - _SOF0 ]
}

func isRestartMarker( marker byte ) bool {
    return marker >= _RST0 && marker <= _RST7
}

// SegmentKind is the semantic class of a marker. All 16 application markers
// share the ApplicationData kind; the marker byte itself is kept in Segment.
type SegmentKind int
const (
    Unrecognized SegmentKind = iota
    ApplicationData
    QuantizationTable
    FrameHeader
    HuffmanTable
    StartOfScan
    EndOfImage
    Comment
    RestartInterval                 // DRI, extended mode only
    NumberOfLines                   // DNL, extended mode only
)

var kindNames = [...]string {
    "unrecognized", "APP", "DQT", "SOF", "DHT", "SOS", "EOI", "COM",
    "DRI", "DNL" }

func (k SegmentKind) String( ) string {
    if k < Unrecognized || k > NumberOfLines {
        return fmt.Sprintf( "SegmentKind(%d)", int(k) )
    }
    return kindNames[k]
}

// HasLength reports whether segments of that kind carry a 16-bit length.
func (k SegmentKind) HasLength( ) bool {
    switch k {
    case Unrecognized, EndOfImage:
        return false
    }
    return true
}

// classify maps a marker byte to its kind. Only baseline and progressive
// frame headers are recognized unless extended is true, in which case DRI,
// DNL and the other non-differential Huffman frame headers are accepted.
func classify( marker byte, extended bool ) SegmentKind {
    if marker >= _APP0 && marker <= _APP15 {
        return ApplicationData
    }
    switch marker {
    case _DQT:          return QuantizationTable
    case _SOF0, _SOF2:  return FrameHeader
    case _DHT:          return HuffmanTable
    case _SOS:          return StartOfScan
    case _EOI:          return EndOfImage
    case _COM:          return Comment
    }
    if extended {
        switch marker {
        case _SOF1, _SOF3:  return FrameHeader
        case _DRI:          return RestartInterval
        case _DNL:          return NumberOfLines
        }
    }
    return Unrecognized
}

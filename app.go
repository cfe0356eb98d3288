package jwalk

// support for application segments (APPn)

import (
    "bytes"
    "fmt"
    "strings"

    "github.com/golang/glog"
    "github.com/jrm-1535/exif"
)

type appSignature struct {
    marker          byte
    signature       []byte      // payload prefix, NUL terminator included
    name            string
}

var appSignatures = [...]appSignature {
    { _APP0,      []byte( "JFIF\x00" ), "JFIF" },
    { _APP0,      []byte( "JFXX\x00" ), "JFXX" },
    { _APP1,      []byte( "Exif\x00\x00" ), "Exif" },
    { _APP1,      []byte( "http://ns.adobe.com/xap/1.0/\x00" ), "XMP" },
    { _APP1,      []byte( "http://ns.adobe.com/xmp/extension/\x00" ), "XMP extension" },
    { _APP0 + 2,  []byte( "ICC_PROFILE\x00" ), "ICC" },
    { _APP0 + 2,  []byte( "MPF\x00" ), "MPF" },
    { _APP0 + 12, []byte( "Ducky" ), "Ducky" },
    { _APP0 + 13, []byte( "Photoshop 3.0\x00" ), "Photoshop" },
    { _APP0 + 14, []byte( "Adobe" ), "Adobe" },
}

const exifIdentifier = "Exif"

// identifyApplication returns the name of the well-known signature starting
// the payload of an APPn segment, or an empty string.
func identifyApplication( marker byte, payload []byte ) string {
    for _, as := range appSignatures {
        if as.marker == marker && bytes.HasPrefix( payload, as.signature ) {
            return as.name
        }
    }
    return ""
}

// application accounts for an APPn segment. The payload is skipped unless
// identification or an Exif metadata check is requested.
func (w *Walker) application( seg *Segment ) error {
    sLen, err := w.readLength( )
    if err != nil {
        return err
    }
    w.total += sLen
    seg.Length = sLen

    if ! w.Identify && ( w.Metadata == nil || seg.Marker != _APP1 ) {
        return w.src.Skip( sLen - 2 )
    }
    payload, err := w.src.ReadFull( sLen - 2 )
    if err != nil {
        return err
    }
    seg.Identifier = identifyApplication( seg.Marker, payload )
    if w.Warn && seg.Identifier == "" {
        glog.Warningf( "unknown APP%d signature at offset 0x%x",
                       seg.Marker - _APP0, seg.Offset )
    }
    if seg.Identifier == exifIdentifier && w.Metadata != nil {
        // metadata content is not structure: report and carry on
        if err = w.exifApplication( payload ); err != nil {
            fmt.Fprintf( w.Metadata, "Exif: unable to format metadata: %s\n",
                         strings.TrimSpace( err.Error() ) )
        }
    }
    return nil
}

const (
    exifHeaderSize  = 6     // "Exif\0\0"
    tiffHeaderSize  = 8     // byte order, 0x2a, offset of IFD0
    exifTrailerSize = 6     // not examined by exif.Parse
)

// exifApplication checks the Exif metadata carried by an APP1 payload,
// starting at its "Exif\0\0" header, and writes a one line summary to the
// metadata writer. exif.Parse does not check its offsets against the data
// it is given, so a panic is returned as an error.
func (w *Walker) exifApplication( payload []byte ) (err error) {
    if len(payload) < exifHeaderSize + tiffHeaderSize + exifTrailerSize {
        return fmt.Errorf( "exifApplication: Exif data too short (%d bytes)", len(payload) )
    }
    defer func( ) {
        if r := recover( ); r != nil {
            err = fmt.Errorf( "exifApplication: invalid Exif data (%v)", r )
        }
    }()
    if _, err = exif.Parse( payload, 0, uint(len(payload)), &exif.Control{} ); err != nil {
        return jwalkForwardError( "exifApplication", err )
    }
    order := "big endian"
    if payload[exifHeaderSize] == 'I' {
        order = "little endian"
    }
    _, err = fmt.Fprintf( w.Metadata, "Exif: %d bytes of TIFF metadata, %s\n",
                          len(payload) - exifHeaderSize, order )
    return err
}

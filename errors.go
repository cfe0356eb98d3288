package jwalk

import (
    "errors"
    "fmt"
)

// Sentinel errors, one per structural violation. Concrete errors returned by
// the walk carry details (offset, byte values) and match those sentinels
// with errors.Is.
var (
    ErrTruncatedStream      = errors.New( "jwalk: truncated stream" )
    ErrExpectedMarkerPrefix = errors.New( "jwalk: expected marker prefix" )
    ErrMalformedHeader      = errors.New( "jwalk: malformed header" )
    ErrUnknownMarker        = errors.New( "jwalk: unknown marker" )
    ErrInvalidLength        = errors.New( "jwalk: invalid segment length" )
    ErrWalkEnded            = errors.New( "jwalk: walk already ended at EOI" )
)

// TruncatedStreamError is returned when fewer bytes are available than a
// read requires. Missing is the number of bytes short.
type TruncatedStreamError struct {
    Expected    uint    // number of bytes requested
    Missing     uint    // number of bytes that could not be read
    Offset      uint    // offset at which the read started
}

func (e *TruncatedStreamError) Error( ) string {
    return fmt.Sprintf( "Expected to read %d bytes at offset %d (%d missing)",
                        e.Expected, e.Offset, e.Missing )
}

func (e *TruncatedStreamError) Is( target error ) bool {
    return target == ErrTruncatedStream
}

// MarkerPrefixError is returned when a byte at a marker position is not 0xFF.
type MarkerPrefixError struct {
    Got         byte
    Offset      uint    // offset of the offending byte
}

func (e *MarkerPrefixError) Error( ) string {
    return fmt.Sprintf( "Expected 0xFF byte, got %02x at offset %d",
                        e.Got, e.Offset )
}

func (e *MarkerPrefixError) Is( target error ) bool {
    return target == ErrExpectedMarkerPrefix
}

// HeaderError is returned when the stream does not start with SOI.
type HeaderError struct {
    Got         [2]byte
}

func (e *HeaderError) Error( ) string {
    return fmt.Sprintf( "Mismatch! Expected ffd8, got %02x%02x",
                        e.Got[0], e.Got[1] )
}

func (e *HeaderError) Is( target error ) bool {
    return target == ErrMalformedHeader
}

// UnknownMarkerError is returned when the second marker byte does not map
// to any supported segment kind.
type UnknownMarkerError struct {
    Marker      byte
    Offset      uint    // offset of the 0xFF prefix
}

func (e *UnknownMarkerError) Error( ) string {
    return fmt.Sprintf( "Expected known encoding byte, got %02x at offset %d (%s)",
                        e.Marker, e.Offset, markerName( e.Marker ) )
}

func (e *UnknownMarkerError) Is( target error ) bool {
    return target == ErrUnknownMarker
}

// LengthError is returned when a segment declares a length smaller than the
// 2 bytes of the length field itself.
type LengthError struct {
    Length      uint
    Offset      uint    // offset of the length field
}

func (e *LengthError) Error( ) string {
    return fmt.Sprintf( "Invalid segment length %d at offset %d (minimum 2)",
                        e.Length, e.Offset )
}

func (e *LengthError) Is( target error ) bool {
    return target == ErrInvalidLength
}

func jwalkForwardError( prefix string, err error ) error {
    return fmt.Errorf( prefix + ": %w", err )
}

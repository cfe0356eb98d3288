package jwalk

import (
    "bufio"
    "errors"
    "io"
)

// ByteSource is a sequential, forward-only byte stream with a single byte of
// pushback. Offsets are absolute, counted from the first byte of the stream.
type ByteSource interface {
    ReadFull( n uint ) ([]byte, error)  // exactly n bytes or TruncatedStream
    ReadByte( ) (byte, error)
    PeekByte( ) (byte, error)           // next byte, not consumed
    UnreadByte( ) error                 // push back the last byte read
    Skip( n uint ) error                // advance n bytes without returning them
    Offset( ) uint                      // absolute offset of the next byte
}

const defaultSourceBufferSize = 65536

// Source implements ByteSource on top of any io.Reader. Pushback is kept in
// the Source itself, since bufio.Reader forgets its last byte on Peek.
type Source struct {
    r           *bufio.Reader
    pos         uint
    last        byte    // last byte returned by ReadByte
    canUnread   bool    // last is valid and may be pushed back
    pushed      bool    // last has been pushed back and is the next byte
}

// NewSource returns a Source reading from r. The Source never closes r.
func NewSource( r io.Reader ) *Source {
    s := new( Source )
    s.r = bufio.NewReaderSize( r, defaultSourceBufferSize )
    return s
}

func truncated( expected, got, start uint, err error ) error {
    if errors.Is( err, io.EOF ) || errors.Is( err, io.ErrUnexpectedEOF ) {
        return &TruncatedStreamError{ Expected: expected,
                                      Missing: expected - got,
                                      Offset: start }
    }
    return err
}

// takePushed consumes the pushed back byte if there is one, and returns the
// number of bytes taken (0 or 1).
func (s *Source) takePushed( ) uint {
    if s.pushed {
        s.pushed = false
        s.pos ++
        return 1
    }
    return 0
}

// ReadFull reads exactly n bytes. If fewer are available the bytes that
// could be read are consumed and a *TruncatedStreamError is returned.
// Pushback is not available after a multi-byte read.
func (s *Source) ReadFull( n uint ) ([]byte, error) {
    buf := make( []byte, n )
    start := s.pos
    var got uint
    if n > 0 && s.pushed {
        buf[0] = s.last
        got = s.takePushed( )
    }
    s.canUnread = false
    m, err := io.ReadFull( s.r, buf[got:] )
    got += uint(m)
    s.pos += uint(m)
    if err != nil {
        return nil, jwalkForwardError( "ReadFull", truncated( n, got, start, err ) )
    }
    return buf, nil
}

func (s *Source) ReadByte( ) (byte, error) {
    if s.pushed {
        s.takePushed( )
        s.canUnread = true
        return s.last, nil
    }
    b, err := s.r.ReadByte( )
    if err != nil {
        s.canUnread = false
        return 0, jwalkForwardError( "ReadByte", truncated( 1, 0, s.pos, err ) )
    }
    s.pos ++
    s.last = b
    s.canUnread = true
    return b, nil
}

func (s *Source) PeekByte( ) (byte, error) {
    if s.pushed {
        return s.last, nil
    }
    p, err := s.r.Peek( 1 )
    if err != nil {
        return 0, jwalkForwardError( "PeekByte", truncated( 1, 0, s.pos, err ) )
    }
    return p[0], nil
}

// UnreadByte pushes back the byte returned by the immediately preceding
// ReadByte. Peeking in between is allowed. Only one byte of pushback is
// available.
func (s *Source) UnreadByte( ) error {
    if ! s.canUnread {
        return errors.New( "UnreadByte: no byte to push back" )
    }
    s.pushed = true
    s.canUnread = false
    s.pos --
    return nil
}

func (s *Source) Skip( n uint ) error {
    start := s.pos
    s.canUnread = false
    var got uint
    if n > 0 {
        got = s.takePushed( )
    }
    m, err := s.r.Discard( int(n - got) )
    got += uint(m)
    s.pos += uint(m)
    if err != nil {
        return jwalkForwardError( "Skip", truncated( n, got, start, err ) )
    }
    return nil
}

func (s *Source) Offset( ) uint {
    return s.pos
}

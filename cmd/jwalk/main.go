package main

import (
    "bufio"
    "bytes"
    "flag"
    "fmt"
    "io"
    "os"

    "github.com/golang/glog"
    "github.com/klauspost/compress/zstd"

    "github.com/jrm-1535/jwalk"
)

const (
    VERSION     = "0.2"

    HELP        =
`jwalk [-h] [-version] [-m] [-w] [-x] [-id] [-meta] [-json] filepath

    Walk the marker segments of a jpeg file, print the kind and length of each
    segment and the total number of bytes from SOI to EOI. Pixel data is not
    decoded. A zstd compressed jpeg file is decompressed on the fly.

    Options:

        -h          print this short help message and exit
        -version    print current jwalk version and exit
        -m          log markers and offsets as walking goes (stderr)
        -w          warn about inconsistencies that do not stop the walk
                    (stderr), including data after the end of image
        -x          extended markers: accept DRI, DNL, SOF1 and SOF3
        -id         identify application segments (JFIF, Exif, XMP...)
        -meta       check exif metadata found in APP1 segments and print
                    a one line summary
        -json       print one json object per segment instead of text

    filepath is the path to the file to process

`
)

var zstdMagic = []byte{ 0x28, 0xb5, 0x2f, 0xfd }

type walkArgs struct {
    input           string
    control         jwalk.Control
    meta            bool
    json            bool
}

// getArgs returns nil args without error if the command must stop
// successfully (help, version)
func getArgs( arguments []string, out io.Writer ) (*walkArgs, error) {

    pArgs := new( walkArgs )
    fs := flag.NewFlagSet( "jwalk", flag.ContinueOnError )
    fs.SetOutput( io.Discard )      // parse errors are reported by run, on one line
    fs.Usage = func() { }

    var version bool
    fs.BoolVar( &version, "version", false, "print jwalk version and exits" )
    fs.BoolVar( &pArgs.control.Markers, "m", false, "log markers and offsets as walking goes" )
    fs.BoolVar( &pArgs.control.Warn, "w", false, "warn of inconsistencies during walk" )
    fs.BoolVar( &pArgs.control.Extended, "x", false, "accept extended markers" )
    fs.BoolVar( &pArgs.control.Identify, "id", false, "identify application segments" )
    fs.BoolVar( &pArgs.meta, "meta", false, "check exif metadata" )
    fs.BoolVar( &pArgs.json, "json", false, "print segments as json" )

    if err := fs.Parse( arguments ); err != nil {
        if err == flag.ErrHelp {
            fmt.Fprint( out, HELP )
            return nil, nil
        }
        return nil, fmt.Errorf( "getArgs: %w", err )
    }
    if version {
        fmt.Fprintf( out, "jwalk version %s\n", VERSION )
        return nil, nil
    }
    if fs.NArg() != 1 {
        return nil, fmt.Errorf( "Expected filename as argument" )
    }
    pArgs.input = fs.Arg(0)
    if pArgs.meta {
        pArgs.control.Metadata = out
    }
    return pArgs, nil
}

// openInput returns a reader on the jpeg data in f, decompressing it if it
// starts with a zstd frame. The returned function releases the decoder.
func openInput( f io.Reader ) (r io.Reader, compressed bool, release func(), err error) {
    br := bufio.NewReader( f )
    release = func() {}
    magic, err := br.Peek( len(zstdMagic) )
    if err != nil && err != io.EOF {  // short files are left to the walker
        return nil, false, release, fmt.Errorf( "openInput: %w", err )
    }
    if ! bytes.Equal( magic, zstdMagic ) {
        return br, false, release, nil
    }
    dec, err := zstd.NewReader( br )
    if err != nil {
        return nil, true, release, fmt.Errorf( "openInput: %w", err )
    }
    return dec, true, dec.Close, nil
}

func process( args *walkArgs, out io.Writer ) error {
    f, err := os.Open( args.input )
    if err != nil {
        return fmt.Errorf( "Couldn't open the file %s", args.input )
    }
    defer f.Close()

    r, compressed, release, err := openInput( f )
    if err != nil {
        return err
    }
    defer release()

    var rep jwalk.SummaryReporter
    if args.json {
        rep = jwalk.NewJSONReporter( out )
    } else {
        rep = jwalk.NewTextReporter( out )
    }

    total, err := jwalk.Walk( jwalk.NewSource( r ), &args.control, rep )
    if err != nil {
        return err
    }
    if err = rep.ReportTotal( total ); err != nil {
        return err
    }

    if args.control.Warn && ! compressed {
        if st, err := f.Stat(); err == nil && st.Mode().IsRegular() &&
                                  uint64(st.Size()) != uint64(total) {
            glog.Warningf( "%s: %d bytes in file, %d bytes from SOI to EOI",
                           args.input, st.Size(), total )
        }
    }
    return nil
}

// run returns the process exit status: 0 on success, 1 on any error after
// printing a single line diagnostic to out.
func run( arguments []string, out io.Writer ) int {
    args, err := getArgs( arguments, out )
    if err != nil {
        fmt.Fprintf( out, "%v\n", err )
        return 1
    }
    if args == nil {
        return 0
    }
    if err = process( args, out ); err != nil {
        fmt.Fprintf( out, "%v\n", err )
        return 1
    }
    return 0
}

func main() {
    flag.Set( "logtostderr", "true" )     // glog: keep stdout for reports
    status := run( os.Args[1:], os.Stdout )
    glog.Flush()
    os.Exit( status )
}

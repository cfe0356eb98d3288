package jwalk

import (
    "github.com/golang/glog"
)

type scanState struct {
    count           uint        // entropy coded bytes, stuffing and RSTn included
    restarts        uint        // number of RSTn markers crossed
    found           bool        // terminating marker seen (and pushed back)
}

// scanEntropyCoded consumes entropy coded data following a scan header until
// the next marker that is neither a stuffed 0xff00 nor a restart marker. The
// 0xff prefix of that marker is pushed back into the source, so that the next
// Step reads it, and it is not counted.
func (w *Walker) scanEntropyCoded( ) (st scanState, err error) {
    var lastRST byte = 7        // so that RST0 is expected first
    var afterRST bool           // no data since the last RSTn
    var rstOffset uint

    for ! st.found {
        var b, next byte
        if b, err = w.src.ReadByte( ); err != nil {
            return
        }
        if b != _MARKER_PREFIX {
            st.count ++
            afterRST = false
            continue
        }
        if next, err = w.src.PeekByte( ); err != nil {
            return
        }
        switch {
        case next == 0x00:      // stuffed 0xff data byte
            if _, err = w.src.ReadByte( ); err != nil {
                return
            }
            st.count += 2
            afterRST = false

        case isRestartMarker( next ):
            rstOffset = w.src.Offset() - 1
            if _, err = w.src.ReadByte( ); err != nil {
                return
            }
            st.count += 2
            st.restarts ++
            RST := next - _RST0
            if w.Warn && (lastRST + 1) % 8 != RST {
                glog.Warningf( "invalid RST sequence (%d, expected %d) at offset 0x%x",
                               RST, (lastRST + 1) % 8, rstOffset )
            }
            lastRST = RST
            afterRST = true

        default:                // next marker: leave it for the next Step
            if err = w.src.UnreadByte( ); err != nil {
                return
            }
            st.found = true
        }
    }
    if afterRST && w.Warn {
        glog.Warningf( "ending RST at offset 0x%x is useless", rstOffset )
    }
    return
}

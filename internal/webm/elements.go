package webm

// Element IDs from the Matroska registry, with their length markers
// intact to match what readID returns.
const (
	idSegment        = 0x18538067
	idInfo           = 0x1549A966
	idTracks         = 0x1654AE6B
	idCluster        = 0x1F43B675
	idTrackEntry     = 0xAE
	idBlockGroup     = 0xA0
	idDuration       = 0x4489
	idCodecDelay     = 0x56AA
	idDiscardPadding = 0x75A2
	idCodecID        = 0x86
	idBlock          = 0xA1
	idSimpleBlock    = 0xA3
)

// element describes how the walker treats one known ID. Masters are
// recursed into; leaves hand their payload to a handler. Every other
// ID, the EBML header included, is skipped whole.
type element struct {
	name   string
	master bool
	handle func(*job, []byte) error
}

var elements = map[uint64]element{
	idSegment:        {name: "Segment", master: true},
	idInfo:           {name: "Info", master: true},
	idTracks:         {name: "Tracks", master: true},
	idCluster:        {name: "Cluster", master: true},
	idTrackEntry:     {name: "TrackEntry", master: true},
	idBlockGroup:     {name: "BlockGroup", master: true},
	idDuration:       {name: "Duration", handle: (*job).handleDuration},
	idCodecDelay:     {name: "CodecDelay", handle: (*job).handleCodecDelay},
	idDiscardPadding: {name: "DiscardPadding", handle: (*job).handleDiscardPadding},
	idCodecID:        {name: "CodecID", handle: (*job).handleCodecID},
	idBlock:          {name: "Block", handle: (*job).handleBlock},
	idSimpleBlock:    {name: "SimpleBlock", handle: (*job).handleBlock},
}

package watch

import (
	"io"
	"os"
	"sync"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// Capture appends the raw frames of decoded reports to a pcap stream.
type Capture struct {
	c io.Closer

	mu sync.Mutex
	w  *pcapgo.Writer
}

// NewCaptureFile creates (or truncates) path and writes the pcap file header.
func NewCaptureFile(path string) (*Capture, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	c, err := NewCapture(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	c.c = f
	return c, nil
}

// NewCapture writes the pcap file header to w.
func NewCapture(w io.Writer) (*Capture, error) {
	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(maxFrameSize, layers.LinkTypeEthernet); err != nil {
		return nil, err
	}
	return &Capture{w: pw}, nil
}

// Write records the frame a report was decoded from. Reports without a frame
// are skipped.
func (p *Capture) Write(r *Report) error {
	if len(r.Frame) == 0 {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.w == nil {
		return io.ErrClosedPipe
	}
	return p.w.WritePacket(gopacket.CaptureInfo{
		Timestamp:     r.Time,
		CaptureLength: len(r.Frame),
		Length:        len(r.Frame),
	}, r.Frame)
}

func (p *Capture) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.w = nil
	if p.c != nil {
		return p.c.Close()
	}
	return nil
}
